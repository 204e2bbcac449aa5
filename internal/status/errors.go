package status

import "errors"

var (
	// ErrValidation marks malformed caller input, detected before any I/O.
	ErrValidation = errors.New("invalid argument")

	// ErrResolution marks a failure of the SRV lookup mechanism itself.
	ErrResolution = errors.New("srv resolution failed")

	// ErrConnection marks a transport that could not be established or broke mid-exchange.
	ErrConnection = errors.New("connection failed")

	// ErrProtocol marks a reply that does not conform to the legacy ping format.
	ErrProtocol = errors.New("protocol error")

	// ErrTimeout marks a connect or read that exceeded the configured deadline.
	ErrTimeout = errors.New("timed out")
)
