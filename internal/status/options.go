package status

import (
	"fmt"
	"time"
)

// Defaults applied by DefaultOptions.
const (
	DefaultPort            = 25565
	DefaultProtocolVersion = 47
	DefaultTimeout         = 5 * time.Second
)

// Options controls a single status query.
type Options struct {
	// Port used when no SRV record overrides it.
	Port int `json:"port"`

	// ProtocolVersion is not sent by the legacy ping, it is accepted so that
	// callers can share options with newer status formats.
	ProtocolVersion int `json:"protocol_version"`

	// Timeout bounds the whole exchange: resolution, connect and every read.
	Timeout time.Duration `json:"timeout"`

	// EnableSRV turns on the _minecraft._tcp SRV lookup for symbolic hosts.
	EnableSRV bool `json:"enable_srv"`
}

// Option overrides one field of Options.
type Option func(*Options)

// DefaultOptions returns a freshly constructed set of defaults.
func DefaultOptions() Options {
	return Options{
		Port:            DefaultPort,
		ProtocolVersion: DefaultProtocolVersion,
		Timeout:         DefaultTimeout,
		EnableSRV:       true,
	}
}

// WithPort sets the port to connect to.
func WithPort(port int) Option {
	return func(o *Options) { o.Port = port }
}

// WithProtocolVersion sets the advertised protocol version.
func WithProtocolVersion(version int) Option {
	return func(o *Options) { o.ProtocolVersion = version }
}

// WithTimeout sets the overall deadline of the query.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) { o.Timeout = timeout }
}

// WithSRV enables or disables the SRV lookup.
func WithSRV(enabled bool) Option {
	return func(o *Options) { o.EnableSRV = enabled }
}

// WithoutSRV disables the SRV lookup.
func WithoutSRV() Option {
	return WithSRV(false)
}

// NewOptions applies opts over the defaults in order and validates the result.
func NewOptions(opts ...Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if err := o.Validate(); err != nil {
		return Options{}, err
	}

	return o, nil
}

// Validate reports the first field outside of its domain.
func (o Options) Validate() error {
	if o.Port < 1 || o.Port > 65535 {
		return fmt.Errorf("%w: expected port to be within [1, 65535], got %d", ErrValidation, o.Port)
	}
	if o.ProtocolVersion < 0 {
		return fmt.Errorf("%w: expected protocol version to be >= 0, got %d", ErrValidation, o.ProtocolVersion)
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("%w: expected timeout to be greater than 0, got %s", ErrValidation, o.Timeout)
	}

	return nil
}
