package status

import "time"

// Version is the server software version. Legacy pings never carry it.
type Version struct {
	Name     string `json:"name"`
	Protocol int    `json:"protocol"`
}

// Players holds the player counts reported by the server.
type Players struct {
	Online int32 `json:"online"`
	Max    int32 `json:"max"`
}

// StatusResponse is the outcome of a successful status query.
type StatusResponse struct {
	// Version is always nil for the legacy ping.
	Version   *Version   `json:"version"`
	SRVRecord *SRVRecord `json:"srv_record"`

	// Host and Port as requested by the caller.
	Host string `json:"host"`

	// Address is the remote address actually dialed.
	Address string `json:"address"`

	MOTD    MOTD    `json:"motd"`
	Players Players `json:"players"`
	Port    int     `json:"port"`

	// RoundTripLatency in milliseconds, from connect to the decoded reply.
	RoundTripLatency int64 `json:"round_trip_latency"`
}

func newStatusResponse(host string, port int, srv *SRVRecord, addr string, reply rawReply, elapsed time.Duration) *StatusResponse {
	return &StatusResponse{
		Host:      host,
		Port:      port,
		SRVRecord: srv,
		Address:   addr,
		MOTD:      ParseMOTD(reply.motd),
		Players: Players{
			Online: reply.online,
			Max:    reply.max,
		},
		RoundTripLatency: elapsed.Milliseconds(),
	}
}
