package status

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/rs/zerolog/log"
)

const (
	srvService     = "_minecraft._tcp."
	resolvConfPath = "/etc/resolv.conf"
)

var ipv4Literal = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)

// SRVRecord is the connect target advertised by a _minecraft._tcp service record.
type SRVRecord struct {
	Host string `json:"host"`
	Port uint16 `json:"port"`
}

// Resolver looks up the SRV override of a symbolic host.
// A nil record with a nil error means "connect to the original host and port".
type Resolver interface {
	LookupSRV(ctx context.Context, host string) (*SRVRecord, error)
}

// DNSResolver queries SRV records directly from DNS servers.
type DNSResolver struct {
	// Servers in host:port form, tried in order. Empty means the system resolvers.
	Servers []string

	// Timeout per exchange, zero keeps the miekg/dns defaults.
	Timeout time.Duration
}

// NewDNSResolver returns a resolver using the given servers, or the ones
// listed in /etc/resolv.conf when none are given.
func NewDNSResolver(servers ...string) *DNSResolver {
	return &DNSResolver{Servers: servers}
}

// isIPv4Literal reports whether host looks like a dotted quad. Octet ranges are not checked.
func isIPv4Literal(host string) bool {
	return ipv4Literal.MatchString(host)
}

// LookupSRV resolves _minecraft._tcp.<host>.
// NXDOMAIN and empty answers yield no record; any other failure wraps ErrResolution.
func (r *DNSResolver) LookupSRV(ctx context.Context, host string) (*SRVRecord, error) {
	servers := r.Servers
	if len(servers) == 0 {
		servers = systemServers()
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(srvService+host), dns.TypeSRV)
	msg.RecursionDesired = true

	udp := &dns.Client{Net: "udp", Timeout: r.Timeout}
	tcp := &dns.Client{Net: "tcp", Timeout: r.Timeout}

	var lastErr error
	for _, server := range servers {
		resp, _, err := udp.ExchangeContext(ctx, msg, server)
		if err == nil && resp.Truncated {
			resp, _, err = tcp.ExchangeContext(ctx, msg, server)
		}
		if err != nil {
			lastErr = err
			log.Trace().Err(err).Str("server", server).Str("host", host).Msg("SRV exchange failed")
			continue
		}

		switch resp.Rcode {
		case dns.RcodeSuccess:
			return pickSRV(resp.Answer), nil
		case dns.RcodeNameError:
			return nil, nil
		default:
			lastErr = fmt.Errorf("server %s answered %s", server, dns.RcodeToString[resp.Rcode])
		}
	}

	return nil, fmt.Errorf("%w: %s: %v", ErrResolution, host, lastErr)
}

// pickSRV returns the lowest priority record, preferring the highest weight among equals.
func pickSRV(answers []dns.RR) *SRVRecord {
	var records []*dns.SRV
	for _, rr := range answers {
		if srv, ok := rr.(*dns.SRV); ok {
			records = append(records, srv)
		}
	}
	if len(records) == 0 {
		return nil
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Priority != records[j].Priority {
			return records[i].Priority < records[j].Priority
		}
		return records[i].Weight > records[j].Weight
	})

	target := strings.TrimSuffix(records[0].Target, ".")
	if target == "" {
		// "." target: service explicitly not available
		return nil
	}

	return &SRVRecord{Host: target, Port: records[0].Port}
}

func systemServers() []string {
	cfg, err := dns.ClientConfigFromFile(resolvConfPath)
	if err != nil || len(cfg.Servers) == 0 {
		return []string{"127.0.0.1:53"}
	}

	servers := make([]string, 0, len(cfg.Servers))
	for _, s := range cfg.Servers {
		servers = append(servers, net.JoinHostPort(s, cfg.Port))
	}

	return servers
}
