package watch

import (
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// Resolver resolves a hostname to a single IP address string.
type Resolver interface {
	Resolve(hostname string) (string, error)
}

// DNSResolver queries the system's configured nameservers for A records.
type DNSResolver struct {
	client  *dns.Client
	servers []string
}

// NewDNSResolver builds a resolver from a resolv.conf-style file.
func NewDNSResolver(resolvConf string, timeout time.Duration) (*DNSResolver, error) {
	cc, err := dns.ClientConfigFromFile(resolvConf)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", resolvConf, err)
	}
	if len(cc.Servers) == 0 {
		return nil, fmt.Errorf("%s lists no nameservers", resolvConf)
	}
	servers := make([]string, len(cc.Servers))
	for i, server := range cc.Servers {
		servers[i] = net.JoinHostPort(server, cc.Port)
	}
	return &DNSResolver{
		client:  &dns.Client{Timeout: timeout},
		servers: servers,
	}, nil
}

// Resolve returns the first A record for hostname, trying each nameserver in
// turn. Literal IP addresses are returned as-is without a query.
func (r *DNSResolver) Resolve(hostname string) (string, error) {
	if ip := net.ParseIP(hostname); ip != nil {
		return ip.String(), nil
	}
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(hostname), dns.TypeA)
	var lastErr error
	for _, server := range r.servers {
		in, _, err := r.client.Exchange(m, server)
		if err != nil {
			lastErr = err
			continue
		}
		if in.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("%s answered %s", server, dns.RcodeToString[in.Rcode])
			continue
		}
		for _, rr := range in.Answer {
			if a, ok := rr.(*dns.A); ok {
				return a.A.String(), nil
			}
		}
		lastErr = fmt.Errorf("%s returned no A records", server)
	}
	return "", fmt.Errorf("resolving %s: %w", hostname, lastErr)
}
