package netcfg

import (
	"net"

	"go.uber.org/zap"
)

// Classification is the result of classifying one interface definition.
type Classification int

const (
	// ClassClient marks a complete WireGuard client configuration.
	ClassClient Classification = iota
	// ClassNotWireGuard marks a definition of some other interface kind.
	ClassNotWireGuard
	// ClassIncomplete marks a WireGuard definition missing the interface
	// name, the peer endpoint, or the peer public key.
	ClassIncomplete
)

// Client is one WireGuard client configuration: a local interface peering
// toward a (possibly dynamic-DNS) endpoint.
type Client struct {
	Interface string
	PublicKey string
	// Endpoint is the configured host:port; host may be a DNS name.
	Endpoint string
	// Gateway is the next hop of the first matching route, empty if none.
	Gateway string
}

// Hostname returns the host part of the configured endpoint.
func (c Client) Hostname() string {
	host, _, err := net.SplitHostPort(c.Endpoint)
	if err != nil {
		return c.Endpoint
	}
	return host
}

// Classify decides whether a netdev describes a WireGuard client.
func Classify(nd NetDev) Classification {
	if nd.Kind != "wireguard" {
		return ClassNotWireGuard
	}
	if nd.Name == "" || nd.Endpoint == "" || nd.PublicKey == "" {
		return ClassIncomplete
	}
	return ClassClient
}

// GatewayFor returns the gateway of the first route definition matching
// iface. Several matching routes are not an error; the first one wins.
func (s *Store) GatewayFor(iface string) string {
	for _, nw := range s.Networks {
		if nw.Gateway != "" && nw.Matches(iface) {
			return nw.Gateway
		}
	}
	return ""
}

// Clients assembles every complete WireGuard client configuration in the
// store. Ordering follows the directory listing and carries no meaning.
func (s *Store) Clients() []Client {
	var clients []Client
	for _, nd := range s.NetDevs {
		switch Classify(nd) {
		case ClassNotWireGuard:
			zap.S().Debugf("%s: not a wireguard device, skipping.", nd.Name)
		case ClassIncomplete:
			zap.S().Debugf("%s: not a wireguard client configuration, skipping.", nd.Name)
		case ClassClient:
			clients = append(clients, Client{
				Interface: nd.Name,
				PublicKey: nd.PublicKey,
				Endpoint:  nd.Endpoint,
				Gateway:   s.GatewayFor(nd.Name),
			})
		}
	}
	return clients
}

// Discover loads dir and returns its WireGuard client configurations.
func Discover(dir string) ([]Client, error) {
	s, err := Load(dir)
	if err != nil {
		return nil, err
	}
	return s.Clients(), nil
}
