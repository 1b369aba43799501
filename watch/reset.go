package watch

import (
	"fmt"
	"net"

	"golang.zx2c4.com/wireguard/wgctrl"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

// Resetter re-applies a peer's endpoint on a WireGuard interface.
type Resetter interface {
	Reset(iface, publicKey, endpoint string) error
}

// WGResetter updates peer endpoints through the WireGuard control interface.
type WGResetter struct {
	client *wgctrl.Client
}

// NewWGResetter opens the WireGuard control interface.
func NewWGResetter() (*WGResetter, error) {
	client, err := wgctrl.New()
	if err != nil {
		return nil, fmt.Errorf("opening wireguard control: %w", err)
	}
	return &WGResetter{client: client}, nil
}

// Close closes the control interface.
func (r *WGResetter) Close() error {
	return r.client.Close()
}

// Reset sets the endpoint of the given peer, leaving the rest of the device
// untouched.
func (r *WGResetter) Reset(iface, publicKey, endpoint string) error {
	key, err := wgtypes.ParseKey(publicKey)
	if err != nil {
		return fmt.Errorf("parsing public key of %s: %w", iface, err)
	}
	addr, err := net.ResolveUDPAddr("udp", endpoint)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", endpoint, err)
	}
	cfg := wgtypes.Config{
		Peers: []wgtypes.PeerConfig{{
			PublicKey:  key,
			UpdateOnly: true,
			Endpoint:   addr,
		}},
	}
	err = r.client.ConfigureDevice(iface, cfg)
	if err != nil {
		return fmt.Errorf("configuring %s: %w", iface, err)
	}
	return nil
}
