// Package netcfg reads WireGuard client configurations from systemd-networkd
// interface and route definitions.
package netcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/ini.v1"
)

// loadOptions suits systemd unit files, which may repeat sections and keys.
var loadOptions = ini.LoadOptions{
	AllowNonUniqueSections: true,
	AllowShadows:           true,
}

// NetDev is the subset of a .netdev file consumed by discovery.
type NetDev struct {
	Name      string
	Kind      string
	Endpoint  string
	PublicKey string
}

// Network is the subset of a .network file consumed by discovery.
type Network struct {
	MatchNames []string
	Gateway    string
}

// Matches reports whether the [Match] section names the given interface.
// Match.Name holds a space-separated list of interface names.
func (n Network) Matches(iface string) bool {
	for _, name := range n.MatchNames {
		if name == iface {
			return true
		}
	}
	return false
}

// Store holds one directory's interface and route definitions.
// A Store is loaded fresh on every sweep and never caches across sweeps.
type Store struct {
	NetDevs  []NetDev
	Networks []Network
}

// Load reads all .netdev and .network files under dir.
// Unreadable or malformed files are skipped with a warning; only a missing
// directory is an error.
func Load(dir string) (*Store, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("network directory: %w", err)
	}
	s := new(Store)
	for _, path := range globSorted(dir, "*.netdev") {
		nd, err := loadNetDev(path)
		if err != nil {
			zap.S().Warnf("skipping %s: %s", path, err)
			continue
		}
		s.NetDevs = append(s.NetDevs, nd)
	}
	for _, path := range globSorted(dir, "*.network") {
		nw, err := loadNetwork(path)
		if err != nil {
			zap.S().Warnf("skipping %s: %s", path, err)
			continue
		}
		s.Networks = append(s.Networks, nw)
	}
	return s, nil
}

func globSorted(dir, pattern string) []string {
	// filepath.Glob returns lexically sorted paths and only errors on bad
	// patterns, which ours are not.
	paths, _ := filepath.Glob(filepath.Join(dir, pattern))
	return paths
}

func loadNetDev(path string) (NetDev, error) {
	f, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return NetDev{}, err
	}
	var nd NetDev
	if sec, err := f.GetSection("NetDev"); err == nil {
		nd.Name = sec.Key("Name").String()
		nd.Kind = sec.Key("Kind").String()
	}
	// A netdev may carry several [WireGuardPeer] sections; the first one with
	// both an endpoint and a public key wins.
	peers, _ := f.SectionsByName("WireGuardPeer")
	for _, sec := range peers {
		endpoint := sec.Key("Endpoint").String()
		publicKey := sec.Key("PublicKey").String()
		if endpoint == "" || publicKey == "" {
			continue
		}
		nd.Endpoint = endpoint
		nd.PublicKey = publicKey
		break
	}
	return nd, nil
}

func loadNetwork(path string) (Network, error) {
	f, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return Network{}, err
	}
	var nw Network
	if sec, err := f.GetSection("Match"); err == nil {
		nw.MatchNames = strings.Fields(sec.Key("Name").String())
	}
	routes, _ := f.SectionsByName("Route")
	for _, sec := range routes {
		if gw := sec.Key("Gateway").String(); gw != "" {
			nw.Gateway = gw
			break
		}
	}
	return nw, nil
}
