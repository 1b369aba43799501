package netcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const wg0NetDev = `[NetDev]
Name=wg0
Kind=wireguard

[WireGuard]
PrivateKey=cGxhY2Vob2xkZXIta2V5LW5vdC1yZWFsLXh4eHh4eHg=

[WireGuardPeer]
PublicKey=pub0
Endpoint=vpn.example.com:51820
AllowedIPs=0.0.0.0/0
`

func TestDiscover(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"10-wg0.netdev": wg0NetDev,
		"20-br0.netdev": "[NetDev]\nName=br0\nKind=bridge\n",
		"30-wg1.netdev": "[NetDev]\nName=wg1\nKind=wireguard\n\n[WireGuardPeer]\nPublicKey=pub1\n",
		"10-wg0.network": `[Match]
Name=wg0

[Route]
Gateway=10.8.0.1
Destination=0.0.0.0/0
`,
	})
	clients, err := Discover(dir)
	if err != nil {
		t.Fatalf("discover: %s", err)
	}
	want := []Client{{
		Interface: "wg0",
		PublicKey: "pub0",
		Endpoint:  "vpn.example.com:51820",
		Gateway:   "10.8.0.1",
	}}
	if diff := cmp.Diff(want, clients); diff != "" {
		t.Fatalf("clients mismatch:\n%s", diff)
	}
}

func TestDiscoverSkipsMalformedFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"00-broken.netdev": "[NetDev\nName=wg9\n",
		"10-wg0.netdev":    wg0NetDev,
	})
	clients, err := Discover(dir)
	if err != nil {
		t.Fatalf("discover: %s", err)
	}
	if len(clients) != 1 || clients[0].Interface != "wg0" {
		t.Fatalf("want only wg0, got %v", clients)
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nonexistent"))
	if err == nil {
		t.Fatal("want error for missing directory")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		nd   NetDev
		want Classification
	}{
		{"client", NetDev{Name: "wg0", Kind: "wireguard", Endpoint: "vpn.example.com:51820", PublicKey: "pub"}, ClassClient},
		{"missing kind", NetDev{Name: "eth0"}, ClassNotWireGuard},
		{"other kind", NetDev{Name: "br0", Kind: "bridge"}, ClassNotWireGuard},
		{"no endpoint", NetDev{Name: "wg0", Kind: "wireguard", PublicKey: "pub"}, ClassIncomplete},
		{"no public key", NetDev{Name: "wg0", Kind: "wireguard", Endpoint: "vpn.example.com:51820"}, ClassIncomplete},
		{"no name", NetDev{Kind: "wireguard", Endpoint: "vpn.example.com:51820", PublicKey: "pub"}, ClassIncomplete},
	}
	for _, tt := range tests {
		if got := Classify(tt.nd); got != tt.want {
			t.Errorf("%s: Classify = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestGatewayFor(t *testing.T) {
	s := &Store{Networks: []Network{
		{MatchNames: []string{"eth0"}, Gateway: "192.168.1.1"},
		{MatchNames: []string{"wg0", "wg1"}, Gateway: "10.8.0.1"},
		{MatchNames: []string{"wg0"}, Gateway: "10.9.0.1"},
		{MatchNames: []string{"wg2"}},
	}}
	// First matching route with a gateway wins.
	if got := s.GatewayFor("wg0"); got != "10.8.0.1" {
		t.Errorf("GatewayFor(wg0) = %q; want 10.8.0.1", got)
	}
	// Match.Name is a space-separated list.
	if got := s.GatewayFor("wg1"); got != "10.8.0.1" {
		t.Errorf("GatewayFor(wg1) = %q; want 10.8.0.1", got)
	}
	// A matching route without a gateway yields nothing.
	if got := s.GatewayFor("wg2"); got != "" {
		t.Errorf("GatewayFor(wg2) = %q; want empty", got)
	}
}

func TestHostname(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{"vpn.example.com:51820", "vpn.example.com"},
		{"192.0.2.1:51820", "192.0.2.1"},
		{"[2001:db8::1]:51820", "2001:db8::1"},
		{"noport.example.com", "noport.example.com"},
	}
	for _, tt := range tests {
		c := Client{Endpoint: tt.endpoint}
		if got := c.Hostname(); got != tt.want {
			t.Errorf("Hostname(%q) = %q; want %q", tt.endpoint, got, tt.want)
		}
	}
}

func TestMultiplePeerSections(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"10-wg0.netdev": `[NetDev]
Name=wg0
Kind=wireguard

[WireGuardPeer]
PublicKey=pub-a

[WireGuardPeer]
PublicKey=pub-b
Endpoint=vpn.example.com:51820
`,
	})
	clients, err := Discover(dir)
	if err != nil {
		t.Fatalf("discover: %s", err)
	}
	if len(clients) != 1 {
		t.Fatalf("want one client, got %v", clients)
	}
	// The first peer section carrying both fields wins.
	if clients[0].PublicKey != "pub-b" {
		t.Errorf("PublicKey = %q; want pub-b", clients[0].PublicKey)
	}
}
