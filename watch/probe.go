package watch

import (
	"os/exec"
	"strconv"
	"time"
)

// Pinger reports whether an address answers ICMP echo requests.
type Pinger interface {
	Reachable(addr string) bool
}

// PingCommand probes reachability with the system ping binary.
// The command used is: ping -c <count> -W <timeout> -- <addr>
type PingCommand struct {
	// Count is the number of echo requests per probe.
	Count int
	// Timeout bounds the wait for each reply.
	Timeout time.Duration
}

// Reachable runs the ping command against addr. Any failure (host
// unreachable, timeout, missing binary) counts as unreachable.
func (p PingCommand) Reachable(addr string) bool {
	count := p.Count
	if count <= 0 {
		count = 3
	}
	seconds := int(p.Timeout / time.Second)
	if seconds <= 0 {
		seconds = 3
	}
	cmd := exec.Command("ping", "-c", strconv.Itoa(count), "-W", strconv.Itoa(seconds), "--", addr)
	return cmd.Run() == nil
}
