// Package watch runs the watchdog sweep: discover WireGuard clients, detect
// stale dynamic-DNS endpoints, and re-apply peer endpoints as needed.
package watch

import (
	"net"
	"time"

	"go.uber.org/zap"

	"dynwg/cache"
	"dynwg/journal"
	"dynwg/netcfg"
)

// Sweeper ties discovery, the cache, and the collaborators into one sweep.
// It owns the cache for the duration of a sweep; sweeps never run
// concurrently.
type Sweeper struct {
	NetworkDir   string
	Cache        *cache.Cache
	Journal      *journal.Journal // nil disables journaling
	Resolver     Resolver
	Pinger       Pinger
	Resetter     Resetter
	CheckGateway bool
}

// Sweep runs one full discovery → check → reset → persist cycle. Per-client
// failures are logged and absorbed; the cache is persisted on every exit
// path. The returned summary is for reporting only.
func (s *Sweeper) Sweep() journal.Summary {
	sum := journal.Summary{StartedAt: time.Now()}
	s.Cache.Load()
	defer func() {
		if err := s.Cache.Persist(false); err != nil {
			zap.S().Errorf("persisting cache failed: %s. The next sweep may trigger spurious resets.", err)
		}
	}()
	store, err := netcfg.Load(s.NetworkDir)
	if err != nil {
		zap.S().Errorf("discovery failed: %s", err)
		sum.FinishedAt = time.Now()
		return sum
	}
	clients := store.Clients()
	sum.Clients = len(clients)
	for _, client := range clients {
		zap.S().Infof("checking %s.", client.Interface)
		o := s.check(client)
		if o.Reset {
			sum.Resets++
		}
		if o.Err != "" {
			sum.Failures++
		}
		if err := s.Journal.RecordOutcome(o); err != nil {
			zap.S().Warnf("journal: recording %s failed: %s", client.Interface, err)
		}
	}
	sum.FinishedAt = time.Now()
	if err := s.Journal.RecordSummary(sum); err != nil {
		zap.S().Warnf("journal: recording sweep summary failed: %s", err)
	}
	return sum
}

// check applies the per-client decision policy: re-resolve the endpoint's
// hostname, compare against the cache, and reset the peer when the address
// changed or (if enabled) the gateway stopped answering.
func (s *Sweeper) check(client netcfg.Client) journal.Outcome {
	o := journal.Outcome{
		Interface: client.Interface,
		Hostname:  client.Hostname(),
		CheckedAt: time.Now(),
	}
	endpoint := client.Endpoint
	currentIP, err := s.Resolver.Resolve(o.Hostname)
	if err != nil {
		// No fresh address to compare or reset to. The gateway check below
		// may still force a reset using the configured endpoint.
		zap.S().Errorf("cannot resolve hostname %q: %s", o.Hostname, err)
		o.Err = err.Error()
	} else {
		o.ResolvedIP = currentIP
		cachedIP, known := s.Cache.Get(o.Hostname)
		s.Cache.Set(o.Hostname, currentIP)
		if !known {
			// First time seen: record only, to avoid a reset storm after a
			// fresh install or cache loss.
			zap.S().Debugf("host %q seen for the first time (%s).", o.Hostname, currentIP)
		} else if cachedIP != currentIP {
			zap.S().Infof("host %q: %s → %s", o.Hostname, cachedIP, currentIP)
			o.Changed = true
		}
		if _, port, err := net.SplitHostPort(client.Endpoint); err == nil {
			endpoint = net.JoinHostPort(currentIP, port)
		}
	}
	needReset := o.Changed
	if !needReset && s.CheckGateway && s.gatewayUnreachable(client) {
		needReset = true
	}
	if !needReset {
		return o
	}
	o.Reset = true
	zap.S().Infof("resetting %s to %s.", client.Interface, endpoint)
	if err := s.Resetter.Reset(client.Interface, client.PublicKey, endpoint); err != nil {
		zap.S().Errorf("resetting %s failed: %s", client.Interface, err)
		o.Err = err.Error()
		return o
	}
	zap.S().Infof("%s: endpoint reset.", client.Interface)
	return o
}

// gatewayUnreachable is fail-safe: a missing gateway or any probe failure
// counts as unreachable, favoring a reset over silent staleness.
func (s *Sweeper) gatewayUnreachable(client netcfg.Client) bool {
	if client.Gateway == "" {
		zap.S().Errorf("%s: no gateway specified, cannot ping; assuming not reachable.", client.Interface)
		return true
	}
	if !s.Pinger.Reachable(client.Gateway) {
		zap.S().Infof("gateway %q is not reachable.", client.Gateway)
		return true
	}
	return false
}
