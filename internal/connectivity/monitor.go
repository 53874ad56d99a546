// Package connectivity tracks whether the remote endpoint is reachable.
package connectivity

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ProbeTimeout bounds a single reachability check.
const ProbeTimeout = 3 * time.Second

// Probe checks reachability; a nil error means online.
type Probe func(ctx context.Context) error

// Monitor exposes the last observed reachability as a boolean signal.
type Monitor struct {
	probe  Probe
	log    *zap.Logger
	online atomic.Bool

	mu        sync.Mutex
	listeners []func(bool)
}

func NewMonitor(probe Probe, log *zap.Logger) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{probe: probe, log: log}
}

// Online reports the last observed state. A fresh monitor is offline until
// the first successful probe.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// OnChange registers a callback invoked after each state transition.
func (m *Monitor) OnChange(fn func(online bool)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Set forces the state, e.g. after a request fails at the transport level.
func (m *Monitor) Set(online bool) {
	if m.online.Swap(online) == online {
		return
	}
	m.log.Info("connectivity changed", zap.Bool("online", online))

	m.mu.Lock()
	listeners := slices.Clone(m.listeners)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(online)
	}
}

// Check runs one probe and records its outcome.
func (m *Monitor) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	err := m.probe(ctx)
	cancel()

	if err != nil {
		m.log.Debug("probe failed", zap.Error(err))
	}
	m.Set(err == nil)
	return err == nil
}

// Run probes immediately and then on every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	m.Check(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}
