package app

import (
	"context"
	"time"

	"github.com/five82/tabshelf/internal/host"
	"github.com/five82/tabshelf/internal/logging"
	"github.com/five82/tabshelf/internal/state"
	"pkt.systems/pslog"
)

const (
	defaultPollInterval    = 2 * time.Second
	defaultTransientReload = 3 * time.Second
	maxBackoff             = 30 * time.Second
)

// MonitorOptions tune the live tab monitor.
type MonitorOptions struct {
	Interval        time.Duration
	StartDelay      time.Duration
	TransientReload time.Duration
}

// Monitor keeps a state.Store in sync with the browser's tabs.
type Monitor struct {
	store *state.Store
	host  host.Provider
	opts  MonitorOptions
	log   pslog.Logger
	kick  chan struct{}
}

// NewMonitor returns a monitor that is not yet running.
func NewMonitor(store *state.Store, provider host.Provider, opts MonitorOptions, logger pslog.Logger) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = defaultPollInterval
	}
	if opts.StartDelay < 0 {
		opts.StartDelay = 0
	}
	if opts.TransientReload <= 0 {
		opts.TransientReload = defaultTransientReload
	}
	return &Monitor{
		store: store,
		host:  provider,
		opts:  opts,
		log:   logging.OrDiscard(logger).With("component", "monitor"),
		kick:  make(chan struct{}, 1),
	}
}

// Start launches the poll loop in the background. It returns immediately.
func (m *Monitor) Start(ctx context.Context) {
	go m.run(ctx)
}

// Refresh asks the loop to poll now. It never blocks.
func (m *Monitor) Refresh() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

func (m *Monitor) run(ctx context.Context) {
	timer := time.NewTimer(m.opts.StartDelay)
	defer timer.Stop()

	transientPending := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-m.kick:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		m.refresh(ctx)
		snap := m.store.Snapshot()
		wait := calculateBackoff(snap.ConsecutiveFailures, m.opts.Interval)
		switch {
		case snap.HasTransient() && !transientPending:
			transientPending = true
			if m.opts.TransientReload < wait {
				wait = m.opts.TransientReload
			}
			m.log.Debug("transient tab seen, scheduling reload", "in", m.opts.TransientReload)
		case !snap.HasTransient():
			transientPending = false
		}
		timer.Reset(wait)
	}
}

// refresh polls the host once. It reports whether the snapshot changed.
func (m *Monitor) refresh(ctx context.Context) bool {
	tabs, err := m.host.QueryTabs(ctx, host.Query{})
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		m.log.Warn("tab poll failed", "err", err)
		m.store.Update(nil, err)
		return false
	}
	return m.store.Update(tabs, nil)
}

// calculateBackoff doubles base for each consecutive failure, capped at
// maxBackoff. Zero or negative failures return base.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for range failures {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
