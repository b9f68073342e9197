package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/five82/tabshelf/internal/host"
	"github.com/five82/tabshelf/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

func TestMonitorRefresh_UpdatesStore(t *testing.T) {
	mem := host.NewMemory()
	mem.AddWindow(host.LiveTab{Title: "A", URL: "http://a.test"})
	store := &state.Store{}
	m := NewMonitor(store, mem, MonitorOptions{}, nil)

	if !m.refresh(context.Background()) {
		t.Fatalf("first refresh reported no change")
	}
	if m.refresh(context.Background()) {
		t.Fatalf("identical refresh reported a change")
	}
	snap := store.Snapshot()
	if len(snap.Tabs) != 1 || snap.Tabs[0].Title != "A" {
		t.Fatalf("Tabs = %+v, want one tab titled A", snap.Tabs)
	}
}

func TestMonitorRefresh_FailureKeepsTabs(t *testing.T) {
	mem := host.NewMemory()
	mem.AddWindow(host.LiveTab{Title: "A", URL: "http://a.test"})
	store := &state.Store{}
	m := NewMonitor(store, mem, MonitorOptions{}, nil)
	m.refresh(context.Background())

	mem.Fail("query tabs", errors.New("browser gone"))
	m.refresh(context.Background())
	m.refresh(context.Background())

	snap := store.Snapshot()
	if snap.ConsecutiveFailures != 2 {
		t.Fatalf("ConsecutiveFailures = %d, want 2", snap.ConsecutiveFailures)
	}
	if !snap.IsOffline() {
		t.Fatalf("IsOffline = false after two failures")
	}
	if len(snap.Tabs) != 1 {
		t.Fatalf("Tabs dropped on failure: %+v", snap.Tabs)
	}
}

func TestMonitorStart_RefreshKick(t *testing.T) {
	mem := host.NewMemory()
	store := &state.Store{}
	m := NewMonitor(store, mem, MonitorOptions{Interval: time.Hour, StartDelay: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	mem.AddWindow(host.LiveTab{Title: "B", URL: "http://b.test"})
	m.Refresh()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if snap := store.Snapshot(); snap.HasTabs && len(snap.Tabs) == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("store not refreshed after Refresh kick")
}

func TestNewMonitor_Defaults(t *testing.T) {
	m := NewMonitor(&state.Store{}, host.NewMemory(), MonitorOptions{StartDelay: -time.Second}, nil)
	if m.opts.Interval != defaultPollInterval {
		t.Fatalf("Interval = %v, want %v", m.opts.Interval, defaultPollInterval)
	}
	if m.opts.StartDelay != 0 {
		t.Fatalf("StartDelay = %v, want 0", m.opts.StartDelay)
	}
	if m.opts.TransientReload != defaultTransientReload {
		t.Fatalf("TransientReload = %v, want %v", m.opts.TransientReload, defaultTransientReload)
	}
}
