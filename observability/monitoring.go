// Package observability aggregates runtime counters for the debug
// endpoint and the ops viewer.
package observability

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/mem"
)

// Stats is the snapshot served by the debug endpoint.
type Stats struct {
	MessagesSent          uint64  `json:"messages_sent"`
	EventsPublished       uint64  `json:"events_published"`
	EventsDropped         uint64  `json:"events_dropped"`
	BroadcastFailures     uint64  `json:"broadcast_failures"`
	NotificationsSent     uint64  `json:"notifications_sent"`
	ConnectedSessions     int64   `json:"connected_sessions"`
	Goroutines            int     `json:"goroutines"`
	AllocMemMb            uint64  `json:"alloc_mem_mb"`
	NumGC                 uint32  `json:"num_gc"`
	SystemMemUsedPercent  float64 `json:"system_mem_used_percent"`
	UptimeSeconds         float64 `json:"uptime_seconds"`
}

// Metrics collects atomic counters from the bus, the services and the
// gateways. All methods are safe for concurrent use.
type Metrics struct {
	log     *slog.Logger
	mu      sync.RWMutex
	latest  Stats
	started time.Time

	messagesSent      uint64
	eventsPublished   uint64
	eventsDropped     uint64
	broadcastFailures uint64
	notificationsSent uint64
	connectedSessions int64
}

func NewMetrics(log *slog.Logger) *Metrics {
	return &Metrics{log: log, started: time.Now()}
}

func (m *Metrics) IncrMessagesSent()      { atomic.AddUint64(&m.messagesSent, 1) }
func (m *Metrics) IncrEventsPublished()   { atomic.AddUint64(&m.eventsPublished, 1) }
func (m *Metrics) IncrEventsDropped()     { atomic.AddUint64(&m.eventsDropped, 1) }
func (m *Metrics) IncrBroadcastFailures() { atomic.AddUint64(&m.broadcastFailures, 1) }
func (m *Metrics) IncrNotificationsSent() { atomic.AddUint64(&m.notificationsSent, 1) }
func (m *Metrics) SessionOpened()         { atomic.AddInt64(&m.connectedSessions, 1) }
func (m *Metrics) SessionClosed()         { atomic.AddInt64(&m.connectedSessions, -1) }

// Snapshot returns the last computed stats.
func (m *Metrics) Snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

// Listen refreshes system stats on a fixed interval until ctx is done.
func (m *Metrics) Listen(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("Monitoring stopped")
			return
		case <-ticker.C:
			m.update()
		}
	}
}

func (m *Metrics) update() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	stats := Stats{
		MessagesSent:      atomic.LoadUint64(&m.messagesSent),
		EventsPublished:   atomic.LoadUint64(&m.eventsPublished),
		EventsDropped:     atomic.LoadUint64(&m.eventsDropped),
		BroadcastFailures: atomic.LoadUint64(&m.broadcastFailures),
		NotificationsSent: atomic.LoadUint64(&m.notificationsSent),
		ConnectedSessions: atomic.LoadInt64(&m.connectedSessions),
		Goroutines:        runtime.NumGoroutine(),
		AllocMemMb:        ms.Alloc / 1024 / 1024,
		NumGC:             ms.NumGC,
		UptimeSeconds:     time.Since(m.started).Seconds(),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.SystemMemUsedPercent = vm.UsedPercent
	}

	m.mu.Lock()
	m.latest = stats
	m.mu.Unlock()
}
