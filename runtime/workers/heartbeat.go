package workers

import (
	"chat-relay/contract"
	"chat-relay/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HeartbeatWorker periodically logs relay counters alongside process health.
type HeartbeatWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	registry   contract.IRegistry
	interval   time.Duration
}

func NewHeartbeatWorker(
	log *slog.Logger,
	monitoring *observability.MonitoringManager,
	registry contract.IRegistry,
	interval time.Duration,
) *HeartbeatWorker {
	return &HeartbeatWorker{
		log:        log,
		monitoring: monitoring,
		registry:   registry,
		interval:   interval,
	}
}

// Run logs one heartbeat per interval. A non-positive interval disables it.
func (w *HeartbeatWorker) Run(ctx context.Context) error {
	if w.interval <= 0 {
		w.log.Debug("Heartbeat disabled")
		return nil
	}
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		w.log.Warn("Process stats unavailable", "error", err)
		p = nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.beat(p)
		}
	}
}

func (w *HeartbeatWorker) beat(p *process.Process) {
	stats := w.monitoring.Snapshot()
	attrs := []any{
		"rooms", len(w.registry.Rooms()),
		"sessions_active", stats.SessionsActive,
		"chat_relayed", stats.ChatRelayed,
		"files_completed", stats.FilesCompleted,
		"files_failed", stats.FilesFailed,
		"protocol_faults", stats.ProtocolFaults,
	}
	if p != nil {
		rss, cpu, status, err := getSelfStats(p)
		if err != nil {
			w.log.Error("Failed to collect self stats", "error", err)
		} else {
			attrs = append(attrs, "pid", p.Pid, "pid_status", status, "cpu_percent", cpu, "ram_bytes", rss)
		}
	}
	w.log.Info("Relay heartbeat", attrs...)
}

// getSelfStats retrieves memory, CPU and OS status for the given process.
func getSelfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
