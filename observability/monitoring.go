package observability

import (
	"runtime"
	"sync/atomic"
	"time"
)

// MonitoringStats aggregates relay metrics for logs and the debug endpoint
type MonitoringStats struct {
	SessionsAccepted uint64    `json:"sessions_accepted"`
	SessionsActive   int64     `json:"sessions_active"`
	ChatRelayed      uint64    `json:"chat_relayed"`
	Joins            uint64    `json:"joins"`
	FilesCompleted   uint64    `json:"files_completed"`
	FilesFailed      uint64    `json:"files_failed"`
	BytesReceived    uint64    `json:"bytes_received"`
	ProtocolFaults   uint64    `json:"protocol_faults"`
	AllocMemMb       uint64    `json:"alloc_mem_mb"`
	NumGoroutine     int       `json:"num_goroutine"`
	StartedAt        time.Time `json:"started_at"`
}

// MonitoringManager holds process-wide counters, all updated atomically
type MonitoringManager struct {
	startedAt        time.Time
	sessionsAccepted atomic.Uint64
	sessionsActive   atomic.Int64
	chatRelayed      atomic.Uint64
	joins            atomic.Uint64
	filesCompleted   atomic.Uint64
	filesFailed      atomic.Uint64
	bytesReceived    atomic.Uint64
	protocolFaults   atomic.Uint64
}

func NewMonitoringManager() *MonitoringManager {
	return &MonitoringManager{startedAt: time.Now().UTC()}
}

func (mm *MonitoringManager) SessionOpened() {
	mm.sessionsAccepted.Add(1)
	mm.sessionsActive.Add(1)
}

func (mm *MonitoringManager) SessionClosed() {
	mm.sessionsActive.Add(-1)
}

func (mm *MonitoringManager) IncrChatRelayed() {
	mm.chatRelayed.Add(1)
}

func (mm *MonitoringManager) IncrJoins() {
	mm.joins.Add(1)
}

func (mm *MonitoringManager) IncrProtocolFaults() {
	mm.protocolFaults.Add(1)
}

// FileCompleted records a fully received frame of n bytes
func (mm *MonitoringManager) FileCompleted(n uint64) {
	mm.filesCompleted.Add(1)
	mm.bytesReceived.Add(n)
}

// FileFailed records an aborted frame, n being the bytes read before the failure
func (mm *MonitoringManager) FileFailed(n uint64) {
	mm.filesFailed.Add(1)
	mm.bytesReceived.Add(n)
}

func (mm *MonitoringManager) Snapshot() MonitoringStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MonitoringStats{
		SessionsAccepted: mm.sessionsAccepted.Load(),
		SessionsActive:   mm.sessionsActive.Load(),
		ChatRelayed:      mm.chatRelayed.Load(),
		Joins:            mm.joins.Load(),
		FilesCompleted:   mm.filesCompleted.Load(),
		FilesFailed:      mm.filesFailed.Load(),
		BytesReceived:    mm.bytesReceived.Load(),
		ProtocolFaults:   mm.protocolFaults.Load(),
		AllocMemMb:       m.Alloc / 1024 / 1024,
		NumGoroutine:     runtime.NumGoroutine(),
		StartedAt:        mm.startedAt,
	}
}
