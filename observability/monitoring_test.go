package observability

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonitoringManager_Snapshot(t *testing.T) {
	req := require.New(t)
	mm := NewMonitoringManager()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mm.SessionOpened()
			mm.IncrJoins()
			mm.IncrChatRelayed()
		}()
	}
	wg.Wait()
	mm.SessionClosed()
	mm.FileCompleted(5)
	mm.FileFailed(3)
	mm.IncrProtocolFaults()

	stats := mm.Snapshot()
	req.Equal(uint64(10), stats.SessionsAccepted)
	req.Equal(int64(9), stats.SessionsActive)
	req.Equal(uint64(10), stats.Joins)
	req.Equal(uint64(10), stats.ChatRelayed)
	req.Equal(uint64(1), stats.FilesCompleted)
	req.Equal(uint64(1), stats.FilesFailed)
	req.Equal(uint64(8), stats.BytesReceived)
	req.Equal(uint64(1), stats.ProtocolFaults)
	req.False(stats.StartedAt.IsZero())
}
