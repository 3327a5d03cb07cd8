package internal

import (
	"chat-relay/domain"
	"chat-relay/mocks"
	"chat-relay/observability"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type debugFixture struct {
	registry   *mocks.MockIRegistry
	journal    *mocks.MockITransferRepository
	monitoring *observability.MonitoringManager
	server     *DebugServer
}

func newDebugFixture(t *testing.T) *debugFixture {
	ctrl := gomock.NewController(t)
	f := &debugFixture{
		registry:   mocks.NewMockIRegistry(ctrl),
		journal:    mocks.NewMockITransferRepository(ctrl),
		monitoring: observability.NewMonitoringManager(),
	}
	f.server = NewDebugServer(0, f.registry, f.monitoring, f.journal, logs.GetLoggerFromLevel(slog.LevelDebug))
	return f
}

func (f *debugFixture) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestDebugServer_Rooms(t *testing.T) {
	req := require.New(t)
	f := newDebugFixture(t)

	// Given two rooms
	f.registry.EXPECT().Rooms().Return([]domain.RoomInfo{
		{Name: "default", Members: 2},
		{Name: "lobby", Members: 1},
	})

	// When listing rooms
	rec := f.get("/rooms")

	// Then both are returned as JSON
	req.Equal(http.StatusOK, rec.Code)
	var rooms []domain.RoomInfo
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &rooms))
	req.Len(rooms, 2)
	req.Equal(domain.RoomName("lobby"), rooms[1].Name)
}

func TestDebugServer_Stats(t *testing.T) {
	req := require.New(t)
	f := newDebugFixture(t)
	f.monitoring.SessionOpened()
	f.monitoring.IncrChatRelayed()

	rec := f.get("/stats")

	req.Equal(http.StatusOK, rec.Code)
	var stats observability.MonitoringStats
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &stats))
	req.Equal(int64(1), stats.SessionsActive)
	req.Equal(uint64(1), stats.ChatRelayed)
}

func TestDebugServer_Transfers(t *testing.T) {
	req := require.New(t)
	f := newDebugFixture(t)

	// Given a journal holding one transfer
	f.journal.EXPECT().List(5).Return([]domain.TransferRecord{
		{FileName: "report.txt", Received: 5, Status: domain.TransferCompleted},
	}, nil)

	rec := f.get("/transfers?limit=5")

	req.Equal(http.StatusOK, rec.Code)
	var records []domain.TransferRecord
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &records))
	req.Len(records, 1)
	req.Equal("report.txt", records[0].FileName)
}

func TestDebugServer_Transfers_Errors(t *testing.T) {
	req := require.New(t)
	f := newDebugFixture(t)

	// Given an invalid limit
	req.Equal(http.StatusBadRequest, f.get("/transfers?limit=abc").Code)

	// Given a failing journal
	f.journal.EXPECT().List(defaultTransferLimit).Return(nil, fmt.Errorf("closed"))
	req.Equal(http.StatusInternalServerError, f.get("/transfers").Code)
}

func TestDebugServer_Disabled(t *testing.T) {
	req := require.New(t)
	f := newDebugFixture(t)

	// A zero port returns at once
	req.NoError(f.server.Run(context.Background()))
}

func TestDebugServer_Bind_Failure_Is_Not_Fatal(t *testing.T) {
	req := require.New(t)
	f := newDebugFixture(t)

	// Given the debug port is already taken
	taken, err := net.Listen("tcp", "0.0.0.0:0")
	req.NoError(err)
	defer taken.Close()
	server := NewDebugServer(taken.Addr().(*net.TCPAddr).Port, f.registry, f.monitoring, f.journal,
		logs.GetLoggerFromLevel(slog.LevelDebug))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Then Run gives up at once without reporting an error
	req.NoError(server.Run(ctx))
	req.NoError(ctx.Err())
}
