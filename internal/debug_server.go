package internal

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/observability"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultTransferLimit = 20
	shutdownGrace        = 2 * time.Second
)

// DebugServer exposes relay state as JSON for operators.
// A zero port disables it.
type DebugServer struct {
	port       int
	registry   contract.IRegistry
	monitoring *observability.MonitoringManager
	journal    contract.ITransferRepository
	log        *slog.Logger
}

func NewDebugServer(
	port int,
	registry contract.IRegistry,
	monitoring *observability.MonitoringManager,
	journal contract.ITransferRepository,
	log *slog.Logger,
) *DebugServer {
	return &DebugServer{
		port:       port,
		registry:   registry,
		monitoring: monitoring,
		journal:    journal,
		log:        log,
	}
}

func (d *DebugServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.monitoring.Snapshot())
	})
	mux.HandleFunc("GET /rooms", func(w http.ResponseWriter, r *http.Request) {
		rooms := d.registry.Rooms()
		if rooms == nil {
			rooms = []domain.RoomInfo{}
		}
		writeJSON(w, rooms)
	})
	mux.HandleFunc("GET /transfers", d.transfers)
	return mux
}

func (d *DebugServer) transfers(w http.ResponseWriter, r *http.Request) {
	limit := defaultTransferLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	records := []domain.TransferRecord{}
	if d.journal != nil {
		list, err := d.journal.List(limit)
		if err != nil {
			d.log.Error("Unable to list transfers", "error", err)
			http.Error(w, "journal unavailable", http.StatusInternalServerError)
			return
		}
		records = append(records, list...)
	}
	writeJSON(w, records)
}

// Run serves until ctx is done. A bind failure is logged and ends only this worker.
func (d *DebugServer) Run(ctx context.Context) error {
	if d.port == 0 {
		d.log.Debug("Debug server disabled")
		return nil
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", d.port),
		Handler:           d.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errChan := make(chan error, 1)
	go func() {
		d.log.Info("Starting debug server", "address", srv.Addr)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			d.log.Warn("Debug server shutdown", "error", err)
		}
		<-errChan
		return nil
	case err := <-errChan:
		// Diagnostics are optional: a bind failure never stops the relay
		if !errors.Is(err, http.ErrServerClosed) {
			d.log.Error("Debug server unavailable", "address", srv.Addr, "error", err)
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
