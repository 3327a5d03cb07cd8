package workers

import (
	"chat-relay/contract"
	"context"
	"fmt"
	"log/slog"
	"net"
)

// SessionFactory builds the worker serving one accepted connection.
type SessionFactory func(conn net.Conn) contract.Worker

// AcceptorWorker accepts connections and spawns one session per connection.
// An accept failure outside shutdown ends the worker with an error, which the
// supervisor treats as fatal.
type AcceptorWorker struct {
	listener   net.Listener
	supervisor contract.ISupervisor
	newSession SessionFactory
	log        *slog.Logger
}

func NewAcceptorWorker(
	listener net.Listener,
	supervisor contract.ISupervisor,
	newSession SessionFactory,
	log *slog.Logger,
) *AcceptorWorker {
	return &AcceptorWorker{
		listener:   listener,
		supervisor: supervisor,
		newSession: newSession,
		log:        log,
	}
}

func (w *AcceptorWorker) Run(ctx context.Context) error {
	addr := w.listener.Addr().String()
	stop := context.AfterFunc(ctx, func() { _ = w.listener.Close() })
	defer stop()

	w.log.Info("Server listening", "address", addr)
	for {
		conn, err := w.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				w.log.Info("Server stopped accepting", "address", addr)
				return nil
			}
			return fmt.Errorf("accepting on %s: %w", addr, err)
		}
		w.log.Info("Client connected", "remote", conn.RemoteAddr().String())
		w.supervisor.Spawn(ctx, w.newSession(conn))
	}
}
