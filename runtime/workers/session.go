package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/observability"
	"chat-relay/protocol"
	"context"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"
)

// SessionWorker owns one client connection and runs its protocol state machine:
// AWAITING_USERNAME -> LINE_MODE <-> FILE_MODE, ending in CLOSED.
// A single read loop drives every state, so the binary region following a
// /file line is never line-split.
type SessionWorker struct {
	id         string
	conn       net.Conn
	reader     *protocol.Reader
	registry   contract.IRegistry
	transfers  contract.IFileTransferHandler
	censor     contract.ICensor
	monitoring *observability.MonitoringManager
	log        *slog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error

	state       domain.SessionState
	username    string
	pendingFile string
}

// NewSessionWorker wraps conn. censor may be nil, in which case chat is relayed verbatim.
func NewSessionWorker(
	conn net.Conn,
	registry contract.IRegistry,
	transfers contract.IFileTransferHandler,
	censor contract.ICensor,
	monitoring *observability.MonitoringManager,
	log *slog.Logger,
) *SessionWorker {
	id := uuid.NewString()
	return &SessionWorker{
		id:         id,
		conn:       conn,
		reader:     protocol.NewReader(conn),
		registry:   registry,
		transfers:  transfers,
		censor:     censor,
		monitoring: monitoring,
		log:        log.With("session", id, "remote", conn.RemoteAddr().String()),
		state:      domain.AwaitingUsername,
	}
}

func (s *SessionWorker) ID() string { return s.id }

func (s *SessionWorker) Username() string { return s.username }

// State is only meaningful once Run has returned or from the Run goroutine itself.
func (s *SessionWorker) State() domain.SessionState { return s.state }

// Send writes one newline-terminated line. Safe for concurrent use.
func (s *SessionWorker) Send(line string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := io.WriteString(s.conn, protocol.FormatLine(line))
	return err
}

// Close releases the transport. Safe to call multiple times.
func (s *SessionWorker) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

// Run reads until /quit, a transport failure or a protocol fault.
// Whatever the cause, the session leaves its room and its transport is closed.
// A clean end (quit, EOF, reset, server shutdown) returns nil.
func (s *SessionWorker) Run(ctx context.Context) (err error) {
	s.monitoring.SessionOpened()
	// Server shutdown unblocks the pending read by closing the transport
	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer func() {
		stop()
		s.registry.Leave(s)
		_ = s.Close()
		s.state = domain.Closed
		s.monitoring.SessionClosed()
		err = s.exit(ctx, err)
	}()

	for s.state != domain.Closed {
		if err := s.step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *SessionWorker) step(ctx context.Context) error {
	switch s.state {
	case domain.AwaitingUsername:
		line, err := s.reader.ReadLine()
		if err != nil {
			return err
		}
		s.username = line
		s.log = s.log.With("username", line)
		s.state = domain.LineMode
		s.log.Info("Username received")
		s.join(domain.DefaultRoom)

	case domain.LineMode:
		line, err := s.reader.ReadLine()
		if err != nil {
			return err
		}
		cmd, err := protocol.Parse(line)
		if err != nil {
			return err
		}
		s.handle(cmd)

	case domain.FileMode:
		// The handler reads the frame straight off the same buffered stream
		err := s.transfers.Receive(ctx, s, s.pendingFile, s.reader)
		s.pendingFile = ""
		if err != nil {
			return err
		}
		s.state = domain.LineMode
	}
	return nil
}

func (s *SessionWorker) handle(cmd domain.Command) {
	switch cmd.Kind {
	case domain.JoinCommand:
		s.join(domain.RoomName(cmd.Argument))
	case domain.FileCommand:
		s.pendingFile = cmd.Argument
		s.state = domain.FileMode
		s.log.Debug("File announced", "file", cmd.Argument)
	case domain.QuitCommand:
		s.state = domain.Closed
		s.log.Info("Quit requested")
	case domain.ChatCommand:
		s.chat(cmd.Argument)
	case domain.EmptyCommand:
	}
}

func (s *SessionWorker) join(room domain.RoomName) {
	s.registry.Join(s, room)
	s.monitoring.IncrJoins()
}

func (s *SessionWorker) chat(text string) {
	if s.censor != nil {
		text = s.censor.Censor(text)
	}
	room, ok := s.registry.RoomOf(s)
	if !ok {
		return
	}
	s.log.Debug("Chat received", "room", room, "text", text)
	s.registry.Broadcast(room, s, text, false)
	s.monitoring.IncrChatRelayed()
}

// exit classifies how the session ended and decides what Run reports.
// Once the server is shutting down, any read or transfer error is a consequence
// of the transport being closed and ends the session cleanly.
func (s *SessionWorker) exit(ctx context.Context, err error) error {
	switch {
	case err == nil:
		s.log.Info("Client disconnected", "reason", "quit")
		return nil
	case ctx.Err() != nil:
		s.log.Info("Client disconnected", "reason", "server shutdown", "error", err)
		return nil
	case errors.IsProtocolFault(err):
		s.monitoring.IncrProtocolFaults()
		s.log.Warn("Client disconnected", "reason", "protocol fault", "error", err)
		return err
	case errors.IsExpectedCloseError(err):
		s.log.Info("Client disconnected", "reason", "connection closed")
		return nil
	default:
		s.log.Error("Client disconnected", "reason", "transport failure", "error", err)
		return err
	}
}
