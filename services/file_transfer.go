package services

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/observability"
	"chat-relay/protocol"
	"chat-relay/storage"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// sniffLimit matches the number of leading bytes mimetype inspects by default.
const sniffLimit = 3072

// FileTransferService receives the single binary frame following a /file line.
// The bytes only ever go to the store; room members get a text notice.
type FileTransferService struct {
	log         *slog.Logger
	store       contract.IFileStore
	registry    contract.IRegistry
	journal     contract.ITransferRepository
	monitoring  *observability.MonitoringManager
	maxFileSize uint64
}

// NewFileTransferService builds the handler. journal may be nil; maxFileSize 0 means unlimited.
func NewFileTransferService(
	log *slog.Logger,
	store contract.IFileStore,
	registry contract.IRegistry,
	journal contract.ITransferRepository,
	monitoring *observability.MonitoringManager,
	maxFileSize uint64,
) *FileTransferService {
	return &FileTransferService{
		log:         log,
		store:       store,
		registry:    registry,
		journal:     journal,
		monitoring:  monitoring,
		maxFileSize: maxFileSize,
	}
}

// Receive reads the 8-byte length and exactly that many bytes from stream.
// Any error is fatal for the session: on a short read the partial file is removed
// and no notice is broadcast.
func (s *FileTransferService) Receive(ctx context.Context, sender contract.Uploader, fileName string, stream io.Reader) error {
	record := domain.TransferRecord{
		ID:        uuid.New(),
		SessionID: sender.ID(),
		Username:  sender.Username(),
		FileName:  fileName,
	}

	err := s.receive(ctx, &record, stream)
	record.At = time.Now().UTC()
	room, _ := s.registry.RoomOf(sender)
	record.Room = room

	if err != nil {
		record.Status = domain.TransferFailed
		record.Error = err.Error()
		s.monitoring.FileFailed(record.Received)
		s.writeJournal(record)
		s.log.Warn("File transfer aborted", "session", record.SessionID, "file", fileName,
			"announced", record.Announced, "received", record.Received, "error", err)
		return err
	}

	record.Status = domain.TransferCompleted
	s.monitoring.FileCompleted(record.Received)
	s.writeJournal(record)
	s.log.Info("File received", "session", record.SessionID, "room", room, "file", fileName,
		"size", record.Received, "mime", record.MimeType, "blake3", record.Digest)

	s.registry.Broadcast(room, nil, fileName, true)
	return nil
}

func (s *FileTransferService) receive(ctx context.Context, record *domain.TransferRecord, stream io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.ValidateFileName(record.FileName); err != nil {
		return err
	}

	size, err := protocol.ReadFrameLength(stream)
	if err != nil {
		return err
	}
	record.Announced = size
	if size > math.MaxInt64 || (s.maxFileSize > 0 && size > s.maxFileSize) {
		return fmt.Errorf("%s announced %d bytes: %w", record.FileName, size, errors.ErrFileTooLarge)
	}

	file, path, err := s.store.Create(record.FileName)
	if err != nil {
		return fmt.Errorf("creating %s: %w", record.FileName, err)
	}
	record.StoredPath = path

	hasher := blake3.New()
	head := &headCapture{limit: sniffLimit}
	n, copyErr := io.Copy(io.MultiWriter(file, hasher, head), io.LimitReader(stream, int64(size)))
	record.Received = uint64(n)
	closeErr := file.Close()

	switch {
	case copyErr != nil:
		err = fmt.Errorf("%s after %d of %d bytes: %w: %w", record.FileName, n, size, errors.ErrShortFrame, copyErr)
	case uint64(n) < size:
		err = fmt.Errorf("%s after %d of %d bytes: %w", record.FileName, n, size, errors.ErrShortFrame)
	case closeErr != nil:
		err = fmt.Errorf("closing %s: %w", path, closeErr)
	}
	if err != nil {
		if removeErr := s.store.Remove(path); removeErr != nil {
			s.log.Error("Partial file not removed", "path", path, "error", removeErr)
		}
		record.StoredPath = ""
		return err
	}

	record.Digest = hex.EncodeToString(hasher.Sum(nil))
	record.MimeType = mimetype.Detect(head.buf).String()
	return nil
}

func (s *FileTransferService) writeJournal(record domain.TransferRecord) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Store(record); err != nil {
		s.log.Error("Transfer journal write failed", "id", record.ID, "error", err)
	}
}

// headCapture keeps the first bytes written through it for content sniffing.
type headCapture struct {
	buf   []byte
	limit int
}

func (h *headCapture) Write(p []byte) (int, error) {
	if room := h.limit - len(h.buf); room > 0 {
		h.buf = append(h.buf, p[:min(room, len(p))]...)
	}
	return len(p), nil
}
