package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReceivedFilePrefix is prepended to the announced name of every persisted upload.
const ReceivedFilePrefix = "received_"

type TransferStatus string

const (
	TransferCompleted TransferStatus = "completed"
	TransferFailed    TransferStatus = "failed"
)

// TransferRecord is the journal entry written for every file frame the server consumed.
type TransferRecord struct {
	ID         uuid.UUID      `cbor:"id" json:"id"`
	Room       RoomName       `cbor:"room" json:"room"`
	SessionID  string         `cbor:"session_id" json:"session_id"`
	Username   string         `cbor:"username" json:"username"`
	FileName   string         `cbor:"file_name" json:"file_name"`
	StoredPath string         `cbor:"stored_path,omitempty" json:"stored_path,omitempty"`
	Announced  uint64         `cbor:"announced" json:"announced"`
	Received   uint64         `cbor:"received" json:"received"`
	Digest     string         `cbor:"digest,omitempty" json:"digest,omitempty"`
	MimeType   string         `cbor:"mime_type,omitempty" json:"mime_type,omitempty"`
	Status     TransferStatus `cbor:"status" json:"status"`
	Error      string         `cbor:"error,omitempty" json:"error,omitempty"`
	At         time.Time      `cbor:"at" json:"at"`
}
