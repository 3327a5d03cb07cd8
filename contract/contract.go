//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
	"io"
	"reflect"
	"time"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context) error
	Spawn(ctx context.Context, worker Worker)
	Stop()
	Wait(timeout time.Duration) bool
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Member is the registry's handle on a session.
// The registry only sends through it and never owns the transport behind it.
type Member interface {
	ID() string
	Send(line string) error
}

// Uploader is a member able to announce a file frame.
type Uploader interface {
	Member
	Username() string
}

type IRegistry interface {
	Join(member Member, room domain.RoomName)
	Leave(member Member)
	Broadcast(room domain.RoomName, sender Member, text string, isFileNotice bool)
	RoomOf(member Member) (domain.RoomName, bool)
	Rooms() []domain.RoomInfo
}

type IFileTransferHandler interface {
	Receive(ctx context.Context, sender Uploader, fileName string, stream io.Reader) error
}

type IFileStore interface {
	// Create truncates or creates the file backing fileName and returns its path.
	Create(fileName string) (io.WriteCloser, string, error)
	Remove(path string) error
}

type ITransferRepository interface {
	Store(record domain.TransferRecord) error
	List(limit int) ([]domain.TransferRecord, error)
}

type ICensor interface {
	Censor(original string) string
}
