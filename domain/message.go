// Package domain contains core concepts of the relay.
// This file defines the outbound message envelope and the fixed server lines.
package domain

import "fmt"

const (
	// FileNoticePrefix marks a broadcast produced by a completed file transfer.
	FileNoticePrefix = "File received: "
	joinConfirmation = "You joined room: %s"
)

type MessageKind int

const (
	Chat MessageKind = iota
	JoinNotice
	FileNotice
)

func (k MessageKind) String() string {
	switch k {
	case Chat:
		return "chat"
	case JoinNotice:
		return "join"
	case FileNotice:
		return "file"
	default:
		return "unknown"
	}
}

// Envelope describes what the registry emits. On the wire it is always a single line.
type Envelope struct {
	Kind MessageKind
	Room RoomName
	Text string
}

// Line renders the envelope as the text sent to a peer, without the trailing newline.
func (e Envelope) Line() string {
	switch e.Kind {
	case FileNotice:
		return FileNoticePrefix + e.Text
	case JoinNotice:
		return fmt.Sprintf(joinConfirmation, e.Room)
	default:
		return e.Text
	}
}
