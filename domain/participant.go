// Package domain contains core concepts of the relay.
// This file defines the session protocol states.
// No runtime, network, or UI logic should be added here.
package domain

// SessionState drives the single read loop of a session.
type SessionState int

const (
	AwaitingUsername SessionState = iota
	LineMode
	// FileMode lasts for exactly one length-prefixed frame following a /file line.
	FileMode
	Closed
)

func (s SessionState) String() string {
	switch s {
	case AwaitingUsername:
		return "AWAITING_USERNAME"
	case LineMode:
		return "LINE_MODE"
	case FileMode:
		return "FILE_MODE"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}
