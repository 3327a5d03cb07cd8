package errors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrMissingArgument = fmt.Errorf("command requires an argument")
	ErrShortFrame      = fmt.Errorf("binary frame shorter than announced length")
	ErrInvalidFileName = fmt.Errorf("file name must be a single path element")
	ErrFileTooLarge    = fmt.Errorf("announced file size exceeds limit")
	ErrLineTooLong     = fmt.Errorf("line exceeds maximum length")
	ErrSessionClosed   = fmt.Errorf("session closed")
	ErrInvalidCensor   = fmt.Errorf("censor character must be a single rune")
	ErrNoJournalPath   = fmt.Errorf("no journal path: the relay keeps its journal in memory unless BADGER_FILEPATH is set")
)

// IsExpectedCloseError reports whether err is a normal transport termination:
// EOF, closed connection, broken pipe, connection reset or server shutdown.
func IsExpectedCloseError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, context.Canceled) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EPIPE || errno == syscall.ECONNRESET
	}
	return false
}

// IsWorkerPanic reports whether err comes from a recovered worker panic.
func IsWorkerPanic(err error) bool {
	return errors.Is(err, ErrWorkerPanic)
}

// IsProtocolFault reports whether err was caused by a client breaking the wire grammar.
func IsProtocolFault(err error) bool {
	return errors.Is(err, ErrMissingArgument) ||
		errors.Is(err, ErrShortFrame) ||
		errors.Is(err, ErrInvalidFileName) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrLineTooLong)
}
