package errors

import (
	"context"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsExpectedCloseError(t *testing.T) {
	req := require.New(t)

	for _, err := range []error{
		io.EOF,
		net.ErrClosed,
		io.ErrClosedPipe,
		context.Canceled,
		fmt.Errorf("read: %w", syscall.ECONNRESET),
		fmt.Errorf("write: %w", syscall.EPIPE),
	} {
		req.True(IsExpectedCloseError(err), "%v", err)
	}

	req.False(IsExpectedCloseError(nil))
	req.False(IsExpectedCloseError(ErrShortFrame))
	req.False(IsExpectedCloseError(fmt.Errorf("disk full")))
}

func TestIsProtocolFault(t *testing.T) {
	req := require.New(t)

	for _, err := range []error{ErrMissingArgument, ErrShortFrame, ErrInvalidFileName, ErrFileTooLarge, ErrLineTooLong} {
		req.True(IsProtocolFault(fmt.Errorf("wrapped: %w", err)), "%v", err)
	}
	req.False(IsProtocolFault(io.EOF))
}
