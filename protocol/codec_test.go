package protocol

import (
	"bytes"
	"chat-relay/domain"
	"chat-relay/errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected domain.Command
	}{
		{"Chat text", "hello", domain.Command{Kind: domain.ChatCommand, Argument: "hello"}},
		{"Empty line", "", domain.Command{Kind: domain.EmptyCommand}},
		{"Join", "/join lobby", domain.Command{Kind: domain.JoinCommand, Argument: "lobby"}},
		{"Join keeps everything after first space", "/join big room", domain.Command{Kind: domain.JoinCommand, Argument: "big room"}},
		{"File", "/file report.txt", domain.Command{Kind: domain.FileCommand, Argument: "report.txt"}},
		{"Quit", "/quit", domain.Command{Kind: domain.QuitCommand}},
		{"Quit with argument is chat", "/quit now", domain.Command{Kind: domain.ChatCommand, Argument: "/quit now"}},
		{"Unknown slash word is chat", "/joined lobby", domain.Command{Kind: domain.ChatCommand, Argument: "/joined lobby"}},
		{"Case sensitive command words", "/JOIN lobby", domain.Command{Kind: domain.ChatCommand, Argument: "/JOIN lobby"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.line)
			require.NoError(t, err)
			require.Equal(t, tt.expected, cmd)
		})
	}
}

func TestParse_MissingArgument(t *testing.T) {
	for _, line := range []string{"/join", "/join ", "/file", "/file "} {
		_, err := Parse(line)
		require.ErrorIs(t, err, errors.ErrMissingArgument, line)
		require.True(t, errors.IsProtocolFault(err))
	}
}

func TestReader_ReadLine(t *testing.T) {
	req := require.New(t)
	r := NewReader(strings.NewReader("alice\r\nhello\nlast"))

	line, err := r.ReadLine()
	req.NoError(err)
	req.Equal("alice", line)

	line, err = r.ReadLine()
	req.NoError(err)
	req.Equal("hello", line)

	// Then the unterminated tail is still delivered before EOF
	line, err = r.ReadLine()
	req.NoError(err)
	req.Equal("last", line)

	_, err = r.ReadLine()
	req.ErrorIs(err, io.EOF)
}

func TestReader_FrameBetweenLines(t *testing.T) {
	req := require.New(t)
	payload := []byte("line one\nline two\n\x00\xff")

	// Given a /file line, a frame containing newlines, then another line
	var stream bytes.Buffer
	stream.WriteString("/file data.bin\n")
	req.NoError(WriteFrame(&stream, payload))
	stream.WriteString("after\n")

	r := NewReader(&stream)
	line, err := r.ReadLine()
	req.NoError(err)
	req.Equal("/file data.bin", line)

	// When the frame is consumed as raw bytes
	size, err := ReadFrameLength(r)
	req.NoError(err)
	req.Equal(uint64(len(payload)), size)
	body, err := io.ReadAll(io.LimitReader(r, int64(size)))
	req.NoError(err)

	// Then the body is byte exact and line mode resumes right after it
	req.Equal(payload, body)
	line, err = r.ReadLine()
	req.NoError(err)
	req.Equal("after", line)
}

func TestReadFrameLength_Short(t *testing.T) {
	_, err := ReadFrameLength(bytes.NewReader([]byte{0, 0, 0}))
	require.ErrorIs(t, err, errors.ErrShortFrame)

	_, err = ReadFrameLength(bytes.NewReader(nil))
	require.ErrorIs(t, err, errors.ErrShortFrame)
}

func TestReadFrameLength_BigEndian(t *testing.T) {
	size, err := ReadFrameLength(bytes.NewReader([]byte{0, 0, 0, 0, 0, 0, 1, 2}))
	require.NoError(t, err)
	require.Equal(t, uint64(258), size)
}

func TestReader_LineTooLong(t *testing.T) {
	req := require.New(t)

	// Given a bound of 16 bytes and a second line far above it
	r := NewReaderLimit(strings.NewReader("short\n"+strings.Repeat("x", 100)+"\n"), 16)

	line, err := r.ReadLine()
	req.NoError(err)
	req.Equal("short", line)

	// Then the long line is a protocol fault
	_, err = r.ReadLine()
	req.ErrorIs(err, errors.ErrLineTooLong)
	req.True(errors.IsProtocolFault(err))
}

func TestReader_Line_Larger_Than_Buffer(t *testing.T) {
	req := require.New(t)

	// Given a line bigger than the bufio buffer but under the bound
	long := strings.Repeat("y", 10_000)
	r := NewReader(strings.NewReader(long + "\r\nnext\n"))

	line, err := r.ReadLine()
	req.NoError(err)
	req.Equal(long, line)

	line, err = r.ReadLine()
	req.NoError(err)
	req.Equal("next", line)
}
