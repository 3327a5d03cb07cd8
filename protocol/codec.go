// Package protocol splits a relay byte stream into newline-terminated lines
// and length-prefixed binary frames. It owns no shared state.
package protocol

import (
	"bufio"
	"chat-relay/domain"
	"chat-relay/errors"
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

// FrameHeaderSize is the width of the big-endian length preceding a file body.
const FrameHeaderSize = 8

// MaxLineLength bounds a single line, terminator included.
const MaxLineLength = 64 * 1024

const (
	joinWord = "/join"
	fileWord = "/file"
	quitWord = "/quit"
)

// Reader reads lines and raw bytes from the same buffered stream.
// Bytes buffered while reading a line stay available to Read, so a frame
// directly following a /file line is never lost.
type Reader struct {
	br      *bufio.Reader
	maxLine int
}

func NewReader(r io.Reader) *Reader {
	return NewReaderLimit(r, MaxLineLength)
}

// NewReaderLimit is NewReader with a custom line bound.
func NewReaderLimit(r io.Reader, maxLine int) *Reader {
	return &Reader{br: bufio.NewReader(r), maxLine: maxLine}
}

// ReadLine returns the next line without its terminator (LF or CRLF).
// A final unterminated line is returned before io.EOF.
// A line longer than the bound fails with ErrLineTooLong.
func (r *Reader) ReadLine() (string, error) {
	var line []byte
	for {
		chunk, err := r.br.ReadSlice('\n')
		if len(line)+len(chunk) > r.maxLine {
			return "", fmt.Errorf("reading line: %w", errors.ErrLineTooLong)
		}
		line = append(line, chunk...)
		switch {
		case err == nil:
			return trimEOL(string(line)), nil
		case stderrors.Is(err, bufio.ErrBufferFull):
			continue
		case stderrors.Is(err, io.EOF) && len(line) > 0:
			return trimEOL(string(line)), nil
		default:
			return "", err
		}
	}
}

// Read consumes raw bytes, bypassing line framing.
func (r *Reader) Read(p []byte) (int, error) {
	return r.br.Read(p)
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// ReadFrameLength reads the 8-byte big-endian length of a file body.
func ReadFrameLength(r io.Reader) (uint64, error) {
	var header [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("reading frame length: %w", errors.ErrShortFrame)
		}
		return 0, fmt.Errorf("reading frame length: %w", err)
	}
	return binary.BigEndian.Uint64(header[:]), nil
}

// WriteFrame writes the length header followed by the payload.
func WriteFrame(w io.Writer, payload []byte) error {
	var header [FrameHeaderSize]byte
	binary.BigEndian.PutUint64(header[:], uint64(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// Parse classifies one line-mode line.
// The argument of /join and /file is everything after the first space and must not be empty.
func Parse(line string) (domain.Command, error) {
	if line == "" {
		return domain.Command{Kind: domain.EmptyCommand}, nil
	}
	word, argument, hasArgument := strings.Cut(line, " ")
	switch word {
	case quitWord:
		if !hasArgument {
			return domain.Command{Kind: domain.QuitCommand}, nil
		}
	case joinWord, fileWord:
		if !hasArgument || argument == "" {
			return domain.Command{}, fmt.Errorf("%s: %w", word, errors.ErrMissingArgument)
		}
		kind := domain.JoinCommand
		if word == fileWord {
			kind = domain.FileCommand
		}
		return domain.Command{Kind: kind, Argument: argument}, nil
	}
	return domain.Command{Kind: domain.ChatCommand, Argument: line}, nil
}

// FormatLine terminates an outbound server line.
func FormatLine(text string) string {
	return text + "\n"
}
