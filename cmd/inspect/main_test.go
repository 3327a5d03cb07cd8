package main

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRow(t *testing.T) {
	req := require.New(t)

	// Given a failed transfer
	record := domain.TransferRecord{
		Room:      "lobby",
		Username:  "alice",
		FileName:  "cut.txt",
		Announced: 10,
		Received:  3,
		Digest:    "0123456789abcdef0123",
		Status:    domain.TransferFailed,
		At:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	// When rendering its row
	cells := row(record)

	// Then sizes and digest are compacted
	req.Len(cells, 8)
	req.True(strings.Contains(cells[1], "failed"))
	req.Equal("lobby", cells[2])
	req.Equal("3/10", cells[5])
	req.Equal("0123456789ab", cells[7])
}

func TestRun_Requires_Journal_Path(t *testing.T) {
	req := require.New(t)

	// An in-memory relay journal cannot be inspected
	req.ErrorIs(run("", 10), errors.ErrNoJournalPath)
}
