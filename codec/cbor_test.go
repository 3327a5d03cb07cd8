package codec

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type sampleRecord struct {
	Name string    `cbor:"name"`
	Size uint64    `cbor:"size"`
	At   time.Time `cbor:"at"`
}

func TestMarshal_Deterministic_And_Keeps_Nanoseconds(t *testing.T) {
	req := require.New(t)
	original := sampleRecord{Name: "report.txt", Size: 5, At: time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)}

	first, err := Marshal(original)
	req.NoError(err)
	second, err := Marshal(original)
	req.NoError(err)
	req.True(bytes.Equal(first, second))

	var decoded sampleRecord
	req.NoError(Unmarshal(first, &decoded))
	req.Equal(original.Name, decoded.Name)
	req.Equal(original.Size, decoded.Size)
	req.True(original.At.Equal(decoded.At))
}
