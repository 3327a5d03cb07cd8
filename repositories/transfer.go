package repositories

import (
	"chat-relay/codec"
	"chat-relay/domain"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const transferPrefix = "transfer:"

type TransferRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewTransferRepository(db *badger.DB, log *slog.Logger) TransferRepository {
	return TransferRepository{db: db, log: log}
}

// Store persists a transfer record in BadgerDB.
// The key is formatted as "transfer:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Keep records distinct when two transfers finish at the same nanosecond.
func (t TransferRepository) Store(record domain.TransferRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	key := fmt.Sprintf("%s%019d:%s", transferPrefix, record.At.UnixNano(), record.ID)
	bytes, err := codec.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding transfer %s: %w", record.ID, err)
	}
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// List returns at most limit records, newest first. A limit <= 0 returns everything.
func (t TransferRepository) List(limit int) ([]domain.TransferRecord, error) {
	var records []domain.TransferRecord
	err := t.db.View(func(txn *badger.Txn) error {
		prefix := []byte(transferPrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Reverse iteration starts from the greatest key under the prefix
		seekKey := append([]byte(transferPrefix), 0xFF)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(records) == limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				var record domain.TransferRecord
				if err := codec.Unmarshal(value, &record); err != nil {
					return fmt.Errorf("decoding %s: %w", it.Item().Key(), err)
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
