//go:generate go run go.uber.org/mock/mockgen -source=history.go -destination=../mocks/mock_history_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chat-memory/domain/memory"
	"chat-memory/errors"
)

type IHistoryRepository interface {
	Append(user string, entry memory.Entry) error
	HistorySince(user string, cutoff time.Time) ([]memory.Entry, error)
	Clear(user string) error
	PruneExpired(retention time.Duration) error
}

// HistoryRepository is the append-only per-user conversation log.
type HistoryRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewHistoryRepository(db *badger.DB, log *slog.Logger, limitMessages *int) HistoryRepository {
	return HistoryRepository{db: db, log: log, limitMessages: limitMessages}
}

// historyValue is the stored part of an entry; sender and text live in the
// value, timestamp and id live in the key.
type historyValue struct {
	Sender memory.Sender `json:"sender"`
	Text   string        `json:"text"`
}

const historyPrefix = "hist:"

// historyKey formats "hist:{user}:{timestamp_padded}:{uuid}" so that:
//  1. A prefix scan per user yields chronological order thanks to the
//     19-digit zero padding (lexicographical order).
//  2. The UUID disconnects collisions when two entries land on the same
//     nanosecond, so neither is lost.
func historyKey(user string, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s", historyPrefix, user, at.UnixNano(), id))
}

// Append persists one entry of user's history. Entries are never mutated.
func (h HistoryRepository) Append(user string, entry memory.Entry) error {
	value, err := json.Marshal(historyValue{Sender: entry.Sender, Text: entry.Text})
	if err != nil {
		return fmt.Errorf("%w: encoding history entry: %v", errors.ErrPersistence, err)
	}
	err = h.db.Update(func(txn *badger.Txn) error {
		return txn.Set(historyKey(user, entry.At, entry.ID), value)
	})
	if err != nil {
		return fmt.Errorf("%w: appending history: %v", errors.ErrPersistence, err)
	}
	return nil
}

// HistorySince returns user's entries strictly after cutoff in chronological
// ascending order. When a message limit is configured only the newest
// entries within the window are returned.
func (h HistoryRepository) HistorySince(user string, cutoff time.Time) ([]memory.Entry, error) {
	var entries []memory.Entry
	prefix := []byte(historyPrefix + user + ":")

	err := h.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek directly past the cutoff instead of scanning from the start.
		seekKey := append(append([]byte{}, prefix...),
			[]byte(fmt.Sprintf("%019d", cutoff.UnixNano()))...)

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			entry, err := parseHistoryKey(string(item.Key()), user)
			if err != nil {
				return err
			}
			if !entry.At.After(cutoff) {
				continue
			}
			err = item.Value(func(value []byte) error {
				var v historyValue
				if err := json.Unmarshal(value, &v); err != nil {
					return fmt.Errorf("decoding history entry: %w", err)
				}
				entry.Sender = v.Sender
				entry.Text = v.Text
				return nil
			})
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reading history: %v", errors.ErrPersistence, err)
	}

	if h.limitMessages != nil && len(entries) > *h.limitMessages {
		h.log.Debug(fmt.Sprintf("Maximum of %d history entries reached", *h.limitMessages), "user", user)
		entries = entries[len(entries)-*h.limitMessages:]
	}
	return entries, nil
}

// Clear drops user's entire history.
func (h HistoryRepository) Clear(user string) error {
	keys, err := h.collectKeys([]byte(historyPrefix+user+":"), time.Time{})
	if err != nil {
		return err
	}
	return h.deleteKeys(keys)
}

// PruneExpired drops every entry older than the retention window,
// across all users. Meant as a startup sweep.
func (h HistoryRepository) PruneExpired(retention time.Duration) error {
	oldestAllowed := time.Now().UTC().Add(-retention)
	keys, err := h.collectKeys([]byte(historyPrefix), oldestAllowed)
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		h.log.Info("Pruning expired history entries", "count", len(keys))
	}
	return h.deleteKeys(keys)
}

// collectKeys gathers keys under prefix whose timestamp is not after olderThan.
// A zero olderThan collects everything under the prefix.
func (h HistoryRepository) collectKeys(prefix []byte, olderThan time.Time) ([][]byte, error) {
	var keys [][]byte
	err := h.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if !olderThan.IsZero() {
				at, err := timestampFromKey(string(key))
				if err != nil {
					return err
				}
				if at.After(olderThan) {
					continue
				}
			}
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scanning history: %v", errors.ErrPersistence, err)
	}
	return keys, nil
}

func (h HistoryRepository) deleteKeys(keys [][]byte) error {
	if len(keys) == 0 {
		return nil
	}
	wb := h.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("%w: deleting history: %v", errors.ErrPersistence, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("%w: deleting history: %v", errors.ErrPersistence, err)
	}
	return nil
}

// parseHistoryKey recovers timestamp and id from "hist:{user}:{ts}:{uuid}".
// User names cannot contain ':' (see memory.ValidateUserName), so the
// layout is unambiguous.
func parseHistoryKey(key, user string) (memory.Entry, error) {
	rest := strings.TrimPrefix(key, historyPrefix+user+":")
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return memory.Entry{}, fmt.Errorf("malformed history key %q", key)
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return memory.Entry{}, fmt.Errorf("malformed history key %q: %w", key, err)
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return memory.Entry{}, fmt.Errorf("malformed history key %q: %w", key, err)
	}
	return memory.Entry{ID: id, At: time.Unix(0, nanos).UTC()}, nil
}

func timestampFromKey(key string) (time.Time, error) {
	parts := strings.Split(key, ":")
	if len(parts) < 4 {
		return time.Time{}, fmt.Errorf("malformed history key %q", key)
	}
	nanos, err := strconv.ParseInt(parts[len(parts)-2], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed history key %q: %w", key, err)
	}
	return time.Unix(0, nanos).UTC(), nil
}
