package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-memory/domain/memory"
)

func newHistoryDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func entry(sender memory.Sender, at time.Time, text string) memory.Entry {
	return memory.Entry{ID: uuid.New(), Sender: sender, At: at, Text: text}
}

func Test_Append_And_Read_In_Chronological_Order(t *testing.T) {
	req := require.New(t)
	repository := NewHistoryRepository(newHistoryDB(t), slog.Default(), nil)

	at := time.Now().UTC().Truncate(time.Second)
	entries := []memory.Entry{
		entry(memory.SenderUser, at, "first"),
		entry(memory.SenderAssistant, at.Add(time.Minute), "second"),
		entry(memory.SenderUser, at.Add(2*time.Minute), "third"),
	}
	// Append out of order; the key layout restores chronology.
	for _, i := range []int{2, 0, 1} {
		req.NoError(repository.Append("alice", entries[i]))
	}

	fetched, err := repository.HistorySince("alice", at.Add(-time.Hour))
	req.NoError(err)
	req.Equal(entries, fetched)
}

func Test_HistorySince_Honours_Cutoff(t *testing.T) {
	req := require.New(t)
	repository := NewHistoryRepository(newHistoryDB(t), slog.Default(), nil)

	at := time.Now().UTC().Truncate(time.Second)
	old := entry(memory.SenderUser, at.Add(-time.Hour), "old")
	recent := entry(memory.SenderUser, at, "recent")
	req.NoError(repository.Append("alice", old))
	req.NoError(repository.Append("alice", recent))

	fetched, err := repository.HistorySince("alice", at.Add(-time.Minute))
	req.NoError(err)
	req.Equal([]memory.Entry{recent}, fetched)
}

func Test_HistorySince_Is_Scoped_Per_User(t *testing.T) {
	req := require.New(t)
	repository := NewHistoryRepository(newHistoryDB(t), slog.Default(), nil)

	at := time.Now().UTC()
	req.NoError(repository.Append("alice", entry(memory.SenderUser, at, "mine")))
	req.NoError(repository.Append("alicia", entry(memory.SenderUser, at, "hers")))

	fetched, err := repository.HistorySince("alice", at.Add(-time.Hour))
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("mine", fetched[0].Text)
}

func Test_HistorySince_Keeps_Newest_When_Limited(t *testing.T) {
	req := require.New(t)
	limit := 2
	repository := NewHistoryRepository(newHistoryDB(t), slog.Default(), &limit)

	at := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		req.NoError(repository.Append("alice",
			entry(memory.SenderUser, at.Add(time.Duration(i)*time.Minute), "msg")))
	}

	fetched, err := repository.HistorySince("alice", at.Add(-time.Hour))
	req.NoError(err)
	req.Len(fetched, 2)
	req.Equal(at.Add(3*time.Minute), fetched[0].At)
	req.Equal(at.Add(4*time.Minute), fetched[1].At)
}

func Test_Clear_Drops_Only_That_User(t *testing.T) {
	req := require.New(t)
	repository := NewHistoryRepository(newHistoryDB(t), slog.Default(), nil)

	at := time.Now().UTC()
	req.NoError(repository.Append("alice", entry(memory.SenderUser, at, "a")))
	req.NoError(repository.Append("bob", entry(memory.SenderUser, at, "b")))

	req.NoError(repository.Clear("alice"))

	aliceHistory, err := repository.HistorySince("alice", at.Add(-time.Hour))
	req.NoError(err)
	req.Empty(aliceHistory)

	bobHistory, err := repository.HistorySince("bob", at.Add(-time.Hour))
	req.NoError(err)
	req.Len(bobHistory, 1)
}

func Test_PruneExpired_Removes_Old_Entries_Across_Users(t *testing.T) {
	req := require.New(t)
	repository := NewHistoryRepository(newHistoryDB(t), slog.Default(), nil)

	now := time.Now().UTC()
	req.NoError(repository.Append("alice", entry(memory.SenderUser, now.Add(-time.Hour), "stale")))
	req.NoError(repository.Append("alice", entry(memory.SenderUser, now, "fresh")))
	req.NoError(repository.Append("bob", entry(memory.SenderUser, now.Add(-2*time.Hour), "stale")))

	req.NoError(repository.PruneExpired(10 * time.Minute))

	aliceHistory, err := repository.HistorySince("alice", time.Time{})
	req.NoError(err)
	req.Len(aliceHistory, 1)
	req.Equal("fresh", aliceHistory[0].Text)

	bobHistory, err := repository.HistorySince("bob", time.Time{})
	req.NoError(err)
	req.Empty(bobHistory)
}
