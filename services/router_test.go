package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chat-memory/domain/memory"
	"chat-memory/errors"
	"chat-memory/repositories"
)

// stubAssistant echoes what it was asked, capturing the context it saw.
type stubAssistant struct {
	lastUser    string
	lastHistory []memory.ContextEntry
	reply       string
	err         error
}

func (s *stubAssistant) Answer(_ context.Context, user string, history []memory.ContextEntry, _ string) (string, error) {
	s.lastUser = user
	s.lastHistory = history
	return s.reply, s.err
}

func newRouter(t *testing.T) (*Router, *stubAssistant) {
	t.Helper()
	req := require.New(t)

	badgerDB, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = badgerDB.Close() })

	groupDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "groups.db")), &gorm.Config{})
	req.NoError(err)

	log := testLogger()
	groupRepo, err := repositories.NewGroupRepository(groupDB, log)
	req.NoError(err)
	historyRepo := repositories.NewHistoryRepository(badgerDB, log, nil)

	svc, err := NewMemoryService(log, groupRepo, historyRepo)
	req.NoError(err)

	assistant := &stubAssistant{reply: "42"}
	return NewRouter(log, svc, assistant, time.Hour), assistant
}

// flakyService lets the first okJoins merges through, then fails saves.
type flakyService struct {
	*MemoryService
	okJoins int
	joins   int
}

func (f *flakyService) Join(actor, other string) error {
	f.joins++
	if f.joins > f.okJoins {
		return errors.ErrPersistence
	}
	return f.MemoryService.Join(actor, other)
}

func newFlakyRouter(t *testing.T, okJoins int) (*Router, *flakyService) {
	t.Helper()
	req := require.New(t)

	badgerDB, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = badgerDB.Close() })

	groupDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "groups.db")), &gorm.Config{})
	req.NoError(err)

	log := testLogger()
	groupRepo, err := repositories.NewGroupRepository(groupDB, log)
	req.NoError(err)

	svc, err := NewMemoryService(log, groupRepo, repositories.NewHistoryRepository(badgerDB, log, nil))
	req.NoError(err)

	flaky := &flakyService{MemoryService: svc, okJoins: okJoins}
	return NewRouter(log, flaky, &stubAssistant{reply: "42"}, time.Hour), flaky
}

func TestRouter_Commands(t *testing.T) {
	ctx := context.Background()

	t.Run("join replies with the joined user", func(t *testing.T) {
		req := require.New(t)
		router, _ := newRouter(t)

		reply := router.HandleLine(ctx, "alice", "join bob")
		req.Equal("Joined memory with user 'bob'.", reply)

		reply = router.HandleLine(ctx, "alice", "joined")
		req.Equal("You are joined with: bob", reply)
	})

	t.Run("join accepts several users at once", func(t *testing.T) {
		req := require.New(t)
		router, _ := newRouter(t)

		reply := router.HandleLine(ctx, "alice", "join bob carol")
		req.Equal("Joined memory with user 'bob', 'carol'.", reply)

		reply = router.HandleLine(ctx, "bob", "joined")
		req.Equal("You are joined with: alice, carol", reply)
	})

	t.Run("joining yourself is refused and changes nothing", func(t *testing.T) {
		req := require.New(t)
		router, _ := newRouter(t)

		reply := router.HandleLine(ctx, "alice", "join alice")
		req.Equal("You cannot join memory with yourself.", reply)

		reply = router.HandleLine(ctx, "alice", "joined")
		req.Equal("You are not joined with any other users.", reply)
	})

	t.Run("join with a malformed name is refused", func(t *testing.T) {
		req := require.New(t)
		router, _ := newRouter(t)

		reply := router.HandleLine(ctx, "alice", "join héloïse")
		req.Equal("That user name is not valid.", reply)
	})

	t.Run("join with a bad name late in the list applies nothing", func(t *testing.T) {
		req := require.New(t)
		router, _ := newRouter(t)

		reply := router.HandleLine(ctx, "alice", "join bob héloïse")
		req.Equal("That user name is not valid.", reply)

		reply = router.HandleLine(ctx, "alice", "join bob alice")
		req.Equal("You cannot join memory with yourself.", reply)

		req.Equal("You are not joined with any other users.",
			router.HandleLine(ctx, "alice", "joined"))
	})

	t.Run("join reports users already merged when a later save fails", func(t *testing.T) {
		req := require.New(t)
		router, svc := newFlakyRouter(t, 1)

		reply := router.HandleLine(ctx, "alice", "join bob carol")
		req.Contains(reply, "Your change could not be saved.")
		req.Contains(reply, "Joined memory with user 'bob' only.")

		others, err := svc.JoinedWith("alice")
		req.NoError(err)
		req.Equal([]string{"bob"}, others)
	})

	t.Run("bare join yields usage instead of a query", func(t *testing.T) {
		req := require.New(t)
		router, assistant := newRouter(t)

		reply := router.HandleLine(ctx, "alice", "join")
		req.Contains(reply, "Usage: join")
		req.Empty(assistant.lastUser, "the assistant must not be consulted")
	})

	t.Run("solo detaches only the sender", func(t *testing.T) {
		req := require.New(t)
		router, _ := newRouter(t)

		router.HandleLine(ctx, "alice", "join bob carol")
		reply := router.HandleLine(ctx, "bob", "solo")
		req.Equal("You are now a solo user.", reply)

		req.Equal("You are joined with: carol", router.HandleLine(ctx, "alice", "joined"))
		req.Equal("You are not joined with any other users.", router.HandleLine(ctx, "bob", "joined"))
	})

	t.Run("solo when already solo still succeeds", func(t *testing.T) {
		req := require.New(t)
		router, _ := newRouter(t)

		req.Equal("You are now a solo user.", router.HandleLine(ctx, "alice", "solo"))
		req.Equal("You are now a solo user.", router.HandleLine(ctx, "alice", "solo"))
	})

	t.Run("help lists the commands", func(t *testing.T) {
		req := require.New(t)
		router, _ := newRouter(t)

		reply := router.HandleLine(ctx, "alice", "help")
		req.Contains(reply, "join <user...>")
		req.Contains(reply, "solo")
	})
}

func TestRouter_QueryPath(t *testing.T) {
	ctx := context.Background()

	t.Run("a plain question reaches the assistant with group context", func(t *testing.T) {
		req := require.New(t)
		router, assistant := newRouter(t)

		router.HandleLine(ctx, "alice", "join bob")
		router.HandleLine(ctx, "bob", "hello there")

		reply := router.HandleLine(ctx, "alice", "what did bob say?")
		req.Equal("42", reply)
		req.Equal("alice", assistant.lastUser)

		var texts []string
		for _, e := range assistant.lastHistory {
			texts = append(texts, e.Text)
		}
		req.Contains(texts, "hello there")
	})

	t.Run("the query is not replayed inside its own context", func(t *testing.T) {
		req := require.New(t)
		router, assistant := newRouter(t)

		// The query reaches the model once, as the final turn; replaying it
		// as history would double it and evict an older line under a cap.
		router.HandleLine(ctx, "alice", "what is a monad?")
		for _, e := range assistant.lastHistory {
			req.NotEqual("what is a monad?", e.Text)
		}

		// It is still recorded, so the next exchange sees it as history.
		router.HandleLine(ctx, "alice", "and a functor?")
		var texts []string
		for _, e := range assistant.lastHistory {
			texts = append(texts, e.Text)
		}
		req.Contains(texts, "what is a monad?")
		req.NotContains(texts, "and a functor?")
	})

	t.Run("solo users never see their former group's lines", func(t *testing.T) {
		req := require.New(t)
		router, assistant := newRouter(t)

		router.HandleLine(ctx, "alice", "join bob")
		router.HandleLine(ctx, "bob", "my secret plan")
		router.HandleLine(ctx, "alice", "solo")

		router.HandleLine(ctx, "alice", "what do you know?")
		for _, e := range assistant.lastHistory {
			req.NotEqual("bob", e.User)
		}
	})

	t.Run("assistant failures degrade to a one-line reply", func(t *testing.T) {
		req := require.New(t)
		router, assistant := newRouter(t)
		assistant.err = context.DeadlineExceeded
		assistant.reply = ""

		reply := router.HandleLine(ctx, "alice", "anyone there?")
		req.Equal("The assistant could not answer right now.", reply)
	})

	t.Run("forget clears the whole group's history", func(t *testing.T) {
		req := require.New(t)
		router, assistant := newRouter(t)

		router.HandleLine(ctx, "alice", "join bob")
		router.HandleLine(ctx, "bob", "remember me")

		reply := router.HandleLine(ctx, "alice", "forget")
		req.Equal("Your group's history has been cleared.", reply)

		router.HandleLine(ctx, "alice", "what do you remember?")
		var texts []string
		for _, e := range assistant.lastHistory {
			texts = append(texts, e.Text)
		}
		req.NotContains(texts, "remember me")
	})
}
