package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"chat-memory/domain/memory"
	"chat-memory/errors"
	"chat-memory/repositories"
)

type IMemoryService interface {
	Join(actor, other string) error
	Solo(user string) error
	JoinedWith(user string) ([]string, error)
	AssembleContext(ctx context.Context, user string, cutoff time.Time) ([]memory.ContextEntry, error)
	Record(user string, sender memory.Sender, text string) error
	ClearGroupHistory(user string) error
	Groups() []memory.Group
}

// MemoryService owns the process-wide partition of users into memory
// groups. All mutations go through it: a mutation is applied to a clone,
// persisted, and only then swapped in, so a reply that reports success
// always implies durability and a failed save leaves memory untouched.
type MemoryService struct {
	mu          sync.RWMutex
	log         *slog.Logger
	groups      *memory.GroupSets
	groupRepo   repositories.IGroupRepository
	historyRepo repositories.IHistoryRepository
	now         func() time.Time
}

func NewMemoryService(log *slog.Logger, groupRepo repositories.IGroupRepository,
	historyRepo repositories.IHistoryRepository) (*MemoryService, error) {
	groups, err := groupRepo.Load()
	if err != nil {
		return nil, fmt.Errorf("loading memory groups: %w", err)
	}
	return &MemoryService{
		log:         log,
		groups:      groups,
		groupRepo:   groupRepo,
		historyRepo: historyRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// Join merges actor's and other's memory groups.
func (s *MemoryService) Join(actor, other string) error {
	if err := memory.ValidateUserName(actor); err != nil {
		return err
	}
	if err := memory.ValidateUserName(other); err != nil {
		return err
	}
	if actor == other {
		return fmt.Errorf("%w: %q", errors.ErrSelfJoin, actor)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.groups.Clone()
	next.Union(actor, other)
	if err := s.groupRepo.Save(next.Groups()); err != nil {
		return err
	}
	s.groups = next
	s.log.Info("Joined memory groups", "actor", actor, "other", other)
	return nil
}

// Solo detaches user into their own memory group. Already-solo users
// succeed without touching the store (idempotent).
func (s *MemoryService) Solo(user string) error {
	if err := memory.ValidateUserName(user); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.groups.Others(user)) == 0 {
		return nil
	}

	next := s.groups.Clone()
	next.Remove(user)
	if err := s.groupRepo.Save(next.Groups()); err != nil {
		return err
	}
	s.groups = next
	s.log.Info("User went solo", "user", user)
	return nil
}

// JoinedWith returns the other members of user's group, alphabetical.
// Empty for a solo or never-seen user.
func (s *MemoryService) JoinedWith(user string) ([]string, error) {
	if err := memory.ValidateUserName(user); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groups.Others(user), nil
}

// Groups snapshots every non-trivial memory group.
func (s *MemoryService) Groups() []memory.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groups.Groups()
}

// AssembleContext merges the histories of every member of user's group
// into one globally timestamp-ascending sequence. Ties are broken by user
// identity and then insertion order; nothing is dropped on collisions.
func (s *MemoryService) AssembleContext(ctx context.Context, user string, cutoff time.Time) ([]memory.ContextEntry, error) {
	if err := memory.ValidateUserName(user); err != nil {
		return nil, err
	}

	s.mu.RLock()
	members := s.groups.Members(user)
	s.mu.RUnlock()

	histories := make([][]memory.Entry, len(members))
	g, ctx := errgroup.WithContext(ctx)
	for i, member := range members {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entries, err := s.historyRepo.HistorySince(member, cutoff)
			if err != nil {
				return err
			}
			histories[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, entries := range histories {
		total += len(entries)
	}
	merged := make([]memory.ContextEntry, 0, total)
	for i, entries := range histories {
		for _, e := range entries {
			merged = append(merged, memory.ContextEntry{
				User:   members[i],
				Sender: e.Sender,
				At:     e.At,
				Text:   e.Text,
			})
		}
	}

	// Each member's history is already chronological, so a stable sort
	// keeps per-user insertion order for fully equal keys.
	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].At.Equal(merged[j].At) {
			return merged[i].At.Before(merged[j].At)
		}
		return merged[i].User < merged[j].User
	})
	return merged, nil
}

// Record appends one line to user's own history.
func (s *MemoryService) Record(user string, sender memory.Sender, text string) error {
	if err := memory.ValidateUserName(user); err != nil {
		return err
	}
	return s.historyRepo.Append(user, memory.Entry{
		ID:     uuid.New(),
		Sender: sender,
		At:     s.now(),
		Text:   text,
	})
}

// ClearGroupHistory drops the history of every member of user's group,
// the user included.
func (s *MemoryService) ClearGroupHistory(user string) error {
	if err := memory.ValidateUserName(user); err != nil {
		return err
	}

	s.mu.RLock()
	members := s.groups.Members(user)
	s.mu.RUnlock()

	for _, member := range members {
		if err := s.historyRepo.Clear(member); err != nil {
			return err
		}
	}
	s.log.Info("Cleared group history", "user", user, "members", len(members))
	return nil
}
