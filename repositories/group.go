//go:generate go run go.uber.org/mock/mockgen -source=group.go -destination=../mocks/mock_group_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chat-memory/domain/memory"
	"chat-memory/errors"
)

type IGroupRepository interface {
	Load() (*memory.GroupSets, error)
	Save(groups []memory.Group) error
}

// GroupRepository is the durability boundary for the union-find partition.
// One row per grouped user; solo users have no row.
type GroupRepository struct {
	db  *gorm.DB
	log *slog.Logger
}

// UnionSet is the persisted form of one grouped user.
// The group id is an arbitrary identifier chosen at save time; it only
// ties the rows of one group together and carries no meaning across saves.
type UnionSet struct {
	UserName     string    `gorm:"column:user_name;primaryKey"`
	GroupID      string    `gorm:"column:group_id;index"`
	LastModified time.Time `gorm:"column:last_modified"`
}

func (UnionSet) TableName() string { return "union_sets" }

func NewGroupRepository(db *gorm.DB, log *slog.Logger) (*GroupRepository, error) {
	if err := db.AutoMigrate(&UnionSet{}); err != nil {
		return nil, fmt.Errorf("%w: migrating union_sets: %v", errors.ErrPersistence, err)
	}
	return &GroupRepository{db: db, log: log}, nil
}

// Load reads every row and reconstructs the partition. Rows sharing a
// group id become one group; the representative is re-derived as the
// alphabetically smallest member and the timestamp is the maximum over
// the group's rows, tolerating drift between them.
func (r GroupRepository) Load() (*memory.GroupSets, error) {
	var rows []UnionSet
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: loading union_sets: %v", errors.ErrPersistence, err)
	}

	byGroup := make(map[string]*memory.Group)
	for _, row := range rows {
		g, ok := byGroup[row.GroupID]
		if !ok {
			g = &memory.Group{LastModified: row.LastModified}
			byGroup[row.GroupID] = g
		}
		g.Members = append(g.Members, row.UserName)
		if row.LastModified.After(g.LastModified) {
			g.LastModified = row.LastModified
		}
	}

	groups := make([]memory.Group, 0, len(byGroup))
	for _, g := range byGroup {
		sort.Strings(g.Members)
		g.Representative = g.Members[0]
		groups = append(groups, *g)
	}

	r.log.Debug("Loaded union sets", "groups", len(groups), "rows", len(rows))
	return memory.FromGroups(groups), nil
}

// Save replaces the persisted row set with the given snapshots in a single
// transaction, so concurrent readers never observe a half-updated group.
func (r GroupRepository) Save(groups []memory.Group) error {
	rows := make([]UnionSet, 0, len(groups)*2)
	for _, g := range groups {
		groupID := uuid.NewString()
		for _, user := range g.Members {
			rows = append(rows, UnionSet{
				UserName:     user,
				GroupID:      groupID,
				LastModified: g.LastModified,
			})
		}
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&UnionSet{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("%w: saving union_sets: %v", errors.ErrPersistence, err)
	}
	return nil
}
