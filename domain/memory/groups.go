// Package memory contains core concepts of the shared-memory system.
// This file defines the union-find partition of users into memory groups.
// No persistence, network, or UI logic should be added here.
package memory

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

// Group is a read-only snapshot of one memory group.
// Members are sorted alphabetically. The representative is not
// semantically meaningful and is not preserved across save/load cycles:
// FromGroups re-elects the alphabetically smallest member.
type Group struct {
	Representative string
	Members        []string
	LastModified   time.Time
}

// GroupSets tracks which users share one conversational memory.
// The partition is stored as a forest in an index-based arena: every user
// owns a slot, every slot points at a parent slot, and a slot pointing at
// itself is the root (representative) of its group.
type GroupSets struct {
	slots  map[string]int // user -> current slot
	names  []string       // slot -> user
	parent []int
	stamp  []time.Time // meaningful at root slots only

	now func() time.Time
}

func NewGroupSets() *GroupSets {
	return &GroupSets{
		slots: make(map[string]int),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// FromGroups rebuilds a partition from persisted snapshots.
// Only the group contents are meaningful: the representative becomes the
// alphabetically smallest member, whatever it was before persistence.
func FromGroups(groups []Group) *GroupSets {
	gs := NewGroupSets()
	for _, g := range groups {
		members := make([]string, len(g.Members))
		copy(members, g.Members)
		sort.Strings(members)
		root := -1
		for _, user := range members {
			slot := gs.add(user)
			if root < 0 {
				root = slot
				gs.stamp[root] = g.LastModified
				continue
			}
			gs.parent[slot] = root
		}
	}
	return gs
}

// add ensures user owns a slot and returns it.
// A new slot starts as its own singleton root with a fresh timestamp.
func (gs *GroupSets) add(user string) int {
	if slot, ok := gs.slots[user]; ok {
		return slot
	}
	slot := len(gs.names)
	gs.slots[user] = slot
	gs.names = append(gs.names, user)
	gs.parent = append(gs.parent, slot)
	gs.stamp = append(gs.stamp, gs.now())
	return slot
}

// findSlot walks parent links to the root, compressing the path so that
// later lookups are near constant time. Compression never touches stamps:
// only the surviving root keeps the group timestamp.
func (gs *GroupSets) findSlot(slot int) int {
	root := slot
	for gs.parent[root] != root {
		root = gs.parent[root]
	}
	for gs.parent[slot] != root {
		slot, gs.parent[slot] = gs.parent[slot], root
	}
	return root
}

// rootOf resolves the root without inserting or compressing,
// safe for concurrent readers holding only a read lock.
func (gs *GroupSets) rootOf(slot int) int {
	for gs.parent[slot] != slot {
		slot = gs.parent[slot]
	}
	return slot
}

// Find returns the representative of user's group,
// inserting user as a fresh singleton when unseen.
func (gs *GroupSets) Find(user string) string {
	return gs.names[gs.findSlot(gs.add(user))]
}

// Union merges the groups of a and b, inserting singletons as needed.
// The representative of a's group survives. Merging two groups is a
// structural change to both, so the merged group gets a fresh timestamp.
// Joining users that already share a group only refreshes the timestamp.
func (gs *GroupSets) Union(a, b string) {
	ra := gs.findSlot(gs.add(a))
	rb := gs.findSlot(gs.add(b))
	if ra == rb {
		gs.stamp[ra] = latest(gs.now(), gs.stamp[ra])
		return
	}
	gs.parent[rb] = ra
	gs.stamp[ra] = latest(gs.now(), gs.stamp[ra], gs.stamp[rb])
}

// Members returns the full membership of user's group, sorted.
// An unseen user is implicitly a singleton; it is not inserted.
func (gs *GroupSets) Members(user string) []string {
	slot, ok := gs.slots[user]
	if !ok {
		return []string{user}
	}
	root := gs.rootOf(slot)
	members := make([]string, 0, 2)
	for name, s := range gs.slots {
		if gs.rootOf(s) == root {
			members = append(members, name)
		}
	}
	sort.Strings(members)
	return members
}

// Others returns the members of user's group excluding user, sorted.
// Empty for a solo user.
func (gs *GroupSets) Others(user string) []string {
	return lo.Without(gs.Members(user), user)
}

// Remove detaches user into a fresh singleton group ("solo").
// The remaining members keep their group; when the removed user was the
// representative, the alphabetically smallest remaining member takes over.
// Both affected groups get their timestamps refreshed.
func (gs *GroupSets) Remove(user string) {
	slot, ok := gs.slots[user]
	if !ok {
		gs.add(user)
		return
	}
	root := gs.findSlot(slot)
	others := lo.Without(gs.Members(user), user)

	if len(others) == 0 {
		gs.stamp[root] = latest(gs.now(), gs.stamp[root])
		return
	}

	if slot == root {
		// Re-elect the smallest remaining member and repoint the group,
		// including the abandoned root slot so stale parent chains still
		// resolve to the new representative.
		newRoot := gs.slots[others[0]]
		for _, name := range others {
			gs.parent[gs.slots[name]] = newRoot
		}
		gs.parent[newRoot] = newRoot
		gs.parent[root] = newRoot
		gs.stamp[newRoot] = latest(gs.now(), gs.stamp[root])
	} else {
		gs.stamp[root] = latest(gs.now(), gs.stamp[root])
	}

	// The old slot stays behind as an unreferenced forwarding entry;
	// user gets a brand-new singleton slot with a fresh timestamp.
	delete(gs.slots, user)
	gs.add(user)
}

// Groups enumerates every tracked group with at least two members,
// ordered by representative. Singletons are not persisted, so they
// are not reported here.
func (gs *GroupSets) Groups() []Group {
	byRoot := make(map[int][]string)
	for name, slot := range gs.slots {
		root := gs.rootOf(slot)
		byRoot[root] = append(byRoot[root], name)
	}
	groups := make([]Group, 0, len(byRoot))
	for root, members := range byRoot {
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		groups = append(groups, Group{
			Representative: gs.names[root],
			Members:        members,
			LastModified:   gs.stamp[root],
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Representative < groups[j].Representative
	})
	return groups
}

// Clone returns an independent deep copy of the partition.
// Mutations are applied to a clone first and only swapped in once
// persistence succeeds, so a failed save leaves the original intact.
func (gs *GroupSets) Clone() *GroupSets {
	c := &GroupSets{
		slots:  make(map[string]int, len(gs.slots)),
		names:  make([]string, len(gs.names)),
		parent: make([]int, len(gs.parent)),
		stamp:  make([]time.Time, len(gs.stamp)),
		now:    gs.now,
	}
	for name, slot := range gs.slots {
		c.slots[name] = slot
	}
	copy(c.names, gs.names)
	copy(c.parent, gs.parent)
	copy(c.stamp, gs.stamp)
	return c
}

func latest(times ...time.Time) time.Time {
	max := times[0]
	for _, t := range times[1:] {
		if t.After(max) {
			max = t
		}
	}
	return max
}
