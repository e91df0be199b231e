// Package memory contains core concepts of the shared-memory system.
// This file defines history entries and related rules.
// Entries are immutable once recorded.
package memory

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies which side of the conversation produced an entry.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Entry is one immutable line of a user's conversation history.
type Entry struct {
	ID     uuid.UUID
	Sender Sender
	At     time.Time
	Text   string
}

// ContextEntry is an Entry attributed to its owning user, as produced
// by context assembly over a whole memory group.
type ContextEntry struct {
	User   string
	Sender Sender
	At     time.Time
	Text   string
}
