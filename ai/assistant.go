// Package ai adapts the assembled group context into prompts for a
// chat-completion backend. The rest of the system only sees the narrow
// Assistant interface.
package ai

import (
	"context"
	"fmt"
	"strings"

	"chat-memory/domain/memory"
)

// Assistant answers user's query given the merged history of their
// memory group.
type Assistant interface {
	Answer(ctx context.Context, user string, history []memory.ContextEntry, query string) (string, error)
}

// MaxLineLength is the hard limit on reply length, chosen for line-based
// chat transports that truncate long messages.
const MaxLineLength = 300

// DefaultSystemPrompt instructs the model to behave like a single-line
// chatroom participant.
const DefaultSystemPrompt = "You are a helpful AI in a chatroom. You communicate with experienced software developers. " +
	"Write in English unless the user asks for something else. Keep your response under {MAX_LINE_LENGTH} characters. " +
	"Write only a single line without markdown. Your answers are suitable for all age groups."

// SystemPrompt returns the system prompt with the length limit substituted.
func SystemPrompt() string {
	return strings.ReplaceAll(DefaultSystemPrompt, "{MAX_LINE_LENGTH}", fmt.Sprint(MaxLineLength))
}

// chatTurn is a backend-agnostic prompt message.
type chatTurn struct {
	Role    string
	Content string
}

// buildTurns replays the merged group history as alternating turns.
// Lines from other group members are attributed with a "name: " prefix so
// the model can tell the speakers apart; the acting user's own lines and
// every assistant line are passed through unprefixed.
func buildTurns(user string, history []memory.ContextEntry, query string) []chatTurn {
	turns := make([]chatTurn, 0, len(history)+2)
	turns = append(turns, chatTurn{Role: "system", Content: SystemPrompt()})
	for _, e := range history {
		content := e.Text
		role := string(e.Sender)
		if e.Sender == memory.SenderUser && e.User != user {
			content = e.User + ": " + content
		}
		turns = append(turns, chatTurn{Role: role, Content: content})
	}
	turns = append(turns, chatTurn{Role: "user", Content: query})
	return turns
}
