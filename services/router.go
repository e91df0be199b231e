package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chat-memory/ai"
	"chat-memory/domain/memory"
	"chat-memory/errors"
)

// Router recognizes control commands at the start of an inbound message
// and dispatches them; everything else goes to the assistant with the
// assembled group context. Every recoverable error degrades to a one-line
// reply so one malformed command never affects other sessions.
type Router struct {
	log       *slog.Logger
	svc       IMemoryService
	assistant ai.Assistant
	retention time.Duration
	now       func() time.Time
}

func NewRouter(log *slog.Logger, svc IMemoryService, assistant ai.Assistant, retention time.Duration) *Router {
	return &Router{
		log:       log,
		svc:       svc,
		assistant: assistant,
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// HandleLine processes one inbound line from sender and returns the reply.
func (r *Router) HandleLine(ctx context.Context, sender, line string) string {
	switch cmd := memory.ParseCommand(sender, line).(type) {
	case memory.JoinCommand:
		return r.handleJoin(cmd)
	case memory.SoloCommand:
		if err := r.svc.Solo(cmd.User); err != nil {
			return r.errorReply(err)
		}
		return "You are now a solo user."
	case memory.JoinedCommand:
		others, err := r.svc.JoinedWith(cmd.User)
		if err != nil {
			return r.errorReply(err)
		}
		if len(others) == 0 {
			return "You are not joined with any other users."
		}
		return "You are joined with: " + strings.Join(others, ", ")
	case memory.ForgetCommand:
		if err := r.svc.ClearGroupHistory(cmd.User); err != nil {
			return r.errorReply(err)
		}
		return "Your group's history has been cleared."
	case memory.HelpCommand:
		return usage(cmd.Topic)
	case memory.QueryCommand:
		return r.handleQuery(ctx, cmd)
	default:
		return r.errorReply(errors.ErrUnknownCommand)
	}
}

func (r *Router) handleJoin(cmd memory.JoinCommand) string {
	// All names are checked before the first merge so a bad name late in
	// the list cannot leave a half-applied join behind.
	for _, other := range cmd.Users {
		if err := memory.ValidateUserName(other); err != nil {
			return r.errorReply(err)
		}
		if other == cmd.Sender {
			return r.errorReply(fmt.Errorf("%w: %q", errors.ErrSelfJoin, cmd.Sender))
		}
	}

	joined := make([]string, 0, len(cmd.Users))
	for _, other := range cmd.Users {
		if err := r.svc.Join(cmd.Sender, other); err != nil {
			if len(joined) == 0 {
				return r.errorReply(err)
			}
			// Earlier merges are already persisted; say so instead of
			// pretending nothing happened.
			return fmt.Sprintf("%s Joined memory with user %s only.",
				r.errorReply(err), quoteList(joined))
		}
		joined = append(joined, other)
	}
	return fmt.Sprintf("Joined memory with user %s.", quoteList(joined))
}

func quoteList(users []string) string {
	return "'" + strings.Join(users, "', '") + "'"
}

func (r *Router) handleQuery(ctx context.Context, cmd memory.QueryCommand) string {
	// The prompt is built from history first and the query recorded after,
	// so the query reaches the model only once, as the final turn.
	history, err := r.svc.AssembleContext(ctx, cmd.User, r.now().Add(-r.retention))
	if err != nil {
		return r.errorReply(err)
	}

	if err := r.svc.Record(cmd.User, memory.SenderUser, cmd.Text); err != nil {
		return r.errorReply(err)
	}

	answer, err := r.assistant.Answer(ctx, cmd.User, history, cmd.Text)
	if err != nil {
		r.log.Error("Assistant query failed", "user", cmd.User, "error", err)
		return "The assistant could not answer right now."
	}

	if err := r.svc.Record(cmd.User, memory.SenderAssistant, answer); err != nil {
		// The reply is already produced; losing one history line is
		// preferable to discarding the answer.
		r.log.Error("Recording assistant reply failed", "user", cmd.User, "error", err)
	}
	return answer
}

func (r *Router) errorReply(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrSelfJoin):
		return "You cannot join memory with yourself."
	case stderrors.Is(err, errors.ErrInvalidUser):
		return "That user name is not valid."
	case stderrors.Is(err, errors.ErrPersistence):
		r.log.Error("Persistence failure", "error", err)
		return "Your change could not be saved. Please try again."
	default:
		r.log.Error("Command failed", "error", err)
		return "Sorry, that command failed."
	}
}

func usage(topic string) string {
	switch topic {
	case "join":
		return "Usage: join <user...>  (Join your memory with other users' memories.)"
	case "solo":
		return "Usage: solo  (Leave the shared memory and continue alone.)"
	case "joined":
		return "Usage: joined  (List the users with whom you share memory.)"
	case "forget":
		return "Usage: forget  (Clear the history of your memory group.)"
	default:
		return "Commands: join <user...>, solo, joined, forget, help [command]. Anything else is sent to the assistant."
	}
}
