package memory

import "strings"

// Command is a recognized control message from a chat user.
type Command interface {
	Actor() string
}

// JoinCommand asks to share memory with one or more other users.
type JoinCommand struct {
	Sender string
	Users  []string
}

func (c JoinCommand) Actor() string { return c.Sender }

// SoloCommand asks to leave the current memory group.
type SoloCommand struct {
	User string
}

func (c SoloCommand) Actor() string { return c.User }

// JoinedCommand asks who shares memory with the sender.
type JoinedCommand struct {
	User string
}

func (c JoinedCommand) Actor() string { return c.User }

// ForgetCommand asks to clear the history of the sender's group.
type ForgetCommand struct {
	User string
}

func (c ForgetCommand) Actor() string { return c.User }

// HelpCommand carries an optional topic, one of the command keywords.
// It is also produced for command-shaped input that is missing its
// argument, so the caller replies with usage instead of querying the
// assistant with something that was clearly meant as a command.
type HelpCommand struct {
	User  string
	Topic string
}

func (c HelpCommand) Actor() string { return c.User }

// QueryCommand is everything that is not a control command:
// ordinary conversational input for the assistant.
type QueryCommand struct {
	User string
	Text string
}

func (c QueryCommand) Actor() string { return c.User }

// ParseCommand classifies one inbound line from sender.
// Only the leading keyword is inspected; a genuine question that happens
// to start with "join <word>" is a known ambiguity of the surface and is
// treated as the command.
func ParseCommand(sender, line string) Command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return HelpCommand{User: sender}
	}

	switch fields[0] {
	case "join":
		if len(fields) < 2 {
			return HelpCommand{User: sender, Topic: "join"}
		}
		return JoinCommand{Sender: sender, Users: fields[1:]}
	case "solo":
		if len(fields) > 1 {
			return HelpCommand{User: sender, Topic: "solo"}
		}
		return SoloCommand{User: sender}
	case "joined":
		if len(fields) > 1 {
			return HelpCommand{User: sender, Topic: "joined"}
		}
		return JoinedCommand{User: sender}
	case "forget":
		return ForgetCommand{User: sender}
	case "help":
		topic := ""
		if len(fields) > 1 {
			topic = fields[1]
		}
		return HelpCommand{User: sender, Topic: topic}
	}

	return QueryCommand{User: sender, Text: strings.TrimSpace(line)}
}
