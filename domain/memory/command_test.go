package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chat-memory/errors"
)

func Test_ParseCommand_Join_Valid(t *testing.T) {
	req := require.New(t)
	cmd := ParseCommand("alice", "join bob")
	req.Equal(JoinCommand{Sender: "alice", Users: []string{"bob"}}, cmd)
}

func Test_ParseCommand_Join_Multiple_Users(t *testing.T) {
	req := require.New(t)
	cmd := ParseCommand("alice", "join bob carol")
	req.Equal(JoinCommand{Sender: "alice", Users: []string{"bob", "carol"}}, cmd)
}

func Test_ParseCommand_Join_Missing_Argument_Yields_Usage(t *testing.T) {
	req := require.New(t)
	cmd := ParseCommand("alice", "join")
	req.Equal(HelpCommand{User: "alice", Topic: "join"}, cmd)
}

func Test_ParseCommand_Solo(t *testing.T) {
	req := require.New(t)
	cmd := ParseCommand("alice", "solo")
	req.Equal(SoloCommand{User: "alice"}, cmd)
}

func Test_ParseCommand_Joined(t *testing.T) {
	req := require.New(t)
	cmd := ParseCommand("alice", "joined")
	req.Equal(JoinedCommand{User: "alice"}, cmd)
}

func Test_ParseCommand_Forget(t *testing.T) {
	req := require.New(t)
	cmd := ParseCommand("alice", "forget")
	req.Equal(ForgetCommand{User: "alice"}, cmd)
}

func Test_ParseCommand_Help_With_Topic(t *testing.T) {
	req := require.New(t)
	cmd := ParseCommand("alice", "help join")
	req.Equal(HelpCommand{User: "alice", Topic: "join"}, cmd)
}

func Test_ParseCommand_Plain_Text_Is_A_Query(t *testing.T) {
	req := require.New(t)
	cmd := ParseCommand("alice", "what is a monad?")
	req.Equal(QueryCommand{User: "alice", Text: "what is a monad?"}, cmd)
}

func Test_ParseCommand_Question_Starting_With_Keyword_Is_The_Command(t *testing.T) {
	req := require.New(t)
	// Known ambiguity of the surface: the leading keyword wins.
	cmd := ParseCommand("alice", "join bob and carol for lunch?")
	req.IsType(JoinCommand{}, cmd)
}

func Test_ParseCommand_Empty_Line_Yields_Usage(t *testing.T) {
	req := require.New(t)
	cmd := ParseCommand("alice", "   ")
	req.Equal(HelpCommand{User: "alice"}, cmd)
}

func Test_ValidateUserName(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateUserName("alice"))
	req.NoError(ValidateUserName("Alice_42"))

	for _, bad := range []string{"", "a b", "a,b", "a:b", "héloïse"} {
		err := ValidateUserName(bad)
		req.ErrorIs(err, errors.ErrInvalidUser, "expected %q to be rejected", bad)
	}
}
