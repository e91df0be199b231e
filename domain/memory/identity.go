package memory

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"chat-memory/errors"
)

var validate = validator.New()

// Separators that would collide with command parsing or storage keys.
const disallowedUserChars = " ,:"

// ValidateUserName rejects identities that cannot safely name a memory
// group member: empty strings, non-printable input, and names containing
// separators used by the command surface or the history key layout.
func ValidateUserName(user string) error {
	if err := validate.Var(user, "required,printascii"); err != nil {
		return fmt.Errorf("%w: %q", errors.ErrInvalidUser, user)
	}
	if strings.ContainsAny(user, disallowedUserChars) {
		return fmt.Errorf("%w: %q", errors.ErrInvalidUser, user)
	}
	return nil
}
