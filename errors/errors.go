package errors

import "fmt"

var (
	ErrInvalidUser    = fmt.Errorf("invalid user name")
	ErrSelfJoin       = fmt.Errorf("cannot join memory with yourself")
	ErrUnknownCommand = fmt.Errorf("unknown command")
	ErrPersistence    = fmt.Errorf("persistence failure")
)
