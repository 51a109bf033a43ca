package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrItemNotFound = errors.New("item not found")

	ErrLockHeld = errors.New("lock already held for key")
)
