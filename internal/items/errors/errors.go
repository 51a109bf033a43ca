package errors

import "errors"

var (
	ErrNotFound = errors.New("item not found")
)
