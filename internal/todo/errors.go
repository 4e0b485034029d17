package todo

import "errors"

var (
	// ErrEmptyTitle rejects Add calls with no title.
	ErrEmptyTitle = errors.New("todo title cannot be empty")
)
