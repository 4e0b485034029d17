package todo

import "time"

// Status is the lifecycle state of a todo item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Item is a single unit of batched execution. Ids are assigned at insertion,
// increase monotonically, and are never reused.
type Item struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Update describes a partial mutation of an item. Nil fields are left
// untouched.
type Update struct {
	Title       *string
	Description *string
	Status      *Status
}
