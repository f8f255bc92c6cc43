package store

import "github.com/google/uuid"

// NewTaskID returns task-<uuid>. Random v4 ids cannot collide the way
// millisecond timestamps can when two tasks are created back to back.
func NewTaskID() string {
	return "task-" + uuid.NewString()
}

func NewUserID() string {
	return "user-" + uuid.NewString()
}
