package perm

import (
	"strings"

	"tareas-cli/internal/model"
)

// CanEditTask enforces ownership rules for reading or mutating a task.
//
// Rules:
// - The session must be signed in with a non-empty user id.
// - Only the task's owner can see or change it; there is no sharing.
func CanEditTask(sess model.Session, t model.Task) bool {
	if !sess.LoggedIn {
		return false
	}
	userID := strings.TrimSpace(sess.UserID)
	if userID == "" {
		return false
	}
	return t.UserID == userID
}

