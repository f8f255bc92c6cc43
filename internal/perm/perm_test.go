package perm

import (
	"testing"

	"tareas-cli/internal/model"
)

func TestCanEditTask_OwnerOnly(t *testing.T) {
	task := model.Task{ID: "task-a", UserID: "user-1", Nombre: "A", Fecha: "2024-01-01"}

	if !CanEditTask(model.SignedIn("user-1", "ana@example.com"), task) {
		t.Fatalf("expected owner to edit")
	}
	if CanEditTask(model.SignedIn("user-2", "beto@example.com"), task) {
		t.Fatalf("expected other user to be blocked")
	}
	if CanEditTask(model.SignedOut(), task) {
		t.Fatalf("expected signed-out session to be blocked")
	}
	// A signed-in session with a blank id must not match ownerless rows.
	if CanEditTask(model.SignedIn("  ", ""), model.Task{ID: "task-b"}) {
		t.Fatalf("expected blank user id to be blocked")
	}
}
