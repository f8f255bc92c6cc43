package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"tareas-cli/internal/store"
)

func newTestService(t *testing.T) (*LocalService, *SessionFile) {
	t.Helper()
	dir := t.TempDir()
	sf := NewSessionFile(dir, NewTokens([]byte("test-secret"), 0))
	svc := NewLocalService(store.Store{Dir: dir}, WithSessionFile(sf), WithBcryptCost(bcrypt.MinCost))
	return svc, sf
}

func TestSignUpThenSignIn(t *testing.T) {
	ctx := context.Background()
	svc, sf := newTestService(t)

	uid, err := svc.SignUp(ctx, "Ana@Example.com ", "secreto1")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if uid == "" {
		t.Fatalf("expected user id")
	}
	sess, err := sf.Load()
	if err != nil || !sess.LoggedIn || sess.UserID != uid || sess.Email != "ana@example.com" {
		t.Fatalf("expected persisted session, got %+v err=%v", sess, err)
	}

	if err := svc.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if sess, _ := sf.Load(); sess.LoggedIn || !sess.Checked {
		t.Fatalf("expected checked signed-out session, got %+v", sess)
	}

	got, err := svc.SignIn(ctx, "ana@example.com", "secreto1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if got != uid {
		t.Fatalf("expected same user id, got %q want %q", got, uid)
	}
}

func TestSignInErrorKinds(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	if _, err := svc.SignUp(ctx, "ana@example.com", "secreto1"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	cases := []struct {
		name     string
		email    string
		password string
		want     Kind
	}{
		{"invalid email", "not-an-email", "secreto1", KindInvalidEmail},
		{"unknown user", "bob@example.com", "secreto1", KindUserNotFound},
		{"wrong password", "ana@example.com", "otracosa", KindWrongPassword},
		{"empty password", "ana@example.com", "", KindInvalidCredential},
	}
	for _, c := range cases {
		_, err := svc.SignIn(ctx, c.email, c.password)
		if KindOf(err) != c.want {
			t.Fatalf("%s: got kind %v (%v), want %v", c.name, KindOf(err), err, c.want)
		}
	}
}

func TestSignUpErrorKinds(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	if _, err := svc.SignUp(ctx, "ana@example.com", "secreto1"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, err := svc.SignUp(ctx, "ANA@example.com", "secreto2"); KindOf(err) != KindEmailInUse {
		t.Fatalf("expected email in use, got %v", err)
	}
	if _, err := svc.SignUp(ctx, "bob@example.com", "123"); KindOf(err) != KindWeakPassword {
		t.Fatalf("expected weak password, got %v", err)
	}
	if _, err := svc.SignUp(ctx, "bob@", "secreto1"); KindOf(err) != KindInvalidEmail {
		t.Fatalf("expected invalid email, got %v", err)
	}
}

func TestDisabledAccountCannotSignIn(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	if _, err := svc.SignUp(ctx, "ana@example.com", "secreto1"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if err := svc.Disable(ctx, "ana@example.com", true); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	_, err := svc.SignIn(ctx, "ana@example.com", "secreto1")
	if KindOf(err) != KindUserDisabled {
		t.Fatalf("expected disabled, got %v", err)
	}
	if Message(err) != "La cuenta de usuario ha sido deshabilitada." {
		t.Fatalf("unexpected message: %q", Message(err))
	}

	if err := svc.Disable(ctx, "ana@example.com", false); err != nil {
		t.Fatalf("re-enable: %v", err)
	}
	if _, err := svc.SignIn(ctx, "ana@example.com", "secreto1"); err != nil {
		t.Fatalf("SignIn after re-enable: %v", err)
	}

	if err := svc.Disable(ctx, "nobody@example.com", true); KindOf(err) != KindUserNotFound {
		t.Fatalf("expected not found for unknown account, got %v", err)
	}
}

func TestSignOutWithoutSessionFile(t *testing.T) {
	svc := NewLocalService(store.Store{Dir: t.TempDir()}, WithBcryptCost(bcrypt.MinCost))
	if err := svc.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
}

func TestErrorUnwrap(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, _ = svc.SignUp(ctx, "ana@example.com", "secreto1")
	_, err := svc.SignUp(ctx, "ana@example.com", "secreto1")
	if !errors.Is(err, store.ErrEmailInUse) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	var ae *Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *auth.Error, got %T", err)
	}
}
