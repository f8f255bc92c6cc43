// Package auth signs users in and out against a local account table and
// keeps the resulting session.
package auth

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"tareas-cli/internal/logging"
	"tareas-cli/internal/model"
	"tareas-cli/internal/store"
)

// Service is what the presentation layers need from authentication.
// Each call completes exactly once with a user id or an error.
type Service interface {
	SignIn(ctx context.Context, email, password string) (string, error)
	SignUp(ctx context.Context, email, password string) (string, error)
	SignOut(ctx context.Context) error
}

// UserStore is the account persistence LocalService runs on.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (model.User, bool, error)
	InsertUser(ctx context.Context, u model.User) error
	SetUserDisabled(ctx context.Context, email string, disabled bool) (bool, error)
}

type LocalService struct {
	users    UserStore
	sessions *SessionFile
	log      logrus.FieldLogger
	cost     int
	newID    func() string
}

type Option func(*LocalService)

// WithSessionFile persists successful sign-ins and clears the file on sign-out.
func WithSessionFile(f *SessionFile) Option {
	return func(s *LocalService) { s.sessions = f }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *LocalService) { s.log = l }
}

// WithBcryptCost is mostly for tests.
func WithBcryptCost(cost int) Option {
	return func(s *LocalService) { s.cost = cost }
}

func NewLocalService(users UserStore, opts ...Option) *LocalService {
	s := &LocalService{
		users: users,
		log:   logging.Discard(),
		cost:  bcrypt.DefaultCost,
		newID: store.NewUserID,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

var _ Service = (*LocalService)(nil)

func (s *LocalService) SignIn(ctx context.Context, email, password string) (string, error) {
	email = store.NormalizeEmail(email)
	if !ValidEmail(email) {
		return "", s.fail("signin", email, newError(KindInvalidEmail, nil))
	}
	if password == "" {
		return "", s.fail("signin", email, newError(KindInvalidCredential, errors.New("empty password")))
	}
	u, ok, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return "", s.fail("signin", email, newError(KindOther, err))
	}
	if !ok {
		return "", s.fail("signin", email, newError(KindUserNotFound, nil))
	}
	if u.Disabled {
		return "", s.fail("signin", email, newError(KindUserDisabled, nil))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", s.fail("signin", email, newError(KindWrongPassword, nil))
		}
		return "", s.fail("signin", email, newError(KindInvalidCredential, err))
	}
	if err := s.remember(u.ID, u.Email); err != nil {
		return "", s.fail("signin", email, newError(KindOther, err))
	}
	s.log.WithFields(logrus.Fields{"op": "signin", "email": email, "userId": u.ID}).Info("signed in")
	return u.ID, nil
}

func (s *LocalService) SignUp(ctx context.Context, email, password string) (string, error) {
	email = store.NormalizeEmail(email)
	if !ValidEmail(email) {
		return "", s.fail("signup", email, newError(KindInvalidEmail, nil))
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return "", s.fail("signup", email, newError(KindWeakPassword, nil))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		// bcrypt rejects passwords over 72 bytes.
		return "", s.fail("signup", email, newError(KindWeakPassword, err))
	}
	u := model.User{ID: s.newID(), Email: email, PasswordHash: string(hash)}
	if err := s.users.InsertUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrEmailInUse) {
			return "", s.fail("signup", email, newError(KindEmailInUse, err))
		}
		return "", s.fail("signup", email, newError(KindOther, err))
	}
	if err := s.remember(u.ID, u.Email); err != nil {
		return "", s.fail("signup", email, newError(KindOther, err))
	}
	s.log.WithFields(logrus.Fields{"op": "signup", "email": email, "userId": u.ID}).Info("account created")
	return u.ID, nil
}

func (s *LocalService) SignOut(ctx context.Context) error {
	if s.sessions == nil {
		return nil
	}
	if err := s.sessions.Clear(); err != nil {
		return s.fail("signout", "", newError(KindOther, err))
	}
	s.log.WithField("op", "signout").Info("signed out")
	return nil
}

// Disable blocks future sign-ins for email.
func (s *LocalService) Disable(ctx context.Context, email string, disabled bool) error {
	email = store.NormalizeEmail(email)
	ok, err := s.users.SetUserDisabled(ctx, email, disabled)
	if err != nil {
		return s.fail("disable", email, newError(KindOther, err))
	}
	if !ok {
		return s.fail("disable", email, newError(KindUserNotFound, nil))
	}
	s.log.WithFields(logrus.Fields{"op": "disable", "email": email, "disabled": disabled}).Info("account updated")
	return nil
}

func (s *LocalService) remember(userID, email string) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Save(userID, email)
}

func (s *LocalService) fail(op, email string, err *Error) error {
	fields := logrus.Fields{"op": op, "kind": err.Kind.String()}
	if strings.TrimSpace(email) != "" {
		fields["email"] = email
	}
	s.log.WithFields(fields).Warn("auth failed")
	return err
}
