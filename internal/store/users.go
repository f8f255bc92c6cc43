package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tareas-cli/internal/model"
)

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s Store) FindUserByEmail(ctx context.Context, email string) (model.User, bool, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.User{}, false, err
	}
	defer db.Close()

	var (
		u        model.User
		disabled int
		created  int64
	)
	err = db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, disabled, created_at_unixms FROM users WHERE email = ?`,
		NormalizeEmail(email),
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &disabled, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, err
	}
	u.Disabled = disabled != 0
	u.CreatedAt = time.UnixMilli(created).UTC()
	return u, true, nil
}

func (s Store) InsertUser(ctx context.Context, u model.User) error {
	u.Email = NormalizeEmail(u.Email)
	if u.ID == "" || u.Email == "" {
		return errors.New("insert user: missing id/email")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, u.Email).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("insert user %s: %w", u.Email, ErrEmailInUse)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO users(id, email, password_hash, disabled, created_at_unixms) VALUES(?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, boolToInt(u.Disabled), u.CreatedAt.UTC().UnixMilli(),
	)
	return err
}

// SetUserDisabled flips the disabled flag for email. It reports false when no such user exists.
func (s Store) SetUserDisabled(ctx context.Context, email string, disabled bool) (bool, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return false, err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `UPDATE users SET disabled = ? WHERE email = ?`, boolToInt(disabled), NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
