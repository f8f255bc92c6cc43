package auth

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tareas-cli/internal/model"
)

const sessionFileName = "session.jwt"

// SessionFile keeps the signed-in session between CLI invocations.
type SessionFile struct {
	Path   string
	Tokens *Tokens
}

func NewSessionFile(dir string, tokens *Tokens) *SessionFile {
	return &SessionFile{Path: filepath.Join(dir, sessionFileName), Tokens: tokens}
}

func (f *SessionFile) Save(userID, email string) error {
	tok, err := f.Tokens.Issue(userID, email)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, []byte(tok+"\n"), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

// Load resolves the stored session. A missing, expired or tampered token is a
// checked signed-out session, not an error.
func (f *SessionFile) Load() (model.Session, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.SignedOut(), nil
	}
	if err != nil {
		return model.SignedOut(), err
	}
	sess, err := f.Tokens.Verify(strings.TrimSpace(string(b)))
	if err != nil {
		return model.SignedOut(), nil
	}
	return sess, nil
}

func (f *SessionFile) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
