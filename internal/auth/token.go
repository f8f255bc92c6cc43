package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tareas-cli/internal/model"
)

const (
	DefaultSessionTTL = 30 * 24 * time.Hour
	secretFileName    = "secret.key"
)

var ErrInvalidToken = errors.New("invalid session token")

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret []byte, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Tokens{secret: secret, ttl: ttl, now: time.Now}
}

func (t *Tokens) Issue(userID, email string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("issue token: missing user id")
	}
	now := t.now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify returns the signed-in session a token stands for.
func (t *Tokens) Verify(tokenStr string) (model.Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenStr), claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return model.SignedOut(), fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return model.SignedOut(), ErrInvalidToken
	}
	return model.SignedIn(claims.Subject, claims.Email), nil
}

// LoadOrInitSecret reads the signing key from dir, creating a random one on first use.
func LoadOrInitSecret(dir string) ([]byte, error) {
	path := filepath.Join(dir, secretFileName)
	if b, err := os.ReadFile(path); err == nil && len(strings.TrimSpace(string(b))) > 0 {
		return []byte(strings.TrimSpace(string(b))), nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	enc := base64.RawURLEncoding.EncodeToString(raw)
	if err := os.WriteFile(path, []byte(enc+"\n"), 0o600); err != nil {
		return nil, err
	}
	return []byte(enc), nil
}
