package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"tareas-cli/internal/auth"
	"tareas-cli/internal/model"
)

type ctxKey int

const sessionKey ctxKey = iota

func sessionFrom(ctx context.Context) model.Session {
	sess, _ := ctx.Value(sessionKey).(model.Session)
	return sess
}

// bearerToken reads "Authorization: Bearer <jwt>", falling back to ?token=
// for EventSource and WebSocket clients that cannot set headers.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		sess, err := s.cfg.Tokens.Verify(tok)
		if err != nil || !sess.LoggedIn {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	s.handleCredentials(w, r, s.cfg.Auth.SignUp)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	s.handleCredentials(w, r, s.cfg.Auth.SignIn)
}

func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request, call func(ctx context.Context, email, password string) (string, error)) {
	var c credentials
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	c.Email = strings.TrimSpace(c.Email)
	if err := auth.ValidateForm(c.Email, c.Password); err != nil {
		writeError(w, http.StatusBadRequest, auth.Message(err))
		return
	}
	userID, err := call(r.Context(), c.Email, c.Password)
	if err != nil {
		writeJSON(w, authStatus(err), map[string]any{
			"error": auth.Message(err),
			"kind":  auth.KindOf(err).String(),
		})
		return
	}
	tok, err := s.cfg.Tokens.Issue(userID, strings.ToLower(c.Email))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"token": tok, "userId": userID}})
}

func authStatus(err error) int {
	var ae *auth.Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case auth.KindInvalidEmail, auth.KindWeakPassword:
		return http.StatusBadRequest
	case auth.KindEmailInUse:
		return http.StatusConflict
	case auth.KindUserDisabled:
		return http.StatusForbidden
	case auth.KindOther:
		return http.StatusInternalServerError
	default:
		return http.StatusUnauthorized
	}
}
