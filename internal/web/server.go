// Package web serves the task manager over HTTP: a JSON API guarded by bearer
// tokens plus live update feeds.
package web

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"tareas-cli/internal/auth"
	"tareas-cli/internal/logging"
	"tareas-cli/internal/store"
	"tareas-cli/internal/theme"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type ServerConfig struct {
	Tasks  *store.TaskStore
	Auth   auth.Service
	Tokens *auth.Tokens
	Theme  *theme.Theme
	Log    logrus.FieldLogger

	// Now is the editor clock; nil means time.Now.
	Now func() time.Time
}

type Server struct {
	// mu serializes every touch of the task store and the editor, so the
	// single-writer collection can sit behind concurrent requests.
	mu  sync.Mutex
	cfg ServerConfig
	hub *hub
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Tasks == nil {
		return nil, errors.New("web: missing task store")
	}
	if cfg.Auth == nil || cfg.Tokens == nil {
		return nil, errors.New("web: missing auth")
	}
	if cfg.Theme == nil {
		cfg.Theme = theme.New(false)
	}
	if cfg.Log == nil {
		cfg.Log = logging.Discard()
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	s := &Server{cfg: cfg, hub: newHub()}
	cfg.Tasks.OnChange(s.hub.broadcast)
	cfg.Theme.Subscribe(func(bool) { s.hub.broadcast() })
	return s, nil
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/signup", s.handleSignUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/signin", s.handleSignIn).Methods(http.MethodPost)

	priv := api.NewRoute().Subrouter()
	priv.Use(s.requireToken)
	priv.HandleFunc("/tasks", s.handleTasksList).Methods(http.MethodGet)
	priv.HandleFunc("/tasks", s.handleTasksCreate).Methods(http.MethodPost)
	priv.HandleFunc("/tasks.md", s.handleTasksMarkdown).Methods(http.MethodGet)
	priv.HandleFunc("/tasks/{id}", s.handleTaskGet).Methods(http.MethodGet)
	priv.HandleFunc("/tasks/{id}", s.handleTasksEdit).Methods(http.MethodPut)
	priv.HandleFunc("/tasks/{id}/toggle", s.handleTasksToggle).Methods(http.MethodPost)
	priv.HandleFunc("/tasks/{id}", s.handleTasksDelete).Methods(http.MethodDelete)
	priv.HandleFunc("/theme", s.handleThemeGet).Methods(http.MethodGet)
	priv.HandleFunc("/theme", s.handleThemeToggle).Methods(http.MethodPost)
	priv.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	priv.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// ready (if non-nil) receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(addr string)) error {
	ln, err := net.Listen("tcp", strings.TrimSpace(addr))
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if ready != nil {
		ready(ln.Addr().String())
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.hub.close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"ok": true}})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets the websocket upgrade take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.cfg.Log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
