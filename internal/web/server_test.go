package web

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tareas-cli/internal/auth"
	"tareas-cli/internal/editor"
	"tareas-cli/internal/store"
	"tareas-cli/internal/theme"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	srv   *Server
	h     http.Handler
	tasks *store.TaskStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	ts := store.NewTaskStore()
	srv, err := NewServer(ServerConfig{
		Tasks:  ts,
		Auth:   auth.NewLocalService(store.Store{Dir: dir}, auth.WithBcryptCost(bcrypt.MinCost)),
		Tokens: auth.NewTokens([]byte("test-secret"), time.Hour),
		Theme:  theme.New(false),
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return &testEnv{srv: srv, h: srv.Handler(), tasks: ts}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: invalid JSON %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, out
}

func (e *testEnv) signUp(t *testing.T, email string) (token, userID string) {
	t.Helper()
	code, out := e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{"email": email, "password": "secreto1"})
	if code != http.StatusOK {
		t.Fatalf("signup: %d %v", code, out)
	}
	data := out["data"].(map[string]any)
	return data["token"].(string), data["userId"].(string)
}

func TestTasksRequireToken(t *testing.T) {
	e := newTestEnv(t)
	code, out := e.do(t, http.MethodGet, "/api/tasks", "", nil)
	if code != http.StatusUnauthorized || out["error"] == nil {
		t.Fatalf("expected 401, got %d %v", code, out)
	}
	code, _ = e.do(t, http.MethodGet, "/api/tasks", "not-a-token", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", code)
	}
}

func TestSignInErrorsUseDisplayMessages(t *testing.T) {
	e := newTestEnv(t)
	e.signUp(t, "ana@example.com")

	code, out := e.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{"email": "ana@example.com", "password": "equivocada"})
	if code != http.StatusUnauthorized || out["error"] != "Correo electrónico o contraseña incorrectos." {
		t.Fatalf("unexpected wrong-password response: %d %v", code, out)
	}
	code, out = e.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{"email": "ana", "password": "secreto1"})
	if code != http.StatusBadRequest || out["error"] != "Por favor, ingresa un correo electrónico válido." {
		t.Fatalf("unexpected form response: %d %v", code, out)
	}
	code, _ = e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{"email": "ana@example.com", "password": "secreto1"})
	if code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate signup, got %d", code)
	}
	code, out = e.do(t, http.MethodPost, "/api/auth/signin", "", map[string]any{"email": "ana@example.com", "password": "secreto1"})
	if code != http.StatusOK || out["data"].(map[string]any)["token"] == "" {
		t.Fatalf("expected signin ok, got %d %v", code, out)
	}
}

func TestTaskLifecycle(t *testing.T) {
	e := newTestEnv(t)
	tok, uid := e.signUp(t, "ana@example.com")

	code, out := e.do(t, http.MethodGet, "/api/tasks", tok, nil)
	if code != http.StatusOK {
		t.Fatalf("list: %d", code)
	}
	if meta := out["meta"].(map[string]any); meta["message"] != "No hay tareas disponibles." {
		t.Fatalf("expected empty-state message, got %v", meta)
	}

	code, out = e.do(t, http.MethodPost, "/api/tasks", tok, map[string]any{"nombre": "", "fecha": "2024-01-01T10:00", "prioridad": "normal"})
	if code != http.StatusBadRequest || out["error"] != editor.MsgRequiredFields {
		t.Fatalf("expected validation failure, got %d %v", code, out)
	}
	if e.tasks.Len() != 0 {
		t.Fatalf("rejected create must not write")
	}

	code, out = e.do(t, http.MethodPost, "/api/tasks", tok, map[string]any{
		"nombre": "Buy milk", "fecha": "2024-01-01T10:00", "prioridad": "normal", "nota": "**2** litros",
	})
	if code != http.StatusCreated {
		t.Fatalf("create: %d %v", code, out)
	}
	if out["meta"].(map[string]any)["message"] != editor.MsgTaskAdded {
		t.Fatalf("expected success message, got %v", out["meta"])
	}
	created := out["data"].(map[string]any)
	id := created["id"].(string)
	if created["userId"] != uid || created["completada"] != false || created["estado"] != "Pendiente" {
		t.Fatalf("unexpected created task: %v", created)
	}
	if !strings.Contains(created["notaHtml"].(string), "<strong>2</strong>") {
		t.Fatalf("expected rendered nota, got %v", created["notaHtml"])
	}

	code, out = e.do(t, http.MethodPut, "/api/tasks/"+id, tok, map[string]any{"prioridad": "alta"})
	if code != http.StatusOK {
		t.Fatalf("edit: %d %v", code, out)
	}
	edited := out["data"].(map[string]any)
	if edited["prioridad"] != "alta" || edited["nombre"] != "Buy milk" || edited["id"] != id {
		t.Fatalf("unexpected edit result: %v", edited)
	}
	if out["meta"] != nil {
		t.Fatalf("edit must not carry a notification: %v", out["meta"])
	}

	code, out = e.do(t, http.MethodPost, "/api/tasks/"+id+"/toggle", tok, nil)
	if code != http.StatusOK || out["data"].(map[string]any)["completada"] != true {
		t.Fatalf("toggle: %d %v", code, out)
	}

	code, out = e.do(t, http.MethodGet, "/api/tasks?filter=pendientes", tok, nil)
	if code != http.StatusOK || len(out["data"].([]any)) != 0 {
		t.Fatalf("expected no pending tasks, got %v", out["data"])
	}

	code, out = e.do(t, http.MethodDelete, "/api/tasks/"+id, tok, nil)
	if code != http.StatusOK || out["data"].(map[string]any)["removed"] != true {
		t.Fatalf("delete: %d %v", code, out)
	}
	code, out = e.do(t, http.MethodDelete, "/api/tasks/"+id, tok, nil)
	if code != http.StatusOK || out["data"].(map[string]any)["removed"] != false {
		t.Fatalf("second delete should be a no-op: %d %v", code, out)
	}
}

func TestTasksAreScopedToOwner(t *testing.T) {
	e := newTestEnv(t)
	anaTok, _ := e.signUp(t, "ana@example.com")
	bobTok, _ := e.signUp(t, "bob@example.com")

	_, out := e.do(t, http.MethodPost, "/api/tasks", anaTok, map[string]any{"nombre": "Secreto", "fecha": "2024-01-01", "prioridad": "normal"})
	id := out["data"].(map[string]any)["id"].(string)

	_, out = e.do(t, http.MethodGet, "/api/tasks", bobTok, nil)
	if len(out["data"].([]any)) != 0 {
		t.Fatalf("bob sees ana's tasks: %v", out["data"])
	}
	if code, _ := e.do(t, http.MethodPut, "/api/tasks/"+id, bobTok, map[string]any{"nombre": "x"}); code != http.StatusNotFound {
		t.Fatalf("expected 404 editing another user's task, got %d", code)
	}
	if code, _ := e.do(t, http.MethodPost, "/api/tasks/"+id+"/toggle", bobTok, nil); code != http.StatusNotFound {
		t.Fatalf("expected 404 toggling another user's task, got %d", code)
	}
	_, out = e.do(t, http.MethodDelete, "/api/tasks/"+id, bobTok, nil)
	if out["data"].(map[string]any)["removed"] != false || e.tasks.Len() != 1 {
		t.Fatalf("bob must not delete ana's task")
	}
}

func TestThemeToggle(t *testing.T) {
	e := newTestEnv(t)
	tok, _ := e.signUp(t, "ana@example.com")
	_, out := e.do(t, http.MethodPost, "/api/theme", tok, nil)
	if out["data"].(map[string]any)["darkMode"] != true {
		t.Fatalf("expected dark after toggle: %v", out)
	}
	_, out = e.do(t, http.MethodGet, "/api/theme", tok, nil)
	if out["data"].(map[string]any)["darkMode"] != true {
		t.Fatalf("expected dark on read: %v", out)
	}
}

func TestWebSocketFeedPushesChanges(t *testing.T) {
	e := newTestEnv(t)
	tok, _ := e.signUp(t, "ana@example.com")

	ts := httptest.NewServer(e.h)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws?token=" + tok
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first map[string]any
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial projection: %v", err)
	}
	if first["type"] != "projection" || len(first["data"].([]any)) != 0 {
		t.Fatalf("unexpected initial message: %v", first)
	}

	if code, out := e.do(t, http.MethodPost, "/api/tasks", tok, map[string]any{"nombre": "Live", "fecha": "2024-01-01", "prioridad": "normal"}); code != http.StatusCreated {
		t.Fatalf("create: %d %v", code, out)
	}

	var next map[string]any
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read update: %v", err)
	}
	rows := next["data"].([]any)
	if len(rows) != 1 || rows[0].(map[string]any)["nombre"] != "Live" {
		t.Fatalf("expected pushed projection with new task, got %v", next)
	}
}

// nextSignals reads the event stream up to the next Datastar signal patch.
func nextSignals(t *testing.T, sc *bufio.Scanner) map[string]any {
	t.Helper()
	for sc.Scan() {
		line := sc.Text()
		i := strings.Index(line, "{")
		if !strings.HasPrefix(line, "data:") || i < 0 {
			continue
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(line[i:]), &out); err != nil {
			t.Fatalf("invalid signals %q: %v", line, err)
		}
		return out
	}
	t.Fatalf("event stream ended: %v", sc.Err())
	return nil
}

func TestEventStreamPushesProjectedRows(t *testing.T) {
	e := newTestEnv(t)
	tok, _ := e.signUp(t, "ana@example.com")
	e.do(t, http.MethodPost, "/api/tasks", tok, map[string]any{"nombre": "Hecha", "fecha": "2024-01-01", "prioridad": "normal"})

	ts := httptest.NewServer(e.h)
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/events?filter=pendientes", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("GET /api/events: %v", err)
	}
	defer resp.Body.Close()
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		t.Fatalf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}
	sc := bufio.NewScanner(resp.Body)

	first := nextSignals(t, sc)
	if rows := first["tasks"].([]any); len(rows) != 1 || rows[0].(map[string]any)["nombre"] != "Hecha" {
		t.Fatalf("unexpected initial rows: %v", first)
	}
	id := first["tasks"].([]any)[0].(map[string]any)["id"].(string)

	// Completing the only task empties the pending view.
	if code, out := e.do(t, http.MethodPost, "/api/tasks/"+id+"/toggle", tok, nil); code != http.StatusOK {
		t.Fatalf("toggle: %d %v", code, out)
	}
	next := nextSignals(t, sc)
	if rows := next["tasks"].([]any); len(rows) != 0 || next["message"] != "No hay tareas disponibles." || next["completed"] != float64(1) {
		t.Fatalf("expected empty pending projection, got %v", next)
	}
}

func TestHubDropsWhenSubscriberIsBehind(t *testing.T) {
	h := newHub()
	ch, cancel := h.subscribe()
	for i := 0; i < 20; i++ {
		h.broadcast()
	}
	if len(ch) != cap(ch) {
		t.Fatalf("expected buffered ticks to saturate, got %d", len(ch))
	}
	cancel()
	cancel()
	h.close()
	ch2, _ := h.subscribe()
	if _, ok := <-ch2; ok {
		t.Fatalf("subscribe after close should return a closed channel")
	}
}

func TestTasksMarkdownExport(t *testing.T) {
	e := newTestEnv(t)
	tok, _ := e.signUp(t, "ana@example.com")
	e.do(t, http.MethodPost, "/api/tasks", tok, map[string]any{
		"nombre": "Banco", "fecha": "2024-01-02", "prioridad": "normal", "nota": "llevar DNI",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks.md?notas=1", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/markdown") {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	body := rec.Body.String()
	if !strings.Contains(body, "- [ ] **Banco**") || !strings.Contains(body, "> llevar DNI") {
		t.Fatalf("unexpected markdown:\n%s", body)
	}
}
