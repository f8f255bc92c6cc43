package web

import (
	"errors"
	"net/http"
	"strings"

	"tareas-cli/internal/editor"
	"tareas-cli/internal/model"
	"tareas-cli/internal/perm"
	"tareas-cli/internal/projector"
	"tareas-cli/internal/publish"
	"tareas-cli/internal/store"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type taskJSON struct {
	projector.Row
	NotaHTML string `json:"notaHtml,omitempty"`
}

func toJSON(tasks []model.Task) []taskJSON {
	rows := projector.Rows(tasks)
	out := make([]taskJSON, 0, len(rows))
	for _, r := range rows {
		out = append(out, taskJSON{Row: r, NotaHTML: notaHTML(r.Nota)})
	}
	return out
}

func selectionFrom(r *http.Request) projector.Selection {
	q := r.URL.Query()
	return projector.Selection{
		Filter: projector.ParseFilter(q.Get("filter")),
		Sort:   projector.ParseSort(q.Get("sort")),
	}
}

// project must be called with s.mu held.
func (s *Server) project(userID string, sel projector.Selection) projector.Projection {
	return projector.Project(s.cfg.Tasks.GetAll(), userID, sel)
}

func listPayload(p projector.Projection) map[string]any {
	meta := map[string]any{
		"title":     projector.ListTitle,
		"selection": p.Selection,
		"counts":    p.Counts,
	}
	if p.Empty {
		meta["message"] = projector.EmptyMessage
	}
	return map[string]any{"data": toJSON(p.Tasks), "meta": meta}
}

func (s *Server) handleTasksList(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	s.mu.Lock()
	p := s.project(sess.UserID, selectionFrom(r))
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, listPayload(p))
}

// handleTasksMarkdown serves the same projection as handleTasksList as a Markdown checklist.
func (s *Server) handleTasksMarkdown(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	s.mu.Lock()
	p := s.project(sess.UserID, selectionFrom(r))
	s.mu.Unlock()
	notas := r.URL.Query().Get("notas") != ""
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(publish.RenderListMarkdown(p, publish.RenderOptions{IncludeNotas: notas})))
}

// ownedTask must be called with s.mu held.
func (s *Server) ownedTask(sess model.Session, id string) (model.Task, bool) {
	t, ok := s.cfg.Tasks.Get(strings.TrimSpace(id))
	if !ok || !perm.CanEditTask(sess, t) {
		return model.Task{}, false
	}
	return t, true
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	s.mu.Lock()
	t, ok := s.ownedTask(sess, mux.Vars(r)["id"])
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": toJSON([]model.Task{t})[0]})
}

// draftJSON carries editable fields; absent fields keep their current value.
type draftJSON struct {
	Nombre    *string `json:"nombre"`
	Fecha     *string `json:"fecha"`
	Prioridad *string `json:"prioridad"`
	Nota      *string `json:"nota"`
}

func (d draftJSON) apply(c *editor.Controller) error {
	fields := []struct {
		f model.Field
		v *string
	}{
		{model.FieldNombre, d.Nombre},
		{model.FieldFecha, d.Fecha},
		{model.FieldPrioridad, d.Prioridad},
		{model.FieldNota, d.Nota},
	}
	for _, x := range fields {
		if x.v == nil {
			continue
		}
		if err := c.SetField(x.f, *x.v); err != nil {
			return err
		}
	}
	return nil
}

// newController builds a one-shot editor for a request. A rejected commit
// leaves the editor open, so controllers are never reused across requests.
func (s *Server) newController(sess model.Session, notes *[]string) *editor.Controller {
	return editor.New(s.cfg.Tasks, editor.StaticSession(sess),
		editor.WithClock(s.cfg.Now),
		editor.WithNotifier(editor.NotifierFunc(func(msg string) { *notes = append(*notes, msg) })),
	)
}

func writeCommitError(w http.ResponseWriter, err error) {
	var ve *editor.ValidationError
	switch {
	case errors.As(err, &ve):
		missing := make([]string, 0, len(ve.Missing))
		for _, f := range ve.Missing {
			missing = append(missing, string(f))
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": editor.MsgRequiredFields, "missing": missing})
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, editor.ErrNoSession):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func commitPayload(t model.Task, notes []string) map[string]any {
	out := map[string]any{"data": toJSON([]model.Task{t})[0]}
	if len(notes) > 0 {
		out["meta"] = map[string]any{"message": notes[len(notes)-1]}
	}
	return out
}

func (s *Server) handleTasksCreate(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	var body draftJSON
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var notes []string
	c := s.newController(sess, &notes)
	if err := c.OpenCreate(); err != nil {
		writeCommitError(w, err)
		return
	}
	if err := body.apply(c); err != nil {
		writeCommitError(w, err)
		return
	}
	t, err := c.Commit()
	if err != nil {
		writeCommitError(w, err)
		return
	}
	s.cfg.Log.WithFields(logrus.Fields{"id": t.ID, "userId": t.UserID}).Info("task created")
	writeJSON(w, http.StatusCreated, commitPayload(t, notes))
}

func (s *Server) handleTasksEdit(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	var body draftJSON
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orig, ok := s.ownedTask(sess, mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	var notes []string
	c := s.newController(sess, &notes)
	if err := c.OpenEdit(orig); err != nil {
		writeCommitError(w, err)
		return
	}
	if err := body.apply(c); err != nil {
		writeCommitError(w, err)
		return
	}
	t, err := c.Commit()
	if err != nil {
		writeCommitError(w, err)
		return
	}
	s.cfg.Log.WithField("id", t.ID).Info("task edited")
	writeJSON(w, http.StatusOK, commitPayload(t, notes))
}

func (s *Server) handleTasksToggle(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	orig, ok := s.ownedTask(sess, mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	t, err := s.cfg.Tasks.ToggleComplete(orig.ID)
	if err != nil {
		writeCommitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commitPayload(t, nil))
}

func (s *Server) handleTasksDelete(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	id := strings.TrimSpace(mux.Vars(r)["id"])

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	if _, ok := s.ownedTask(sess, id); ok {
		removed = s.cfg.Tasks.Remove(id)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": id, "removed": removed}})
}

func (s *Server) handleThemeGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"darkMode": s.cfg.Theme.DarkMode()}})
}

func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	dark := s.cfg.Theme.Toggle()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"darkMode": dark}})
}
