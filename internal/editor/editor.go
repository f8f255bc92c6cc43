// Package editor holds the transient create/edit draft of a single task and
// hands a validated record to the task store on commit.
package editor

import (
	"errors"
	"strings"
	"time"

	"tareas-cli/internal/model"
	"tareas-cli/internal/store"
)

// User-facing notifications.
const (
	MsgRequiredFields = "Por favor, complete todos los campos obligatorios."
	MsgTaskAdded      = "Tarea agregada con éxito"
)

var (
	ErrNotOpen     = errors.New("editor is not open")
	ErrAlreadyOpen = errors.New("editor is already open")
	ErrNoSession   = errors.New("not signed in")
	ErrValidation  = errors.New("validation failed")
)

// ValidationError lists the required fields left blank.
type ValidationError struct {
	Missing []model.Field
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, f := range e.Missing {
		parts = append(parts, string(f))
	}
	return "missing required fields: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type Mode int

const (
	ModeClosed Mode = iota
	ModeCreate
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return "closed"
	}
}

// TaskWriter is the part of the task store the editor commits to.
type TaskWriter interface {
	Add(model.Task) error
	Edit(model.Task) error
}

// SessionSource reports the active session at commit time.
type SessionSource interface {
	Session() model.Session
}

type SessionFunc func() model.Session

func (f SessionFunc) Session() model.Session { return f() }

// StaticSession is a SessionSource that never changes.
type StaticSession model.Session

func (s StaticSession) Session() model.Session { return model.Session(s) }

type Notifier interface {
	Notify(msg string)
}

type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

type Option func(*Controller)

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notify = n }
}

func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(c *Controller) { c.now = fn }
}

// Controller is the draft state machine: Closed, Open-Create or Open-Edit.
//
// Field edits touch only the draft; the store sees nothing until a successful Commit.
type Controller struct {
	mode     Mode
	draft    model.Draft
	original model.Task

	writer  TaskWriter
	session SessionSource
	notify  Notifier
	newID   func() string
	now     func() time.Time
}

func New(w TaskWriter, s SessionSource, opts ...Option) *Controller {
	c := &Controller{
		mode:    ModeClosed,
		draft:   model.NewDraft(),
		writer:  w,
		session: s,
		notify:  NotifierFunc(func(string) {}),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(c)
	}
	if c.newID == nil {
		c.newID = store.NewTaskID
	}
	return c
}

func (c *Controller) Mode() Mode         { return c.mode }
func (c *Controller) IsOpen() bool       { return c.mode != ModeClosed }
func (c *Controller) Draft() model.Draft { return c.draft }

// Editing returns the task being edited (Open-Edit only).
func (c *Controller) Editing() (model.Task, bool) {
	if c.mode != ModeEdit {
		return model.Task{}, false
	}
	return c.original, true
}

// OpenCreate starts a new task with empty defaults.
func (c *Controller) OpenCreate() error {
	if c.IsOpen() {
		return ErrAlreadyOpen
	}
	c.mode = ModeCreate
	c.draft = model.NewDraft()
	c.original = model.Task{}
	return nil
}

// OpenEdit starts editing a copy of t.
func (c *Controller) OpenEdit(t model.Task) error {
	if c.IsOpen() {
		return ErrAlreadyOpen
	}
	c.mode = ModeEdit
	c.draft = model.DraftFromTask(t)
	c.original = t
	return nil
}

func (c *Controller) SetField(f model.Field, value string) error {
	if !c.IsOpen() {
		return ErrNotOpen
	}
	d, err := c.draft.WithField(f, value)
	if err != nil {
		return err
	}
	c.draft = d
	return nil
}

// Cancel discards the draft without touching the store.
func (c *Controller) Cancel() {
	c.reset()
}

func (c *Controller) reset() {
	c.mode = ModeClosed
	c.draft = model.NewDraft()
	c.original = model.Task{}
}

// Commit validates the draft and writes it to the store.
//
// On a validation or store failure the editor stays open with the draft intact.
// Creating stamps a fresh id, the session's user and completada=false, then
// notifies MsgTaskAdded. Editing keeps the original id, user and completada.
func (c *Controller) Commit() (model.Task, error) {
	if !c.IsOpen() {
		return model.Task{}, ErrNotOpen
	}
	if missing := c.draft.Missing(); len(missing) > 0 {
		c.notify.Notify(MsgRequiredFields)
		return model.Task{}, &ValidationError{Missing: missing}
	}

	now := c.now()
	switch c.mode {
	case ModeCreate:
		sess := c.session.Session()
		if !sess.LoggedIn || strings.TrimSpace(sess.UserID) == "" {
			return model.Task{}, ErrNoSession
		}
		t := c.draft.ApplyTo(model.Task{
			ID:         c.newID(),
			UserID:     sess.UserID,
			Completada: false,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err := c.writer.Add(t); err != nil {
			return model.Task{}, err
		}
		c.reset()
		c.notify.Notify(MsgTaskAdded)
		return t, nil

	default:
		t := c.draft.ApplyTo(c.original)
		t.UpdatedAt = now
		if err := c.writer.Edit(t); err != nil {
			return model.Task{}, err
		}
		c.reset()
		return t, nil
	}
}
