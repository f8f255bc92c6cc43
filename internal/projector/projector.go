// Package projector derives the list of tasks a user actually sees: the
// collection scoped to its owner, filtered by completion status, then sorted.
//
// Projections are pure values recomputed on demand; nothing is cached.
package projector

import (
	"sort"
	"strings"
	"time"

	"tareas-cli/internal/model"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterCompleted StatusFilter = "completed"
	FilterPending   StatusFilter = "pending"
)

var filterOrder = []StatusFilter{FilterAll, FilterCompleted, FilterPending}

// ParseFilter accepts the English ids and the Spanish picker values. Anything
// else means "all".
func ParseFilter(s string) StatusFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed", "completadas", "done":
		return FilterCompleted
	case "pending", "pendientes", "todo":
		return FilterPending
	default:
		return FilterAll
	}
}

func (f StatusFilter) Label() string {
	switch f {
	case FilterCompleted:
		return "Completadas"
	case FilterPending:
		return "Pendientes"
	default:
		return "Todas"
	}
}

// Next cycles all → completed → pending → all.
func (f StatusFilter) Next() StatusFilter {
	return filterOrder[(indexOf(filterOrder, f)+1)%len(filterOrder)]
}

func (f StatusFilter) keep(t model.Task) bool {
	switch f {
	case FilterCompleted:
		return t.Completada
	case FilterPending:
		return !t.Completada
	default:
		return true
	}
}

type SortKey string

const (
	SortName     SortKey = "name"
	SortDate     SortKey = "date"
	SortPriority SortKey = "priority"
)

var sortOrder = []SortKey{SortName, SortDate, SortPriority}

// ParseSort accepts the English ids and the Spanish picker values. Anything
// else means "name".
func ParseSort(s string) SortKey {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date", "fecha":
		return SortDate
	case "priority", "prioridad":
		return SortPriority
	default:
		return SortName
	}
}

func (k SortKey) Label() string {
	switch k {
	case SortDate:
		return "Fecha"
	case SortPriority:
		return "Prioridad"
	default:
		return "Nombre"
	}
}

func (k SortKey) Next() SortKey {
	return sortOrder[(indexOf(sortOrder, k)+1)%len(sortOrder)]
}

func indexOf[T comparable](xs []T, x T) int {
	for i := range xs {
		if xs[i] == x {
			return i
		}
	}
	return 0
}

// Selection is the user's current filter/sort choice.
type Selection struct {
	Filter StatusFilter `json:"filter"`
	Sort   SortKey      `json:"sort"`
}

func DefaultSelection() Selection {
	return Selection{Filter: FilterAll, Sort: SortName}
}

// Counts summarizes the scoped (pre-filter) tasks of one user.
type Counts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

type Projection struct {
	Tasks []model.Task `json:"tasks"`
	// Empty is the explicit "no tasks to show" state. There is no loading state:
	// the store is always immediately available.
	Empty     bool      `json:"empty"`
	Counts    Counts    `json:"counts"`
	Selection Selection `json:"selection"`
}

// Project scopes tasks to userID, applies sel.Filter, then sorts by sel.Sort.
// The input slice is never modified. An empty userID sees nothing.
func Project(tasks []model.Task, userID string, sel Selection) Projection {
	sel.Filter = ParseFilter(string(sel.Filter))
	sel.Sort = ParseSort(string(sel.Sort))

	out := Projection{Tasks: []model.Task{}, Selection: sel}
	if strings.TrimSpace(userID) == "" {
		out.Empty = true
		return out
	}

	for _, t := range tasks {
		if t.UserID != userID {
			continue
		}
		out.Counts.Total++
		if t.Completada {
			out.Counts.Completed++
		} else {
			out.Counts.Pending++
		}
		if sel.Filter.keep(t) {
			out.Tasks = append(out.Tasks, t)
		}
	}

	sortTasks(out.Tasks, sel.Sort)
	out.Empty = len(out.Tasks) == 0
	return out
}

func sortTasks(ts []model.Task, key SortKey) {
	switch key {
	case SortDate:
		sort.SliceStable(ts, func(i, j int) bool { return fechaAfter(ts[i].Fecha, ts[j].Fecha) })
	case SortPriority:
		col := collate.New(language.Spanish)
		sort.SliceStable(ts, func(i, j int) bool { return col.CompareString(ts[i].Prioridad, ts[j].Prioridad) < 0 })
	default:
		// A collator is not safe for concurrent use; one per projection.
		col := newNameCollator()
		sort.SliceStable(ts, func(i, j int) bool { return col.CompareString(ts[i].Nombre, ts[j].Nombre) < 0 })
	}
}

func newNameCollator() *collate.Collator {
	return collate.New(language.Spanish, collate.IgnoreCase)
}

// CompareNombre compares two names the way the name sort does.
func CompareNombre(a, b string) int {
	return newNameCollator().CompareString(a, b)
}

// fechaAfter orders dates most-recent first. Values that parse as a date sort
// ahead of values that don't; unparseable values fall back to descending string order.
func fechaAfter(a, b string) bool {
	ta, okA := ParseFecha(a)
	tb, okB := ParseFecha(b)
	switch {
	case okA && okB:
		return ta.After(tb)
	case okA != okB:
		return okA
	default:
		return a > b
	}
}

var fechaLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseFecha parses the accepted fecha layouts (local wall-clock, or RFC3339).
func ParseFecha(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range fechaLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
