package model

import (
	"fmt"
	"strings"
)

// Field names an editable task field.
type Field string

const (
	FieldNombre    Field = "nombre"
	FieldFecha     Field = "fecha"
	FieldPrioridad Field = "prioridad"
	FieldNota      Field = "nota"
)

// EditableFields lists the draft fields in form order.
var EditableFields = []Field{FieldNombre, FieldFecha, FieldPrioridad, FieldNota}

// RequiredFields must be non-empty (after trimming) for a draft to commit.
var RequiredFields = []Field{FieldNombre, FieldFecha, FieldPrioridad}

func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FieldNombre, FieldFecha, FieldPrioridad, FieldNota:
		return f, nil
	case "name":
		return FieldNombre, nil
	case "date":
		return FieldFecha, nil
	case "priority":
		return FieldPrioridad, nil
	case "note":
		return FieldNota, nil
	default:
		return "", fmt.Errorf("unknown field: %q", s)
	}
}

// Label is the form label shown next to the field.
func (f Field) Label() string {
	switch f {
	case FieldNombre:
		return "Nombre"
	case FieldFecha:
		return "Fecha y hora"
	case FieldPrioridad:
		return "Prioridad"
	case FieldNota:
		return "Nota"
	default:
		return string(f)
	}
}

// Draft is the uncommitted content of a task being created or edited.
type Draft struct {
	Nombre    string `json:"nombre"`
	Fecha     string `json:"fecha"`
	Prioridad string `json:"prioridad"`
	Nota      string `json:"nota"`
}

func NewDraft() Draft {
	return Draft{Prioridad: DefaultPrioridad}
}

func DraftFromTask(t Task) Draft {
	return Draft{
		Nombre:    t.Nombre,
		Fecha:     t.Fecha,
		Prioridad: t.Prioridad,
		Nota:      t.Nota,
	}
}

// WithField returns a copy of d with one field replaced. d itself is never modified.
func (d Draft) WithField(f Field, value string) (Draft, error) {
	switch f {
	case FieldNombre:
		d.Nombre = value
	case FieldFecha:
		d.Fecha = value
	case FieldPrioridad:
		d.Prioridad = value
	case FieldNota:
		d.Nota = value
	default:
		return d, fmt.Errorf("unknown field: %q", string(f))
	}
	return d, nil
}

func (d Draft) Get(f Field) string {
	switch f {
	case FieldNombre:
		return d.Nombre
	case FieldFecha:
		return d.Fecha
	case FieldPrioridad:
		return d.Prioridad
	case FieldNota:
		return d.Nota
	default:
		return ""
	}
}

// Missing returns the required fields that are blank after trimming.
func (d Draft) Missing() []Field {
	var out []Field
	for _, f := range RequiredFields {
		if strings.TrimSpace(d.Get(f)) == "" {
			out = append(out, f)
		}
	}
	return out
}

// ApplyTo copies the draft's content onto t, leaving identity and completion untouched.
func (d Draft) ApplyTo(t Task) Task {
	t.Nombre = d.Nombre
	t.Fecha = d.Fecha
	t.Prioridad = d.Prioridad
	t.Nota = d.Nota
	return t
}
