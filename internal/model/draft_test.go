package model

import "testing"

func TestDraftWithField_ReturnsCopy(t *testing.T) {
	d := NewDraft()
	d2, err := d.WithField(FieldNombre, "Buy milk")
	if err != nil {
		t.Fatalf("WithField: %v", err)
	}
	if d.Nombre != "" {
		t.Fatalf("expected original draft untouched, got %q", d.Nombre)
	}
	if d2.Nombre != "Buy milk" {
		t.Fatalf("expected nombre set, got %q", d2.Nombre)
	}
	if d2.Prioridad != DefaultPrioridad {
		t.Fatalf("expected default prioridad preserved, got %q", d2.Prioridad)
	}
}

func TestDraftWithField_UnknownField(t *testing.T) {
	if _, err := NewDraft().WithField(Field("color"), "red"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestDraftMissing_TrimsWhitespace(t *testing.T) {
	d := Draft{Nombre: "  ", Fecha: "2024-01-01T10:00", Prioridad: "\t"}
	got := d.Missing()
	if len(got) != 2 || got[0] != FieldNombre || got[1] != FieldPrioridad {
		t.Fatalf("unexpected missing fields: %v", got)
	}
	if m := (Draft{Nombre: "a", Fecha: "b", Prioridad: "c"}).Missing(); len(m) != 0 {
		t.Fatalf("expected nothing missing (nota optional), got %v", m)
	}
}

func TestDraftApplyTo_KeepsIdentity(t *testing.T) {
	orig := Task{ID: "task-1", UserID: "user-1", Nombre: "Old", Fecha: "2024-01-01", Prioridad: "alta", Completada: true}
	got := Draft{Nombre: "New", Fecha: "2024-02-02", Prioridad: "baja", Nota: "n"}.ApplyTo(orig)
	if got.ID != orig.ID || got.UserID != orig.UserID || !got.Completada {
		t.Fatalf("identity/completion changed: %+v", got)
	}
	if got.Nombre != "New" || got.Fecha != "2024-02-02" || got.Prioridad != "baja" || got.Nota != "n" {
		t.Fatalf("content not applied: %+v", got)
	}
}

func TestParseField_Aliases(t *testing.T) {
	cases := map[string]Field{
		"nombre":   FieldNombre,
		" Name ":   FieldNombre,
		"date":     FieldFecha,
		"priority": FieldPrioridad,
		"NOTA":     FieldNota,
	}
	for in, want := range cases {
		got, err := ParseField(in)
		if err != nil {
			t.Fatalf("ParseField(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseField(%q): got %q want %q", in, got, want)
		}
	}
}
