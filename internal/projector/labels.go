package projector

import "tareas-cli/internal/model"

const (
	ListTitle    = "Mis tareas"
	EmptyMessage = "No hay tareas disponibles."
)

// Estado is the status badge text for t.
func Estado(t model.Task) string {
	if t.Completada {
		return "Completado"
	}
	return "Pendiente"
}

// Row is a task as rendered in a list: the record plus its display strings.
type Row struct {
	model.Task
	FechaTexto string `json:"fechaTexto"`
	Estado     string `json:"estado"`
}

func Rows(tasks []model.Task) []Row {
	out := make([]Row, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, Row{Task: t, FechaTexto: FormatFecha(t.Fecha), Estado: Estado(t)})
	}
	return out
}
