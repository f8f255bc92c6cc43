package publish

import (
	"bytes"
	"strings"

	"tareas-cli/internal/model"
	"tareas-cli/internal/projector"
)

type RenderOptions struct {
	// IncludeNotas appends each task's nota under its line.
	IncludeNotas bool
}

// RenderListMarkdown renders a projection as a Markdown checklist.
func RenderListMarkdown(p projector.Projection, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + projector.ListTitle)
	writeLn("")
	writeLn("- Filtro: " + p.Selection.Filter.Label())
	writeLn("- Orden: " + p.Selection.Sort.Label())
	writeLn("- Total: " + itoa(p.Counts.Total) + " (" + itoa(p.Counts.Completed) + " completadas, " + itoa(p.Counts.Pending) + " pendientes)")
	writeLn("")

	if p.Empty {
		writeLn("_" + projector.EmptyMessage + "_")
		return buf.String()
	}

	for _, row := range projector.Rows(p.Tasks) {
		check := "[ ]"
		if row.Completada {
			check = "[x]"
		}
		writeLn("- " + check + " **" + escapeInline(row.Nombre) + "** · " + row.FechaTexto + " · " + escapeInline(row.Prioridad) + " · " + row.Estado)
		if opt.IncludeNotas {
			if nota := strings.TrimSpace(row.Nota); nota != "" {
				for _, ln := range strings.Split(nota, "\n") {
					writeLn("  > " + ln)
				}
			}
		}
	}
	return buf.String()
}

// RenderTaskMarkdown renders a single task page.
func RenderTaskMarkdown(t model.Task) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(t.Nombre))
	writeLn("")
	writeLn("- ID: " + t.ID)
	writeLn("- Fecha: " + projector.FormatFecha(t.Fecha))
	writeLn("- Prioridad: " + t.Prioridad)
	writeLn("- Estado: " + projector.Estado(t))
	if nota := strings.TrimSpace(t.Nota); nota != "" {
		writeLn("")
		writeLn("## Nota")
		writeLn("")
		writeLn(nota)
	}
	return buf.String()
}

// escapeInline keeps task text from opening emphasis or links inside a list line.
func escapeInline(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `_`, `\_`, "`", "\\`", `[`, `\[`, `]`, `\]`)
	return r.Replace(strings.TrimSpace(s))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b [20]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}
