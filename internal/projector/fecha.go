package projector

import "fmt"

var meses = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatFecha renders fecha as a long Spanish date-time, e.g.
// "1 de enero de 2024, 10:00:00". Unparseable input is returned as is.
func FormatFecha(fecha string) string {
	t, ok := ParseFecha(fecha)
	if !ok {
		return fecha
	}
	return fmt.Sprintf("%d de %s de %d, %02d:%02d:%02d",
		t.Day(), meses[t.Month()-1], t.Year(),
		t.Hour(), t.Minute(), t.Second(),
	)
}
