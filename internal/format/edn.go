package format

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// WriteEDN writes v as EDN. Values go through their JSON form first so json
// tags decide the keys; keys become kebab-case keywords (userId -> :user-id).
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return err
	}

	var buf bytes.Buffer
	p := ednPrinter{buf: &buf, pretty: pretty}
	p.value(x, 0)
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

type ednPrinter struct {
	buf    *bytes.Buffer
	pretty bool
}

func (p ednPrinter) value(v any, depth int) {
	switch t := v.(type) {
	case nil:
		p.buf.WriteString("nil")
	case bool:
		p.buf.WriteString(strconv.FormatBool(t))
	case json.Number:
		p.buf.WriteString(t.String())
	case string:
		p.buf.WriteString(strconv.Quote(t))
	case []any:
		p.seq('[', ']', len(t), depth, func(i int) { p.value(t[i], depth+1) })
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		p.seq('{', '}', len(keys), depth, func(i int) {
			p.buf.WriteString(Keyword(keys[i]))
			p.buf.WriteByte(' ')
			p.value(t[keys[i]], depth+1)
		})
	}
}

func (p ednPrinter) seq(open, close byte, n, depth int, item func(i int)) {
	p.buf.WriteByte(open)
	for i := 0; i < n; i++ {
		switch {
		case p.pretty:
			p.buf.WriteByte('\n')
			p.buf.WriteString(strings.Repeat("  ", depth+1))
		case i > 0:
			p.buf.WriteByte(' ')
		}
		item(i)
	}
	if p.pretty && n > 0 {
		p.buf.WriteByte('\n')
		p.buf.WriteString(strings.Repeat("  ", depth))
	}
	p.buf.WriteByte(close)
}

// Keyword turns a JSON key into an EDN keyword.
func Keyword(key string) string {
	var b strings.Builder
	b.WriteByte(':')
	prevLower := false
	for _, r := range strings.TrimSpace(key) {
		switch {
		case r == ' ' || r == '_':
			b.WriteByte('-')
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return b.String()
}
