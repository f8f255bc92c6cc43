// Package format renders CLI payloads as JSON or EDN.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type Format string

const (
	JSON Format = "json"
	EDN  Format = "edn"
)

func Parse(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "edn":
		return EDN, nil
	default:
		return "", fmt.Errorf("unknown format: %s (want json|edn)", s)
	}
}

// Envelope is the top-level shape of every successful command result.
type Envelope struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

// Write renders v in the named format.
func Write(w io.Writer, v any, format string, pretty bool) error {
	f, err := Parse(format)
	if err != nil {
		return err
	}
	switch f {
	case EDN:
		return WriteEDN(w, v, pretty)
	default:
		return WriteJSON(w, v, pretty)
	}
}

func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
