// Package publish exports task lists as Markdown files. The output is derived;
// the SQLite store stays canonical.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"tareas-cli/internal/projector"
)

type WriteOptions struct {
	IncludeNotas bool
	Overwrite    bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteList writes <toDir>/tareas.md plus one page per task under <toDir>/tareas/.
func WriteList(p projector.Projection, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	pagesDir := filepath.Join(toDir, "tareas")
	if err := os.MkdirAll(pagesDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	indexPath := filepath.Join(toDir, "tareas.md")
	md := RenderListMarkdown(p, RenderOptions{IncludeNotas: opt.IncludeNotas})
	if err := writeFile(indexPath, []byte(md), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	written := []string{indexPath}
	for _, t := range p.Tasks {
		path := filepath.Join(pagesDir, t.ID+".md")
		if err := writeFile(path, []byte(RenderTaskMarkdown(t)), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, path)
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
