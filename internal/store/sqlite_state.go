package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"tareas-cli/internal/model"
)

// LoadTasks reads every persisted task (all users) into a fresh TaskStore,
// preserving insertion order.
func (s Store) LoadTasks(ctx context.Context) (*TaskStore, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tasks, err := readJSONRows[model.Task](ctx, db, `SELECT json FROM tasks ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return NewTaskStore(tasks...), nil
}

// ApplyChange writes one mutation to disk. Rows written by other processes
// sharing the data directory are left alone.
func (s Store) ApplyChange(ctx context.Context, c Change) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	t := c.Task
	if c.Op == OpRemove {
		_, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, t.ID)
		return err
	}

	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	nowMs := time.Now().UTC().UnixMilli()

	if c.Op == OpAdd {
		_, err := db.ExecContext(ctx, `INSERT INTO tasks(
			id, user_id, seq,
			nombre, fecha, prioridad, completada,
			json, updated_at_unixms
		) VALUES(?, ?, (SELECT COALESCE(MAX(seq), -1) + 1 FROM tasks), ?, ?, ?, ?, ?, ?)`,
			t.ID, strings.TrimSpace(t.UserID),
			t.Nombre, t.Fecha, t.Prioridad, boolToInt(t.Completada),
			string(raw), nowMs,
		)
		return err
	}

	res, err := db.ExecContext(ctx, `UPDATE tasks SET
		nombre = ?, fecha = ?, prioridad = ?, completada = ?,
		json = ?, updated_at_unixms = ?
	WHERE id = ?`,
		t.Nombre, t.Fecha, t.Prioridad, boolToInt(t.Completada),
		string(raw), nowMs, t.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Removed on disk by another process after we loaded it.
		return errNotFound("task", t.ID)
	}
	return nil
}

// AutoSave persists every mutation of ts as it happens. Failures are reported
// to onErr (if set); the in-memory store stays authoritative either way.
func (s Store) AutoSave(ctx context.Context, ts *TaskStore, onErr func(error)) {
	ts.OnMutation(func(c Change) {
		if err := s.ApplyChange(ctx, c); err != nil && onErr != nil {
			onErr(err)
		}
	})
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
