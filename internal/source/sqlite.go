package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"taskprogress-cli/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteSchema is the layout SQLiteFetcher reads and WriteSQLite produces.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS groups (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  position INTEGER NOT NULL,
  -- NULL when the source group carried no task list at all.
  tasks_present INTEGER
);
CREATE TABLE IF NOT EXISTS tasks (
  group_id INTEGER NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  checked INTEGER NOT NULL DEFAULT 0,
  value REAL NOT NULL DEFAULT 0,
  PRIMARY KEY (group_id, position)
);
`

// SQLiteFetcher reads the collection from a SQLite file.
type SQLiteFetcher struct {
	Path string
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, p := range []string{
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func (f SQLiteFetcher) Fetch(ctx context.Context) ([]model.Group, error) {
	// Opening a missing file would silently create an empty database.
	if _, err := os.Stat(f.Path); err != nil {
		return nil, err
	}
	db, err := openSQLite(ctx, f.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	// Files written before tasks_present existed always carried task lists.
	present := "1"
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pragma_table_info('groups') WHERE name = 'tasks_present'`).Scan(&n); err != nil {
		return nil, fmt.Errorf("inspect groups: %w", err)
	}
	if n > 0 {
		present = "tasks_present"
	}

	rows, err := db.QueryContext(ctx, `SELECT id, name, `+present+` FROM groups ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	type groupRow struct {
		id      int64
		name    string
		present sql.NullInt64
	}
	var order []groupRow
	for rows.Next() {
		var r groupRow
		if err := rows.Scan(&r.id, &r.name, &r.present); err != nil {
			_ = rows.Close()
			return nil, err
		}
		order = append(order, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	groups := make([]model.Group, 0, len(order))
	for _, gr := range order {
		tasks, err := loadTasks(ctx, db, gr.id)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", gr.name, err)
		}
		if len(tasks) == 0 && (!gr.present.Valid || gr.present.Int64 == 0) {
			tasks = nil
		}
		groups = append(groups, model.Group{Name: gr.name, Tasks: tasks})
	}
	return Normalize(groups)
}

func loadTasks(ctx context.Context, db *sql.DB, groupID int64) ([]model.Task, error) {
	rows, err := db.QueryContext(ctx, `
SELECT name, description, checked, value
FROM tasks
WHERE group_id = ?
ORDER BY position`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		var checked int
		if err := rows.Scan(&t.Name, &t.Description, &checked, &t.Value); err != nil {
			return nil, err
		}
		t.Checked = checked != 0
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// WriteSQLite replaces the contents of the SQLite file at path with groups.
func WriteSQLite(ctx context.Context, path string, groups []model.Group) (err error) {
	if path == "" {
		return errors.New("sqlite: empty path")
	}
	db, err := openSQLite(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	// Recreate rather than migrate: the file is a snapshot, not a store.
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS tasks; DROP TABLE IF EXISTS groups;`+SQLiteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for gi, g := range groups {
		var present any
		if g.Tasks != nil {
			present = 1
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO groups(name, position, tasks_present) VALUES(?, ?, ?)`, g.Name, gi, present)
		if err != nil {
			return fmt.Errorf("insert group %q: %w", g.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for ti, t := range g.Tasks {
			checked := 0
			if t.Checked {
				checked = 1
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tasks(group_id, position, name, description, checked, value) VALUES(?, ?, ?, ?, ?, ?)`,
				id, ti, t.Name, t.Description, checked, t.Value,
			); err != nil {
				return fmt.Errorf("insert task %q[%d]: %w", g.Name, ti, err)
			}
		}
	}
	return tx.Commit()
}
