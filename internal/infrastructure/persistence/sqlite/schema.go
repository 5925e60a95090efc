package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// TableExists reports whether a table named name exists in db.
func TableExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var found string
	err := db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect schema for %s: %w", name, err)
	}
	return true, nil
}

// CountRows returns the number of rows in table. The name is not escaped and
// must come from code, never from input.
func CountRows(ctx context.Context, db *sql.DB, table string) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// TableColumns returns the lower-cased column names of table.
func TableColumns(ctx context.Context, q querier, table string) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns[strings.ToLower(name)] = true
	}
	return columns, rows.Err()
}

// TableStatus describes one table of the permissions schema.
type TableStatus struct {
	Name   string
	Exists bool
	Rows   int64
}

// InspectPermissionTables reports the current and legacy permission tables.
func InspectPermissionTables(ctx context.Context, db *sql.DB) ([]TableStatus, error) {
	names := append([]string{"moz_perms", "moz_hosts"}, staleMigrationTables...)
	statuses := make([]TableStatus, 0, len(names))
	for _, name := range names {
		status := TableStatus{Name: name}
		exists, err := TableExists(ctx, db, name)
		if err != nil {
			return nil, err
		}
		if exists {
			status.Exists = true
			if status.Rows, err = CountRows(ctx, db, name); err != nil {
				return nil, err
			}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
