// Package migration applies ordered SQL files against a database, tracking
// applied files in a schema_migrations ledger.
package migration

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const ledgerTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	filename VARCHAR(255) PRIMARY KEY
)`

// Database is the connection surface the migrator needs, satisfied by
// mysqldb.Connection.
type Database interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	RunInTransaction(ctx context.Context, fn func(*sql.Tx) error) error
}

// Run applies every .sql file in dir that is not yet recorded in
// schema_migrations, in lexical filename order, and returns the filenames it
// applied. All pending files run inside one transaction: either they all
// apply or none do.
func Run(ctx context.Context, db Database, dir string) ([]string, error) {
	if _, err := db.ExecContext(ctx, ledgerTable); err != nil {
		return nil, errors.Wrap(err, "migration: creating schema_migrations")
	}

	applied, err := appliedSet(ctx, db)
	if err != nil {
		return nil, err
	}

	files, err := sqlFiles(dir)
	if err != nil {
		return nil, err
	}

	pending := make([]string, 0, len(files))
	for _, file := range files {
		if !applied[file] {
			pending = append(pending, file)
		}
	}
	if len(pending) == 0 {
		logrus.Info("no pending migrations")
		return nil, nil
	}

	err = db.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, file := range pending {
			if err := applyFile(ctx, tx, dir, file); err != nil {
				return err
			}

			logrus.WithField("file", file).Info("applied migration")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pending, nil
}

func appliedSet(ctx context.Context, db Database) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, errors.Wrap(err, "migration: reading schema_migrations")
	}
	defer rows.Close()

	applied := map[string]bool{}
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, errors.Wrap(err, "migration: scanning schema_migrations")
		}
		applied[filename] = true
	}

	return applied, rows.Err()
}

func sqlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "migration: reading directory")
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	return files, nil
}

// applyFile splits the file on ';' and executes each non-empty statement.
// Statements therefore must not embed literal semicolons.
func applyFile(ctx context.Context, tx *sql.Tx, dir, file string) error {
	content, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return errors.Wrapf(err, "migration: reading %s", file)
	}

	for _, statement := range strings.Split(string(content), ";") {
		statement = strings.TrimSpace(statement)
		if statement == "" {
			continue
		}

		if _, err := tx.ExecContext(ctx, statement); err != nil {
			return errors.Wrapf(err, "migration: applying %s", file)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (filename) VALUES (?)", file,
	); err != nil {
		return errors.Wrapf(err, "migration: recording %s", file)
	}

	return nil
}
