// Package mysqldb wraps the MySQL connection used by the migrator.
package mysqldb

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/vfg2006/ads-collector/internal/config"
)

type Connection struct {
	*sql.DB
}

func NewConnection(ctx context.Context, cfg config.MySQL) (*Connection, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	return &Connection{DB: db}, nil
}

// RunInTransaction runs fn inside a transaction, rolling back on error or
// panic.
func (c *Connection) RunInTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err := recover(); err != nil {
			_ = tx.Rollback()
			panic(err)
		}
	}()

	if err := fn(tx); err != nil {
		if err := tx.Rollback(); err != nil {
			return err
		}
		return err
	}

	return tx.Commit()
}
