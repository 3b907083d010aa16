package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-collector/internal/config"
	"github.com/vfg2006/ads-collector/internal/domain"
)

const NameMySQL = "mysql"

type MySQLStorage struct {
	cfg config.MySQL

	// openDB is swappable in tests; it defaults to the mysql driver.
	openDB func(dsn string) (*sql.DB, error)
}

func NewMySQLStorage(cfg *config.Config) (*MySQLStorage, error) {
	if cfg.MySQL.User == "" || cfg.MySQL.Database == "" {
		return nil, errors.New("MYSQL_USER and MYSQL_DATABASE are required for the mysql storage")
	}

	return &MySQLStorage{
		cfg: cfg.MySQL,
		openDB: func(dsn string) (*sql.DB, error) {
			return sql.Open("mysql", dsn)
		},
	}, nil
}

func (s *MySQLStorage) Name() string {
	return NameMySQL
}

// Save runs one batched INSERT IGNORE: rows whose unique-key tuple already
// exists are silently skipped. The connection lives only for this call.
func (s *MySQLStorage) Save(ctx context.Context, dataset domain.Dataset, _ string) error {
	db, err := s.openDB(s.cfg.DSN())
	if err != nil {
		return errors.Wrap(err, "mysql: opening connection")
	}
	defer db.Close()

	query, args, err := insertQuery(s.cfg.Table, dataset)
	if err != nil {
		return errors.Wrap(err, "mysql: building insert")
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "mysql: executing insert")
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		inserted = int64(len(dataset))
	}

	logrus.WithFields(logrus.Fields{
		"table": s.cfg.Table,
		"rows":  inserted,
	}).Info("uploaded rows to MySQL")

	return nil
}

func insertQuery(table string, dataset domain.Dataset) (string, []any, error) {
	builder := squirrel.
		Insert(table).
		Options("IGNORE").
		Columns(domain.Columns()...)

	for _, record := range dataset {
		builder = builder.Values(sqlValues(record)...)
	}

	return builder.ToSql()
}

func sqlValues(record domain.AdRecord) []any {
	columns := domain.Columns()

	values := make([]any, len(columns))
	for i, column := range columns {
		value := record.Value(column)
		if date, ok := value.(time.Time); ok {
			value = date.Format(time.DateOnly)
		}
		values[i] = value
	}

	return values
}
