package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/amirrezaask/cachestore/errors"
	"github.com/amirrezaask/cachestore/retry"
)

const (
	sqlite = "sqlite3"
	mysql  = "mysql"

	sqlTable = "cachestore_records"
	// keeps DELETE ... IN (...) under the bound-parameter limit of old sqlite builds.
	sqlRemoveChunk = 500
)

// SQL stores records in one table, scoped by namespace so several
// independent backends can share it.
type SQL struct {
	db        *sql.DB
	driver    string
	namespace string
}

type SQLConfig struct {
	Driver           string        `env:"SQL_DRIVER" envDefault:"sqlite3"`
	ConnectionString string        `env:"SQL_DSN,required"`
	Namespace        string        `env:"SQL_NAMESPACE" envDefault:"default"`
	MaxOpenConns     int           `env:"SQL_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns     int           `env:"SQL_MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxLifetime  time.Duration `env:"SQL_CONN_MAX_LIFETIME" envDefault:"5m"`
	PingRetries      int           `env:"SQL_PING_RETRIES" envDefault:"3"`
	PingInterval     time.Duration `env:"SQL_PING_INTERVAL" envDefault:"1s"`
}

// OpenSQL opens a pool, pings it and creates the records table if needed.
func OpenSQL(ctx context.Context, c SQLConfig) (*SQL, error) {
	db, err := sql.Open(c.Driver, c.ConnectionString)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open %s connection", c.Driver)
	}
	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MaxIdleConns)
	db.SetConnMaxLifetime(c.ConnMaxLifetime)

	err = retry.Do(ctx, db.PingContext, c.PingRetries, c.PingInterval)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "cannot ping %s database", c.Driver)
	}

	s, err := NewSQL(ctx, db, c.Namespace)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQL wraps an existing pool. Only sqlite3 and mysql drivers are supported.
func NewSQL(ctx context.Context, db *sql.DB, namespace string) (*SQL, error) {
	driver := driverName(db)

	var createTable string
	switch driver {
	case mysql:
		createTable = "CREATE TABLE IF NOT EXISTS " + sqlTable + " (" +
			"namespace VARCHAR(191) NOT NULL," +
			"`key` VARCHAR(191) NOT NULL," +
			"`value` LONGTEXT NOT NULL," +
			"PRIMARY KEY (namespace, `key`)" +
			");"
	case sqlite:
		createTable = "CREATE TABLE IF NOT EXISTS " + sqlTable + " (" +
			"namespace TEXT NOT NULL," +
			"`key` TEXT NOT NULL," +
			"`value` TEXT NOT NULL," +
			"PRIMARY KEY (namespace, `key`)" +
			");"
	default:
		return nil, errors.Newf("unsupported database driver for sql backend: %s", driver)
	}

	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, errors.Wrap(err, "cannot create table %s", sqlTable)
	}

	return &SQL{db: db, driver: driver, namespace: namespace}, nil
}

// avoids importing driver packages by name.
func driverName(db *sql.DB) string {
	switch fmt.Sprintf("%T", db.Driver()) {
	case "*sqlite3.SQLiteDriver":
		return sqlite
	case "*mysql.MySQLDriver":
		return mysql
	default:
		return fmt.Sprintf("%T", db.Driver())
	}
}

func (s *SQL) Close() error {
	return s.db.Close()
}

func (s *SQL) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT `value` FROM "+sqlTable+" WHERE namespace = ? AND `key` = ?", s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "cannot read %s from %s", key, sqlTable)
	}
	return value, true, nil
}

func (s *SQL) SetItem(ctx context.Context, key string, value string) error {
	var stmt string
	switch s.driver {
	case mysql:
		stmt = "INSERT INTO " + sqlTable + " (namespace, `key`, `value`) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE `value` = VALUES(`value`);"
	case sqlite:
		stmt = "INSERT INTO " + sqlTable + " (namespace, `key`, `value`) VALUES (?, ?, ?) ON CONFLICT(namespace, `key`) DO UPDATE SET `value` = excluded.`value`;"
	default:
		return errors.Newf("unsupported driver '%s'", s.driver)
	}
	_, err := s.db.ExecContext(ctx, stmt, s.namespace, key, value)
	return errors.Wrap(err, "cannot write %s into %s", key, sqlTable)
}

func (s *SQL) RemoveItem(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM "+sqlTable+" WHERE namespace = ? AND `key` = ?", s.namespace, key)
	return errors.Wrap(err, "cannot delete %s from %s", key, sqlTable)
}

// MultiRemove deletes in one statement, or in one transaction when the batch
// has to be split into chunks.
func (s *SQL) MultiRemove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if len(keys) <= sqlRemoveChunk {
		_, err := s.db.ExecContext(ctx, deleteInQuery(len(keys)), deleteInArgs(s.namespace, keys)...)
		return errors.Wrap(err, "cannot delete %d keys from %s", len(keys), sqlTable)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "cannot begin multi remove transaction")
	}
	for start := 0; start < len(keys); start += sqlRemoveChunk {
		end := min(start+sqlRemoveChunk, len(keys))
		chunk := keys[start:end]
		if _, err := tx.ExecContext(ctx, deleteInQuery(len(chunk)), deleteInArgs(s.namespace, chunk)...); err != nil {
			_ = tx.Rollback()
			return errors.Wrap(err, "cannot delete %d keys from %s", len(chunk), sqlTable)
		}
	}
	return errors.Wrap(tx.Commit(), "cannot commit multi remove")
}

func deleteInQuery(n int) string {
	placeholders := strings.Repeat("?,", n)
	placeholders = placeholders[:len(placeholders)-1]
	return fmt.Sprintf("DELETE FROM %s WHERE namespace = ? AND `key` IN (%s)", sqlTable, placeholders)
}

func deleteInArgs(namespace string, keys []string) []any {
	args := make([]any, 0, len(keys)+1)
	args = append(args, namespace)
	for _, k := range keys {
		args = append(args, k)
	}
	return args
}

func (s *SQL) GetAllKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT `key` FROM "+sqlTable+" WHERE namespace = ?", s.namespace)
	if err != nil {
		return nil, errors.Wrap(err, "cannot list keys of %s", sqlTable)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, errors.Wrap(err, "cannot scan key from %s", sqlTable)
		}
		keys = append(keys, k)
	}
	return keys, errors.Wrap(rows.Err(), "cannot iterate keys of %s", sqlTable)
}
