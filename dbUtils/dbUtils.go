package dbutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"insertbench/corpus"
)

// Destination tables, one per strategy
const (
	SingleInsertsTable = "single_inserts"
	BatchInsertsTable  = "batch_inserts"
	BulkLoadTable      = "bulk_load"
)

var Tables = []string{SingleInsertsTable, BatchInsertsTable, BulkLoadTable}

// Supported drivers
const (
	PgxDriver      = "pgx"
	PostgresDriver = "postgres"
	MySQLDriver    = "mysql"
	SQLiteDriver   = "sqlite3"
)

type Options struct {
	Driver     string
	Connection string // url, dsn or file name, depending on the driver
	Username   string
	Password   string
}

// Conn is the single connection used by a run. Every statement goes through an explicit
// transaction.
type Conn interface {
	Begin(ctx context.Context) (Tx, error)
	Driver() string
	Close(ctx context.Context) error
}

type Tx interface {
	// Inserts a single record
	Insert(ctx context.Context, table string, r corpus.Record) error
	// Submits all records as a single batch
	InsertBatch(ctx context.Context, table string, rs []corpus.Record) error
	// Streams "id,num,str\n" lines to the database's bulk load facility
	CopyCSV(ctx context.Context, table string, csv io.Reader) error
	Exec(ctx context.Context, query string) error
	// Number of rows in the table, as seen by this transaction
	Count(ctx context.Context, table string) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Opens one connection with the configured driver and checks it is alive
func Open(ctx context.Context, opts Options) (Conn, error) {
	switch opts.Driver {
	case PgxDriver, "":
		return openPgx(ctx, opts)
	case PostgresDriver, MySQLDriver, SQLiteDriver:
		return openSQL(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown driver %q", opts.Driver)
	}
}

func createTableQuery(table string) string {
	return "CREATE TABLE IF NOT EXISTS " + table + " (id integer, num integer, str varchar(20))"
}

func deleteQuery(table string) string {
	return "DELETE FROM " + table
}

// Creates the destination tables if needed and empties them
func InitSchema(ctx context.Context, conn Conn) error {
	queries := []string{}
	for _, table := range Tables {
		queries = append(queries, createTableQuery(table))
	}
	for _, table := range Tables {
		queries = append(queries, deleteQuery(table))
	}
	return execAndCommit(ctx, conn, queries...)
}

// Empties the given tables (all destination tables if none are given) and commits
func ClearTables(ctx context.Context, conn Conn, tables ...string) error {
	if len(tables) == 0 {
		tables = Tables
	}
	queries := []string{}
	for _, table := range tables {
		queries = append(queries, deleteQuery(table))
	}
	return execAndCommit(ctx, conn, queries...)
}

// Returns the number of rows in a table, in its own transaction
func CountRows(ctx context.Context, conn Conn, table string) (int64, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	n, err := tx.Count(ctx, table)
	if err != nil {
		return 0, errors.Join(err, tx.Rollback(ctx))
	}
	return n, tx.Commit(ctx)
}

func execAndCommit(ctx context.Context, conn Conn, queries ...string) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, q := range queries {
		if err := tx.Exec(ctx, q); err != nil {
			return errors.Join(fmt.Errorf("%s: %w", q, err), tx.Rollback(ctx))
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Builds "insert into <table> (id, num, str) values (...), (...)" for 'rows' records.
// placeholder maps the 1-based argument position to its marker.
func insertQuery(table string, rows int, placeholder func(int) string) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (id, num, str) VALUES ")
	for i := 0; i < rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		sb.WriteString(placeholder(3*i + 1))
		sb.WriteString(", ")
		sb.WriteString(placeholder(3*i + 2))
		sb.WriteString(", ")
		sb.WriteString(placeholder(3*i + 3))
		sb.WriteByte(')')
	}
	return sb.String()
}

func insertArgs(rs []corpus.Record) []any {
	args := make([]any, 0, 3*len(rs))
	for _, r := range rs {
		args = append(args, r.ID, r.Num, r.Str)
	}
	return args
}
