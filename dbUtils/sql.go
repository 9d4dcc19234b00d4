package dbutils

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"insertbench/corpus"
)

// Differences between the database/sql backends
type dialect struct {
	driver      string
	placeholder func(int) string
	// largest number of bind parameters in a single statement
	maxParams int
	copy      func(ctx context.Context, t *sqlTx, table string, csv io.Reader) error
}

var dialects = map[string]*dialect{
	PostgresDriver: {
		driver:      PostgresDriver,
		placeholder: pgPlaceholder,
		maxParams:   65535,
		copy:        copyInPostgres,
	},
	MySQLDriver: {
		driver:      MySQLDriver,
		placeholder: questionMark,
		maxParams:   65535,
		copy:        loadDataMySQL,
	},
	SQLiteDriver: {
		driver:      SQLiteDriver,
		placeholder: questionMark,
		maxParams:   32766,
		copy:        insertEachRow,
	},
}

func questionMark(int) string { return "?" }

type sqlConn struct {
	db      *sql.DB
	conn    *sql.Conn
	dialect *dialect
}

type sqlTx struct {
	tx      *sql.Tx
	dialect *dialect
	// prepared inserts, keyed by table and number of rows; closed with the transaction
	stmts map[string]*sql.Stmt
}

func openSQL(ctx context.Context, opts Options) (*sqlConn, error) {
	d := dialects[opts.Driver]

	var db *sql.DB
	switch opts.Driver {
	case MySQLDriver:
		cfg, err := mysql.ParseDSN(opts.Connection)
		if err != nil {
			return nil, fmt.Errorf("parse connection: %w", err)
		}
		if opts.Username != "" {
			cfg.User = opts.Username
		}
		if opts.Password != "" {
			cfg.Passwd = opts.Password
		}
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, fmt.Errorf("connector: %w", err)
		}
		db = sql.OpenDB(connector)
	case PostgresDriver:
		dsn, err := postgresDSN(opts)
		if err != nil {
			return nil, fmt.Errorf("parse connection: %w", err)
		}
		db, err = sql.Open(PostgresDriver, dsn)
		if err != nil {
			return nil, err
		}
	default:
		var err error
		db, err = sql.Open(opts.Driver, opts.Connection)
		if err != nil {
			return nil, err
		}
	}

	// a single connection for the whole run
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &sqlConn{db: db, conn: conn, dialect: d}, nil
}

// lib/pq accepts urls and key=value strings; later keys override earlier ones
func postgresDSN(opts Options) (string, error) {
	dsn := opts.Connection
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		var err error
		if dsn, err = pq.ParseURL(dsn); err != nil {
			return "", err
		}
	}
	if opts.Username != "" {
		dsn += " user=" + quoteOption(opts.Username)
	}
	if opts.Password != "" {
		dsn += " password=" + quoteOption(opts.Password)
	}
	return strings.TrimSpace(dsn), nil
}

func quoteOption(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func (c *sqlConn) Begin(ctx context.Context) (Tx, error) {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx, dialect: c.dialect, stmts: map[string]*sql.Stmt{}}, nil
}

func (c *sqlConn) Driver() string { return c.dialect.driver }

func (c *sqlConn) Close(context.Context) error {
	return errors.Join(c.conn.Close(), c.db.Close())
}

func (t *sqlTx) insertStmt(ctx context.Context, table string, rows int) (*sql.Stmt, error) {
	key := table + "/" + strconv.Itoa(rows)
	if stmt, ok := t.stmts[key]; ok {
		return stmt, nil
	}
	stmt, err := t.tx.PrepareContext(ctx, insertQuery(table, rows, t.dialect.placeholder))
	if err != nil {
		return nil, err
	}
	t.stmts[key] = stmt
	return stmt, nil
}

func (t *sqlTx) Insert(ctx context.Context, table string, r corpus.Record) error {
	stmt, err := t.insertStmt(ctx, table, 1)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx, r.ID, r.Num, r.Str)
	return err
}

// Multi-row insert. Batches larger than the bind parameter limit are split.
func (t *sqlTx) InsertBatch(ctx context.Context, table string, rs []corpus.Record) error {
	maxRows := t.dialect.maxParams / 3
	for len(rs) > 0 {
		n := min(len(rs), maxRows)
		stmt, err := t.insertStmt(ctx, table, n)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, insertArgs(rs[:n])...); err != nil {
			return err
		}
		rs = rs[n:]
	}
	return nil
}

func (t *sqlTx) CopyCSV(ctx context.Context, table string, csv io.Reader) error {
	return t.dialect.copy(ctx, t, table, csv)
}

func (t *sqlTx) Exec(ctx context.Context, query string) error {
	_, err := t.tx.ExecContext(ctx, query)
	return err
}

func (t *sqlTx) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := t.tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}

func (t *sqlTx) Commit(context.Context) error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback(context.Context) error {
	return t.tx.Rollback()
}

// lib/pq only exposes COPY row by row: the csv chunk is decoded and each row is buffered by
// the driver, which sends it as one COPY ... FROM STDIN when the statement is flushed.
func copyInPostgres(ctx context.Context, t *sqlTx, table string, in io.Reader) error {
	stmt, err := t.tx.PrepareContext(ctx, pq.CopyIn(table, "id", "num", "str"))
	if err != nil {
		return err
	}
	err = decodeCSV(in, func(id, num int32, str string) error {
		_, err := stmt.ExecContext(ctx, id, num, str)
		return err
	})
	if err == nil {
		_, err = stmt.ExecContext(ctx)
	}
	return errors.Join(err, stmt.Close())
}

// LOAD DATA LOCAL INFILE reading from a registered io.Reader. The server must have
// local_infile enabled.
func loadDataMySQL(ctx context.Context, t *sqlTx, table string, in io.Reader) error {
	name := "insertbench-" + uuid.NewString()
	mysql.RegisterReaderHandler(name, func() io.Reader { return in })
	defer mysql.DeregisterReaderHandler(name)

	_, err := t.tx.ExecContext(ctx, loadDataQuery(name, table))
	return err
}

func loadDataQuery(reader string, table string) string {
	return "LOAD DATA LOCAL INFILE 'Reader::" + reader + "' INTO TABLE " + table +
		" FIELDS TERMINATED BY ',' LINES TERMINATED BY '\\n' (id, num, str)"
}

// SQLite has no bulk load channel
func insertEachRow(ctx context.Context, t *sqlTx, table string, in io.Reader) error {
	stmt, err := t.insertStmt(ctx, table, 1)
	if err != nil {
		return err
	}
	return decodeCSV(in, func(id, num int32, str string) error {
		_, err := stmt.ExecContext(ctx, id, num, str)
		return err
	})
}

func decodeCSV(in io.Reader, fn func(id, num int32, str string) error) error {
	r := csv.NewReader(in)
	r.FieldsPerRecord = 3
	r.ReuseRecord = true

	for {
		fields, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil {
			return fmt.Errorf("id: %w", err)
		}
		num, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return fmt.Errorf("num: %w", err)
		}
		if err := fn(int32(id), int32(num), fields[2]); err != nil {
			return err
		}
	}
}
