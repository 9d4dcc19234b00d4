package dbutils

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/jackc/pgx/v5"

	"insertbench/corpus"
)

type pgxConn struct {
	conn *pgx.Conn
}

type pgxTx struct {
	tx pgx.Tx
	// single row insert per table
	queries map[string]string
}

func openPgx(ctx context.Context, opts Options) (*pgxConn, error) {
	cfg, err := pgx.ParseConfig(opts.Connection)
	if err != nil {
		return nil, fmt.Errorf("parse connection: %w", err)
	}
	if opts.Username != "" {
		cfg.User = opts.Username
	}
	if opts.Password != "" {
		cfg.Password = opts.Password
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &pgxConn{conn: conn}, nil
}

func (c *pgxConn) Begin(ctx context.Context) (Tx, error) {
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxTx{tx: tx, queries: map[string]string{}}, nil
}

func (c *pgxConn) Driver() string { return PgxDriver }

func (c *pgxConn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

func pgPlaceholder(i int) string {
	return "$" + strconv.Itoa(i)
}

func (t *pgxTx) insertQuery(table string) string {
	q, ok := t.queries[table]
	if !ok {
		q = insertQuery(table, 1, pgPlaceholder)
		t.queries[table] = q
	}
	return q
}

// pgx prepares and caches the statement on first use
func (t *pgxTx) Insert(ctx context.Context, table string, r corpus.Record) error {
	_, err := t.tx.Exec(ctx, t.insertQuery(table), r.ID, r.Num, r.Str)
	return err
}

// One pipelined round trip with an insert per record
func (t *pgxTx) InsertBatch(ctx context.Context, table string, rs []corpus.Record) error {
	if len(rs) == 0 {
		return nil
	}
	query := t.insertQuery(table)
	batch := &pgx.Batch{}
	for _, r := range rs {
		batch.Queue(query, r.ID, r.Num, r.Str)
	}
	return t.tx.SendBatch(ctx, batch).Close()
}

func copyQuery(table string) string {
	return "COPY " + pgx.Identifier{table}.Sanitize() + " FROM STDIN WITH CSV"
}

func (t *pgxTx) CopyCSV(ctx context.Context, table string, csv io.Reader) error {
	_, err := t.tx.Conn().PgConn().CopyFrom(ctx, csv, copyQuery(table))
	return err
}

func (t *pgxTx) Exec(ctx context.Context, query string) error {
	_, err := t.tx.Exec(ctx, query)
	return err
}

func (t *pgxTx) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := t.tx.QueryRow(ctx, "SELECT count(*) FROM "+pgx.Identifier{table}.Sanitize()).Scan(&n)
	return n, err
}

func (t *pgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
