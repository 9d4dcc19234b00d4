// Package benchtest provides an in-memory dbutils.Conn that records every call, for testing
// strategies without a database.
package benchtest

import (
	"context"
	"errors"
	"io"
	"strings"

	"insertbench/corpus"
	dbutils "insertbench/dbUtils"
)

// Call is one submission made through a transaction.
type Call struct {
	Kind  string // "insert", "batch", "copy" or "exec"
	Table string
	Rows  int    // records submitted by this call
	Data  string // csv payload for "copy", query for "exec"
}

// Conn records calls and keeps committed row counts per table. Statements starting with
// "DELETE FROM" empty the table.
type Conn struct {
	Calls   []Call
	Rows    map[string]int64
	Commits int
	// returned by the Nth submission (1-based) when FailAt > 0
	FailAt int
	Err    error

	submissions int
}

type tx struct {
	conn    *Conn
	pending map[string]int64
	cleared map[string]bool
	done    bool
}

var ErrTxDone = errors.New("transaction already finished")

func NewConn() *Conn {
	return &Conn{Rows: map[string]int64{}}
}

func (c *Conn) Begin(context.Context) (dbutils.Tx, error) {
	return &tx{conn: c, pending: map[string]int64{}, cleared: map[string]bool{}}, nil
}

func (c *Conn) Driver() string { return "benchtest" }

func (c *Conn) Close(context.Context) error { return nil }

// Calls of the given kind
func (c *Conn) CallsOf(kind string) []Call {
	calls := []Call{}
	for _, call := range c.Calls {
		if call.Kind == kind {
			calls = append(calls, call)
		}
	}
	return calls
}

func (t *tx) submit(call Call) error {
	if t.done {
		return ErrTxDone
	}
	t.conn.submissions++
	if t.conn.FailAt > 0 && t.conn.submissions == t.conn.FailAt {
		return t.conn.Err
	}
	t.conn.Calls = append(t.conn.Calls, call)
	t.pending[call.Table] += int64(call.Rows)
	return nil
}

func (t *tx) Insert(_ context.Context, table string, _ corpus.Record) error {
	return t.submit(Call{Kind: "insert", Table: table, Rows: 1})
}

func (t *tx) InsertBatch(_ context.Context, table string, rs []corpus.Record) error {
	return t.submit(Call{Kind: "batch", Table: table, Rows: len(rs)})
}

func (t *tx) CopyCSV(_ context.Context, table string, csv io.Reader) error {
	data, err := io.ReadAll(csv)
	if err != nil {
		return err
	}
	return t.submit(Call{Kind: "copy", Table: table, Rows: strings.Count(string(data), "\n"), Data: string(data)})
}

func (t *tx) Exec(_ context.Context, query string) error {
	if t.done {
		return ErrTxDone
	}
	t.conn.Calls = append(t.conn.Calls, Call{Kind: "exec", Data: query})
	if table, ok := strings.CutPrefix(query, "DELETE FROM "); ok {
		t.cleared[table] = true
		t.pending[table] = 0
	}
	return nil
}

func (t *tx) Count(_ context.Context, table string) (int64, error) {
	if t.cleared[table] {
		return t.pending[table], nil
	}
	return t.conn.Rows[table] + t.pending[table], nil
}

func (t *tx) Commit(context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	for table := range t.cleared {
		t.conn.Rows[table] = 0
	}
	for table, n := range t.pending {
		t.conn.Rows[table] += n
	}
	t.conn.Commits++
	return nil
}

func (t *tx) Rollback(context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	return nil
}
