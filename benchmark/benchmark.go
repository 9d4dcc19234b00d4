package benchmark

import (
	"context"
	"errors"
	"fmt"

	"insertbench/corpus"
	dbutils "insertbench/dbUtils"
)

type Strategy interface {
	// Name used in logs and reports
	Name() string
	// Destination table, cleared after every repetition
	Table() string
	// Writes the whole corpus through tx, grouping 'batchSize' records per submission when the
	// strategy batches
	Load(ctx context.Context, tx dbutils.Tx, c corpus.Corpus, batchSize int) error
}

// Runs one repetition: loads the corpus in a transaction and commits, then deletes every row of
// the destination table and commits again. The table is cleared even when the load fails.
func RunRep(ctx context.Context, conn dbutils.Conn, s Strategy, c corpus.Corpus, batchSize int) error {
	loadErr := load(ctx, conn, s, c, batchSize)
	clearErr := dbutils.ClearTables(ctx, conn, s.Table())
	if clearErr != nil {
		clearErr = fmt.Errorf("clear %s: %w", s.Table(), clearErr)
	}
	return errors.Join(loadErr, clearErr)
}

func load(ctx context.Context, conn dbutils.Conn, s Strategy, c corpus.Corpus, batchSize int) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := s.Load(ctx, tx, c, batchSize); err != nil {
		return errors.Join(fmt.Errorf("load: %w", err), tx.Rollback(ctx))
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
