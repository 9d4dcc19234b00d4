package worker

import (
	"context"
	"errors"
	"fmt"

	zlog "github.com/rs/zerolog/log"

	"insertbench/benchmark"
	"insertbench/corpus"
	dbutils "insertbench/dbUtils"
	"insertbench/util"
)

// Every (batch size, strategy) combination of a run, measured one after the other on a single
// connection
type Suite struct {
	Run        string
	Conn       dbutils.Conn
	Strategies []benchmark.Strategy
	BatchSizes []int
	Corpus     corpus.Corpus
	Clock      util.Clock
	Policy     Policy
}

// Prepares the tables, runs a worker per combination, and clears the tables at the end. Stops at
// the first error.
func (s *Suite) Execute(ctx context.Context) ([]*Result, error) {
	if err := dbutils.InitSchema(ctx, s.Conn); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	results, err := s.runAll(ctx)

	if clearErr := dbutils.ClearTables(ctx, s.Conn); clearErr != nil {
		err = errors.Join(err, fmt.Errorf("teardown: %w", clearErr))
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Suite) runAll(ctx context.Context) ([]*Result, error) {
	results := []*Result{}
	for _, batchSize := range s.BatchSizes {
		zlog.Info().Str("run", s.Run).Int("batchSize", batchSize).Msg("Batch size started")
		for _, strategy := range s.Strategies {
			w := NewWorker(s.Run, s.Conn, strategy, batchSize, s.Corpus, s.Clock, s.Policy)
			result, err := w.Run(ctx)
			if err != nil {
				return nil, err
			}
			results = append(results, result)
		}
		zlog.Info().Str("run", s.Run).Int("batchSize", batchSize).Msg("Batch size ended")
	}
	return results, nil
}
