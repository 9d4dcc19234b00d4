package single

import (
	"context"
	"fmt"

	"insertbench/corpus"
	dbutils "insertbench/dbUtils"
)

const Name = "singleInserts"

// One insert statement per record. The batch size is ignored.
type Single struct{}

func New() *Single {
	return &Single{}
}

func (*Single) Name() string { return Name }

func (*Single) Table() string { return dbutils.SingleInsertsTable }

func (s *Single) Load(ctx context.Context, tx dbutils.Tx, c corpus.Corpus, _ int) error {
	for i, r := range c {
		if err := tx.Insert(ctx, s.Table(), r); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
