package batched

import (
	"context"
	"fmt"

	"insertbench/corpus"
	dbutils "insertbench/dbUtils"
)

const Name = "batchInserts"

// Queues records and submits them every 'batchSize' records. A trailing partial batch is
// submitted at the end, so every record is written.
type Batched struct{}

func New() *Batched {
	return &Batched{}
}

func (*Batched) Name() string { return Name }

func (*Batched) Table() string { return dbutils.BatchInsertsTable }

func (b *Batched) Load(ctx context.Context, tx dbutils.Tx, c corpus.Corpus, batchSize int) error {
	if batchSize < 1 {
		return fmt.Errorf("invalid batch size %d", batchSize)
	}

	queue := make([]corpus.Record, 0, min(batchSize, len(c)))
	flush := func(last int) error {
		if err := tx.InsertBatch(ctx, b.Table(), queue); err != nil {
			return fmt.Errorf("batch ending at record %d: %w", last, err)
		}
		queue = queue[:0]
		return nil
	}

	for i, r := range c {
		queue = append(queue, r)
		if (i+1)%batchSize == 0 {
			if err := flush(i); err != nil {
				return err
			}
		}
	}
	if len(queue) > 0 {
		return flush(len(c) - 1)
	}
	return nil
}
