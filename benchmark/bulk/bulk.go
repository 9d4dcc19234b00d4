package bulk

import (
	"bytes"
	"context"
	"fmt"

	"insertbench/corpus"
	dbutils "insertbench/dbUtils"
)

const Name = "copy"

// Serializes records as csv lines and streams them to the bulk load facility every
// 'batchSize' records, plus once more for any trailing records.
type Bulk struct{}

func New() *Bulk {
	return &Bulk{}
}

func (*Bulk) Name() string { return Name }

func (*Bulk) Table() string { return dbutils.BulkLoadTable }

func (b *Bulk) Load(ctx context.Context, tx dbutils.Tx, c corpus.Corpus, batchSize int) error {
	if batchSize < 1 {
		return fmt.Errorf("invalid batch size %d", batchSize)
	}

	var buf []byte
	pending := 0
	flush := func(last int) error {
		if err := tx.CopyCSV(ctx, b.Table(), bytes.NewReader(buf)); err != nil {
			return fmt.Errorf("chunk ending at record %d: %w", last, err)
		}
		buf = buf[:0]
		pending = 0
		return nil
	}

	for i, r := range c {
		buf = corpus.AppendCSV(buf, r)
		pending++
		if (i+1)%batchSize == 0 {
			if err := flush(i); err != nil {
				return err
			}
		}
	}
	if pending > 0 {
		return flush(len(c) - 1)
	}
	return nil
}
