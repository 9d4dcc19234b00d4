package report

import (
	"fmt"
	"io"

	"github.com/montanaflynn/stats"
	"github.com/parquet-go/parquet-go"

	"insertbench/util"
	"insertbench/worker"
)

// Timing statistics of one (strategy, batch size) pair. Times are in seconds.
type Summary struct {
	Run        string  `parquet:"run"`
	Driver     string  `parquet:"driver"`
	Clock      string  `parquet:"clock"`
	Strategy   string  `parquet:"strategy"`
	BatchSize  int64   `parquet:"batch_size"`
	Length     int64   `parquet:"length"`
	Reps       int64   `parquet:"reps"`
	Mean       float64 `parquet:"mean"`
	Min        float64 `parquet:"min"`
	Max        float64 `parquet:"max"`
	Median     float64 `parquet:"median"`
	Stddev     float64 `parquet:"stddev"`
	P95        float64 `parquet:"p95"`
	RowsPerSec float64 `parquet:"rows_per_sec"`
}

// Computes the statistics of a worker result
func Summarize(run string, driver string, clock string, r *worker.Result) Summary {
	s := Summary{
		Run:       run,
		Driver:    driver,
		Clock:     clock,
		Strategy:  r.Strategy,
		BatchSize: int64(r.BatchSize),
		Length:    int64(r.Length),
		Reps:      int64(len(r.Rts)),
	}
	if len(r.Rts) == 0 {
		return s
	}

	// the stats functions only fail on empty input
	data := stats.Float64Data(r.Rts)
	s.Mean = util.Try(data.Mean())
	s.Min = util.Try(data.Min())
	s.Max = util.Try(data.Max())
	s.Median = util.Try(data.Median())
	s.Stddev = util.Try(data.StandardDeviation())
	s.P95 = util.Try(data.Percentile(95))
	if s.Mean > 0 {
		s.RowsPerSec = float64(s.Length) / s.Mean
	}
	return s
}

const csvHeader = "Csv:run,driver,clock,strategy,batchSize,length,reps,mean,min,max,median,stddev,p95,rowsPerSec"

// Writes a "Csv:" line per summary, followed by the same values in a key-value format to ease
// reading. The csv header is written first when header is set.
func Print(w io.Writer, summaries []Summary, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, csvHeader); err != nil {
			return err
		}
	}
	for _, s := range summaries {
		csv := fmt.Sprintf("Csv:%s,%s,%s,%s,%d,%d,%d,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.1f",
			s.Run, s.Driver, s.Clock, s.Strategy, s.BatchSize, s.Length, s.Reps,
			s.Mean, s.Min, s.Max, s.Median, s.Stddev, s.P95, s.RowsPerSec)
		kv := fmt.Sprintf("strategy: %s\nbatchSize: %d\nreps: %d\nmean: %.6f\nmin: %.6f\nmax: %.6f\n"+
			"median: %.6f\nstddev: %.6f\np95: %.6f\nrowsPerSec: %.1f",
			s.Strategy, s.BatchSize, s.Reps, s.Mean, s.Min, s.Max, s.Median, s.Stddev, s.P95, s.RowsPerSec)
		if _, err := fmt.Fprintln(w, csv); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, kv); err != nil {
			return err
		}
	}
	return nil
}

func WriteParquet(path string, summaries []Summary) error {
	if err := parquet.WriteFile(path, summaries); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
