package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"insertbench/benchmark"
	dbutils "insertbench/dbUtils"
	"insertbench/util"
)

type Config struct {
	Driver       string
	Connection   string
	Username     string
	Password     string
	Length       int   // number of records in the corpus
	StringLength int   `yaml:"stringLength"`
	BatchSizes   []int `yaml:"batchSizes"`
	Strategies   []string
	Reps         int     // measured repetitions, 0 picks them from Time
	WarmupReps   int     `yaml:"warmupReps"`
	Time         float64 // seconds of measurement per strategy and batch size, when Reps is 0
	MinReps      int     `yaml:"minReps"`
	MaxReps      int     `yaml:"maxReps"`
	Clock        string  // wall or cpu
	Seed         int64   // 0 seeds from the current time
	ResultsFile  string  `yaml:"resultsFile"` // optional parquet output
}

func Default() *Config {
	return &Config{
		Driver:       dbutils.PgxDriver,
		Connection:   "postgres://localhost/postgres",
		Length:       100000,
		StringLength: 20,
		BatchSizes:   []int{10, 100, 1000, 10000},
		Strategies:   benchmark.Names,
		WarmupReps:   1,
		Time:         10,
		MinReps:      3,
		MaxReps:      1000,
		Clock:        util.WallClockName,
	}
}

// Reads a yaml file on top of the defaults, see Parse
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("missing config file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Decodes yaml on top of the defaults. The result is not validated, so command line
// overrides can be applied before Validate.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Driver {
	case dbutils.PgxDriver, dbutils.PostgresDriver, dbutils.MySQLDriver, dbutils.SQLiteDriver:
	default:
		errs = append(errs, fmt.Errorf("unknown driver %q", c.Driver))
	}
	if c.Length < 0 {
		errs = append(errs, fmt.Errorf("length must not be negative, got %d", c.Length))
	}
	// the destination column is varchar(20)
	if c.StringLength < 0 || c.StringLength > 20 {
		errs = append(errs, fmt.Errorf("stringLength must be between 0 and 20, got %d", c.StringLength))
	}
	if len(c.BatchSizes) == 0 {
		errs = append(errs, errors.New("batchSizes must not be empty"))
	}
	for _, b := range c.BatchSizes {
		if b < 1 {
			errs = append(errs, fmt.Errorf("batch size must be positive, got %d", b))
		}
	}
	if len(c.Strategies) == 0 {
		errs = append(errs, errors.New("strategies must not be empty"))
	}
	for _, s := range c.Strategies {
		if _, err := benchmark.New(s); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Reps < 0 || c.WarmupReps < 0 {
		errs = append(errs, errors.New("reps and warmupReps must not be negative"))
	}
	if c.Reps == 0 {
		if c.Time <= 0 {
			errs = append(errs, errors.New("time must be positive when reps is 0"))
		}
		if c.MinReps < 1 || c.MaxReps < c.MinReps {
			errs = append(errs, fmt.Errorf("need 1 <= minReps <= maxReps, got %d and %d", c.MinReps, c.MaxReps))
		}
	}
	if c.Clock != util.WallClockName && c.Clock != util.CPUClockName {
		errs = append(errs, fmt.Errorf("unknown clock %q", c.Clock))
	}

	return errors.Join(errs...)
}

// Connection options for dbutils.Open
func (c *Config) DBOptions() dbutils.Options {
	return dbutils.Options{
		Driver:     c.Driver,
		Connection: c.Connection,
		Username:   c.Username,
		Password:   c.Password,
	}
}
