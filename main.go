package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"insertbench/benchmark"
	"insertbench/config"
	"insertbench/corpus"
	dbutils "insertbench/dbUtils"
	"insertbench/report"
	"insertbench/util"
	"insertbench/worker"
)

// Prepare zerolog
func setupLogging(disableLog bool, level string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	var zlevel zerolog.Level
	if disableLog {
		zlevel = zerolog.Disabled
	} else if level == "info" {
		zlevel = zerolog.InfoLevel
	} else {
		zlevel = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(zlevel)
}

// Loads the config file and applies the command line overrides
func buildConfig(configFile string, reps int, clock string) *config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal(err)
	}
	if reps > 0 {
		cfg.Reps = reps
	}
	if clock != "" {
		cfg.Clock = clock
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	return cfg
}

func buildStrategies(names []string) []benchmark.Strategy {
	strategies := []benchmark.Strategy{}
	for _, name := range names {
		strategies = append(strategies, util.Try(benchmark.New(name)))
	}
	return strategies
}

func buildCorpus(cfg *config.Config) corpus.Corpus {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return corpus.Generate(cfg.Length, cfg.StringLength, rand.New(rand.NewSource(seed)))
}

func summarize(run string, driver string, clock string, results []*worker.Result) []report.Summary {
	summaries := []report.Summary{}
	for _, r := range results {
		summaries = append(summaries, report.Summarize(run, driver, clock, r))
	}
	return summaries
}

func main() {
	disableLog := flag.Bool("no-log", false, "Disables the log")
	configFile := flag.String("conf", "", "Benchmark config file")
	logLevel := flag.String("level", "debug", "Log level (info|debug)")
	reps := flag.Int("reps", 0, "Measured repetitions per strategy and batch size (overrides the config)")
	clockName := flag.String("clock", "", "Time measure (wall|cpu), overrides the config")
	flag.Parse()

	setupLogging(*disableLog, *logLevel)
	cfg := buildConfig(*configFile, *reps, *clockName)
	run := uuid.NewString()
	clock := util.Try(util.NewClock(cfg.Clock))
	strategies := buildStrategies(cfg.Strategies)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zlog.Info().Str("run", run).Int("length", cfg.Length).Msg("Generating corpus")
	records := buildCorpus(cfg)

	conn, err := dbutils.Open(ctx, cfg.DBOptions())
	if err != nil {
		zlog.Error().Err(err).Str("driver", cfg.Driver).Msg("Connection failed")
		log.Fatal(err)
	}

	suite := &worker.Suite{
		Run:        run,
		Conn:       conn,
		Strategies: strategies,
		BatchSizes: cfg.BatchSizes,
		Corpus:     records,
		Clock:      clock,
		Policy: worker.Policy{
			Reps:       cfg.Reps,
			WarmupReps: cfg.WarmupReps,
			Time:       cfg.Time,
			MinReps:    cfg.MinReps,
			MaxReps:    cfg.MaxReps,
		},
	}

	zlog.Info().Str("run", run).Str("driver", conn.Driver()).Msg("Run started")
	results, err := suite.Execute(ctx)
	closeErr := conn.Close(context.Background())
	if err != nil {
		zlog.Error().Err(err).Str("run", run).Msg("Run failed")
		log.Fatal(err)
	}
	if closeErr != nil {
		zlog.Warn().Err(closeErr).Msg("Closing the connection failed")
	}

	summaries := summarize(run, conn.Driver(), clock.Name(), results)
	util.CheckErr(report.Print(os.Stdout, summaries, true))
	if cfg.ResultsFile != "" {
		util.CheckErr(report.WriteParquet(cfg.ResultsFile, summaries))
	}

	zlog.Info().Str("run", run).Msg("Run ended")
}
