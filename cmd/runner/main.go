package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/kyotei-edge/internal/betlog"
	"github.com/yourusername/kyotei-edge/internal/config"
	"github.com/yourusername/kyotei-edge/internal/database"
	"github.com/yourusername/kyotei-edge/internal/datasource"
	"github.com/yourusername/kyotei-edge/internal/engine"
	"github.com/yourusername/kyotei-edge/internal/ev"
	"github.com/yourusername/kyotei-edge/internal/filter"
	"github.com/yourusername/kyotei-edge/internal/health"
	"github.com/yourusername/kyotei-edge/internal/kelly"
	applog "github.com/yourusername/kyotei-edge/internal/logger"
	"github.com/yourusername/kyotei-edge/internal/metrics"
	"github.com/yourusername/kyotei-edge/internal/repository"
	"github.com/yourusername/kyotei-edge/internal/scheduler"
	"github.com/yourusername/kyotei-edge/internal/selector"
	"github.com/yourusername/kyotei-edge/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	logger     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	batchCmd.Flags().String("date", "", "Race date (YYYY-MM-DD, defaults to today)")
	settleCmd.Flags().String("date", "", "Race date (YYYY-MM-DD, defaults to today)")
	settleCmd.Flags().String("results", "", "Path to JSON results file")
	settleCmd.MarkFlagRequired("results")
	recordsCmd.Flags().String("date", "", "Race date (YYYY-MM-DD, defaults to today)")
	simulateCmd.Flags().String("from", "", "First date of the window (YYYY-MM-DD)")
	simulateCmd.Flags().String("to", "", "Last date of the window (YYYY-MM-DD)")

	rootCmd.AddCommand(runCmd, batchCmd, settleCmd, recordsCmd, simulateCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "kyotei-edge",
	Short: "Value-betting decision engine for boat racing",
	Long:  `Evaluates daily race cards through exclusion rules, expected-value gates, and fractional-Kelly sizing, and records every bought bet.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cfg.DataSource.SecretsName != "" {
			if err := config.LoadSecretsFromAWS(cfg, cfg.DataSource.SecretsRegion, cfg.DataSource.SecretsName); err != nil {
				return fmt.Errorf("failed to load secrets: %w", err)
			}
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger = applog.New(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduled betting daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon(cmd.Context())
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run one betting batch for a date and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := flagDate(cmd)
		if err != nil {
			return err
		}
		return runSingleBatch(cmd.Context(), date)
	},
}

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Settle a day's records against a results file",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := flagDate(cmd)
		if err != nil {
			return err
		}
		resultsPath, _ := cmd.Flags().GetString("results")
		return settleDay(cmd.Context(), date, resultsPath)
	},
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Print a day's bet records as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := flagDate(cmd)
		if err != nil {
			return err
		}
		return printRecords(cmd.Context(), date)
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate bankroll growth over settled records",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		return simulateGrowth(cmd.Context(), from, to)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kyotei-edge %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func flagDate(cmd *cobra.Command) (string, error) {
	date, _ := cmd.Flags().GetString("date")
	if date == "" {
		return time.Now().UTC().Format("2006-01-02"), nil
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return date, nil
}

// components bundles the wired pipeline for one process
type components struct {
	source  *datasource.HTTPSource
	store   *betlog.Store
	db      *database.DB
	engine  *engine.Engine
	service *service.DailyRunService
}

func buildComponents(ctx context.Context) (*components, error) {
	metrics.InitRegistry()

	source := datasource.NewHTTPSource(&cfg.DataSource, logger)

	store, err := betlog.NewStore(cfg.Records.Dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	writers := engine.MultiWriter{store}
	var db *database.DB
	if cfg.DatabaseEnabled() {
		db, err = database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repo := repository.NewPostgresBetRecordRepository(db)
		writers = append(writers, repository.NewWriter(repo))
	}

	calculator := ev.NewCalculator(&cfg.EV, &cfg.Features, ev.DefaultHitRates())
	filterEngine := filter.NewEngine(&cfg.Filter, &cfg.Features, logger)
	allocator := selector.NewAllocator(&cfg.Allocation, cfg.Stake.Unit)
	sel := selector.NewSelector(filterEngine, calculator, selector.DefaultConditions(), allocator, &cfg.Features, &cfg.Filter, logger)
	kellyCalc := kelly.NewCalculator(&cfg.Kelly, cfg.Stake.Unit, logger)

	eng := engine.NewEngine(sel, kellyCalc, calculator, &cfg.Safety, &cfg.Features, writers, logger)
	svc := service.NewDailyRunService(source, source, eng, store, logger)

	return &components{
		source:  source,
		store:   store,
		db:      db,
		engine:  eng,
		service: svc,
	}, nil
}

func (c *components) close() {
	c.source.Close()
	if c.db != nil {
		c.db.Close()
	}
}

func runDaemon(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	comps, err := buildComponents(ctx)
	if err != nil {
		return err
	}
	defer comps.close()

	var pinger health.DatabasePinger
	if comps.db != nil {
		pinger = comps.db
	}
	healthPort := ""
	if cfg.Metrics.Port > 0 {
		healthPort = fmt.Sprintf("%d", cfg.Metrics.Port)
	}
	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        healthPort,
		MetricsPath: cfg.Metrics.Path,
		Logger:      logger,
		DB:          pinger,
		Engine:      comps.engine,
	})
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	sched := scheduler.NewScheduler(logger)
	if err := sched.ScheduleDailyBatch("0 9 * * *", comps.service); err != nil {
		return err
	}
	if err := sched.ScheduleDailyReset("0 0 * * *", comps.service); err != nil {
		return err
	}
	if err := sched.ScheduleOddsRefresh(60, comps.service); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	var stream *datasource.OddsStreamClient
	if cfg.DataSource.StreamEnabled && cfg.DataSource.StreamURL != "" {
		stream = datasource.NewOddsStreamClient(cfg.DataSource.StreamURL, cfg.DataSource.APIKey, logger)
		stream.RegisterHandler(func(update datasource.OddsUpdate) {
			comps.source.UpdateOdds(update.RaceID, update.Odds)
		})
		if err := stream.Connect(ctx); err != nil {
			logger.WithError(err).Warn("Odds stream unavailable, continuing with polling only")
		} else {
			defer stream.Close()
		}
	}

	healthServer.SetReady(true)
	logger.WithFields(logrus.Fields{
		"version":  Version,
		"next_run": sched.GetNextRun().Format(time.RFC3339),
	}).Info("Betting daemon started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.WithField("signal", sig.String()).Info("Shutting down")
	case <-ctx.Done():
	}

	healthServer.SetReady(false)
	return nil
}

func runSingleBatch(ctx context.Context, date string) error {
	comps, err := buildComponents(ctx)
	if err != nil {
		return err
	}
	defer comps.close()

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return err
	}
	if err := comps.service.RunForDate(ctx, day); err != nil {
		return err
	}

	state := comps.engine.State()
	fmt.Printf("Batch complete for %s: bankroll=%.0f daily_bets=%d\n", date, state.Bankroll, state.DailyBetCount)
	return nil
}

func settleDay(ctx context.Context, date, resultsPath string) error {
	comps, err := buildComponents(ctx)
	if err != nil {
		return err
	}
	defer comps.close()

	data, err := os.ReadFile(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to read results file: %w", err)
	}
	var results map[string]service.RaceResult
	if err := json.Unmarshal(data, &results); err != nil {
		return fmt.Errorf("failed to parse results file: %w", err)
	}

	settled, err := comps.service.SettleDay(ctx, date, results)
	if err != nil {
		return err
	}
	fmt.Printf("Settled %d records for %s\n", settled, date)
	return nil
}

func printRecords(ctx context.Context, date string) error {
	store, err := betlog.NewStore(cfg.Records.Dir, logger)
	if err != nil {
		return err
	}

	records, err := store.LoadDay(ctx, date)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func simulateGrowth(ctx context.Context, from, to string) error {
	if from == "" || to == "" {
		return fmt.Errorf("both --from and --to are required")
	}
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return fmt.Errorf("invalid from date: %w", err)
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return fmt.Errorf("invalid to date: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("to date precedes from date")
	}

	store, err := betlog.NewStore(cfg.Records.Dir, logger)
	if err != nil {
		return err
	}

	var bets []kelly.SettledBet
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		records, err := store.LoadDay(ctx, day.Format("2006-01-02"))
		if err != nil {
			return err
		}
		for _, record := range records {
			if !record.IsSettled() {
				continue
			}
			payout := 0.0
			if record.Payout != nil {
				payout, _ = record.Payout.Float64()
			}
			bets = append(bets, kelly.SettledBet{
				Stake:  float64(record.Stake),
				Payout: payout,
				Hit:    record.Hit != nil && *record.Hit,
			})
		}
	}

	report := kelly.SimulateGrowth(cfg.Safety.InitialBankroll, bets)
	fmt.Printf("Bets: %d\n", report.BetCount)
	fmt.Printf("Initial bankroll: %.0f\n", report.InitialBankroll)
	fmt.Printf("Final bankroll:   %.0f\n", report.FinalBankroll)
	fmt.Printf("Hit rate:         %.1f%%\n", report.HitRate*100)
	fmt.Printf("ROI:              %.2f%%\n", report.ROI*100)
	fmt.Printf("Max drawdown:     %.1f%%\n", report.MaxDrawdown*100)
	return nil
}
