// cmd/dbtools/maintenance/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/coins"
	"github.com/codr1/Courtside/internal/config"
	"github.com/codr1/Courtside/internal/db"
	"github.com/codr1/Courtside/internal/finance"
	"github.com/codr1/Courtside/internal/matcher"
	"github.com/codr1/Courtside/internal/notify"
	"github.com/codr1/Courtside/internal/payments"
	"github.com/codr1/Courtside/internal/pricing"
	"github.com/codr1/Courtside/internal/reconcile"
	"github.com/codr1/Courtside/internal/usage"
)

const usageText = `usage: maintenance [-config path] <command> [flags]

commands:
  cleanup-orphans           fail pending payments whose reservation is gone
  reconcile -user N         split multi-hour payments for one user
  sweep-overdue             mark reservations with overdue payments
`

var now = time.Now

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usageText) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}
	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.Logger.WithContext(ctx)

	command, args := flag.Arg(0), flag.Args()[1:]
	result, err := run(ctx, cfg, database, command, args)
	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("Maintenance command failed")
	}

	if err := writeReport(os.Stdout, result); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}
}

func writeReport(w io.Writer, result any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func run(ctx context.Context, cfg *config.Config, database *db.DB, command string, args []string) (any, error) {
	switch command {
	case "cleanup-orphans":
		svc, err := newPaymentService(cfg, database)
		if err != nil {
			return nil, err
		}
		cleaner, err := reconcile.NewOrphanCleaner(database, svc)
		if err != nil {
			return nil, err
		}
		return cleaner.Cleanup(ctx), nil

	case "reconcile":
		fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		userID := fs.Int64("user", 0, "User whose reservations are reconciled")
		lookback := fs.Duration("lookback", time.Duration(cfg.Payments.ReconcileLookbackHours)*time.Hour, "How far back to look for unpaid reservations")
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("reconcile: %w", err)
		}
		if *userID <= 0 {
			return nil, errors.New("reconcile requires -user")
		}
		multiHour, err := reconcile.NewMultiHour(database, notify.LogNotifier{}, reconcile.Options{NotesMaxLength: cfg.Payments.NotesMaxLength})
		if err != nil {
			return nil, err
		}
		return multiHour.Reconcile(ctx, *userID, *lookback), nil

	case "sweep-overdue":
		sweeper, err := reconcile.NewOverdueSweeper(database)
		if err != nil {
			return nil, err
		}
		ids, err := sweeper.Sweep(ctx, now())
		if err != nil {
			return nil, err
		}
		return map[string]any{"reservationIds": ids, "count": len(ids)}, nil

	default:
		return nil, fmt.Errorf("unknown command %q", command)
	}
}

// newPaymentService wires the payment service with log-only notifications.
func newPaymentService(cfg *config.Config, database *db.DB) (*payments.Service, error) {
	nameMatcher := matcher.New(cfg.MatcherConfig())
	calc, err := pricing.NewCalculator(cfg.PricingConfig(), nameMatcher)
	if err != nil {
		return nil, err
	}
	agg, err := usage.NewAggregator(database)
	if err != nil {
		return nil, err
	}
	fin, err := finance.NewRecalculator(database, cfg.AppServiceFeeRate())
	if err != nil {
		return nil, err
	}
	ledger, err := coins.NewLedger(database)
	if err != nil {
		return nil, err
	}
	return payments.NewService(database, payments.Config{
		DueDaysAfterUsage: cfg.Payments.DueDaysAfterUsage,
		NotesMaxLength:    cfg.Payments.NotesMaxLength,
	}, payments.Deps{
		Calculator: calc,
		Matcher:    nameMatcher,
		Usage:      agg,
		Finance:    fin,
		Notifier:   notify.LogNotifier{},
		Coins:      ledger,
	})
}
