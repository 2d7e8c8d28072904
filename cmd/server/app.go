// cmd/server/app.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/coins"
	"github.com/codr1/Courtside/internal/config"
	"github.com/codr1/Courtside/internal/db"
	"github.com/codr1/Courtside/internal/email"
	"github.com/codr1/Courtside/internal/finance"
	"github.com/codr1/Courtside/internal/matcher"
	"github.com/codr1/Courtside/internal/notify"
	"github.com/codr1/Courtside/internal/payments"
	"github.com/codr1/Courtside/internal/pricing"
	"github.com/codr1/Courtside/internal/ratelimit"
	"github.com/codr1/Courtside/internal/reconcile"
	"github.com/codr1/Courtside/internal/usage"
)

// app holds every long-lived service the HTTP surface and the scheduler share.
type app struct {
	cfg        *config.Config
	db         *db.DB
	calculator *pricing.Calculator
	usage      *usage.Aggregator
	finance    *finance.Recalculator
	payments   *payments.Service
	multiHour  *reconcile.MultiHour
	cleaner    *reconcile.OrphanCleaner
	sweeper    *reconcile.OverdueSweeper
	limiter    *ratelimit.Limiter
	closers    []io.Closer
}

func buildApp(ctx context.Context, cfg *config.Config, database *db.DB) (*app, error) {
	a := &app{cfg: cfg, db: database}

	nameMatcher := matcher.New(cfg.MatcherConfig())
	calc, err := pricing.NewCalculator(cfg.PricingConfig(), nameMatcher)
	if err != nil {
		return nil, err
	}
	a.calculator = calc

	if a.usage, err = usage.NewAggregator(database); err != nil {
		return nil, err
	}
	if a.finance, err = finance.NewRecalculator(database, cfg.AppServiceFeeRate()); err != nil {
		return nil, err
	}
	ledger, err := coins.NewLedger(database)
	if err != nil {
		return nil, err
	}

	notifier, err := a.buildNotifier(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.payments, err = payments.NewService(database, payments.Config{
		DueDaysAfterUsage: cfg.Payments.DueDaysAfterUsage,
		NotesMaxLength:    cfg.Payments.NotesMaxLength,
	}, payments.Deps{
		Calculator: calc,
		Matcher:    nameMatcher,
		Usage:      a.usage,
		Finance:    a.finance,
		Notifier:   notifier,
		Coins:      ledger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	if a.multiHour, err = reconcile.NewMultiHour(database, notifier, reconcile.Options{NotesMaxLength: cfg.Payments.NotesMaxLength}); err != nil {
		a.Close()
		return nil, err
	}
	if a.cleaner, err = reconcile.NewOrphanCleaner(database, a.payments); err != nil {
		a.Close()
		return nil, err
	}
	if a.sweeper, err = reconcile.NewOverdueSweeper(database); err != nil {
		a.Close()
		return nil, err
	}

	if !cfg.RateLimit.Disabled {
		cooldown := ratelimit.DefaultConfig().Cooldown
		if cfg.RateLimit.CooldownSeconds > 0 {
			cooldown = time.Duration(cfg.RateLimit.CooldownSeconds) * time.Second
		}
		a.limiter = ratelimit.New(&ratelimit.Config{
			Cooldown:     cooldown,
			MaxPerHour:   cfg.RateLimit.PerUserPerHour,
			MaxIPPerHour: cfg.RateLimit.PerIPPerHour,
			TrustProxy:   cfg.RateLimit.TrustProxy,
		})
		a.closers = append(a.closers, a.limiter)
	}
	return a, nil
}

// throttle wraps a submission handler with the rate limiter when enabled.
func (a *app) throttle(h http.HandlerFunc) http.HandlerFunc {
	if a.limiter == nil {
		return h
	}
	return a.limiter.Wrap(h)
}

// buildNotifier always logs events; RabbitMQ and SES receipts join the
// fan-out when configured.
func (a *app) buildNotifier(ctx context.Context) (notify.Notifier, error) {
	sinks := notify.Multi{notify.LogNotifier{}}

	if url := a.cfg.Notifications.AMQPURL; url != "" {
		publisher, err := notify.NewAMQPNotifier(url, a.cfg.Notifications.Exchange)
		if err != nil {
			return nil, fmt.Errorf("connect to message broker: %w", err)
		}
		a.closers = append(a.closers, publisher)
		sinks = append(sinks, publisher)
		log.Info().Str("exchange", a.cfg.Notifications.Exchange).Msg("Publishing payment events to AMQP")
	}

	if a.cfg.EmailEnabled() {
		sesCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := email.NewSESClient(sesCtx, a.cfg.Email.AccessKeyID, a.cfg.Email.SecretAccessKey, a.cfg.Email.Region, a.cfg.Email.Sender)
		if err != nil {
			return nil, fmt.Errorf("configure SES: %w", err)
		}
		receipts, err := email.NewReceiptNotifier(a.db, client)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, receipts)
		log.Info().Str("sender", a.cfg.Email.Sender).Msg("Payment receipts enabled")
	}

	return sinks, nil
}

func (a *app) reconcileLookback() time.Duration {
	return time.Duration(a.cfg.Payments.ReconcileLookbackHours) * time.Hour
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
