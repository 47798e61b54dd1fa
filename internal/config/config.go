package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress             string
	DatabaseURI            string
	PaymentProviderAddress string
	NotificationAddress    string
	AuthSecret             string
	WebhookSecret          string

	CommissionRate     decimal.Decimal
	AcceptanceWindow   time.Duration
	ConfirmationWindow time.Duration

	SweepInterval   time.Duration
	SweepBatchSize  int
	WorkerPoolSize  int
	ShutdownTimeout time.Duration
}

const (
	defaultRunAddress         = ":8080"
	defaultAuthSecret         = "change-me-in-production"
	defaultCommissionRate     = "10"
	defaultAcceptanceWindow   = 48 * time.Hour
	defaultConfirmationWindow = 48 * time.Hour
	defaultSweepInterval      = time.Hour
	defaultSweepBatchSize     = 100
	defaultWorkerPoolSize     = 4
	defaultShutdownTimeout    = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:             getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:            getString(lookup, "DATABASE_URI", ""),
		PaymentProviderAddress: getString(lookup, "PAYMENT_PROVIDER_ADDRESS", ""),
		NotificationAddress:    getString(lookup, "NOTIFICATION_ADDRESS", ""),
		AuthSecret:             getString(lookup, "AUTH_SECRET", defaultAuthSecret),
		WebhookSecret:          getString(lookup, "WEBHOOK_SECRET", ""),
		AcceptanceWindow:       getDuration(lookup, "ACCEPTANCE_WINDOW", defaultAcceptanceWindow),
		ConfirmationWindow:     getDuration(lookup, "CONFIRMATION_WINDOW", defaultConfirmationWindow),
		SweepInterval:          getDuration(lookup, "SWEEP_INTERVAL", defaultSweepInterval),
		SweepBatchSize:         getInt(lookup, "SWEEP_BATCH_SIZE", defaultSweepBatchSize),
		WorkerPoolSize:         getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:        getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	commissionStr := getString(lookup, "COMMISSION_RATE", defaultCommissionRate)

	fs := flag.NewFlagSet("promopay", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		acceptanceWindowStr   = cfg.AcceptanceWindow.String()
		confirmationWindowStr = cfg.ConfirmationWindow.String()
		sweepIntervalStr      = cfg.SweepInterval.String()
		shutdownTimeoutStr    = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.PaymentProviderAddress, "p", cfg.PaymentProviderAddress, "Payment provider base URL")
	fs.StringVar(&cfg.NotificationAddress, "n", cfg.NotificationAddress, "Notification collaborator base URL")
	fs.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.WebhookSecret, "webhook-secret", cfg.WebhookSecret, "Secret for verifying provider webhooks")
	fs.StringVar(&commissionStr, "commission-rate", commissionStr, "Platform commission rate in percent")
	fs.StringVar(&acceptanceWindowStr, "acceptance-window", acceptanceWindowStr, "Window for influencer to accept an order")
	fs.StringVar(&confirmationWindowStr, "confirmation-window", confirmationWindowStr, "Window for merchant to confirm delivery")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between reconciler sweeps")
	fs.IntVar(&cfg.SweepBatchSize, "sweep-batch", cfg.SweepBatchSize, "Maximum orders per reconciler batch")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent reconciler workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.CommissionRate, err = decimal.NewFromString(commissionStr); err != nil {
		return nil, fmt.Errorf("invalid commission rate: %w", err)
	}
	if cfg.CommissionRate.IsNegative() || cfg.CommissionRate.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("commission rate must be in [0, 100)")
	}

	if cfg.AcceptanceWindow, err = time.ParseDuration(acceptanceWindowStr); err != nil {
		return nil, fmt.Errorf("invalid acceptance window: %w", err)
	}

	if cfg.ConfirmationWindow, err = time.ParseDuration(confirmationWindowStr); err != nil {
		return nil, fmt.Errorf("invalid confirmation window: %w", err)
	}

	if cfg.SweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("AUTH_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read auth secret file: %w", err)
		}
		cfg.AuthSecret = string(content)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = defaultSweepBatchSize
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	if cfg.AcceptanceWindow <= 0 {
		cfg.AcceptanceWindow = defaultAcceptanceWindow
	}

	if cfg.ConfirmationWindow <= 0 {
		cfg.ConfirmationWindow = defaultConfirmationWindow
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.PaymentProviderAddress == "" {
		return nil, fmt.Errorf("payment provider address must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
