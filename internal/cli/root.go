// Package cli wires configuration, the store and the services into the maintdash commands.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"maintenance-dashboard/internal/completion"
	"maintenance-dashboard/internal/config"
	"maintenance-dashboard/internal/logging"
	"maintenance-dashboard/internal/models"
	"maintenance-dashboard/internal/negotiator"
	"maintenance-dashboard/internal/store"
	"maintenance-dashboard/internal/taskgen"
)

// RootOptions holds the global flags.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "maintdash",
		Short: "Maintenance dashboard backend",
		Long: `Generates daily maintenance work orders from equipment strategies, serves the
dashboard API and asks the completion model for charts and inspection insights.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default: ./maintdash.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewChartCommand(opts))
	cmd.AddCommand(NewInsightsCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// app is the per-invocation wiring shared by the commands.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	store  *store.Store
}

func (o *RootOptions) load() (*app, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if o.Verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger}, nil
}

// open loads the configuration and connects to the store.
func (o *RootOptions) open(ctx context.Context) (*app, error) {
	a, err := o.load()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(ctx, store.Options{
		URL:          a.cfg.Database.URL,
		MaxOpenConns: a.cfg.Database.MaxOpenConns,
		Timeout:      a.cfg.Database.Timeout,
	})
	if err != nil {
		_ = a.logger.Sync()
		return nil, err
	}
	a.store = s
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close store", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func (a *app) generator(opts ...taskgen.Option) *taskgen.Generator {
	opts = append([]taskgen.Option{taskgen.WithWorkStartHour(a.cfg.Generator.WorkStartHour)}, opts...)
	return taskgen.New(a.store, a.logger, opts...)
}

// asOfClock pins the generator's day to value while the time of day keeps following now.
func asOfClock(value string, now func() time.Time) (func() time.Time, error) {
	day, err := models.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("--as-of: %w", err)
	}
	day = models.DateOnly(day)
	return func() time.Time {
		current := now().In(day.Location())
		return day.Add(current.Sub(models.DateOnly(current)))
	}, nil
}

func (a *app) completionService() (*completion.Service, error) {
	provider, err := completion.NewProvider(a.cfg.LLM, a.logger)
	if err != nil {
		return nil, err
	}
	return completion.NewService(provider, a.logger), nil
}

func (a *app) chartService() (*negotiator.Negotiator, *completion.Service, error) {
	svc, err := a.completionService()
	if err != nil {
		return nil, nil, err
	}
	n, err := negotiator.New(a.store, svc, a.logger, negotiator.WithRowLimit(a.cfg.Generator.RowLimit))
	if err != nil {
		return nil, nil, fmt.Errorf("build negotiator: %w", err)
	}
	return n, svc, nil
}
