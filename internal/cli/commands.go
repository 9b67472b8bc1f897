package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"maintenance-dashboard/internal/server"
	"maintenance-dashboard/internal/taskgen"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := rootOpts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			n, svc, err := a.chartService()
			if err != nil {
				return err
			}
			cfg := a.cfg.Server
			if addr != "" {
				cfg.Addr = addr
			}
			srv := server.New(cfg, server.Deps{
				Store:      a.store,
				Tasks:      a.generator(),
				Completer:  svc,
				Negotiator: n,
			}, a.logger)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		strategyID string
		jsonOut    string
		asOf       string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate today's work orders from due strategies",
		Long: `Generate work orders for every DUE or UPCOMING strategy, or for one strategy
with --strategy. Failures of single strategies are reported and do not stop the run.
--as-of generates as if the run happened on another day, for backfills.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts []taskgen.Option
			if asOf != "" {
				clock, err := asOfClock(asOf, time.Now)
				if err != nil {
					return err
				}
				opts = append(opts, taskgen.WithClock(clock))
			}
			a, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			out := cmd.OutOrStdout()
			gen := a.generator(opts...)

			if strategyID != "" {
				result, err := gen.GenerateTaskForStrategy(cmd.Context(), strategyID)
				printResult(out, strategyID, result)
				if jsonOut != "" {
					if werr := writeJSON(result, jsonOut); werr != nil {
						return werr
					}
					fmt.Fprintf(out, "\nJSON result saved to %s\n", jsonOut)
				}
				if err != nil {
					return err
				}
				if !result.Success {
					return errors.New(result.Error)
				}
				return nil
			}

			summary, err := gen.GenerateDailyTasks(cmd.Context())
			printSummary(out, summary)
			if jsonOut != "" {
				if werr := writeJSON(summary, jsonOut); werr != nil {
					return werr
				}
				fmt.Fprintf(out, "\nJSON summary saved to %s\n", jsonOut)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&strategyID, "strategy", "", "generate for one strategy id")
	cmd.Flags().StringVar(&jsonOut, "json", "", "optional JSON output path")
	cmd.Flags().StringVar(&asOf, "as-of", "", "generate as of this date (YYYY-MM-DD)")
	return cmd
}

func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	var category int
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the data schema offered to the completion model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			n, _, err := a.chartService()
			if err != nil {
				return err
			}
			schema, err := n.GetDataSchema(cmd.Context(), category)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), schema)
		},
	}
	cmd.Flags().IntVar(&category, "category", 1, "equipment category id")
	return cmd
}

func NewChartCommand(rootOpts *RootOptions) *cobra.Command {
	var category int
	cmd := &cobra.Command{
		Use:   "chart <request>",
		Short: "Negotiate data requirements and generate chart configurations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			n, _, err := a.chartService()
			if err != nil {
				return err
			}
			result, err := n.GenerateChart(cmd.Context(), category, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printChart(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().IntVar(&category, "category", 1, "equipment category id")
	return cmd
}

func NewInsightsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		category int
		raw      bool
	)
	cmd := &cobra.Command{
		Use:   "insights [prompt]",
		Short: "Ask for a written analysis of a category's inspection data",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			n, _, err := a.chartService()
			if err != nil {
				return err
			}
			result, err := n.Insights(cmd.Context(), category, strings.Join(args, " "))
			if err != nil {
				return err
			}
			text := result.Text
			if !raw {
				if text, err = renderMarkdown(result.Text); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			if result.Usage != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "tokens: %d\n", result.Usage.TotalTokens)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&category, "category", 1, "equipment category id")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the markdown without rendering")
	return cmd
}

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and the work-order id function",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.store.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}
