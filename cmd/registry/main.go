package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"survey-registry/internal/config"
	"survey-registry/internal/models"
	"survey-registry/internal/platform/logger"
	"survey-registry/internal/platform/metrics"
	"survey-registry/internal/service"
	"survey-registry/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:          "registry",
		Short:        "Build the participant registry from survey exports and attendance tables",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "registry.yaml", "YAML config file (missing file means defaults)")

	cmd.AddCommand(newBuildCmd(&opts), newInspectCmd(&opts))
	return cmd
}

func newBuildCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Run the full pipeline and write the registry snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, *opts)
		},
	}
}

func newInspectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show how each source's columns are classified",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			reports := service.NewPipeline(cfg).Inspect()
			return printInspection(cmd, reports)
		},
	}
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runBuild(cmd *cobra.Command, opts rootOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	ctx := cmd.Context()

	st, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	pipeline := service.NewPipeline(cfg,
		service.WithLogger(log),
		service.WithMetrics(metrics.New(reg)),
		service.WithSaver(st),
	)

	snap, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	if cfg.MetricsTextfile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsTextfile, reg); err != nil {
			log.Warn("write metrics textfile", "path", cfg.MetricsTextfile, "err", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d people from %d records (run %s)\n",
		len(snap.People), snap.Report.RecordsExtracted, snap.RunID)
	return nil
}

func printInspection(cmd *cobra.Command, reports []models.SourceReport) error {
	out := cmd.OutOrStdout()
	for _, src := range reports {
		if src.Failed() {
			fmt.Fprintf(out, "%s: %s\n\n", src.Path, src.Error)
			continue
		}
		fmt.Fprintf(out, "%s (%d rows)\n", src.Path, src.Rows)

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, col := range src.Columns {
			detail := col.Slug
			if col.Role == models.RoleContact {
				detail = string(col.Category)
			}
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", col.Index+1, col.Role, detail, col.Column)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		for _, p := range src.Profiles {
			fmt.Fprintf(out, "  %s: fill %.0f%%, distinct %d, conforming %.0f%%\n",
				p.Category, p.FillRate*100, p.Distinct, p.PatternConformance*100)
		}
		fmt.Fprintln(out)
	}
	return nil
}
