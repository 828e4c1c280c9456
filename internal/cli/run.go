package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rohmanhakim/docs-harvester/internal/config"
	"github.com/rohmanhakim/docs-harvester/internal/inventory"
	"github.com/rohmanhakim/docs-harvester/internal/report"
	"github.com/rohmanhakim/docs-harvester/internal/resolver"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Resolve every reference in the inventory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, closeLog, err := newLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeLog()

		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		summary, err := Harvest(ctx, cfg, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d references, %d success (%.1f%%)\n",
			summary.Total, summary.ByStatus["success"], summary.SuccessRate*100)
		return nil
	},
}

// Harvest runs one batch described by cfg and writes its summary report.
// A dry run writes nothing, not even the report. When ctx is canceled the
// references that finished are still summarized and the context error is
// returned.
func Harvest(ctx context.Context, cfg config.Config, log zerolog.Logger) (report.Summary, error) {
	refs, err := inventory.LoadReferences(cfg.InventoryPath())
	if err != nil {
		return report.Summary{}, err
	}
	refs, err = inventory.SelectRange(refs, cfg.StartRow(), cfg.EndRow())
	if err != nil {
		return report.Summary{}, err
	}
	xref, err := inventory.LoadCrossRef(cfg.CrossRefPath())
	if err != nil {
		return report.Summary{}, err
	}

	h, err := newHarvester(ctx, cfg, log)
	if err != nil {
		return report.Summary{}, err
	}
	defer func() {
		if err := h.Close(); err != nil {
			log.Warn().Err(err).Msg("closing backends")
		}
	}()

	runID := uuid.NewString()
	started := time.Now()
	records, runErr := h.resolver.Run(ctx, refs, xref, resolver.RunOptions{
		Resume:       cfg.Resume(),
		DryRun:       cfg.DryRun(),
		Concurrency:  cfg.Concurrency(),
		RunID:        runID,
		Render:       cfg.Render(),
		MirrorPrefix: cfg.MirrorPrefix(),
	})
	elapsed := time.Since(started)

	summary := report.Summarize(records, elapsed)
	summary.RunID = runID
	if cfg.DryRun() {
		return summary, runErr
	}

	path, err := report.WriteJSON(cfg.ReportsDir(), report.SummaryPrefix, summary.GeneratedAt, summary)
	if err != nil {
		return summary, errors.Join(runErr, err)
	}
	log.Info().
		Str("run_id", runID).
		Str("path", path).
		Int("total", summary.Total).
		Float64("success_rate", summary.SuccessRate).
		Msg("summary written")

	if cfg.MetricsFile() != "" {
		metrics := report.NewMetrics()
		for _, rec := range records {
			metrics.Observe(rec)
		}
		metrics.SetDuration(elapsed)
		if err := metrics.WriteTextfile(cfg.MetricsFile()); err != nil {
			return summary, errors.Join(runErr, err)
		}
	}
	return summary, runErr
}
