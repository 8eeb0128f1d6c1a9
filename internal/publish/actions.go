// Package publish pushes generated article packages to their target sites.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/seoforge/seoforge/internal/generate"
	"github.com/seoforge/seoforge/models"
	"github.com/seoforge/seoforge/pkg/ledger"
	"github.com/seoforge/seoforge/pkg/publisher"
	"github.com/seoforge/seoforge/pkg/store"
)

// Run publishes every unposted package for every configured site and
// records the run in the ledger.
func Run(ctx context.Context, logger *slog.Logger, cfg *models.Config, s *store.Store, led *ledger.Ledger) (publisher.Report, error) {
	sites, err := models.LoadSiteCredentials(cfg.Publish.CredentialsFile)
	if err != nil {
		return publisher.Report{}, err
	}
	logger.Info("site credentials loaded", "count", len(sites))

	runID, err := led.StartRun("publish")
	if err != nil {
		return publisher.Report{}, err
	}

	orch := &publisher.Orchestrator{
		Store:          s,
		Ledger:         led,
		Sites:          sites,
		BatchSize:      cfg.Publish.BatchSize,
		Pause:          cfg.Publish.Pause(),
		Logger:         logger,
		RenderMarkdown: cfg.Publish.RenderMarkdown,
	}
	report := orch.Run(ctx)

	totals := ledger.RunTotals{
		Published: report.Published,
		Skipped:   report.Skipped,
		Failed:    report.Failed,
	}
	if err := led.FinishRun(runID, totals); err != nil {
		logger.Warn("failed to record run totals", "run_id", runID, "error", err)
	}
	logger.Info("publish run finished",
		"total", report.Total, "published", report.Published,
		"skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

// Action is the publish command entrypoint. Interrupts stop the run
// cooperatively at the next batch boundary.
func Action(c *cli.Context) error {
	logger := generate.NewLogger(c.Bool("quiet"))

	cfg, err := generate.LoadConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	s, err := store.New(cfg.ContentDir)
	if err != nil {
		logger.Error("failed to open content store", "error", err)
		os.Exit(2)
	}
	led, err := ledger.Open(cfg.LedgerDB)
	if err != nil {
		logger.Error("failed to open ledger", "error", err)
		os.Exit(2)
	}
	defer led.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := Run(ctx, logger, cfg, s, led)
	if err != nil {
		logger.Error("publish run failed", "error", err)
		return err
	}

	fmt.Printf("Published %d of %d packages (%d skipped, %d failed)\n",
		report.Published, report.Total, report.Skipped, report.Failed)
	if report.Failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
