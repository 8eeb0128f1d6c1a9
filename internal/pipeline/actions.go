// Package pipeline runs generation and publishing back to back.
package pipeline

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/seoforge/seoforge/internal/generate"
	"github.com/seoforge/seoforge/internal/publish"
	"github.com/seoforge/seoforge/pkg/images"
	"github.com/seoforge/seoforge/pkg/ledger"
	"github.com/seoforge/seoforge/pkg/store"
)

// Action generates articles for every keyword set, then publishes every
// unposted package. Generation failures abort before publishing starts.
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

	eng, err := generate.BuildEngine(cfg, s, logger)
	if err != nil {
		logger.Error("failed to build generation engine", "error", err)
		os.Exit(2)
	}

	var acq *images.Acquirer
	if !c.Bool("no-images") {
		acq = generate.BuildAcquirer(cfg, s, led, logger)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	totals, err := generate.Run(ctx, logger, cfg, eng, acq, led)
	if err != nil {
		logger.Error("generation run failed", "error", err)
		return err
	}

	report, err := publish.Run(ctx, logger, cfg, s, led)
	if err != nil {
		logger.Error("publish run failed", "error", err)
		return err
	}

	fmt.Printf("Generated %d articles (%d abandoned), published %d of %d packages (%d skipped, %d failed)\n",
		totals.Generated, totals.Failed,
		report.Published, report.Total, report.Skipped, report.Failed)
	if report.Failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
