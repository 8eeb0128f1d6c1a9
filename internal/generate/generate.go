// Package generate wires the article generation engine and image
// acquisition into the generate CLI command.
package generate

import (
	"context"
	"log/slog"

	"github.com/seoforge/seoforge/models"
	"github.com/seoforge/seoforge/pkg/article"
	"github.com/seoforge/seoforge/pkg/images"
	"github.com/seoforge/seoforge/pkg/ledger"
)

// Run drives one generation pass: one article per keyword set, plus one new
// image per generated article when an acquirer is provided. Abandoned jobs
// are counted, never fatal; only infrastructure failures stop the run.
func Run(ctx context.Context, logger *slog.Logger, cfg *models.Config, eng *article.Engine, acq *images.Acquirer, led *ledger.Ledger) (ledger.RunTotals, error) {
	var totals ledger.RunTotals

	sets, err := models.LoadKeywordSets(cfg.KeywordFile)
	if err != nil {
		return totals, err
	}
	logger.Info("keyword sets loaded", "count", len(sets), "file", cfg.KeywordFile)

	runID, err := led.StartRun("generate")
	if err != nil {
		return totals, err
	}

	for _, set := range sets {
		if ctx.Err() != nil {
			logger.Info("stop requested, skipping remaining keyword sets")
			break
		}

		job := models.GenerationJob{
			Site:     set.Site,
			Keywords: set.Keywords,
			Language: cfg.Generation.Language,
			MinChars: cfg.Generation.MinChars,
			Model:    cfg.Generation.Model,
		}

		out, err := eng.Generate(ctx, job)
		if err != nil {
			return totals, err
		}
		if out.Abandoned {
			totals.Failed++
			continue
		}
		totals.Generated++

		if acq != nil {
			if _, err := acq.AcquireOne(ctx, set.Site, out.Package, set.Keywords); err != nil {
				// Image acquisition failing never blocks the article.
				logger.Warn("image acquisition failed",
					"site", set.Site, "package", out.Package, "error", err)
			}
		}
	}

	if err := led.FinishRun(runID, totals); err != nil {
		logger.Warn("failed to record run totals", "run_id", runID, "error", err)
	}
	logger.Info("generation run finished",
		"generated", totals.Generated, "abandoned", totals.Failed)
	return totals, nil
}
