// Package images backfills one image into every generated article
// package that does not have one yet.
package images

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/seoforge/seoforge/internal/generate"
	"github.com/seoforge/seoforge/models"
	"github.com/seoforge/seoforge/pkg/article"
	imgpkg "github.com/seoforge/seoforge/pkg/images"
	"github.com/seoforge/seoforge/pkg/ledger"
	"github.com/seoforge/seoforge/pkg/store"
)

// Run walks the keyword sets, locates each set's package folder and acquires
// an image for every package that has none. Packages that were never
// generated are skipped silently.
func Run(ctx context.Context, logger *slog.Logger, cfg *models.Config, acq *imgpkg.Acquirer, s *store.Store) (acquired int, err error) {
	sets, err := models.LoadKeywordSets(cfg.KeywordFile)
	if err != nil {
		return 0, err
	}

	for _, set := range sets {
		if ctx.Err() != nil {
			logger.Info("stop requested, skipping remaining keyword sets")
			break
		}

		pkg := article.FolderName(set.Keywords)
		if _, statErr := os.Stat(s.PackageDir(set.Site, pkg)); statErr != nil {
			continue
		}
		has, err := s.HasImage(set.Site, pkg)
		if err != nil {
			return acquired, err
		}
		if has {
			continue
		}

		res, err := acq.AcquireOne(ctx, set.Site, pkg, set.Keywords)
		if err != nil {
			return acquired, err
		}
		if res.Acquired {
			acquired++
		} else {
			logger.Info("no unseen image found", "site", set.Site, "package", pkg)
		}
	}
	return acquired, nil
}

// Action is the images command entrypoint.
func Action(c *cli.Context) error {
	logger := generate.NewLogger(c.Bool("quiet"))

	cfg, err := generate.LoadConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if cfg.Images.APIKey == "" {
		logger.Error("no image api key configured")
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

	acq := generate.BuildAcquirer(cfg, s, led, logger)
	acquired, err := Run(c.Context, logger, cfg, acq, s)
	if err != nil {
		logger.Error("image pass failed", "error", err)
		return err
	}

	fmt.Printf("Acquired %d images\n", acquired)
	return nil
}
