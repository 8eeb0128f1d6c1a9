package generate

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/seoforge/seoforge/models"
	"github.com/seoforge/seoforge/pkg/article"
	"github.com/seoforge/seoforge/pkg/images"
	"github.com/seoforge/seoforge/pkg/keypool"
	"github.com/seoforge/seoforge/pkg/ledger"
	"github.com/seoforge/seoforge/pkg/llm"
	"github.com/seoforge/seoforge/pkg/pixabay"
	"github.com/seoforge/seoforge/pkg/store"
)

// NewLogger builds the shared JSON logger used by all commands.
func NewLogger(quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// LoadConfig resolves the config path flag and applies CLI overrides.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("keywords") {
		cfg.KeywordFile = c.String("keywords")
	}
	if c.IsSet("min-chars") {
		cfg.Generation.MinChars = c.Int("min-chars")
	}
	if c.IsSet("language") {
		cfg.Generation.Language = c.String("language")
	}
	if c.IsSet("model") {
		cfg.Generation.Model = c.String("model")
	}
	if c.IsSet("batch-size") {
		cfg.Publish.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("pause") {
		cfg.Publish.PauseSeconds = c.Int("pause")
	}
	return cfg, nil
}

// BuildEngine assembles the generation engine from config.
func BuildEngine(cfg *models.Config, s *store.Store, logger *slog.Logger) (*article.Engine, error) {
	keys, err := keypool.Load(cfg.APIKeyFile)
	if err != nil {
		return nil, err
	}
	logger.Info("api keys loaded", "count", keys.Len())

	template, err := os.ReadFile(cfg.PromptFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}

	return &article.Engine{
		LLM:            &llm.OpenAIClient{BaseURL: cfg.Generation.BaseURL},
		Keys:           keys,
		Store:          s,
		Template:       string(template),
		Logger:         logger,
		VerifyLanguage: true,
	}, nil
}

// BuildAcquirer assembles the image acquisition client from config.
// Returns nil when no image API key is configured.
func BuildAcquirer(cfg *models.Config, s *store.Store, led *ledger.Ledger, logger *slog.Logger) *images.Acquirer {
	if cfg.Images.APIKey == "" {
		logger.Info("no image api key configured, skipping image acquisition")
		return nil
	}
	return &images.Acquirer{
		Search: &pixabay.Client{
			APIKey:   cfg.Images.APIKey,
			Endpoint: cfg.Images.Endpoint,
			PerPage:  cfg.Images.PerPage,
			Logger:   logger,
		},
		Ledger: led,
		Store:  s,
		Logger: logger,
	}
}

// Action is the generate command entrypoint.
func Action(c *cli.Context) error {
	logger := NewLogger(c.Bool("quiet"))

	cfg, err := LoadConfig(c)
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

	eng, err := BuildEngine(cfg, s, logger)
	if err != nil {
		logger.Error("failed to build generation engine", "error", err)
		os.Exit(2)
	}

	var acq *images.Acquirer
	if !c.Bool("no-images") {
		acq = BuildAcquirer(cfg, s, led, logger)
	}

	totals, err := Run(c.Context, logger, cfg, eng, acq, led)
	if err != nil {
		logger.Error("generation run failed", "error", err)
		return err
	}

	fmt.Printf("Generated %d articles (%d abandoned)\n", totals.Generated, totals.Failed)
	return nil
}
