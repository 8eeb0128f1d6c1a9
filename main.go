package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/seoforge/seoforge/internal/generate"
	"github.com/seoforge/seoforge/internal/images"
	"github.com/seoforge/seoforge/internal/ledgercmd"
	"github.com/seoforge/seoforge/internal/pipeline"
	"github.com/seoforge/seoforge/internal/publish"
)

var commonFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "seoforge.yaml",
		Usage:   "path to the YAML config file",
	},
	&cli.BoolFlag{
		Name:  "quiet",
		Usage: "only log errors",
	},
}

var generationFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "keywords",
		Usage: "override the keyword file path",
	},
	&cli.IntFlag{
		Name:  "min-chars",
		Usage: "override the minimum article length",
	},
	&cli.StringFlag{
		Name:  "language",
		Usage: "override the article language",
	},
	&cli.StringFlag{
		Name:  "model",
		Usage: "override the generation model",
	},
	&cli.BoolFlag{
		Name:  "no-images",
		Usage: "skip image acquisition",
	},
}

var publishFlags = []cli.Flag{
	&cli.IntFlag{
		Name:  "batch-size",
		Usage: "override the concurrent upload batch size",
	},
	&cli.IntFlag{
		Name:  "pause",
		Usage: "override the pause between batches, in seconds",
	},
}

func ledgerFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Value: 50,
			Usage: "maximum number of rows to print",
		},
	}, commonFlags...)
}

func main() {
	app := &cli.App{
		Name:  "seoforge",
		Usage: "generate, illustrate and publish articles from keyword sets",
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "generate one article per keyword set",
				Flags:  append(append([]cli.Flag{}, commonFlags...), generationFlags...),
				Action: generate.Action,
			},
			{
				Name:   "images",
				Usage:  "acquire an image for every article that has none",
				Flags:  append(append([]cli.Flag{}, commonFlags...), generationFlags...),
				Action: images.Action,
			},
			{
				Name:   "publish",
				Usage:  "publish unposted articles to their sites",
				Flags:  append(append([]cli.Flag{}, commonFlags...), publishFlags...),
				Action: publish.Action,
			},
			{
				Name:   "run",
				Usage:  "generate then publish in one pass",
				Flags:  append(append(append([]cli.Flag{}, commonFlags...), generationFlags...), publishFlags...),
				Action: pipeline.Action,
			},
			{
				Name:  "ledger",
				Usage: "inspect the dedup and run ledger",
				Subcommands: []*cli.Command{
					{
						Name:   "images",
						Usage:  "list recorded images",
						Flags:  ledgerFlags(),
						Action: ledgercmd.ImagesAction,
					},
					{
						Name:   "posts",
						Usage:  "list published articles",
						Flags:  ledgerFlags(),
						Action: ledgercmd.PostsAction,
					},
					{
						Name:   "runs",
						Usage:  "list past runs and their totals",
						Flags:  ledgerFlags(),
						Action: ledgercmd.RunsAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
