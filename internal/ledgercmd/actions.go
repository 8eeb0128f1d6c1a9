// Package ledgercmd prints ledger contents for inspection.
package ledgercmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/seoforge/seoforge/internal/generate"
	"github.com/seoforge/seoforge/pkg/ledger"
)

const timeLayout = "2006-01-02 15:04:05"

func open(c *cli.Context) (*ledger.Ledger, error) {
	cfg, err := generate.LoadConfig(c)
	if err != nil {
		return nil, err
	}
	return ledger.Open(cfg.LedgerDB)
}

// ImagesAction lists recorded images, newest first.
func ImagesAction(c *cli.Context) error {
	led, err := open(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open ledger: %v\n", err)
		os.Exit(2)
	}
	defer led.Close()

	rows, err := led.ListImages(c.Int("limit"))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("No images recorded.")
		return nil
	}
	fmt.Printf("%-6s %-19s %-30s %s\n", "ID", "WHEN", "FILENAME", "TAGS")
	for _, r := range rows {
		fmt.Printf("%-6d %-19s %-30s %s\n",
			r.ID, r.CreatedAt.Format(timeLayout), r.Filename, r.Tags)
	}
	return nil
}

// PostsAction lists published articles, newest first.
func PostsAction(c *cli.Context) error {
	led, err := open(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open ledger: %v\n", err)
		os.Exit(2)
	}
	defer led.Close()

	rows, err := led.ListPosts(c.Int("limit"))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("No posts recorded.")
		return nil
	}
	fmt.Printf("%-6s %-19s %-25s %s\n", "ID", "WHEN", "SITE", "ARTICLE")
	for _, r := range rows {
		fmt.Printf("%-6d %-19s %-25s %s\n",
			r.ID, r.CreatedAt.Format(timeLayout), r.Site, r.Article)
	}
	return nil
}

// RunsAction lists past runs with their totals, newest first.
func RunsAction(c *cli.Context) error {
	led, err := open(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open ledger: %v\n", err)
		os.Exit(2)
	}
	defer led.Close()

	rows, err := led.ListRuns(c.Int("limit"))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	fmt.Printf("%-36s %-10s %-19s %-19s %s\n",
		"RUN", "KIND", "STARTED", "FINISHED", "TOTALS (gen/pub/skip/fail)")
	for _, r := range rows {
		finished := "running"
		if r.FinishedAt.Valid {
			finished = r.FinishedAt.Time.Format(timeLayout)
		}
		fmt.Printf("%-36s %-10s %-19s %-19s %d/%d/%d/%d\n",
			r.ID, r.Kind, r.StartedAt.Format(timeLayout), finished,
			r.Totals.Generated, r.Totals.Published, r.Totals.Skipped, r.Totals.Failed)
	}
	return nil
}
