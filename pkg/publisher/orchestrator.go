// Package publisher drives not-yet-posted article packages to their sites
// in fixed-size concurrent batches, pausing between batches and recording
// every successful publish in the ledger.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/seoforge/seoforge/models"
	"github.com/seoforge/seoforge/pkg/ledger"
	"github.com/seoforge/seoforge/pkg/store"
	"github.com/seoforge/seoforge/pkg/wordpress"
)

// Report aggregates the outcome of one publishing run. Units report their
// status over a channel and the orchestrator reduces them here; there is no
// shared mutable counter.
type Report struct {
	Total     int
	Published int
	Skipped   int
	Failed    int
}

type unitStatus int

const (
	statusPublished unitStatus = iota
	statusSkipped
	statusFailed
)

// Orchestrator publishes every pending package for every configured site.
// Sites are processed sequentially; packages within a batch concurrently.
type Orchestrator struct {
	Store     *store.Store
	Ledger    *ledger.Ledger
	Sites     []models.SiteCredentials
	BatchSize int
	Pause     time.Duration
	Logger    *slog.Logger

	// RenderMarkdown is passed through to each site client.
	RenderMarkdown bool

	// NewClient builds the per-site CMS client; replaceable in tests.
	NewClient func(models.SiteCredentials) *wordpress.Client

	// Sleep is the inter-batch pause hook, replaceable in tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (o *Orchestrator) newClient(site models.SiteCredentials) *wordpress.Client {
	if o.NewClient != nil {
		return o.NewClient(site)
	}
	return &wordpress.Client{
		Host:           site.Host,
		Login:          site.Login,
		Password:       site.Password,
		RenderMarkdown: o.RenderMarkdown,
	}
}

func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) error {
	if o.Sleep != nil {
		return o.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run publishes all sites' pending packages. Cancellation is cooperative:
// the context is checked before each site, each batch, and each unit;
// in-flight units finish. The returned report covers whatever completed.
func (o *Orchestrator) Run(ctx context.Context) Report {
	var report Report

	for _, site := range o.Sites {
		if ctx.Err() != nil {
			o.Logger.Info("stop requested, skipping remaining sites")
			break
		}
		o.publishSite(ctx, site, &report)
	}

	o.Logger.Info("publishing run finished",
		"total", report.Total, "published", report.Published,
		"skipped", report.Skipped, "failed", report.Failed)
	return report
}

func (o *Orchestrator) publishSite(ctx context.Context, site models.SiteCredentials, report *Report) {
	pkgs, err := o.Store.ListPackages(site.Host)
	if err != nil {
		o.Logger.Error("failed to enumerate packages", "site", site.Host, "error", err)
		return
	}
	if len(pkgs) == 0 {
		o.Logger.Info("no packages for site", "site", site.Host)
		return
	}
	o.Logger.Info("processing site", "site", site.Host, "packages", len(pkgs))

	client := o.newClient(site)
	batchSize := o.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	for start := 0; start < len(pkgs); start += batchSize {
		if ctx.Err() != nil {
			o.Logger.Info("stop requested, skipping remaining batches", "site", site.Host)
			return
		}

		end := start + batchSize
		if end > len(pkgs) {
			end = len(pkgs)
		}
		batch := pkgs[start:end]
		o.Logger.Info("processing batch",
			"site", site.Host, "batch", start/batchSize+1, "size", len(batch))

		o.processBatch(ctx, client, site.Host, batch, report)

		// Pause between batches, never after the last.
		if end < len(pkgs) {
			if err := o.sleep(ctx, o.Pause); err != nil {
				return
			}
		}
	}
}

// processBatch starts one goroutine per package and waits for the whole
// batch before returning. Unit failures are isolated: each unit reports its
// own status and nothing aborts siblings.
func (o *Orchestrator) processBatch(ctx context.Context, client *wordpress.Client, site string, batch []string, report *Report) {
	results := make(chan unitStatus, len(batch))
	var wg sync.WaitGroup

	for _, pkg := range batch {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(pkg string) {
			defer wg.Done()
			results <- o.processPackage(ctx, client, site, pkg)
		}(pkg)
	}

	wg.Wait()
	close(results)

	for status := range results {
		report.Total++
		switch status {
		case statusPublished:
			report.Published++
		case statusSkipped:
			report.Skipped++
		case statusFailed:
			report.Failed++
		}
	}
}

// processPackage publishes one package: idempotency check, media uploads,
// post submission, then the ledger row. The ledger write is last so a crash
// mid-unit can never fabricate a Posted record.
func (o *Orchestrator) processPackage(ctx context.Context, client *wordpress.Client, site, pkg string) unitStatus {
	posted, err := o.Ledger.IsPosted(site, pkg)
	if err != nil {
		o.Logger.Error("ledger check failed", "site", site, "package", pkg, "error", err)
		return statusFailed
	}
	if posted {
		o.Logger.Info("already published, skipping", "site", site, "package", pkg)
		return statusSkipped
	}

	p, err := o.Store.ReadPackage(site, pkg)
	if err != nil {
		o.Logger.Error("unreadable package", "site", site, "package", pkg, "error", err)
		return statusFailed
	}

	// The first uploaded image becomes the featured media; later images
	// are uploaded but not embedded inline.
	var featured int64
	for _, img := range p.Images {
		id, err := client.UploadMedia(ctx, img)
		if err != nil {
			o.Logger.Error("media upload failed", "site", site, "package", pkg, "image", img, "error", err)
			continue
		}
		o.Logger.Info("media uploaded", "site", site, "package", pkg, "media_id", id)
		if featured == 0 {
			featured = id
		}
	}

	post := wordpress.Post{
		Title:         p.Title,
		Content:       p.Body,
		Status:        "publish",
		FeaturedMedia: featured,
	}
	if err := client.CreatePost(ctx, post); err != nil {
		o.Logger.Error("post failed", "site", site, "package", pkg, "error", err)
		return statusFailed
	}

	if err := o.Ledger.MarkPosted(site, pkg); err != nil {
		// The post is live but unrecorded; the next run will duplicate it
		// unless this is resolved, so shout.
		o.Logger.Error("post published but ledger write failed",
			"site", site, "package", pkg, "error", err)
	}
	o.Logger.Info("package published", "site", site, "package", pkg)
	return statusPublished
}
