// Package images acquires one not-yet-seen image per article package,
// deduplicating against the image ledger.
package images

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/seoforge/seoforge/models"
	"github.com/seoforge/seoforge/pkg/ledger"
	"github.com/seoforge/seoforge/pkg/pixabay"
	"github.com/seoforge/seoforge/pkg/store"
)

// Acquirer walks candidate keywords and downloads the first unseen search
// hit into the package folder.
type Acquirer struct {
	Search *pixabay.Client
	Ledger *ledger.Ledger
	Store  *store.Store
	Logger *slog.Logger

	// Rand supplies the 4-digit filename suffix; replaceable in tests.
	Rand func() int
}

// Result reports whether an image was acquired. All keywords exhausting
// without a new image is a no-op, not an error.
type Result struct {
	Acquired bool
	Filename string
	Keyword  string
}

// AcquireOne iterates keywords in order and stops at the first successful
// download. Hits missing tags or a URL are skipped without counting against
// anything; hits already in the ledger are skipped as seen. A failed
// download (its retries already spent) exhausts the whole keyword.
func (a *Acquirer) AcquireOne(ctx context.Context, site, pkg string, keywords []string) (Result, error) {
	for _, keyword := range keywords {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}

		hits, err := a.Search.Search(ctx, keyword)
		if err != nil {
			// Keyword exhausted; the next one may still succeed.
			a.Logger.Warn("image search exhausted for keyword",
				"site", site, "package", pkg, "keyword", keyword, "error", err)
			continue
		}

		for _, hit := range hits {
			if hit.Tags == "" || hit.LargeImageURL == "" {
				continue
			}
			seen, err := a.Ledger.SeenImage(hit.Tags)
			if err != nil {
				return Result{}, err
			}
			if seen {
				a.Logger.Debug("skipping previously downloaded image",
					"keyword", keyword, "tags", hit.Tags)
				continue
			}

			filename, err := a.download(ctx, site, pkg, keyword, hit)
			if err != nil {
				a.Logger.Warn("image download failed, keyword exhausted",
					"site", site, "package", pkg, "keyword", keyword, "error", err)
				break
			}
			return Result{Acquired: true, Filename: filename, Keyword: keyword}, nil
		}
	}

	a.Logger.Info("no new image available", "site", site, "package", pkg)
	return Result{}, nil
}

// download fetches the binary, writes it beside the article, and appends
// the ledger row. The ledger write comes last so a failed download never
// poisons future dedup checks.
func (a *Acquirer) download(ctx context.Context, site, pkg, keyword string, hit pixabay.Hit) (string, error) {
	data, err := a.Search.Download(ctx, hit.LargeImageURL)
	if err != nil {
		return "", err
	}

	filename := a.filename(keyword, hit.LargeImageURL)
	dest := filepath.Join(a.Store.PackageDir(site, pkg), filename)
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	rec := models.ImageRecord{
		Query:     keyword,
		Filename:  filename,
		URL:       hit.LargeImageURL,
		Tags:      hit.Tags,
		MediaType: hit.Type,
	}
	if err := a.Ledger.RecordImage(rec); err != nil {
		return "", err
	}
	a.Logger.Info("image acquired",
		"site", site, "package", pkg, "keyword", keyword, "filename", filename)
	return filename, nil
}

// filename builds {keyword}_{4-digit suffix}{ext}, with the extension taken
// from the source URL path and defaulting to .jpg.
func (a *Acquirer) filename(keyword, rawURL string) string {
	ext := ".jpg"
	if u, err := url.Parse(rawURL); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = e
		}
	}
	suffix := rand.Intn(10000)
	if a.Rand != nil {
		suffix = a.Rand() % 10000
	}
	safe := strings.ReplaceAll(keyword, " ", "_")
	return fmt.Sprintf("%s_%04d%s", safe, suffix, ext)
}
