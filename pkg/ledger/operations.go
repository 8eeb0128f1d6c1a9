package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seoforge/seoforge/models"
)

// SeenImage reports whether an image with this tag string was downloaded
// before. Acquisition consults this before every download attempt.
func (l *Ledger) SeenImage(tags string) (bool, error) {
	var id int64
	err := l.QueryRow("SELECT image_id FROM images WHERE tags = ?", tags).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query image ledger: %w", err)
	}
	return true, nil
}

// RecordImage appends one image row. The unique index on tags makes a
// duplicate append an error rather than a silent overwrite.
func (l *Ledger) RecordImage(rec models.ImageRecord) error {
	_, err := l.Exec(`
		INSERT INTO images (query, filename, url, tags, media_type)
		VALUES (?, ?, ?, ?, ?)
	`, rec.Query, rec.Filename, rec.URL, rec.Tags, rec.MediaType)
	if err != nil {
		return fmt.Errorf("failed to record image: %w", err)
	}
	return nil
}

// IsPosted reports whether (site, article) already has a publish row.
func (l *Ledger) IsPosted(site, article string) (bool, error) {
	var posted int
	err := l.QueryRow("SELECT posted FROM posts WHERE site = ? AND article = ?", site, article).Scan(&posted)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query publish ledger: %w", err)
	}
	return true, nil
}

// MarkPosted appends the publish row for (site, article). Called only as
// the final step of a successful publish unit.
func (l *Ledger) MarkPosted(site, article string) error {
	_, err := l.Exec("INSERT INTO posts (site, article, posted) VALUES (?, ?, 1)", site, article)
	if err != nil {
		return fmt.Errorf("failed to mark as posted: %w", err)
	}
	return nil
}

// RunTotals are the counters recorded when a run finishes.
type RunTotals struct {
	Generated int
	Published int
	Skipped   int
	Failed    int
}

// StartRun records the start of a pipeline invocation and returns its id.
func (l *Ledger) StartRun(kind string) (string, error) {
	id := uuid.NewString()
	_, err := l.Exec("INSERT INTO runs (run_id, kind) VALUES (?, ?)", id, kind)
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run's end time and totals.
func (l *Ledger) FinishRun(id string, totals RunTotals) error {
	_, err := l.Exec(`
		UPDATE runs SET finished_at = CURRENT_TIMESTAMP,
			generated = ?, published = ?, skipped = ?, failed = ?
		WHERE run_id = ?
	`, totals.Generated, totals.Published, totals.Skipped, totals.Failed, id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// ImageRow is one image ledger row for listing.
type ImageRow struct {
	ID        int64
	Query     string
	Filename  string
	URL       string
	Tags      string
	MediaType string
	CreatedAt time.Time
}

// ListImages returns the most recent image rows, newest first.
func (l *Ledger) ListImages(limit int) ([]ImageRow, error) {
	rows, err := l.Query(`
		SELECT image_id, query, filename, url, tags, COALESCE(media_type, ''), created_at
		FROM images ORDER BY image_id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var out []ImageRow
	for rows.Next() {
		var r ImageRow
		if err := rows.Scan(&r.ID, &r.Query, &r.Filename, &r.URL, &r.Tags, &r.MediaType, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PostRow is one publish ledger row for listing.
type PostRow struct {
	ID        int64
	Site      string
	Article   string
	CreatedAt time.Time
}

// ListPosts returns the most recent publish rows, newest first.
func (l *Ledger) ListPosts(limit int) ([]PostRow, error) {
	rows, err := l.Query(`
		SELECT post_id, site, article, created_at
		FROM posts ORDER BY post_id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var out []PostRow
	for rows.Next() {
		var r PostRow
		if err := rows.Scan(&r.ID, &r.Site, &r.Article, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunRow is one run bookkeeping row for listing.
type RunRow struct {
	ID         string
	Kind       string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Totals     RunTotals
}

// ListRuns returns the most recent runs, newest first.
func (l *Ledger) ListRuns(limit int) ([]RunRow, error) {
	rows, err := l.Query(`
		SELECT run_id, kind, started_at, finished_at, generated, published, skipped, failed
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		if err := rows.Scan(&r.ID, &r.Kind, &r.StartedAt, &r.FinishedAt,
			&r.Totals.Generated, &r.Totals.Published, &r.Totals.Skipped, &r.Totals.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
