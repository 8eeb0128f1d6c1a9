package ledger

import (
	"path/filepath"
	"testing"

	"github.com/seoforge/seoforge/models"
)

// setupTestLedger creates an in-memory sqlite ledger for testing.
func setupTestLedger(t *testing.T) *Ledger {
	t.Helper()

	l := &Ledger{path: ":memory:"}
	var err error
	l.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test ledger: %v", err)
	}
	if err := l.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}
	return l
}

func TestImageDedup(t *testing.T) {
	l := setupTestLedger(t)
	defer l.Close()

	rec := models.ImageRecord{
		Query:     "dog",
		Filename:  "dog_1234.jpg",
		URL:       "https://img.example/dog.jpg",
		Tags:      "dog, puppy, pet",
		MediaType: "photo",
	}

	seen, err := l.SeenImage(rec.Tags)
	if err != nil {
		t.Fatalf("SeenImage() error = %v", err)
	}
	if seen {
		t.Error("SeenImage() = true before any record")
	}

	if err := l.RecordImage(rec); err != nil {
		t.Fatalf("RecordImage() error = %v", err)
	}

	seen, err = l.SeenImage(rec.Tags)
	if err != nil {
		t.Fatalf("SeenImage() error = %v", err)
	}
	if !seen {
		t.Error("SeenImage() = false after record")
	}

	// The unique index rejects a second row with the same dedup key.
	if err := l.RecordImage(rec); err == nil {
		t.Error("RecordImage() with duplicate tags should error")
	}
}

func TestPublishIdempotency(t *testing.T) {
	l := setupTestLedger(t)
	defer l.Close()

	posted, err := l.IsPosted("siteA", "dog_cat")
	if err != nil {
		t.Fatalf("IsPosted() error = %v", err)
	}
	if posted {
		t.Error("IsPosted() = true before MarkPosted")
	}

	if err := l.MarkPosted("siteA", "dog_cat"); err != nil {
		t.Fatalf("MarkPosted() error = %v", err)
	}

	posted, err = l.IsPosted("siteA", "dog_cat")
	if err != nil {
		t.Fatalf("IsPosted() error = %v", err)
	}
	if !posted {
		t.Error("IsPosted() = false after MarkPosted")
	}

	// Same article on a different site is independent.
	posted, err = l.IsPosted("siteB", "dog_cat")
	if err != nil {
		t.Fatalf("IsPosted() error = %v", err)
	}
	if posted {
		t.Error("IsPosted() for another site should be false")
	}
}

func TestLedgerSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := l.MarkPosted("siteA", "article1"); err != nil {
		t.Fatalf("MarkPosted() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	l2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer l2.Close()

	posted, err := l2.IsPosted("siteA", "article1")
	if err != nil {
		t.Fatalf("IsPosted() after reopen error = %v", err)
	}
	if !posted {
		t.Error("publish row lost across reopen")
	}
}

func TestRunBookkeeping(t *testing.T) {
	l := setupTestLedger(t)
	defer l.Close()

	id, err := l.StartRun("publish")
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}
	if id == "" {
		t.Fatal("StartRun() returned empty id")
	}

	totals := RunTotals{Published: 3, Skipped: 1, Failed: 1}
	if err := l.FinishRun(id, totals); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	runs, err := l.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.ID != id || r.Kind != "publish" {
		t.Errorf("run = %+v", r)
	}
	if !r.FinishedAt.Valid {
		t.Error("FinishedAt not set")
	}
	if r.Totals != totals {
		t.Errorf("totals = %+v, want %+v", r.Totals, totals)
	}
}

func TestListImagesAndPosts(t *testing.T) {
	l := setupTestLedger(t)
	defer l.Close()

	for i, tags := range []string{"dog, pet", "cat, pet", "bird, pet"} {
		rec := models.ImageRecord{
			Query:    "pet",
			Filename: "img.jpg",
			URL:      "https://img.example/x.jpg",
			Tags:     tags,
		}
		if err := l.RecordImage(rec); err != nil {
			t.Fatalf("RecordImage() %d error = %v", i, err)
		}
	}
	images, err := l.ListImages(2)
	if err != nil {
		t.Fatalf("ListImages() error = %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("got %d images, want 2", len(images))
	}
	if images[0].Tags != "bird, pet" {
		t.Errorf("newest image first: got %q", images[0].Tags)
	}

	if err := l.MarkPosted("siteA", "one"); err != nil {
		t.Fatal(err)
	}
	posts, err := l.ListPosts(10)
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if len(posts) != 1 || posts[0].Site != "siteA" {
		t.Errorf("posts = %+v", posts)
	}
}
