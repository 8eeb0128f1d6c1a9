package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/seoforge/seoforge/models"
	"github.com/seoforge/seoforge/pkg/ledger"
	"github.com/seoforge/seoforge/pkg/store"
	"github.com/seoforge/seoforge/pkg/wordpress"
)

// fakeCMS counts media uploads and created posts per site path.
type fakeCMS struct {
	srv *httptest.Server

	mu      sync.Mutex
	posts   []wordpress.Post
	uploads int

	// failTitles makes post creation fail for matching titles.
	failTitles map[string]bool
}

func newFakeCMS(t *testing.T) *fakeCMS {
	t.Helper()
	f := &fakeCMS{failTitles: map[string]bool{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wp/v2/media", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.uploads++
		id := int64(f.uploads)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]int64{"id": id})
	})
	mux.HandleFunc("/wp-json/wp/v2/posts", func(w http.ResponseWriter, r *http.Request) {
		var p wordpress.Post
		json.NewDecoder(r.Body).Decode(&p)
		f.mu.Lock()
		fail := f.failTitles[p.Title]
		if !fail {
			f.posts = append(f.posts, p)
		}
		f.mu.Unlock()
		if fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeCMS) postCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

func testOrchestrator(t *testing.T, cms *fakeCMS, sites []models.SiteCredentials) (*Orchestrator, *store.Store, *ledger.Ledger, *[]time.Duration) {
	t.Helper()
	s, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	l, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { l.Close() })

	sleeps := &[]time.Duration{}
	o := &Orchestrator{
		Store:     s,
		Ledger:    l,
		Sites:     sites,
		BatchSize: 5,
		Pause:     10 * time.Second,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		NewClient: func(c models.SiteCredentials) *wordpress.Client {
			return &wordpress.Client{
				Host:     c.Host,
				Login:    c.Login,
				Password: c.Password,
				BaseURL:  cms.srv.URL,
			}
		},
		Sleep: func(_ context.Context, d time.Duration) error {
			*sleeps = append(*sleeps, d)
			return nil
		},
	}
	return o, s, l, sleeps
}

func siteA() []models.SiteCredentials {
	return []models.SiteCredentials{{Host: "siteA", Login: "admin", Password: "pw"}}
}

func writePackages(t *testing.T, s *store.Store, site string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("pkg%02d", i)
		text := fmt.Sprintf("Title %02d\nBody for package %02d.", i, i)
		if _, err := s.WriteArticle(site, name, text); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRun_PublishesAllPackages(t *testing.T) {
	cms := newFakeCMS(t)
	o, s, l, _ := testOrchestrator(t, cms, siteA())
	writePackages(t, s, "siteA", 3)

	report := o.Run(context.Background())

	if report.Published != 3 || report.Failed != 0 || report.Skipped != 0 {
		t.Errorf("report = %+v", report)
	}
	if cms.postCount() != 3 {
		t.Errorf("CMS received %d posts, want 3", cms.postCount())
	}
	for i := 0; i < 3; i++ {
		posted, err := l.IsPosted("siteA", fmt.Sprintf("pkg%02d", i))
		if err != nil || !posted {
			t.Errorf("pkg%02d not in ledger: posted=%v err=%v", i, posted, err)
		}
	}
}

func TestRun_SecondRunSkipsEverything(t *testing.T) {
	cms := newFakeCMS(t)
	o, s, _, _ := testOrchestrator(t, cms, siteA())
	writePackages(t, s, "siteA", 4)

	first := o.Run(context.Background())
	if first.Published != 4 {
		t.Fatalf("first run report = %+v", first)
	}

	second := o.Run(context.Background())
	if second.Skipped != 4 || second.Published != 0 {
		t.Errorf("second run report = %+v, want all skipped", second)
	}
	if cms.postCount() != 4 {
		t.Errorf("CMS received %d posts across both runs, want 4", cms.postCount())
	}
}

func TestRun_BatchPacing(t *testing.T) {
	tests := []struct {
		name        string
		packages    int
		batchSize   int
		wantBatches int
	}{
		{name: "exact multiple", packages: 10, batchSize: 5, wantBatches: 2},
		{name: "remainder batch", packages: 7, batchSize: 3, wantBatches: 3},
		{name: "single batch", packages: 4, batchSize: 5, wantBatches: 1},
		{name: "one per batch", packages: 3, batchSize: 1, wantBatches: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cms := newFakeCMS(t)
			o, s, _, sleeps := testOrchestrator(t, cms, siteA())
			o.BatchSize = tt.batchSize
			writePackages(t, s, "siteA", tt.packages)

			report := o.Run(context.Background())

			if report.Published != tt.packages {
				t.Errorf("published = %d, want %d", report.Published, tt.packages)
			}
			// ceil(N/B)-1 pauses, each of the configured duration.
			if len(*sleeps) != tt.wantBatches-1 {
				t.Errorf("got %d pauses, want %d", len(*sleeps), tt.wantBatches-1)
			}
			for _, d := range *sleeps {
				if d != 10*time.Second {
					t.Errorf("pause = %v, want 10s", d)
				}
			}
		})
	}
}

func TestRun_FailureIsolation(t *testing.T) {
	cms := newFakeCMS(t)
	cms.failTitles["Title 01"] = true
	o, s, l, _ := testOrchestrator(t, cms, siteA())
	writePackages(t, s, "siteA", 3)

	report := o.Run(context.Background())

	if report.Published != 2 || report.Failed != 1 {
		t.Errorf("report = %+v, want 2 published 1 failed", report)
	}

	// The failed package has no ledger row, so a future run retries it.
	posted, err := l.IsPosted("siteA", "pkg01")
	if err != nil {
		t.Fatal(err)
	}
	if posted {
		t.Error("failed package must not get a ledger row")
	}

	// Fix the site and re-run: only the failed one goes out.
	delete(cms.failTitles, "Title 01")
	second := o.Run(context.Background())
	if second.Published != 1 || second.Skipped != 2 {
		t.Errorf("second run report = %+v", second)
	}
}

func TestRun_MissingTextArtifactFailsUnit(t *testing.T) {
	cms := newFakeCMS(t)
	o, s, _, _ := testOrchestrator(t, cms, siteA())
	writePackages(t, s, "siteA", 1)
	// A bare folder with no text artifact.
	if err := os.MkdirAll(s.PackageDir("siteA", "empty_pkg"), 0755); err != nil {
		t.Fatal(err)
	}

	report := o.Run(context.Background())
	if report.Published != 1 || report.Failed != 1 {
		t.Errorf("report = %+v, want 1 published 1 failed", report)
	}
}

func TestRun_FeaturedMediaFromFirstImage(t *testing.T) {
	cms := newFakeCMS(t)
	o, s, _, _ := testOrchestrator(t, cms, siteA())
	writePackages(t, s, "siteA", 1)
	dir := s.PackageDir("siteA", "pkg00")
	for _, name := range []string{"a_0001.jpg", "b_0002.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("img"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	report := o.Run(context.Background())
	if report.Published != 1 {
		t.Fatalf("report = %+v", report)
	}

	cms.mu.Lock()
	defer cms.mu.Unlock()
	if cms.uploads != 2 {
		t.Errorf("uploads = %d, want 2", cms.uploads)
	}
	if len(cms.posts) != 1 || cms.posts[0].FeaturedMedia == 0 {
		t.Errorf("posts = %+v, want featured media set", cms.posts)
	}
}

func TestRun_Cancellation(t *testing.T) {
	cms := newFakeCMS(t)
	o, s, _, _ := testOrchestrator(t, cms, siteA())
	writePackages(t, s, "siteA", 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := o.Run(ctx)
	if report.Total != 0 {
		t.Errorf("canceled run processed %d units, want 0", report.Total)
	}
	if cms.postCount() != 0 {
		t.Errorf("canceled run sent %d posts, want 0", cms.postCount())
	}
}

func TestRun_CancellationBetweenBatches(t *testing.T) {
	cms := newFakeCMS(t)
	o, s, _, _ := testOrchestrator(t, cms, siteA())
	o.BatchSize = 2
	writePackages(t, s, "siteA", 6)

	ctx, cancel := context.WithCancel(context.Background())
	o.Sleep = func(context.Context, time.Duration) error {
		cancel() // stop requested during the first inter-batch pause
		return nil
	}

	report := o.Run(ctx)
	if report.Published != 2 {
		t.Errorf("published = %d, want only the first batch (2)", report.Published)
	}
}

func TestRun_SitesProcessedSequentially(t *testing.T) {
	cms := newFakeCMS(t)
	sites := []models.SiteCredentials{
		{Host: "siteA", Login: "a", Password: "p"},
		{Host: "siteB", Login: "b", Password: "p"},
	}
	o, s, _, _ := testOrchestrator(t, cms, sites)
	writePackages(t, s, "siteA", 2)
	writePackages(t, s, "siteB", 3)

	report := o.Run(context.Background())
	if report.Published != 5 {
		t.Errorf("published = %d, want 5", report.Published)
	}

	cms.mu.Lock()
	defer cms.mu.Unlock()
	var titles []string
	for _, p := range cms.posts {
		titles = append(titles, p.Title)
	}
	// Not asserting order within a batch, only that both sites were served.
	joined := strings.Join(titles, ",")
	if !strings.Contains(joined, "Title 00") {
		t.Errorf("titles = %v", titles)
	}
}
