package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteArticleAndReadPackage(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	text := "My Headline\nBody paragraph one.\nBody paragraph two."
	if _, err := s.WriteArticle("siteA", "dog_cat", text); err != nil {
		t.Fatalf("WriteArticle() error = %v", err)
	}

	// Drop an image next to the article.
	imgPath := filepath.Join(s.PackageDir("siteA", "dog_cat"), "dog_1234.jpg")
	if err := os.WriteFile(imgPath, []byte("fakejpg"), 0644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}

	pkg, err := s.ReadPackage("siteA", "dog_cat")
	if err != nil {
		t.Fatalf("ReadPackage() error = %v", err)
	}
	if pkg.Title != "My Headline" {
		t.Errorf("Title = %q, want %q", pkg.Title, "My Headline")
	}
	if pkg.Body != "Body paragraph one.\nBody paragraph two." {
		t.Errorf("Body = %q", pkg.Body)
	}
	if len(pkg.Images) != 1 || filepath.Base(pkg.Images[0]) != "dog_1234.jpg" {
		t.Errorf("Images = %v", pkg.Images)
	}
}

func TestReadPackage_MissingTextArtifact(t *testing.T) {
	s, _ := New(t.TempDir())
	dir := s.PackageDir("siteA", "empty")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := s.ReadPackage("siteA", "empty"); err == nil {
		t.Error("ReadPackage() without txt should error")
	}
}

func TestListPackages(t *testing.T) {
	s, _ := New(t.TempDir())
	for _, pkg := range []string{"zebra", "alpha", "middle"} {
		if _, err := s.WriteArticle("siteA", pkg, "t\nb"); err != nil {
			t.Fatal(err)
		}
	}
	// A stray file at site level must not be listed as a package.
	if err := os.WriteFile(filepath.Join(s.BaseDir, "siteA", "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	pkgs, err := s.ListPackages("siteA")
	if err != nil {
		t.Fatalf("ListPackages() error = %v", err)
	}
	want := []string{"alpha", "middle", "zebra"}
	if len(pkgs) != len(want) {
		t.Fatalf("got %d packages, want %d", len(pkgs), len(want))
	}
	for i := range want {
		if pkgs[i] != want[i] {
			t.Errorf("pkgs[%d] = %q, want %q", i, pkgs[i], want[i])
		}
	}
}

func TestListPackages_MissingSite(t *testing.T) {
	s, _ := New(t.TempDir())
	pkgs, err := s.ListPackages("nosuchsite")
	if err != nil {
		t.Fatalf("ListPackages() error = %v", err)
	}
	if len(pkgs) != 0 {
		t.Errorf("got %d packages, want 0", len(pkgs))
	}
}

func TestHasImage(t *testing.T) {
	s, _ := New(t.TempDir())
	if _, err := s.WriteArticle("siteA", "pkg", "t\nb"); err != nil {
		t.Fatal(err)
	}

	has, err := s.HasImage("siteA", "pkg")
	if err != nil {
		t.Fatalf("HasImage() error = %v", err)
	}
	if has {
		t.Error("HasImage() = true before any image written")
	}

	imgPath := filepath.Join(s.PackageDir("siteA", "pkg"), "cat_0001.png")
	if err := os.WriteFile(imgPath, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}
	has, err = s.HasImage("siteA", "pkg")
	if err != nil {
		t.Fatalf("HasImage() error = %v", err)
	}
	if !has {
		t.Error("HasImage() = false after image written")
	}
}
