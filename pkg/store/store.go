// Package store manages the on-disk content layout: one folder per site,
// one package folder per article, each holding a single text artifact and
// any downloaded images. The store is the handoff point between generation
// and publishing.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Store roots all content under BaseDir.
type Store struct {
	BaseDir string
}

// New returns a store rooted at baseDir, creating it if needed.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create content dir: %w", err)
	}
	return &Store{BaseDir: baseDir}, nil
}

// PackageDir returns the folder for one (site, package) pair.
func (s *Store) PackageDir(site, pkg string) string {
	return filepath.Join(s.BaseDir, site, pkg)
}

// WriteArticle creates the package folder and writes the text artifact.
func (s *Store) WriteArticle(site, pkg, text string) (string, error) {
	dir := s.PackageDir(site, pkg)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create package dir: %w", err)
	}
	path := filepath.Join(dir, "article.txt")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write article: %w", err)
	}
	return path, nil
}

// ListPackages returns the package folder names under a site, sorted for
// deterministic batch partitioning. A missing site dir is an empty list,
// not an error.
func (s *Store) ListPackages(site string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.BaseDir, site))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list site dir: %w", err)
	}
	var pkgs []string
	for _, e := range entries {
		if e.IsDir() {
			pkgs = append(pkgs, e.Name())
		}
	}
	sort.Strings(pkgs)
	return pkgs, nil
}

// Package is the publish-ready view of one article folder.
type Package struct {
	Title  string
	Body   string
	Images []string // absolute paths, sorted
}

// ReadPackage locates the text artifact and images inside a package folder.
// The artifact's first line is the title, the remainder the body. A missing
// text artifact is an error; the package cannot be published without it.
func (s *Store) ReadPackage(site, pkg string) (*Package, error) {
	dir := s.PackageDir(site, pkg)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read package dir: %w", err)
	}

	var txtPath string
	var images []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		switch {
		case ext == ".txt":
			txtPath = filepath.Join(dir, name)
		case imageExtensions[ext]:
			images = append(images, filepath.Join(dir, name))
		}
	}
	if txtPath == "" {
		return nil, fmt.Errorf("package %s/%s has no text artifact", site, pkg)
	}
	sort.Strings(images)

	data, err := os.ReadFile(txtPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read article: %w", err)
	}

	title, body, _ := strings.Cut(strings.TrimSpace(string(data)), "\n")
	return &Package{
		Title:  strings.TrimSpace(title),
		Body:   strings.TrimSpace(body),
		Images: images,
	}, nil
}

// HasImage reports whether a package folder already contains an image.
func (s *Store) HasImage(site, pkg string) (bool, error) {
	entries, err := os.ReadDir(s.PackageDir(site, pkg))
	if err != nil {
		return false, fmt.Errorf("failed to read package dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			return true, nil
		}
	}
	return false, nil
}
