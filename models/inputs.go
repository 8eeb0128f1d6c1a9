package models

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// KeywordSet is one keyword file line: a site and its comma-separated
// keywords. Repeated lines for the same site accumulate into multiple sets,
// each producing its own article.
type KeywordSet struct {
	Site     string
	Keywords []string
}

// LoadKeywordSets parses the pipe-delimited keyword file
// (site|kw1,kw2,kw3). Malformed lines are skipped rather than failing the
// whole file; the caller logs how many sets were loaded.
func LoadKeywordSets(path string) ([]KeywordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyword file: %w", err)
	}
	defer f.Close()

	var sets []KeywordSet
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			continue
		}
		site := strings.TrimSpace(parts[0])
		var keywords []string
		for _, kw := range strings.Split(parts[1], ",") {
			kw = strings.TrimSpace(kw)
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if site == "" || len(keywords) == 0 {
			continue
		}
		sets = append(sets, KeywordSet{Site: site, Keywords: keywords})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keyword file: %w", err)
	}
	return sets, nil
}

// LoadSiteCredentials parses the pipe-delimited credentials file
// (site|login|password), preserving file order for site iteration.
func LoadSiteCredentials(path string) ([]SiteCredentials, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credentials file: %w", err)
	}
	defer f.Close()

	var creds []SiteCredentials
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 3 {
			continue
		}
		c := SiteCredentials{
			Host:     strings.TrimSpace(parts[0]),
			Login:    strings.TrimSpace(parts[1]),
			Password: strings.TrimSpace(parts[2]),
		}
		if c.Host == "" || c.Login == "" {
			continue
		}
		creds = append(creds, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return creds, nil
}
