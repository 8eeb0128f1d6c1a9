package models

// GenerationJob describes one article to generate: a site, its keyword set,
// and the length/model/language targets. Jobs are built from keyword file
// lines and consumed exactly once; they are never persisted.
type GenerationJob struct {
	Site     string
	Keywords []string
	Language string
	MinChars int
	Model    string
}

// GeneratedArticle is the output of a successful generation run for one job.
type GeneratedArticle struct {
	Headline  string // empty when the headline heuristic found no sentence break
	Body      string
	CharCount int
}

// Text returns the article as it is persisted: headline on the first line
// (when present) followed by the body.
func (a GeneratedArticle) Text() string {
	if a.Headline == "" {
		return a.Body
	}
	return a.Headline + "\n" + a.Body
}

// ImageRecord is one row of the image ledger: a successfully downloaded
// image keyed by its tag string. Rows are append-only.
type ImageRecord struct {
	Query     string
	Filename  string
	URL       string
	Tags      string
	MediaType string
}

// SiteCredentials holds one CMS site's publishing identity, loaded from the
// pipe-delimited credentials file. Immutable for the run.
type SiteCredentials struct {
	Host     string
	Login    string
	Password string
}
