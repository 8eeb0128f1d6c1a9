// Package article drives keyword sets through the text generation provider
// and persists the resulting articles into the content store.
package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/seoforge/seoforge/models"
	"github.com/seoforge/seoforge/pkg/keypool"
	"github.com/seoforge/seoforge/pkg/llm"
	"github.com/seoforge/seoforge/pkg/store"
)

const (
	// requestRetryLimit bounds provider-error retries for a single request,
	// rotating to the next API key before each retry.
	requestRetryLimit = 3

	// maxRequestTokens is the provider-side per-request output cap.
	maxRequestTokens = 4096

	// budgetCeiling is the hard stop for budget escalation. A job whose
	// escalated budget passes this is abandoned.
	budgetCeiling = 8192

	// minLengthNum/minLengthDen express the minimum acceptable body length
	// as a fraction of the configured target (60%).
	minLengthNum = 6
	minLengthDen = 10
)

// Outcome is the explicit result of one generation job: either a persisted
// article or an abandonment with a reason. Abandonment is not an error;
// infrastructure failures (no keys configured) are.
type Outcome struct {
	Article   *models.GeneratedArticle
	Package   string // folder name under the site, empty when abandoned
	Abandoned bool
	Reason    string
}

// Engine generates one article per job, retrying under-length results with
// an escalating token budget and rotating API keys on provider errors.
type Engine struct {
	LLM      llm.Client
	Keys     *keypool.Pool
	Store    *store.Store
	Template string // prompt template text, keywords appended per job
	Logger   *slog.Logger

	// VerifyLanguage enables the lingua-based check that the generated text
	// is in the job's language. Off by default; detection loads language
	// models on first use.
	VerifyLanguage bool

	verifier *languageVerifier
}

// Generate runs the adaptive loop for a single job. The job is abandoned,
// never partially persisted, when the provider keeps failing or the budget
// ceiling is reached.
func (e *Engine) Generate(ctx context.Context, job models.GenerationJob) (Outcome, error) {
	target := job.MinChars
	minRequired := target * minLengthNum / minLengthDen
	budget := target / 5
	if budget > maxRequestTokens {
		budget = maxRequestTokens
	}
	// Tiny targets truncate the increment to zero, which would stall the
	// escalation below the ceiling forever.
	step := target / 10
	if step < 1 {
		step = 1
	}

	prompt := e.buildPrompt(job)

	for {
		if budget > budgetCeiling {
			e.Logger.Warn("token budget ceiling reached, abandoning job",
				"site", job.Site, "keywords", job.Keywords, "budget", budget)
			return Outcome{Abandoned: true, Reason: "token budget ceiling reached"}, nil
		}

		raw, err := e.complete(ctx, job, prompt, budget)
		if err != nil {
			if ctx.Err() != nil {
				return Outcome{}, ctx.Err()
			}
			if errors.Is(err, keypool.ErrExhaustedPool) {
				return Outcome{}, err
			}
			e.Logger.Warn("provider retries exhausted, abandoning job",
				"site", job.Site, "keywords", job.Keywords, "error", err)
			return Outcome{Abandoned: true, Reason: fmt.Sprintf("provider failure: %v", err)}, nil
		}

		text := CleanText(TruncateAtSentinel(raw))
		if len([]rune(text)) >= minRequired {
			return e.persist(job, text)
		}

		budget += step
		e.Logger.Info("article under length, escalating token budget",
			"site", job.Site, "got_chars", len([]rune(text)), "min_chars", minRequired, "budget", budget)
	}
}

// complete sends one request, rotating to the next key on each provider
// error, up to requestRetryLimit attempts.
func (e *Engine) complete(ctx context.Context, job models.GenerationJob, prompt llm.Prompt, budget int) (string, error) {
	maxTokens := budget
	if maxTokens > maxRequestTokens {
		maxTokens = maxRequestTokens
	}
	prompt.MaxTokens = maxTokens
	prompt.Model = job.Model

	var lastErr error
	for attempt := 0; attempt < requestRetryLimit; attempt++ {
		key, err := e.Keys.Next()
		if err != nil {
			return "", err
		}
		raw, err := e.LLM.Complete(ctx, key, prompt)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		e.Logger.Warn("generation request failed, rotating api key",
			"site", job.Site, "attempt", attempt+1, "error", err)
	}
	return "", fmt.Errorf("generation failed after %d attempts: %w", requestRetryLimit, lastErr)
}

func (e *Engine) buildPrompt(job models.GenerationJob) llm.Prompt {
	keywords := ""
	for i, kw := range job.Keywords {
		if i > 0 {
			keywords += ", "
		}
		keywords += kw
	}
	user := e.Template +
		"\nInclude the following keywords in the text: " + keywords +
		"\nThe first line should be a headline."
	return llm.Prompt{
		System: fmt.Sprintf("You are an expert in generating SEO-optimized articles in %s.", job.Language),
		User:   user,
	}
}

func (e *Engine) persist(job models.GenerationJob, text string) (Outcome, error) {
	headline, body := SplitHeadline(text)
	art := &models.GeneratedArticle{
		Headline:  headline,
		Body:      body,
		CharCount: len([]rune(text)),
	}

	if e.VerifyLanguage {
		if lang, ok := e.detectLanguage(text); ok && lang != job.Language {
			e.Logger.Warn("generated language does not match job language",
				"site", job.Site, "want", job.Language, "detected", lang)
		}
	}

	folder := FolderName(job.Keywords)
	if _, err := e.Store.WriteArticle(job.Site, folder, art.Text()); err != nil {
		return Outcome{}, err
	}
	e.Logger.Info("article persisted",
		"site", job.Site, "package", folder, "chars", art.CharCount)
	return Outcome{Article: art, Package: folder}, nil
}
