package article

import (
	"sync"

	"github.com/pemistahl/lingua-go"
)

// languageVerifier lazily builds a lingua detector so that generation runs
// that never persist an article do not pay the model-loading cost.
type languageVerifier struct {
	once     sync.Once
	detector lingua.LanguageDetector
}

func (v *languageVerifier) detect(text string) (string, bool) {
	v.once.Do(func() {
		v.detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build()
	})
	lang, ok := v.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return lang.String(), true
}

// detectLanguage returns the detected language name of a generated text.
// Detection is best-effort: a confident mismatch is logged by the caller, a
// failed detection is silently ignored.
func (e *Engine) detectLanguage(text string) (string, bool) {
	if e.verifier == nil {
		e.verifier = &languageVerifier{}
	}
	// lingua reports canonical names ("English", "German"); configs use
	// the same convention, so the name compares directly.
	return e.verifier.detect(text)
}
