package article

import (
	"strings"
	"unicode"
)

// allowedPunct is the fixed punctuation set retained by CleanText.
const allowedPunct = `.,!?;:"'-`

// sentinel marks the start of provider commentary; everything from the
// first line consisting of it onward is discarded.
const sentinel = "---"

// maxFolderRunes bounds the length of a derived package folder name.
const maxFolderRunes = 80

// TruncateAtSentinel drops the sentinel line and everything after it.
// Providers append usage notes or disclaimers below a "---" rule; none of
// that belongs in the article body.
func TruncateAtSentinel(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), sentinel) {
			return strings.Join(lines[:i], "\n")
		}
	}
	return text
}

// CleanText strips characters outside letters, digits, whitespace, and the
// allowed punctuation set, then collapses runs of whitespace into single
// spaces and trims the ends.
func CleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		case strings.ContainsRune(allowedPunct, r):
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// SplitHeadline applies the period-then-space heuristic: the first sentence
// becomes the headline only when the text contains ". " somewhere. Texts
// without that exact sequence (single run-on sentence, abbreviations at the
// very end) are treated as undifferentiated body. That false negative is
// known and load-bearing for downstream folder naming, so do not "improve" it.
func SplitHeadline(text string) (headline, body string) {
	idx := strings.Index(text, ". ")
	if idx < 0 {
		return "", text
	}
	return strings.TrimSpace(text[:idx+1]), strings.TrimSpace(text[idx+2:])
}

// FolderName derives a filesystem-safe package folder name from the first
// three keywords: illegal characters stripped, newlines collapsed, length
// bounded.
func FolderName(keywords []string) string {
	n := len(keywords)
	if n > 3 {
		n = 3
	}
	name := strings.Join(keywords[:n], "_")
	name = strings.NewReplacer("\n", " ", "\r", " ").Replace(name)

	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			continue
		}
		b.WriteRune(r)
	}
	name = strings.Join(strings.Fields(b.String()), "_")

	runes := []rune(name)
	if len(runes) > maxFolderRunes {
		name = string(runes[:maxFolderRunes])
	}
	return name
}
