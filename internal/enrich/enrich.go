// Package enrich computes metadata for cleaned text: word and
// character counts, a character-range language guess, extracted tags,
// and an estimated reading time.
package enrich

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmhart/textpress/pkg/types"
)

const (
	// wordsPerMinute is the reading speed assumed for reading time
	wordsPerMinute = 200
	// maxTags caps the final tag list
	maxTags = 10
	// maxTokenTags caps how many significant-word candidates are considered
	maxTokenTags = 5
)

var (
	wordTokens = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	hashtags   = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
	longWords  = regexp.MustCompile(`\b[a-z]{5,}\b`)
)

// languageRule pairs a character-range pattern with the language it
// indicates. Rules are checked in order and the first match wins; the
// order matters because the accented-character sets overlap.
type languageRule struct {
	pattern  *regexp.Regexp
	language string
}

var languageRules = []languageRule{
	{regexp.MustCompile("[А-Яа-яЁё]"), "Russian"},
	{regexp.MustCompile("[ぁ-ゟ゠-ヿ一-鿿]"), "Japanese/Chinese"},
	{regexp.MustCompile("[áéíóúñü¿¡]"), "Spanish"},
	{regexp.MustCompile("[àâäéèêëîïôöùûüÿç]"), "French"},
	{regexp.MustCompile("[äöüß]"), "German"},
}

// Enrich computes metadata for already-normalized text. It is
// deterministic apart from the embedded processed-at timestamp.
func Enrich(cleanText string) types.Metadata {
	return enrichAt(cleanText, time.Now())
}

func enrichAt(cleanText string, now time.Time) types.Metadata {
	wordCount := len(wordTokens.FindAllString(cleanText, -1))

	return types.Metadata{
		Source:             types.MetadataSource,
		WordCount:          wordCount,
		CharCount:          utf8.RuneCountInString(cleanText),
		LanguageGuess:      GuessLanguage(cleanText),
		Tags:               ExtractTags(cleanText),
		ReadingTimeMinutes: readingTime(wordCount),
		ProcessedAt:        now.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// GuessLanguage returns a coarse language guess based on character
// ranges. Mixed-script text resolves to whichever rule matches first;
// text with no distinctive characters is reported as English.
func GuessLanguage(text string) string {
	for _, rule := range languageRules {
		if rule.pattern.MatchString(text) {
			return rule.language
		}
	}
	return "English"
}

// ExtractTags collects hashtags in order of appearance, then appends
// significant words (lowercase alphabetic tokens of at least five
// characters, first five candidates only) that are not already tagged.
// The result is de-duplicated preserving first-seen order and capped
// at ten tags.
func ExtractTags(text string) []string {
	tags := []string{}
	for _, m := range hashtags.FindAllStringSubmatch(text, -1) {
		tags = append(tags, m[1])
	}

	tokens := longWords.FindAllString(strings.ToLower(text), -1)
	if len(tokens) > maxTokenTags {
		tokens = tokens[:maxTokenTags]
	}
	for _, tok := range tokens {
		if !contains(tags, tok) {
			tags = append(tags, tok)
		}
	}

	return dedupe(tags, maxTags)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func dedupe(list []string, limit int) []string {
	seen := make(map[string]struct{}, len(list))
	out := []string{}
	for _, v := range list {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out
}

// readingTime estimates minutes to read at wordsPerMinute, never less
// than one minute
func readingTime(wordCount int) int {
	minutes := int(math.Round(float64(wordCount) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}
