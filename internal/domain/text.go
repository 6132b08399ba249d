package domain

import (
	"strings"
	"unicode"
)

// stopwords excluded from correlation keyword sets. Short tokens (<= 3 runes)
// are dropped unconditionally, so only longer function words are listed.
var stopwords = map[string]struct{}{
	"about": {}, "after": {}, "again": {}, "against": {}, "amid": {},
	"because": {}, "been": {}, "before": {}, "being": {}, "between": {},
	"could": {}, "does": {}, "down": {}, "during": {}, "each": {},
	"from": {}, "have": {}, "having": {}, "here": {}, "himself": {},
	"inside": {}, "into": {}, "itself": {}, "just": {}, "like": {},
	"more": {}, "most": {}, "much": {}, "near": {}, "over": {}, "said": {},
	"says": {}, "several": {}, "some": {}, "still": {}, "such": {},
	"than": {}, "that": {}, "their": {}, "them": {}, "then": {}, "there": {},
	"these": {}, "they": {}, "this": {}, "those": {}, "through": {},
	"under": {}, "until": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "while": {}, "will": {}, "with": {},
	"without": {}, "would": {}, "your": {},
}

// englishFunctionWords is the minimal signal set for the English heuristic.
var englishFunctionWords = []string{
	"the", "and", "for", "with", "from", "that", "this", "has", "have",
	"was", "were", "will", "are", "is", "to", "of", "in", "on", "after",
}

// ExtractKeywords produces the normalized keyword set used for cross-source
// correlation: lowercase alphanumeric tokens longer than three runes, with
// stopwords removed and duplicates collapsed, preserving first occurrence.
func ExtractKeywords(title, summary string) []string {
	text := strings.ToLower(title + " " + summary)

	seen := make(map[string]struct{})
	var keywords []string
	for _, token := range tokenize(text) {
		if len([]rune(token)) <= 3 {
			continue
		}
		if _, skip := stopwords[token]; skip {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}
	return keywords
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// IsLikelyEnglish is the heuristic English-only filter applied to non-seismic
// events: reject any text containing non-Latin script runes, then require at
// least one common English function word as a whole token. Best effort only;
// deduplication across languages is explicitly out of scope.
func IsLikelyEnglish(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	for _, r := range text {
		if r < 0x250 || unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsDigit(r) {
			continue
		}
		switch {
		case unicode.Is(unicode.Cyrillic, r),
			unicode.Is(unicode.Han, r),
			unicode.Is(unicode.Arabic, r),
			unicode.Is(unicode.Hangul, r),
			unicode.Is(unicode.Hiragana, r),
			unicode.Is(unicode.Katakana, r),
			unicode.Is(unicode.Devanagari, r),
			unicode.Is(unicode.Thai, r),
			unicode.Is(unicode.Hebrew, r),
			unicode.Is(unicode.Greek, r):
			return false
		}
	}

	lower := strings.ToLower(text)
	for _, token := range tokenize(lower) {
		for _, fn := range englishFunctionWords {
			if token == fn {
				return true
			}
		}
	}
	return false
}
