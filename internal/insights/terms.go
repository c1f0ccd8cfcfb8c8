// Package insights provides a simple, deterministic term-frequency extractor
// over review text. The dashboard uses it to surface the most common words in
// recent negative reviews ("cold", "slow", "rude") so a brand owner can see at
// a glance what customers complain about. It is intentionally small and
// dependency-free:
//
//   - No logging in the library (callers decide how/what to log)
//   - Unicode-aware tokenization with stop-word removal
//   - Deterministic ranking and sorting (stable order for ties)
//   - Sensible defaults (minimum term length, result caps)
package insights

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Term is one ranked token with the number of reviews it appeared in.
type Term struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	minTermRunes int
	stopwords    map[string]struct{}
}

func defaultConfig() config {
	return config{
		minTermRunes: 4,
		stopwords:    defaultStopwords,
	}
}

// WithMinTermRunes sets the minimum rune length a token needs to be counted.
func WithMinTermRunes(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.minTermRunes = n
		}
	}
}

// WithStopwords replaces the default stop-word set.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		c.stopwords = m
	}
}

// ----------------------------------------------------------------------------
// Extraction

var termRE = regexp.MustCompile(`\p{L}+\p{N}*`)

// TopTerms ranks the tokens of the given texts by document frequency: a term
// counts once per text it appears in, so one rant repeating "cold" ten times
// weighs the same as one mention. Ties break alphabetically so output is
// stable across runs. At most k terms are returned; k <= 0 defaults to 5.
func TopTerms(texts []string, k int, opts ...Option) []Term {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if k <= 0 {
		k = 5
	}

	counts := make(map[string]int)
	for _, text := range texts {
		for tok := range tokenize(text, cfg) {
			counts[tok]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	ranked := make([]Term, 0, len(counts))
	for term, n := range counts {
		ranked = append(ranked, Term{Term: term, Count: n})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].Count != ranked[b].Count {
			return ranked[a].Count > ranked[b].Count
		}
		return ranked[a].Term < ranked[b].Term
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}

// tokenize returns the distinct counted tokens of one text.
func tokenize(text string, cfg config) map[string]struct{} {
	words := termRE.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if cfg.minTermRunes > 0 && utf8.RuneCountInString(w) < cfg.minTermRunes {
			continue
		}
		if cfg.stopwords != nil {
			if _, skip := cfg.stopwords[w]; skip {
				continue
			}
		}
		out[w] = struct{}{}
	}
	return out
}

// defaultStopwords drops function words and generic review filler so the
// ranking favors complaint nouns and adjectives.
var defaultStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "to": {}, "in": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "for": {}, "on": {},
	"with": {}, "by": {}, "from": {}, "at": {}, "as": {}, "that": {}, "this": {}, "it": {},
	"they": {}, "them": {}, "their": {}, "there": {}, "here": {}, "have": {}, "has": {},
	"had": {}, "not": {}, "but": {}, "very": {}, "really": {}, "just": {}, "only": {},
	"would": {}, "could": {}, "should": {}, "will": {}, "when": {}, "then": {}, "than": {},
	"what": {}, "which": {}, "about": {}, "again": {}, "never": {}, "ever": {}, "even": {},
	"place": {}, "time": {}, "back": {}, "came": {}, "come": {}, "went": {}, "going": {},
	"food": {}, "service": {}, "staff": {}, "experience": {}, "review": {}, "ordered": {},
	"because": {}, "after": {}, "before": {}, "more": {}, "some": {}, "your": {}, "our": {},
	"like": {}, "also": {}, "told": {}, "said": {}, "asked": {}, "got": {},
}
