// Package normalize repairs OCR noise in free text. Two passes: merge line
// fragments that OCR spuriously split (a leading multi-byte glyph often
// lands on its own short line), then canonicalize near-duplicate words by
// majority vote across the whole document.
package normalize

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Config holds the normalizer tuning.
type Config struct {
	// SimilarityThreshold is the minimum pairwise similarity for two words
	// to share a voting cluster.
	SimilarityThreshold float64 `mapstructure:"similarity_threshold" yaml:"similarity_threshold"`

	// ShortLineMax is the maximum trimmed length of a line fragment that
	// gets buffered into the next line.
	ShortLineMax int `mapstructure:"short_line_max" yaml:"short_line_max"`

	// MaxDistinctWords bounds the quadratic voting pass. Beyond the cap,
	// words map to themselves. Normal invoice text (hundreds of distinct
	// words) is unaffected.
	MaxDistinctWords int `mapstructure:"max_distinct_words" yaml:"max_distinct_words"`
}

// DefaultConfig returns the production normalizer settings.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.85,
		ShortLineMax:        2,
		MaxDistinctWords:    2000,
	}
}

// Normalizer is stateless and safe for concurrent use.
type Normalizer struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a normalizer.
func New(cfg Config, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultConfig().SimilarityThreshold
	}
	if cfg.MaxDistinctWords <= 0 {
		cfg.MaxDistinctWords = DefaultConfig().MaxDistinctWords
	}
	return &Normalizer{cfg: cfg, logger: logger}
}

// Normalize repairs a raw OCR text block. Output word order and count match
// the merged input; only spellings change. Running Normalize on its own
// output is a no-op.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return text
	}

	text = norm.NFC.String(text)

	lines := n.mergeBrokenLines(strings.Split(text, "\n"))

	words := strings.Fields(strings.Join(lines, " "))
	words = n.majorityVote(words)

	return strings.Join(words, " ")
}

// mergeBrokenLines buffers short fragments and prepends them to the next
// substantial line. A trailing unflushed buffer becomes its own line.
func (n *Normalizer) mergeBrokenLines(lines []string) []string {
	merged := make([]string, 0, len(lines))
	buffer := ""

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= n.cfg.ShortLineMax {
			buffer += line
			continue
		}
		if buffer != "" {
			merged = append(merged, buffer+" "+line)
			buffer = ""
		} else {
			merged = append(merged, line)
		}
	}

	if buffer != "" {
		merged = append(merged, buffer)
	}
	return merged
}

// majorityVote replaces every word with the canonical form of its similarity
// cluster: the most frequent member, first-seen winning ties. Clusters are
// pairwise around each seed word, not transitively closed; a later seed may
// re-assign overlapping members, matching the reference behavior.
func (n *Normalizer) majorityVote(words []string) []string {
	counts := make(map[string]int, len(words))
	distinct := make([]string, 0, len(words))
	for _, w := range words {
		if _, seen := counts[w]; !seen {
			distinct = append(distinct, w)
		}
		counts[w]++
	}

	if len(distinct) > n.cfg.MaxDistinctWords {
		n.logger.Warn("distinct word cap exceeded, skipping majority vote",
			"distinct", len(distinct), "cap", n.cfg.MaxDistinctWords)
		return words
	}

	canonical := make(map[string]string, len(distinct))
	for _, w := range distinct {
		if _, done := canonical[w]; done {
			continue
		}

		winner := ""
		best := -1
		var group []string
		for _, other := range distinct {
			if !similarEnough(w, other, n.cfg.SimilarityThreshold) {
				continue
			}
			group = append(group, other)
			if counts[other] > best {
				best = counts[other]
				winner = other
			}
		}

		for _, g := range group {
			canonical[g] = winner
		}
	}

	out := make([]string, len(words))
	for i, w := range words {
		out[i] = canonical[w]
	}
	return out
}

// similarEnough short-circuits pairs whose length difference alone rules out
// clearing the threshold, then falls back to the full similarity ratio.
func similarEnough(a, b string, threshold float64) bool {
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	shorter := la
	if lb < la {
		shorter = lb
	}
	// Upper bound: every rune of the shorter word matches.
	if 2.0*float64(shorter)/float64(la+lb) <= threshold {
		return false
	}
	return Similarity(a, b) > threshold
}
