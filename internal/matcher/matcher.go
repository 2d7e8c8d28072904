package matcher

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

type Strategy string

const (
	StrategyNone        Strategy = "none"
	StrategyExact       Strategy = "exact"
	StrategyLevenshtein Strategy = "levenshtein"
	StrategySubstring   Strategy = "substring"
	StrategyToken       Strategy = "token"
)

// Config holds the tuning knobs for fuzzy member matching.
type Config struct {
	// SimilarityThreshold is the whole-name similarity a candidate must exceed.
	SimilarityThreshold float64
	// TokenThreshold is the per-word similarity a candidate word must exceed.
	TokenThreshold float64
	// MinFragmentLength is the shortest input (or input word) eligible for
	// substring and token matching.
	MinFragmentLength int
}

func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.6,
		TokenThreshold:      0.8,
		MinFragmentLength:   3,
	}
}

type Result struct {
	Matched     bool     `json:"matched"`
	MatchedName string   `json:"matchedName,omitempty"`
	Confidence  float64  `json:"confidence"`
	Strategy    Strategy `json:"strategy"`
}

type Matcher struct {
	cfg Config
}

func New(cfg Config) *Matcher {
	defaults := DefaultConfig()
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = defaults.SimilarityThreshold
	}
	if cfg.TokenThreshold <= 0 {
		cfg.TokenThreshold = defaults.TokenThreshold
	}
	if cfg.MinFragmentLength <= 0 {
		cfg.MinFragmentLength = defaults.MinFragmentLength
	}
	return &Matcher{cfg: cfg}
}

// Normalize folds case, applies NFKC and collapses runs of whitespace.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Classify resolves a free-text player name against the member roster. The
// strategies run in order (exact, levenshtein, substring, token) and the first
// one that accepts wins. MatchedName is always the roster spelling.
func (m *Matcher) Classify(name string, members []string) Result {
	cleaned := Normalize(name)
	if cleaned == "" || len(members) == 0 {
		return Result{Strategy: StrategyNone}
	}

	normalized := make([]string, len(members))
	for i, member := range members {
		normalized[i] = Normalize(member)
	}

	for i, candidate := range normalized {
		if candidate != "" && candidate == cleaned {
			return Result{Matched: true, MatchedName: members[i], Confidence: 1, Strategy: StrategyExact}
		}
	}

	bestIdx := -1
	bestScore := 0.0
	for i, candidate := range normalized {
		score := Similarity(cleaned, candidate)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx >= 0 && bestScore > m.cfg.SimilarityThreshold {
		return Result{Matched: true, MatchedName: members[bestIdx], Confidence: bestScore, Strategy: StrategyLevenshtein}
	}

	inputLen := utf8.RuneCountInString(cleaned)
	if inputLen >= m.cfg.MinFragmentLength {
		for i, candidate := range normalized {
			if candidate == "" || !strings.Contains(candidate, cleaned) {
				continue
			}
			confidence := float64(inputLen) / float64(utf8.RuneCountInString(candidate))
			return Result{Matched: true, MatchedName: members[i], Confidence: confidence, Strategy: StrategySubstring}
		}
	}

	if idx, score := m.bestTokenMatch(cleaned, normalized); idx >= 0 {
		return Result{Matched: true, MatchedName: members[idx], Confidence: score, Strategy: StrategyToken}
	}

	return Result{Confidence: bestScore, Strategy: StrategyNone}
}

func (m *Matcher) bestTokenMatch(cleaned string, normalized []string) (int, float64) {
	bestIdx := -1
	bestScore := 0.0
	for _, word := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(word) < m.cfg.MinFragmentLength {
			continue
		}
		for i, candidate := range normalized {
			for _, memberWord := range strings.Fields(candidate) {
				score := Similarity(word, memberWord)
				if score > m.cfg.TokenThreshold && score > bestScore {
					bestScore = score
					bestIdx = i
				}
			}
		}
	}
	return bestIdx, bestScore
}

// IsMember reports whether name classifies as any member of the roster.
func (m *Matcher) IsMember(name string, members []string) bool {
	return m.Classify(name, members).Matched
}
