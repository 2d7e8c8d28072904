package matcher

import (
	"math"
	"testing"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"jon", "john", 1},
		{"ñandu", "nandu", 1},
		{"same", "same", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := Levenshtein(tt.a, tt.b); got != tt.want {
				t.Fatalf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("", "anything"); got != 0 {
		t.Fatalf("empty similarity = %v, want 0", got)
	}
	if got := Similarity("", ""); got != 0 {
		t.Fatalf("both empty similarity = %v, want 0", got)
	}
	if got := Similarity("reyes", "reyes"); got != 1 {
		t.Fatalf("identical similarity = %v, want 1", got)
	}
	got := Similarity("jon dela cruz", "john dela cruz")
	want := 13.0 / 14.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("similarity = %v, want %v", got, want)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  John   Dela  Cruz ", "john dela cruz"},
		{"MARÍA", "maría"},
		{"Ｊｏｈｎ", "john"},
		{"\tA.\nReyes", "a. reyes"},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	members := []string{"John Dela Cruz", "A. Reyes", "Maria Santos", "Ben"}
	m := New(DefaultConfig())

	tests := []struct {
		name         string
		input        string
		wantMatched  bool
		wantName     string
		wantStrategy Strategy
	}{
		{name: "exact with case and spacing", input: "  john   DELA cruz ", wantMatched: true, wantName: "John Dela Cruz", wantStrategy: StrategyExact},
		{name: "typo resolves by edit distance", input: "Jon Dela Cruz", wantMatched: true, wantName: "John Dela Cruz", wantStrategy: StrategyLevenshtein},
		{name: "partial name is a substring", input: "Santos", wantMatched: true, wantName: "Maria Santos", wantStrategy: StrategySubstring},
		{name: "single misspelled surname matches a token", input: "Santoz Family Party", wantMatched: true, wantName: "Maria Santos", wantStrategy: StrategyToken},
		{name: "short fragment is not a substring match", input: "sa", wantMatched: false, wantStrategy: StrategyNone},
		{name: "unrelated name", input: "Xavier Quimpo", wantMatched: false, wantStrategy: StrategyNone},
		{name: "empty input", input: "   ", wantMatched: false, wantStrategy: StrategyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Classify(tt.input, members)
			if got.Matched != tt.wantMatched {
				t.Fatalf("Matched = %v, want %v (result %+v)", got.Matched, tt.wantMatched, got)
			}
			if got.Strategy != tt.wantStrategy {
				t.Fatalf("Strategy = %q, want %q", got.Strategy, tt.wantStrategy)
			}
			if tt.wantMatched && got.MatchedName != tt.wantName {
				t.Fatalf("MatchedName = %q, want %q", got.MatchedName, tt.wantName)
			}
		})
	}
}

func TestClassifyExactAlwaysFullConfidence(t *testing.T) {
	members := []string{"Ana Lim", "Carlo Tan", "John Dela Cruz"}
	m := New(DefaultConfig())

	for _, member := range members {
		for _, variant := range []string{member, "  " + member + "  ", Normalize(member)} {
			got := m.Classify(variant, members)
			if !got.Matched || got.Confidence != 1 {
				t.Fatalf("Classify(%q) = %+v, want matched with confidence 1", variant, got)
			}
		}
	}
}

func TestClassifyKeepsBestLevenshteinCandidate(t *testing.T) {
	members := []string{"Marco Reyes", "Marcos Reyes"}
	m := New(DefaultConfig())

	got := m.Classify("Marcos Reye", members)
	if got.MatchedName != "Marcos Reyes" {
		t.Fatalf("MatchedName = %q, want Marcos Reyes", got.MatchedName)
	}
}

func TestClassifyHonorsConfiguredThreshold(t *testing.T) {
	members := []string{"John Dela Cruz"}
	strict := New(Config{SimilarityThreshold: 0.95, TokenThreshold: 0.99, MinFragmentLength: 20})

	got := strict.Classify("Jon Dela Cruz", members)
	if got.Matched {
		t.Fatalf("expected no match under strict thresholds, got %+v", got)
	}
}
