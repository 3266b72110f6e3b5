package domain

import (
	"context"
	"time"
)

// Pair is the similarity score of one unordered pair of groups.
// A sorts before B.
type Pair struct {
	Score float64
	A     string
	B     string
}

// Involves reports whether the pair contains the named group.
func (p Pair) Involves(name string) bool { return p.A == name || p.B == name }

// Contribution is one shared term's share of a pair score.
type Contribution struct {
	Term    string  `json:"term"`
	WeightA float64 `json:"weight_a"`
	WeightB float64 `json:"weight_b"`
	Product float64 `json:"product"`
}

// Run identifies one scan of a corpus root.
type Run struct {
	ID        string
	Root      string
	Groups    int
	StartedAt time.Time
}

// Tokenizer extracts word tokens from raw text.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Collector produces group name to concatenated text for a corpus root.
type Collector interface {
	Collect(ctx context.Context, root string) (map[string]string, error)
}

// PairStore persists pair scores and answers ranked lookups.
type PairStore interface {
	Init(ctx context.Context, run Run) error
	Save(ctx context.Context, pairs []Pair) error
	Top(ctx context.Context, k int) ([]Pair, error)
	ForGroup(ctx context.Context, name string, k int) ([]Pair, error)
	Clear(ctx context.Context) error
	Close() error
}

// SimilarityService defines the operations exposed by the application core.
type SimilarityService interface {
	Scan(ctx context.Context, root string) (Summary, error)
	Top(ctx context.Context, k int) ([]Pair, error)
	Query(ctx context.Context, group string, k int) ([]Pair, error)
	Explain(a, b string, limit int) ([]Contribution, error)
}

// Summary describes the outcome of a scan.
type Summary struct {
	RunID       string
	Root        string
	Groups      int
	EmptyGroups []string
	Pairs       int
	Best        *Pair
}
