package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"simscan/internal/domain"
	"simscan/internal/explain"
	"simscan/internal/tfidf"
)

var (
	// ErrNoGroups is returned when a corpus root holds no group directories.
	ErrNoGroups = errors.New("no groups found")
	// ErrNotScanned is returned by lookups that need a completed scan.
	ErrNotScanned = errors.New("no scan has completed")
	// ErrUnknownGroup is returned when a group name is not in the corpus.
	ErrUnknownGroup = errors.New("unknown group")
)

var _ domain.SimilarityService = (*SimilarityServiceImpl)(nil)

type SimilarityServiceImpl struct {
	collector domain.Collector
	tokenizer domain.Tokenizer
	store     domain.PairStore
	logger    *slog.Logger
	corpus    *tfidf.Corpus
	pairs     []domain.Pair
	now       func() time.Time
}

func NewSimilarityService(collector domain.Collector, tokenizer domain.Tokenizer, store domain.PairStore, logger *slog.Logger) *SimilarityServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &SimilarityServiceImpl{collector: collector, tokenizer: tokenizer, store: store, logger: logger, now: time.Now}
}

// Scan collects the groups under root and scores every pair of them.
func (s *SimilarityServiceImpl) Scan(ctx context.Context, root string) (domain.Summary, error) {
	groups, err := s.collector.Collect(ctx, root)
	if err != nil {
		return domain.Summary{}, err
	}
	if len(groups) == 0 {
		return domain.Summary{}, fmt.Errorf("%w under %s", ErrNoGroups, root)
	}
	return s.Analyze(ctx, root, groups)
}

// Analyze scores already collected group texts. label names the run.
func (s *SimilarityServiceImpl) Analyze(ctx context.Context, label string, groups map[string]string) (domain.Summary, error) {
	started := s.now()
	pairs, corpus := tfidf.Analyze(groups, s.tokenizer)

	summary := domain.Summary{
		RunID:  uuid.NewString(),
		Root:   label,
		Groups: corpus.Len(),
		Pairs:  len(pairs),
	}
	for _, name := range corpus.Names() {
		doc, _ := corpus.Document(name)
		s.logger.Debug("group weighed", "group", name, "tokens", doc.Tokens, "terms", len(doc.Terms))
		if doc.Empty() {
			summary.EmptyGroups = append(summary.EmptyGroups, name)
		}
	}
	if len(summary.EmptyGroups) > 0 {
		s.logger.Warn("groups without tokens", "groups", summary.EmptyGroups)
	}

	run := domain.Run{ID: summary.RunID, Root: label, Groups: corpus.Len(), StartedAt: started}
	if err := s.store.Init(ctx, run); err != nil {
		return domain.Summary{}, fmt.Errorf("init result store: %w", err)
	}
	if err := s.store.Clear(ctx); err != nil {
		return domain.Summary{}, fmt.Errorf("clear result store: %w", err)
	}
	if err := s.store.Save(ctx, pairs); err != nil {
		return domain.Summary{}, fmt.Errorf("save pairs: %w", err)
	}
	top, err := s.store.Top(ctx, 1)
	if err != nil {
		return domain.Summary{}, err
	}
	if len(top) == 1 {
		best := top[0]
		summary.Best = &best
	}

	s.corpus = corpus
	s.pairs = pairs
	s.logger.Info("scan complete",
		"run", summary.RunID,
		"groups", summary.Groups,
		"pairs", summary.Pairs,
		"duration", s.now().Sub(started))
	return summary, nil
}

// Pairs returns the last scan's pairs in enumeration order.
func (s *SimilarityServiceImpl) Pairs() []domain.Pair {
	return append([]domain.Pair(nil), s.pairs...)
}

// Top returns the k highest scoring pairs of the last scan.
func (s *SimilarityServiceImpl) Top(ctx context.Context, k int) ([]domain.Pair, error) {
	if s.corpus == nil {
		return nil, ErrNotScanned
	}
	return s.store.Top(ctx, k)
}

// Query returns the k highest scoring pairs involving group.
func (s *SimilarityServiceImpl) Query(ctx context.Context, group string, k int) ([]domain.Pair, error) {
	if s.corpus == nil {
		return nil, ErrNotScanned
	}
	if _, ok := s.corpus.Document(group); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, group)
	}
	return s.store.ForGroup(ctx, group, k)
}

// Explain returns the shared terms behind the score of groups a and b.
func (s *SimilarityServiceImpl) Explain(a, b string, limit int) ([]domain.Contribution, error) {
	if s.corpus == nil {
		return nil, ErrNotScanned
	}
	da, ok := s.corpus.Document(a)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, a)
	}
	db, ok := s.corpus.Document(b)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, b)
	}
	return explain.Explain(da, db, limit), nil
}
