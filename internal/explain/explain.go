package explain

import (
	"math"
	"sort"

	"simscan/internal/domain"
	"simscan/internal/tfidf"
)

// Explain lists the shared terms of two documents with their share of the
// pair score, largest absolute contribution first. The products sum to
// tfidf.Similarity(a, b). A limit <= 0 returns every shared term.
func Explain(a, b *tfidf.Document, limit int) []domain.Contribution {
	if a == nil || b == nil {
		return nil
	}
	var out []domain.Contribution
	for i, term := range a.Terms {
		j, ok := b.Lookup(term)
		if !ok {
			continue
		}
		out = append(out, domain.Contribution{
			Term:    term,
			WeightA: a.Weight[i],
			WeightB: b.Weight[j],
			Product: a.Weight[i] * b.Weight[j],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Product), math.Abs(out[j].Product)
		if ai != aj {
			return ai > aj
		}
		return out[i].Term < out[j].Term
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// Terms returns the term of each contribution in order.
func Terms(cs []domain.Contribution) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Term
	}
	return out
}
