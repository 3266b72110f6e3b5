package tfidf

import "simscan/internal/domain"

// Document is one group's aggregated text as parallel term vectors.
// Terms, TF and Weight share indexes; Terms is in first-seen order and
// holds no duplicates.
type Document struct {
	Name   string
	Terms  []string
	TF     []float64
	Weight []float64
	// Tokens is the total token occurrence count the TF vector was built from.
	Tokens int

	index map[string]int
}

// BuildDocument tokenizes text and derives the term-frequency vector.
// Text without tokens yields a Document with empty vectors.
func BuildDocument(name, text string, tok domain.Tokenizer) *Document {
	return newDocument(name, tok.Tokenize(text))
}

func newDocument(name string, tokens []string) *Document {
	doc := &Document{
		Name:   name,
		Terms:  []string{},
		TF:     []float64{},
		Weight: []float64{},
		index:  make(map[string]int),
	}
	if len(tokens) == 0 {
		return doc
	}
	var counts []int
	for _, t := range tokens {
		if i, ok := doc.index[t]; ok {
			counts[i]++
			continue
		}
		doc.index[t] = len(doc.Terms)
		doc.Terms = append(doc.Terms, t)
		counts = append(counts, 1)
	}
	total := float64(len(tokens))
	doc.TF = make([]float64, len(counts))
	for i, c := range counts {
		doc.TF[i] = float64(c) / total
	}
	doc.Weight = make([]float64, len(counts))
	doc.Tokens = len(tokens)
	return doc
}

// Empty reports whether the document has no terms.
func (d *Document) Empty() bool { return len(d.Terms) == 0 }

// Lookup returns the vector index of term.
func (d *Document) Lookup(term string) (int, bool) {
	i, ok := d.index[term]
	return i, ok
}

// WeightOf returns the TF-IDF weight of term, or 0 when absent.
func (d *Document) WeightOf(term string) float64 {
	if i, ok := d.index[term]; ok {
		return d.Weight[i]
	}
	return 0
}

// Similarity is the dot product of two weight vectors restricted to the
// terms both documents contain. It is not divided by the vector norms, so
// it is not a cosine similarity and has no fixed upper bound.
func Similarity(a, b *Document) float64 {
	if a == nil || b == nil {
		return 0
	}
	// Walk the smaller document so that the summation order, and therefore
	// the floating point result, does not depend on argument order.
	if len(b.Terms) < len(a.Terms) || (len(b.Terms) == len(a.Terms) && b.Name < a.Name) {
		a, b = b, a
	}
	var sum float64
	for i, term := range a.Terms {
		if j, ok := b.index[term]; ok {
			sum += a.Weight[i] * b.Weight[j]
		}
	}
	return sum
}
