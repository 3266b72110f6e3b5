// Package tfidf weighs group texts with TF-IDF and scores every pair of them.
package tfidf

import (
	"math"
	"sort"

	"simscan/internal/domain"
)

// Corpus holds every Document of one run. Its shape is fixed at
// construction; only the Weight vectors change, once, in Weigh.
type Corpus struct {
	docs     map[string]*Document
	names    []string
	df       map[string]int
	idf      map[string]float64
	weighted bool
}

// NewCorpus builds a Document for every group before any weighting happens.
func NewCorpus(groups map[string]string, tok domain.Tokenizer) *Corpus {
	c := &Corpus{
		docs:  make(map[string]*Document, len(groups)),
		names: make([]string, 0, len(groups)),
		df:    make(map[string]int),
	}
	for name, text := range groups {
		c.add(BuildDocument(name, text, tok))
	}
	sort.Strings(c.names)
	return c
}

func (c *Corpus) add(d *Document) {
	c.docs[d.Name] = d
	c.names = append(c.names, d.Name)
	for _, t := range d.Terms {
		c.df[t]++
	}
}

// Len returns the number of documents.
func (c *Corpus) Len() int { return len(c.docs) }

// Names returns the document names in lexicographic order.
func (c *Corpus) Names() []string { return append([]string(nil), c.names...) }

// Document returns the named document.
func (c *Corpus) Document(name string) (*Document, bool) {
	d, ok := c.docs[name]
	return d, ok
}

// DocumentFrequency returns how many documents contain term.
func (c *Corpus) DocumentFrequency(term string) int { return c.df[term] }

// IDF returns ln(N / (1 + df)) for term. The add-one smoothing makes the
// value negative for terms present in every document, and for every term
// of a single-document corpus. An empty corpus yields 0.
func (c *Corpus) IDF(term string) float64 {
	n := len(c.docs)
	if n == 0 {
		return 0
	}
	if v, ok := c.idf[term]; ok {
		return v
	}
	return idf(n, c.df[term])
}

func idf(n, df int) float64 {
	return math.Log(float64(n) / (1 + float64(df)))
}

// Weigh fills every document's Weight with TF * IDF. TF is left untouched.
// Only the first call has an effect.
func (c *Corpus) Weigh() {
	if c.weighted {
		return
	}
	n := len(c.docs)
	c.idf = make(map[string]float64, len(c.df))
	for term, df := range c.df {
		c.idf[term] = idf(n, df)
	}
	for _, name := range c.names {
		d := c.docs[name]
		if len(d.Weight) != len(d.TF) {
			d.Weight = make([]float64, len(d.TF))
		}
		for i, term := range d.Terms {
			d.Weight[i] = d.TF[i] * c.idf[term]
		}
	}
	c.weighted = true
}

// Weighted reports whether Weigh has run.
func (c *Corpus) Weighted() bool { return c.weighted }

// Pairs scores every unordered pair of distinct documents, in lexicographic
// order of (A, B). The corpus is weighed first if needed.
func (c *Corpus) Pairs() []domain.Pair {
	c.Weigh()
	n := len(c.names)
	if n < 2 {
		return []domain.Pair{}
	}
	pairs := make([]domain.Pair, 0, n*(n-1)/2)
	for i := 0; i < n-1; i++ {
		a := c.docs[c.names[i]]
		for j := i + 1; j < n; j++ {
			b := c.docs[c.names[j]]
			pairs = append(pairs, domain.Pair{Score: Similarity(a, b), A: a.Name, B: b.Name})
		}
	}
	return pairs
}

// Analyze runs the whole pipeline over group texts and returns the pair
// scores together with the weighed corpus.
func Analyze(groups map[string]string, tok domain.Tokenizer) ([]domain.Pair, *Corpus) {
	c := NewCorpus(groups, tok)
	c.Weigh()
	return c.Pairs(), c
}
