// Package resultstore holds pair scores produced by a scan and serves
// ranked lookups over them.
package resultstore

import (
	"errors"
	"sort"

	"simscan/internal/domain"
)

var (
	// ErrNotInitialized is returned when a store is used before Init.
	ErrNotInitialized = errors.New("result store not initialized")
	// ErrLocked is returned when another process holds the store lock.
	ErrLocked = errors.New("result store locked by another scan")
)

// Storage persists pair scores of one run.
type Storage = domain.PairStore

// SortDesc orders pairs by descending score, then by A, then by B.
func SortDesc(pairs []domain.Pair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Score != pairs[j].Score {
			return pairs[i].Score > pairs[j].Score
		}
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
}

// Limit truncates pairs to k entries. k <= 0 keeps everything.
func Limit(pairs []domain.Pair, k int) []domain.Pair {
	if k > 0 && k < len(pairs) {
		return pairs[:k]
	}
	return pairs
}
