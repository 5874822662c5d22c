package report

import (
	"sort"

	"github.com/shopspring/decimal"
)

// UnassignedKey replaces empty grouping keys
const UnassignedKey = "unassigned"

// KeyCount is one entry of a ranked breakdown
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// CountBy groups items by key and counts them. The result is never nil and its
// counts always sum to len(items).
func CountBy[T any](items []T, key func(T) string) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		counts[normalizeKey(key(item))]++
	}
	return counts
}

// SumBy groups items by key and sums their amounts
func SumBy[T any](items []T, key func(T) string, amount func(T) decimal.Decimal) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, item := range items {
		k := normalizeKey(key(item))
		sums[k] = sums[k].Add(amount(item))
	}
	return sums
}

// Filter returns the items accepted by keep, in input order
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Ranked orders a count map by count desc, key asc, truncated to limit (0 = all)
func Ranked(counts map[string]int, limit int) []KeyCount {
	ranked := make([]KeyCount, 0, len(counts))
	for k, c := range counts {
		ranked = append(ranked, KeyCount{Key: k, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Key < ranked[j].Key
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func normalizeKey(k string) string {
	if k == "" {
		return UnassignedKey
	}
	return k
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
