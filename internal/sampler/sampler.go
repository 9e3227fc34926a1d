// Package sampler buckets analyzed CMake files by complexity tier and
// draws an evenly strided sample from each tier.
package sampler

import (
	"sort"

	"github.com/wysaid/cmakepick/internal/metrics"
)

// Bucket describes one complexity tier. Bounds are inclusive; a zero
// MaxLines or MaxComplexity means unbounded above.
type Bucket struct {
	Name          string `mapstructure:"name" yaml:"name"`
	MinLines      int    `mapstructure:"min_lines" yaml:"min_lines"`
	MaxLines      int    `mapstructure:"max_lines" yaml:"max_lines"`
	MinComplexity int    `mapstructure:"min_complexity" yaml:"min_complexity"`
	MaxComplexity int    `mapstructure:"max_complexity" yaml:"max_complexity"`
	Target        int    `mapstructure:"target" yaml:"target"`
}

// DefaultBuckets are the three tiers the fixture corpus is drawn from.
// Bounds deliberately overlap at the edges (a 50-line file with
// complexity 20 fits both simple and medium); earlier buckets win
// because selection removes a file from later candidate pools.
func DefaultBuckets() []Bucket {
	return []Bucket{
		{Name: "simple", MaxLines: 50, MaxComplexity: 20, Target: 5},
		{Name: "medium", MinLines: 50, MaxLines: 200, MinComplexity: 20, MaxComplexity: 100, Target: 8},
		{Name: "complex", MinLines: 200, MinComplexity: 100, Target: 7},
	}
}

// DefaultCap is the total number of fixtures a selection may produce.
const DefaultCap = 20

// Contains reports whether a file's size and score fall inside the
// bucket's inclusive bounds.
func (b Bucket) Contains(m *metrics.FileMetrics) bool {
	if m.Lines < b.MinLines {
		return false
	}
	if b.MaxLines > 0 && m.Lines > b.MaxLines {
		return false
	}
	if m.Complexity < b.MinComplexity {
		return false
	}
	if b.MaxComplexity > 0 && m.Complexity > b.MaxComplexity {
		return false
	}
	return true
}

// Selection is one picked file together with the tier it was drawn from.
type Selection struct {
	*metrics.FileMetrics
	Bucket string
}

// SortByComplexity orders the analyzed set by complexity descending.
// The sort is stable with a path tie-break so repeated runs over the
// same tree pick identical files.
func SortByComplexity(analyzed []*metrics.FileMetrics) {
	sort.SliceStable(analyzed, func(i, j int) bool {
		if analyzed[i].Complexity != analyzed[j].Complexity {
			return analyzed[i].Complexity > analyzed[j].Complexity
		}
		return analyzed[i].Path < analyzed[j].Path
	})
}

// Select draws up to limit files across the buckets. Within a bucket the
// candidates are taken at a fixed stride over the complexity-sorted
// list, which spreads the picks across the tier instead of clustering
// at the high end. A bucket with fewer candidates than its target
// yields all of them.
func Select(analyzed []*metrics.FileMetrics, buckets []Bucket, limit int) []Selection {
	sorted := make([]*metrics.FileMetrics, len(analyzed))
	copy(sorted, analyzed)
	SortByComplexity(sorted)

	taken := make(map[*metrics.FileMetrics]bool)
	var selected []Selection

	for _, bucket := range buckets {
		if bucket.Target <= 0 {
			continue
		}
		var candidates []*metrics.FileMetrics
		for _, m := range sorted {
			if !taken[m] && bucket.Contains(m) {
				candidates = append(candidates, m)
			}
		}

		stride := len(candidates) / bucket.Target
		if stride < 1 {
			stride = 1
		}

		span := bucket.Target * stride
		if span > len(candidates) {
			span = len(candidates)
		}
		for i := 0; i < span; i += stride {
			if len(selected) >= limit {
				break
			}
			taken[candidates[i]] = true
			selected = append(selected, Selection{
				FileMetrics: candidates[i],
				Bucket:      bucket.Name,
			})
		}
	}

	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}
