// Package langstat turns per-language byte counts into the percentage
// breakdown shown by the language usage chart.
package langstat

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Usage is one row of the language breakdown.
type Usage struct {
	Language   string  `json:"language"`
	Percentage float64 `json:"percentage"`
}

// Totals maps language to bytes, remembering first-seen order so that ties
// resolve the same way on every run.
type Totals = orderedmap.OrderedMap[string, int64]

func NewTotals() *Totals {
	return orderedmap.New[string, int64]()
}

// Add accumulates src into dst. Languages new to dst are appended in src's
// order.
func Add(dst, src *Totals) {
	if src == nil {
		return
	}
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		cur, _ := dst.Get(pair.Key)
		dst.Set(pair.Key, cur+pair.Value)
	}
}
