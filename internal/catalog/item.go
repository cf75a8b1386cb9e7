// Package catalog exposes the clothing inventory to the engine. The catalog
// itself (capture, editing, laundry state) is owned by the app layer; this
// core only ever reads it.
package catalog

import (
	"context"
)

// Formality levels as recorded by the clothing analyzer.
const (
	FormalityCasual      = "casual"
	FormalitySmartCasual = "smart-casual"
	FormalitySemiFormal  = "semi-formal"
	FormalityFormal      = "formal"
)

// Item is a single clothing record. Read-only to the engine; availability
// (laundry state) changes are made upstream and observed on the next read.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Color       string   `json:"color"`
	Material    string   `json:"material"`
	Formality   string   `json:"formality"`
	Seasons     []string `json:"seasons,omitempty"`
	Available   bool     `json:"available"`
}

// Catalog is the read interface the engine consumes. Implementations must
// exclude laundered (unavailable) items from ListAvailableItems.
type Catalog interface {
	ListAvailableItems(ctx context.Context) ([]Item, error)
}
