package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Memory is an in-memory Catalog used by tests and by deployments that load
// the wardrobe from a JSON export of the app's item database.
type Memory struct {
	mu    sync.RWMutex
	items []Item
}

// NewMemory builds a catalog holding the given items.
func NewMemory(items ...Item) *Memory {
	return &Memory{items: items}
}

// LoadFile reads a JSON array of items from path.
func LoadFile(path string) (*Memory, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var items []Item
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return NewMemory(items...), nil
}

// ListAvailableItems returns all items not currently laundered.
func (m *Memory) ListAvailableItems(_ context.Context) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Item, 0, len(m.items))
	for _, item := range m.items {
		if item.Available {
			out = append(out, item)
		}
	}
	return out, nil
}

// Put adds or replaces an item by ID.
func (m *Memory) Put(item Item) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.items {
		if existing.ID == item.ID {
			m.items[i] = item
			return
		}
	}
	m.items = append(m.items, item)
}

// SetAvailable flips the laundry flag for an item, mirroring what the app's
// laundry screen does.
func (m *Memory) SetAvailable(id string, available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Available = available
			return
		}
	}
}

var _ Catalog = (*Memory)(nil)
