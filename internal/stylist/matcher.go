package stylist

import (
	"log"
	"strings"

	"github.com/wearly/outfit-engine/internal/catalog"
	"github.com/wearly/outfit-engine/internal/common"
)

// Matcher decides whether a model-suggested name refers to an inventory
// item. Matchers run in precedence order; the first hit wins.
type Matcher interface {
	Name() string
	Match(suggested string, item catalog.Item) bool
}

// matchers in precedence order: exact name, substring either direction,
// subcategory. The ordering is part of the contract and is covered by tests.
var matchers = []Matcher{
	exactNameMatcher{},
	substringMatcher{},
	subcategoryMatcher{},
}

type exactNameMatcher struct{}

func (exactNameMatcher) Name() string { return "exact-name" }

func (exactNameMatcher) Match(suggested string, item catalog.Item) bool {
	return common.EqualFold(suggested, item.Name)
}

type substringMatcher struct{}

func (substringMatcher) Name() string { return "substring" }

func (substringMatcher) Match(suggested string, item catalog.Item) bool {
	return common.FoldContains(item.Name, suggested) || common.FoldContains(suggested, item.Name)
}

type subcategoryMatcher struct{}

func (subcategoryMatcher) Name() string { return "subcategory" }

func (subcategoryMatcher) Match(suggested string, item catalog.Item) bool {
	return item.Subcategory != "" && common.EqualFold(suggested, item.Subcategory)
}

// resolveOne maps a suggested name to an inventory item, trying each matcher
// across the whole inventory before moving to the next.
func resolveOne(suggested string, items []catalog.Item) (catalog.Item, bool) {
	for _, m := range matchers {
		for _, item := range items {
			if m.Match(suggested, item) {
				return item, true
			}
		}
	}
	return catalog.Item{}, false
}

// ResolveItems maps model-suggested names onto inventory records. Unmatched
// names are dropped with a log line, never an error. Items that resolve but
// are currently unavailable (laundered) are excluded even though the model
// selected them, and duplicates collapse to the first occurrence.
func ResolveItems(suggested []string, items []catalog.Item) []catalog.Item {
	var resolved []catalog.Item
	seen := make(map[string]struct{})

	for _, name := range suggested {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		item, ok := resolveOne(name, items)
		if !ok {
			log.Printf("stylist: suggested item %q not found in wardrobe; dropping", name)
			continue
		}
		if !item.Available {
			log.Printf("stylist: suggested item %q is in the laundry; dropping", name)
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}

		seen[item.ID] = struct{}{}
		resolved = append(resolved, item)
	}

	return resolved
}
