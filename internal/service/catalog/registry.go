package catalog

import (
	"fmt"
	"slices"
	"sort"

	"github.com/Domenick1991/civicbook/internal/domain"
)

// Registry is the static resource table. It is read-only after construction.
type Registry struct {
	byID map[string]domain.Resource
	ids  []string
}

// NewRegistry validates resources: unique IDs, reservable categories,
// positive capacity and parseable hours and slots.
func NewRegistry(resources []domain.Resource) (*Registry, error) {
	r := &Registry{byID: make(map[string]domain.Resource, len(resources))}
	for _, res := range resources {
		if err := validateResource(res); err != nil {
			return nil, err
		}
		if _, dup := r.byID[res.ID]; dup {
			return nil, fmt.Errorf("resource %s: duplicate id", res.ID)
		}
		res.Slots = slices.Clone(res.Slots)
		r.byID[res.ID] = res
		r.ids = append(r.ids, res.ID)
	}
	sort.Strings(r.ids)
	return r, nil
}

func validateResource(res domain.Resource) error {
	if res.ID == "" {
		return fmt.Errorf("resource without id")
	}
	if !res.Category.IsReservable() {
		return fmt.Errorf("resource %s: category %q does not take reservations", res.ID, res.Category)
	}
	if res.Capacity <= 0 && !res.Exclusive {
		return fmt.Errorf("resource %s: capacity must be positive", res.ID)
	}
	if res.WeekendCapacity < 0 {
		return fmt.Errorf("resource %s: weekend capacity must not be negative", res.ID)
	}
	if res.BaseRate < 0 {
		return fmt.Errorf("resource %s: base rate must not be negative", res.ID)
	}
	var opens, closes int
	var err error
	if res.Opens != "" {
		if opens, err = domain.ParseClock(res.Opens); err != nil {
			return fmt.Errorf("resource %s: opens: %w", res.ID, err)
		}
	}
	if res.Closes != "" {
		if closes, err = domain.ParseClock(res.Closes); err != nil {
			return fmt.Errorf("resource %s: closes: %w", res.ID, err)
		}
		if closes <= opens {
			return fmt.Errorf("resource %s: closes before it opens", res.ID)
		}
	}
	for _, label := range res.Slots {
		if !res.AllowsSlot(label) {
			return fmt.Errorf("resource %s: slot %q is malformed or outside operating hours", res.ID, label)
		}
	}
	return nil
}

func (r *Registry) Resource(id string) (domain.Resource, bool) {
	res, ok := r.byID[id]
	return res, ok
}

// List returns the resources sorted by ID, optionally filtered by category.
func (r *Registry) List(category domain.Category) []domain.Resource {
	out := make([]domain.Resource, 0, len(r.ids))
	for _, id := range r.ids {
		res := r.byID[id]
		if category != "" && res.Category != category {
			continue
		}
		out = append(out, res)
	}
	return out
}
