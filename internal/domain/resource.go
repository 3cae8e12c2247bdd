package domain

import (
	"slices"
	"time"
)

// Resource is a bookable facility or service channel. Resources are static
// reference data loaded from configuration.
type Resource struct {
	ID       string
	Name     string
	Kind     string // fitness, pool, field, court, fleet, ...
	Category Category

	// Capacity is the per-slot ceiling in size units (persons, vehicles, ...).
	Capacity        int
	WeekendCapacity int
	// Exclusive resources admit one holder per slot regardless of Capacity.
	Exclusive bool

	Opens  string
	Closes string
	Slots  []string

	BaseRate float64
}

// CapacityOn resolves the effective per-slot capacity for a date.
func (r Resource) CapacityOn(date time.Time) int {
	if r.Exclusive {
		return 1
	}
	if r.WeekendCapacity > 0 && IsWeekend(date) {
		return r.WeekendCapacity
	}
	return r.Capacity
}

// AllowsSlot reports whether label is a bookable slot of the resource: one of
// the declared slots when any are declared, and inside the operating hours.
func (r Resource) AllowsSlot(label string) bool {
	if len(r.Slots) > 0 && !slices.Contains(r.Slots, label) {
		return false
	}
	slot, err := ParseSlot(label)
	if err != nil {
		return false
	}
	if r.Opens != "" {
		opens, err := ParseClock(r.Opens)
		if err != nil || slot.Start < opens {
			return false
		}
	}
	if r.Closes != "" {
		closes, err := ParseClock(r.Closes)
		if err != nil || slot.End > closes {
			return false
		}
	}
	return true
}

func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
