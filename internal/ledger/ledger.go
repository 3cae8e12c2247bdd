// Package ledger computes slot occupancy over a record snapshot and decides
// whether a new reservation fits. It holds no state; callers own the records
// and must serialize check-and-append themselves.
package ledger

import (
	"errors"
	"fmt"

	"github.com/Domenick1991/civicbook/internal/domain"
)

var (
	ErrInvalidSize     = errors.New("requested size must be positive")
	ErrInvalidCapacity = errors.New("capacity must not be negative")
)

// Occupying reports whether a record still holds its slot.
type Occupying func(domain.Record) bool

// Decision is the outcome of TryReserve.
type Decision struct {
	Accepted  bool `json:"accepted"`
	Capacity  int  `json:"capacity"`
	Occupancy int  `json:"occupancy"`
	Requested int  `json:"requested"`
	// Remaining is capacity minus occupancy before the request, floored at 0.
	Remaining int `json:"remaining"`
}

// Occupancy sums Size over occupying records matching key.
func Occupancy(records []domain.Record, key domain.SlotKey, occupying Occupying) int {
	total := 0
	for _, r := range records {
		if r.SlotKey() != key {
			continue
		}
		if occupying != nil && !occupying(r) {
			continue
		}
		if r.Size > 0 {
			total += r.Size
		}
	}
	return total
}

// TryReserve accepts requested units when occupancy+requested <= capacity.
func TryReserve(records []domain.Record, key domain.SlotKey, requested, capacity int, occupying Occupying) (Decision, error) {
	if requested <= 0 {
		return Decision{}, fmt.Errorf("%w: %d", ErrInvalidSize, requested)
	}
	if capacity < 0 {
		return Decision{}, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	occ := Occupancy(records, key, occupying)
	d := Decision{
		Capacity:  capacity,
		Occupancy: occ,
		Requested: requested,
		Remaining: max(0, capacity-occ),
	}
	d.Accepted = occ+requested <= capacity
	return d, nil
}

// Summarize groups occupancy by slot key.
func Summarize(records []domain.Record, occupying Occupying) map[domain.SlotKey]int {
	out := make(map[domain.SlotKey]int)
	for _, r := range records {
		if r.ResourceID == "" {
			continue
		}
		if occupying != nil && !occupying(r) {
			continue
		}
		out[r.SlotKey()] += max(0, r.Size)
	}
	return out
}
