// Package pricing computes deterministic prices from a base rate and an ordered
// set of independent modifiers.
//
// Evaluation order is fixed: multiplicative modifiers in declaration order,
// then additive modifiers in declaration order, then rounding to whole
// currency units.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrNegativeTotal = errors.New("computed price is negative")
	ErrNonFinite     = errors.New("modifier produced a non-finite value")
	ErrInvalidBase   = errors.New("base rate must be a finite non-negative number")
)

// Kind tells how a modifier combines with the running total.
type Kind string

const (
	Multiplicative Kind = "multiplicative"
	Additive       Kind = "additive"
)

// Unit names a metered quantity used by linear scaling rules.
type Unit string

const (
	UnitArea     Unit = "area"
	UnitDuration Unit = "duration"
	UnitCount    Unit = "count"
)

// Context carries every input a modifier may look at. Modifiers must not read
// anything else, so equal contexts always price the same.
type Context struct {
	Date time.Time
	// StartMinute is minutes after midnight, or -1 when the request has no start time.
	StartMinute int
	Quantities  map[Unit]float64
	Zone        string
	AddOns      []string
}

// Modifier is one named pricing rule.
type Modifier interface {
	Name() string
	Kind() Kind
	// Value returns a factor for multiplicative rules or a delta for additive
	// rules, and false when the rule does not apply to ctx.
	Value(ctx Context) (float64, bool)
}

// Line is one applied modifier in a price breakdown.
type Line struct {
	Name  string  `json:"name"`
	Kind  Kind    `json:"kind"`
	Value float64 `json:"value"`
	// Amount is how much the rule changed the running total.
	Amount float64 `json:"amount"`
}

// Quote is a price breakdown: base, itemized modifiers and the rounded total.
type Quote struct {
	Base     float64 `json:"base"`
	Lines    []Line  `json:"lines"`
	Subtotal float64 `json:"subtotal"`
	Total    int64   `json:"total"`
	// Clamped is set when a misconfigured rule pushed the total below zero.
	Clamped bool `json:"clamped,omitempty"`
}

// Evaluate prices ctx. A negative result is clamped to zero and returned
// together with ErrNegativeTotal; callers must treat that as a setup defect.
func Evaluate(base float64, modifiers []Modifier, ctx Context) (Quote, error) {
	if math.IsNaN(base) || math.IsInf(base, 0) || base < 0 {
		return Quote{}, fmt.Errorf("%w: %v", ErrInvalidBase, base)
	}

	q := Quote{Base: base, Lines: []Line{}}
	running := base

	for _, kind := range []Kind{Multiplicative, Additive} {
		for _, m := range modifiers {
			if m.Kind() != kind {
				continue
			}
			v, ok := m.Value(ctx)
			if !ok {
				continue
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Quote{}, fmt.Errorf("%w: %s", ErrNonFinite, m.Name())
			}
			before := running
			if kind == Multiplicative {
				running *= v
			} else {
				running += v
			}
			q.Lines = append(q.Lines, Line{Name: m.Name(), Kind: kind, Value: v, Amount: running - before})
		}
	}

	q.Subtotal = running
	if running < 0 {
		q.Clamped = true
		q.Total = 0
		return q, fmt.Errorf("%w: %.2f", ErrNegativeTotal, running)
	}
	q.Total = int64(math.Round(running))
	return q, nil
}

// Tariff is the configured base and modifier set of one category.
type Tariff struct {
	Base      float64
	Modifiers []Modifier
}

// Quote evaluates the tariff. A positive rate overrides the tariff base, which
// is how per-resource rates are applied.
func (t Tariff) Quote(rate float64, ctx Context) (Quote, error) {
	base := t.Base
	if rate > 0 {
		base = rate
	}
	return Evaluate(base, t.Modifiers, ctx)
}
