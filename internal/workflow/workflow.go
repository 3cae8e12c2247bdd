// Package workflow moves records through a fixed, per-category sequence of
// states. Advancement is one step at a time, never backwards, and a no-op at
// the terminal state. Cancellation jumps to an optional cancel state.
package workflow

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Domenick1991/civicbook/internal/domain"
)

var (
	ErrUndefined         = errors.New("no workflow defined for category")
	ErrEmptySequence     = errors.New("workflow has no states")
	ErrDuplicateState    = errors.New("workflow state listed twice")
	ErrUnknownState      = errors.New("status is not part of the workflow")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Definition is the ordered state list of one category.
type Definition struct {
	States []domain.Status
	// Cancel is an alternate terminal state reachable only through Cancel.
	Cancel domain.Status
}

func (d Definition) Initial() domain.Status  { return d.States[0] }
func (d Definition) Terminal() domain.Status { return d.States[len(d.States)-1] }

// IsTerminal reports whether no further transition leaves s.
func (d Definition) IsTerminal(s domain.Status) bool {
	return s == d.Terminal() || (d.Cancel != "" && s == d.Cancel)
}

func (d Definition) validate() error {
	if len(d.States) == 0 {
		return ErrEmptySequence
	}
	seen := make(map[domain.Status]bool, len(d.States))
	for _, s := range d.States {
		if s == "" {
			return fmt.Errorf("%w: empty state name", ErrEmptySequence)
		}
		if seen[s] {
			return fmt.Errorf("%w: %s", ErrDuplicateState, s)
		}
		seen[s] = true
	}
	if d.Cancel != "" && seen[d.Cancel] {
		return fmt.Errorf("%w: cancel state %s is also in the sequence", ErrDuplicateState, d.Cancel)
	}
	return nil
}

func (d Definition) known(s domain.Status) bool {
	return slices.Contains(d.States, s) || (d.Cancel != "" && s == d.Cancel)
}

// Table maps categories to their definitions. It is immutable once built.
type Table struct {
	defs map[domain.Category]Definition
}

// NewTable validates every definition; any failure is a configuration error.
func NewTable(defs map[domain.Category]Definition) (*Table, error) {
	t := &Table{defs: make(map[domain.Category]Definition, len(defs))}
	for c, d := range defs {
		if !c.Valid() {
			return nil, fmt.Errorf("workflow for unknown category %q", c)
		}
		if err := d.validate(); err != nil {
			return nil, fmt.Errorf("workflow %s: %w", c, err)
		}
		t.defs[c] = Definition{States: slices.Clone(d.States), Cancel: d.Cancel}
	}
	return t, nil
}

func (t *Table) Definition(c domain.Category) (Definition, error) {
	d, ok := t.defs[c]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUndefined, c)
	}
	return d, nil
}

func (t *Table) Has(c domain.Category) bool {
	_, ok := t.defs[c]
	return ok
}

func (t *Table) Initial(c domain.Category) (domain.Status, error) {
	d, err := t.Definition(c)
	if err != nil {
		return "", err
	}
	return d.Initial(), nil
}

// Advance returns r moved to the next state. A terminal record is returned
// unchanged.
func (t *Table) Advance(r domain.Record) (domain.Record, error) {
	d, err := t.Definition(r.Category)
	if err != nil {
		return r, err
	}
	if !d.known(r.Status) {
		return r, fmt.Errorf("%w: %s in %s", ErrUnknownState, r.Status, r.Category)
	}
	if d.IsTerminal(r.Status) {
		return r, nil
	}
	i := slices.Index(d.States, r.Status)
	r.Status = d.States[i+1]
	return r, nil
}

// Cancel moves a non-terminal record to the cancel state of its category.
func (t *Table) Cancel(r domain.Record) (domain.Record, error) {
	d, err := t.Definition(r.Category)
	if err != nil {
		return r, err
	}
	if !d.known(r.Status) {
		return r, fmt.Errorf("%w: %s in %s", ErrUnknownState, r.Status, r.Category)
	}
	if d.Cancel == "" {
		return r, fmt.Errorf("%w: %s has no cancellation state", ErrInvalidTransition, r.Category)
	}
	if d.IsTerminal(r.Status) {
		return r, fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, r.Status)
	}
	r.Status = d.Cancel
	return r, nil
}

// IsTerminal reports whether r can no longer change state.
func (t *Table) IsTerminal(r domain.Record) bool {
	d, ok := t.defs[r.Category]
	return ok && d.IsTerminal(r.Status)
}

// Occupying reports whether r still holds slot capacity. Only the
// cancellation state releases capacity.
func (t *Table) Occupying(r domain.Record) bool {
	d, ok := t.defs[r.Category]
	if !ok {
		return true
	}
	return d.Cancel == "" || r.Status != d.Cancel
}
