package submission

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Domenick1991/civicbook/internal/apperrors"
	"github.com/Domenick1991/civicbook/internal/domain"
	"github.com/Domenick1991/civicbook/internal/kafka"
	"github.com/Domenick1991/civicbook/internal/ledger"
	"github.com/Domenick1991/civicbook/internal/pricing"
	"github.com/Domenick1991/civicbook/internal/repository"
	"github.com/Domenick1991/civicbook/internal/validation"
)

// prepared is a validated request with everything resolved except occupancy.
type prepared struct {
	input    Input
	resource *domain.Resource
	slot     domain.SlotKey
	size     int
	capacity int
	quote    *pricing.Quote
}

// Submit validates input, checks capacity, quotes and appends a new record.
// The capacity check and the append happen under one lock on the list.
func (s *Service) Submit(ctx context.Context, input Input) (*domain.Record, error) {
	p, err := s.prepare(input)
	if err != nil {
		return nil, err
	}

	initial, err := s.policy.Workflows.Initial(input.Category)
	if err != nil {
		return nil, apperrors.Configuration("no workflow defined for category", err)
	}
	prefix, ok := s.policy.Prefixes[input.Category]
	if !ok {
		return nil, apperrors.Configuration(fmt.Sprintf("no reference prefix for %s", input.Category), nil)
	}

	key := repository.Key(s.keyPrefix, input.Category)
	var created domain.Record

	err = s.withLock(ctx, key, func(held lease) error {
		records, err := s.store.Load(ctx, key)
		if err != nil {
			return apperrors.Internal("failed to load records", err)
		}

		if p.resource != nil {
			decision, err := ledger.TryReserve(records, p.slot, p.size, p.capacity, s.policy.Workflows.Occupying)
			if err != nil {
				return apperrors.Validation(err.Error(), nil)
			}
			if !decision.Accepted {
				s.log.Warn("Capacity exceeded",
					"category", input.Category,
					"slot", p.slot.String(),
					"requested", p.size,
					"remaining", decision.Remaining,
				)
				return apperrors.Capacity(decision.Remaining, p.size)
			}
		}

		record, err := s.newRecord(p, prefix, initial)
		if err != nil {
			return err
		}

		records = append(records, record)
		records = trimHistory(records, s.historyLimit, s.holdsNothing)
		if err := held.valid(); err != nil {
			s.log.Warn("Lock expired before save", "key", key, "category", input.Category)
			return err
		}
		if err := s.store.Save(ctx, key, records); err != nil {
			return apperrors.Internal("failed to save records", err)
		}
		created = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Record submitted",
		"id", created.ID,
		"reference", created.Reference,
		"category", created.Category,
		"slot", created.SlotKey().String(),
		"size", created.Size,
	)
	s.publish(ctx, kafka.EventRecordSubmitted, created, "")
	return &created, nil
}

// Quote prices input without submitting it.
func (s *Service) Quote(_ context.Context, input Input) (*pricing.Quote, error) {
	if !input.Category.IsBillable() {
		return nil, apperrors.Validation(fmt.Sprintf("%s requests carry no price", input.Category), nil)
	}
	p, err := s.prepare(input)
	if err != nil {
		return nil, err
	}
	return p.quote, nil
}

func (s *Service) prepare(input Input) (prepared, error) {
	if !input.Category.Valid() {
		return prepared{}, apperrors.Validation(fmt.Sprintf("unknown category: %s", input.Category), nil)
	}
	if !s.policy.Workflows.Has(input.Category) {
		return prepared{}, apperrors.Validation(fmt.Sprintf("%s requests are not accepted", input.Category), nil)
	}
	if input.Details != nil && input.Details.Category() != input.Category {
		return prepared{}, apperrors.Validation(
			fmt.Sprintf("details of %s do not match category %s", input.Details.Category(), input.Category), nil)
	}
	input.Contact = input.Contact.Normalize()
	if err := s.validate(input); err != nil {
		s.log.Warn("Submission rejected", "category", input.Category, "error", err)
		return prepared{}, err
	}

	p := prepared{input: input, size: 1}

	if r, ok := input.Details.(domain.Reservable); ok {
		if err := s.resolveSlot(&p, r); err != nil {
			s.log.Warn("Submission rejected", "category", input.Category, "error", err)
			return prepared{}, err
		}
	}

	if b, ok := input.Details.(domain.Billable); ok {
		quote, err := s.price(input.Category, b, p.resource)
		if err != nil {
			return prepared{}, err
		}
		p.quote = quote
	}
	return p, nil
}

func (s *Service) validate(input Input) error {
	fields := map[string]string{}
	if err := s.validator.Contact(input.Contact); err != nil {
		if !collect(fields, "contact.", err) {
			return apperrors.Internal("failed to validate contact", err)
		}
	}
	if err := s.validator.Details(input.Details); err != nil {
		if !collect(fields, "details.", err) {
			return apperrors.Internal("failed to validate details", err)
		}
	}
	if len(fields) > 0 {
		return apperrors.Validation("invalid request", map[string]any{"fields": fields})
	}
	return nil
}

func collect(fields map[string]string, prefix string, err error) bool {
	var verrs validation.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for field, msg := range verrs.Fields() {
		fields[prefix+field] = msg
	}
	return true
}

func (s *Service) resolveSlot(p *prepared, r domain.Reservable) error {
	key := r.SlotKey()
	resource, ok := s.resources.Resource(key.ResourceID)
	if !ok {
		return apperrors.Validation(fmt.Sprintf("unknown resource: %s", key.ResourceID),
			map[string]any{"fields": map[string]string{"details.resource_id": "resource does not exist"}})
	}
	if resource.Category != p.input.Category {
		return apperrors.Validation(fmt.Sprintf("resource %s does not accept %s requests", resource.ID, p.input.Category), nil)
	}
	if !resource.AllowsSlot(key.Slot) {
		return apperrors.Validation(fmt.Sprintf("slot %s is not offered by %s", key.Slot, resource.ID),
			map[string]any{"fields": map[string]string{"details.slot": "slot is not offered"}})
	}
	date, err := domain.ParseDate(key.Date)
	if err != nil {
		return apperrors.Validation(err.Error(), nil)
	}
	size := r.Size()
	if size <= 0 {
		return apperrors.Validation("size must be positive", nil)
	}
	if resource.Exclusive && size != 1 {
		return apperrors.Validation(fmt.Sprintf("%s admits a single holder per slot", resource.ID), nil)
	}

	p.resource = &resource
	p.slot = key
	p.size = size
	p.capacity = resource.CapacityOn(date)
	return nil
}

func (s *Service) price(category domain.Category, b domain.Billable, resource *domain.Resource) (*pricing.Quote, error) {
	tariff, ok := s.policy.Tariffs[category]
	if !ok {
		return nil, apperrors.Configuration(fmt.Sprintf("no tariff for %s", category), nil)
	}
	ctx, err := b.PriceContext()
	if err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}
	rate := 0.0
	if resource != nil {
		rate = resource.BaseRate
	}
	quote, err := tariff.Quote(rate, ctx)
	if err != nil {
		s.log.Error("Tariff misconfigured",
			"category", category,
			"subtotal", quote.Subtotal,
			"error", err,
		)
		return nil, apperrors.Configuration("price could not be computed", err)
	}
	return &quote, nil
}

func (s *Service) newRecord(p prepared, prefix string, status domain.Status) (domain.Record, error) {
	id, err := s.refs.NewID()
	if err != nil {
		return domain.Record{}, apperrors.Internal("failed to generate record id", err)
	}
	reference, err := s.refs.Generate(prefix)
	if err != nil {
		return domain.Record{}, apperrors.Internal("failed to generate reference", err)
	}
	now := s.now().UTC()
	record := domain.Record{
		ID:        id,
		Reference: reference,
		Category:  p.input.Category,
		CreatedAt: now,
		UpdatedAt: now,
		Size:      p.size,
		Status:    status,
		Price:     p.quote,
		Contact:   p.input.Contact,
		Details:   p.input.Details,
	}
	if p.resource != nil {
		record.ResourceID = p.slot.ResourceID
		record.Date = p.slot.Date
		record.Slot = p.slot.Slot
	}
	return record, nil
}

// trimHistory drops the oldest records for which expendable holds until
// len(records) <= limit. Other records are always kept, so the list may stay
// above limit.
func trimHistory(records []domain.Record, limit int, expendable func(domain.Record) bool) []domain.Record {
	excess := len(records) - limit
	if limit <= 0 || excess <= 0 {
		return records
	}
	return slices.DeleteFunc(records, func(r domain.Record) bool {
		if excess > 0 && expendable(r) {
			excess--
			return true
		}
		return false
	})
}

// holdsNothing reports whether r can leave the list without changing any
// slot's occupancy: it was cancelled, or it is finished and never held a slot.
// A terminal booking that still occupies its slot is kept.
func (s *Service) holdsNothing(r domain.Record) bool {
	if !s.policy.Workflows.Occupying(r) {
		return true
	}
	return r.ResourceID == "" && s.policy.Workflows.IsTerminal(r)
}
