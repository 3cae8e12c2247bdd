package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Domenick1991/civicbook/internal/apperrors"
	"github.com/Domenick1991/civicbook/internal/domain"
	"github.com/Domenick1991/civicbook/internal/ledger"
	"github.com/Domenick1991/civicbook/internal/repository"
)

type CatalogUseCase interface {
	Resources(category domain.Category) []domain.Resource
	Availability(ctx context.Context, resourceID, date, slot string) (*Availability, error)
	DaySchedule(ctx context.Context, resourceID, date string) ([]Availability, error)
}

type Store interface {
	Load(ctx context.Context, key string) ([]domain.Record, error)
}

// Availability is the capacity report of one slot.
type Availability struct {
	Key       domain.SlotKey `json:"key"`
	Capacity  int            `json:"capacity"`
	Occupancy int            `json:"occupancy"`
	Remaining int            `json:"remaining"`
}

type CatalogService struct {
	registry  *Registry
	store     Store
	occupying ledger.Occupying
	keyPrefix string
}

func NewCatalogService(registry *Registry, store Store, occupying ledger.Occupying, keyPrefix string) *CatalogService {
	return &CatalogService{registry: registry, store: store, occupying: occupying, keyPrefix: keyPrefix}
}

func (s *CatalogService) Resources(category domain.Category) []domain.Resource {
	return s.registry.List(category)
}

func (s *CatalogService) Availability(ctx context.Context, resourceID, date, slot string) (*Availability, error) {
	res, day, records, err := s.load(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}
	if !res.AllowsSlot(slot) {
		return nil, apperrors.Validation(fmt.Sprintf("slot %s is not offered by %s", slot, res.ID), nil)
	}
	a := s.report(domain.SlotKey{ResourceID: res.ID, Date: date, Slot: slot}, res.CapacityOn(day), records)
	return &a, nil
}

// DaySchedule reports every declared slot of the resource plus any other
// slot that already holds bookings on date.
func (s *CatalogService) DaySchedule(ctx context.Context, resourceID, date string) ([]Availability, error) {
	res, day, records, err := s.load(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}

	labels := make(map[string]bool, len(res.Slots))
	for _, l := range res.Slots {
		labels[l] = true
	}
	for key := range ledger.Summarize(records, s.occupying) {
		if key.ResourceID == res.ID && key.Date == date {
			labels[key.Slot] = true
		}
	}

	ordered := make([]string, 0, len(labels))
	for l := range labels {
		ordered = append(ordered, l)
	}
	sort.Strings(ordered)

	capacity := res.CapacityOn(day)
	out := make([]Availability, 0, len(ordered))
	for _, l := range ordered {
		out = append(out, s.report(domain.SlotKey{ResourceID: res.ID, Date: date, Slot: l}, capacity, records))
	}
	return out, nil
}

func (s *CatalogService) load(ctx context.Context, resourceID, date string) (domain.Resource, time.Time, []domain.Record, error) {
	res, ok := s.registry.Resource(resourceID)
	if !ok {
		return domain.Resource{}, time.Time{}, nil, apperrors.NotFoundWithID("resource", resourceID)
	}
	day, err := domain.ParseDate(date)
	if err != nil {
		return domain.Resource{}, time.Time{}, nil, apperrors.Validation(err.Error(), nil)
	}
	records, err := s.store.Load(ctx, repository.Key(s.keyPrefix, res.Category))
	if err != nil {
		return domain.Resource{}, time.Time{}, nil, apperrors.Internal("failed to load records", err)
	}
	return res, day, records, nil
}

func (s *CatalogService) report(key domain.SlotKey, capacity int, records []domain.Record) Availability {
	occ := ledger.Occupancy(records, key, s.occupying)
	return Availability{
		Key:       key,
		Capacity:  capacity,
		Occupancy: occ,
		Remaining: max(0, capacity-occ),
	}
}

var _ CatalogUseCase = (*CatalogService)(nil)
