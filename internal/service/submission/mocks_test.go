package submission

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/Domenick1991/civicbook/internal/domain"
	"github.com/Domenick1991/civicbook/internal/logger"
	"github.com/Domenick1991/civicbook/internal/pricing"
	"github.com/Domenick1991/civicbook/internal/refcode"
	"github.com/Domenick1991/civicbook/internal/validation"
	"github.com/Domenick1991/civicbook/internal/workflow"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context, key string) ([]domain.Record, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, key string, records []domain.Record) error {
	args := m.Called(ctx, key, records)
	return args.Error(0)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockLocker) ReleaseLock(ctx context.Context, key, token string) error {
	args := m.Called(ctx, key, token)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value any) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type staticResources map[string]domain.Resource

func (r staticResources) Resource(id string) (domain.Resource, bool) {
	res, ok := r[id]
	return res, ok
}

const (
	keyPrefix   = "civic"
	eventsTopic = "civic.records"
	facilityKey = "civic:records:facility_booking"
	serviceKey  = "civic:records:service_request"
)

var fixedNow = time.Date(2025, 4, 20, 10, 30, 0, 0, time.UTC)

func testResources() staticResources {
	return staticResources{
		"t1": {
			ID: "t1", Name: "Sports hall", Kind: "fitness", Category: domain.CategoryFacilityBooking,
			Capacity: 60, Opens: "08:00", Closes: "22:00",
			Slots: []string{"09:00-12:00", "12:00-15:00"},
		},
		"pool": {
			ID: "pool", Name: "Indoor pool", Kind: "pool", Category: domain.CategoryFacilityBooking,
			Capacity: 5, WeekendCapacity: 2, Opens: "07:00", Closes: "21:00",
		},
		"interp-de": {
			ID: "interp-de", Name: "German interpreter", Category: domain.CategoryInterpreterBooking,
			Capacity: 3, Exclusive: true, Opens: "08:00", Closes: "18:00",
		},
	}
}

func testPolicy(t *testing.T) Policy {
	t.Helper()
	table, err := workflow.NewTable(map[domain.Category]workflow.Definition{
		domain.CategoryFacilityBooking: {
			States: []domain.Status{"Requested", "Confirmed"},
			Cancel: "Cancelled",
		},
		domain.CategoryInterpreterBooking: {
			States: []domain.Status{"Requested", "Confirmed"},
			Cancel: "Cancelled",
		},
		domain.CategoryServiceRequest: {
			States: []domain.Status{"Received", "UnderReview", "InProgress", "Completed"},
		},
		domain.CategoryPermitApplication: {
			States: []domain.Status{"Submitted", "Approved"},
			Cancel: "Withdrawn",
		},
	})
	require.NoError(t, err)

	return Policy{
		Workflows: table,
		Tariffs: map[domain.Category]pricing.Tariff{
			domain.CategoryFacilityBooking: {
				Base: 150,
				Modifiers: []pricing.Modifier{
					pricing.WeekendSurcharge{Amount: 30},
					pricing.QuantityScale{Unit: pricing.UnitDuration},
					pricing.AddOn{Key: "lighting", Amount: 15},
				},
			},
			domain.CategoryPermitApplication: {
				Base: 4,
				Modifiers: []pricing.Modifier{
					pricing.QuantityScale{Unit: pricing.UnitArea},
					pricing.QuantityScale{Unit: pricing.UnitDuration},
					pricing.ZoneCoefficient{Coefficients: map[string]float64{"A": 1, "B": 0.8, "C": 0.6}},
				},
			},
		},
		Prefixes: map[domain.Category]string{
			domain.CategoryFacilityBooking:    "FAC",
			domain.CategoryInterpreterBooking: "INT",
			domain.CategoryServiceRequest:     "SRV",
			domain.CategoryPermitApplication:  "PRM",
		},
	}
}

func newTestService(t *testing.T, store Store, opts ...ServiceOption) *Service {
	t.Helper()
	var seed [32]byte
	copy(seed[:], t.Name())
	refs, err := refcode.NewGenerator(rand.NewChaCha8(seed), 0)
	require.NoError(t, err)

	v, err := validation.NewRequestValidator(logger.Discard())
	require.NoError(t, err)

	base := []ServiceOption{
		WithClock(func() time.Time { return fixedNow }),
		WithKeyPrefix(keyPrefix),
	}
	return NewService(store, testResources(), testPolicy(t), refs, v, logger.Discard(), append(base, opts...)...)
}

func contact() domain.Contact {
	return domain.Contact{Name: "Ana Ruiz", Email: "ana@example.org"}
}

func facilityInput(date string, persons int) Input {
	return Input{
		Category: domain.CategoryFacilityBooking,
		Contact:  contact(),
		Details: &domain.FacilityBooking{
			ResourceID: "t1",
			Date:       date,
			Slot:       "09:00-12:00",
			Persons:    persons,
			Duration:   2,
		},
	}
}

func occupied(size int, status domain.Status) domain.Record {
	return domain.Record{
		Category:   domain.CategoryFacilityBooking,
		Reference:  "FAC-OLD000",
		ResourceID: "t1",
		Date:       "2025-05-01",
		Slot:       "09:00-12:00",
		Size:       size,
		Status:     status,
	}
}
