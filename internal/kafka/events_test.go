package kafka

import (
	"testing"
	"time"

	"github.com/Domenick1991/civicbook/internal/domain"
	"github.com/Domenick1991/civicbook/internal/logger"
	"github.com/Domenick1991/civicbook/internal/pricing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordEvent(t *testing.T) {
	at := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	r := domain.Record{
		ID:         uuid.MustParse("6f1c8a52-6b1e-4cf4-9a4e-0d7f3a5b2c11"),
		Reference:  "TAX-Q9ZK2M",
		Category:   domain.CategoryTaxiBooking,
		UpdatedAt:  at,
		ResourceID: "fleet-north",
		Date:       "2025-05-01",
		Slot:       "10:00-11:00",
		Size:       1,
		Status:     "Confirmed",
		Price:      &pricing.Quote{Total: 42},
		Contact:    domain.Contact{Name: "Ana Ruiz", Phone: "+34600111222"},
	}

	e := NewRecordEvent(EventRecordAdvanced, r, "Requested")

	assert.Equal(t, EventRecordAdvanced, e.Type)
	assert.Equal(t, "6f1c8a52-6b1e-4cf4-9a4e-0d7f3a5b2c11", e.RecordID)
	assert.Equal(t, domain.Status("Requested"), e.PreviousStatus)
	assert.Equal(t, at, e.OccurredAt)
	require.NotNil(t, e.Total)
	assert.Equal(t, int64(42), *e.Total)

	r.Price.Total = 99
	assert.Equal(t, int64(42), *e.Total, "event must not alias the record quote")
}

func TestDecodeRecordEvent(t *testing.T) {
	e, err := DecodeRecordEvent([]byte(`{"type":"record_submitted","reference":"SRV-ABCDE","category":"service_request","status":"Received"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryServiceRequest, e.Category)
	assert.Nil(t, e.Total)

	_, err = DecodeRecordEvent([]byte(`{"type":"record_submitted"}`))
	assert.Error(t, err)

	_, err = DecodeRecordEvent([]byte(`garbage`))
	assert.Error(t, err)
}

func TestNewProducer(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, logger.Discard())
	assert.NotNil(t, p.writer)
	assert.NoError(t, p.Close())
}
