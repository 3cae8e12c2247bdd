package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_JSONKeepsVariant(t *testing.T) {
	original := Record{
		ID:         uuid.MustParse("2b1c5f0e-8f5d-4d55-9c3a-0d6f3f2a9a11"),
		Reference:  "FAC-AB12C",
		Category:   CategoryFacilityBooking,
		CreatedAt:  time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
		ResourceID: "t1",
		Date:       "2025-05-01",
		Slot:       "09:00-12:00",
		Size:       4,
		Status:     "Requested",
		Contact:    Contact{Name: "Ana Ruiz", Email: "ana@example.org"},
		Details: &FacilityBooking{
			ResourceID: "t1",
			Date:       "2025-05-01",
			Slot:       "09:00-12:00",
			Persons:    4,
			AddOns:     []string{"lighting"},
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Record
	require.NoError(t, json.Unmarshal(data, &decoded))

	details, ok := decoded.Details.(*FacilityBooking)
	require.True(t, ok, "expected *FacilityBooking, got %T", decoded.Details)
	assert.Equal(t, 4, details.Persons)
	assert.Equal(t, []string{"lighting"}, details.AddOns)
	assert.Equal(t, original.Reference, decoded.Reference)
	assert.Equal(t, original.SlotKey(), decoded.SlotKey())
}

func TestRecord_UnmarshalUnknownCategory(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"category":"parking","details":{}}`), &r)
	assert.Error(t, err)
}

func TestCategory_Traits(t *testing.T) {
	assert.True(t, CategoryFacilityBooking.IsReservable())
	assert.True(t, CategoryFacilityBooking.IsBillable())
	assert.True(t, CategoryInterpreterBooking.IsReservable())
	assert.False(t, CategoryInterpreterBooking.IsBillable())
	assert.False(t, CategoryServiceRequest.IsReservable())
	assert.True(t, CategoryPermitApplication.IsBillable())
	assert.False(t, CategoryPermitApplication.IsReservable())
}

func TestParseSlot(t *testing.T) {
	tests := []struct {
		label   string
		want    SlotRange
		wantErr bool
	}{
		{label: "09:00-12:00", want: SlotRange{Start: 540, End: 720}},
		{label: "18:30-24:00", want: SlotRange{Start: 1110, End: 1440}},
		{label: "12:00-09:00", wantErr: true},
		{label: "9:00-12:00", wantErr: true},
		{label: "morning", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseSlot(tt.label)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSlot)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResource_CapacityOn(t *testing.T) {
	r := Resource{ID: "pool", Capacity: 60, WeekendCapacity: 40}
	weekday := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) // Thursday
	saturday := time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 60, r.CapacityOn(weekday))
	assert.Equal(t, 40, r.CapacityOn(saturday))

	r.Exclusive = true
	assert.Equal(t, 1, r.CapacityOn(weekday))
}

func TestResource_AllowsSlot(t *testing.T) {
	r := Resource{Opens: "08:00", Closes: "20:00"}
	assert.True(t, r.AllowsSlot("09:00-12:00"))
	assert.False(t, r.AllowsSlot("07:00-09:00"))
	assert.False(t, r.AllowsSlot("19:00-21:00"))

	r.Slots = []string{"09:00-12:00"}
	assert.True(t, r.AllowsSlot("09:00-12:00"))
	assert.False(t, r.AllowsSlot("12:00-15:00"))
}

func TestFacilityBooking_PriceContext(t *testing.T) {
	d := &FacilityBooking{ResourceID: "t1", Date: "2025-05-03", Slot: "18:00-20:00", Persons: 2}
	ctx, err := d.PriceContext()
	require.NoError(t, err)
	assert.Equal(t, 18*60, ctx.StartMinute)
	assert.InDelta(t, 2.0, ctx.Quantities["duration"], 1e-9)
	assert.Equal(t, time.Saturday, ctx.Date.Weekday())
}
