package validation

import (
	"testing"

	"github.com/Domenick1991/civicbook/internal/domain"
	"github.com/Domenick1991/civicbook/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *RequestValidator {
	t.Helper()
	v, err := NewRequestValidator(logger.Discard())
	require.NoError(t, err)
	return v
}

func TestContact(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name    string
		contact domain.Contact
		fields  []string
	}{
		{name: "email only", contact: domain.Contact{Name: "Ana Ruiz", Email: "ana@example.org"}},
		{name: "phone only", contact: domain.Contact{Name: "Ana Ruiz", Phone: "+34600111222"}},
		{name: "no channel", contact: domain.Contact{Name: "Ana Ruiz"}, fields: []string{"email", "phone"}},
		{name: "bad email", contact: domain.Contact{Name: "Ana Ruiz", Email: "nope"}, fields: []string{"email"}},
		{name: "short name", contact: domain.Contact{Name: "A", Phone: "123456"}, fields: []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Contact(tt.contact)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			for _, f := range tt.fields {
				assert.Contains(t, verrs.Fields(), f)
			}
		})
	}
}

func TestDetails(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name    string
		details domain.Details
		field   string
		message string
	}{
		{
			name:    "valid facility booking",
			details: &domain.FacilityBooking{ResourceID: "t1", Date: "2025-05-01", Slot: "09:00-12:00", Persons: 4},
		},
		{
			name:    "zero persons",
			details: &domain.FacilityBooking{ResourceID: "t1", Date: "2025-05-01", Slot: "09:00-12:00"},
			field:   "persons",
			message: "persons is required",
		},
		{
			name:    "malformed slot",
			details: &domain.CourseEnrollment{ResourceID: "yoga", Date: "2025-05-01", Slot: "morning", Participant: "Ana", Seats: 1},
			field:   "slot",
			message: "slot must be a time range like 09:00-12:00",
		},
		{
			name:    "malformed date",
			details: &domain.DeviceLoan{ResourceID: "wheelchairs", Date: "01/05/2025", Slot: "09:00-12:00", DeviceType: "wheelchair", Units: 1},
			field:   "date",
			message: "date must be a date in YYYY-MM-DD format",
		},
		{
			name:    "unknown barrier",
			details: &domain.AccessibilityReport{Location: "Main St 4", BarrierType: "pothole", Description: "deep"},
			field:   "barrier_type",
			message: "barrier_type must be one of: step ramp door elevator pavement signage other",
		},
		{
			name:    "permit without duration",
			details: &domain.PermitApplication{PermitType: "terrace", StartDate: "2025-06-01", Area: 12, Zone: "B"},
			field:   "duration",
			message: "duration is required",
		},
		{
			name:    "valid service request",
			details: &domain.ServiceRequest{Subject: "Broken lamp", Description: "Street lamp is off", Location: "Elm St"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Details(tt.details)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.message, verrs.Fields()[tt.field])
		})
	}
}

func TestDetails_Nil(t *testing.T) {
	v := newValidator(t)

	assert.Error(t, v.Details(nil))

	var empty *domain.TaxiBooking
	assert.Error(t, v.Details(empty))
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{{Field: "a", Message: "a is required"}, {Field: "b", Message: "b must be at least 1"}}
	assert.Equal(t, "validation failed: 2 error(s): [a: a is required; b: b must be at least 1]", errs.Error())
	assert.Equal(t, "", ValidationErrors{}.Error())
}
