package domain

import "fmt"

// Category identifies a request type. The set is closed: every category has
// exactly one Details variant.
type Category string

const (
	CategoryFacilityBooking     Category = "facility_booking"
	CategoryCourseEnrollment    Category = "course_enrollment"
	CategoryTaxiBooking         Category = "taxi_booking"
	CategoryDeviceLoan          Category = "device_loan"
	CategoryInterpreterBooking  Category = "interpreter_booking"
	CategoryServiceRequest      Category = "service_request"
	CategoryAccessibilityReport Category = "accessibility_report"
	CategoryPermitApplication   Category = "permit_application"
)

// Categories lists every known category in a stable order.
var Categories = []Category{
	CategoryFacilityBooking,
	CategoryCourseEnrollment,
	CategoryTaxiBooking,
	CategoryDeviceLoan,
	CategoryInterpreterBooking,
	CategoryServiceRequest,
	CategoryAccessibilityReport,
	CategoryPermitApplication,
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category: %s", s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IsReservable reports whether requests of this category consume slot capacity.
func (c Category) IsReservable() bool {
	d, err := NewDetails(c)
	if err != nil {
		return false
	}
	_, ok := d.(Reservable)
	return ok
}

// IsBillable reports whether requests of this category carry a price.
func (c Category) IsBillable() bool {
	d, err := NewDetails(c)
	if err != nil {
		return false
	}
	_, ok := d.(Billable)
	return ok
}
