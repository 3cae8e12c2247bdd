package domain

import (
	"fmt"

	"github.com/Domenick1991/civicbook/internal/pricing"
)

// Details is the category-specific part of a request. Each category has its
// own variant with its own required fields.
type Details interface {
	Category() Category
}

// Reservable details consume capacity of a resource slot.
type Reservable interface {
	Details
	SlotKey() SlotKey
	Size() int
}

// Billable details carry the inputs of a price quote.
type Billable interface {
	Details
	PriceContext() (pricing.Context, error)
}

// NewDetails returns an empty variant for c, used when decoding records.
func NewDetails(c Category) (Details, error) {
	switch c {
	case CategoryFacilityBooking:
		return &FacilityBooking{}, nil
	case CategoryCourseEnrollment:
		return &CourseEnrollment{}, nil
	case CategoryTaxiBooking:
		return &TaxiBooking{}, nil
	case CategoryDeviceLoan:
		return &DeviceLoan{}, nil
	case CategoryInterpreterBooking:
		return &InterpreterBooking{}, nil
	case CategoryServiceRequest:
		return &ServiceRequest{}, nil
	case CategoryAccessibilityReport:
		return &AccessibilityReport{}, nil
	case CategoryPermitApplication:
		return &PermitApplication{}, nil
	default:
		return nil, fmt.Errorf("unknown category: %s", c)
	}
}

// FacilityBooking reserves a sports or leisure facility slot.
type FacilityBooking struct {
	ResourceID string   `json:"resource_id" validate:"required"`
	Date       string   `json:"date" validate:"required,datetime=2006-01-02"`
	Slot       string   `json:"slot" validate:"required,slot_label"`
	Persons    int      `json:"persons" validate:"required,min=1"`
	Duration   float64  `json:"duration,omitempty" validate:"omitempty,gt=0"`
	AddOns     []string `json:"addons,omitempty" validate:"omitempty,dive,required"`
}

func (d *FacilityBooking) Category() Category { return CategoryFacilityBooking }
func (d *FacilityBooking) SlotKey() SlotKey   { return SlotKey{ResourceID: d.ResourceID, Date: d.Date, Slot: d.Slot} }
func (d *FacilityBooking) Size() int          { return d.Persons }

// PriceContext meters the booking by duration units. Without an explicit
// duration the slot length in hours is used.
func (d *FacilityBooking) PriceContext() (pricing.Context, error) {
	ctx, slot, err := slotContext(d.Date, d.Slot)
	if err != nil {
		return pricing.Context{}, err
	}
	duration := d.Duration
	if duration == 0 {
		duration = slot.Hours()
	}
	ctx.Quantities = map[pricing.Unit]float64{pricing.UnitDuration: duration}
	ctx.AddOns = d.AddOns
	return ctx, nil
}

// CourseEnrollment reserves seats in a course session.
type CourseEnrollment struct {
	ResourceID  string `json:"resource_id" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Slot        string `json:"slot" validate:"required,slot_label"`
	Participant string `json:"participant" validate:"required,min=2,max=100"`
	Seats       int    `json:"seats" validate:"required,min=1"`
}

func (d *CourseEnrollment) Category() Category { return CategoryCourseEnrollment }
func (d *CourseEnrollment) SlotKey() SlotKey   { return SlotKey{ResourceID: d.ResourceID, Date: d.Date, Slot: d.Slot} }
func (d *CourseEnrollment) Size() int          { return d.Seats }

func (d *CourseEnrollment) PriceContext() (pricing.Context, error) {
	ctx, _, err := slotContext(d.Date, d.Slot)
	if err != nil {
		return pricing.Context{}, err
	}
	ctx.Quantities = map[pricing.Unit]float64{pricing.UnitCount: float64(d.Seats)}
	return ctx, nil
}

// TaxiBooking reserves accessible transport vehicles for a pickup window.
type TaxiBooking struct {
	ResourceID string `json:"resource_id" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Slot       string `json:"slot" validate:"required,slot_label"`
	Pickup     string `json:"pickup" validate:"required,max=200"`
	Dropoff    string `json:"dropoff" validate:"required,max=200"`
	Zone       string `json:"zone" validate:"required"`
	Vehicles   int    `json:"vehicles" validate:"required,min=1"`
	Wheelchair bool   `json:"wheelchair,omitempty"`
}

func (d *TaxiBooking) Category() Category { return CategoryTaxiBooking }
func (d *TaxiBooking) SlotKey() SlotKey   { return SlotKey{ResourceID: d.ResourceID, Date: d.Date, Slot: d.Slot} }
func (d *TaxiBooking) Size() int          { return d.Vehicles }

func (d *TaxiBooking) PriceContext() (pricing.Context, error) {
	ctx, _, err := slotContext(d.Date, d.Slot)
	if err != nil {
		return pricing.Context{}, err
	}
	ctx.Zone = d.Zone
	ctx.Quantities = map[pricing.Unit]float64{pricing.UnitCount: float64(d.Vehicles)}
	return ctx, nil
}

// DeviceLoan borrows units from an assistive device pool.
type DeviceLoan struct {
	ResourceID string `json:"resource_id" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Slot       string `json:"slot" validate:"required,slot_label"`
	DeviceType string `json:"device_type" validate:"required,max=60"`
	Units      int    `json:"units" validate:"required,min=1"`
}

func (d *DeviceLoan) Category() Category { return CategoryDeviceLoan }
func (d *DeviceLoan) SlotKey() SlotKey   { return SlotKey{ResourceID: d.ResourceID, Date: d.Date, Slot: d.Slot} }
func (d *DeviceLoan) Size() int          { return d.Units }

// InterpreterBooking holds an interpreter for a slot. Interpreters are
// exclusive resources, so the size is always one.
type InterpreterBooking struct {
	ResourceID string `json:"resource_id" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Slot       string `json:"slot" validate:"required,slot_label"`
	Language   string `json:"language" validate:"required,min=2,max=40"`
	Mode       string `json:"mode,omitempty" validate:"omitempty,oneof=onsite remote video"`
}

func (d *InterpreterBooking) Category() Category { return CategoryInterpreterBooking }
func (d *InterpreterBooking) SlotKey() SlotKey   { return SlotKey{ResourceID: d.ResourceID, Date: d.Date, Slot: d.Slot} }
func (d *InterpreterBooking) Size() int          { return 1 }

// ServiceRequest is a complaint or a maintenance request.
type ServiceRequest struct {
	Subject     string `json:"subject" validate:"required,min=3,max=120"`
	Description string `json:"description" validate:"required,max=2000"`
	Location    string `json:"location" validate:"required,max=200"`
	PhotoRef    string `json:"photo_ref,omitempty" validate:"omitempty,max=500"`
}

func (d *ServiceRequest) Category() Category { return CategoryServiceRequest }

// AccessibilityReport reports a physical barrier in public space.
type AccessibilityReport struct {
	Location    string `json:"location" validate:"required,max=200"`
	BarrierType string `json:"barrier_type" validate:"required,oneof=step ramp door elevator pavement signage other"`
	Description string `json:"description" validate:"required,max=2000"`
}

func (d *AccessibilityReport) Category() Category { return CategoryAccessibilityReport }

// PermitApplication requests a metered permit such as street occupancy.
type PermitApplication struct {
	PermitType string   `json:"permit_type" validate:"required,max=60"`
	StartDate  string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	Area       float64  `json:"area" validate:"gte=0"`
	Duration   float64  `json:"duration" validate:"required,gt=0"`
	Zone       string   `json:"zone" validate:"required"`
	AddOns     []string `json:"addons,omitempty" validate:"omitempty,dive,required"`
}

func (d *PermitApplication) Category() Category { return CategoryPermitApplication }

func (d *PermitApplication) PriceContext() (pricing.Context, error) {
	date, err := ParseDate(d.StartDate)
	if err != nil {
		return pricing.Context{}, err
	}
	return pricing.Context{
		Date:        date,
		StartMinute: -1,
		Quantities: map[pricing.Unit]float64{
			pricing.UnitArea:     d.Area,
			pricing.UnitDuration: d.Duration,
		},
		Zone:   d.Zone,
		AddOns: d.AddOns,
	}, nil
}

func slotContext(date, label string) (pricing.Context, SlotRange, error) {
	day, err := ParseDate(date)
	if err != nil {
		return pricing.Context{}, SlotRange{}, err
	}
	slot, err := ParseSlot(label)
	if err != nil {
		return pricing.Context{}, SlotRange{}, err
	}
	return pricing.Context{Date: day, StartMinute: slot.Start}, slot, nil
}
