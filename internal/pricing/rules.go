package pricing

import (
	"slices"
	"time"
)

// WeekendSurcharge adds a flat fee on the given days, Saturday and Sunday by default.
type WeekendSurcharge struct {
	Label  string
	Amount float64
	Days   []time.Weekday
}

func (r WeekendSurcharge) Name() string { return nameOr(r.Label, "weekend_surcharge") }
func (r WeekendSurcharge) Kind() Kind   { return Additive }

func (r WeekendSurcharge) Value(ctx Context) (float64, bool) {
	if ctx.Date.IsZero() {
		return 0, false
	}
	days := r.Days
	if len(days) == 0 {
		days = []time.Weekday{time.Saturday, time.Sunday}
	}
	if !slices.Contains(days, ctx.Date.Weekday()) {
		return 0, false
	}
	return r.Amount, true
}

// OffHoursSurcharge adds a flat fee when the request starts outside [From, To),
// both in minutes after midnight.
type OffHoursSurcharge struct {
	Label  string
	Amount float64
	From   int
	To     int
}

func (r OffHoursSurcharge) Name() string { return nameOr(r.Label, "off_hours_surcharge") }
func (r OffHoursSurcharge) Kind() Kind   { return Additive }

func (r OffHoursSurcharge) Value(ctx Context) (float64, bool) {
	if ctx.StartMinute < 0 {
		return 0, false
	}
	if ctx.StartMinute >= r.From && ctx.StartMinute < r.To {
		return 0, false
	}
	return r.Amount, true
}

// OutOfZoneSurcharge adds a flat fee when the request zone is not served.
type OutOfZoneSurcharge struct {
	Label  string
	Amount float64
	Zones  []string
}

func (r OutOfZoneSurcharge) Name() string { return nameOr(r.Label, "out_of_zone_surcharge") }
func (r OutOfZoneSurcharge) Kind() Kind   { return Additive }

func (r OutOfZoneSurcharge) Value(ctx Context) (float64, bool) {
	if ctx.Zone == "" || slices.Contains(r.Zones, ctx.Zone) {
		return 0, false
	}
	return r.Amount, true
}

// QuantityScale multiplies by a metered quantity (area, duration, item count).
// It does not apply when the request carries no quantity of that unit.
type QuantityScale struct {
	Label string
	Unit  Unit
}

func (r QuantityScale) Name() string { return nameOr(r.Label, string(r.Unit)+"_scale") }
func (r QuantityScale) Kind() Kind   { return Multiplicative }

func (r QuantityScale) Value(ctx Context) (float64, bool) {
	q, ok := ctx.Quantities[r.Unit]
	return q, ok
}

// ZoneCoefficient scales by a regional factor. Unknown zones use Default, or
// 1 when Default is zero.
type ZoneCoefficient struct {
	Label        string
	Coefficients map[string]float64
	Default      float64
}

func (r ZoneCoefficient) Name() string { return nameOr(r.Label, "zone_coefficient") }
func (r ZoneCoefficient) Kind() Kind   { return Multiplicative }

func (r ZoneCoefficient) Value(ctx Context) (float64, bool) {
	if ctx.Zone == "" {
		return 0, false
	}
	if c, ok := r.Coefficients[ctx.Zone]; ok {
		return c, true
	}
	if r.Default != 0 {
		return r.Default, true
	}
	return 1, true
}

// AddOn is an optional flat fee toggled by key.
type AddOn struct {
	Label  string
	Key    string
	Amount float64
}

func (r AddOn) Name() string { return nameOr(r.Label, "addon_"+r.Key) }
func (r AddOn) Kind() Kind   { return Additive }

func (r AddOn) Value(ctx Context) (float64, bool) {
	if !slices.Contains(ctx.AddOns, r.Key) {
		return 0, false
	}
	return r.Amount, true
}

// Flat is an unconditional fee or discount.
type Flat struct {
	Label  string
	Amount float64
}

func (r Flat) Name() string                  { return nameOr(r.Label, "flat_fee") }
func (r Flat) Kind() Kind                    { return Additive }
func (r Flat) Value(Context) (float64, bool) { return r.Amount, true }

func nameOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}
