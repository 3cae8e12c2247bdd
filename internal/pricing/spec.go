package pricing

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Rule types accepted in configuration.
const (
	RuleWeekendSurcharge   = "weekend_surcharge"
	RuleOffHoursSurcharge  = "off_hours_surcharge"
	RuleOutOfZoneSurcharge = "out_of_zone_surcharge"
	RuleQuantityScale      = "quantity_scale"
	RuleZoneCoefficient    = "zone_coefficient"
	RuleAddOn              = "addon"
	RuleFlat               = "flat"
)

// RuleSpec is the configuration form of a modifier.
type RuleSpec struct {
	Type         string             `yaml:"type"`
	Name         string             `yaml:"name"`
	Amount       float64            `yaml:"amount"`
	Days         []string           `yaml:"days"`
	From         string             `yaml:"from"`
	To           string             `yaml:"to"`
	Zones        []string           `yaml:"zones"`
	Unit         string             `yaml:"unit"`
	Coefficients map[string]float64 `yaml:"coefficients"`
	Default      float64            `yaml:"default"`
	Key          string             `yaml:"key"`
}

// TariffSpec is the configuration form of a Tariff.
type TariffSpec struct {
	Base  float64    `yaml:"base"`
	Rules []RuleSpec `yaml:"rules"`
}

// Build turns a tariff spec into a Tariff, rejecting rules that could only
// produce garbage at evaluation time.
func Build(spec TariffSpec) (Tariff, error) {
	if math.IsNaN(spec.Base) || math.IsInf(spec.Base, 0) || spec.Base < 0 {
		return Tariff{}, fmt.Errorf("%w: %v", ErrInvalidBase, spec.Base)
	}
	modifiers := make([]Modifier, 0, len(spec.Rules))
	for i, rs := range spec.Rules {
		m, err := buildRule(rs)
		if err != nil {
			return Tariff{}, fmt.Errorf("rule %d (%s): %w", i, rs.Type, err)
		}
		modifiers = append(modifiers, m)
	}
	return Tariff{Base: spec.Base, Modifiers: modifiers}, nil
}

func buildRule(rs RuleSpec) (Modifier, error) {
	if math.IsNaN(rs.Amount) || math.IsInf(rs.Amount, 0) {
		return nil, fmt.Errorf("amount must be finite")
	}
	switch rs.Type {
	case RuleWeekendSurcharge:
		days := make([]time.Weekday, 0, len(rs.Days))
		for _, d := range rs.Days {
			wd, err := parseWeekday(d)
			if err != nil {
				return nil, err
			}
			days = append(days, wd)
		}
		return WeekendSurcharge{Label: rs.Name, Amount: rs.Amount, Days: days}, nil
	case RuleOffHoursSurcharge:
		from, err := minutesOf(rs.From)
		if err != nil {
			return nil, err
		}
		to, err := minutesOf(rs.To)
		if err != nil {
			return nil, err
		}
		if to <= from {
			return nil, fmt.Errorf("off-hours window %s-%s is empty", rs.From, rs.To)
		}
		return OffHoursSurcharge{Label: rs.Name, Amount: rs.Amount, From: from, To: to}, nil
	case RuleOutOfZoneSurcharge:
		if len(rs.Zones) == 0 {
			return nil, fmt.Errorf("zones are required")
		}
		return OutOfZoneSurcharge{Label: rs.Name, Amount: rs.Amount, Zones: rs.Zones}, nil
	case RuleQuantityScale:
		switch Unit(rs.Unit) {
		case UnitArea, UnitDuration, UnitCount:
			return QuantityScale{Label: rs.Name, Unit: Unit(rs.Unit)}, nil
		}
		return nil, fmt.Errorf("unknown unit %q", rs.Unit)
	case RuleZoneCoefficient:
		if len(rs.Coefficients) == 0 {
			return nil, fmt.Errorf("coefficients are required")
		}
		for zone, c := range rs.Coefficients {
			if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 || c > 1 {
				return nil, fmt.Errorf("coefficient for zone %q must be within [0, 1], got %v", zone, c)
			}
		}
		if rs.Default < 0 || rs.Default > 1 {
			return nil, fmt.Errorf("default coefficient must be within [0, 1], got %v", rs.Default)
		}
		return ZoneCoefficient{Label: rs.Name, Coefficients: rs.Coefficients, Default: rs.Default}, nil
	case RuleAddOn:
		if rs.Key == "" {
			return nil, fmt.Errorf("key is required")
		}
		return AddOn{Label: rs.Name, Key: rs.Key, Amount: rs.Amount}, nil
	case RuleFlat:
		return Flat{Label: rs.Name, Amount: rs.Amount}, nil
	default:
		return nil, fmt.Errorf("unknown rule type %q", rs.Type)
	}
}

func minutesOf(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q", clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
