package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	thursday = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)
)

func facilityTariff() []Modifier {
	return []Modifier{
		WeekendSurcharge{Amount: 30},
		QuantityScale{Unit: UnitDuration},
	}
}

func TestEvaluate_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		date  time.Time
		total int64
		lines []string
	}{
		{name: "weekday", date: thursday, total: 300, lines: []string{"duration_scale"}},
		{name: "weekend surcharge", date: saturday, total: 330, lines: []string{"duration_scale", "weekend_surcharge"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := Context{
				Date:        tt.date,
				StartMinute: 9 * 60,
				Quantities:  map[Unit]float64{UnitDuration: 2},
			}
			q, err := Evaluate(150, facilityTariff(), ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.total, q.Total)

			var names []string
			for _, l := range q.Lines {
				names = append(names, l.Name)
			}
			assert.Equal(t, tt.lines, names)
		})
	}
}

func TestEvaluate_MultiplicativeBeforeAdditive(t *testing.T) {
	// Declared additive first; must still be applied after scaling.
	mods := []Modifier{
		Flat{Label: "fee", Amount: 10},
		QuantityScale{Unit: UnitArea},
		ZoneCoefficient{Coefficients: map[string]float64{"B": 0.8}},
	}
	ctx := Context{StartMinute: -1, Zone: "B", Quantities: map[Unit]float64{UnitArea: 12.5}}

	q, err := Evaluate(4, mods, ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), q.Total) // 4 * 12.5 * 0.8 + 10
	require.Len(t, q.Lines, 3)
	assert.Equal(t, Multiplicative, q.Lines[0].Kind)
	assert.Equal(t, Multiplicative, q.Lines[1].Kind)
	assert.Equal(t, Additive, q.Lines[2].Kind)
	assert.InDelta(t, 46.0, q.Lines[0].Amount, 1e-9)
	assert.InDelta(t, -10.0, q.Lines[1].Amount, 1e-9)
}

func TestEvaluate_Rounding(t *testing.T) {
	q, err := Evaluate(10.5, nil, Context{StartMinute: -1})
	require.NoError(t, err)
	assert.Equal(t, int64(11), q.Total)

	q, err = Evaluate(10.49, nil, Context{StartMinute: -1})
	require.NoError(t, err)
	assert.Equal(t, int64(10), q.Total)
}

func TestEvaluate_Deterministic(t *testing.T) {
	mods := []Modifier{
		WeekendSurcharge{Amount: 30},
		OffHoursSurcharge{Amount: 12.5, From: 7 * 60, To: 20 * 60},
		QuantityScale{Unit: UnitCount},
		ZoneCoefficient{Coefficients: map[string]float64{"A": 1, "B": 0.8, "C": 0.6}},
		AddOn{Key: "lighting", Amount: 15},
		AddOn{Key: "equipment", Amount: 7},
	}
	ctx := Context{
		Date:        saturday,
		StartMinute: 21 * 60,
		Zone:        "C",
		Quantities:  map[Unit]float64{UnitCount: 3},
		AddOns:      []string{"equipment"},
	}

	first, err := Evaluate(33, mods, ctx)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Evaluate(33, mods, ctx)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	// 33 * 3 * 0.6 + 30 + 12.5 + 7 = 108.9
	assert.Equal(t, int64(109), first.Total)
}

func TestEvaluate_NegativeClamped(t *testing.T) {
	q, err := Evaluate(20, []Modifier{Flat{Label: "discount", Amount: -50}}, Context{StartMinute: -1})
	assert.ErrorIs(t, err, ErrNegativeTotal)
	assert.True(t, q.Clamped)
	assert.Equal(t, int64(0), q.Total)
	assert.InDelta(t, -30.0, q.Subtotal, 1e-9)
}

func TestEvaluate_NonFinite(t *testing.T) {
	mods := []Modifier{Flat{Label: "broken", Amount: math.Inf(1)}}
	_, err := Evaluate(10, mods, Context{StartMinute: -1})
	assert.ErrorIs(t, err, ErrNonFinite)

	_, err = Evaluate(10, []Modifier{QuantityScale{Unit: UnitArea}}, Context{
		StartMinute: -1,
		Quantities:  map[Unit]float64{UnitArea: math.NaN()},
	})
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestEvaluate_InvalidBase(t *testing.T) {
	for _, base := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := Evaluate(base, nil, Context{})
		assert.ErrorIs(t, err, ErrInvalidBase)
	}
}

func TestRules(t *testing.T) {
	tests := []struct {
		name    string
		rule    Modifier
		ctx     Context
		value   float64
		applies bool
	}{
		{"weekend on saturday", WeekendSurcharge{Amount: 30}, Context{Date: saturday}, 30, true},
		{"weekend on thursday", WeekendSurcharge{Amount: 30}, Context{Date: thursday}, 0, false},
		{"weekend custom days", WeekendSurcharge{Amount: 5, Days: []time.Weekday{time.Thursday}}, Context{Date: thursday}, 5, true},
		{"weekend without date", WeekendSurcharge{Amount: 30}, Context{}, 0, false},
		{"off hours early", OffHoursSurcharge{Amount: 8, From: 420, To: 1200}, Context{StartMinute: 360}, 8, true},
		{"off hours inside", OffHoursSurcharge{Amount: 8, From: 420, To: 1200}, Context{StartMinute: 420}, 0, false},
		{"off hours at close", OffHoursSurcharge{Amount: 8, From: 420, To: 1200}, Context{StartMinute: 1200}, 8, true},
		{"off hours no start", OffHoursSurcharge{Amount: 8, From: 420, To: 1200}, Context{StartMinute: -1}, 0, false},
		{"out of zone", OutOfZoneSurcharge{Amount: 20, Zones: []string{"A", "B"}}, Context{Zone: "D"}, 20, true},
		{"served zone", OutOfZoneSurcharge{Amount: 20, Zones: []string{"A", "B"}}, Context{Zone: "A"}, 0, false},
		{"quantity missing", QuantityScale{Unit: UnitArea}, Context{}, 0, false},
		{"zone tier", ZoneCoefficient{Coefficients: map[string]float64{"C": 0.6}}, Context{Zone: "C"}, 0.6, true},
		{"zone default", ZoneCoefficient{Coefficients: map[string]float64{"C": 0.6}, Default: 0.8}, Context{Zone: "X"}, 0.8, true},
		{"zone unknown no default", ZoneCoefficient{Coefficients: map[string]float64{"C": 0.6}}, Context{Zone: "X"}, 1, true},
		{"zone missing", ZoneCoefficient{Coefficients: map[string]float64{"C": 0.6}}, Context{}, 0, false},
		{"addon toggled", AddOn{Key: "lighting", Amount: 15}, Context{AddOns: []string{"lighting"}}, 15, true},
		{"addon off", AddOn{Key: "lighting", Amount: 15}, Context{AddOns: []string{"towels"}}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := tt.rule.Value(tt.ctx)
			assert.Equal(t, tt.applies, ok)
			assert.InDelta(t, tt.value, v, 1e-9)
		})
	}
}

func TestTariff_RateOverridesBase(t *testing.T) {
	tariff := Tariff{Base: 100, Modifiers: []Modifier{QuantityScale{Unit: UnitDuration}}}
	ctx := Context{StartMinute: -1, Quantities: map[Unit]float64{UnitDuration: 2}}

	q, err := tariff.Quote(0, ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(200), q.Total)

	q, err = tariff.Quote(150, ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(300), q.Total)
}
