package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted from forms.
const DateLayout = "2006-01-02"

var ErrInvalidSlot = errors.New("invalid slot label")

// SlotKey groups records competing for the same capacity.
type SlotKey struct {
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	Slot       string `json:"slot"`
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.ResourceID, k.Date, k.Slot)
}

// ParseDate parses an ISO calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// SlotRange is a parsed "HH:MM-HH:MM" label expressed in minutes after midnight.
type SlotRange struct {
	Start int
	End   int
}

// Hours returns the slot length in hours.
func (r SlotRange) Hours() float64 {
	return float64(r.End-r.Start) / 60
}

func ParseSlot(label string) (SlotRange, error) {
	from, to, ok := strings.Cut(label, "-")
	if !ok {
		return SlotRange{}, fmt.Errorf("%w: %q", ErrInvalidSlot, label)
	}
	start, err := ParseClock(from)
	if err != nil {
		return SlotRange{}, fmt.Errorf("%w: %q", ErrInvalidSlot, label)
	}
	end, err := ParseClock(to)
	if err != nil {
		return SlotRange{}, fmt.Errorf("%w: %q", ErrInvalidSlot, label)
	}
	if end <= start {
		return SlotRange{}, fmt.Errorf("%w: %q ends before it starts", ErrInvalidSlot, label)
	}
	return SlotRange{Start: start, End: end}, nil
}

// ParseClock converts "HH:MM" into minutes after midnight. "24:00" is accepted
// as the end of day.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	return h*60 + m, nil
}
