package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/civicbook/internal/pricing"
	"github.com/google/uuid"
)

// Status is a workflow state name. The valid set is defined per category.
type Status string

// Contact holds the free-form requester fields.
type Contact struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email,omitempty" validate:"required_without=Phone,omitempty,email"`
	Phone string `json:"phone,omitempty" validate:"required_without=Email,omitempty,min=5,max=20"`
}

// Normalize trims surrounding whitespace from every field.
func (c Contact) Normalize() Contact {
	return Contact{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.TrimSpace(c.Email),
		Phone: strings.TrimSpace(c.Phone),
	}
}

// Record is one submitted request. Only Status, Price and UpdatedAt change
// after creation.
type Record struct {
	ID        uuid.UUID `json:"id"`
	Reference string    `json:"reference"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ResourceID string `json:"resource_id,omitempty"`
	Date       string `json:"date,omitempty"`
	Slot       string `json:"slot,omitempty"`
	Size       int    `json:"size"`

	Status Status         `json:"status"`
	Price  *pricing.Quote `json:"price,omitempty"`

	Contact Contact `json:"contact"`
	Details Details `json:"details"`
}

func (r Record) SlotKey() SlotKey {
	return SlotKey{ResourceID: r.ResourceID, Date: r.Date, Slot: r.Slot}
}

// UnmarshalJSON decodes Details into the variant selected by Category.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := &struct {
		Details json.RawMessage `json:"details"`
		*plain
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	details, err := NewDetails(r.Category)
	if err != nil {
		return err
	}
	if len(aux.Details) > 0 && string(aux.Details) != "null" {
		if err := json.Unmarshal(aux.Details, details); err != nil {
			return fmt.Errorf("decode %s details: %w", r.Category, err)
		}
	}
	r.Details = details
	return nil
}
