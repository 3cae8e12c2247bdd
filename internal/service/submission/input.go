package submission

import (
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/civicbook/internal/domain"
)

// UnmarshalJSON decodes Details into the variant selected by Category.
func (in *Input) UnmarshalJSON(data []byte) error {
	var aux struct {
		Category domain.Category `json:"category"`
		Contact  domain.Contact  `json:"contact"`
		Details  json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	details, err := domain.NewDetails(aux.Category)
	if err != nil {
		return err
	}
	if len(aux.Details) > 0 && string(aux.Details) != "null" {
		if err := json.Unmarshal(aux.Details, details); err != nil {
			return fmt.Errorf("decode %s details: %w", aux.Category, err)
		}
	}
	*in = Input{Category: aux.Category, Contact: aux.Contact, Details: details}
	return nil
}
