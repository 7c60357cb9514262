package dto

import (
	"github.com/shopspring/decimal"

	"github.com/dashfin/finmirror/internal/domain"
)

// RecordRequest represents a request to create or replace a record.
type RecordRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
	Status      string          `json:"status"`
	Date        string          `json:"date,omitempty"`
}

// ToFields converts to record fields. Ownership is attached by the
// handler, not the client.
func (r *RecordRequest) ToFields() domain.RecordFields {
	return domain.RecordFields{
		Description: r.Description,
		Amount:      r.Amount,
		Kind:        domain.Kind(r.Kind),
		Status:      domain.Status(r.Status),
		OccurredOn:  r.Date,
	}
}

// SetFieldRequest represents a single draft field change in the editor.
type SetFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}
