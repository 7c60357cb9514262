package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dashfin/finmirror/internal/domain"
	"github.com/dashfin/finmirror/internal/usecase"
)

// RecordResponse represents a record in API responses.
type RecordResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
	Status      string          `json:"status"`
	Date        string          `json:"date,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	OwnerUID    string          `json:"owner_uid,omitempty"`
	OwnerEmail  string          `json:"owner_email,omitempty"`
}

// RecordFromDomain converts a domain record to a response.
func RecordFromDomain(r domain.Record) RecordResponse {
	resp := RecordResponse{
		ID:          r.ID,
		Description: r.Description,
		Amount:      r.Amount,
		Kind:        string(r.Kind),
		Status:      string(r.Status),
		Date:        r.OccurredOn,
		CreatedAt:   r.CreatedAt,
	}
	if r.Owner != nil {
		resp.OwnerUID = r.Owner.UID
		resp.OwnerEmail = r.Owner.Email
	}

	return resp
}

// RecordsFromDomain converts domain records to responses.
func RecordsFromDomain(records []domain.Record) []RecordResponse {
	result := make([]RecordResponse, len(records))
	for i, r := range records {
		result[i] = RecordFromDomain(r)
	}
	return result
}

// SnapshotResponse is the full mirrored result set plus its delivery
// state. Loading and error are data, not HTTP failures.
type SnapshotResponse struct {
	Loading bool             `json:"loading"`
	Error   string           `json:"error,omitempty"`
	Records []RecordResponse `json:"records"`
}

// TotalsResponse represents aggregated amounts over the snapshot.
type TotalsResponse struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
	Count   int             `json:"count"`
}

// TotalsFromDomain converts domain totals to a response. count is the
// number of records the totals were computed over.
func TotalsFromDomain(t domain.Totals, count int) TotalsResponse {
	return TotalsResponse{
		Income:  t.Income,
		Expense: t.Expense,
		Balance: t.Balance,
		Count:   count,
	}
}

// ChartPointResponse represents one point of the chart series.
type ChartPointResponse struct {
	Label     string          `json:"label"`
	Income    decimal.Decimal `json:"income"`
	Expense   decimal.Decimal `json:"expense"`
	Timestamp int64           `json:"timestamp"`
}

// ChartFromDomain converts domain chart points to responses.
func ChartFromDomain(points []domain.ChartPoint) []ChartPointResponse {
	result := make([]ChartPointResponse, len(points))
	for i, p := range points {
		result[i] = ChartPointResponse{
			Label:     p.Label,
			Income:    p.Income,
			Expense:   p.Expense,
			Timestamp: p.Timestamp,
		}
	}
	return result
}

// SessionResponse represents the edit session state.
type SessionResponse struct {
	Mode     string        `json:"mode"`
	TargetID string        `json:"target_id,omitempty"`
	Draft    DraftResponse `json:"draft"`
	Error    string        `json:"error,omitempty"`
}

// DraftResponse represents the in-progress form fields.
type DraftResponse struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	Date        string `json:"date"`
}

// SessionFromState builds a session response from the session state.
func SessionFromState(mode usecase.SessionMode, targetID string, draft usecase.Draft, err error) SessionResponse {
	resp := SessionResponse{
		Mode:     string(mode),
		TargetID: targetID,
		Draft: DraftResponse{
			Description: draft.Description,
			Amount:      draft.Amount,
			Kind:        string(draft.Kind),
			Status:      string(draft.Status),
			Date:        draft.Date,
		},
	}
	if err != nil {
		resp.Error = err.Error()
	}

	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
