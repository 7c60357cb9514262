package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a record as money coming in or going out.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Status marks whether a transaction has settled.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

// DateLayout is the calendar-date format used for OccurredOn.
const DateLayout = "2006-01-02"

// Ownership identifies the session that authored a record.
// Nil ownership means the record was written anonymously.
type Ownership struct {
	UID   string
	Email string
}

// Record represents a single financial transaction as reported by the
// remote store. The ID is stable for the record's lifetime; every other
// field may be replaced wholesale by an update.
type Record struct {
	ID          string
	Description string
	Amount      decimal.Decimal
	Kind        Kind
	Status      Status
	OccurredOn  string // calendar date in DateLayout, empty on legacy records
	CreatedAt   time.Time
	Owner       *Ownership
}

// RecordFields is the editable subset of a record sent on insert and
// replace. ID and CreatedAt are assigned by the remote store and never
// travel in this direction.
type RecordFields struct {
	Description string
	Amount      decimal.Decimal
	Kind        Kind
	Status      Status
	OccurredOn  string
	Owner       *Ownership
}

// Fields extracts the editable subset of a record.
func (r Record) Fields() RecordFields {
	return RecordFields{
		Description: r.Description,
		Amount:      r.Amount,
		Kind:        r.Kind,
		Status:      r.Status,
		OccurredOn:  r.OccurredOn,
		Owner:       r.Owner,
	}
}
