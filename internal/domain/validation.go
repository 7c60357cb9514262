package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrEmptyDescription   = errors.New("description cannot be empty")
	ErrDescriptionTooLong = errors.New("description too long")
	ErrInvalidAmount      = errors.New("amount must be a nonnegative number")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrMissingDate        = errors.New("transaction date is required")
	ErrInvalidDate        = errors.New("invalid transaction date")
	ErrInvalidKind        = errors.New("kind must be income or expense")
	ErrInvalidStatus      = errors.New("status must be completed or pending")
	ErrMalformedRecord    = errors.New("malformed record")
)

// Validation constants
const (
	MaxDescriptionLength = 255
	MaxRecordAmount      = "1000000000000" // 1 trillion
)

// ValidateDescription validates a record description.
func ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return ErrEmptyDescription
	}

	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrDescriptionTooLong, MaxDescriptionLength)
	}

	return nil
}

// ValidateAmount validates a record amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxRecordAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxRecordAmount)
	}

	return nil
}

// ValidateKind validates a record kind.
func ValidateKind(kind Kind) error {
	switch kind {
	case KindIncome, KindExpense:
		return nil
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidKind, kind)
	}
}

// ValidateStatus validates a record status.
func ValidateStatus(status Status) error {
	switch status {
	case StatusCompleted, StatusPending:
		return nil
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidStatus, status)
	}
}

// ValidateDate validates an OccurredOn value. The empty string is
// accepted: legacy records never carried a transaction date.
func ValidateDate(date string) error {
	if date == "" {
		return nil
	}

	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q does not match %s", ErrInvalidDate, date, DateLayout)
	}

	return nil
}

// IsValidationError reports whether err is one of the field validation
// errors above.
func IsValidationError(err error) bool {
	for _, sentinel := range []error{
		ErrEmptyDescription,
		ErrDescriptionTooLong,
		ErrInvalidAmount,
		ErrAmountTooLarge,
		ErrMissingDate,
		ErrInvalidDate,
		ErrInvalidKind,
		ErrInvalidStatus,
		ErrMalformedRecord,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// ValidateFields validates the editable fields of a record before they
// are written to the remote store.
func ValidateFields(fields RecordFields) error {
	if err := ValidateDescription(fields.Description); err != nil {
		return err
	}
	if err := ValidateAmount(fields.Amount); err != nil {
		return err
	}
	if err := ValidateKind(fields.Kind); err != nil {
		return err
	}
	if err := ValidateStatus(fields.Status); err != nil {
		return err
	}
	return ValidateDate(fields.OccurredOn)
}

// ValidateRecord checks a document decoded from the remote store. Records
// that fail are quarantined at the subscription boundary instead of
// entering a snapshot.
func ValidateRecord(record Record) error {
	if record.ID == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedRecord)
	}
	if record.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing created_at", ErrMalformedRecord)
	}
	if record.Amount.IsNegative() {
		return fmt.Errorf("%w: negative amount", ErrMalformedRecord)
	}
	if err := ValidateKind(record.Kind); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if err := ValidateStatus(record.Status); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return nil
}
