package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValidateFields(t *testing.T) {
	valid := RecordFields{
		Description: "groceries",
		Amount:      decimal.NewFromInt(40),
		Kind:        KindExpense,
		Status:      StatusCompleted,
		OccurredOn:  "2025-03-14",
	}

	tests := []struct {
		name        string
		mutate      func(*RecordFields)
		expectError error
	}{
		{
			name:        "valid fields",
			mutate:      func(f *RecordFields) {},
			expectError: nil,
		},
		{
			name:        "empty description",
			mutate:      func(f *RecordFields) { f.Description = "   " },
			expectError: ErrEmptyDescription,
		},
		{
			name:        "description too long",
			mutate:      func(f *RecordFields) { f.Description = strings.Repeat("x", 300) },
			expectError: ErrDescriptionTooLong,
		},
		{
			name:        "negative amount",
			mutate:      func(f *RecordFields) { f.Amount = decimal.NewFromInt(-1) },
			expectError: ErrInvalidAmount,
		},
		{
			name:        "amount too large",
			mutate:      func(f *RecordFields) { f.Amount = decimal.RequireFromString("1000000000001") },
			expectError: ErrAmountTooLarge,
		},
		{
			name:        "unknown kind",
			mutate:      func(f *RecordFields) { f.Kind = "transfer" },
			expectError: ErrInvalidKind,
		},
		{
			name:        "unknown status",
			mutate:      func(f *RecordFields) { f.Status = "archived" },
			expectError: ErrInvalidStatus,
		},
		{
			name:        "malformed date",
			mutate:      func(f *RecordFields) { f.OccurredOn = "14/03/2025" },
			expectError: ErrInvalidDate,
		},
		{
			name:        "empty date is legal",
			mutate:      func(f *RecordFields) { f.OccurredOn = "" },
			expectError: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := valid
			tt.mutate(&fields)

			err := ValidateFields(fields)

			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Errorf("expected %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestValidateRecord(t *testing.T) {
	valid := Record{
		ID:          "rec-1",
		Description: "salary",
		Amount:      decimal.NewFromInt(100),
		Kind:        KindIncome,
		Status:      StatusCompleted,
		OccurredOn:  "2025-03-01",
		CreatedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name      string
		mutate    func(*Record)
		expectErr bool
	}{
		{"valid record", func(r *Record) {}, false},
		{"missing id", func(r *Record) { r.ID = "" }, true},
		{"missing created_at", func(r *Record) { r.CreatedAt = time.Time{} }, true},
		{"negative amount", func(r *Record) { r.Amount = decimal.NewFromInt(-5) }, true},
		{"unknown kind", func(r *Record) { r.Kind = "loan" }, true},
		{"unknown status", func(r *Record) { r.Status = "stale" }, true},
		{"empty date tolerated", func(r *Record) { r.OccurredOn = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := valid
			tt.mutate(&record)

			err := ValidateRecord(record)

			if tt.expectErr && !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("expected malformed record error, got %v", err)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
