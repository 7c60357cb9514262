package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dashfin/finmirror/internal/domain"
	"github.com/dashfin/finmirror/internal/usecase"
)

func TestRecordFromDomain(t *testing.T) {
	now := time.Now()
	record := domain.Record{
		ID:          "rec-1",
		Description: "groceries",
		Amount:      decimal.RequireFromString("123.45"),
		Kind:        domain.KindExpense,
		Status:      domain.StatusCompleted,
		OccurredOn:  "2025-02-10",
		CreatedAt:   now,
		Owner:       &domain.Ownership{UID: "u-1", Email: "u@example.com"},
	}

	resp := RecordFromDomain(record)
	if resp.ID != record.ID || !resp.Amount.Equal(record.Amount) || resp.Kind != "expense" {
		t.Fatalf("unexpected record response: %+v", resp)
	}
	if resp.OwnerUID != "u-1" || resp.OwnerEmail != "u@example.com" {
		t.Fatalf("expected ownership in response, got %+v", resp)
	}

	list := RecordsFromDomain([]domain.Record{record})
	if len(list) != 1 || list[0].ID != record.ID {
		t.Fatalf("RecordsFromDomain returned %+v", list)
	}
}

func TestRecordFromDomainAnonymous(t *testing.T) {
	resp := RecordFromDomain(domain.Record{ID: "rec-1"})
	if resp.OwnerUID != "" || resp.OwnerEmail != "" {
		t.Fatalf("expected no ownership, got %+v", resp)
	}
}

func TestTotalsFromDomain(t *testing.T) {
	totals := domain.Totals{
		Income:  decimal.RequireFromString("100"),
		Expense: decimal.RequireFromString("40"),
		Balance: decimal.RequireFromString("60"),
	}

	resp := TotalsFromDomain(totals, 2)
	if !resp.Income.Equal(totals.Income) || !resp.Balance.Equal(totals.Balance) {
		t.Fatalf("unexpected totals response: %+v", resp)
	}
	if resp.Count != 2 {
		t.Fatalf("expected count 2, got %d", resp.Count)
	}
}

func TestSessionFromState(t *testing.T) {
	draft := usecase.Draft{
		Description: "coffee",
		Amount:      "3.50",
		Kind:        domain.KindExpense,
		Status:      domain.StatusCompleted,
		Date:        "2025-02-10",
	}

	resp := SessionFromState(usecase.ModeCreating, "", draft, errors.New("boom"))
	if resp.Mode != "creating" || resp.Draft.Amount != "3.50" || resp.Error != "boom" {
		t.Fatalf("unexpected session response: %+v", resp)
	}

	clean := SessionFromState(usecase.ModeClosed, "", usecase.Draft{}, nil)
	if clean.Error != "" {
		t.Fatalf("expected no error string, got %q", clean.Error)
	}
}
