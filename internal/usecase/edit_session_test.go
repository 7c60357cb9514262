package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dashfin/finmirror/internal/domain"
	"github.com/dashfin/finmirror/internal/usecase"
	"github.com/dashfin/finmirror/internal/usecase/mocks"
)

func TestEditSession_OpenCreateDefaults(t *testing.T) {
	session := usecase.NewEditSession(&mocks.StubMutator{}, nil)

	session.OpenCreate()

	if session.Mode() != usecase.ModeCreating {
		t.Fatalf("expected creating mode, got %q", session.Mode())
	}
	draft := session.Draft()
	if draft.Kind != domain.KindExpense {
		t.Errorf("expected default kind expense, got %q", draft.Kind)
	}
	if draft.Status != domain.StatusCompleted {
		t.Errorf("expected default status completed, got %q", draft.Status)
	}
	if draft.Date != time.Now().Format(domain.DateLayout) {
		t.Errorf("expected today's date, got %q", draft.Date)
	}
	if draft.Description != "" || draft.Amount != "" {
		t.Errorf("expected empty description and amount, got %+v", draft)
	}
}

func TestEditSession_OpenEditSeedsDraft(t *testing.T) {
	session := usecase.NewEditSession(&mocks.StubMutator{}, nil)

	session.OpenEdit(domain.Record{
		ID:          "rec-000007",
		Description: "rent",
		Amount:      decimal.NewFromInt(900),
		Kind:        domain.KindExpense,
		Status:      domain.StatusPending,
		OccurredOn:  "2025-03-01",
	})

	if session.Mode() != usecase.ModeEditing {
		t.Fatalf("expected editing mode, got %q", session.Mode())
	}
	if session.TargetID() != "rec-000007" {
		t.Errorf("expected target id, got %q", session.TargetID())
	}
	draft := session.Draft()
	if draft.Amount != "900" || draft.Date != "2025-03-01" {
		t.Errorf("unexpected draft %+v", draft)
	}
}

func TestEditSession_OpenEditLegacyDateFallsBackToCreation(t *testing.T) {
	session := usecase.NewEditSession(&mocks.StubMutator{}, nil)

	session.OpenEdit(domain.Record{
		ID:          "rec-000001",
		Description: "old import",
		Amount:      decimal.NewFromInt(10),
		Kind:        domain.KindIncome,
		Status:      domain.StatusCompleted,
		CreatedAt:   time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC),
	})

	if got := session.Draft().Date; got != "2024-06-15" {
		t.Errorf("expected creation date fallback, got %q", got)
	}
}

func TestEditSession_LastOpenWins(t *testing.T) {
	session := usecase.NewEditSession(&mocks.StubMutator{}, nil)

	session.OpenEdit(domain.Record{ID: "rec-000001", Description: "first"})
	if err := session.SetField("description", "half-typed change"); err != nil {
		t.Fatalf("set field: %v", err)
	}

	session.OpenCreate()

	if session.Mode() != usecase.ModeCreating {
		t.Fatalf("expected creating mode, got %q", session.Mode())
	}
	if session.TargetID() != "" {
		t.Errorf("expected no target after reopen, got %q", session.TargetID())
	}
	if session.Draft().Description != "" {
		t.Errorf("expected previous draft discarded, got %q", session.Draft().Description)
	}
}

func TestEditSession_SetField(t *testing.T) {
	tests := []struct {
		field string
		value string
	}{
		{"description", "coffee"},
		{"amount", "3.50"},
		{"kind", "income"},
		{"status", "pending"},
		{"date", "2025-04-01"},
	}

	session := usecase.NewEditSession(&mocks.StubMutator{}, nil)
	session.OpenCreate()

	for _, tt := range tests {
		if err := session.SetField(tt.field, tt.value); err != nil {
			t.Errorf("SetField(%q): %v", tt.field, err)
		}
	}

	draft := session.Draft()
	if draft.Description != "coffee" || draft.Amount != "3.50" {
		t.Errorf("unexpected draft %+v", draft)
	}
	if draft.Kind != domain.KindIncome || draft.Status != domain.StatusPending {
		t.Errorf("unexpected draft %+v", draft)
	}
	if draft.Date != "2025-04-01" {
		t.Errorf("unexpected draft %+v", draft)
	}
}

func TestEditSession_SetFieldUnknown(t *testing.T) {
	session := usecase.NewEditSession(&mocks.StubMutator{}, nil)
	session.OpenCreate()

	err := session.SetField("color", "red")
	if !errors.Is(err, domain.ErrUnknownField) {
		t.Errorf("expected unknown field error, got %v", err)
	}
}

func TestEditSession_ClosedSessionRejectsEverything(t *testing.T) {
	session := usecase.NewEditSession(&mocks.StubMutator{}, nil)

	if err := session.SetField("description", "x"); !errors.Is(err, domain.ErrSessionClosed) {
		t.Errorf("expected closed error from SetField, got %v", err)
	}
	if err := session.Submit(context.Background()); !errors.Is(err, domain.ErrSessionClosed) {
		t.Errorf("expected closed error from Submit, got %v", err)
	}
}

func TestEditSession_SubmitCreate(t *testing.T) {
	var got domain.RecordFields
	mutator := &mocks.StubMutator{
		CreateFunc: func(ctx context.Context, fields domain.RecordFields) (*domain.Record, error) {
			got = fields
			return &domain.Record{ID: "rec-000001"}, nil
		},
	}
	identity := &mocks.StubIdentity{Owner: &domain.Ownership{UID: "u-1", Email: "u@example.com"}}
	session := usecase.NewEditSession(mutator, identity)

	session.OpenCreate()
	session.SetField("description", "salary")
	session.SetField("amount", "2500")
	session.SetField("kind", "income")
	session.SetField("date", "2025-02-01")

	if err := session.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if got.Description != "salary" || got.Kind != domain.KindIncome {
		t.Errorf("unexpected fields %+v", got)
	}
	if !got.Amount.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("unexpected amount %s", got.Amount)
	}
	if got.Owner == nil || got.Owner.UID != "u-1" {
		t.Errorf("expected ownership attached, got %+v", got.Owner)
	}
	if session.Mode() != usecase.ModeClosed {
		t.Errorf("expected session closed after submit, got %q", session.Mode())
	}
	if session.Draft() != (usecase.Draft{}) {
		t.Errorf("expected draft discarded, got %+v", session.Draft())
	}
}

func TestEditSession_SubmitUpdate(t *testing.T) {
	var gotID string
	mutator := &mocks.StubMutator{
		UpdateFunc: func(ctx context.Context, id string, fields domain.RecordFields) error {
			gotID = id
			return nil
		},
	}
	session := usecase.NewEditSession(mutator, nil)

	session.OpenEdit(domain.Record{
		ID:          "rec-000009",
		Description: "rent",
		Amount:      decimal.NewFromInt(900),
		Kind:        domain.KindExpense,
		Status:      domain.StatusCompleted,
		OccurredOn:  "2025-03-01",
	})

	if err := session.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if gotID != "rec-000009" {
		t.Errorf("expected update dispatched to target id, got %q", gotID)
	}
}

func TestEditSession_SubmitValidation(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(s *usecase.EditSession)
		want    error
	}{
		{
			name: "empty description",
			prepare: func(s *usecase.EditSession) {
				s.SetField("description", "   ")
				s.SetField("amount", "10")
			},
			want: domain.ErrEmptyDescription,
		},
		{
			name: "unparsable amount",
			prepare: func(s *usecase.EditSession) {
				s.SetField("description", "coffee")
				s.SetField("amount", "ten")
			},
			want: domain.ErrInvalidAmount,
		},
		{
			name: "negative amount",
			prepare: func(s *usecase.EditSession) {
				s.SetField("description", "coffee")
				s.SetField("amount", "-1")
			},
			want: domain.ErrInvalidAmount,
		},
		{
			name: "cleared date",
			prepare: func(s *usecase.EditSession) {
				s.SetField("description", "coffee")
				s.SetField("amount", "10")
				s.SetField("date", "")
			},
			want: domain.ErrMissingDate,
		},
		{
			name: "malformed date",
			prepare: func(s *usecase.EditSession) {
				s.SetField("description", "coffee")
				s.SetField("amount", "10")
				s.SetField("date", "02/10/2025")
			},
			want: domain.ErrInvalidDate,
		},
		{
			name: "bad kind",
			prepare: func(s *usecase.EditSession) {
				s.SetField("description", "coffee")
				s.SetField("amount", "10")
				s.SetField("kind", "transfer")
			},
			want: domain.ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mutator := &mocks.StubMutator{
				CreateFunc: func(ctx context.Context, fields domain.RecordFields) (*domain.Record, error) {
					called = true
					return &domain.Record{ID: "x"}, nil
				},
			}
			session := usecase.NewEditSession(mutator, nil)
			session.OpenCreate()
			tt.prepare(session)

			err := session.Submit(context.Background())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if called {
				t.Error("validation failure must not reach the mutator")
			}
			if session.Mode() != usecase.ModeCreating {
				t.Errorf("session must stay open after failure, got %q", session.Mode())
			}
			if !errors.Is(session.Err(), tt.want) {
				t.Errorf("expected error recorded on session, got %v", session.Err())
			}
		})
	}
}

func TestEditSession_SubmitFailureKeepsDraft(t *testing.T) {
	boom := errors.New("backend down")
	mutator := &mocks.StubMutator{
		CreateFunc: func(ctx context.Context, fields domain.RecordFields) (*domain.Record, error) {
			return nil, boom
		},
	}
	session := usecase.NewEditSession(mutator, nil)

	session.OpenCreate()
	session.SetField("description", "coffee")
	session.SetField("amount", "3.50")

	if err := session.Submit(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}

	if session.Mode() != usecase.ModeCreating {
		t.Errorf("session must stay open, got %q", session.Mode())
	}
	if session.Draft().Description != "coffee" {
		t.Errorf("draft must survive the failure, got %+v", session.Draft())
	}
	if !errors.Is(session.Err(), boom) {
		t.Errorf("expected failure recorded, got %v", session.Err())
	}
}

func TestEditSession_Cancel(t *testing.T) {
	called := false
	mutator := &mocks.StubMutator{
		CreateFunc: func(ctx context.Context, fields domain.RecordFields) (*domain.Record, error) {
			called = true
			return &domain.Record{ID: "x"}, nil
		},
	}
	session := usecase.NewEditSession(mutator, nil)

	session.OpenCreate()
	session.SetField("description", "typed then abandoned")
	session.Cancel()

	if session.Mode() != usecase.ModeClosed {
		t.Errorf("expected closed after cancel, got %q", session.Mode())
	}
	if session.Draft() != (usecase.Draft{}) {
		t.Errorf("expected draft discarded, got %+v", session.Draft())
	}
	if called {
		t.Error("cancel must not write anything")
	}
}
