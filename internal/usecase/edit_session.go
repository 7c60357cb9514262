package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dashfin/finmirror/internal/domain"
)

// SessionMode is the state of an edit session.
type SessionMode string

const (
	ModeClosed   SessionMode = "closed"
	ModeCreating SessionMode = "creating"
	ModeEditing  SessionMode = "editing"
)

// Draft holds the form fields as entered by the user, before validation
// and decimal parsing.
type Draft struct {
	Description string
	Amount      string
	Kind        domain.Kind
	Status      domain.Status
	Date        string
}

// EditSession reconciles one in-progress create or edit against the
// record it targets. It is single-owner state for one UI surface:
// reopening while a draft is open silently discards it, last open wins.
type EditSession struct {
	mutator  Mutator
	identity IdentityProvider
	now      func() time.Time

	mode     SessionMode
	targetID string
	draft    Draft
	err      error
}

// NewEditSession creates a closed session.
func NewEditSession(mutator Mutator, identity IdentityProvider) *EditSession {
	return &EditSession{
		mutator:  mutator,
		identity: identity,
		now:      time.Now,
		mode:     ModeClosed,
	}
}

// OpenCreate opens the session with default field values: an expense,
// completed, dated today.
func (s *EditSession) OpenCreate() {
	s.mode = ModeCreating
	s.targetID = ""
	s.err = nil
	s.draft = Draft{
		Kind:   domain.KindExpense,
		Status: domain.StatusCompleted,
		Date:   s.now().Format(domain.DateLayout),
	}
}

// OpenEdit opens the session seeded from an existing record. Legacy
// records without a transaction date fall back to their creation date.
func (s *EditSession) OpenEdit(record domain.Record) {
	s.mode = ModeEditing
	s.targetID = record.ID
	s.err = nil

	date := record.OccurredOn
	if date == "" {
		date = record.CreatedAt.Format(domain.DateLayout)
	}

	s.draft = Draft{
		Description: record.Description,
		Amount:      record.Amount.String(),
		Kind:        record.Kind,
		Status:      record.Status,
		Date:        date,
	}
}

// SetField mutates one draft field while the session is open.
func (s *EditSession) SetField(name, value string) error {
	if s.mode == ModeClosed {
		return domain.ErrSessionClosed
	}

	switch name {
	case "description":
		s.draft.Description = value
	case "amount":
		s.draft.Amount = value
	case "kind":
		s.draft.Kind = domain.Kind(value)
	case "status":
		s.draft.Status = domain.Status(value)
	case "date":
		s.draft.Date = value
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownField, name)
	}

	return nil
}

// Submit validates the draft, attaches the current session's ownership
// and dispatches to the mutation use case. On success the session closes
// and the draft is discarded; on failure both survive so the user can
// retry without re-entering data.
func (s *EditSession) Submit(ctx context.Context) error {
	if s.mode == ModeClosed {
		return domain.ErrSessionClosed
	}

	var owner *domain.Ownership
	if s.identity != nil {
		owner = s.identity.Identity(ctx)
	}

	fields, err := s.draft.fields(owner)
	if err != nil {
		s.err = err
		return err
	}

	switch s.mode {
	case ModeCreating:
		_, err = s.mutator.Create(ctx, fields)
	case ModeEditing:
		err = s.mutator.Update(ctx, s.targetID, fields)
	}

	if err != nil {
		s.err = err
		return err
	}

	s.reset()
	return nil
}

// Cancel closes the session unconditionally, discarding the draft.
func (s *EditSession) Cancel() {
	s.reset()
}

// Mode returns the current session state.
func (s *EditSession) Mode() SessionMode {
	return s.mode
}

// TargetID returns the id of the record being edited, empty when
// creating or closed.
func (s *EditSession) TargetID() string {
	return s.targetID
}

// Draft returns the current draft.
func (s *EditSession) Draft() Draft {
	return s.draft
}

// Err returns the error of the last failed submit, nil otherwise.
func (s *EditSession) Err() error {
	return s.err
}

func (s *EditSession) reset() {
	s.mode = ModeClosed
	s.targetID = ""
	s.draft = Draft{}
	s.err = nil
}

// fields validates the draft and converts it to record fields. All
// checks run before any network call.
func (d Draft) fields(owner *domain.Ownership) (domain.RecordFields, error) {
	if strings.TrimSpace(d.Description) == "" {
		return domain.RecordFields{}, domain.ErrEmptyDescription
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(d.Amount))
	if err != nil {
		return domain.RecordFields{}, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidAmount, d.Amount)
	}

	if d.Date == "" {
		return domain.RecordFields{}, domain.ErrMissingDate
	}

	fields := domain.RecordFields{
		Description: d.Description,
		Amount:      amount,
		Kind:        d.Kind,
		Status:      d.Status,
		OccurredOn:  d.Date,
		Owner:       owner,
	}

	if err := domain.ValidateFields(fields); err != nil {
		return domain.RecordFields{}, err
	}

	return fields, nil
}
