package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
)

// EntryWriter is the write surface the posting engine needs. Stores bound to a
// unit-of-work transaction satisfy it.
type EntryWriter interface {
	GetParty(ctx context.Context, id uuid.UUID) (*Party, error)
	AppendEntry(ctx context.Context, e *Entry) error
}

// ReversalWriter additionally resolves the entry being reversed.
type ReversalWriter interface {
	EntryWriter
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	FindReversal(ctx context.Context, id uuid.UUID) (*Entry, error)
}

// PostParams describes one posting. Exactly one of Debit and Credit is set.
type PostParams struct {
	PartyID     uuid.UUID
	Date        time.Time
	Description string
	Debit       *money.Pair
	Credit      *money.Pair
	Reference   Reference
	ReversesID  *uuid.UUID
}

// DebitOf builds a debit posting of amount against party.
func DebitOf(partyID uuid.UUID, date time.Time, description string, amount money.Pair, ref Reference) PostParams {
	return PostParams{PartyID: partyID, Date: date, Description: description, Debit: &amount, Reference: ref}
}

// CreditOf builds a credit posting of amount against party.
func CreditOf(partyID uuid.UUID, date time.Time, description string, amount money.Pair, ref Reference) PostParams {
	return PostParams{PartyID: partyID, Date: date, Description: description, Credit: &amount, Reference: ref}
}

// Validate reports every problem with p, joined.
func (p PostParams) Validate() error {
	var errs []error

	if p.PartyID == uuid.Nil {
		errs = append(errs, apperr.Invalid("party_id", "is required"))
	}

	if p.Date.IsZero() {
		errs = append(errs, apperr.Invalid("date", "is required"))
	}

	if strings.TrimSpace(p.Description) == "" {
		errs = append(errs, apperr.Invalid("description", "is required"))
	}

	switch {
	case p.Debit != nil && p.Credit != nil:
		errs = append(errs, apperr.Invalid("direction", "both debit and credit are set"))
	case p.Debit == nil && p.Credit == nil:
		errs = append(errs, apperr.Invalid("direction", "neither debit nor credit is set"))
	default:
		amount := p.amount()
		if err := amount.Validate(); err != nil {
			errs = append(errs, err)
		} else if !amount.Primary.IsPositive() || !amount.Secondary.IsPositive() {
			errs = append(errs, apperr.Invalid("amount", "must be greater than zero in both currencies"))
		}
	}

	if p.Reference.Kind == "" {
		errs = append(errs, apperr.Invalid("reference", "kind is required"))
	}

	return errors.Join(errs...)
}

func (p PostParams) amount() money.Pair {
	if p.Debit != nil {
		return *p.Debit
	}

	return *p.Credit
}

func (p PostParams) entry() *Entry {
	amount := p.amount().Round()

	e := &Entry{
		ID:              uuid.New(),
		PartyID:         p.PartyID,
		Date:            Day(p.Date),
		Description:     strings.TrimSpace(p.Description),
		DebitPrimary:    decimal.Zero,
		CreditPrimary:   decimal.Zero,
		DebitSecondary:  decimal.Zero,
		CreditSecondary: decimal.Zero,
		Rate:            amount.Rate,
		Reference:       p.Reference,
		ReversesID:      p.ReversesID,
	}

	if p.Debit != nil {
		e.DebitPrimary = amount.Primary
		e.DebitSecondary = amount.Secondary
	} else {
		e.CreditPrimary = amount.Primary
		e.CreditSecondary = amount.Secondary
	}

	return e
}

// Post validates p and appends exactly one entry through w. Prior entries are never touched.
func Post(ctx context.Context, w EntryWriter, p PostParams) (*Entry, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if _, err := w.GetParty(ctx, p.PartyID); err != nil {
		return nil, err
	}

	e := p.entry()
	if err := w.AppendEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("appending ledger entry: %w", err)
	}

	return e, nil
}

// Reverse posts the mirror image of entry id: same pair, same rate, opposite side.
// An entry is reversed at most once, and reversals themselves are final.
func Reverse(ctx context.Context, w ReversalWriter, id uuid.UUID, date time.Time, reason string) (*Entry, error) {
	orig, err := w.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if orig.ReversesID != nil {
		return nil, apperr.Invalidf("entry_id", "entry %s is itself a reversal", id)
	}

	existing, err := w.FindReversal(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, apperr.Invalidf("entry_id", "entry %s was already reversed by %s", id, existing.ID)
	}

	if date.IsZero() {
		date = time.Now()
	}

	if strings.TrimSpace(reason) == "" {
		reason = "Reversal of " + orig.Description
	}

	amount := orig.Amount()
	params := PostParams{
		PartyID:     orig.PartyID,
		Date:        date,
		Description: reason,
		Reference:   Reference{Kind: RefReversal, ID: orig.ID},
		ReversesID:  &orig.ID,
	}

	if orig.Direction() == Debit {
		params.Credit = &amount
	} else {
		params.Debit = &amount
	}

	return Post(ctx, w, params)
}
