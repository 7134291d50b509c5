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

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	CreateParty(ctx context.Context, p *Party) error
	GetParty(ctx context.Context, id uuid.UUID) (*Party, error)
	GetPartyByCode(ctx context.Context, code string) (*Party, error)
	ListParties(ctx context.Context, kind *PartyKind) ([]*Party, error)

	AppendEntry(ctx context.Context, e *Entry) error
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	FindReversal(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListEntries(ctx context.Context, partyID uuid.UUID, filter EntryFilter) ([]*Entry, error)
}

// Service answers ledger queries. It reads committed state only and never takes
// the unit-of-work lock; writes go through the coordinator.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreatePartyParams struct {
	Name string
	Kind PartyKind
}

func (p CreatePartyParams) Validate() error {
	var errs []error

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, apperr.Invalid("name", "is required"))
	} else if PartyCode(p.Name) == "" {
		errs = append(errs, apperr.Invalid("name", "must contain letters or digits"))
	}

	if !p.Kind.Valid() {
		errs = append(errs, apperr.Invalidf("kind", "must be %q or %q", PartyCustomer, PartySupplier))
	}

	return errors.Join(errs...)
}

// CreateParty registers a counterparty. Parties carry no balance of their own, so
// this is a single insert and does not need a unit of work.
func (s *Service) CreateParty(ctx context.Context, params CreatePartyParams) (*Party, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	p := &Party{
		ID:   uuid.New(),
		Code: PartyCode(params.Name),
		Name: strings.TrimSpace(params.Name),
		Kind: params.Kind,
	}

	if err := s.repo.CreateParty(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) GetParty(ctx context.Context, id uuid.UUID) (*Party, error) {
	return s.repo.GetParty(ctx, id)
}

func (s *Service) GetPartyByCode(ctx context.Context, code string) (*Party, error) {
	return s.repo.GetPartyByCode(ctx, code)
}

func (s *Service) ListParties(ctx context.Context, kind *PartyKind) ([]*Party, error) {
	return s.repo.ListParties(ctx, kind)
}

func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

// Balance is debit minus credit in currency c up to asOf inclusive, or over all
// history when asOf is nil. A party without entries has a zero balance.
func (s *Service) Balance(ctx context.Context, partyID uuid.UUID, c money.Currency, asOf *time.Time) (decimal.Decimal, error) {
	if !c.Valid() {
		return decimal.Zero, apperr.Invalidf("currency", "unknown currency %q", c)
	}

	entries, err := s.entries(ctx, partyID, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	return Balance(entries, c), nil
}

// RunningBalance returns the party's full history in (date, insertion order), each
// entry paired with the balance after it.
func (s *Service) RunningBalance(ctx context.Context, partyID uuid.UUID, c money.Currency) ([]Line, error) {
	if !c.Valid() {
		return nil, apperr.Invalidf("currency", "unknown currency %q", c)
	}

	entries, err := s.entries(ctx, partyID, nil)
	if err != nil {
		return nil, err
	}

	return Running(entries, c), nil
}

// Statement returns the entries within r. Balances are not reset at r.From.
func (s *Service) Statement(ctx context.Context, partyID uuid.UUID, r DateRange) (*Statement, error) {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return nil, apperr.Invalid("date_range", "end is before start")
	}

	r = DateRange{From: dayOrZero(r.From), To: dayOrZero(r.To)}

	entries, err := s.entries(ctx, partyID, nil)
	if err != nil {
		return nil, err
	}

	st := BuildStatement(partyID, entries, r)

	return &st, nil
}

// PartyBalance is one row of the balances overview.
type PartyBalance struct {
	Party   *Party
	Balance Totals
}

// Balances returns every party's balance in both currencies.
func (s *Service) Balances(ctx context.Context, kind *PartyKind, asOf *time.Time) ([]PartyBalance, error) {
	parties, err := s.repo.ListParties(ctx, kind)
	if err != nil {
		return nil, err
	}

	out := make([]PartyBalance, 0, len(parties))

	for _, p := range parties {
		entries, err := s.entries(ctx, p.ID, asOf)
		if err != nil {
			return nil, err
		}

		out = append(out, PartyBalance{
			Party: p,
			Balance: Totals{
				Primary:   Balance(entries, money.Primary),
				Secondary: Balance(entries, money.Secondary),
			},
		})
	}

	return out, nil
}

func (s *Service) entries(ctx context.Context, partyID uuid.UUID, asOf *time.Time) ([]*Entry, error) {
	if _, err := s.repo.GetParty(ctx, partyID); err != nil {
		return nil, err
	}

	filter := EntryFilter{}
	if asOf != nil {
		day := Day(*asOf)
		filter.AsOf = &day
	}

	entries, err := s.repo.ListEntries(ctx, partyID, filter)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	return entries, nil
}

func dayOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}

	return Day(t)
}
