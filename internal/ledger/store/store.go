package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/database"
	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
)

type Store struct {
	db database.DBTX
}

// New returns a store bound to db, which may be a *sql.DB or a *sql.Tx.
func New(db database.DBTX) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectPartyColumns = `id, code, name, kind, created_at`

func scanParty(s scanner) (*ledger.Party, error) {
	var p ledger.Party

	var kind string

	if err := s.Scan(&p.ID, &p.Code, &p.Name, &kind, &p.CreatedAt); err != nil {
		return nil, err
	}

	p.Kind = ledger.PartyKind(kind)

	return &p, nil
}

// Expected column order matches selectEntryColumns.
const selectEntryColumns = `
	seq, id, party_id, entry_date, description,
	debit_primary, credit_primary, debit_secondary, credit_secondary, exchange_rate,
	ref_kind, ref_id, reverses_id, created_at
`

func scanEntry(s scanner) (*ledger.Entry, error) {
	var e ledger.Entry

	var refKind string

	if err := s.Scan(
		&e.Seq, &e.ID, &e.PartyID, &e.Date, &e.Description,
		&e.DebitPrimary, &e.CreditPrimary, &e.DebitSecondary, &e.CreditSecondary, &e.Rate,
		&refKind, &e.Reference.ID, &e.ReversesID, &e.CreatedAt,
	); err != nil {
		return nil, err
	}

	e.Reference.Kind = ledger.RefKind(refKind)
	e.Date = e.Date.UTC()
	e.CreatedAt = e.CreatedAt.UTC()

	return &e, nil
}

func (s *Store) CreateParty(ctx context.Context, p *ledger.Party) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO parties (id, code, name, kind, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := s.db.ExecContext(ctx, query, p.ID, p.Code, p.Name, p.Kind, p.CreatedAt); err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Invalidf("name", "a party with code %q already exists", p.Code)
		}

		return fmt.Errorf("creating party: %w", err)
	}

	return nil
}

func (s *Store) GetParty(ctx context.Context, id uuid.UUID) (*ledger.Party, error) {
	query := `SELECT ` + selectPartyColumns + ` FROM parties WHERE id = $1`

	p, err := scanParty(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("party", id)
		}

		return nil, fmt.Errorf("getting party: %w", err)
	}

	return p, nil
}

func (s *Store) GetPartyByCode(ctx context.Context, code string) (*ledger.Party, error) {
	query := `SELECT ` + selectPartyColumns + ` FROM parties WHERE code = $1`

	p, err := scanParty(s.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("party", code)
		}

		return nil, fmt.Errorf("getting party by code: %w", err)
	}

	return p, nil
}

func (s *Store) ListParties(ctx context.Context, kind *ledger.PartyKind) ([]*ledger.Party, error) {
	query := `SELECT ` + selectPartyColumns + ` FROM parties`

	var args []any

	if kind != nil {
		query += ` WHERE kind = $1`

		args = append(args, *kind)
	}

	query += ` ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing parties: %w", err)
	}
	defer rows.Close()

	var parties []*ledger.Party

	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning party: %w", err)
		}

		parties = append(parties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating party rows: %w", err)
	}

	return parties, nil
}

// AppendEntry inserts e and fills in its insertion sequence. Entries are never
// updated or deleted afterwards.
func (s *Store) AppendEntry(ctx context.Context, e *ledger.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO ledger_entries (
			id, party_id, entry_date, description,
			debit_primary, credit_primary, debit_secondary, credit_secondary, exchange_rate,
			ref_kind, ref_id, reverses_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING seq
	`

	err := s.db.QueryRowContext(ctx, query,
		e.ID,
		e.PartyID,
		e.Date.UTC(),
		e.Description,
		e.DebitPrimary,
		e.CreditPrimary,
		e.DebitSecondary,
		e.CreditSecondary,
		e.Rate,
		e.Reference.Kind,
		e.Reference.ID,
		e.ReversesID,
		e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		if database.IsUniqueViolation(err) && e.ReversesID != nil {
			return apperr.Invalid("entry_id", "entry has already been reversed")
		}

		return fmt.Errorf("appending entry: %w", err)
	}

	return nil
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM ledger_entries WHERE id = $1`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("ledger entry", id)
		}

		return nil, fmt.Errorf("getting entry: %w", err)
	}

	return e, nil
}

// FindReversal returns the entry reversing id, or nil when there is none.
func (s *Store) FindReversal(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM ledger_entries WHERE reverses_id = $1`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding reversal: %w", err)
	}

	return e, nil
}

// ListEntries returns a party's entries ordered by date and then insertion order.
func (s *Store) ListEntries(ctx context.Context, partyID uuid.UUID, filter ledger.EntryFilter) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM ledger_entries WHERE party_id = $1`

	args := []any{partyID}

	if filter.AsOf != nil {
		query += ` AND entry_date <= $2`

		args = append(args, filter.AsOf.UTC())
	}

	query += ` ORDER BY entry_date ASC, seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entry rows: %w", err)
	}

	return entries, nil
}
