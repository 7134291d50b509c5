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
	"github.com/MrJamesThe3rd/farmbook/internal/trade"
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

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

// where appends the filter's conditions to query. dateCol names the record's date column.
func where(query, dateCol string, f trade.Filter) (string, []any) {
	var args []any

	argIdx := 1
	sep := " WHERE "

	add := func(cond string, arg any) {
		query += sep + fmt.Sprintf(cond, argIdx)
		args = append(args, arg)
		argIdx++
		sep = " AND "
	}

	if f.PartyID != nil {
		add("party_id = $%d", *f.PartyID)
	}

	if f.From != nil {
		add(dateCol+" >= $%d", f.From.UTC())
	}

	if f.To != nil {
		add(dateCol+" <= $%d", f.To.UTC())
	}

	return query + " ORDER BY " + dateCol + " ASC, created_at ASC", args
}

func notFound(err error, kind string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(kind, id)
	}

	return fmt.Errorf("getting %s: %w", kind, err)
}

// Sales

const selectSaleColumns = `
	id, party_id, sale_date, product, pool_id, quantity,
	unit_price_primary, unit_price_secondary, total_primary, total_secondary, exchange_rate,
	cost_primary, cost_secondary, basis, entry_id, payment_id, movement_id, created_at
`

func scanSale(s scanner) (*trade.Sale, error) {
	var r trade.Sale

	var basis string

	if err := s.Scan(
		&r.ID, &r.PartyID, &r.Date, &r.Product, &r.PoolID, &r.Quantity,
		&r.UnitPrice.Primary, &r.UnitPrice.Secondary, &r.Total.Primary, &r.Total.Secondary, &r.Total.Rate,
		&r.Cost.Primary, &r.Cost.Secondary, &basis, &r.EntryID, &r.PaymentID, &r.MovementID, &r.CreatedAt,
	); err != nil {
		return nil, err
	}

	r.Basis = trade.Basis(basis)
	r.Date = r.Date.UTC()

	return &r, nil
}

func (s *Store) CreateSale(ctx context.Context, r *trade.Sale) error {
	stamp(&r.CreatedAt)

	query := `
		INSERT INTO sales (` + selectSaleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.PartyID, r.Date.UTC(), r.Product, r.PoolID, r.Quantity,
		r.UnitPrice.Primary, r.UnitPrice.Secondary, r.Total.Primary, r.Total.Secondary, r.Total.Rate,
		r.Cost.Primary, r.Cost.Secondary, r.Basis, r.EntryID, r.PaymentID, r.MovementID, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating sale: %w", err)
	}

	return nil
}

func (s *Store) GetSale(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	r, err := scanSale(s.db.QueryRowContext(ctx, `SELECT `+selectSaleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "sale", id)
	}

	return r, nil
}

func (s *Store) ListSales(ctx context.Context, filter trade.Filter) ([]*trade.Sale, error) {
	query, args := where(`SELECT `+selectSaleColumns+` FROM sales`, "sale_date", filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	defer rows.Close()

	var out []*trade.Sale

	for rows.Next() {
		r, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sale rows: %w", err)
	}

	return out, nil
}

// Purchases

const selectPurchaseColumns = `
	id, party_id, purchase_date, pool_id, quantity,
	unit_price_primary, unit_price_secondary, total_primary, total_secondary, exchange_rate,
	basis, entry_id, payment_id, movement_id, created_at
`

func scanPurchase(s scanner) (*trade.Purchase, error) {
	var r trade.Purchase

	var basis string

	if err := s.Scan(
		&r.ID, &r.PartyID, &r.Date, &r.PoolID, &r.Quantity,
		&r.UnitPrice.Primary, &r.UnitPrice.Secondary, &r.Total.Primary, &r.Total.Secondary, &r.Total.Rate,
		&basis, &r.EntryID, &r.PaymentID, &r.MovementID, &r.CreatedAt,
	); err != nil {
		return nil, err
	}

	r.Basis = trade.Basis(basis)
	r.Date = r.Date.UTC()

	return &r, nil
}

func (s *Store) CreatePurchase(ctx context.Context, r *trade.Purchase) error {
	stamp(&r.CreatedAt)

	query := `
		INSERT INTO purchases (` + selectPurchaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.PartyID, r.Date.UTC(), r.PoolID, r.Quantity,
		r.UnitPrice.Primary, r.UnitPrice.Secondary, r.Total.Primary, r.Total.Secondary, r.Total.Rate,
		r.Basis, r.EntryID, r.PaymentID, r.MovementID, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating purchase: %w", err)
	}

	return nil
}

func (s *Store) GetPurchase(ctx context.Context, id uuid.UUID) (*trade.Purchase, error) {
	r, err := scanPurchase(s.db.QueryRowContext(ctx, `SELECT `+selectPurchaseColumns+` FROM purchases WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "purchase", id)
	}

	return r, nil
}

func (s *Store) ListPurchases(ctx context.Context, filter trade.Filter) ([]*trade.Purchase, error) {
	query, args := where(`SELECT `+selectPurchaseColumns+` FROM purchases`, "purchase_date", filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	defer rows.Close()

	var out []*trade.Purchase

	for rows.Next() {
		r, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning purchase: %w", err)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating purchase rows: %w", err)
	}

	return out, nil
}

// Expenses

const selectExpenseColumns = `
	id, party_id, expense_date, category, description,
	amount_primary, amount_secondary, exchange_rate, basis, entry_id, payment_id, created_at
`

func scanExpense(s scanner) (*trade.Expense, error) {
	var r trade.Expense

	var basis string

	if err := s.Scan(
		&r.ID, &r.PartyID, &r.Date, &r.Category, &r.Description,
		&r.Amount.Primary, &r.Amount.Secondary, &r.Amount.Rate, &basis, &r.EntryID, &r.PaymentID, &r.CreatedAt,
	); err != nil {
		return nil, err
	}

	r.Basis = trade.Basis(basis)
	r.Date = r.Date.UTC()

	return &r, nil
}

func (s *Store) CreateExpense(ctx context.Context, r *trade.Expense) error {
	stamp(&r.CreatedAt)

	query := `
		INSERT INTO expenses (` + selectExpenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.PartyID, r.Date.UTC(), r.Category, r.Description,
		r.Amount.Primary, r.Amount.Secondary, r.Amount.Rate, r.Basis, r.EntryID, r.PaymentID, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating expense: %w", err)
	}

	return nil
}

func (s *Store) GetExpense(ctx context.Context, id uuid.UUID) (*trade.Expense, error) {
	r, err := scanExpense(s.db.QueryRowContext(ctx, `SELECT `+selectExpenseColumns+` FROM expenses WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "expense", id)
	}

	return r, nil
}

func (s *Store) ListExpenses(ctx context.Context, filter trade.Filter) ([]*trade.Expense, error) {
	query, args := where(`SELECT `+selectExpenseColumns+` FROM expenses`, "expense_date", filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	var out []*trade.Expense

	for rows.Next() {
		r, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expense rows: %w", err)
	}

	return out, nil
}

// Payments

const selectPaymentColumns = `
	id, party_id, payment_date, direction, description,
	amount_primary, amount_secondary, exchange_rate, ref_kind, ref_id, entry_id, created_at
`

func scanPayment(s scanner) (*trade.Payment, error) {
	var r trade.Payment

	var dir, origin string

	if err := s.Scan(
		&r.ID, &r.PartyID, &r.Date, &dir, &r.Description,
		&r.Amount.Primary, &r.Amount.Secondary, &r.Amount.Rate, &origin, &r.OriginID, &r.EntryID, &r.CreatedAt,
	); err != nil {
		return nil, err
	}

	r.Direction = trade.PaymentDirection(dir)
	r.Origin = trade.Origin(origin)
	r.Date = r.Date.UTC()

	return &r, nil
}

func (s *Store) CreatePayment(ctx context.Context, r *trade.Payment) error {
	stamp(&r.CreatedAt)

	query := `
		INSERT INTO payments (` + selectPaymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.PartyID, r.Date.UTC(), r.Direction, r.Description,
		r.Amount.Primary, r.Amount.Secondary, r.Amount.Rate, r.Origin, r.OriginID, r.EntryID, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating payment: %w", err)
	}

	return nil
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*trade.Payment, error) {
	r, err := scanPayment(s.db.QueryRowContext(ctx, `SELECT `+selectPaymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "payment", id)
	}

	return r, nil
}

func (s *Store) ListPayments(ctx context.Context, filter trade.Filter) ([]*trade.Payment, error) {
	query, args := where(`SELECT `+selectPaymentColumns+` FROM payments`, "payment_date", filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var out []*trade.Payment

	for rows.Next() {
		r, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return out, nil
}

// Sheds

func (s *Store) CreateShed(ctx context.Context, r *trade.Shed) error {
	stamp(&r.CreatedAt)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sheds (id, name, farm, created_at) VALUES ($1, $2, $3, $4)`,
		r.ID, r.Name, r.Farm, r.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Invalidf("name", "a shed named %q already exists", r.Name)
		}

		return fmt.Errorf("creating shed: %w", err)
	}

	return nil
}

func (s *Store) getShed(ctx context.Context, cond string, key any) (*trade.Shed, error) {
	var r trade.Shed

	err := s.db.QueryRowContext(ctx, `SELECT id, name, farm, created_at FROM sheds WHERE `+cond, key).
		Scan(&r.ID, &r.Name, &r.Farm, &r.CreatedAt)
	if err != nil {
		return nil, notFound(err, "shed", key)
	}

	return &r, nil
}

func (s *Store) GetShed(ctx context.Context, id uuid.UUID) (*trade.Shed, error) {
	return s.getShed(ctx, "id = $1", id)
}

func (s *Store) GetShedByName(ctx context.Context, name string) (*trade.Shed, error) {
	return s.getShed(ctx, "name = $1", name)
}

func (s *Store) ListSheds(ctx context.Context) ([]*trade.Shed, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, farm, created_at FROM sheds ORDER BY farm ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing sheds: %w", err)
	}
	defer rows.Close()

	var out []*trade.Shed

	for rows.Next() {
		var r trade.Shed
		if err := rows.Scan(&r.ID, &r.Name, &r.Farm, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning shed: %w", err)
		}

		out = append(out, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shed rows: %w", err)
	}

	return out, nil
}

// Feed issues

const selectFeedIssueColumns = `
	id, shed_id, pool_id, issue_date, quantity,
	unit_cost_primary, unit_cost_secondary, total_primary, total_secondary, movement_id, created_at
`

func scanFeedIssue(s scanner) (*trade.FeedIssue, error) {
	var r trade.FeedIssue

	if err := s.Scan(
		&r.ID, &r.ShedID, &r.PoolID, &r.Date, &r.Quantity,
		&r.UnitCost.Primary, &r.UnitCost.Secondary, &r.Total.Primary, &r.Total.Secondary, &r.MovementID, &r.CreatedAt,
	); err != nil {
		return nil, err
	}

	r.Date = r.Date.UTC()

	return &r, nil
}

func (s *Store) CreateFeedIssue(ctx context.Context, r *trade.FeedIssue) error {
	stamp(&r.CreatedAt)

	query := `
		INSERT INTO feed_issues (` + selectFeedIssueColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.ShedID, r.PoolID, r.Date.UTC(), r.Quantity,
		r.UnitCost.Primary, r.UnitCost.Secondary, r.Total.Primary, r.Total.Secondary, r.MovementID, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating feed issue: %w", err)
	}

	return nil
}

func (s *Store) GetFeedIssue(ctx context.Context, id uuid.UUID) (*trade.FeedIssue, error) {
	r, err := scanFeedIssue(s.db.QueryRowContext(ctx, `SELECT `+selectFeedIssueColumns+` FROM feed_issues WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "feed issue", id)
	}

	return r, nil
}

func (s *Store) ListFeedIssues(ctx context.Context, shedID *uuid.UUID) ([]*trade.FeedIssue, error) {
	query := `SELECT ` + selectFeedIssueColumns + ` FROM feed_issues`

	var args []any

	if shedID != nil {
		query += ` WHERE shed_id = $1`

		args = append(args, *shedID)
	}

	query += ` ORDER BY issue_date ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing feed issues: %w", err)
	}
	defer rows.Close()

	var out []*trade.FeedIssue

	for rows.Next() {
		r, err := scanFeedIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning feed issue: %w", err)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feed issue rows: %w", err)
	}

	return out, nil
}
