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
	"github.com/MrJamesThe3rd/farmbook/internal/inventory"
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

const selectPoolColumns = `id, kind, name, unit, stock, unit_cost_primary, unit_cost_secondary, created_at, updated_at`

func scanPool(s scanner) (*inventory.Pool, error) {
	var p inventory.Pool

	var kind string

	if err := s.Scan(
		&p.ID, &kind, &p.Name, &p.Unit, &p.Stock,
		&p.UnitCost.Primary, &p.UnitCost.Secondary,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Kind = inventory.Kind(kind)

	return &p, nil
}

func (s *Store) CreatePool(ctx context.Context, p *inventory.Pool) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	query := `
		INSERT INTO inventory_pools (id, kind, name, unit, stock, unit_cost_primary, unit_cost_secondary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Kind, p.Name, p.Unit, p.Stock,
		p.UnitCost.Primary, p.UnitCost.Secondary,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Invalidf("name", "a pool named %q already exists", p.Name)
		}

		return fmt.Errorf("creating pool: %w", err)
	}

	return nil
}

func (s *Store) GetPool(ctx context.Context, id uuid.UUID) (*inventory.Pool, error) {
	query := `SELECT ` + selectPoolColumns + ` FROM inventory_pools WHERE id = $1`

	p, err := scanPool(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("inventory pool", id)
		}

		return nil, fmt.Errorf("getting pool: %w", err)
	}

	return p, nil
}

func (s *Store) GetPoolByName(ctx context.Context, name string) (*inventory.Pool, error) {
	query := `SELECT ` + selectPoolColumns + ` FROM inventory_pools WHERE name = $1`

	p, err := scanPool(s.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("inventory pool", name)
		}

		return nil, fmt.Errorf("getting pool by name: %w", err)
	}

	return p, nil
}

func (s *Store) ListPools(ctx context.Context, kind *inventory.Kind) ([]*inventory.Pool, error) {
	query := `SELECT ` + selectPoolColumns + ` FROM inventory_pools`

	var args []any

	if kind != nil {
		query += ` WHERE kind = $1`

		args = append(args, *kind)
	}

	query += ` ORDER BY kind ASC, name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing pools: %w", err)
	}
	defer rows.Close()

	var pools []*inventory.Pool

	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pool: %w", err)
		}

		pools = append(pools, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pool rows: %w", err)
	}

	return pools, nil
}

// UpdatePool writes the pool's stock and average cost.
func (s *Store) UpdatePool(ctx context.Context, p *inventory.Pool) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE inventory_pools
		SET stock = $1, unit_cost_primary = $2, unit_cost_secondary = $3, updated_at = $4
		WHERE id = $5
	`

	res, err := s.db.ExecContext(ctx, query, p.Stock, p.UnitCost.Primary, p.UnitCost.Secondary, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("updating pool: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating pool: %w", err)
	}

	if n == 0 {
		return apperr.NotFound("inventory pool", p.ID)
	}

	return nil
}

const selectMovementColumns = `
	seq, id, pool_id, direction, quantity, unit_cost_primary, unit_cost_secondary,
	stock_before, stock_after, avg_before_primary, avg_before_secondary,
	avg_after_primary, avg_after_secondary, ref_kind, ref_id, created_at
`

func scanMovement(s scanner) (*inventory.Movement, error) {
	var m inventory.Movement

	var dir, refKind string

	if err := s.Scan(
		&m.Seq, &m.ID, &m.PoolID, &dir, &m.Quantity, &m.UnitCost.Primary, &m.UnitCost.Secondary,
		&m.StockBefore, &m.StockAfter, &m.AvgBefore.Primary, &m.AvgBefore.Secondary,
		&m.AvgAfter.Primary, &m.AvgAfter.Secondary, &refKind, &m.Reference.ID, &m.CreatedAt,
	); err != nil {
		return nil, err
	}

	m.Direction = inventory.Direction(dir)
	m.Reference.Kind = inventory.RefKind(refKind)

	return &m, nil
}

func (s *Store) AppendMovement(ctx context.Context, mv *inventory.Movement) error {
	if mv.CreatedAt.IsZero() {
		mv.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO stock_movements (
			id, pool_id, direction, quantity, unit_cost_primary, unit_cost_secondary,
			stock_before, stock_after, avg_before_primary, avg_before_secondary,
			avg_after_primary, avg_after_secondary, ref_kind, ref_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING seq
	`

	err := s.db.QueryRowContext(ctx, query,
		mv.ID, mv.PoolID, mv.Direction, mv.Quantity, mv.UnitCost.Primary, mv.UnitCost.Secondary,
		mv.StockBefore, mv.StockAfter, mv.AvgBefore.Primary, mv.AvgBefore.Secondary,
		mv.AvgAfter.Primary, mv.AvgAfter.Secondary, mv.Reference.Kind, mv.Reference.ID, mv.CreatedAt,
	).Scan(&mv.Seq)
	if err != nil {
		return fmt.Errorf("appending movement: %w", err)
	}

	return nil
}

func (s *Store) ListMovements(ctx context.Context, poolID uuid.UUID) ([]*inventory.Movement, error) {
	query := `SELECT ` + selectMovementColumns + ` FROM stock_movements WHERE pool_id = $1 ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}
	defer rows.Close()

	var movements []*inventory.Movement

	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}

		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating movement rows: %w", err)
	}

	return movements, nil
}

// CreateFormula stores the recipe header and its ingredient lines in order.
// Callers run it inside a unit of work so a failed line leaves no header behind.
func (s *Store) CreateFormula(ctx context.Context, f *inventory.Formula) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO feed_formulas (id, name, created_at) VALUES ($1, $2, $3)`,
		f.ID, f.Name, f.CreatedAt,
	); err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Invalidf("name", "a formula named %q already exists", f.Name)
		}

		return fmt.Errorf("creating formula: %w", err)
	}

	query := `
		INSERT INTO formula_ingredients (formula_id, position, material_id, percentage)
		VALUES ($1, $2, $3, $4)
	`

	for i, in := range f.Ingredients {
		if _, err := s.db.ExecContext(ctx, query, f.ID, i, in.MaterialID, in.Percentage); err != nil {
			return fmt.Errorf("creating formula ingredient %d: %w", i+1, err)
		}
	}

	return nil
}

func (s *Store) GetFormula(ctx context.Context, id uuid.UUID) (*inventory.Formula, error) {
	return s.getFormula(ctx, `SELECT id, name, created_at FROM feed_formulas WHERE id = $1`, id)
}

func (s *Store) GetFormulaByName(ctx context.Context, name string) (*inventory.Formula, error) {
	return s.getFormula(ctx, `SELECT id, name, created_at FROM feed_formulas WHERE name = $1`, name)
}

func (s *Store) getFormula(ctx context.Context, query string, key any) (*inventory.Formula, error) {
	var f inventory.Formula

	if err := s.db.QueryRowContext(ctx, query, key).Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("formula", key)
		}

		return nil, fmt.Errorf("getting formula: %w", err)
	}

	ingredients, err := s.listIngredients(ctx, f.ID)
	if err != nil {
		return nil, err
	}

	f.Ingredients = ingredients

	return &f, nil
}

func (s *Store) listIngredients(ctx context.Context, formulaID uuid.UUID) ([]inventory.Ingredient, error) {
	query := `
		SELECT material_id, percentage FROM formula_ingredients
		WHERE formula_id = $1
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, formulaID)
	if err != nil {
		return nil, fmt.Errorf("listing ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []inventory.Ingredient

	for rows.Next() {
		var in inventory.Ingredient
		if err := rows.Scan(&in.MaterialID, &in.Percentage); err != nil {
			return nil, fmt.Errorf("scanning ingredient: %w", err)
		}

		ingredients = append(ingredients, in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ingredient rows: %w", err)
	}

	return ingredients, nil
}

func (s *Store) ListFormulas(ctx context.Context) ([]*inventory.Formula, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM feed_formulas ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing formulas: %w", err)
	}

	var formulas []*inventory.Formula

	for rows.Next() {
		var f inventory.Formula
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning formula: %w", err)
		}

		formulas = append(formulas, &f)
	}

	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating formula rows: %w", err)
	}

	// Close before the ingredient queries so a single-connection tx is free again.
	rows.Close()

	for _, f := range formulas {
		if f.Ingredients, err = s.listIngredients(ctx, f.ID); err != nil {
			return nil, err
		}
	}

	return formulas, nil
}

const selectBatchColumns = `
	id, formula_id, feed_pool_id, quantity,
	total_cost_primary, total_cost_secondary, unit_cost_primary, unit_cost_secondary, produced_at
`

func scanBatch(s scanner) (*inventory.Batch, error) {
	var b inventory.Batch

	if err := s.Scan(
		&b.ID, &b.FormulaID, &b.FeedPoolID, &b.Quantity,
		&b.TotalCost.Primary, &b.TotalCost.Secondary, &b.UnitCost.Primary, &b.UnitCost.Secondary, &b.ProducedAt,
	); err != nil {
		return nil, err
	}

	b.ProducedAt = b.ProducedAt.UTC()

	return &b, nil
}

func (s *Store) CreateBatch(ctx context.Context, b *inventory.Batch) error {
	query := `
		INSERT INTO feed_batches (` + selectBatchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		b.ID, b.FormulaID, b.FeedPoolID, b.Quantity,
		b.TotalCost.Primary, b.TotalCost.Secondary, b.UnitCost.Primary, b.UnitCost.Secondary, b.ProducedAt,
	)
	if err != nil {
		return fmt.Errorf("creating batch: %w", err)
	}

	return nil
}

func (s *Store) GetBatch(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	b, err := scanBatch(s.db.QueryRowContext(ctx, `SELECT `+selectBatchColumns+` FROM feed_batches WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("batch", id)
		}

		return nil, fmt.Errorf("getting batch: %w", err)
	}

	return b, nil
}

func (s *Store) ListBatches(ctx context.Context) ([]*inventory.Batch, error) {
	query := `SELECT ` + selectBatchColumns + ` FROM feed_batches ORDER BY produced_at DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	defer rows.Close()

	var batches []*inventory.Batch

	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning batch: %w", err)
		}

		batches = append(batches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batch rows: %w", err)
	}

	return batches, nil
}
