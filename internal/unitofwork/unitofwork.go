// Package unitofwork binds a book-keeping operation's record, ledger postings
// and stock movements into one database transaction.
//
// Writers are serialised by a single in-process lock held for the whole
// operation. Once the lock is taken the operation runs to commit or rollback;
// caller cancellation is no longer observed. Readers never take the lock and see
// only committed state.
package unitofwork

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/database"
	inventorystore "github.com/MrJamesThe3rd/farmbook/internal/inventory/store"
	ledgerstore "github.com/MrJamesThe3rd/farmbook/internal/ledger/store"
	"github.com/MrJamesThe3rd/farmbook/internal/metrics"
	tradestore "github.com/MrJamesThe3rd/farmbook/internal/trade/store"
)

// Tx exposes stores bound to the running transaction.
type Tx struct {
	Ledger    *ledgerstore.Store
	Inventory *inventorystore.Store
	Trade     *tradestore.Store
}

// Operation is one business event. Run returns the id of the record it created.
//
// Key, when set, makes the operation idempotent: a second Execute with the same
// key applies nothing and returns the first run's record id.
type Operation struct {
	Kind string
	Key  string
	Run  func(ctx context.Context, tx *Tx) (uuid.UUID, error)
}

type Result struct {
	RecordID uuid.UUID
	Replayed bool
}

type Coordinator struct {
	db      *sql.DB
	lock    chan struct{}
	log     *zap.Logger
	metrics *metrics.UnitOfWork
}

func New(db *sql.DB, log *zap.Logger, m *metrics.UnitOfWork) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}

	return &Coordinator{
		db:      db,
		lock:    make(chan struct{}, 1),
		log:     log,
		metrics: m,
	}
}

// Execute runs op atomically. The caller sees either every effect of op or none.
// Errors are always one of the apperr kinds or a wrapped storage error; a panic
// inside op is rolled back and returned as a ConsistencyError.
func (c *Coordinator) Execute(ctx context.Context, op Operation) (Result, error) {
	if op.Kind == "" || op.Run == nil {
		return Result{}, apperr.Inconsistent("execute", "operation needs a kind and a run function")
	}

	waitStart := time.Now()

	select {
	case c.lock <- struct{}{}:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	defer func() { <-c.lock }()

	c.metrics.ObserveLockWait(time.Since(waitStart))

	// From here on the operation completes or rolls back regardless of the caller.
	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	res, err := c.execute(ctx, op)

	outcome := metrics.OutcomeCommitted
	switch {
	case err != nil:
		outcome = apperr.KindOf(err)
	case res.Replayed:
		outcome = metrics.OutcomeReplayed
	}

	elapsed := time.Since(start)
	c.metrics.Observe(op.Kind, outcome, elapsed)

	fields := []zap.Field{
		zap.String("kind", op.Kind),
		zap.String("outcome", outcome),
		zap.Duration("duration", elapsed),
	}
	if op.Key != "" {
		fields = append(fields, zap.String("key", op.Key))
	}

	switch {
	case err == nil:
		c.log.Info("unit of work committed", append(fields, zap.Stringer("record_id", res.RecordID), zap.Bool("replayed", res.Replayed))...)
	case outcome == apperr.KindConsistency || outcome == apperr.KindInternal:
		c.log.Error("unit of work rolled back", append(fields, zap.Error(err))...)
	default:
		c.log.Info("unit of work rejected", append(fields, zap.Error(err))...)
	}

	return res, err
}

func (c *Coordinator) execute(ctx context.Context, op Operation) (Result, error) {
	sqlTx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("beginning unit of work: %w", err)
	}
	defer sqlTx.Rollback()

	if op.Key != "" {
		prior, err := findOperation(ctx, sqlTx, op.Key)
		if err != nil {
			return Result{}, err
		}

		if prior != nil {
			if prior.kind != op.Kind {
				return Result{}, apperr.Invalidf("idempotency_key", "key %q was already used for %s", op.Key, prior.kind)
			}

			return Result{RecordID: prior.recordID, Replayed: true}, nil
		}
	}

	id, err := c.run(ctx, op, &Tx{
		Ledger:    ledgerstore.New(sqlTx),
		Inventory: inventorystore.New(sqlTx),
		Trade:     tradestore.New(sqlTx),
	})
	if err != nil {
		return Result{}, err
	}

	if op.Key != "" {
		if err := recordOperation(ctx, sqlTx, op, id); err != nil {
			return Result{}, err
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return Result{}, fmt.Errorf("committing unit of work: %w", err)
	}

	return Result{RecordID: id}, nil
}

func (c *Coordinator) run(ctx context.Context, op Operation, tx *Tx) (id uuid.UUID, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("unit of work panicked",
				zap.String("kind", op.Kind),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)

			err = apperr.Inconsistent(op.Kind, "panic: %v", r)
		}
	}()

	return op.Run(ctx, tx)
}

type operationRow struct {
	kind     string
	recordID uuid.UUID
}

func findOperation(ctx context.Context, db database.DBTX, key string) (*operationRow, error) {
	var row operationRow

	err := db.QueryRowContext(ctx, `SELECT kind, record_id FROM operations WHERE idempotency_key = $1`, key).
		Scan(&row.kind, &row.recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("looking up operation key: %w", err)
	}

	return &row, nil
}

func recordOperation(ctx context.Context, db database.DBTX, op Operation, id uuid.UUID) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO operations (idempotency_key, kind, record_id, created_at) VALUES ($1, $2, $3, $4)`,
		op.Key, op.Kind, id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording operation key: %w", err)
	}

	return nil
}
