package unitofwork_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/database"
	"github.com/MrJamesThe3rd/farmbook/internal/inventory"
	inventorystore "github.com/MrJamesThe3rd/farmbook/internal/inventory/store"
	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
	ledgerstore "github.com/MrJamesThe3rd/farmbook/internal/ledger/store"
	"github.com/MrJamesThe3rd/farmbook/internal/metrics"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
	"github.com/MrJamesThe3rd/farmbook/internal/unitofwork"
)

func setup(t *testing.T) (*sql.DB, *unitofwork.Coordinator, *metrics.UnitOfWork) {
	t.Helper()

	db, err := database.New(database.DriverSQLite, database.SQLiteDSN(filepath.Join(t.TempDir(), "uow.db")))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	m := metrics.NewUnitOfWork(prometheus.NewRegistry())

	return db, unitofwork.New(db, zaptest.NewLogger(t), m), m
}

func createPartyOp(name string) unitofwork.Operation {
	return unitofwork.Operation{
		Kind: "create_party",
		Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			p := &ledger.Party{ID: uuid.New(), Code: ledger.PartyCode(name), Name: name, Kind: ledger.PartyCustomer}
			return p.ID, tx.Ledger.CreateParty(ctx, p)
		},
	}
}

func TestExecute_Commits(t *testing.T) {
	db, c, m := setup(t)

	res, err := c.Execute(context.Background(), createPartyOp("Bazaar"))
	require.NoError(t, err)
	assert.False(t, res.Replayed)

	got, err := ledgerstore.New(db).GetParty(context.Background(), res.RecordID)
	require.NoError(t, err)
	assert.Equal(t, "Bazaar", got.Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Count("create_party", metrics.OutcomeCommitted)))
}

func TestExecute_RollsBackOnError(t *testing.T) {
	db, c, m := setup(t)

	var partyID uuid.UUID

	_, err := c.Execute(context.Background(), unitofwork.Operation{
		Kind: "failing",
		Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			p := &ledger.Party{ID: uuid.New(), Code: "bazaar", Name: "Bazaar", Kind: ledger.PartyCustomer}
			if err := tx.Ledger.CreateParty(ctx, p); err != nil {
				return uuid.Nil, err
			}

			partyID = p.ID

			return uuid.Nil, apperr.Invalid("amount", "must not be zero")
		},
	})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = ledgerstore.New(db).GetParty(context.Background(), partyID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Count("failing", apperr.KindValidation)))
}

func TestExecute_PanicBecomesConsistencyError(t *testing.T) {
	db, c, _ := setup(t)

	var partyID uuid.UUID

	_, err := c.Execute(context.Background(), unitofwork.Operation{
		Kind: "panicking",
		Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			p := &ledger.Party{ID: uuid.New(), Code: "bazaar", Name: "Bazaar", Kind: ledger.PartyCustomer}
			if err := tx.Ledger.CreateParty(ctx, p); err != nil {
				return uuid.Nil, err
			}

			partyID = p.ID

			var pools map[string]*inventory.Pool
			pools["x"].Name = "boom"

			return p.ID, nil
		},
	})
	require.ErrorIs(t, err, apperr.ErrConsistency)

	_, err = ledgerstore.New(db).GetParty(context.Background(), partyID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// The coordinator is still usable afterwards.
	_, err = c.Execute(context.Background(), createPartyOp("Next"))
	assert.NoError(t, err)
}

func TestExecute_IdempotencyKey(t *testing.T) {
	db, c, m := setup(t)
	ctx := context.Background()

	op := createPartyOp("Bazaar")
	op.Key = "form-123"

	first, err := c.Execute(ctx, op)
	require.NoError(t, err)

	// A retry with a fresh closure must not create a second party.
	retry := createPartyOp("Bazaar")
	retry.Key = "form-123"

	second, err := c.Execute(ctx, retry)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.RecordID, second.RecordID)

	parties, err := ledgerstore.New(db).ListParties(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, parties, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Count("create_party", metrics.OutcomeReplayed)))

	t.Run("KeyReusedForOtherKind", func(t *testing.T) {
		other := unitofwork.Operation{
			Kind: "something_else",
			Key:  "form-123",
			Run: func(context.Context, *unitofwork.Tx) (uuid.UUID, error) {
				return uuid.New(), nil
			},
		}

		_, err := c.Execute(ctx, other)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("FailedRunDoesNotConsumeKey", func(t *testing.T) {
		failing := unitofwork.Operation{
			Kind: "create_party",
			Key:  "form-456",
			Run: func(context.Context, *unitofwork.Tx) (uuid.UUID, error) {
				return uuid.Nil, errors.New("disk on fire")
			},
		}

		_, err := c.Execute(ctx, failing)
		require.Error(t, err)

		ok := createPartyOp("Later")
		ok.Key = "form-456"

		res, err := c.Execute(ctx, ok)
		require.NoError(t, err)
		assert.False(t, res.Replayed)
	})
}

func TestExecute_CancelledBeforeStart(t *testing.T) {
	_, c, _ := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The lock is free, so either branch of the select may win; a cancelled
	// caller must never observe a partial result either way.
	res, err := c.Execute(ctx, createPartyOp("Bazaar"))
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
		return
	}

	assert.NotEqual(t, uuid.Nil, res.RecordID)
}

func TestExecute_IgnoresCancellationOnceStarted(t *testing.T) {
	db, c, _ := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, err := c.Execute(ctx, unitofwork.Operation{
		Kind: "create_party",
		Run: func(runCtx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			cancel()

			p := &ledger.Party{ID: uuid.New(), Code: "bazaar", Name: "Bazaar", Kind: ledger.PartyCustomer}

			return p.ID, tx.Ledger.CreateParty(runCtx, p)
		},
	})
	require.NoError(t, err)

	_, err = ledgerstore.New(db).GetParty(context.Background(), res.RecordID)
	assert.NoError(t, err)
}

func TestExecute_SerialisesWriters(t *testing.T) {
	db, c, _ := setup(t)
	ctx := context.Background()

	pool, err := inventory.NewPool(inventory.CreatePoolParams{Kind: inventory.KindRawMaterial, Name: "Maize"})
	require.NoError(t, err)
	require.NoError(t, inventorystore.New(db).CreatePool(ctx, pool))

	unit := money.Cost{Primary: decimal.NewFromInt(10), Secondary: decimal.NewFromInt(1)}

	const writers = 20

	var wg sync.WaitGroup

	errs := make(chan error, writers)

	for range writers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := c.Execute(ctx, unitofwork.Operation{
				Kind: "receive",
				Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
					mv, err := inventory.Receive(ctx, tx.Inventory, pool.ID, decimal.NewFromInt(5), unit,
						inventory.Reference{Kind: inventory.RefPurchase, ID: uuid.New()})
					if err != nil {
						return uuid.Nil, err
					}

					return mv.ID, nil
				},
			})
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got, err := inventorystore.New(db).GetPool(ctx, pool.ID)
	require.NoError(t, err)
	assert.True(t, got.Stock.Equal(decimal.NewFromInt(5*writers)), "stock %s", got.Stock)

	moves, err := inventorystore.New(db).ListMovements(ctx, pool.ID)
	require.NoError(t, err)
	assert.Len(t, moves, writers)
}

func TestExecute_ReadersSeeCommittedStateOnly(t *testing.T) {
	db, c, _ := setup(t)
	ctx := context.Background()

	pool, err := inventory.NewPool(inventory.CreatePoolParams{Kind: inventory.KindRawMaterial, Name: "Maize"})
	require.NoError(t, err)
	require.NoError(t, inventorystore.New(db).CreatePool(ctx, pool))

	unit := money.Cost{Primary: decimal.NewFromInt(10), Secondary: decimal.NewFromInt(1)}

	received := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, err := c.Execute(ctx, unitofwork.Operation{
			Kind: "receive",
			Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
				mv, err := inventory.Receive(ctx, tx.Inventory, pool.ID, decimal.NewFromInt(5), unit,
					inventory.Reference{Kind: inventory.RefPurchase, ID: uuid.New()})
				if err != nil {
					return uuid.Nil, err
				}

				close(received)
				<-release

				return mv.ID, nil
			},
		})
		done <- err
	}()

	select {
	case <-received:
	case err := <-done:
		close(release)
		t.Fatalf("write finished before pausing: %v", err)
	}

	// The writer holds its transaction open; a reader must not wait for it.
	readCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	during, err := inventorystore.New(db).GetPool(readCtx, pool.ID)
	require.NoError(t, err)
	assert.True(t, during.Stock.IsZero(), "stock %s", during.Stock)

	moves, err := inventorystore.New(db).ListMovements(readCtx, pool.ID)
	require.NoError(t, err)
	assert.Empty(t, moves)

	close(release)
	require.NoError(t, <-done)

	after, err := inventorystore.New(db).GetPool(ctx, pool.ID)
	require.NoError(t, err)
	assert.True(t, after.Stock.Equal(decimal.NewFromInt(5)), "stock %s", after.Stock)
}
