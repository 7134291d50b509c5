package bookkeeping

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
	"github.com/MrJamesThe3rd/farmbook/internal/unitofwork"
)

// PostLedgerEntry posts a manual adjustment against a party. Without a
// reference the entry is its own adjustment record.
func (s *Service) PostLedgerEntry(ctx context.Context, key string, params ledger.PostParams) (*ledger.Entry, error) {
	if params.Reference.Kind == "" {
		params.Reference = ledger.Reference{Kind: ledger.RefAdjustment, ID: uuid.New()}
	}

	params.Date = s.date(params.Date)

	if err := params.Validate(); err != nil {
		return nil, err
	}

	var entry *ledger.Entry

	res, err := s.uow.Execute(ctx, unitofwork.Operation{
		Kind: OpPostLedgerEntry,
		Key:  key,
		Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			e, err := ledger.Post(ctx, tx.Ledger, params)
			if err != nil {
				return uuid.Nil, err
			}

			entry = e

			return e.ID, nil
		},
	})
	if err != nil {
		return nil, err
	}

	if res.Replayed {
		return s.books.GetEntry(ctx, res.RecordID)
	}

	return entry, nil
}

// ReverseEntry cancels a posted entry with its mirror image. Entries are never
// edited; a mistaken one is reversed and posted again.
func (s *Service) ReverseEntry(ctx context.Context, key string, entryID uuid.UUID, date time.Time, reason string) (*ledger.Entry, error) {
	var entry *ledger.Entry

	res, err := s.uow.Execute(ctx, unitofwork.Operation{
		Kind: OpReverseEntry,
		Key:  key,
		Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			e, err := ledger.Reverse(ctx, tx.Ledger, entryID, s.date(date), reason)
			if err != nil {
				return uuid.Nil, err
			}

			entry = e

			return e.ID, nil
		},
	})
	if err != nil {
		return nil, err
	}

	if res.Replayed {
		return s.books.GetEntry(ctx, res.RecordID)
	}

	return entry, nil
}
