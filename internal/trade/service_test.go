package trade_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/trade"
)

func TestService_ListSales(t *testing.T) {
	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	april := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    trade.Filter
		setupMock func(m *trade.MockRepository)
		wantLen   int
		wantErr   error
	}{
		{
			name:   "Range",
			filter: trade.Filter{From: &march, To: &april},
			setupMock: func(m *trade.MockRepository) {
				m.EXPECT().ListSales(gomock.Any(), trade.Filter{From: &march, To: &april}).
					Return([]*trade.Sale{{ID: uuid.New()}, {ID: uuid.New()}}, nil)
			},
			wantLen: 2,
		},
		{
			name:      "InvertedRangeNeverReachesStore",
			filter:    trade.Filter{From: &april, To: &march},
			setupMock: func(m *trade.MockRepository) {},
			wantErr:   apperr.ErrValidation,
		},
		{
			name:   "OpenRange",
			filter: trade.Filter{},
			setupMock: func(m *trade.MockRepository) {
				m.EXPECT().ListSales(gomock.Any(), trade.Filter{}).Return(nil, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := trade.NewMockRepository(ctrl)
			tt.setupMock(repo)

			sales, err := trade.NewService(repo).ListSales(context.Background(), tt.filter)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Len(t, sales, tt.wantLen)
		})
	}
}

func TestService_ListFeedIssues(t *testing.T) {
	shedID := uuid.New()

	t.Run("UnknownShed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := trade.NewMockRepository(ctrl)
		repo.EXPECT().GetShed(gomock.Any(), shedID).Return(nil, apperr.NotFound("shed", shedID))

		_, err := trade.NewService(repo).ListFeedIssues(context.Background(), &shedID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("OneShed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := trade.NewMockRepository(ctrl)
		repo.EXPECT().GetShed(gomock.Any(), shedID).Return(&trade.Shed{ID: shedID}, nil)
		repo.EXPECT().ListFeedIssues(gomock.Any(), &shedID).Return([]*trade.FeedIssue{{ShedID: shedID}}, nil)

		issues, err := trade.NewService(repo).ListFeedIssues(context.Background(), &shedID)
		require.NoError(t, err)
		assert.Len(t, issues, 1)
	})

	t.Run("AllSheds", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := trade.NewMockRepository(ctrl)
		repo.EXPECT().ListFeedIssues(gomock.Any(), nil).Return(nil, errors.New("db down"))

		_, err := trade.NewService(repo).ListFeedIssues(context.Background(), nil)
		assert.EqualError(t, err, "db down")
	})
}
