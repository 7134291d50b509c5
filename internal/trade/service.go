package trade

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=trade
type Repository interface {
	CreateSale(ctx context.Context, s *Sale) error
	GetSale(ctx context.Context, id uuid.UUID) (*Sale, error)
	ListSales(ctx context.Context, filter Filter) ([]*Sale, error)

	CreatePurchase(ctx context.Context, p *Purchase) error
	GetPurchase(ctx context.Context, id uuid.UUID) (*Purchase, error)
	ListPurchases(ctx context.Context, filter Filter) ([]*Purchase, error)

	CreateExpense(ctx context.Context, e *Expense) error
	GetExpense(ctx context.Context, id uuid.UUID) (*Expense, error)
	ListExpenses(ctx context.Context, filter Filter) ([]*Expense, error)

	CreatePayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListPayments(ctx context.Context, filter Filter) ([]*Payment, error)

	CreateShed(ctx context.Context, s *Shed) error
	GetShed(ctx context.Context, id uuid.UUID) (*Shed, error)
	GetShedByName(ctx context.Context, name string) (*Shed, error)
	ListSheds(ctx context.Context) ([]*Shed, error)

	CreateFeedIssue(ctx context.Context, fi *FeedIssue) error
	GetFeedIssue(ctx context.Context, id uuid.UUID) (*FeedIssue, error)
	ListFeedIssues(ctx context.Context, shedID *uuid.UUID) ([]*FeedIssue, error)
}

// Service lists committed trade records. Records are only ever created by
// book-keeping operations inside a unit of work.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (f Filter) Validate() error {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return apperr.Invalid("date_range", "end is before start")
	}

	return nil
}

func (s *Service) GetSale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	return s.repo.GetSale(ctx, id)
}

func (s *Service) ListSales(ctx context.Context, filter Filter) ([]*Sale, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	return s.repo.ListSales(ctx, filter)
}

func (s *Service) GetPurchase(ctx context.Context, id uuid.UUID) (*Purchase, error) {
	return s.repo.GetPurchase(ctx, id)
}

func (s *Service) ListPurchases(ctx context.Context, filter Filter) ([]*Purchase, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	return s.repo.ListPurchases(ctx, filter)
}

func (s *Service) GetExpense(ctx context.Context, id uuid.UUID) (*Expense, error) {
	return s.repo.GetExpense(ctx, id)
}

func (s *Service) ListExpenses(ctx context.Context, filter Filter) ([]*Expense, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	return s.repo.ListExpenses(ctx, filter)
}

func (s *Service) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

func (s *Service) ListPayments(ctx context.Context, filter Filter) ([]*Payment, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	return s.repo.ListPayments(ctx, filter)
}

func (s *Service) GetShed(ctx context.Context, id uuid.UUID) (*Shed, error) {
	return s.repo.GetShed(ctx, id)
}

func (s *Service) GetShedByName(ctx context.Context, name string) (*Shed, error) {
	return s.repo.GetShedByName(ctx, name)
}

func (s *Service) ListSheds(ctx context.Context) ([]*Shed, error) {
	return s.repo.ListSheds(ctx)
}

func (s *Service) GetFeedIssue(ctx context.Context, id uuid.UUID) (*FeedIssue, error) {
	return s.repo.GetFeedIssue(ctx, id)
}

// ListFeedIssues returns issues to one shed, or to all sheds when shedID is nil.
func (s *Service) ListFeedIssues(ctx context.Context, shedID *uuid.UUID) ([]*FeedIssue, error) {
	if shedID != nil {
		if _, err := s.repo.GetShed(ctx, *shedID); err != nil {
			return nil, err
		}
	}

	return s.repo.ListFeedIssues(ctx, shedID)
}
