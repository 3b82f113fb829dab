package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/okiim/libris/internal/model"
	"github.com/okiim/libris/internal/repository"
)

type FineService struct {
	log  *zap.Logger
	repo repository.Fines
}

func NewFineService(repo repository.Fines, log *zap.Logger) *FineService {
	return &FineService{
		log:  log,
		repo: repo,
	}
}

func (s *FineService) ListFines(ctx context.Context) ([]model.FineView, error) {
	return s.repo.ListFines(ctx)
}

// PayFine records a payment. The paid amount replaces the previous one and
// the fine flips to Paid once it covers the assessed amount.
func (s *FineService) PayFine(ctx context.Context, id int, req model.PayFineRequest) error {
	return s.repo.PayFine(ctx, id, req.PaidAmount)
}
