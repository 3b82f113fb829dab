package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/okiim/libris/internal/model"
	"github.com/okiim/libris/internal/repository"
)

type StatsService struct {
	log  *zap.Logger
	repo repository.Stats
}

func NewStatsService(repo repository.Stats, log *zap.Logger) *StatsService {
	return &StatsService{
		log:  log,
		repo: repo,
	}
}

func (s *StatsService) Dashboard(ctx context.Context) (model.DashboardStats, error) {
	return s.repo.Dashboard(ctx)
}

func (s *StatsService) PopularBooks(ctx context.Context) ([]model.PopularBook, error) {
	return s.repo.PopularBooks(ctx)
}

func (s *StatsService) MemberActivity(ctx context.Context) ([]model.MemberActivity, error) {
	return s.repo.MemberActivity(ctx)
}

func (s *StatsService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
