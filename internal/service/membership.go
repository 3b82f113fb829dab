package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/okiim/libris/internal/errs"
	"github.com/okiim/libris/internal/model"
	"github.com/okiim/libris/internal/repository"
)

type MembershipService struct {
	log  *zap.Logger
	repo repository.Membership
}

func NewMembershipService(repo repository.Membership, log *zap.Logger) *MembershipService {
	return &MembershipService{
		log:  log,
		repo: repo,
	}
}

func (s *MembershipService) ListMembers(ctx context.Context) ([]model.Member, error) {
	return s.repo.ListMembers(ctx)
}

func (s *MembershipService) SearchMembers(ctx context.Context, term string) ([]model.Member, error) {
	return s.repo.SearchMembers(ctx, strings.TrimSpace(term))
}

// CreateMember derives the borrowing policy from the member type and hands
// the code allocation to the repository. Membership runs out one year from
// creation.
func (s *MembershipService) CreateMember(ctx context.Context, req model.MemberRequest) (model.Member, error) {
	memberType := req.MemberType
	if memberType == "" {
		memberType = model.MemberTypeStudent
	}
	return s.repo.CreateMember(ctx, model.Member{
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Phone:      trimPtr(req.Phone),
		Address:    trimPtr(req.Address),
		MemberType: memberType,
		MaxBooks:   memberType.MaxBooks(),
		Status:     model.MemberActive,
		ExpiryDate: time.Now().AddDate(1, 0, 0),
	})
}

func (s *MembershipService) UpdateMember(ctx context.Context, id int, req model.MemberRequest) error {
	memberType := req.MemberType
	if memberType == "" {
		memberType = model.MemberTypeStudent
	}
	status := req.Status
	if status == "" {
		status = model.MemberActive
	}
	return s.repo.UpdateMember(ctx, id, model.Member{
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Phone:      trimPtr(req.Phone),
		Address:    trimPtr(req.Address),
		MemberType: memberType,
		MaxBooks:   memberType.MaxBooks(),
		Status:     status,
	})
}

// DeleteMember refuses to remove a member who still holds copies.
func (s *MembershipService) DeleteMember(ctx context.Context, id int) error {
	count, err := s.repo.CountActiveBorrowings(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.Wrap(errs.ErrConflict, "cannot delete member with active borrowings")
	}
	return s.repo.DeleteMember(ctx, id)
}
