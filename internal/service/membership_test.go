package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/okiim/libris/internal/errs"
	"github.com/okiim/libris/internal/model"
	"github.com/okiim/libris/internal/service"

	repo_mocks "github.com/okiim/libris/internal/repository/mocks"
)

func TestMembershipService_CreateMember(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var tests = []struct {
		name         string
		req          model.MemberRequest
		wantType     model.MemberType
		wantMaxBooks int
	}{
		{
			name:         "defaults to student",
			req:          model.MemberRequest{Name: "  Ada  ", Email: "ada@example.com"},
			wantType:     model.MemberTypeStudent,
			wantMaxBooks: 5,
		},
		{
			name:         "faculty policy",
			req:          model.MemberRequest{Name: "Grace", Email: "grace@example.com", MemberType: model.MemberTypeFaculty},
			wantType:     model.MemberTypeFaculty,
			wantMaxBooks: 10,
		},
		{
			name:         "public policy",
			req:          model.MemberRequest{Name: "Ivan", Email: "ivan@example.com", MemberType: model.MemberTypePublic},
			wantType:     model.MemberTypePublic,
			wantMaxBooks: 3,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			repo := repo_mocks.NewMockMembership(c)
			svc := service.NewMembershipService(repo, zap.NewNop())

			var got model.Member
			repo.EXPECT().CreateMember(ctx, gomock.Any()).
				DoAndReturn(func(_ context.Context, m model.Member) (model.Member, error) {
					got = m
					m.ID = 1
					m.MemberCode = m.MemberType.CodePrefix() + "001"
					return m, nil
				})

			created, err := svc.CreateMember(ctx, tt.req)
			require.NoError(t, err)

			require.Equal(t, tt.wantType, got.MemberType)
			require.Equal(t, tt.wantMaxBooks, got.MaxBooks)
			require.Equal(t, model.MemberActive, got.Status)
			require.NotEmpty(t, got.Name)
			require.Equal(t, got.Name, created.Name)
			require.WithinDuration(t, time.Now().AddDate(1, 0, 0), got.ExpiryDate, time.Minute)
		})
	}
}

func TestMembershipService_DeleteMember(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const id = 5

	var tests = []struct {
		name         string
		mockBehavior func(repo *repo_mocks.MockMembership)
		wantErr      error
	}{
		{
			name: "ok",
			mockBehavior: func(repo *repo_mocks.MockMembership) {
				repo.EXPECT().CountActiveBorrowings(ctx, id).Return(0, nil)
				repo.EXPECT().DeleteMember(ctx, id).Return(nil)
			},
		},
		{
			name: "err. holds copies",
			mockBehavior: func(repo *repo_mocks.MockMembership) {
				repo.EXPECT().CountActiveBorrowings(ctx, id).Return(2, nil)
			},
			wantErr: errs.ErrConflict,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			repo := repo_mocks.NewMockMembership(c)
			svc := service.NewMembershipService(repo, zap.NewNop())
			tt.mockBehavior(repo)

			err := svc.DeleteMember(ctx, id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
