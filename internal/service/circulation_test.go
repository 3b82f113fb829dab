package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/okiim/libris/internal/errs"
	"github.com/okiim/libris/internal/model"
	"github.com/okiim/libris/internal/service"

	repo_mocks "github.com/okiim/libris/internal/repository/mocks"
)

type circulationMocks struct {
	repo    *repo_mocks.MockCirculation
	catalog *repo_mocks.MockCatalog
	members *repo_mocks.MockMembership
	fines   *repo_mocks.MockFines
}

func newCirculationService(t *testing.T) (*service.CirculationService, circulationMocks) {
	t.Helper()
	c := gomock.NewController(t)
	m := circulationMocks{
		repo:    repo_mocks.NewMockCirculation(c),
		catalog: repo_mocks.NewMockCatalog(c),
		members: repo_mocks.NewMockMembership(c),
		fines:   repo_mocks.NewMockFines(c),
	}
	svc := service.NewCirculationService(m.repo, m.catalog, m.members, m.fines, nil, zap.NewNop())
	return svc, m
}

func TestCirculationService_CreateBorrowing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	book := model.Book{ID: 3, Title: "Dune", Quantity: 2, Available: 1}
	member := model.Member{ID: 8, Name: "Paul", MemberType: model.MemberTypeStudent, MaxBooks: 5}
	returned := model.StatusReturned

	var tests = []struct {
		name         string
		req          model.BorrowingRequest
		mockBehavior func(m circulationMocks)
		wantID       int
		wantErr      error
	}{
		{
			name: "ok",
			req:  model.BorrowingRequest{BookTitle: "Dune", MemberName: "Paul"},
			mockBehavior: func(m circulationMocks) {
				m.catalog.EXPECT().FindBookByTitle(gomock.Any(), "Dune").Return(book, nil)
				m.members.EXPECT().FindMemberByName(gomock.Any(), "Paul").Return(member, nil)
				m.members.EXPECT().CountActiveBorrowings(ctx, member.ID).Return(0, nil)
				m.repo.EXPECT().CreateBorrowing(ctx, gomock.Any()).Return(7, nil)
				m.catalog.EXPECT().AdjustAvailable(ctx, book.ID, -1).Return(nil)
			},
			wantID: 7,
		},
		{
			name: "err. book not available",
			req:  model.BorrowingRequest{BookTitle: "Dune", MemberName: "Paul"},
			mockBehavior: func(m circulationMocks) {
				m.catalog.EXPECT().FindBookByTitle(gomock.Any(), "Dune").
					Return(model.Book{ID: 3, Available: 0}, nil)
				m.members.EXPECT().FindMemberByName(gomock.Any(), "Paul").Return(member, nil)
			},
			wantErr: errs.ErrConflict,
		},
		{
			name: "err. borrowing limit reached",
			req:  model.BorrowingRequest{BookTitle: "Dune", MemberName: "Paul"},
			mockBehavior: func(m circulationMocks) {
				m.catalog.EXPECT().FindBookByTitle(gomock.Any(), "Dune").Return(book, nil)
				m.members.EXPECT().FindMemberByName(gomock.Any(), "Paul").Return(member, nil)
				m.members.EXPECT().CountActiveBorrowings(ctx, member.ID).Return(member.MaxBooks, nil)
			},
			wantErr: errs.ErrConflict,
		},
		{
			name: "err. book not found",
			req:  model.BorrowingRequest{BookTitle: "Missing", MemberName: "Paul"},
			mockBehavior: func(m circulationMocks) {
				m.catalog.EXPECT().FindBookByTitle(gomock.Any(), "Missing").
					Return(model.Book{}, errors.Wrap(errs.ErrNotFound, "book"))
				m.members.EXPECT().FindMemberByName(gomock.Any(), "Paul").
					Return(member, nil).AnyTimes()
			},
			wantErr: errs.ErrNotFound,
		},
		{
			name: "returned record skips availability",
			req:  model.BorrowingRequest{BookTitle: "Dune", MemberName: "Paul", Status: &returned},
			mockBehavior: func(m circulationMocks) {
				m.catalog.EXPECT().FindBookByTitle(gomock.Any(), "Dune").
					Return(model.Book{ID: 3, Available: 0}, nil)
				m.members.EXPECT().FindMemberByName(gomock.Any(), "Paul").Return(member, nil)
				m.repo.EXPECT().CreateBorrowing(ctx, gomock.Any()).Return(9, nil)
			},
			wantID: 9,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, m := newCirculationService(t)
			tt.mockBehavior(m)

			id, err := svc.CreateBorrowing(ctx, tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, id)
		})
	}
}

func TestCirculationService_CreateBorrowing_DueDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, m := newCirculationService(t)

	member := model.Member{ID: 2, Name: "Lena", MemberType: model.MemberTypeFaculty, MaxBooks: 10}
	m.catalog.EXPECT().FindBookByTitle(gomock.Any(), "Solaris").
		Return(model.Book{ID: 5, Available: 3}, nil)
	m.members.EXPECT().FindMemberByName(gomock.Any(), "Lena").Return(member, nil)
	m.members.EXPECT().CountActiveBorrowings(ctx, member.ID).Return(1, nil)

	var got model.Borrowing
	m.repo.EXPECT().CreateBorrowing(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, b model.Borrowing) (int, error) {
			got = b
			return 11, nil
		})
	m.catalog.EXPECT().AdjustAvailable(ctx, 5, -1).Return(nil)

	_, err := svc.CreateBorrowing(ctx, model.BorrowingRequest{BookTitle: "Solaris", MemberName: "Lena"})
	require.NoError(t, err)

	// faculty loans run 30 days from now
	wantDue := time.Now().AddDate(0, 0, member.MemberType.BorrowingDays())
	require.WithinDuration(t, wantDue, got.DueDate, time.Minute)
	require.Equal(t, model.StatusBorrowed, got.Status)
}

func TestCirculationService_ReturnBorrowing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const id = 4

	var tests = []struct {
		name         string
		req          model.ReturnRequest
		mockBehavior func(m circulationMocks)
		want         model.ReturnResult
		wantErr      error
	}{
		{
			name: "returned five days late",
			mockBehavior: func(m circulationMocks) {
				m.repo.EXPECT().GetActiveBorrowing(ctx, id).Return(model.Borrowing{
					ID:       id,
					BookID:   3,
					MemberID: 8,
					Status:   model.StatusOverdue,
					DueDate:  time.Now().Add(-5 * 24 * time.Hour),
				}, nil)
				m.repo.EXPECT().SetReturned(ctx, id, "System", 5.0, "").Return(nil)
				m.catalog.EXPECT().AdjustAvailable(ctx, 3, 1).Return(nil)
				m.fines.EXPECT().CreateFine(ctx, gomock.Any()).
					DoAndReturn(func(_ context.Context, f model.Fine) (int, error) {
						require.Equal(t, 8, f.MemberID)
						require.Equal(t, id, f.BorrowingID)
						require.Equal(t, model.FineTypeOverdue, f.FineType)
						require.Equal(t, 5.0, f.Amount)
						return 1, nil
					})
			},
			want: model.ReturnResult{Msg: "Book returned successfully", FineAmount: 5, DaysOverdue: 5},
		},
		{
			name: "returned before due date",
			mockBehavior: func(m circulationMocks) {
				m.repo.EXPECT().GetActiveBorrowing(ctx, id).Return(model.Borrowing{
					ID:       id,
					BookID:   3,
					MemberID: 8,
					Status:   model.StatusBorrowed,
					DueDate:  time.Now().AddDate(0, 0, 10),
				}, nil)
				m.repo.EXPECT().SetReturned(ctx, id, "System", 0.0, "").Return(nil)
				m.catalog.EXPECT().AdjustAvailable(ctx, 3, 1).Return(nil)
			},
			want: model.ReturnResult{Msg: "Book returned successfully", FineAmount: 0, DaysOverdue: 0},
		},
		{
			name: "custom receiver and notes",
			req: model.ReturnRequest{
				ReturnedTo: ptr("Front Desk"),
				Notes:      ptr("  cover damaged  "),
			},
			mockBehavior: func(m circulationMocks) {
				m.repo.EXPECT().GetActiveBorrowing(ctx, id).Return(model.Borrowing{
					ID:       id,
					BookID:   3,
					MemberID: 8,
					Status:   model.StatusBorrowed,
					DueDate:  time.Now().AddDate(0, 0, 1),
				}, nil)
				m.repo.EXPECT().SetReturned(ctx, id, "Front Desk", 0.0, "\nReturn notes: cover damaged").Return(nil)
				m.catalog.EXPECT().AdjustAvailable(ctx, 3, 1).Return(nil)
			},
			want: model.ReturnResult{Msg: "Book returned successfully"},
		},
		{
			name: "err. no active borrowing",
			mockBehavior: func(m circulationMocks) {
				m.repo.EXPECT().GetActiveBorrowing(ctx, id).
					Return(model.Borrowing{}, errs.ErrNotFound)
			},
			wantErr: errs.ErrNotFound,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, m := newCirculationService(t)
			tt.mockBehavior(m)

			res, err := svc.ReturnBorrowing(ctx, id, tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, res)
		})
	}
}

func TestCirculationService_UpdateBorrowing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const id = 6

	book := model.Book{ID: 3, Title: "Dune", Available: 1}
	member := model.Member{ID: 8, Name: "Paul", MaxBooks: 5}
	borrowed := model.StatusBorrowed
	returned := model.StatusReturned

	var tests = []struct {
		name         string
		req          model.BorrowingRequest
		mockBehavior func(m circulationMocks)
	}{
		{
			name: "borrowed to returned frees a copy",
			req:  model.BorrowingRequest{BookTitle: "Dune", MemberName: "Paul", Status: &returned},
			mockBehavior: func(m circulationMocks) {
				m.repo.EXPECT().GetBorrowing(ctx, id).
					Return(model.Borrowing{ID: id, Status: model.StatusBorrowed}, nil)
				m.catalog.EXPECT().FindBookByTitle(gomock.Any(), "Dune").Return(book, nil)
				m.members.EXPECT().FindMemberByName(gomock.Any(), "Paul").Return(member, nil)
				m.repo.EXPECT().UpdateBorrowing(ctx, id, gomock.Any()).Return(nil)
				m.catalog.EXPECT().AdjustAvailable(ctx, book.ID, 1).Return(nil)
			},
		},
		{
			name: "returned to borrowed takes a copy",
			req:  model.BorrowingRequest{BookTitle: "Dune", MemberName: "Paul", Status: &borrowed},
			mockBehavior: func(m circulationMocks) {
				m.repo.EXPECT().GetBorrowing(ctx, id).
					Return(model.Borrowing{ID: id, Status: model.StatusReturned}, nil)
				m.catalog.EXPECT().FindBookByTitle(gomock.Any(), "Dune").Return(book, nil)
				m.members.EXPECT().FindMemberByName(gomock.Any(), "Paul").Return(member, nil)
				m.repo.EXPECT().UpdateBorrowing(ctx, id, gomock.Any()).Return(nil)
				m.catalog.EXPECT().AdjustAvailable(ctx, book.ID, -1).Return(nil)
			},
		},
		{
			name: "same status leaves counter alone",
			req:  model.BorrowingRequest{BookTitle: "Dune", MemberName: "Paul", Status: &borrowed},
			mockBehavior: func(m circulationMocks) {
				m.repo.EXPECT().GetBorrowing(ctx, id).
					Return(model.Borrowing{ID: id, Status: model.StatusBorrowed}, nil)
				m.catalog.EXPECT().FindBookByTitle(gomock.Any(), "Dune").Return(book, nil)
				m.members.EXPECT().FindMemberByName(gomock.Any(), "Paul").Return(member, nil)
				m.repo.EXPECT().UpdateBorrowing(ctx, id, gomock.Any()).Return(nil)
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, m := newCirculationService(t)
			tt.mockBehavior(m)

			require.NoError(t, svc.UpdateBorrowing(ctx, id, tt.req))
		})
	}
}

func TestCirculationService_DeleteBorrowing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const id = 2

	var tests = []struct {
		name         string
		mockBehavior func(m circulationMocks)
	}{
		{
			name: "active borrowing frees a copy",
			mockBehavior: func(m circulationMocks) {
				m.repo.EXPECT().GetBorrowing(ctx, id).
					Return(model.Borrowing{ID: id, BookID: 3, Status: model.StatusBorrowed}, nil)
				m.repo.EXPECT().DeleteBorrowing(ctx, id).Return(nil)
				m.catalog.EXPECT().AdjustAvailable(ctx, 3, 1).Return(nil)
			},
		},
		{
			name: "returned borrowing leaves counter alone",
			mockBehavior: func(m circulationMocks) {
				m.repo.EXPECT().GetBorrowing(ctx, id).
					Return(model.Borrowing{ID: id, BookID: 3, Status: model.StatusReturned}, nil)
				m.repo.EXPECT().DeleteBorrowing(ctx, id).Return(nil)
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, m := newCirculationService(t)
			tt.mockBehavior(m)

			require.NoError(t, svc.DeleteBorrowing(ctx, id))
		})
	}
}

func TestCirculationService_MarkOverdue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var tests = []struct {
		name         string
		mockBehavior func(m circulationMocks)
		want         int
		wantErr      bool
	}{
		{
			name: "three flipped",
			mockBehavior: func(m circulationMocks) {
				m.repo.EXPECT().MarkOverdue(ctx).Return(3, nil)
			},
			want: 3,
		},
		{
			name: "nothing to flip",
			mockBehavior: func(m circulationMocks) {
				m.repo.EXPECT().MarkOverdue(ctx).Return(0, nil)
			},
			want: 0,
		},
		{
			name: "err. internal",
			mockBehavior: func(m circulationMocks) {
				m.repo.EXPECT().MarkOverdue(ctx).Return(0, errors.New("db internal"))
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, m := newCirculationService(t)
			tt.mockBehavior(m)

			n, err := svc.MarkOverdue(ctx)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, n)
		})
	}
}

func ptr(s string) *string { return &s }
