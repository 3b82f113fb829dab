package handler

import (
	"context"

	"github.com/okiim/libris/internal/model"
	"github.com/okiim/libris/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CatalogService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, req model.CategoryRequest) (int, error)
	UpdateCategory(ctx context.Context, id int, req model.CategoryRequest) error
	DeleteCategory(ctx context.Context, id int) error

	ListBooks(ctx context.Context) ([]model.Book, error)
	SearchBooks(ctx context.Context, term string) ([]model.Book, error)
	CreateBook(ctx context.Context, req model.BookRequest) (int, error)
	UpdateBook(ctx context.Context, id int, req model.BookRequest) error
	DeleteBook(ctx context.Context, id int) error
}

type MembershipService interface {
	ListMembers(ctx context.Context) ([]model.Member, error)
	SearchMembers(ctx context.Context, term string) ([]model.Member, error)
	CreateMember(ctx context.Context, req model.MemberRequest) (model.Member, error)
	UpdateMember(ctx context.Context, id int, req model.MemberRequest) error
	DeleteMember(ctx context.Context, id int) error
}

type CirculationService interface {
	ListBorrowings(ctx context.Context) ([]model.BorrowingView, error)
	CreateBorrowing(ctx context.Context, req model.BorrowingRequest) (int, error)
	UpdateBorrowing(ctx context.Context, id int, req model.BorrowingRequest) error
	DeleteBorrowing(ctx context.Context, id int) error
	ReturnBorrowing(ctx context.Context, id int, req model.ReturnRequest) (model.ReturnResult, error)
	ListOverdue(ctx context.Context) ([]model.OverdueBorrowing, error)
	MarkOverdue(ctx context.Context) (int, error)
}

type FineService interface {
	ListFines(ctx context.Context) ([]model.FineView, error)
	PayFine(ctx context.Context, id int, req model.PayFineRequest) error
}

type StatsService interface {
	Dashboard(ctx context.Context) (model.DashboardStats, error)
	PopularBooks(ctx context.Context) ([]model.PopularBook, error)
	MemberActivity(ctx context.Context) ([]model.MemberActivity, error)
	Ping(ctx context.Context) error
}

var (
	_ CatalogService     = (*service.CatalogService)(nil)
	_ MembershipService  = (*service.MembershipService)(nil)
	_ CirculationService = (*service.CirculationService)(nil)
	_ FineService        = (*service.FineService)(nil)
	_ StatsService       = (*service.StatsService)(nil)
)
