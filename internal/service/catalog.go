package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/okiim/libris/internal/errs"
	"github.com/okiim/libris/internal/model"
	"github.com/okiim/libris/internal/repository"
)

type CatalogService struct {
	log  *zap.Logger
	repo repository.Catalog
}

func NewCatalogService(repo repository.Catalog, log *zap.Logger) *CatalogService {
	return &CatalogService{
		log:  log,
		repo: repo,
	}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req model.CategoryRequest) (int, error) {
	return s.repo.CreateCategory(ctx, strings.TrimSpace(req.Name), trimPtr(req.Description))
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int, req model.CategoryRequest) error {
	return s.repo.UpdateCategory(ctx, id, strings.TrimSpace(req.Name), trimPtr(req.Description))
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *CatalogService) ListBooks(ctx context.Context) ([]model.Book, error) {
	return s.repo.ListBooks(ctx)
}

func (s *CatalogService) SearchBooks(ctx context.Context, term string) ([]model.Book, error) {
	return s.repo.SearchBooks(ctx, strings.TrimSpace(term))
}

func (s *CatalogService) CreateBook(ctx context.Context, req model.BookRequest) (int, error) {
	req.Title = strings.TrimSpace(req.Title)
	categoryID, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return 0, err
	}
	return s.repo.CreateBook(ctx, trimBook(req), categoryID)
}

func (s *CatalogService) UpdateBook(ctx context.Context, id int, req model.BookRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	categoryID, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return err
	}
	return s.repo.UpdateBook(ctx, id, trimBook(req), categoryID)
}

// DeleteBook refuses to remove a book that still has copies out.
func (s *CatalogService) DeleteBook(ctx context.Context, id int) error {
	count, err := s.repo.CountActiveBorrowingsByBook(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.Wrap(errs.ErrConflict, "cannot delete book with active borrowings")
	}
	return s.repo.DeleteBook(ctx, id)
}

// resolveCategory maps a category name to its id; an unknown name stores the
// book uncategorized.
func (s *CatalogService) resolveCategory(ctx context.Context, category *string) (*int, error) {
	if category == nil || strings.TrimSpace(*category) == "" {
		return nil, nil
	}
	return s.repo.FindCategoryIDByName(ctx, strings.TrimSpace(*category))
}

func trimBook(req model.BookRequest) model.BookRequest {
	req.Author = trimPtr(req.Author)
	req.ISBN = trimPtr(req.ISBN)
	req.Publisher = trimPtr(req.Publisher)
	req.Location = trimPtr(req.Location)
	req.Description = trimPtr(req.Description)
	return req
}

// trimPtr trims a string pointer; blank values collapse to nil.
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
