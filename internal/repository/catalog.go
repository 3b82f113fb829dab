package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/okiim/libris/internal/errs"
	"github.com/okiim/libris/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=catalog.go -destination=mocks/catalog.go

type Catalog interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string, description *string) (int, error)
	UpdateCategory(ctx context.Context, id int, name string, description *string) error
	DeleteCategory(ctx context.Context, id int) error
	FindCategoryIDByName(ctx context.Context, name string) (*int, error)

	ListBooks(ctx context.Context) ([]model.Book, error)
	GetBook(ctx context.Context, id int) (model.Book, error)
	FindBookByTitle(ctx context.Context, title string) (model.Book, error)
	CreateBook(ctx context.Context, req model.BookRequest, categoryID *int) (int, error)
	UpdateBook(ctx context.Context, id int, req model.BookRequest, categoryID *int) error
	DeleteBook(ctx context.Context, id int) error
	SearchBooks(ctx context.Context, term string) ([]model.Book, error)
	AdjustAvailable(ctx context.Context, bookID, delta int) error
	CountActiveBorrowingsByBook(ctx context.Context, bookID int) (int, error)
}

const categoryColumns = "id, name, description, created_at, updated_at"

func (r *repository) ListCategories(ctx context.Context) ([]model.Category, error) {
	q, args, err := qb.Select(categoryColumns).
		From(categoriesTableName).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Category
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CreateCategory(ctx context.Context, name string, description *string) (int, error) {
	q, args, err := qb.Insert(categoriesTableName).
		Columns("name", "description").
		Values(name, description).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int
	if err := r.db.GetContext(ctx, &id, q, args...); err != nil {
		if isUniqueViolation(err) {
			return 0, errors.Wrap(errs.ErrConflict, "category name already exists")
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateCategory(ctx context.Context, id int, name string, description *string) error {
	q, args, err := qb.Update(categoriesTableName).
		Set("name", name).
		Set("description", description).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrap(errs.ErrConflict, "category name already exists")
		}
		return err
	}
	return checkAffected(res, "category")
}

func (r *repository) DeleteCategory(ctx context.Context, id int) error {
	q, args, err := qb.Delete(categoriesTableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	return checkAffected(res, "category")
}

func (r *repository) FindCategoryIDByName(ctx context.Context, name string) (*int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("select id from %s where name = $1", categoriesTableName), name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

const bookColumns = `b.id, b.title, b.author, b.isbn, b.publisher, b.publication_year,
b.quantity, b.available, b.category_id, c.name as category, b.location, b.description,
b.created_at, b.updated_at`

func (r *repository) ListBooks(ctx context.Context) ([]model.Book, error) {
	q, args, err := qb.Select(bookColumns).
		From(booksTableName + " b").
		LeftJoin(categoriesTableName + " c on b.category_id = c.id").
		OrderBy("b.title").
		ToSql()
	if err != nil {
		return nil, err
	}
	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, q, args...); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *repository) GetBook(ctx context.Context, id int) (model.Book, error) {
	return r.getBook(ctx, sq.Eq{"b.id": id})
}

func (r *repository) FindBookByTitle(ctx context.Context, title string) (model.Book, error) {
	return r.getBook(ctx, sq.Eq{"b.title": title})
}

func (r *repository) getBook(ctx context.Context, pred sq.Eq) (model.Book, error) {
	q, args, err := qb.Select(bookColumns).
		From(booksTableName + " b").
		LeftJoin(categoriesTableName + " c on b.category_id = c.id").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var book model.Book
	if err := r.db.GetContext(ctx, &book, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) CreateBook(ctx context.Context, req model.BookRequest, categoryID *int) (int, error) {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	q, args, err := qb.Insert(booksTableName).
		Columns("title", "author", "isbn", "publisher", "publication_year",
			"quantity", "available", "category_id", "location", "description").
		Values(req.Title, req.Author, req.ISBN, req.Publisher, req.PublicationYear,
			quantity, quantity, categoryID, req.Location, req.Description).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int
	if err := r.db.GetContext(ctx, &id, q, args...); err != nil {
		r.log.Error("CreateBook", zap.String("q", q), zap.Any("args", args))
		if isUniqueViolation(err) {
			return 0, errors.Wrap(errs.ErrConflict, "isbn already exists")
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateBook(ctx context.Context, id int, req model.BookRequest, categoryID *int) error {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	q, args, err := qb.Update(booksTableName).
		Set("title", req.Title).
		Set("author", req.Author).
		Set("isbn", req.ISBN).
		Set("publisher", req.Publisher).
		Set("publication_year", req.PublicationYear).
		Set("quantity", quantity).
		Set("category_id", categoryID).
		Set("location", req.Location).
		Set("description", req.Description).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrap(errs.ErrConflict, "isbn already exists")
		}
		return err
	}
	return checkAffected(res, "book")
}

func (r *repository) DeleteBook(ctx context.Context, id int) error {
	q, args, err := qb.Delete(booksTableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.Wrap(errs.ErrConflict, "book has borrowing history")
		}
		return err
	}
	return checkAffected(res, "book")
}

func (r *repository) SearchBooks(ctx context.Context, term string) ([]model.Book, error) {
	pattern := "%" + term + "%"
	q, args, err := qb.Select(bookColumns).
		From(booksTableName + " b").
		LeftJoin(categoriesTableName + " c on b.category_id = c.id").
		Where(sq.Or{
			sq.ILike{"b.title": pattern},
			sq.ILike{"b.author": pattern},
			sq.ILike{"b.isbn": pattern},
			sq.ILike{"c.name": pattern},
		}).
		OrderBy("b.title").
		ToSql()
	if err != nil {
		return nil, err
	}
	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, q, args...); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *repository) AdjustAvailable(ctx context.Context, bookID, delta int) error {
	q := fmt.Sprintf(`update %s set available = available + $2 where id = $1`, booksTableName)
	res, err := r.db.ExecContext(ctx, q, bookID, delta)
	if err != nil {
		return err
	}
	return checkAffected(res, "book")
}

func (r *repository) CountActiveBorrowingsByBook(ctx context.Context, bookID int) (int, error) {
	q := fmt.Sprintf(`select count(*) from %s where book_id = $1 and status in ('Borrowed', 'Overdue')`,
		borrowingsTableName)
	var count int
	if err := r.db.QueryRowContext(ctx, q, bookID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func checkAffected(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrap(errs.ErrNotFound, entity)
	}
	return nil
}
