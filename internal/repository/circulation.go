package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/okiim/libris/internal/errs"
	"github.com/okiim/libris/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=circulation.go -destination=mocks/circulation.go

type Circulation interface {
	ListBorrowings(ctx context.Context) ([]model.BorrowingView, error)
	GetBorrowing(ctx context.Context, id int) (model.Borrowing, error)
	GetActiveBorrowing(ctx context.Context, id int) (model.Borrowing, error)
	CreateBorrowing(ctx context.Context, b model.Borrowing) (int, error)
	UpdateBorrowing(ctx context.Context, id int, upd model.BorrowingUpdate) error
	DeleteBorrowing(ctx context.Context, id int) error
	SetReturned(ctx context.Context, id int, returnedTo string, fineAmount float64, note string) error
	ListOverdue(ctx context.Context) ([]model.OverdueBorrowing, error)
	MarkOverdue(ctx context.Context) (int, error)
}

const borrowingColumns = `id, borrowing_uid, book_id, member_id, borrow_date, due_date,
return_date, status, fine_amount, notes, issued_by, returned_to, created_at, updated_at`

func (r *repository) ListBorrowings(ctx context.Context) ([]model.BorrowingView, error) {
	q := fmt.Sprintf(`
	select br.id, br.borrowing_uid, br.book_id, br.member_id, br.borrow_date, br.due_date,
	       br.return_date, br.status, br.fine_amount, br.notes, br.issued_by, br.returned_to,
	       br.created_at, br.updated_at,
	       b.title as book_title, b.author as book_author,
	       m.name as member_name, m.member_code as member_code, m.member_type as member_type
	from %s br
	left join %s b on br.book_id = b.id
	left join %s m on br.member_id = m.id
	order by br.borrow_date desc, br.created_at desc`,
		borrowingsTableName, booksTableName, membersTableName)

	var items []model.BorrowingView
	if err := r.db.SelectContext(ctx, &items, q); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) GetBorrowing(ctx context.Context, id int) (model.Borrowing, error) {
	q, args, err := qb.Select(borrowingColumns).
		From(borrowingsTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Borrowing{}, err
	}
	var b model.Borrowing
	if err := r.db.GetContext(ctx, &b, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Borrowing{}, errs.ErrNotFound
		}
		return model.Borrowing{}, err
	}
	return b, nil
}

func (r *repository) GetActiveBorrowing(ctx context.Context, id int) (model.Borrowing, error) {
	q, args, err := qb.Select(borrowingColumns).
		From(borrowingsTableName).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"status": []model.BorrowStatus{model.StatusBorrowed, model.StatusOverdue}}).
		ToSql()
	if err != nil {
		return model.Borrowing{}, err
	}
	var b model.Borrowing
	if err := r.db.GetContext(ctx, &b, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Borrowing{}, errs.ErrNotFound
		}
		return model.Borrowing{}, err
	}
	return b, nil
}

func (r *repository) CreateBorrowing(ctx context.Context, b model.Borrowing) (int, error) {
	q, args, err := qb.Insert(borrowingsTableName).
		Columns("borrowing_uid", "book_id", "member_id", "borrow_date", "due_date",
			"status", "notes", "fine_amount", "issued_by").
		Values(uuid.New(), b.BookID, b.MemberID, sq.Expr("current_date"), b.DueDate,
			b.Status, b.Notes, b.FineAmount, b.IssuedBy).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int
	if err := r.db.GetContext(ctx, &id, q, args...); err != nil {
		r.log.Error("CreateBorrowing", zap.String("q", q), zap.Any("args", args))
		return 0, err
	}
	return id, nil
}

// UpdateBorrowing applies an edit. Return date and returned_to are derived
// from the target status: Returned stamps them, anything else clears them.
func (r *repository) UpdateBorrowing(ctx context.Context, id int, upd model.BorrowingUpdate) error {
	builder := qb.Update(borrowingsTableName).
		Set("book_id", upd.BookID).
		Set("member_id", upd.MemberID).
		Set("due_date", upd.DueDate).
		Set("status", upd.Status).
		Set("notes", upd.Notes).
		Set("fine_amount", upd.FineAmount).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id})
	if upd.Status == model.StatusReturned {
		builder = builder.
			Set("return_date", sq.Expr("current_date")).
			Set("returned_to", "System")
	} else {
		builder = builder.
			Set("return_date", nil).
			Set("returned_to", nil)
	}
	q, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	return checkAffected(res, "borrowing")
}

func (r *repository) DeleteBorrowing(ctx context.Context, id int) error {
	q, args, err := qb.Delete(borrowingsTableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.Wrap(errs.ErrConflict, "borrowing has fines attached")
		}
		return err
	}
	return checkAffected(res, "borrowing")
}

func (r *repository) SetReturned(ctx context.Context, id int, returnedTo string, fineAmount float64, note string) error {
	q := fmt.Sprintf(`
	update %s
	set return_date = current_date, status = 'Returned', returned_to = $2,
	    fine_amount = $3, notes = coalesce(notes, '') || $4, updated_at = now()
	where id = $1`, borrowingsTableName)
	res, err := r.db.ExecContext(ctx, q, id, returnedTo, fineAmount, note)
	if err != nil {
		return err
	}
	return checkAffected(res, "borrowing")
}

func (r *repository) ListOverdue(ctx context.Context) ([]model.OverdueBorrowing, error) {
	q := fmt.Sprintf(`
	select br.id, br.borrowing_uid, br.book_id, br.member_id, br.borrow_date, br.due_date,
	       br.return_date, br.status, br.fine_amount, br.notes, br.issued_by, br.returned_to,
	       br.created_at, br.updated_at,
	       b.title as book_title, m.name as member_name, m.email, m.phone,
	       current_date - br.due_date as days_overdue
	from %s br
	join %s b on br.book_id = b.id
	join %s m on br.member_id = m.id
	where br.status = 'Overdue' or (br.status = 'Borrowed' and br.due_date < current_date)
	order by days_overdue desc`,
		borrowingsTableName, booksTableName, membersTableName)

	var items []model.OverdueBorrowing
	if err := r.db.SelectContext(ctx, &items, q); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) MarkOverdue(ctx context.Context) (int, error) {
	q := fmt.Sprintf(`
	update %s set status = 'Overdue', updated_at = now()
	where status = 'Borrowed' and due_date < current_date`, borrowingsTableName)
	res, err := r.db.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
