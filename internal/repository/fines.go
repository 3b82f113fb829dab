package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/okiim/libris/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=fines.go -destination=mocks/fines.go

type Fines interface {
	ListFines(ctx context.Context) ([]model.FineView, error)
	CreateFine(ctx context.Context, f model.Fine) (int, error)
	PayFine(ctx context.Context, id int, paidAmount float64) error
}

func (r *repository) ListFines(ctx context.Context) ([]model.FineView, error) {
	q := fmt.Sprintf(`
	select f.id, f.member_id, f.borrowing_id, f.fine_type, f.amount, f.paid_amount,
	       f.status, f.paid_date, f.description, f.created_at,
	       m.name as member_name, m.member_code as member_code
	from %s f
	left join %s m on f.member_id = m.id
	order by f.created_at desc`, finesTableName, membersTableName)

	var items []model.FineView
	if err := r.db.SelectContext(ctx, &items, q); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CreateFine(ctx context.Context, f model.Fine) (int, error) {
	q, args, err := qb.Insert(finesTableName).
		Columns("member_id", "borrowing_id", "fine_type", "amount", "description").
		Values(f.MemberID, f.BorrowingID, f.FineType, f.Amount, f.Description).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int
	if err := r.db.GetContext(ctx, &id, q, args...); err != nil {
		r.log.Error("CreateFine", zap.String("q", q), zap.Any("args", args))
		return 0, err
	}
	return id, nil
}

// PayFine overwrites paid_amount rather than accumulating it; callers paying
// in parts must send the cumulative total.
func (r *repository) PayFine(ctx context.Context, id int, paidAmount float64) error {
	q := fmt.Sprintf(`
	update %s
	set paid_amount = $2, paid_date = current_date,
	    status = case when $2 >= amount then 'Paid' else 'Pending' end
	where id = $1`, finesTableName)
	res, err := r.db.ExecContext(ctx, q, id, paidAmount)
	if err != nil {
		return err
	}
	return checkAffected(res, "fine")
}
