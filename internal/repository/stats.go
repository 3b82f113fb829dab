package repository

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/okiim/libris/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=stats.go -destination=mocks/stats.go

type Stats interface {
	Dashboard(ctx context.Context) (model.DashboardStats, error)
	PopularBooks(ctx context.Context) ([]model.PopularBook, error)
	MemberActivity(ctx context.Context) ([]model.MemberActivity, error)
	Ping(ctx context.Context) error
}

func (r *repository) Dashboard(ctx context.Context) (model.DashboardStats, error) {
	var stats model.DashboardStats

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q := `
		select
			(select count(*) from books)                                              as books,
			(select count(*) from members where status = 'Active')                    as members,
			(select count(*) from borrowings where status in ('Borrowed', 'Overdue')) as active_borrowings,
			(select count(*) from borrowings
			 where status = 'Overdue'
			    or (status = 'Borrowed' and due_date < current_date))                 as overdue_books,
			(select coalesce(sum(amount - paid_amount), 0) from fines
			 where status = 'Pending')                                                as outstanding_fines`
		return r.db.GetContext(ctx, &stats.Totals, q)
	})
	g.Go(func() error {
		q := `
		select c.name as category, count(*) as count
		from books b
		left join categories c on b.category_id = c.id
		group by c.name`
		return r.db.SelectContext(ctx, &stats.BooksByCategory, q)
	})
	g.Go(func() error {
		q := `
		select member_type, count(*) as count
		from members where status = 'Active'
		group by member_type`
		return r.db.SelectContext(ctx, &stats.MembersByType, q)
	})
	g.Go(func() error {
		q := `select status, count(*) as count from borrowings group by status`
		return r.db.SelectContext(ctx, &stats.BorrowingsByStatus, q)
	})
	if err := g.Wait(); err != nil {
		return model.DashboardStats{}, err
	}
	return stats, nil
}

func (r *repository) PopularBooks(ctx context.Context) ([]model.PopularBook, error) {
	q := `
	select b.title, b.author, c.name as category, count(br.id) as borrow_count,
	       b.quantity, b.available
	from books b
	left join categories c on b.category_id = c.id
	left join borrowings br on b.id = br.book_id
	group by b.id, c.name
	order by borrow_count desc, b.title
	limit 20`
	var items []model.PopularBook
	if err := r.db.SelectContext(ctx, &items, q); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) MemberActivity(ctx context.Context) ([]model.MemberActivity, error) {
	q := `
	select m.member_code, m.name, m.member_type,
	       count(br.id)                                            as total_borrowings,
	       count(case when br.status = 'Borrowed' then 1 end)      as current_borrowings,
	       count(case when br.status = 'Overdue' then 1 end)       as overdue_count,
	       coalesce((select sum(f.amount - f.paid_amount) from fines f
	                 where f.member_id = m.id and f.status = 'Pending'), 0) as outstanding_fines
	from members m
	left join borrowings br on m.id = br.member_id
	where m.status = 'Active'
	group by m.id
	order by total_borrowings desc, m.name`
	var items []model.MemberActivity
	if err := r.db.SelectContext(ctx, &items, q); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
