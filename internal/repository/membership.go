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

//go:generate go run github.com/golang/mock/mockgen -source=membership.go -destination=mocks/membership.go

type Membership interface {
	ListMembers(ctx context.Context) ([]model.Member, error)
	GetMember(ctx context.Context, id int) (model.Member, error)
	FindMemberByName(ctx context.Context, name string) (model.Member, error)
	CreateMember(ctx context.Context, m model.Member) (model.Member, error)
	UpdateMember(ctx context.Context, id int, m model.Member) error
	DeleteMember(ctx context.Context, id int) error
	SearchMembers(ctx context.Context, term string) ([]model.Member, error)
	CountActiveBorrowings(ctx context.Context, memberID int) (int, error)
}

const memberColumns = `id, member_code, name, email, phone, address, member_type,
max_books, status, expiry_date, created_at, updated_at`

func (r *repository) ListMembers(ctx context.Context) ([]model.Member, error) {
	q, args, err := qb.Select(memberColumns).
		From(membersTableName).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, err
	}
	var members []model.Member
	if err := r.db.SelectContext(ctx, &members, q, args...); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) GetMember(ctx context.Context, id int) (model.Member, error) {
	return r.getMember(ctx, sq.Eq{"id": id})
}

func (r *repository) FindMemberByName(ctx context.Context, name string) (model.Member, error) {
	return r.getMember(ctx, sq.Eq{"name": name})
}

func (r *repository) getMember(ctx context.Context, pred sq.Eq) (model.Member, error) {
	q, args, err := qb.Select(memberColumns).
		From(membersTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Member{}, err
	}
	var m model.Member
	if err := r.db.GetContext(ctx, &m, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Member{}, errs.ErrNotFound
		}
		return model.Member{}, err
	}
	return m, nil
}

// CreateMember allocates the next member code for the type prefix and inserts
// the member in one transaction. The sequence bump serializes concurrent
// creations of the same member type.
func (r *repository) CreateMember(ctx context.Context, m model.Member) (model.Member, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Member{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	var seq int
	if err := tx.QueryRowContext(ctx, `
	insert into member_sequences (prefix, next) values ($1, 1)
	on conflict (prefix) do update set next = member_sequences.next + 1
	returning next`, m.MemberType.CodePrefix()).Scan(&seq); err != nil {
		return model.Member{}, err
	}
	memberCode := fmt.Sprintf("%s%03d", m.MemberType.CodePrefix(), seq)

	q, args, err := qb.Insert(membersTableName).
		Columns("member_code", "name", "email", "phone", "address",
			"member_type", "max_books", "status", "expiry_date").
		Values(memberCode, m.Name, m.Email, m.Phone, m.Address,
			m.MemberType, m.MaxBooks, m.Status, m.ExpiryDate).
		Suffix("returning " + memberColumns).
		ToSql()
	if err != nil {
		return model.Member{}, err
	}
	var created model.Member
	if err := tx.GetContext(ctx, &created, q, args...); err != nil {
		r.log.Error("CreateMember", zap.String("q", q), zap.Any("args", args))
		if isUniqueViolation(err) {
			return model.Member{}, errors.Wrap(errs.ErrConflict, "email address already exists")
		}
		return model.Member{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Member{}, err
	}
	return created, nil
}

func (r *repository) UpdateMember(ctx context.Context, id int, m model.Member) error {
	q, args, err := qb.Update(membersTableName).
		Set("name", m.Name).
		Set("email", m.Email).
		Set("phone", m.Phone).
		Set("address", m.Address).
		Set("member_type", m.MemberType).
		Set("max_books", m.MaxBooks).
		Set("status", m.Status).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrap(errs.ErrConflict, "email address already exists")
		}
		return err
	}
	return checkAffected(res, "member")
}

func (r *repository) DeleteMember(ctx context.Context, id int) error {
	q, args, err := qb.Delete(membersTableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errors.Wrap(errs.ErrConflict, "member has borrowing history")
		}
		return err
	}
	return checkAffected(res, "member")
}

func (r *repository) SearchMembers(ctx context.Context, term string) ([]model.Member, error) {
	pattern := "%" + term + "%"
	q, args, err := qb.Select(memberColumns).
		From(membersTableName).
		Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"email": pattern},
			sq.ILike{"member_code": pattern},
			sq.ILike{"phone": pattern},
		}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, err
	}
	var members []model.Member
	if err := r.db.SelectContext(ctx, &members, q, args...); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) CountActiveBorrowings(ctx context.Context, memberID int) (int, error) {
	q := fmt.Sprintf(`select count(*) from %s where member_id = $1 and status in ('Borrowed', 'Overdue')`,
		borrowingsTableName)
	var count int
	if err := r.db.QueryRowContext(ctx, q, memberID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
