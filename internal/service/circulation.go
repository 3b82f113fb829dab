package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/okiim/libris/internal/errs"
	"github.com/okiim/libris/internal/model"
	"github.com/okiim/libris/internal/repository"
	"github.com/okiim/libris/pkg/kafka"
)

const defaultActor = "System"

// CirculationService owns the borrowing life cycle: it enforces availability
// and borrowing-limit invariants, computes due dates and fines, and keeps the
// book availability counter in step with loan transitions. Counter and fine
// writes that follow a committed borrowing write are best effort: failures
// are logged and never fail the parent operation.
type CirculationService struct {
	log     *zap.Logger
	repo    repository.Circulation
	catalog repository.Catalog
	members repository.Membership
	fines   repository.Fines
	events  *Events
}

func NewCirculationService(
	repo repository.Circulation,
	catalog repository.Catalog,
	members repository.Membership,
	fines repository.Fines,
	events *Events,
	log *zap.Logger,
) *CirculationService {
	return &CirculationService{
		log:     log,
		repo:    repo,
		catalog: catalog,
		members: members,
		fines:   fines,
		events:  events,
	}
}

func (s *CirculationService) ListBorrowings(ctx context.Context) ([]model.BorrowingView, error) {
	return s.repo.ListBorrowings(ctx)
}

func (s *CirculationService) CreateBorrowing(ctx context.Context, req model.BorrowingRequest) (int, error) {
	book, member, err := s.resolve(ctx, req.BookTitle, req.MemberName)
	if err != nil {
		return 0, err
	}

	status := model.StatusBorrowed
	if req.Status != nil {
		status = *req.Status
	}
	if status == model.StatusBorrowed {
		if book.Available <= 0 {
			return 0, errors.Wrap(errs.ErrConflict, "book is not available")
		}
		count, err := s.members.CountActiveBorrowings(ctx, member.ID)
		if err != nil {
			return 0, err
		}
		if count >= member.MaxBooks {
			return 0, errors.Wrapf(errs.ErrConflict,
				"member has reached borrowing limit of %d books", member.MaxBooks)
		}
	}

	dueDate := time.Now().AddDate(0, 0, member.MemberType.BorrowingDays())
	if req.DueDate != nil && !req.DueDate.IsZero() {
		dueDate = req.DueDate.Time
	}

	issuedBy := defaultActor
	id, err := s.repo.CreateBorrowing(ctx, model.Borrowing{
		BookID:     book.ID,
		MemberID:   member.ID,
		DueDate:    dueDate,
		Status:     status,
		Notes:      trimPtr(req.Notes),
		FineAmount: req.FineAmount,
		IssuedBy:   &issuedBy,
	})
	if err != nil {
		return 0, err
	}

	if status == model.StatusBorrowed {
		if err := s.catalog.AdjustAvailable(ctx, book.ID, -1); err != nil {
			s.log.Error("adjust availability after borrow", zap.Int("bookID", book.ID), zap.Error(err))
		}
		s.events.Publish(ctx, kafka.EventCirculation{
			Type:        kafka.EventBorrowed,
			BorrowingID: id,
			BookID:      book.ID,
			MemberID:    member.ID,
			At:          time.Now().UTC(),
		})
	}
	return id, nil
}

// UpdateBorrowing applies an edit and reconciles availability against the
// status transition: Borrowed->Returned frees a copy, Returned->Borrowed
// takes one. Every other transition leaves the counter untouched.
func (s *CirculationService) UpdateBorrowing(ctx context.Context, id int, req model.BorrowingRequest) error {
	current, err := s.repo.GetBorrowing(ctx, id)
	if err != nil {
		return err
	}
	book, member, err := s.resolve(ctx, req.BookTitle, req.MemberName)
	if err != nil {
		return err
	}

	newStatus := model.StatusBorrowed
	if req.Status != nil {
		newStatus = *req.Status
	}
	dueDate := current.DueDate
	if req.DueDate != nil && !req.DueDate.IsZero() {
		dueDate = req.DueDate.Time
	}

	if err := s.repo.UpdateBorrowing(ctx, id, model.BorrowingUpdate{
		BookID:     book.ID,
		MemberID:   member.ID,
		DueDate:    dueDate,
		Status:     newStatus,
		Notes:      trimPtr(req.Notes),
		FineAmount: req.FineAmount,
	}); err != nil {
		return err
	}

	switch {
	case current.Status == model.StatusBorrowed && newStatus == model.StatusReturned:
		if err := s.catalog.AdjustAvailable(ctx, book.ID, 1); err != nil {
			s.log.Error("adjust availability after edit", zap.Int("bookID", book.ID), zap.Error(err))
		}
	case current.Status == model.StatusReturned && newStatus == model.StatusBorrowed:
		if err := s.catalog.AdjustAvailable(ctx, book.ID, -1); err != nil {
			s.log.Error("adjust availability after edit", zap.Int("bookID", book.ID), zap.Error(err))
		}
	}
	return nil
}

// DeleteBorrowing removes a borrowing. Removing an active borrowing frees the
// copy it held, but records no return date and assesses no fine.
func (s *CirculationService) DeleteBorrowing(ctx context.Context, id int) error {
	b, err := s.repo.GetBorrowing(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBorrowing(ctx, id); err != nil {
		return err
	}
	if b.Status.Active() {
		if err := s.catalog.AdjustAvailable(ctx, b.BookID, 1); err != nil {
			s.log.Error("adjust availability after delete", zap.Int("bookID", b.BookID), zap.Error(err))
		}
	}
	return nil
}

func (s *CirculationService) ReturnBorrowing(ctx context.Context, id int, req model.ReturnRequest) (model.ReturnResult, error) {
	b, err := s.repo.GetActiveBorrowing(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.ReturnResult{}, errors.Wrap(errs.ErrNotFound, "active borrowing")
		}
		return model.ReturnResult{}, err
	}

	daysOverdue := daysLate(time.Now(), b.DueDate)
	fineAmount := float64(daysOverdue) * model.DailyFineRate

	returnedTo := defaultActor
	if req.ReturnedTo != nil && *req.ReturnedTo != "" {
		returnedTo = *req.ReturnedTo
	}
	var note string
	if n := trimPtr(req.Notes); n != nil {
		note = "\nReturn notes: " + *n
	}

	if err := s.repo.SetReturned(ctx, id, returnedTo, fineAmount, note); err != nil {
		return model.ReturnResult{}, err
	}

	if err := s.catalog.AdjustAvailable(ctx, b.BookID, 1); err != nil {
		s.log.Error("adjust availability after return", zap.Int("bookID", b.BookID), zap.Error(err))
	}
	if fineAmount > 0 {
		desc := fmt.Sprintf("Book returned %d days late", daysOverdue)
		if _, err := s.fines.CreateFine(ctx, model.Fine{
			MemberID:    b.MemberID,
			BorrowingID: id,
			FineType:    model.FineTypeOverdue,
			Amount:      fineAmount,
			Description: &desc,
		}); err != nil {
			s.log.Error("create fine record", zap.Int("borrowingID", id), zap.Error(err))
		}
	}
	s.events.Publish(ctx, kafka.EventCirculation{
		Type:        kafka.EventReturned,
		BorrowingID: id,
		BookID:      b.BookID,
		MemberID:    b.MemberID,
		FineAmount:  fineAmount,
		At:          time.Now().UTC(),
	})

	return model.ReturnResult{
		Msg:         "Book returned successfully",
		FineAmount:  fineAmount,
		DaysOverdue: daysOverdue,
	}, nil
}

func (s *CirculationService) ListOverdue(ctx context.Context) ([]model.OverdueBorrowing, error) {
	return s.repo.ListOverdue(ctx)
}

// MarkOverdue flips every Borrowed borrowing past its due date to Overdue.
// Availability is untouched: an overdue copy is still checked out. Re-running
// is a no-op for rows already flipped.
func (s *CirculationService) MarkOverdue(ctx context.Context) (int, error) {
	n, err := s.repo.MarkOverdue(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.events.Publish(ctx, kafka.EventCirculation{
			Type: kafka.EventMarkedOverdue,
			At:   time.Now().UTC(),
		})
	}
	return n, nil
}

// resolve looks up the book and member concurrently; both must exist.
func (s *CirculationService) resolve(ctx context.Context, bookTitle, memberName string) (model.Book, model.Member, error) {
	var (
		book   model.Book
		member model.Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		book, err = s.catalog.FindBookByTitle(gctx, bookTitle)
		return err
	})
	g.Go(func() error {
		var err error
		member, err = s.members.FindMemberByName(gctx, memberName)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Book{}, model.Member{}, errors.Wrap(errs.ErrNotFound, "book or member")
		}
		return model.Book{}, model.Member{}, err
	}
	return book, member, nil
}

func daysLate(now, dueDate time.Time) int {
	days := int(now.Sub(dueDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
