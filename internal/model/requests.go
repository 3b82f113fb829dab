package model

import (
	"strings"
	"time"
)

// Date accepts and renders date-only JSON values ("2006-01-02").
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

type CategoryRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

type BookRequest struct {
	Title           string  `json:"title" validate:"required"`
	Author          *string `json:"author"`
	ISBN            *string `json:"isbn"`
	Publisher       *string `json:"publisher"`
	PublicationYear *int    `json:"publication_year"`
	Quantity        int     `json:"quantity"`
	Category        *string `json:"category"`
	Location        *string `json:"location"`
	Description     *string `json:"description"`
}

type MemberRequest struct {
	Name       string       `json:"name" validate:"required"`
	Email      string       `json:"email" validate:"required,email"`
	Phone      *string      `json:"phone"`
	Address    *string      `json:"address"`
	MemberType MemberType   `json:"member_type"`
	Status     MemberStatus `json:"status"`
}

type BorrowingRequest struct {
	BookTitle  string        `json:"book_title" validate:"required"`
	MemberName string        `json:"member_name" validate:"required"`
	DueDate    *Date         `json:"due_date"`
	Status     *BorrowStatus `json:"status" validate:"omitempty,oneof=Borrowed Overdue Returned"`
	Notes      *string       `json:"notes"`
	FineAmount float64       `json:"fine_amount" validate:"gte=0"`
}

type ReturnRequest struct {
	ReturnedTo *string `json:"returned_to"`
	Notes      *string `json:"notes"`
}

type ReturnResult struct {
	Msg         string  `json:"msg"`
	FineAmount  float64 `json:"fine_amount"`
	DaysOverdue int     `json:"days_overdue"`
}

type PayFineRequest struct {
	PaidAmount float64 `json:"paid_amount" validate:"gte=0"`
}

// Ack is the acknowledgement shape for mutating operations.
type Ack struct {
	Msg        string `json:"msg"`
	ID         int    `json:"id,omitempty"`
	MemberCode string `json:"member_code,omitempty"`
}

type DashboardTotals struct {
	Books            int     `json:"books" db:"books"`
	Members          int     `json:"members" db:"members"`
	ActiveBorrowings int     `json:"active_borrowings" db:"active_borrowings"`
	OverdueBooks     int     `json:"overdue_books" db:"overdue_books"`
	OutstandingFines float64 `json:"outstanding_fines" db:"outstanding_fines"`
}

type CategoryCount struct {
	Category *string `json:"category" db:"category"`
	Count    int     `json:"count" db:"count"`
}

type TypeCount struct {
	MemberType MemberType `json:"member_type" db:"member_type"`
	Count      int        `json:"count" db:"count"`
}

type StatusCount struct {
	Status BorrowStatus `json:"status" db:"status"`
	Count  int          `json:"count" db:"count"`
}

type DashboardStats struct {
	Totals             DashboardTotals `json:"totals"`
	BooksByCategory    []CategoryCount `json:"books_by_category"`
	MembersByType      []TypeCount     `json:"members_by_type"`
	BorrowingsByStatus []StatusCount   `json:"borrowings_by_status"`
}

type PopularBook struct {
	Title       string  `json:"title" db:"title"`
	Author      *string `json:"author" db:"author"`
	Category    *string `json:"category" db:"category"`
	BorrowCount int     `json:"borrow_count" db:"borrow_count"`
	Quantity    int     `json:"quantity" db:"quantity"`
	Available   int     `json:"available" db:"available"`
}

type MemberActivity struct {
	MemberCode        string     `json:"member_code" db:"member_code"`
	Name              string     `json:"name" db:"name"`
	MemberType        MemberType `json:"member_type" db:"member_type"`
	TotalBorrowings   int        `json:"total_borrowings" db:"total_borrowings"`
	CurrentBorrowings int        `json:"current_borrowings" db:"current_borrowings"`
	OverdueCount      int        `json:"overdue_count" db:"overdue_count"`
	OutstandingFines  float64    `json:"outstanding_fines" db:"outstanding_fines"`
}
