package model

import (
	"strings"
	"time"
)

type MemberType string

const (
	MemberTypeStudent MemberType = "Student"
	MemberTypeFaculty MemberType = "Faculty"
	MemberTypeStaff   MemberType = "Staff"
	MemberTypePublic  MemberType = "Public"
)

// MaxBooks is the borrowing limit derived from the member type.
func (t MemberType) MaxBooks() int {
	switch t {
	case MemberTypeFaculty:
		return 10
	case MemberTypeStaff:
		return 7
	case MemberTypePublic:
		return 3
	default:
		return 5
	}
}

// BorrowingDays is the loan period in days for the member type.
func (t MemberType) BorrowingDays() int {
	switch t {
	case MemberTypeFaculty:
		return 30
	case MemberTypeStaff:
		return 21
	case MemberTypePublic:
		return 7
	default:
		return 14
	}
}

// CodePrefix is the member-code prefix, e.g. "FAC" for Faculty.
func (t MemberType) CodePrefix() string {
	s := string(t)
	if len(s) > 3 {
		s = s[:3]
	}
	return strings.ToUpper(s)
}

type MemberStatus string

const (
	MemberActive   MemberStatus = "Active"
	MemberInactive MemberStatus = "Inactive"
)

type BorrowStatus string

const (
	StatusBorrowed BorrowStatus = "Borrowed"
	StatusOverdue  BorrowStatus = "Overdue"
	StatusReturned BorrowStatus = "Returned"
)

// Active reports whether a borrowing in this status holds a copy.
func (s BorrowStatus) Active() bool {
	return s == StatusBorrowed || s == StatusOverdue
}

type FineStatus string

const (
	FinePending FineStatus = "Pending"
	FinePaid    FineStatus = "Paid"
)

const FineTypeOverdue = "Overdue"

// DailyFineRate is the flat fine per day overdue.
const DailyFineRate = 1.00

type Category struct {
	ID          int        `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at" db:"updated_at"`
}

type Book struct {
	ID              int        `json:"id" db:"id"`
	Title           string     `json:"title" db:"title"`
	Author          *string    `json:"author" db:"author"`
	ISBN            *string    `json:"isbn" db:"isbn"`
	Publisher       *string    `json:"publisher" db:"publisher"`
	PublicationYear *int       `json:"publication_year" db:"publication_year"`
	Quantity        int        `json:"quantity" db:"quantity"`
	Available       int        `json:"available" db:"available"`
	CategoryID      *int       `json:"-" db:"category_id"`
	Category        *string    `json:"category" db:"category"`
	Location        *string    `json:"location" db:"location"`
	Description     *string    `json:"description" db:"description"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at" db:"updated_at"`
}

type Member struct {
	ID         int          `json:"id" db:"id"`
	MemberCode string       `json:"member_code" db:"member_code"`
	Name       string       `json:"name" db:"name"`
	Email      string       `json:"email" db:"email"`
	Phone      *string      `json:"phone" db:"phone"`
	Address    *string      `json:"address" db:"address"`
	MemberType MemberType   `json:"member_type" db:"member_type"`
	MaxBooks   int          `json:"max_books" db:"max_books"`
	Status     MemberStatus `json:"status" db:"status"`
	ExpiryDate time.Time    `json:"expiry_date" db:"expiry_date"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  *time.Time   `json:"updated_at" db:"updated_at"`
}

type Borrowing struct {
	ID           int          `json:"id" db:"id"`
	BorrowingUid string       `json:"borrowing_uid" db:"borrowing_uid"`
	BookID       int          `json:"book_id" db:"book_id"`
	MemberID     int          `json:"member_id" db:"member_id"`
	BorrowDate   time.Time    `json:"borrow_date" db:"borrow_date"`
	DueDate      time.Time    `json:"due_date" db:"due_date"`
	ReturnDate   *time.Time   `json:"return_date" db:"return_date"`
	Status       BorrowStatus `json:"status" db:"status"`
	FineAmount   float64      `json:"fine_amount" db:"fine_amount"`
	Notes        *string      `json:"notes" db:"notes"`
	IssuedBy     *string      `json:"issued_by" db:"issued_by"`
	ReturnedTo   *string      `json:"returned_to" db:"returned_to"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    *time.Time   `json:"updated_at" db:"updated_at"`
}

// BorrowingView is a borrowing joined with book and member display fields.
type BorrowingView struct {
	Borrowing
	BookTitle  *string     `json:"book_title" db:"book_title"`
	BookAuthor *string     `json:"book_author" db:"book_author"`
	MemberName *string     `json:"member_name" db:"member_name"`
	MemberCode *string     `json:"member_code" db:"member_code"`
	MemberType *MemberType `json:"member_type" db:"member_type"`
}

type OverdueBorrowing struct {
	Borrowing
	BookTitle   string  `json:"book_title" db:"book_title"`
	MemberName  string  `json:"member_name" db:"member_name"`
	Email       string  `json:"email" db:"email"`
	Phone       *string `json:"phone" db:"phone"`
	DaysOverdue int     `json:"days_overdue" db:"days_overdue"`
}

type Fine struct {
	ID          int        `json:"id" db:"id"`
	MemberID    int        `json:"member_id" db:"member_id"`
	BorrowingID int        `json:"borrowing_id" db:"borrowing_id"`
	FineType    string     `json:"fine_type" db:"fine_type"`
	Amount      float64    `json:"amount" db:"amount"`
	PaidAmount  float64    `json:"paid_amount" db:"paid_amount"`
	Status      FineStatus `json:"status" db:"status"`
	PaidDate    *time.Time `json:"paid_date" db:"paid_date"`
	Description *string    `json:"description" db:"description"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type FineView struct {
	Fine
	MemberName *string `json:"member_name" db:"member_name"`
	MemberCode *string `json:"member_code" db:"member_code"`
}
