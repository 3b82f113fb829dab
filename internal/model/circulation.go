package model

import "time"

// BorrowingUpdate carries the resolved field set applied by an edit.
type BorrowingUpdate struct {
	BookID     int
	MemberID   int
	DueDate    time.Time
	Status     BorrowStatus
	Notes      *string
	FineAmount float64
}
