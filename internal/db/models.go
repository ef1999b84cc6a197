package db

import (
	"time"
)

// Setting holds the one-time ledger configuration. There is a single row.
type Setting struct {
	ID        uint      `gorm:"primaryKey"`
	Owner     string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Setting) TableName() string {
	return "ledger_settings"
}

// Book is a catalog entry keyed by the hex Keccak-256 of its title
type Book struct {
	ID        string    `gorm:"primaryKey;type:varchar(66)" json:"id"`
	Title     string    `gorm:"type:text;not null" json:"title"`
	Copies    uint64    `gorm:"not null" json:"copies"`
	Position  int       `gorm:"not null;uniqueIndex:idx_books_position" json:"position"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// BorrowRecord is the current loan flag of a (book, principal) pair. Rows are
// flipped, never deleted.
type BorrowRecord struct {
	BookID    string    `gorm:"primaryKey;type:varchar(66)"`
	Principal string    `gorm:"primaryKey;type:varchar(255)"`
	Borrowed  bool      `gorm:"not null;default:false;index:idx_borrow_records_borrowed"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (BorrowRecord) TableName() string {
	return "borrow_records"
}

// Borrower is one entry of a book's append-only borrower log, ordered by Seq
type Borrower struct {
	Seq       uint64    `gorm:"primaryKey;autoIncrement"`
	BookID    string    `gorm:"type:varchar(66);not null;index:idx_borrowers_book"`
	Principal string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Borrower) TableName() string {
	return "borrowers"
}
