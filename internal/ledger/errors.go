package ledger

import "errors"

var (
	// ErrUnauthorized is returned when a caller other than the owner mutates the catalog
	ErrUnauthorized = errors.New("caller is not the owner")

	// ErrInvalidArgument is returned for empty titles, zero copies and malformed ids
	ErrInvalidArgument = errors.New("book data is not valid")

	// ErrNotFound is returned when an id is not in the catalog
	ErrNotFound = errors.New("book with such id does not exist")

	// ErrAlreadyBorrowed is returned when the caller already holds a copy
	ErrAlreadyBorrowed = errors.New("you have already borrowed this book")

	// ErrNoCopiesAvailable is returned when every copy is on loan
	ErrNoCopiesAvailable = errors.New("there are no available copies of this book right now")

	// ErrNotBorrowed is returned when the caller returns a book they do not hold
	ErrNotBorrowed = errors.New("you cannot return a book that you have not borrowed")
)
