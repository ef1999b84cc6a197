package ledger

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// Store persists committed ledger mutations. Each call must be atomic: either
// the whole change is stored or none of it is.
type Store interface {
	// SaveBook upserts a catalog entry after an add.
	SaveBook(ctx context.Context, entry Entry) error
	// SaveBorrow stores the decremented entry, marks the loan and appends the
	// principal to the borrower log.
	SaveBorrow(ctx context.Context, entry Entry, principal Principal) error
	// SaveReturn stores the incremented entry and clears the loan.
	SaveReturn(ctx context.Context, entry Entry, principal Principal) error
}

// Entry is a catalog entry together with its key and insertion position.
type Entry struct {
	ID       BookID
	Position int
	Book     Book
}

// Loan is the current borrow flag of a (book, principal) pair.
type Loan struct {
	BookID    BookID
	Principal Principal
	Borrowed  bool
}

// BorrowEvent is one element of a book's historical borrower log.
type BorrowEvent struct {
	BookID    BookID
	Principal Principal
}

// State is a full copy of the ledger, used to restore it from storage.
// Catalog and Borrowers are in insertion order.
type State struct {
	Owner     Principal
	Catalog   []Entry
	Loans     []Loan
	Borrowers []BorrowEvent
}

// Stats summarises the catalog.
type Stats struct {
	Books          int
	AvailableBooks int
	CopiesOnShelf  uint64
	ActiveLoans    int
}

// MaxCopies bounds the copies of one title, shelved and lent together, so
// the count fits a signed 64-bit database column.
const MaxCopies = math.MaxInt64

type loanKey struct {
	id        BookID
	principal Principal
}

// Ledger owns the catalog, the current loans and the borrower log.
// Mutations are serialized; reads see only fully committed operations.
type Ledger struct {
	mu sync.RWMutex

	owner     Principal
	store     Store
	books     map[BookID]Book
	order     []BookID
	index     map[BookID]int
	loans     map[loanKey]bool
	lent      map[BookID]uint64
	borrowers map[BookID][]Principal
}

// New initializes an empty ledger owned by owner. store may be nil.
func New(owner Principal, store Store) (*Ledger, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidArgument)
	}
	return &Ledger{
		owner:     owner,
		store:     store,
		books:     make(map[BookID]Book),
		index:     make(map[BookID]int),
		loans:     make(map[loanKey]bool),
		lent:      make(map[BookID]uint64),
		borrowers: make(map[BookID][]Principal),
	}, nil
}

// Restore rebuilds a ledger from a persisted state.
func Restore(state State, store Store) (*Ledger, error) {
	l, err := New(state.Owner, store)
	if err != nil {
		return nil, err
	}

	for _, e := range state.Catalog {
		if e.Book.Title == "" {
			return nil, fmt.Errorf("restore: book %s has no title", e.ID)
		}
		if IDFromTitle(e.Book.Title) != e.ID {
			return nil, fmt.Errorf("restore: book %s does not match title %q", e.ID, e.Book.Title)
		}
		if _, dup := l.books[e.ID]; dup {
			return nil, fmt.Errorf("restore: duplicate book %s", e.ID)
		}
		l.books[e.ID] = e.Book
		l.index[e.ID] = len(l.order)
		l.order = append(l.order, e.ID)
	}

	for _, loan := range state.Loans {
		if _, ok := l.books[loan.BookID]; !ok {
			return nil, fmt.Errorf("restore: loan references unknown book %s", loan.BookID)
		}
		key := loanKey{loan.BookID, loan.Principal}
		if loan.Borrowed && !l.loans[key] {
			l.loans[key] = true
			l.lent[loan.BookID]++
		}
	}

	for _, ev := range state.Borrowers {
		if _, ok := l.books[ev.BookID]; !ok {
			return nil, fmt.Errorf("restore: borrower references unknown book %s", ev.BookID)
		}
		l.borrowers[ev.BookID] = append(l.borrowers[ev.BookID], ev.Principal)
	}

	return l, nil
}

// Owner returns the principal allowed to register books.
func (l *Ledger) Owner() Principal {
	return l.owner
}

// AddBook registers copies of title, adding to the stock if the title is
// already catalogued, and returns the committed entry. Only the owner may
// call it. The shelved and lent copies of a title never exceed MaxCopies.
func (l *Ledger) AddBook(ctx context.Context, caller Principal, title string, copies uint64) (Book, error) {
	if caller == "" || caller != l.owner {
		return Book{}, ErrUnauthorized
	}
	if title == "" || copies == 0 {
		return Book{}, ErrInvalidArgument
	}

	id := IDFromTitle(title)

	l.mu.Lock()
	defer l.mu.Unlock()

	book, exists := l.books[id]
	held := book.Copies + l.lent[id]
	if copies > MaxCopies || held > MaxCopies-copies {
		return Book{}, fmt.Errorf("%w: copies overflow", ErrInvalidArgument)
	}

	position := len(l.order)
	if exists {
		book.Copies += copies
		position = l.index[id]
	} else {
		book = Book{Title: title, Copies: copies}
	}

	if l.store != nil {
		if err := l.store.SaveBook(ctx, Entry{ID: id, Position: position, Book: book}); err != nil {
			return Book{}, fmt.Errorf("save book: %w", err)
		}
	}

	l.books[id] = book
	if !exists {
		l.index[id] = position
		l.order = append(l.order, id)
	}
	return book, nil
}

// BorrowBook lends one copy of id to caller and returns the committed entry.
func (l *Ledger) BorrowBook(ctx context.Context, caller Principal, id BookID) (Book, error) {
	if caller == "" {
		return Book{}, ErrUnauthorized
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	book, ok := l.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	key := loanKey{id, caller}
	if l.loans[key] {
		return Book{}, ErrAlreadyBorrowed
	}
	if book.Copies == 0 {
		return Book{}, ErrNoCopiesAvailable
	}

	book.Copies--
	if l.store != nil {
		entry := Entry{ID: id, Position: l.index[id], Book: book}
		if err := l.store.SaveBorrow(ctx, entry, caller); err != nil {
			return Book{}, fmt.Errorf("save borrow: %w", err)
		}
	}

	l.books[id] = book
	l.loans[key] = true
	l.lent[id]++
	l.borrowers[id] = append(l.borrowers[id], caller)
	return book, nil
}

// ReturnBook takes back the copy of id held by caller and returns the
// committed entry.
func (l *Ledger) ReturnBook(ctx context.Context, caller Principal, id BookID) (Book, error) {
	if caller == "" {
		return Book{}, ErrUnauthorized
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	book, ok := l.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	key := loanKey{id, caller}
	if !l.loans[key] {
		return Book{}, ErrNotBorrowed
	}

	book.Copies++
	if l.store != nil {
		entry := Entry{ID: id, Position: l.index[id], Book: book}
		if err := l.store.SaveReturn(ctx, entry, caller); err != nil {
			return Book{}, fmt.Errorf("save return: %w", err)
		}
	}

	l.books[id] = book
	delete(l.loans, key)
	l.lent[id]--
	return book, nil
}

// GetAllAvailableBooks returns the ids with at least one copy on the shelf,
// in registration order.
func (l *Ledger) GetAllAvailableBooks() []BookID {
	l.mu.RLock()
	defer l.mu.RUnlock()

	available := make([]BookID, 0, len(l.order))
	for _, id := range l.order {
		if l.books[id].Copies > 0 {
			available = append(available, id)
		}
	}
	return available
}

// GetAllAddressesThatBorrowedBook returns every principal that ever borrowed
// id, in borrow order and including repeats.
func (l *Ledger) GetAllAddressesThatBorrowedBook(id BookID) ([]Principal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.books[id]; !ok {
		return nil, ErrNotFound
	}
	log := l.borrowers[id]
	out := make([]Principal, len(log))
	copy(out, log)
	return out, nil
}

// Books returns the entry for id, or the zero Book when it is unknown.
func (l *Ledger) Books(id BookID) Book {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.books[id]
}

// BorrowedBook reports whether principal currently holds a copy of id.
func (l *Ledger) BorrowedBook(principal Principal, id BookID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loans[loanKey{id, principal}]
}

// Len returns the number of catalogued titles.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// Stats returns catalog totals computed under the read lock.
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Stats{Books: len(l.order), ActiveLoans: len(l.loans)}
	for _, id := range l.order {
		copies := l.books[id].Copies
		if copies > 0 {
			s.AvailableBooks++
		}
		s.CopiesOnShelf += copies
	}
	return s
}
