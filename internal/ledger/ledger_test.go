package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner Principal = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
	addr1 Principal = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
	addr2 Principal = "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"
)

func newTestLedger(t *testing.T) *Ledger {
	l, err := New(owner, nil)
	require.NoError(t, err)
	return l
}

type failingStore struct {
	err   error
	calls int
}

func (f *failingStore) SaveBook(context.Context, Entry) error { f.calls++; return f.err }
func (f *failingStore) SaveBorrow(context.Context, Entry, Principal) error {
	f.calls++
	return f.err
}
func (f *failingStore) SaveReturn(context.Context, Entry, Principal) error {
	f.calls++
	return f.err
}

func errOf(_ Book, err error) error { return err }

func TestIDFromTitle(t *testing.T) {
	// keccak256("") and keccak256("hello")
	assert.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", IDFromTitle("").String())
	assert.Equal(t, "0x1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8", IDFromTitle("hello").String())

	assert.Equal(t, IDFromTitle("Dune"), IDFromTitle("Dune"))
	assert.NotEqual(t, IDFromTitle("Dune"), IDFromTitle("dune"))
}

func TestParseBookID(t *testing.T) {
	id := IDFromTitle("Title")

	parsed, err := ParseBookID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	parsed, err = ParseBookID(id.String()[2:])
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseBookID("0x1234")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ParseBookID("0x" + string(make([]byte, 64)))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewRequiresOwner(t *testing.T) {
	_, err := New("", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetAllAvailableBooks(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, errOf(l.AddBook(ctx, owner, "Book1", 1)))
	require.NoError(t, errOf(l.AddBook(ctx, owner, "Book2", 2)))
	assert.Len(t, l.GetAllAvailableBooks(), 2)

	require.NoError(t, errOf(l.BorrowBook(ctx, addr1, IDFromTitle("Book1"))))

	available := l.GetAllAvailableBooks()
	assert.Equal(t, []BookID{IDFromTitle("Book2")}, available)
}

func TestAddBookAndGetByID(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, errOf(l.AddBook(ctx, owner, "Title", 125)))
	book := l.Books(IDFromTitle("Title"))
	assert.Equal(t, "Title", book.Title)
	assert.Equal(t, uint64(125), book.Copies)

	require.NoError(t, errOf(l.AddBook(ctx, owner, "Title", 125)))
	assert.Equal(t, uint64(250), l.Books(IDFromTitle("Title")).Copies)
	assert.Equal(t, 1, l.Len())
}

func TestAddBookNotOwner(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.AddBook(context.Background(), addr1, "X", 1)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Books(IDFromTitle("X")).Exists())

	_, err = l.AddBook(context.Background(), "", "X", 1)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAddBookInvalidArguments(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	assert.ErrorIs(t, errOf(l.AddBook(ctx, owner, "Title", 0)), ErrInvalidArgument)
	assert.ErrorIs(t, errOf(l.AddBook(ctx, owner, "", 15)), ErrInvalidArgument)
	assert.ErrorIs(t, errOf(l.AddBook(ctx, owner, "", 0)), ErrInvalidArgument)
	assert.Equal(t, 0, l.Len())
}

func TestAddBookOwnerCheckedBeforeArguments(t *testing.T) {
	l := newTestLedger(t)
	assert.ErrorIs(t, errOf(l.AddBook(context.Background(), addr1, "", 0)), ErrUnauthorized)
}

func TestAddBookOverflow(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	assert.ErrorIs(t, errOf(l.AddBook(ctx, owner, "Huge", ^uint64(0))), ErrInvalidArgument)
	assert.ErrorIs(t, errOf(l.AddBook(ctx, owner, "Huge", MaxCopies+1)), ErrInvalidArgument)
	assert.False(t, l.Books(IDFromTitle("Huge")).Exists())

	require.NoError(t, errOf(l.AddBook(ctx, owner, "Big", MaxCopies-1)))
	require.NoError(t, errOf(l.AddBook(ctx, owner, "Big", 1)))
	assert.ErrorIs(t, errOf(l.AddBook(ctx, owner, "Big", 1)), ErrInvalidArgument)
	assert.Equal(t, uint64(MaxCopies), l.Books(IDFromTitle("Big")).Copies)
}

func TestAddBookOverflowCountsLentCopies(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	id := IDFromTitle("Big")

	require.NoError(t, errOf(l.AddBook(ctx, owner, "Big", MaxCopies)))
	require.NoError(t, errOf(l.BorrowBook(ctx, addr1, id)))

	// one copy is on loan, so the title is still full
	assert.ErrorIs(t, errOf(l.AddBook(ctx, owner, "Big", 1)), ErrInvalidArgument)

	book, err := l.ReturnBook(ctx, addr1, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(MaxCopies), book.Copies)
}

func TestMutationsReturnCommittedBook(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	id := IDFromTitle("Dune")

	book, err := l.AddBook(ctx, owner, "Dune", 2)
	require.NoError(t, err)
	assert.Equal(t, Book{Title: "Dune", Copies: 2}, book)

	book, err = l.AddBook(ctx, owner, "Dune", 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), book.Copies)

	book, err = l.BorrowBook(ctx, addr1, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), book.Copies)

	book, err = l.ReturnBook(ctx, addr1, id)
	require.NoError(t, err)
	assert.Equal(t, Book{Title: "Dune", Copies: 5}, book)

	book, err = l.ReturnBook(ctx, addr1, id)
	assert.ErrorIs(t, err, ErrNotBorrowed)
	assert.Equal(t, Book{}, book)
}

func TestBorrowBook(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, errOf(l.AddBook(ctx, owner, "Title2", 125)))
	id := IDFromTitle("Title2")

	require.NoError(t, errOf(l.BorrowBook(ctx, addr1, id)))
	assert.Equal(t, uint64(124), l.Books(id).Copies)
	assert.True(t, l.BorrowedBook(addr1, id))

	borrowers, err := l.GetAllAddressesThatBorrowedBook(id)
	require.NoError(t, err)
	assert.Contains(t, borrowers, addr1)
}

func TestBorrowBookTwice(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, errOf(l.AddBook(ctx, owner, "Harry Potter", 6)))
	id := IDFromTitle("Harry Potter")

	require.NoError(t, errOf(l.BorrowBook(ctx, addr1, id)))
	assert.ErrorIs(t, errOf(l.BorrowBook(ctx, addr1, id)), ErrAlreadyBorrowed)
	assert.Equal(t, uint64(5), l.Books(id).Copies)

	require.NoError(t, errOf(l.ReturnBook(ctx, addr1, id)))
	assert.NoError(t, errOf(l.BorrowBook(ctx, addr1, id)))
}

func TestBorrowBookNoCopies(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, errOf(l.AddBook(ctx, owner, "Dune", 1)))
	id := IDFromTitle("Dune")

	require.NoError(t, errOf(l.BorrowBook(ctx, addr1, id)))
	assert.Equal(t, uint64(0), l.Books(id).Copies)

	assert.ErrorIs(t, errOf(l.BorrowBook(ctx, addr2, id)), ErrNoCopiesAvailable)
	assert.False(t, l.BorrowedBook(addr2, id))
}

func TestBorrowBookAlreadyBorrowedWinsOverNoCopies(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, errOf(l.AddBook(ctx, owner, "Dune", 1)))
	id := IDFromTitle("Dune")
	require.NoError(t, errOf(l.BorrowBook(ctx, addr1, id)))

	assert.ErrorIs(t, errOf(l.BorrowBook(ctx, addr1, id)), ErrAlreadyBorrowed)
}

func TestUnknownBook(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	id := IDFromTitle("FAKE ID")

	assert.ErrorIs(t, errOf(l.BorrowBook(ctx, addr1, id)), ErrNotFound)
	assert.ErrorIs(t, errOf(l.ReturnBook(ctx, addr1, id)), ErrNotFound)

	_, err := l.GetAllAddressesThatBorrowedBook(id)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, Book{}, l.Books(id))
	assert.False(t, l.BorrowedBook(addr1, id))
}

func TestReturnBook(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, errOf(l.AddBook(ctx, owner, "Title3", 2)))
	id := IDFromTitle("Title3")

	require.NoError(t, errOf(l.BorrowBook(ctx, addr1, id)))
	assert.Equal(t, uint64(1), l.Books(id).Copies)

	require.NoError(t, errOf(l.ReturnBook(ctx, addr1, id)))
	assert.Equal(t, uint64(2), l.Books(id).Copies)
	assert.False(t, l.BorrowedBook(addr1, id))

	borrowers, err := l.GetAllAddressesThatBorrowedBook(id)
	require.NoError(t, err)
	assert.Equal(t, []Principal{addr1}, borrowers)
}

func TestReturnMakesBookAvailableAgain(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, errOf(l.AddBook(ctx, owner, "Title4", 1)))
	id := IDFromTitle("Title4")

	require.NoError(t, errOf(l.BorrowBook(ctx, addr1, id)))
	before := len(l.GetAllAvailableBooks())
	assert.NotContains(t, l.GetAllAvailableBooks(), id)

	require.NoError(t, errOf(l.ReturnBook(ctx, addr1, id)))
	assert.Len(t, l.GetAllAvailableBooks(), before+1)
	assert.Contains(t, l.GetAllAvailableBooks(), id)
}

func TestReturnBookNotBorrowed(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, errOf(l.AddBook(ctx, owner, "Lord of the rings", 100)))
	id := IDFromTitle("Lord of the rings")

	assert.ErrorIs(t, errOf(l.ReturnBook(ctx, addr1, id)), ErrNotBorrowed)
	assert.Equal(t, uint64(100), l.Books(id).Copies)

	require.NoError(t, errOf(l.BorrowBook(ctx, addr1, id)))
	require.NoError(t, errOf(l.ReturnBook(ctx, addr1, id)))
	assert.ErrorIs(t, errOf(l.ReturnBook(ctx, addr1, id)), ErrNotBorrowed)
}

func TestBorrowerLogKeepsRepeats(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, errOf(l.AddBook(ctx, owner, "Emma", 3)))
	id := IDFromTitle("Emma")

	for _, p := range []Principal{addr1, addr2} {
		require.NoError(t, errOf(l.BorrowBook(ctx, p, id)))
		require.NoError(t, errOf(l.ReturnBook(ctx, p, id)))
	}
	require.NoError(t, errOf(l.BorrowBook(ctx, addr1, id)))

	borrowers, err := l.GetAllAddressesThatBorrowedBook(id)
	require.NoError(t, err)
	assert.Equal(t, []Principal{addr1, addr2, addr1}, borrowers)

	// callers get a copy
	borrowers[0] = "mutated"
	again, _ := l.GetAllAddressesThatBorrowedBook(id)
	assert.Equal(t, addr1, again[0])
}

func TestConservation(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, errOf(l.AddBook(ctx, owner, "Ulysses", 3)))
	id := IDFromTitle("Ulysses")

	principals := []Principal{addr1, addr2, owner}
	for round := 0; round < 4; round++ {
		for _, p := range principals {
			require.NoError(t, errOf(l.BorrowBook(ctx, p, id)))
		}
		assert.Equal(t, uint64(0), l.Books(id).Copies)
		for _, p := range principals {
			require.NoError(t, errOf(l.ReturnBook(ctx, p, id)))
		}
	}
	assert.Equal(t, uint64(3), l.Books(id).Copies)
}

func TestAvailableOrderIsStable(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	titles := []string{"C", "A", "B"}
	for _, title := range titles {
		require.NoError(t, errOf(l.AddBook(ctx, owner, title, 1)))
	}
	first := l.GetAllAvailableBooks()
	assert.Equal(t, first, l.GetAllAvailableBooks())
	assert.Equal(t, []BookID{IDFromTitle("C"), IDFromTitle("A"), IDFromTitle("B")}, first)
}

func TestStoreFailureLeavesStateUnchanged(t *testing.T) {
	store := &failingStore{}
	l, err := New(owner, store)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, errOf(l.AddBook(ctx, owner, "Dune", 1)))
	id := IDFromTitle("Dune")

	store.err = errors.New("disk full")

	assert.ErrorIs(t, errOf(l.AddBook(ctx, owner, "Dune", 4)), store.err)
	assert.ErrorIs(t, errOf(l.AddBook(ctx, owner, "Emma", 4)), store.err)
	assert.Equal(t, uint64(1), l.Books(id).Copies)
	assert.Equal(t, 1, l.Len())

	assert.ErrorIs(t, errOf(l.BorrowBook(ctx, addr1, id)), store.err)
	assert.Equal(t, uint64(1), l.Books(id).Copies)
	assert.False(t, l.BorrowedBook(addr1, id))
	borrowers, _ := l.GetAllAddressesThatBorrowedBook(id)
	assert.Empty(t, borrowers)

	store.err = nil
	require.NoError(t, errOf(l.BorrowBook(ctx, addr1, id)))
	store.err = errors.New("disk full")

	assert.ErrorIs(t, errOf(l.ReturnBook(ctx, addr1, id)), store.err)
	assert.True(t, l.BorrowedBook(addr1, id))
	assert.Equal(t, uint64(0), l.Books(id).Copies)
}

func TestRejectedOperationsDoNotReachStore(t *testing.T) {
	store := &failingStore{}
	l, err := New(owner, store)
	require.NoError(t, err)
	ctx := context.Background()

	_, _ = l.AddBook(ctx, addr1, "X", 1)
	_, _ = l.AddBook(ctx, owner, "", 1)
	_, _ = l.BorrowBook(ctx, addr1, IDFromTitle("X"))
	_, _ = l.ReturnBook(ctx, addr1, IDFromTitle("X"))
	assert.Zero(t, store.calls)
}

func TestRestore(t *testing.T) {
	dune, emma := IDFromTitle("Dune"), IDFromTitle("Emma")
	state := State{
		Owner: owner,
		Catalog: []Entry{
			{ID: emma, Position: 0, Book: Book{Title: "Emma", Copies: 2}},
			{ID: dune, Position: 1, Book: Book{Title: "Dune", Copies: 0}},
		},
		Loans: []Loan{
			{BookID: dune, Principal: addr1, Borrowed: true},
			{BookID: emma, Principal: addr1, Borrowed: false},
		},
		Borrowers: []BorrowEvent{
			{BookID: emma, Principal: addr1},
			{BookID: dune, Principal: addr1},
		},
	}

	l, err := Restore(state, nil)
	require.NoError(t, err)

	assert.Equal(t, owner, l.Owner())
	assert.Equal(t, []BookID{emma}, l.GetAllAvailableBooks())
	assert.True(t, l.BorrowedBook(addr1, dune))
	assert.False(t, l.BorrowedBook(addr1, emma))
	assert.Equal(t, Stats{Books: 2, AvailableBooks: 1, CopiesOnShelf: 2, ActiveLoans: 1}, l.Stats())

	require.NoError(t, errOf(l.ReturnBook(context.Background(), addr1, dune)))
	assert.Equal(t, uint64(1), l.Books(dune).Copies)
}

func TestRestoreRejectsInconsistentState(t *testing.T) {
	dune := IDFromTitle("Dune")

	_, err := Restore(State{Owner: owner, Catalog: []Entry{{ID: dune, Book: Book{Title: "Emma", Copies: 1}}}}, nil)
	assert.Error(t, err)

	_, err = Restore(State{Owner: owner, Loans: []Loan{{BookID: dune, Principal: addr1, Borrowed: true}}}, nil)
	assert.Error(t, err)

	_, err = Restore(State{Owner: owner, Borrowers: []BorrowEvent{{BookID: dune, Principal: addr1}}}, nil)
	assert.Error(t, err)

	_, err = Restore(State{}, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
