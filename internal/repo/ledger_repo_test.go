package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ageorgief/BookLibrary/internal/db"
	"github.com/ageorgief/BookLibrary/internal/ledger"
	"github.com/ageorgief/BookLibrary/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner  ledger.Principal = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
	reader ledger.Principal = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
)

func setupTestDB(t *testing.T) *db.DB {
	database, err := db.Connect(db.DriverSQLite, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database))
	return database
}

func setupTestRepo(t *testing.T) *LedgerRepository {
	return NewLedgerRepository(setupTestDB(t), logger.NewLogger("test", "error"))
}

func TestInitOwner(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	stored, err := repo.Owner(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)

	_, err = repo.InitOwner(ctx, "")
	assert.ErrorIs(t, err, ledger.ErrInvalidArgument)

	got, err := repo.InitOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	// Existing owner is kept
	got, err = repo.InitOwner(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	got, err = repo.InitOwner(ctx, reader)
	assert.ErrorIs(t, err, ErrOwnerMismatch)
	assert.Equal(t, owner, got)
}

func TestLoadStateEmpty(t *testing.T) {
	repo := setupTestRepo(t)

	state, err := repo.LoadState(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.Owner)
	assert.Empty(t, state.Catalog)
	assert.Empty(t, state.Loans)
	assert.Empty(t, state.Borrowers)
}

func errOf(_ ledger.Book, err error) error { return err }

func TestLedgerWriteThroughAndRestore(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.InitOwner(ctx, owner)
	require.NoError(t, err)

	l, err := ledger.New(owner, repo)
	require.NoError(t, err)

	dune, emma := ledger.IDFromTitle("Dune"), ledger.IDFromTitle("Emma")
	require.NoError(t, errOf(l.AddBook(ctx, owner, "Emma", 2)))
	require.NoError(t, errOf(l.AddBook(ctx, owner, "Dune", 1)))
	require.NoError(t, errOf(l.AddBook(ctx, owner, "Emma", 3)))
	require.NoError(t, errOf(l.BorrowBook(ctx, reader, dune)))
	require.NoError(t, errOf(l.BorrowBook(ctx, reader, emma)))
	require.NoError(t, errOf(l.ReturnBook(ctx, reader, emma)))
	require.NoError(t, errOf(l.BorrowBook(ctx, owner, emma)))

	state, err := repo.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, owner, state.Owner)
	require.Len(t, state.Catalog, 2)
	assert.Equal(t, emma, state.Catalog[0].ID)
	assert.Equal(t, ledger.Book{Title: "Emma", Copies: 4}, state.Catalog[0].Book)
	assert.Equal(t, dune, state.Catalog[1].ID)
	assert.Equal(t, uint64(0), state.Catalog[1].Book.Copies)
	assert.ElementsMatch(t, []ledger.Loan{
		{BookID: dune, Principal: reader, Borrowed: true},
		{BookID: emma, Principal: owner, Borrowed: true},
	}, state.Loans)
	assert.Equal(t, []ledger.BorrowEvent{
		{BookID: dune, Principal: reader},
		{BookID: emma, Principal: reader},
		{BookID: emma, Principal: owner},
	}, state.Borrowers)

	restored, err := ledger.Restore(state, repo)
	require.NoError(t, err)
	assert.Equal(t, l.GetAllAvailableBooks(), restored.GetAllAvailableBooks())
	assert.Equal(t, l.Stats(), restored.Stats())
	assert.True(t, restored.BorrowedBook(reader, dune))
	assert.False(t, restored.BorrowedBook(reader, emma))

	borrowers, err := restored.GetAllAddressesThatBorrowedBook(emma)
	require.NoError(t, err)
	assert.Equal(t, []ledger.Principal{reader, owner}, borrowers)

	books, activeLoans, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), books)
	assert.Equal(t, int64(2), activeLoans)
	assert.NoError(t, repo.VerifyStats(ctx, restored.Stats()))

	drifted := restored.Stats()
	drifted.ActiveLoans++
	assert.ErrorIs(t, repo.VerifyStats(ctx, drifted), ErrStateDrift)
}

func TestLargeCopyCountsPersist(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	l, err := ledger.New(owner, repo)
	require.NoError(t, err)

	_, err = l.AddBook(ctx, owner, "Huge", ledger.MaxCopies+1)
	assert.ErrorIs(t, err, ledger.ErrInvalidArgument)

	_, err = l.AddBook(ctx, owner, "Big", ledger.MaxCopies-1)
	require.NoError(t, err)
	_, err = l.AddBook(ctx, owner, "Big", 1)
	require.NoError(t, err)
	_, err = l.AddBook(ctx, owner, "Big", 1)
	assert.ErrorIs(t, err, ledger.ErrInvalidArgument)

	_, err = l.BorrowBook(ctx, reader, ledger.IDFromTitle("Big"))
	require.NoError(t, err)

	state, err := repo.LoadState(ctx)
	require.NoError(t, err)
	require.Len(t, state.Catalog, 1)
	assert.Equal(t, ledger.Book{Title: "Big", Copies: ledger.MaxCopies - 1}, state.Catalog[0].Book)
}

func TestSaveBorrowUnknownBookRollsBack(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	entry := ledger.Entry{ID: ledger.IDFromTitle("Ghost"), Book: ledger.Book{Title: "Ghost"}}
	err := repo.SaveBorrow(ctx, entry, reader)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	state, err := repo.LoadState(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.Loans)
	assert.Empty(t, state.Borrowers)
}
