package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/ageorgief/BookLibrary/internal/ledger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogGauges(t *testing.T) {
	l, err := ledger.New("owner", nil)
	require.NoError(t, err)
	m := New(l)
	ctx := context.Background()

	_, err = l.AddBook(ctx, "owner", "Dune", 1)
	require.NoError(t, err)
	_, err = l.AddBook(ctx, "owner", "Emma", 3)
	require.NoError(t, err)
	_, err = l.BorrowBook(ctx, "reader", ledger.IDFromTitle("Dune"))
	require.NoError(t, err)

	expected := `
# HELP lending_active_loans Copies currently on loan.
# TYPE lending_active_loans gauge
lending_active_loans 1
# HELP lending_available_books Titles with at least one copy on the shelf.
# TYPE lending_available_books gauge
lending_available_books 1
# HELP lending_books Catalogued titles.
# TYPE lending_books gauge
lending_books 2
# HELP lending_copies_on_shelf Copies not on loan across all titles.
# TYPE lending_copies_on_shelf gauge
lending_copies_on_shelf 3
`
	err = testutil.GatherAndCompare(m.Registry, strings.NewReader(expected),
		"lending_active_loans", "lending_available_books", "lending_books", "lending_copies_on_shelf")
	assert.NoError(t, err)
}

func TestObserve(t *testing.T) {
	l, err := ledger.New("owner", nil)
	require.NoError(t, err)
	m := New(l)

	m.Observe("BorrowBook", "OK")
	m.Observe("BorrowBook", "OK")
	m.Observe("BorrowBook", "NotFound")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.operations.WithLabelValues("BorrowBook", "OK")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.operations.WithLabelValues("BorrowBook", "NotFound")))
}
