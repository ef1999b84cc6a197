package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ageorgief/BookLibrary/internal/db"
	"github.com/ageorgief/BookLibrary/internal/ledger"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const settingsRowID = 1

// ErrOwnerMismatch is returned when a stored owner differs from the requested one
var ErrOwnerMismatch = errors.New("stored owner differs from requested owner")

// LedgerRepository persists the ledger state. It implements ledger.Store.
type LedgerRepository struct {
	db  *db.DB
	log *zap.Logger
}

var _ ledger.Store = (*LedgerRepository)(nil)

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(database *db.DB, logger *zap.Logger) *LedgerRepository {
	return &LedgerRepository{
		db:  database,
		log: logger,
	}
}

// Owner returns the stored owner, or "" for a fresh database
func (r *LedgerRepository) Owner(ctx context.Context) (ledger.Principal, error) {
	var setting db.Setting
	err := r.db.WithContext(ctx).Where("id = ?", settingsRowID).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		r.log.Error("Failed to load owner", zap.Error(err))
		return "", err
	}
	return ledger.Principal(setting.Owner), nil
}

// InitOwner stores owner on a fresh database and returns the effective owner.
// An existing owner is never replaced.
func (r *LedgerRepository) InitOwner(ctx context.Context, owner ledger.Principal) (ledger.Principal, error) {
	stored, err := r.Owner(ctx)
	if err != nil {
		return "", err
	}
	if stored != "" {
		if owner != "" && owner != stored {
			return stored, ErrOwnerMismatch
		}
		return stored, nil
	}
	if owner == "" {
		return "", fmt.Errorf("%w: owner is required to initialize the ledger", ledger.ErrInvalidArgument)
	}

	setting := db.Setting{ID: settingsRowID, Owner: string(owner), CreatedAt: time.Now()}
	if err := r.db.WithContext(ctx).Create(&setting).Error; err != nil {
		r.log.Error("Failed to store owner", zap.Error(err))
		return "", err
	}

	r.log.Info("Ledger initialized", zap.String("owner", string(owner)))
	return owner, nil
}

// LoadState reads the whole ledger
func (r *LedgerRepository) LoadState(ctx context.Context) (ledger.State, error) {
	state := ledger.State{}

	owner, err := r.Owner(ctx)
	if err != nil {
		return state, err
	}
	state.Owner = owner

	var books []db.Book
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&books).Error; err != nil {
		r.log.Error("Failed to load books", zap.Error(err))
		return state, err
	}
	for _, b := range books {
		id, err := ledger.ParseBookID(b.ID)
		if err != nil {
			return state, fmt.Errorf("book %q: %w", b.ID, err)
		}
		state.Catalog = append(state.Catalog, ledger.Entry{
			ID:       id,
			Position: b.Position,
			Book:     ledger.Book{Title: b.Title, Copies: b.Copies},
		})
	}

	var records []db.BorrowRecord
	if err := r.db.WithContext(ctx).Where("borrowed = ?", true).Find(&records).Error; err != nil {
		r.log.Error("Failed to load borrow records", zap.Error(err))
		return state, err
	}
	for _, rec := range records {
		id, err := ledger.ParseBookID(rec.BookID)
		if err != nil {
			return state, fmt.Errorf("borrow record %q: %w", rec.BookID, err)
		}
		state.Loans = append(state.Loans, ledger.Loan{
			BookID:    id,
			Principal: ledger.Principal(rec.Principal),
			Borrowed:  rec.Borrowed,
		})
	}

	var borrowers []db.Borrower
	if err := r.db.WithContext(ctx).Order("seq ASC").Find(&borrowers).Error; err != nil {
		r.log.Error("Failed to load borrowers", zap.Error(err))
		return state, err
	}
	for _, b := range borrowers {
		id, err := ledger.ParseBookID(b.BookID)
		if err != nil {
			return state, fmt.Errorf("borrower %q: %w", b.BookID, err)
		}
		state.Borrowers = append(state.Borrowers, ledger.BorrowEvent{
			BookID:    id,
			Principal: ledger.Principal(b.Principal),
		})
	}

	return state, nil
}

// SaveBook upserts a catalog entry
func (r *LedgerRepository) SaveBook(ctx context.Context, entry ledger.Entry) error {
	book := toBookRow(entry)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"copies", "updated_at"}),
	}).Create(&book).Error
	if err != nil {
		r.log.Error("Failed to save book", zap.String("book_id", book.ID), zap.Error(err))
		return err
	}

	r.log.Info("Book saved", zap.String("book_id", book.ID), zap.String("title", book.Title), zap.Uint64("copies", book.Copies))
	return nil
}

// SaveBorrow stores the new copy count, flags the loan and appends to the borrower log
func (r *LedgerRepository) SaveBorrow(ctx context.Context, entry ledger.Entry, principal ledger.Principal) error {
	bookID := entry.ID.String()
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateCopies(tx, bookID, entry.Book.Copies, now); err != nil {
			return err
		}
		if err := upsertRecord(tx, bookID, principal, true, now); err != nil {
			return err
		}
		return tx.Create(&db.Borrower{BookID: bookID, Principal: string(principal), CreatedAt: now}).Error
	})
	if err != nil {
		r.log.Error("Failed to save borrow",
			zap.String("book_id", bookID),
			zap.String("principal", string(principal)),
			zap.Error(err),
		)
		return err
	}

	r.log.Info("Book borrowed", zap.String("book_id", bookID), zap.String("principal", string(principal)))
	return nil
}

// SaveReturn stores the new copy count and clears the loan
func (r *LedgerRepository) SaveReturn(ctx context.Context, entry ledger.Entry, principal ledger.Principal) error {
	bookID := entry.ID.String()
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateCopies(tx, bookID, entry.Book.Copies, now); err != nil {
			return err
		}
		return upsertRecord(tx, bookID, principal, false, now)
	})
	if err != nil {
		r.log.Error("Failed to save return",
			zap.String("book_id", bookID),
			zap.String("principal", string(principal)),
			zap.Error(err),
		)
		return err
	}

	r.log.Info("Book returned", zap.String("book_id", bookID), zap.String("principal", string(principal)))
	return nil
}

// GetStats returns catalog statistics straight from the database
func (r *LedgerRepository) GetStats(ctx context.Context) (books, activeLoans int64, err error) {
	if err := r.db.WithContext(ctx).Model(&db.Book{}).Count(&books).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count books: %w", err)
	}

	if err := r.db.WithContext(ctx).Model(&db.BorrowRecord{}).Where("borrowed = ?", true).Count(&activeLoans).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count active loans: %w", err)
	}

	return books, activeLoans, nil
}

// ErrStateDrift is returned when the database counts disagree with a restored ledger
var ErrStateDrift = errors.New("database counts differ from the restored ledger")

// VerifyStats compares the database counts with the in-memory ledger totals
func (r *LedgerRepository) VerifyStats(ctx context.Context, stats ledger.Stats) error {
	books, activeLoans, err := r.GetStats(ctx)
	if err != nil {
		return err
	}
	if books != int64(stats.Books) || activeLoans != int64(stats.ActiveLoans) {
		r.log.Error("Ledger state drift",
			zap.Int64("db_books", books),
			zap.Int("ledger_books", stats.Books),
			zap.Int64("db_active_loans", activeLoans),
			zap.Int("ledger_active_loans", stats.ActiveLoans),
		)
		return fmt.Errorf("%w: books %d/%d, active loans %d/%d",
			ErrStateDrift, books, stats.Books, activeLoans, stats.ActiveLoans)
	}
	return nil
}

func toBookRow(entry ledger.Entry) db.Book {
	now := time.Now()
	return db.Book{
		ID:        entry.ID.String(),
		Title:     entry.Book.Title,
		Copies:    entry.Book.Copies,
		Position:  entry.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func updateCopies(tx *gorm.DB, bookID string, copies uint64, now time.Time) error {
	result := tx.Model(&db.Book{}).Where("id = ?", bookID).Updates(map[string]interface{}{
		"copies":     copies,
		"updated_at": now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("book %s: %w", bookID, ledger.ErrNotFound)
	}
	return nil
}

func upsertRecord(tx *gorm.DB, bookID string, principal ledger.Principal, borrowed bool, now time.Time) error {
	record := db.BorrowRecord{
		BookID:    bookID,
		Principal: string(principal),
		Borrowed:  borrowed,
		UpdatedAt: now,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "book_id"}, {Name: "principal"}},
		DoUpdates: clause.AssignmentColumns([]string{"borrowed", "updated_at"}),
	}).Create(&record).Error
}
