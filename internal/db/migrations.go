package db

import (
	"gorm.io/gorm"
)

// RunMigrations creates or updates the ledger tables
func RunMigrations(db *DB) error {
	if err := db.AutoMigrate(&Setting{}, &Book{}, &BorrowRecord{}, &Borrower{}); err != nil {
		return err
	}

	if db.Dialector.Name() == DriverPostgres {
		if err := createIndexes(db.DB); err != nil {
			return err
		}
	}

	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Active loans per book
		`CREATE INDEX IF NOT EXISTS idx_borrow_records_active ON borrow_records(book_id) WHERE borrowed = true`,

		// Available titles in catalog order
		`CREATE INDEX IF NOT EXISTS idx_books_available ON books(position) WHERE copies > 0`,
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			return err
		}
	}

	return nil
}
