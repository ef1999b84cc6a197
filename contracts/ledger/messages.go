// Package ledgerapi is the wire contract of the lending ledger service.
package ledgerapi

// CallerMetadataKey carries the authenticated caller address on every call
const CallerMetadataKey = "x-caller-address"

// RequestIDMetadataKey optionally carries a request id, copied into events as
// their correlation id
const RequestIDMetadataKey = "x-request-id"

type Book struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Copies uint64 `json:"copies"`
}

type AddBookRequest struct {
	Title  string `json:"title"`
	Copies uint64 `json:"copies"`
}

type AddBookResponse struct {
	Book *Book `json:"book"`
}

type BorrowBookRequest struct {
	BookID string `json:"book_id"`
}

type BorrowBookResponse struct {
	Book *Book `json:"book"`
}

type ReturnBookRequest struct {
	BookID string `json:"book_id"`
}

type ReturnBookResponse struct {
	Book *Book `json:"book"`
}

type GetAllAvailableBooksRequest struct{}

type GetAllAvailableBooksResponse struct {
	BookIDs []string `json:"book_ids"`
}

type GetAllAddressesThatBorrowedBookRequest struct {
	BookID string `json:"book_id"`
}

type GetAllAddressesThatBorrowedBookResponse struct {
	Addresses []string `json:"addresses"`
}

// GetBookRequest looks up a book; a missing book yields an empty Book.
type GetBookRequest struct {
	BookID string `json:"book_id"`
}

type GetBookResponse struct {
	Book *Book `json:"book"`
}

type IsBorrowedRequest struct {
	Address string `json:"address"`
	BookID  string `json:"book_id"`
}

type IsBorrowedResponse struct {
	Borrowed bool `json:"borrowed"`
}

type GetOwnerRequest struct{}

type GetOwnerResponse struct {
	Owner string `json:"owner"`
}

func (b *Book) GetID() string {
	if b == nil {
		return ""
	}
	return b.ID
}

func (b *Book) GetTitle() string {
	if b == nil {
		return ""
	}
	return b.Title
}

func (b *Book) GetCopies() uint64 {
	if b == nil {
		return 0
	}
	return b.Copies
}
