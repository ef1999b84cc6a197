package clients

import (
	"context"
	"fmt"

	ledgerapi "github.com/ageorgief/BookLibrary/contracts/ledger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// LedgerClient wraps the gRPC connection to the lending service and signs
// every call with the configured caller address
type LedgerClient struct {
	conn   *grpc.ClientConn
	client ledgerapi.LedgerServiceClient
	caller string
	log    *zap.Logger
}

// NewLedgerClient creates a client for the service at addr
func NewLedgerClient(addr, caller string, log *zap.Logger, opts ...grpc.DialOption) (*LedgerClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to lending service: %w", err)
	}

	log.Debug("Ledger client created", zap.String("addr", addr), zap.String("caller", caller))

	return &LedgerClient{
		conn:   conn,
		client: ledgerapi.NewLedgerServiceClient(conn),
		caller: caller,
		log:    log,
	}, nil
}

func (c *LedgerClient) withCaller(ctx context.Context) context.Context {
	if c.caller == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, ledgerapi.CallerMetadataKey, c.caller)
}

// AddBook registers copies of a title
func (c *LedgerClient) AddBook(ctx context.Context, title string, copies uint64) (*ledgerapi.Book, error) {
	resp, err := c.client.AddBook(c.withCaller(ctx), &ledgerapi.AddBookRequest{Title: title, Copies: copies})
	if err != nil {
		return nil, err
	}
	return resp.Book, nil
}

// BorrowBook borrows one copy for the caller
func (c *LedgerClient) BorrowBook(ctx context.Context, bookID string) (*ledgerapi.Book, error) {
	resp, err := c.client.BorrowBook(c.withCaller(ctx), &ledgerapi.BorrowBookRequest{BookID: bookID})
	if err != nil {
		return nil, err
	}
	return resp.Book, nil
}

// ReturnBook returns the caller's copy
func (c *LedgerClient) ReturnBook(ctx context.Context, bookID string) (*ledgerapi.Book, error) {
	resp, err := c.client.ReturnBook(c.withCaller(ctx), &ledgerapi.ReturnBookRequest{BookID: bookID})
	if err != nil {
		return nil, err
	}
	return resp.Book, nil
}

func (c *LedgerClient) AvailableBooks(ctx context.Context) ([]string, error) {
	resp, err := c.client.GetAllAvailableBooks(ctx, &ledgerapi.GetAllAvailableBooksRequest{})
	if err != nil {
		return nil, err
	}
	return resp.BookIDs, nil
}

func (c *LedgerClient) Borrowers(ctx context.Context, bookID string) ([]string, error) {
	resp, err := c.client.GetAllAddressesThatBorrowedBook(ctx, &ledgerapi.GetAllAddressesThatBorrowedBookRequest{BookID: bookID})
	if err != nil {
		return nil, err
	}
	return resp.Addresses, nil
}

func (c *LedgerClient) Book(ctx context.Context, bookID string) (*ledgerapi.Book, error) {
	resp, err := c.client.GetBook(ctx, &ledgerapi.GetBookRequest{BookID: bookID})
	if err != nil {
		return nil, err
	}
	return resp.Book, nil
}

func (c *LedgerClient) IsBorrowed(ctx context.Context, address, bookID string) (bool, error) {
	resp, err := c.client.IsBorrowed(ctx, &ledgerapi.IsBorrowedRequest{Address: address, BookID: bookID})
	if err != nil {
		return false, err
	}
	return resp.Borrowed, nil
}

func (c *LedgerClient) Owner(ctx context.Context) (string, error) {
	resp, err := c.client.GetOwner(ctx, &ledgerapi.GetOwnerRequest{})
	if err != nil {
		return "", err
	}
	return resp.Owner, nil
}

// Close closes the connection to the lending service
func (c *LedgerClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
