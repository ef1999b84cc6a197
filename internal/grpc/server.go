package grpc

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	ledgerapi "github.com/ageorgief/BookLibrary/contracts/ledger"
	"github.com/ageorgief/BookLibrary/internal/events"
	"github.com/ageorgief/BookLibrary/internal/ledger"
	"github.com/ageorgief/BookLibrary/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const publishTimeout = 10 * time.Second

// EventPublisher sends notifications about committed ledger mutations
type EventPublisher interface {
	PublishBookAdded(ctx context.Context, id ledger.BookID, book ledger.Book, added uint64) error
	PublishBookBorrowed(ctx context.Context, id ledger.BookID, principal ledger.Principal, copiesLeft uint64) error
	PublishBookReturned(ctx context.Context, id ledger.BookID, principal ledger.Principal, copiesLeft uint64) error
	IsHealthy() bool
}

// LedgerServer implements the LedgerService gRPC service
type LedgerServer struct {
	ledgerapi.UnimplementedLedgerServiceServer
	ledger    *ledger.Ledger
	publisher EventPublisher
	log       *zap.Logger
}

// NewLedgerServer creates a new ledger gRPC server
func NewLedgerServer(l *ledger.Ledger, publisher EventPublisher, log *zap.Logger) *LedgerServer {
	return &LedgerServer{
		ledger:    l,
		publisher: publisher,
		log:       log,
	}
}

// RegisterLedgerService registers the ledger service with the gRPC server
func RegisterLedgerService(s *grpc.Server, srv *LedgerServer) {
	ledgerapi.RegisterLedgerServiceServer(s, srv)
}

// AddBook registers copies of a title. Owner only.
func (s *LedgerServer) AddBook(ctx context.Context, req *ledgerapi.AddBookRequest) (*ledgerapi.AddBookResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.ledger.AddBook(ctx, caller, req.Title, req.Copies)
	if err != nil {
		return nil, s.toStatus(err, "failed to add book")
	}

	id := ledger.IDFromTitle(req.Title)
	s.publish(ctx, func(ctx context.Context) error {
		return s.publisher.PublishBookAdded(ctx, id, book, req.Copies)
	})

	return &ledgerapi.AddBookResponse{Book: bookToAPI(id, book)}, nil
}

// BorrowBook lends one copy to the caller
func (s *LedgerServer) BorrowBook(ctx context.Context, req *ledgerapi.BorrowBookRequest) (*ledgerapi.BorrowBookResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := ledger.ParseBookID(req.BookID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	book, err := s.ledger.BorrowBook(ctx, caller, id)
	if err != nil {
		return nil, s.toStatus(err, "failed to borrow book")
	}

	s.publish(ctx, func(ctx context.Context) error {
		return s.publisher.PublishBookBorrowed(ctx, id, caller, book.Copies)
	})

	return &ledgerapi.BorrowBookResponse{Book: bookToAPI(id, book)}, nil
}

// ReturnBook takes back the caller's copy
func (s *LedgerServer) ReturnBook(ctx context.Context, req *ledgerapi.ReturnBookRequest) (*ledgerapi.ReturnBookResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := ledger.ParseBookID(req.BookID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	book, err := s.ledger.ReturnBook(ctx, caller, id)
	if err != nil {
		return nil, s.toStatus(err, "failed to return book")
	}

	s.publish(ctx, func(ctx context.Context) error {
		return s.publisher.PublishBookReturned(ctx, id, caller, book.Copies)
	})

	return &ledgerapi.ReturnBookResponse{Book: bookToAPI(id, book)}, nil
}

// GetAllAvailableBooks lists ids with copies on the shelf
func (s *LedgerServer) GetAllAvailableBooks(ctx context.Context, req *ledgerapi.GetAllAvailableBooksRequest) (*ledgerapi.GetAllAvailableBooksResponse, error) {
	ids := s.ledger.GetAllAvailableBooks()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return &ledgerapi.GetAllAvailableBooksResponse{BookIDs: out}, nil
}

// GetAllAddressesThatBorrowedBook returns the borrower log of a book
func (s *LedgerServer) GetAllAddressesThatBorrowedBook(ctx context.Context, req *ledgerapi.GetAllAddressesThatBorrowedBookRequest) (*ledgerapi.GetAllAddressesThatBorrowedBookResponse, error) {
	id, err := ledger.ParseBookID(req.BookID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	principals, err := s.ledger.GetAllAddressesThatBorrowedBook(id)
	if err != nil {
		return nil, s.toStatus(err, "failed to list borrowers")
	}

	out := make([]string, len(principals))
	for i, p := range principals {
		out[i] = string(p)
	}
	return &ledgerapi.GetAllAddressesThatBorrowedBookResponse{Addresses: out}, nil
}

// GetBook returns the stored book, or an empty book for unknown ids
func (s *LedgerServer) GetBook(ctx context.Context, req *ledgerapi.GetBookRequest) (*ledgerapi.GetBookResponse, error) {
	id, err := ledger.ParseBookID(req.BookID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return &ledgerapi.GetBookResponse{Book: bookToAPI(id, s.ledger.Books(id))}, nil
}

// IsBorrowed reports whether an address currently holds a book
func (s *LedgerServer) IsBorrowed(ctx context.Context, req *ledgerapi.IsBorrowedRequest) (*ledgerapi.IsBorrowedResponse, error) {
	id, err := ledger.ParseBookID(req.BookID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	borrowed := s.ledger.BorrowedBook(ledger.Principal(strings.TrimSpace(req.Address)), id)
	return &ledgerapi.IsBorrowedResponse{Borrowed: borrowed}, nil
}

func (s *LedgerServer) GetOwner(ctx context.Context, req *ledgerapi.GetOwnerRequest) (*ledgerapi.GetOwnerResponse, error) {
	return &ledgerapi.GetOwnerResponse{Owner: string(s.ledger.Owner())}, nil
}

// Helper functions

// publish runs fn in the background; a failed notification never fails the request.
// The request id of ctx becomes the event's correlation id.
func (s *LedgerServer) publish(ctx context.Context, fn func(ctx context.Context) error) {
	if s.publisher == nil {
		return
	}
	ctx = events.WithCorrelationID(context.WithoutCancel(ctx), RequestID(ctx))
	go func() {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			s.log.Error("Failed to publish ledger event", zap.Error(err))
		}
	}()
}

func (s *LedgerServer) toStatus(err error, msg string) error {
	code := Code(err)
	if code == codes.Internal {
		s.log.Error(msg, zap.Error(err))
		return status.Error(codes.Internal, msg)
	}
	return status.Error(code, err.Error())
}

// Code maps ledger errors onto gRPC codes
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, ledger.ErrUnauthorized):
		return codes.PermissionDenied
	case errors.Is(err, ledger.ErrInvalidArgument):
		return codes.InvalidArgument
	case errors.Is(err, ledger.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, ledger.ErrAlreadyBorrowed):
		return codes.AlreadyExists
	case errors.Is(err, ledger.ErrNoCopiesAvailable), errors.Is(err, ledger.ErrNotBorrowed):
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

func callerFromContext(ctx context.Context) (ledger.Principal, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "caller address is required")
	}
	values := md.Get(ledgerapi.CallerMetadataKey)
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return "", status.Error(codes.Unauthenticated, "caller address is required")
	}
	return ledger.Principal(strings.TrimSpace(values[0])), nil
}

// RequestID returns the caller-supplied request id, or a fresh one when the
// request carries none
func RequestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(ledgerapi.RequestIDMetadataKey); len(values) > 0 && strings.TrimSpace(values[0]) != "" {
			return strings.TrimSpace(values[0])
		}
	}
	return uuid.NewString()
}

func bookToAPI(id ledger.BookID, book ledger.Book) *ledgerapi.Book {
	return &ledgerapi.Book{
		ID:     id.String(),
		Title:  book.Title,
		Copies: book.Copies,
	}
}

// LoggingInterceptor logs all gRPC requests. It assigns a request id to calls
// that arrive without one so the log line and any event share it.
func LoggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		requestID := RequestID(ctx)
		md, _ := metadata.FromIncomingContext(ctx)
		md = md.Copy()
		md.Set(ledgerapi.RequestIDMetadataKey, requestID)
		ctx = metadata.NewIncomingContext(ctx, md)

		resp, err := handler(ctx, req)

		if err != nil {
			log.Warn("gRPC request failed",
				zap.String("method", info.FullMethod),
				zap.String("request_id", requestID),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
		} else {
			log.Info("gRPC request completed",
				zap.String("method", info.FullMethod),
				zap.String("request_id", requestID),
				zap.Duration("duration", time.Since(start)),
			)
		}

		return resp, err
	}
}

// MetricsInterceptor counts requests by method and status code
func MetricsInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		m.Observe(path.Base(info.FullMethod), status.Code(err).String())
		return resp, err
	}
}
