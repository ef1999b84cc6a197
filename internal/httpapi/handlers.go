package httpapi

import (
	"context"
	"net/http"

	ledgerapi "github.com/ageorgief/BookLibrary/contracts/ledger"
	"github.com/ageorgief/BookLibrary/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// CallerHeader carries the authenticated caller address
const CallerHeader = "X-Caller-Address"

// RequestIDHeader becomes the correlation id of events the request triggers
const RequestIDHeader = "X-Request-Id"

// HealthChecker reports whether the service dependencies are reachable
type HealthChecker interface {
	Status() grpc_health_v1.HealthCheckResponse_ServingStatus
}

// LedgerHandler exposes the ledger service over HTTP/JSON. It delegates to the
// gRPC service implementation so both surfaces share validation and events.
type LedgerHandler struct {
	svc     ledgerapi.LedgerServiceServer
	health  HealthChecker
	metrics *metrics.Metrics
	log     *zap.Logger
}

// RegisterRoutes wires the ledger, health and metrics endpoints into r
func RegisterRoutes(r *gin.Engine, svc ledgerapi.LedgerServiceServer, health HealthChecker, m *metrics.Metrics, log *zap.Logger) {
	h := &LedgerHandler{svc: svc, health: health, metrics: m, log: log}

	v1 := r.Group("/v1")
	v1.POST("/books", h.addBook)
	v1.GET("/books/available", h.availableBooks)
	v1.GET("/books/:id", h.getBook)
	v1.POST("/books/:id/borrow", h.borrowBook)
	v1.POST("/books/:id/return", h.returnBook)
	v1.GET("/books/:id/borrowers", h.borrowers)
	v1.GET("/books/:id/borrowed/:address", h.isBorrowed)
	v1.GET("/owner", h.owner)

	r.GET("/healthz", h.healthz)
	if m != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}
}

type addBookRequest struct {
	Title  string `json:"title"`
	Copies uint64 `json:"copies"`
}

func (h *LedgerHandler) addBook(c *gin.Context) {
	var req addBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.svc.AddBook(h.callerContext(c), &ledgerapi.AddBookRequest{Title: req.Title, Copies: req.Copies})
	h.observe("AddBook", err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp.Book)
}

func (h *LedgerHandler) borrowBook(c *gin.Context) {
	resp, err := h.svc.BorrowBook(h.callerContext(c), &ledgerapi.BorrowBookRequest{BookID: c.Param("id")})
	h.observe("BorrowBook", err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.Book)
}

func (h *LedgerHandler) returnBook(c *gin.Context) {
	resp, err := h.svc.ReturnBook(h.callerContext(c), &ledgerapi.ReturnBookRequest{BookID: c.Param("id")})
	h.observe("ReturnBook", err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.Book)
}

func (h *LedgerHandler) availableBooks(c *gin.Context) {
	resp, err := h.svc.GetAllAvailableBooks(c.Request.Context(), &ledgerapi.GetAllAvailableBooksRequest{})
	h.observe("GetAllAvailableBooks", err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book_ids": nonNil(resp.BookIDs)})
}

func (h *LedgerHandler) getBook(c *gin.Context) {
	resp, err := h.svc.GetBook(c.Request.Context(), &ledgerapi.GetBookRequest{BookID: c.Param("id")})
	h.observe("GetBook", err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.Book)
}

func (h *LedgerHandler) borrowers(c *gin.Context) {
	resp, err := h.svc.GetAllAddressesThatBorrowedBook(c.Request.Context(), &ledgerapi.GetAllAddressesThatBorrowedBookRequest{BookID: c.Param("id")})
	h.observe("GetAllAddressesThatBorrowedBook", err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": nonNil(resp.Addresses)})
}

func (h *LedgerHandler) isBorrowed(c *gin.Context) {
	resp, err := h.svc.IsBorrowed(c.Request.Context(), &ledgerapi.IsBorrowedRequest{
		Address: c.Param("address"),
		BookID:  c.Param("id"),
	})
	h.observe("IsBorrowed", err)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"borrowed": resp.Borrowed})
}

func (h *LedgerHandler) owner(c *gin.Context) {
	resp, err := h.svc.GetOwner(c.Request.Context(), &ledgerapi.GetOwnerRequest{})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"owner": resp.Owner})
}

func (h *LedgerHandler) healthz(c *gin.Context) {
	if h.health != nil && h.health.Status() != grpc_health_v1.HealthCheckResponse_SERVING {
		c.String(http.StatusServiceUnavailable, "unhealthy")
		return
	}
	c.String(http.StatusOK, "healthy")
}

// callerContext moves the caller and request id headers into gRPC incoming metadata
func (h *LedgerHandler) callerContext(c *gin.Context) context.Context {
	md := metadata.MD{}
	if caller := c.GetHeader(CallerHeader); caller != "" {
		md.Set(ledgerapi.CallerMetadataKey, caller)
	}
	if requestID := c.GetHeader(RequestIDHeader); requestID != "" {
		md.Set(ledgerapi.RequestIDMetadataKey, requestID)
	}
	return metadata.NewIncomingContext(c.Request.Context(), md)
}

func (h *LedgerHandler) observe(operation string, err error) {
	if h.metrics != nil {
		h.metrics.Observe(operation, status.Code(err).String())
	}
}

func (h *LedgerHandler) fail(c *gin.Context, err error) {
	st := status.Convert(err)
	if st.Code() == codes.Internal || st.Code() == codes.Unknown {
		h.log.Error("HTTP request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(HTTPStatus(st.Code()), gin.H{
		"error": st.Message(),
		"code":  st.Code().String(),
	})
}

// HTTPStatus maps gRPC codes returned by the ledger service onto HTTP statuses
func HTTPStatus(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.FailedPrecondition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
