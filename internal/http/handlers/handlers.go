// Handler wiring.
//
// This file defines the service contracts consumed by the HTTP layer, the
// Broadcaster seam used to fan events out after mutations commit, and the
// Handlers aggregate that router setup binds routes to.
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. Every mutation that changes
// shared state calls the Broadcaster after the service call has returned
// successfully, so a broadcast failure can never affect the HTTP response.
package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prayoverus/go-prayer-backend/internal/domain"
	"github.com/prayoverus/go-prayer-backend/internal/services"
)

// Broadcaster delivers a best-effort fan-out signal to connected clients.
// Implementations must never block beyond a socket write and must swallow
// per-socket failures; see the notify package.
type Broadcaster interface {
	Broadcast(eventType string, data any)
}

// PrayerService defines prayer lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PrayerService interface {
	// Create persists a new prayer; the bool reports an idempotent replay.
	Create(ctx context.Context, in services.CreatePrayerInput) (*domain.Prayer, bool, error)
	// Get returns one prayer with support counts, enforcing visibility.
	Get(ctx context.Context, userID, prayerID string) (*domain.Prayer, error)
	// Feed returns a page of the public feed and the total count.
	Feed(ctx context.Context, page, pageSize int) ([]domain.Prayer, int64, error)
	// ListMine returns all prayers authored by userID.
	ListMine(ctx context.Context, userID string) ([]domain.Prayer, error)
	// Delete soft-deletes a prayer owned by userID.
	Delete(ctx context.Context, userID, prayerID string) error
}

// SupportService defines operations for support marks on prayers.
type SupportService interface {
	Add(ctx context.Context, userID, prayerID, typ string) (*domain.Support, error)
	Remove(ctx context.Context, userID, prayerID, typ string) error
}

// CommentService defines operations for comments on prayers.
type CommentService interface {
	Add(ctx context.Context, userID, prayerID, content string) (*domain.Comment, error)
	ListPage(ctx context.Context, prayerID string, page, pageSize int) ([]domain.Comment, int64, error)
}

// GroupService defines group lifecycle and membership operations.
type GroupService interface {
	Create(ctx context.Context, userID, name string) (*domain.Group, error)
	ListMine(ctx context.Context, userID string) ([]domain.Group, error)
	Join(ctx context.Context, userID, groupID string) error
	Prayers(ctx context.Context, userID, groupID string, page, pageSize int) ([]domain.Prayer, error)
}

// Handlers groups HTTP endpoints for prayers, support, comments, and groups.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic, and on a Broadcaster for post-commit fan-out.
type Handlers struct {
	prayerSvc  PrayerService
	supportSvc SupportService
	commentSvc CommentService
	groupSvc   GroupService
	hub        Broadcaster
}

// New constructs a Handlers instance bound to the given services and hub.
func New(prayerSvc PrayerService, supportSvc SupportService, commentSvc CommentService, groupSvc GroupService, hub Broadcaster) *Handlers {
	return &Handlers{
		prayerSvc:  prayerSvc,
		supportSvc: supportSvc,
		commentSvc: commentSvc,
		groupSvc:   groupSvc,
		hub:        hub,
	}
}

// broadcast fans an event out when a hub is wired; tests may leave it nil.
func (h *Handlers) broadcast(eventType string, data any) {
	if h.hub != nil {
		h.hub.Broadcast(eventType, data)
	}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// pageMeta computes pagination metadata from a page request and a total.
func pageMeta(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}
