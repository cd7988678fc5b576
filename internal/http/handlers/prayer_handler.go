// Prayer HTTP handlers.
//
// This file exposes REST endpoints for prayer resources:
//   - POST   /prayers        (create, idempotent via X-Idempotency-Key)
//   - GET    /prayers        (public feed, paginated, ETag support)
//   - GET    /prayers/mine   (own prayers)
//   - GET    /prayers/{id}   (single prayer with support counts)
//   - DELETE /prayers/{id}   (soft delete, owner only)
//
// Creating a public prayer triggers a "new_prayer" fan-out event after the
// row has committed. The event carries identifying fields only, never the
// prayer content, so private data cannot leak through the unauthenticated
// WebSocket endpoint.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prayoverus/go-prayer-backend/internal/domain"
	"github.com/prayoverus/go-prayer-backend/internal/http/middleware"
	"github.com/prayoverus/go-prayer-backend/internal/notify"
	"github.com/prayoverus/go-prayer-backend/internal/repo"
	"github.com/prayoverus/go-prayer-backend/internal/services"
	"github.com/prayoverus/go-prayer-backend/internal/utils"
)

//
// DTOs
//

// CreatePrayerRequest is the JSON payload for posting a prayer.
//
// IdempotencyKey mirrors the X-Idempotency-Key header for clients whose
// transport strips custom headers; when both are present the header wins.
type CreatePrayerRequest struct {
	// Content is the prayer text. Length limits are enforced server-side.
	Content string `json:"content" binding:"required,min=1" example:"Please help my family through this week"`
	// Public places the prayer in the community feed.
	Public bool `json:"public"`
	// GroupID optionally posts the prayer into a group the author belongs to.
	GroupID *string `json:"group_id,omitempty"`
	// IdempotencyKey duplicates the X-Idempotency-Key header in the body.
	IdempotencyKey string `json:"idempotencyKey,omitempty" example:"request-1717171717171-abc123"`
}

// FeedResponse wraps a page of public prayers and pagination information.
type FeedResponse struct {
	Prayers    []domain.Prayer `json:"prayers"`
	Pagination Pagination      `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// creationKey resolves the idempotency key for this request: the validated
// header value when present, otherwise the body field.
func creationKey(c *gin.Context, body *CreatePrayerRequest) string {
	if k, okKey := middleware.GetIdempotencyKey(c); okKey {
		return k
	}
	return body.IdempotencyKey
}

//
// Handlers
//

// CreatePrayer godoc
// @ID          createPrayer
// @Summary     Post a prayer request
// @Description Creates a prayer for the current user. Supports idempotency via
// @Description the X-Idempotency-Key header (same key → same prayer). Public
// @Description prayers are announced to all connected WebSocket clients.
// @Tags        Prayers
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID          header  string  false "User ID (demo header)"  example(user123)
// @Param       X-Idempotency-Key  header  string  false "Idempotency key for safe retries"  example(request-1717171717171-abc123)
// @Param       body               body    handlers.CreatePrayerRequest  true  "Create prayer payload"
//
// @Success     201  {object}  domain.Prayer
// @Success     200  {object}  domain.Prayer  "Replayed from a previous request with the same key"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a member of the target group"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /prayers [post]
func (h *Handlers) CreatePrayer(c *gin.Context) {
	var req CreatePrayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	p, replayed, err := h.prayerSvc.Create(c.Request.Context(), services.CreatePrayerInput{
		UserID:         userID(c),
		Content:        req.Content,
		Public:         req.Public,
		GroupID:        req.GroupID,
		IdempotencyKey: creationKey(c, &req),
	})
	if err != nil {
		switch err {
		case services.ErrEmptyContent:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		case services.ErrContentTooShort:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content too short")
		case services.ErrContentTooLong:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content too long")
		case services.ErrNotGroupMember:
			fail(c, http.StatusForbidden, ErrCodeForbidden, "not a member of this group")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}

	if replayed {
		c.Header("Idempotency-Replayed", "true")
		ok(c, http.StatusOK, p)
		return
	}
	ok(c, http.StatusCreated, p)

	// Fan-out after the response-determining work is done; public only.
	if p.Public {
		h.broadcast(notify.EventNewPrayer, gin.H{
			"id":         p.ID,
			"user_id":    p.UserID,
			"created_at": p.CreatedAt,
		})
	}
}

// Feed godoc
// @ID          feed
// @Summary     List the public prayer feed (paginated)
// @Description Returns a page of public prayers, newest first. Supports weak
// @Description ETag via If-None-Match and may return 304.
// @Tags        Prayers
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"feed:3:1717171717\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.FeedResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /prayers [get]
func (h *Handlers) Feed(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if et, okStats := h.feedETag(c); okStats {
		c.Header("ETag", et)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == et {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.prayerSvc.Feed(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, FeedResponse{
		Prayers:    items,
		Pagination: pageMeta(page, pageSize, total),
	})
}

// feedETag derives a weak ETag for the public feed from its row count and
// newest timestamp. It requires the concrete service for DB access and
// degrades to no ETag behind stub services in tests.
func (h *Handlers) feedETag(c *gin.Context) (string, bool) {
	svc, okSvc := h.prayerSvc.(*services.PrayerService)
	if !okSvc || svc.DB == nil {
		return "", false
	}
	count, maxTS, err := feedStats(c.Request.Context(), svc)
	if err != nil {
		return "", false
	}
	var ts int64
	if maxTS != nil {
		ts = maxTS.Unix()
	}
	return fmt.Sprintf(`W/"feed:%d:%d"`, count, ts), true
}

// feedStats proxies repo.PublicFeedStats for ETag derivation.
func feedStats(ctx context.Context, svc *services.PrayerService) (int64, *time.Time, error) {
	return repo.PublicFeedStats(ctx, svc.DB)
}

// GetPrayer godoc
// @ID          getPrayer
// @Summary     Fetch a single prayer
// @Description Returns one prayer with per-type support counts. Private
// @Description prayers are visible to their owner and group members only.
// @Tags        Prayers
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Prayer ID (UUID)"       format(uuid)
//
// @Success     200  {object} domain.Prayer
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Private prayer"
// @Failure     404  {object} handlers.ErrorResponse "Prayer not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /prayers/{id} [get]
func (h *Handlers) GetPrayer(c *gin.Context) {
	prayerID := c.Param("id")
	if _, err := uuid.Parse(prayerID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prayer id must be a UUID")
		return
	}

	p, err := h.prayerSvc.Get(c.Request.Context(), userID(c), prayerID)
	if err != nil {
		switch err {
		case services.ErrPrayerNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "prayer not found")
		case services.ErrForbidden:
			fail(c, http.StatusForbidden, ErrCodeForbidden, "not allowed to view this prayer")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, p)
}

// ListMine godoc
// @ID          listMyPrayers
// @Summary     List the current user's prayers
// @Tags        Prayers
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {array}  domain.Prayer
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /prayers/mine [get]
func (h *Handlers) ListMine(c *gin.Context) {
	items, err := h.prayerSvc.ListMine(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// DeletePrayer godoc
// @ID          deletePrayer
// @Summary     Delete a prayer
// @Description Soft-deletes a prayer owned by the current user.
// @Tags        Prayers
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Prayer ID (UUID)"       format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Prayer not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /prayers/{id} [delete]
func (h *Handlers) DeletePrayer(c *gin.Context) {
	prayerID := c.Param("id")
	if _, err := uuid.Parse(prayerID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prayer id must be a UUID")
		return
	}
	if err := h.prayerSvc.Delete(c.Request.Context(), userID(c), prayerID); err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "prayer not found")
		return
	}
	noContent(c)
}
