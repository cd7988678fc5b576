// Comment HTTP handlers.
//
// This file exposes REST endpoints for comments on prayers:
//   - POST /prayers/{id}/comments   (add a comment)
//   - GET  /prayers/{id}/comments   (list paginated comments)
//
// Adding a comment triggers a "new_comment" fan-out event after the row has
// committed.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prayoverus/go-prayer-backend/internal/domain"
	"github.com/prayoverus/go-prayer-backend/internal/notify"
	"github.com/prayoverus/go-prayer-backend/internal/services"
)

// AddCommentRequest is the JSON payload for commenting on a prayer.
type AddCommentRequest struct {
	// Content is the comment text. It must be non-empty.
	Content string `json:"content" binding:"required,min=1" example:"Praying for you"`
}

// ListCommentsResponse contains a page of comments and pagination metadata.
type ListCommentsResponse struct {
	Comments   []domain.Comment `json:"comments"`
	Pagination Pagination       `json:"pagination"`
}

// AddComment godoc
// @ID          addComment
// @Summary     Comment on a prayer
// @Tags        Comments
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Prayer ID (UUID)"       format(uuid)
// @Param       body       body    handlers.AddCommentRequest  true  "Comment payload"
//
// @Success     201  {object} domain.Comment
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Prayer not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /prayers/{id}/comments [post]
func (h *Handlers) AddComment(c *gin.Context) {
	prayerID := c.Param("id")
	if _, err := uuid.Parse(prayerID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prayer id must be a UUID")
		return
	}
	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	uid := userID(c)
	cm, err := h.commentSvc.Add(c.Request.Context(), uid, prayerID, req.Content)
	if err != nil {
		switch err {
		case services.ErrEmptyContent:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		case services.ErrContentTooLong:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content too long")
		case services.ErrPrayerNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "prayer not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, cm)

	h.broadcast(notify.EventNewComment, gin.H{
		"id":        cm.ID,
		"prayer_id": prayerID,
		"user_id":   uid,
	})
}

// ListComments godoc
// @ID          listComments
// @Summary     List comments on a prayer
// @Description Returns a paginated list of comments, oldest first.
// @Tags        Comments
// @Produce     json
//
// @Param       id         path   string  true  "Prayer ID (UUID)"  format(uuid)
// @Param       page       query  int     false "Page number"       minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"    minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListCommentsResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Prayer not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /prayers/{id}/comments [get]
func (h *Handlers) ListComments(c *gin.Context) {
	prayerID := c.Param("id")
	if _, err := uuid.Parse(prayerID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prayer id must be a UUID")
		return
	}
	page, pageSize := clampPagination(c)

	items, total, err := h.commentSvc.ListPage(c.Request.Context(), prayerID, page, pageSize)
	if err != nil {
		switch err {
		case services.ErrPrayerNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "prayer not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, ListCommentsResponse{
		Comments:   items,
		Pagination: pageMeta(page, pageSize, total),
	})
}
