// Support HTTP handlers.
//
// This file exposes REST endpoints for support marks on prayers:
//   - POST   /prayers/{id}/support          (add a support of a given type)
//   - DELETE /prayers/{id}/support/{type}   (remove the caller's support)
//
// Both mutations trigger a fan-out event ("prayer_support" /
// "prayer_support_removed") after the row has committed.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prayoverus/go-prayer-backend/internal/notify"
	"github.com/prayoverus/go-prayer-backend/internal/services"
)

// AddSupportRequest is the JSON payload for supporting a prayer.
type AddSupportRequest struct {
	// Type is one of: praying, heart, hug.
	Type string `json:"type" binding:"required" example:"praying"`
}

// AddSupport godoc
// @ID          addSupport
// @Summary     Support a prayer
// @Description Adds a support mark of the given type. A user can give each
// @Description type at most once per prayer.
// @Tags        Support
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Prayer ID (UUID)"       format(uuid)
// @Param       body       body    handlers.AddSupportRequest  true  "Support payload"
//
// @Success     201  {object} domain.Support
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Prayer not found"
// @Failure     409  {object} handlers.ErrorResponse "Support already exists"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /prayers/{id}/support [post]
func (h *Handlers) AddSupport(c *gin.Context) {
	prayerID := c.Param("id")
	if _, err := uuid.Parse(prayerID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prayer id must be a UUID")
		return
	}
	var req AddSupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "type required")
		return
	}

	uid := userID(c)
	sup, err := h.supportSvc.Add(c.Request.Context(), uid, prayerID, req.Type)
	if err != nil {
		switch err {
		case services.ErrInvalidSupportType:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "type must be one of: praying, heart, hug")
		case services.ErrPrayerNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "prayer not found")
		case services.ErrDuplicateSupport:
			fail(c, http.StatusConflict, ErrCodeConflict, "support already exists")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, sup)

	h.broadcast(notify.EventPrayerSupport, gin.H{
		"prayer_id": prayerID,
		"user_id":   uid,
		"type":      sup.Type,
	})
}

// RemoveSupport godoc
// @ID          removeSupport
// @Summary     Withdraw support from a prayer
// @Description Removes the caller's support mark of the given type.
// @Tags        Support
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Prayer ID (UUID)"       format(uuid)
// @Param       type       path    string  true  "Support type"           example(praying)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Support not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /prayers/{id}/support/{type} [delete]
func (h *Handlers) RemoveSupport(c *gin.Context) {
	prayerID := c.Param("id")
	typ := c.Param("type")
	if _, err := uuid.Parse(prayerID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prayer id must be a UUID")
		return
	}

	uid := userID(c)
	if err := h.supportSvc.Remove(c.Request.Context(), uid, prayerID, typ); err != nil {
		switch err {
		case services.ErrInvalidSupportType:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "type must be one of: praying, heart, hug")
		case services.ErrSupportNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "support not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)

	h.broadcast(notify.EventPrayerSupportRemoved, gin.H{
		"prayer_id": prayerID,
		"user_id":   uid,
		"type":      typ,
	})
}
