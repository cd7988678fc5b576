// Group HTTP handlers.
//
// Endpoints:
//   - POST /groups               (create a prayer circle, owner auto-joins)
//   - GET  /groups               (list groups the caller belongs to)
//   - POST /groups/{id}/members  (join a group)
//   - GET  /groups/{id}/prayers  (member-only group feed)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prayoverus/go-prayer-backend/internal/domain"
	"github.com/prayoverus/go-prayer-backend/internal/services"
)

// CreateGroupRequest is the JSON payload for creating a group.
type CreateGroupRequest struct {
	// Name is the display name of the group. It is title-cased server side
	// and falls back to a default when blank.
	Name string `json:"name" example:"Morning Prayer Circle"`
}

// GroupListResponse contains the caller's groups.
type GroupListResponse struct {
	Groups []domain.Group `json:"groups"`
}

// GroupPrayersResponse contains a page of a group's prayers.
type GroupPrayersResponse struct {
	Prayers []domain.Prayer `json:"prayers"`
}

// CreateGroup godoc
// @ID          createGroup
// @Summary     Create a prayer group
// @Tags        Groups
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.CreateGroupRequest  true  "Group payload"
//
// @Success     201  {object} domain.Group
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /groups [post]
func (h *Handlers) CreateGroup(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid payload")
		return
	}

	g, err := h.groupSvc.Create(c.Request.Context(), userID(c), req.Name)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, g)
}

// ListGroups godoc
// @ID          listGroups
// @Summary     List my groups
// @Tags        Groups
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object} handlers.GroupListResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /groups [get]
func (h *Handlers) ListGroups(c *gin.Context) {
	groups, err := h.groupSvc.ListMine(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, GroupListResponse{Groups: groups})
}

// JoinGroup godoc
// @ID          joinGroup
// @Summary     Join a prayer group
// @Tags        Groups
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Group ID (UUID)"        format(uuid)
//
// @Success     204  "Joined"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Group not found"
// @Failure     409  {object} handlers.ErrorResponse "Already a member"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /groups/{id}/members [post]
func (h *Handlers) JoinGroup(c *gin.Context) {
	groupID := c.Param("id")
	if _, err := uuid.Parse(groupID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "group id must be a UUID")
		return
	}

	err := h.groupSvc.Join(c.Request.Context(), userID(c), groupID)
	if err != nil {
		switch err {
		case services.ErrGroupNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "group not found")
		case services.ErrAlreadyMember:
			fail(c, http.StatusConflict, ErrCodeConflict, "already a member")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

// GroupPrayers godoc
// @ID          groupPrayers
// @Summary     List a group's prayers
// @Description Returns a page of prayers shared with the group. Members only.
// @Tags        Groups
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Group ID (UUID)"        format(uuid)
// @Param       page       query   int     false "Page number"            minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"         minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.GroupPrayersResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not a member"
// @Failure     404  {object} handlers.ErrorResponse "Group not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /groups/{id}/prayers [get]
func (h *Handlers) GroupPrayers(c *gin.Context) {
	groupID := c.Param("id")
	if _, err := uuid.Parse(groupID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "group id must be a UUID")
		return
	}
	page, pageSize := clampPagination(c)

	prayers, err := h.groupSvc.Prayers(c.Request.Context(), userID(c), groupID, page, pageSize)
	if err != nil {
		switch err {
		case services.ErrGroupNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "group not found")
		case services.ErrNotGroupMember:
			fail(c, http.StatusForbidden, ErrCodeForbidden, "not a group member")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, GroupPrayersResponse{Prayers: prayers})
}
