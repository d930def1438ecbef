package social

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"haircare-backend/internal/shared/server/middleware"
	"haircare-backend/internal/shared/server/paging"
	"haircare-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/:id/followers", h.followers)
	rg.GET("/users/:id/following", h.following)
}

func (h *Handler) RegisterUserRoutes(rg *gin.RouterGroup) {
	rg.PUT("/users/:id/follow", h.follow)
	rg.DELETE("/users/:id/follow", h.unfollow)
}

func (h *Handler) follow(c *gin.Context) {
	followeeID := c.Param("id")
	if err := h.Svc.Follow(c.Request.Context(), middleware.UserIDFromContext(c), followeeID); err != nil {
		writeError(c, err, "failed to follow user")
		return
	}
	h.writeCounts(c, followeeID, true)
}

func (h *Handler) unfollow(c *gin.Context) {
	followeeID := c.Param("id")
	if err := h.Svc.Unfollow(c.Request.Context(), middleware.UserIDFromContext(c), followeeID); err != nil {
		writeError(c, err, "failed to unfollow user")
		return
	}
	h.writeCounts(c, followeeID, false)
}

func (h *Handler) writeCounts(c *gin.Context, userID string, following bool) {
	followers, _, err := h.Svc.Counts(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "failed to load follow counts")
		return
	}
	respond.OK(c, gin.H{"userId": userID, "following": following, "followers": followers})
}

func (h *Handler) followers(c *gin.Context) {
	window := paging.FromQuery(c)
	items, err := h.Svc.Followers(c.Request.Context(), c.Param("id"), window.Limit, window.Offset)
	if err != nil {
		writeError(c, err, "failed to list followers")
		return
	}
	respond.OK(c, respond.Page{Items: items, Limit: window.Limit, Offset: window.Offset})
}

func (h *Handler) following(c *gin.Context) {
	window := paging.FromQuery(c)
	items, err := h.Svc.Following(c.Request.Context(), c.Param("id"), window.Limit, window.Offset)
	if err != nil {
		writeError(c, err, "failed to list following")
		return
	}
	respond.OK(c, respond.Page{Items: items, Limit: window.Limit, Offset: window.Offset})
}

func writeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}
