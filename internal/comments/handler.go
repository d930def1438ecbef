package comments

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"haircare-backend/internal/regimens"
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
	rg.GET("/regimens/:id/comments", h.list)
}

func (h *Handler) RegisterUserRoutes(rg *gin.RouterGroup) {
	rg.POST("/regimens/:id/comments", h.create)
	rg.DELETE("/comments/:id", h.delete)
}

type createRequest struct {
	Content string `json:"content"`
}

func (h *Handler) create(c *gin.Context) {
	regimenID := c.Param("id")
	c.Set(middleware.LogRegimenIDKey, regimenID)
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	comment, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), regimenID, req.Content)
	if err != nil {
		writeError(c, err, "failed to add comment")
		return
	}
	respond.JSON(c, http.StatusCreated, comment)
}

func (h *Handler) list(c *gin.Context) {
	regimenID := c.Param("id")
	c.Set(middleware.LogRegimenIDKey, regimenID)
	window := paging.FromQuery(c)
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), regimenID, window.Limit, window.Offset)
	if err != nil {
		writeError(c, err, "failed to list comments")
		return
	}
	respond.OK(c, respond.Page{Items: items, Limit: window.Limit, Offset: window.Offset})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete comment")
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, regimens.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "regimen not found", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "comment not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "only the comment or regimen author can delete this comment", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}
