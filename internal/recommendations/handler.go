package recommendations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"haircare-backend/internal/shared/server/middleware"
	"haircare-backend/internal/shared/server/respond"
)

// Handler exposes recommendation endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/recommendations", h.create)
	rg.GET("/recommendations/latest", h.latest)
}

func (h *Handler) create(c *gin.Context) {
	var req Request
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}

	result, err := h.Svc.Recommend(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, result)
}

func (h *Handler) latest(c *gin.Context) {
	result, err := h.Svc.Latest(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, result)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrQuizRequired):
		respond.Error(c, http.StatusBadRequest, "quiz_required", "Complete the hair quiz or send answers", nil)
	case IsInputError(err):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "no recommendations yet", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build recommendations", nil)
	}
}
