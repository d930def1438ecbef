package chat

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"haircare-backend/internal/shared/server/middleware"
	"haircare-backend/internal/shared/server/respond"
	"haircare-backend/internal/usage"
)

type Handler struct {
	Svc          *Service
	ProviderName string
}

func NewHandler(svc *Service, providerName string) *Handler {
	return &Handler{Svc: svc, ProviderName: providerName}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat", h.send)
}

func (h *Handler) send(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	c.Set(middleware.LogProviderKey, h.ProviderName)

	reply, err := h.Svc.Send(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, usage.ErrLimitReached):
			respond.Error(c, http.StatusTooManyRequests, "limit_reached", "Daily chat limit reached", gin.H{
				"limit":    reply.Usage.Limit,
				"used":     reply.Usage.Used,
				"resetsAt": reply.Usage.ResetsAt,
			})
		case errors.Is(err, ErrUpstream):
			respond.Error(c, http.StatusBadGateway, "upstream_error", "The assistant is unavailable, try again later", nil)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to send message", nil)
		}
		return
	}
	respond.OK(c, reply)
}
