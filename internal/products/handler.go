package products

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"haircare-backend/internal/shared/server/middleware"
	"haircare-backend/internal/shared/server/paging"
	"haircare-backend/internal/shared/server/respond"
)

// Handler exposes catalog endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products", h.list)
	rg.GET("/products/external", h.searchExternal)
	rg.GET("/products/barcode/:code", h.barcode)
	rg.GET("/products/:id", h.get)
}

func (h *Handler) list(c *gin.Context) {
	window := paging.FromQuery(c)
	filter := Filter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		HairType: c.Query("hairType"),
		Tag:      c.Query("tag"),
		Sort:     c.Query("sort"),
		Limit:    window.Limit,
		Offset:   window.Offset,
	}
	var ok bool
	if filter.MinPrice, ok = floatQuery(c, "minPrice"); !ok {
		return
	}
	if filter.MaxPrice, ok = floatQuery(c, "maxPrice"); !ok {
		return
	}

	items, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err, "failed to list products")
		return
	}
	respond.JSON(c, http.StatusOK, respond.Page{Items: items, Limit: window.Limit, Offset: window.Offset})
}

func (h *Handler) get(c *gin.Context) {
	c.Set(middleware.LogProductIDKey, c.Param("id"))
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to load product")
		return
	}
	respond.JSON(c, http.StatusOK, p)
}

func (h *Handler) barcode(c *gin.Context) {
	p, err := h.Svc.LookupBarcode(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err, "failed to look up barcode")
		return
	}
	c.Set(middleware.LogProductIDKey, p.ID)
	respond.JSON(c, http.StatusOK, p)
}

func (h *Handler) searchExternal(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	items, err := h.Svc.SearchExternal(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		writeError(c, err, "failed to search products")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": items})
}

func floatQuery(c *gin.Context, key string) (float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", key+" must be a non-negative number", nil)
		return 0, false
	}
	return v, true
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "product not found", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusBadGateway, "upstream_error", fallback, nil)
	}
}
