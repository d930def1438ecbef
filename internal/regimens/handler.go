package regimens

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"haircare-backend/internal/shared/server/middleware"
	"haircare-backend/internal/shared/server/paging"
	"haircare-backend/internal/shared/server/respond"
	"haircare-backend/internal/shared/telemetry"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches read routes open to guests.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/regimens", h.list)
	rg.GET("/regimens/:id", h.get)
	rg.GET("/regimens/:id/photo", h.photo)
}

// RegisterUserRoutes attaches routes that need a signed-in user.
func (h *Handler) RegisterUserRoutes(rg *gin.RouterGroup) {
	rg.POST("/regimens", h.create)
	rg.GET("/regimens/feed", h.feed)
	rg.GET("/regimens/saved", h.saved)
	rg.PATCH("/regimens/:id", h.update)
	rg.DELETE("/regimens/:id", h.delete)
	rg.PUT("/regimens/:id/like", h.relation(h.Svc.Like))
	rg.DELETE("/regimens/:id/like", h.relation(h.Svc.Unlike))
	rg.PUT("/regimens/:id/save", h.relation(h.Svc.Save))
	rg.DELETE("/regimens/:id/save", h.relation(h.Svc.Unsave))
	rg.POST("/regimens/:id/photo", h.uploadPhoto)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	r, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err, "failed to create regimen")
		return
	}
	c.Set(middleware.LogRegimenIDKey, r.ID)
	respond.JSON(c, http.StatusCreated, r)
}

func (h *Handler) list(c *gin.Context) {
	window := paging.FromQuery(c)
	items, err := h.Svc.List(c.Request.Context(), Filter{
		Tag:      c.Query("tag"),
		HairType: c.Query("hairType"),
		AuthorID: c.Query("author"),
		Sort:     c.Query("sort"),
		Limit:    window.Limit,
		Offset:   window.Offset,
	})
	if err != nil {
		writeError(c, err, "failed to list regimens")
		return
	}
	respond.OK(c, respond.Page{Items: items, Limit: window.Limit, Offset: window.Offset})
}

func (h *Handler) feed(c *gin.Context) {
	window := paging.FromQuery(c)
	items, err := h.Svc.Feed(c.Request.Context(), middleware.UserIDFromContext(c), window.Limit, window.Offset)
	if err != nil {
		writeError(c, err, "failed to load feed")
		return
	}
	respond.OK(c, respond.Page{Items: items, Limit: window.Limit, Offset: window.Offset})
}

func (h *Handler) saved(c *gin.Context) {
	window := paging.FromQuery(c)
	items, err := h.Svc.ListSaved(c.Request.Context(), middleware.UserIDFromContext(c), window.Limit, window.Offset)
	if err != nil {
		writeError(c, err, "failed to list saved regimens")
		return
	}
	respond.OK(c, respond.Page{Items: items, Limit: window.Limit, Offset: window.Offset})
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.LogRegimenIDKey, id)
	r, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, err, "failed to load regimen")
		return
	}
	respond.OK(c, r)
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.LogRegimenIDKey, id)
	var req UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	r, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), id, req)
	if err != nil {
		writeError(c, err, "failed to update regimen")
		return
	}
	respond.OK(c, r)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.LogRegimenIDKey, id)
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), id); err != nil {
		writeError(c, err, "failed to delete regimen")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) relation(op func(ctx context.Context, userID, id string) (Regimen, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		c.Set(middleware.LogRegimenIDKey, id)
		r, err := op(c.Request.Context(), middleware.UserIDFromContext(c), id)
		if err != nil {
			writeError(c, err, "failed to update regimen")
			return
		}
		respond.OK(c, r)
	}
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.LogRegimenIDKey, id)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxPhotoSize+(1<<20))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, ErrPhotoTooLarge, "")
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size > MaxPhotoSize {
		writeError(c, ErrPhotoTooLarge, "")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	r, err := h.Svc.UploadPhoto(c.Request.Context(), middleware.UserIDFromContext(c), id, fileHeader.Filename, file)
	if err != nil {
		writeError(c, err, "failed to upload photo")
		return
	}
	respond.OK(c, r)
}

func (h *Handler) photo(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.LogRegimenIDKey, id)
	rc, contentType, err := h.Svc.OpenPhoto(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, err, "failed to open photo")
		return
	}
	defer rc.Close()
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, max-age=300")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		telemetry.Warn("regimens.photo_stream_failed", map[string]any{"regimen_id": id, "error": err})
	}
}

func writeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotAnImage):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", err.Error(), nil)
	case errors.Is(err, ErrPhotoTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "photo must be at most 5MB", gin.H{"maxBytes": MaxPhotoSize})
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "regimen not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "only the author can change this regimen", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}
