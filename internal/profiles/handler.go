package profiles

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"haircare-backend/internal/quiz"
	"haircare-backend/internal/shared/server/middleware"
	"haircare-backend/internal/shared/server/respond"
)

// FollowCounter supplies follower and following counts for public profiles.
type FollowCounter interface {
	Counts(ctx context.Context, userID string) (followers, following int, err error)
}

type Handler struct {
	Svc     *Service
	Follows FollowCounter
}

func NewHandler(svc *Service, follows FollowCounter) *Handler {
	return &Handler{Svc: svc, Follows: follows}
}

// RegisterRoutes attaches routes open to guests.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.GET("/me/quiz", h.getQuiz)
	rg.PUT("/me/quiz", h.saveQuiz)
	rg.GET("/users/:id", h.public)
}

// RegisterUserRoutes attaches routes that need a signed-in user.
func (h *Handler) RegisterUserRoutes(rg *gin.RouterGroup) {
	rg.PATCH("/me", h.update)
}

func (h *Handler) me(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Sign in to view your profile", nil)
		return
	}
	profile, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to load profile")
		return
	}
	respond.OK(c, profile)
}

func (h *Handler) update(c *gin.Context) {
	var req Update
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	profile, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err, "failed to update profile")
		return
	}
	respond.OK(c, profile)
}

func (h *Handler) getQuiz(c *gin.Context) {
	answers, err := h.Svc.Quiz(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to load quiz")
		return
	}
	if answers == nil {
		respond.Error(c, http.StatusNotFound, "not_found", "quiz not completed", nil)
		return
	}
	respond.OK(c, answers)
}

func (h *Handler) saveQuiz(c *gin.Context) {
	var req quiz.Answers
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	profile, err := h.Svc.SaveQuiz(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err, "failed to save quiz")
		return
	}
	respond.OK(c, gin.H{
		"quiz":            profile.Quiz,
		"quizCompletedAt": profile.QuizCompletedAt,
	})
}

func (h *Handler) public(c *gin.Context) {
	userID := c.Param("id")
	if middleware.IsGuestID(userID) {
		respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
		return
	}
	profile, err := h.Svc.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "failed to load user")
		return
	}
	out := Public{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
		PictureURL:  profile.PictureURL,
		Bio:         profile.Bio,
	}
	if h.Follows != nil {
		out.Followers, out.Following, err = h.Follows.Counts(c.Request.Context(), userID)
		if err != nil {
			writeError(c, err, "failed to load follow counts")
			return
		}
	}
	respond.OK(c, out)
}

func writeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, quiz.ErrInvalidAnswers):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}
