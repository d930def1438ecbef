package social

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"haircare-backend/internal/shared/server/middleware"
)

func newTestRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("isGuest", middleware.IsGuestID(userID))
		c.Next()
	})
	h := NewHandler(svc)
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	user := api.Group("")
	user.Use(middleware.RequireUser())
	h.RegisterUserRoutes(user)
	return r
}

func TestFollowRoutes(t *testing.T) {
	svc := newTestService(t, "google:1", "google:2")
	router := newTestRouter(svc, "google:1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/users/google:2/follow", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["followers"] != float64(1) || body["following"] != true {
		t.Fatalf("unexpected body %v", body)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/users/google:1/follow", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self-follow, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/google:2/followers", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var page struct {
		Items []Follow `json:"items"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &page)
	if len(page.Items) != 1 || page.Items[0].FollowerID != "google:1" {
		t.Fatalf("unexpected followers %+v", page.Items)
	}
}
