package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"haircare-backend/internal/usage"
)

func newTestRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	NewHandler(svc, "fake").RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postChat(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.Error.Code
}

func TestHandlerStatusMapping(t *testing.T) {
	body := `{"messages":[{"role":"user","content":"Is castor oil good for growth?"}]}`

	ok := newTestRouter(NewService(&fakeClient{}, usage.NewService(usage.DailyPlans(1, 1)), nil), "google:1")
	w := postChat(ok, body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var reply Reply
	_ = json.Unmarshal(w.Body.Bytes(), &reply)
	if reply.Reply == "" || reply.Usage.Used != 1 {
		t.Fatalf("unexpected reply %+v", reply)
	}

	w = postChat(ok, body)
	if w.Code != http.StatusTooManyRequests || errorCode(t, w) != "limit_reached" {
		t.Fatalf("expected 429 limit_reached, got %d %s", w.Code, w.Body.String())
	}

	failing := newTestRouter(NewService(&fakeClient{err: errors.New("down")}, usage.NewService(usage.DailyPlans(1, 1)), nil), "google:1")
	w = postChat(failing, body)
	if w.Code != http.StatusBadGateway || errorCode(t, w) != "upstream_error" {
		t.Fatalf("expected 502 upstream_error, got %d", w.Code)
	}

	w = postChat(ok, `{"messages":[]}`)
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "validation_error" {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
