package recommendations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestHandlerCreateAndLatest(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	router := newTestRouter(svc, "google:1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/latest", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any run, got %d", w.Code)
	}

	body, _ := json.Marshal(map[string]any{"answers": map[string]any{"hairType": "curly"}, "limit": 5})
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created Result
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(created.Items) == 0 {
		t.Fatalf("expected items")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/latest", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var latest Result
	_ = json.Unmarshal(w.Body.Bytes(), &latest)
	if latest.ID != created.ID {
		t.Fatalf("latest id %q, want %q", latest.ID, created.ID)
	}
}

func TestHandlerErrors(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	router := newTestRouter(svc, "guest:xyz")

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{name: "no quiz", body: "", wantCode: "quiz_required"},
		{name: "bad json", body: "{", wantCode: "validation_error"},
		{name: "invalid answers", body: `{"answers":{"hairType":"curly","porosity":"extreme"}}`, wantCode: "validation_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", bytes.NewBufferString(tt.body))
			router.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			var resp struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &resp)
			if resp.Error.Code != tt.wantCode {
				t.Fatalf("code = %q, want %q", resp.Error.Code, tt.wantCode)
			}
		})
	}
}
