package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"haircare-backend/internal/profiles"
	"haircare-backend/internal/quiz"
	"haircare-backend/internal/recommendations"
	"haircare-backend/internal/shared/server/middleware"
)

const guestID = "11111111-1111-1111-1111-111111111111"

func newTestRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("isGuest", middleware.IsGuestID(userID))
		c.Next()
	})
	api := router.Group("/api/v1")
	api.Use(middleware.RequireUser())
	NewHandler(svc).RegisterUserRoutes(api)
	return router
}

func claim(router *gin.Engine, guest string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	if guest != "" {
		req.Header.Set("X-Guest-Id", guest)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestClaimGuestMigratesData(t *testing.T) {
	ctx := context.Background()
	profileSvc := profiles.NewService(profiles.NewMemoryRepo())
	runs := recommendations.NewMemoryRepo()
	svc := NewService(profileSvc, runs)
	router := newTestRouter(svc, "google:1")

	guestUserID := "guest:" + guestID
	if _, err := profileSvc.SaveQuiz(ctx, guestUserID, quiz.Answers{HairType: "wavy", Concerns: []string{"frizz"}}); err != nil {
		t.Fatalf("save guest quiz: %v", err)
	}
	run := recommendations.Result{ID: "run-1", UserID: guestUserID, CreatedAt: time.Now().UTC()}
	if err := runs.Save(ctx, run); err != nil {
		t.Fatalf("save guest run: %v", err)
	}

	resp := claim(router, guestID)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var result ClaimResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.QuizClaimed || !result.RecommendationClaimed {
		t.Fatalf("expected both claimed, got %+v", result)
	}

	answers, err := profileSvc.Quiz(ctx, "google:1")
	if err != nil || answers == nil || answers.HairType != "wavy" {
		t.Fatalf("expected claimed quiz, got %+v err=%v", answers, err)
	}
	latest, err := runs.Latest(ctx, "google:1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID == "run-1" || latest.UserID != "google:1" {
		t.Fatalf("expected copied run under new id, got %+v", latest)
	}
}

func TestClaimGuestKeepsExistingUserData(t *testing.T) {
	ctx := context.Background()
	profileSvc := profiles.NewService(profiles.NewMemoryRepo())
	runs := recommendations.NewMemoryRepo()
	svc := NewService(profileSvc, runs)

	if _, err := profileSvc.SaveQuiz(ctx, "guest:"+guestID, quiz.Answers{HairType: "wavy"}); err != nil {
		t.Fatalf("save guest quiz: %v", err)
	}
	if _, err := profileSvc.SaveQuiz(ctx, "google:1", quiz.Answers{HairType: "coily"}); err != nil {
		t.Fatalf("save user quiz: %v", err)
	}

	result, err := svc.ClaimGuest(ctx, "guest:"+guestID, "google:1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if result.QuizClaimed || result.RecommendationClaimed {
		t.Fatalf("expected nothing claimed, got %+v", result)
	}
	answers, _ := profileSvc.Quiz(ctx, "google:1")
	if answers == nil || answers.HairType != "coily" {
		t.Fatalf("user quiz overwritten: %+v", answers)
	}
}

func TestClaimGuestValidatesRequest(t *testing.T) {
	svc := NewService(profiles.NewService(profiles.NewMemoryRepo()), recommendations.NewMemoryRepo())

	if resp := claim(newTestRouter(svc, "google:1"), ""); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing header, got %d", resp.Code)
	}
	if resp := claim(newTestRouter(svc, "google:1"), "not-a-uuid"); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid guest id, got %d", resp.Code)
	}
	if resp := claim(newTestRouter(svc, "guest:"+guestID), guestID); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for guest caller, got %d", resp.Code)
	}
}
