package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"haircare-backend/internal/account"
	googleauth "haircare-backend/internal/auth"
	"haircare-backend/internal/chat"
	"haircare-backend/internal/comments"
	"haircare-backend/internal/dashboard"
	"haircare-backend/internal/products"
	"haircare-backend/internal/profiles"
	"haircare-backend/internal/recommendations"
	"haircare-backend/internal/regimens"
	"haircare-backend/internal/reports"
	healthsvc "haircare-backend/internal/services/health"
	"haircare-backend/internal/shared/config"
	"haircare-backend/internal/shared/metrics"
	"haircare-backend/internal/shared/server/middleware"
	"haircare-backend/internal/shared/server/respond"
	"haircare-backend/internal/social"
	"haircare-backend/internal/usage"
)

const (
	rateGroupChat            = "chat"
	rateGroupRecommendations = "recommendations"
)

// RouterDeps carries the handlers mounted on the engine. Nil handlers are skipped.
type RouterDeps struct {
	Config                 config.Config
	ProductsHandler        *products.Handler
	RecommendationsHandler *recommendations.Handler
	ChatHandler            *chat.Handler
	UsageHandler           *usage.Handler
	ProfilesHandler        *profiles.Handler
	RegimensHandler        *regimens.Handler
	CommentsHandler        *comments.Handler
	SocialHandler          *social.Handler
	ReportsHandler         *reports.Handler
	DashboardHandler       *dashboard.Handler
	AccountHandler         *account.Handler
	GoogleAuth             *googleauth.GoogleService
	Health                 *healthsvc.Service
	RateLimiter            *middleware.RateLimiter
}

// DefaultRateLimits are the token buckets applied per principal and route group.
var DefaultRateLimits = map[string]middleware.RateLimitRule{
	rateGroupChat:            {Rate: 0.5, Burst: 5},
	rateGroupRecommendations: {Rate: 0.2, Burst: 3},
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
	)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	health := deps.Health
	if health == nil {
		health = healthsvc.NewService()
	}
	api.GET("/health", func(c *gin.Context) {
		status := health.Status(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}

	limited := api.Group("")
	limited.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: DefaultRateLimits,
		GroupFor: middleware.GroupByRoutePrefix(map[string]string{
			"/api/v1/chat":            rateGroupChat,
			"/api/v1/recommendations": rateGroupRecommendations,
		}),
		Limiter: deps.RateLimiter,
	}))

	user := limited.Group("")
	user.Use(middleware.RequireUser())

	if deps.ProductsHandler != nil {
		deps.ProductsHandler.RegisterRoutes(limited)
	}
	if deps.RecommendationsHandler != nil {
		deps.RecommendationsHandler.RegisterRoutes(limited)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterRoutes(limited)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(limited)
		if deps.Config.IsDevLike() {
			deps.UsageHandler.RegisterDevRoutes(limited.Group("/dev"))
		}
	}
	if deps.ProfilesHandler != nil {
		deps.ProfilesHandler.RegisterRoutes(limited)
		deps.ProfilesHandler.RegisterUserRoutes(user)
	}
	if deps.RegimensHandler != nil {
		deps.RegimensHandler.RegisterRoutes(limited)
		deps.RegimensHandler.RegisterUserRoutes(user)
	}
	if deps.CommentsHandler != nil {
		deps.CommentsHandler.RegisterRoutes(limited)
		deps.CommentsHandler.RegisterUserRoutes(user)
	}
	if deps.SocialHandler != nil {
		deps.SocialHandler.RegisterRoutes(limited)
		deps.SocialHandler.RegisterUserRoutes(user)
	}
	if deps.ReportsHandler != nil {
		deps.ReportsHandler.RegisterUserRoutes(user)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.RegisterUserRoutes(user)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterUserRoutes(user)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
