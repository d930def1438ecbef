package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"haircare-backend/internal/account"
	googleauth "haircare-backend/internal/auth"
	"haircare-backend/internal/chat"
	"haircare-backend/internal/comments"
	"haircare-backend/internal/dashboard"
	"haircare-backend/internal/ingredients"
	"haircare-backend/internal/llm"
	"haircare-backend/internal/llm/gemini"
	"haircare-backend/internal/llm/openai"
	"haircare-backend/internal/products"
	"haircare-backend/internal/products/openbeautyfacts"
	"haircare-backend/internal/profiles"
	"haircare-backend/internal/queue"
	"haircare-backend/internal/recommendations"
	"haircare-backend/internal/regimens"
	"haircare-backend/internal/reports"
	"haircare-backend/internal/services/health"
	"haircare-backend/internal/shared/cache"
	"haircare-backend/internal/shared/config"
	"haircare-backend/internal/shared/server"
	"haircare-backend/internal/shared/storage/db"
	"haircare-backend/internal/shared/storage/object"
	localstore "haircare-backend/internal/shared/storage/object/local"
	s3store "haircare-backend/internal/shared/storage/object/s3"
	"haircare-backend/internal/shared/telemetry"
	"haircare-backend/internal/social"
	"haircare-backend/internal/usage"
)

const (
	obfTimeout     = 10 * time.Second
	obfUserAgent   = "haircare-backend/1.0 (+https://world.openbeautyfacts.org)"
	cacheNamespace = "haircare"
)

// App holds the wired dependency graph.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.Store
	Queue    queue.Client
	Cache    cache.Store
	LLM      llm.Client
	Provider string

	Products        *products.Service
	Recommendations *recommendations.Service
	Chat            *chat.Service
	Usage           *usage.Service
	Profiles        *profiles.Service
	Regimens        *regimens.Service
	Comments        *comments.Service
	Social          *social.Service
	Reports         *reports.Service
	Dashboard       *dashboard.Service
	Account         *account.Service
	GoogleAuth      *googleauth.GoogleService
}

// Build connects infrastructure, wires services and mounts the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cacheStore, err := buildCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmClient, provider, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		Queue:    queueClient,
		Cache:    cacheStore,
		LLM:      llmClient,
		Provider: provider,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:                 app.Config,
		ProductsHandler:        products.NewHandler(app.Products),
		RecommendationsHandler: recommendations.NewHandler(app.Recommendations),
		ChatHandler:            chat.NewHandler(app.Chat, app.Provider),
		UsageHandler:           usage.NewHandler(app.Usage),
		ProfilesHandler:        profiles.NewHandler(app.Profiles, app.Social),
		RegimensHandler:        regimens.NewHandler(app.Regimens),
		CommentsHandler:        comments.NewHandler(app.Comments),
		SocialHandler:          social.NewHandler(app.Social),
		ReportsHandler:         reports.NewHandler(app.Reports),
		DashboardHandler:       dashboard.NewHandler(app.Dashboard),
		AccountHandler:         account.NewHandler(app.Account),
		GoogleAuth:             app.GoogleAuth,
		Health:                 buildHealth(app),
	})

	return app, nil
}

func buildHealth(app *App) *health.Service {
	svc := health.NewService()
	if app.DB != nil {
		svc.Register("database", app.DB.PingContext)
	}
	if redisStore, ok := app.Cache.(*cache.RedisStore); ok {
		svc.Register("cache", redisStore.Ping)
	}
	return svc
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.ModerationQueueURL) == "" {
		return nil, nil
	}
	client, err := queue.NewSQSClient(ctx, cfg.ModerationQueueURL, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func buildCache(ctx context.Context, cfg config.Config) (cache.Store, error) {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return cache.NewMemoryStore(), nil
	}
	store, err := cache.NewRedisStore(ctx, cache.RedisOptions{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		Namespace: cacheNamespace,
	})
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_cache", map[string]any{"error": err.Error()})
			return cache.NewMemoryStore(), nil
		}
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return store, nil
}

// buildLLM picks the provider named by LLM_PROVIDER. Missing credentials
// degrade to the placeholder so the API still serves canned content.
func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, string, error) {
	timeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second
	var (
		client llm.Client
		err    error
	)
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return placeholder(cfg.LLMProvider, "OPENAI_API_KEY")
		}
		client, err = openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, timeout)
	case "azure":
		if cfg.AzureOpenAIAPIKey == "" || cfg.AzureOpenAIEndpoint == "" {
			return placeholder(cfg.LLMProvider, "AZURE_OPENAI_API_KEY")
		}
		client, err = openai.NewAzureClient(cfg.AzureOpenAIEndpoint, cfg.AzureOpenAIAPIKey, cfg.AzureOpenAIDeployment, cfg.AzureOpenAIAPIVersion, timeout)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return placeholder(cfg.LLMProvider, "GEMINI_API_KEY")
		}
		client, err = gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, timeout)
	default:
		return llm.Placeholder{}, "none", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("init %s client: %w", cfg.LLMProvider, err)
	}
	return llm.Retrying(client), cfg.LLMProvider, nil
}

func placeholder(provider, missing string) (llm.Client, string, error) {
	telemetry.Warn("bootstrap.llm_not_configured", map[string]any{"provider": provider, "missing": missing})
	return llm.Placeholder{}, "none", nil
}

func buildServices(app *App) error {
	cfg := app.Config

	var (
		productRepo products.Repo
		profileRepo profiles.Repo
		runRepo     recommendations.Repo
		regimenRepo regimens.Repo
		commentRepo comments.Repo
		followRepo  social.Repo
		reportRepo  reports.Repo
		usageSvc    *usage.Service
	)
	plans := usage.DailyPlans(cfg.ChatDailyLimit, cfg.ChatGuestDailyLimit)
	if app.DB != nil {
		productRepo = &products.PGRepo{DB: app.DB}
		profileRepo = &profiles.PGRepo{DB: app.DB}
		runRepo = &recommendations.PGRepo{DB: app.DB}
		regimenRepo = &regimens.PGRepo{DB: app.DB}
		commentRepo = &comments.PGRepo{DB: app.DB}
		followRepo = &social.PGRepo{DB: app.DB}
		reportRepo = &reports.PGRepo{DB: app.DB}
		usageSvc = usage.NewPostgresService(app.DB, plans)
	} else {
		productRepo = products.NewMemoryRepo()
		profileRepo = profiles.NewMemoryRepo()
		runRepo = recommendations.NewMemoryRepo()
		regimenRepo = regimens.NewMemoryRepo()
		commentRepo = comments.NewMemoryRepo()
		followRepo = social.NewMemoryRepo()
		reportRepo = reports.NewMemoryRepo()
		usageSvc = usage.NewService(plans)
	}

	translator, err := ingredients.NewTranslator()
	if err != nil {
		return err
	}

	obf := &openbeautyfacts.Client{
		BaseURL:    cfg.OBFBaseURL,
		HTTPClient: &http.Client{Timeout: obfTimeout},
		UserAgent:  obfUserAgent,
	}
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	productSvc := products.NewService(productRepo, obf, cache.NewFetcher(app.Cache), ttl)

	var reranker *recommendations.Reranker
	if app.Provider != "none" {
		reranker = &recommendations.Reranker{Client: app.LLM}
	}

	profileSvc := profiles.NewService(profileRepo)
	socialSvc := social.NewService(followRepo, profileSvc)
	regimenSvc := regimens.NewService(regimenRepo, app.Store, socialSvc)
	commentSvc := comments.NewService(commentRepo, regimenSvc)
	recSvc := recommendations.NewService(productSvc, profileSvc, translator, reranker, runRepo)

	app.Products = productSvc
	app.Recommendations = recSvc
	app.Chat = chat.NewService(app.LLM, usageSvc, profileSvc)
	app.Usage = usageSvc
	app.Profiles = profileSvc
	app.Regimens = regimenSvc
	app.Comments = commentSvc
	app.Social = socialSvc
	app.Reports = reports.NewService(reportRepo, regimenSvc, commentSvc, app.Queue, cfg.ReportHideThreshold)
	app.Dashboard = dashboard.NewService(profileSvc, regimenSvc, socialSvc, usageSvc, recSvc)
	app.Account = account.NewService(profileSvc, runRepo)
	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		profileSvc,
	)
	return nil
}
