package server

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"sentimentiq-backend/internal/account"
	"sentimentiq-backend/internal/admin"
	"sentimentiq-backend/internal/analysis"
	googleauth "sentimentiq-backend/internal/auth"
	"sentimentiq-backend/internal/provider"
	"sentimentiq-backend/internal/provider/azure"
	"sentimentiq-backend/internal/provider/openai"
	"sentimentiq-backend/internal/quota"
	"sentimentiq-backend/internal/shared/config"
	"sentimentiq-backend/internal/shared/metrics"
	"sentimentiq-backend/internal/shared/server/middleware"
	"sentimentiq-backend/internal/shared/server/respond"
	"sentimentiq-backend/internal/shared/storage/db"
	"sentimentiq-backend/internal/shared/telemetry"
	"sentimentiq-backend/internal/tracking"
	"sentimentiq-backend/internal/users"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config, logBuf *telemetry.Buffer) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"GUEST": {Rate: 1, Burst: 5},
				"USER":  {Rate: 5, Burst: 20},
			},
			DefaultGroup: "USER",
			GroupFor: func(c *gin.Context) string {
				if middleware.IsGuest(c) {
					return "GUEST"
				}
				return "USER"
			},
		}),
	)

	// Dependencies
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, db.DefaultServerOptions())
		if err != nil {
			logBuf.Log("error", "db.connect_failed", map[string]any{"error": err.Error()})
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				logBuf.Log("error", "db.migrate_failed", map[string]any{"error": err.Error()})
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}
	if sqlDB == nil {
		logBuf.Log("warn", "storage.memory_fallback", nil)
	}

	providerMux := buildProvider(cfg, logBuf)

	var analysisRepo analysis.Repo
	var usersRepo users.Repo
	var trackingRepo tracking.Repo
	var quotaSvc *quota.Service
	if sqlDB != nil {
		analysisRepo = analysis.NewPGRepo(sqlDB)
		usersRepo = &users.PGRepo{DB: sqlDB}
		trackingRepo = tracking.NewPGRepo(sqlDB)
		quotaSvc = quota.NewPostgresService(quota.NewPGStore(sqlDB))
	} else {
		analysisRepo = analysis.NewMemoryRepo()
		usersRepo = users.NewMemoryRepo()
		trackingRepo = tracking.NewMemoryRepo()
		quotaSvc = quota.NewService()
	}

	usersSvc := users.NewService(usersRepo)
	usersHandler := users.NewHandler(usersSvc)
	analysisSvc := &analysis.Service{
		Repo:     analysisRepo,
		Provider: providerMux,
		Quota:    quotaSvc,
		Log:      logBuf,
	}
	analysisHandler := analysis.NewHandler(analysisSvc, usersSvc, quotaSvc)
	accountHandler := account.NewHandler(account.NewService(analysisRepo))
	trackingSvc := tracking.NewService(trackingRepo, logBuf)
	trackingHandler := tracking.NewHandler(trackingSvc)
	adminHandler := admin.NewHandler(usersSvc, analysisRepo, trackingSvc, logBuf)
	googleAuthSvc := googleauth.NewGoogleService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.UIRedirectURL, usersSvc)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	googleAuthSvc.RegisterRoutes(api)
	usersHandler.RegisterRoutes(api)
	analysisHandler.RegisterRoutes(api)
	accountHandler.RegisterRoutes(api)
	trackingHandler.RegisterRoutes(api)

	adminGroup := api.Group("/admin")
	adminGroup.Use(admin.RequireAdmin(cfg.AdminEmails))
	adminHandler.RegisterRoutes(adminGroup)

	r.GET("/metrics", metrics.Handler())

	return r
}

// buildProvider wires the language clients from the configured credentials.
// Either slot may stay nil; the mux reports ErrNotConfigured per feature.
func buildProvider(cfg config.Config, logBuf *telemetry.Buffer) provider.Mux {
	var mux provider.Mux
	if cfg.TextAnalyticsEndpoint != "" && cfg.TextAnalyticsKey != "" {
		client, err := azure.NewClient(cfg.TextAnalyticsEndpoint, cfg.TextAnalyticsKey)
		if err != nil {
			logBuf.Log("error", "provider.text_analytics_init_failed", map[string]any{"error": err.Error()})
		} else {
			mux.Text = client
		}
	} else {
		logBuf.Log("warn", "provider.text_analytics_unconfigured", nil)
	}
	if cfg.OpenAIAPIKey != "" {
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			logBuf.Log("error", "provider.openai_init_failed", map[string]any{"error": err.Error()})
		} else {
			mux.Summary = client
		}
	} else {
		logBuf.Log("warn", "provider.openai_unconfigured", nil)
	}
	return mux
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
