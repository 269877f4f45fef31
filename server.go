package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/config"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/middlewares"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

// RateLimiter throttles by client IP using a redis counter per window.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func getRedisClient(redisAddress string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: redisAddress,
	})
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "route not found"})
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the platform considers the revision
	// healthy. Until DB/Redis are ready, app endpoints return 503.
	r := gin.New()
	r.Use(func(c *gin.Context) {
		// Always allow the startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil || config.GetRedisDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production require an explicit allowlist; in dev allow all.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Optional rate limiting.
	// Env: RATE_LIMIT_ENABLED, RATE_LIMIT_WINDOW_SECONDS, RATE_LIMIT_MAX_REQUESTS
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		client := getRedisClient(os.Getenv("REDIS_ADDRESS"))
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(middlewares.AuthMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	registerRoutes(r)
	r.NoRoute(customNotFoundHandler)

	// Start listening immediately (startup probe is TCP based).
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running it as a
	// separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		if err := models.Migrate(); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Panic(err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	log.Println("Server started successfully on port " + port)

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

func registerRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.POST("/auth/login", loginHandler())

	authed := api.Group("")
	authed.Use(middlewares.RequireAuth())
	{
		authed.POST("/auth/logout", logoutHandler())
		authed.GET("/auth/me", currentUserHandler())
		authed.PUT("/auth/password", changePasswordHandler())
		authed.PUT("/profile", updateProfileHandler())
		authed.POST("/profile/avatar", uploadAvatarHandler())

		authed.GET("/products", listProductsHandler())
		authed.GET("/products/search", searchProductsHandler())
		authed.GET("/products/export", exportProductsHandler())
		authed.GET("/products/:id", getProductHandler())
		authed.POST("/products", createProductHandler())
		authed.PUT("/products/:id", updateProductHandler())

		authed.GET("/slips", listSlipsHandler())
		authed.GET("/slips/import/:id", getImportSlipHandler())
		authed.GET("/slips/export/:id", getExportSlipHandler())
		authed.POST("/slips/import", createImportSlipHandler())
		authed.POST("/slips/export", createExportSlipHandler())

		authed.POST("/ocr/invoice", ocrInvoiceHandler())

		authed.GET("/notifications", mailboxHandler())
		authed.POST("/notifications", sendNotificationHandler())
		authed.GET("/notifications/unread-count", unreadCountHandler())
		authed.PUT("/notifications/read-all", markAllReadHandler())
		authed.PUT("/notifications/:id/read", markReadHandler())
		authed.PUT("/notifications/:id/pin", pinHandler())
		authed.DELETE("/notifications/:id", deleteNotificationHandler())

		authed.GET("/dashboard", dashboardHandler())
		authed.POST("/assistant/ask", assistantHandler())
	}

	manager := authed.Group("")
	manager.Use(middlewares.RequireManager())
	{
		manager.DELETE("/products/:id", deactivateProductHandler())

		manager.GET("/users", listUsersHandler())
		manager.POST("/users", createUserHandler())
		manager.GET("/roles", listRolesHandler())
		manager.PUT("/users/:id/reset-password", resetPasswordHandler())
		manager.PUT("/users/:id/deactivate", deactivateUserHandler())
		manager.PUT("/users/:id/activate", activateUserHandler())

		manager.GET("/audit-logs", auditLogsHandler())
	}

	// local avatar files
	r.Static("/uploads", localUploadDir())
}

func localUploadDir() string {
	dir := strings.TrimSpace(os.Getenv("UPLOAD_DIR"))
	if dir == "" {
		dir = "uploads"
	}
	return dir
}

// customErrorLogger logs only requests that collected errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := "rate:" + c.ClientIP()

	exists, err := rl.client.Exists(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if exists == 0 {
		if err := rl.client.Set(c.Request.Context(), key, 1, rl.window).Err(); err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Next()
		return
	}

	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
