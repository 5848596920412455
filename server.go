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

	"github.com/bsm/redislock"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/craftflowhq/craftflow_backend/config"
	"github.com/craftflowhq/craftflow_backend/middlewares"
	"github.com/craftflowhq/craftflow_backend/models"
	"github.com/craftflowhq/craftflow_backend/utils"
)

const defaultPort = "8080"

// App bundles every dependency the handlers need. Nothing reaches for
// package globals; main wires everything once and hands it over.
type App struct {
	db        *gorm.DB
	logger    *logrus.Logger
	redis     *redis.Client
	locker    *redislock.Client
	publisher *config.EventPublisher
	storage   utils.ImageStorage
	tracer    trace.Tracer

	// restockOnReturn is a deployment policy, fixed at startup.
	restockOnReturn bool
}

type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := "ratelimit:" + c.ClientIP()

	exists, err := rl.client.Exists(c.Request.Context(), key).Result()
	if err != nil {
		// Redis down must not take the API down with it.
		c.Next()
		return
	}

	if exists == 0 {
		if err := rl.client.Set(c.Request.Context(), key, 1, rl.window).Err(); err != nil {
			c.Next()
			return
		}
		c.Next()
		return
	}

	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.Next()
		return
	}
	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("rate limit exceeded, try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}
	c.Next()
}

func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
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

func (a *App) registerRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	auth := r.Group("/auth")
	{
		auth.POST("/register", a.register)
		auth.POST("/login", a.login)
	}

	api := r.Group("/", middlewares.RequireAuth())
	{
		api.GET("/me", a.me)
		api.POST("/orgs", a.createOrganization)
		api.GET("/orgs", a.listOrganizations)
	}

	org := r.Group("/orgs/:orgId", middlewares.RequireAuth(), middlewares.OrgScope(a.db))
	{
		org.GET("", a.getOrganization)

		org.POST("/parts", a.createPart)
		org.GET("/parts", a.listParts)
		org.GET("/parts/:partId", a.getPart)
		org.PUT("/parts/:partId", a.updatePart)
		org.DELETE("/parts/:partId", a.deletePart)
		org.POST("/parts/:partId/adjustments", a.adjustPartStock)
		org.GET("/parts/:partId/transactions", a.listPartTransactions)
		org.GET("/parts/:partId/fifo-cost", a.fifoCost)
		org.POST("/parts/:partId/image", a.uploadPartImage)
		org.DELETE("/parts/:partId/image", a.deletePartImage)

		org.POST("/products", a.createProduct)
		org.GET("/products", a.listProducts)
		org.GET("/products/:productId", a.getProduct)
		org.PUT("/products/:productId", a.updateProduct)
		org.DELETE("/products/:productId", a.deleteProduct)
		org.POST("/products/:productId/adjustments", a.adjustProductQuantity)
		org.GET("/products/:productId/transactions", a.listProductTransactions)
		org.POST("/products/:productId/build", a.buildProduct)
		org.GET("/products/:productId/cost", a.productBuildCost)
		org.POST("/products/:productId/image", a.uploadProductImage)
		org.DELETE("/products/:productId/image", a.deleteProductImage)

		org.GET("/products/:productId/recipe", a.getRecipe)
		org.PUT("/products/:productId/recipe", a.bulkUpsertRecipe)
		org.DELETE("/products/:productId/recipe", a.clearRecipe)
		org.POST("/products/:productId/recipe/lines", a.createRecipeLine)
		org.PUT("/products/:productId/recipe/lines/:partId", a.updateRecipeLine)
		org.DELETE("/products/:productId/recipe/lines/:partId", a.deleteRecipeLine)

		org.POST("/sales", a.recordSale)
		org.GET("/sales", a.listSales)
		org.GET("/sales/:txnId", a.getSale)
		org.GET("/products/:productId/sales", a.listProductSales)

		org.POST("/orders", a.createOrder)
		org.GET("/orders", a.listOrders)
		org.GET("/orders/:orderId", a.getOrder)
		org.PUT("/orders/:orderId", a.updateOrder)
		org.PUT("/orders/:orderId/status", a.updateOrderStatus)
		org.POST("/orders/:orderId/return", a.returnOrder)

		org.POST("/part-types", a.createPartType)
		org.GET("/part-types", a.listPartTypes)
		org.PUT("/part-types/:typeId", a.renamePartType)
		org.DELETE("/part-types/:typeId", a.deletePartType)
		org.POST("/part-types/:typeId/subtypes", a.createPartSubtype)
		org.DELETE("/part-subtypes/:subtypeId", a.deletePartSubtype)

		org.POST("/product-types", a.createProductType)
		org.GET("/product-types", a.listProductTypes)
		org.PUT("/product-types/:typeId", a.renameProductType)
		org.DELETE("/product-types/:typeId", a.deleteProductType)
		org.POST("/product-types/:typeId/subtypes", a.createProductSubtype)
		org.DELETE("/product-subtypes/:subtypeId", a.deleteProductSubtype)

		org.POST("/part-status-labels", a.createPartStatusLabel)
		org.GET("/part-status-labels", a.listPartStatusLabels)
		org.DELETE("/part-status-labels/:labelId", a.deletePartStatusLabel)
		org.POST("/product-status-labels", a.createProductStatusLabel)
		org.GET("/product-status-labels", a.listProductStatusLabels)
		org.DELETE("/product-status-labels/:labelId", a.deleteProductStatusLabel)

		org.POST("/platforms", a.createPlatform)
		org.GET("/platforms", a.listPlatforms)
		org.DELETE("/platforms/:platformId", a.deletePlatform)

		org.GET("/analytics/profit", a.profitSummary)
		org.GET("/analytics/profit/export", a.exportProfitReport)
		org.GET("/analytics/low-stock", a.lowStockAlerts)
		org.GET("/analytics/inventory-drift", a.inventoryDrift)
	}

	r.NoRoute(customNotFoundHandler)
}

func main() {
	// Missing .env is fine in deployed environments.
	_ = godotenv.Load()

	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.NewLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	db := config.ConnectDatabaseWithRetry()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	// AutoMigrate can run DDL that blocks tables; allow running it as a
	// separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		if err := models.MigrateTable(db); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Panic(err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	redisClient, locker := config.ConnectRedis()
	publisher := config.NewEventPublisher(context.Background())
	storage, err := utils.NewImageStorage(context.Background())
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "storage"}).Panic(err.Error())
	}

	app := &App{
		db:        db,
		logger:    logger,
		redis:     redisClient,
		locker:    locker,
		publisher: publisher,
		storage:   storage,
		tracer:    otel.Tracer("craftflow-backend"),

		restockOnReturn: config.RestockOnReturn(),
	}

	r := gin.New()

	corsConfig := cors.DefaultConfig()
	// Production requires an explicit allowlist; elsewhere allow all.
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

	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") && redisClient != nil {
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
		rateLimiter := NewRateLimiter(redisClient, limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(middlewares.AuthMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	app.registerRoutes(r)

	if dir := utils.LocalUploadDir(); dir != "" {
		r.Static("/uploads", dir)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port)
	log.Println("Server started successfully")

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

	if redisClient != nil {
		_ = redisClient.Close()
	}
}
