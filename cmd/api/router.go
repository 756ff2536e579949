package main

import (
	"fmt"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/Soul-Brews-Studio/shrimp-oracle/docs"
	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/auth"
	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/common/handler"
	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/common/middleware"
	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/config"
	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/identity"
	"github.com/Soul-Brews-Studio/shrimp-oracle/pkg/chainlink"
	"github.com/Soul-Brews-Studio/shrimp-oracle/pkg/nonce"
	"github.com/Soul-Brews-Studio/shrimp-oracle/pkg/siwe"
)

// dependencies are the connected backends the router is built on
type dependencies struct {
	store  identity.Store
	oracle chainlink.RoundReader
	nonces nonce.Source
	// redis is nil when running without Redis
	redis  *goredis.Client
	checks []handler.Check
}

func setupRouter(cfg *config.Config, logger *zap.Logger, deps dependencies) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())
	router.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))

	// Swagger
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.Server.Port)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health + metrics
	healthHandler := handler.NewHealthHandler(deps.checks...)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ============================================================================
	// Dependencies Setup
	// ============================================================================

	tokens, err := auth.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTTTL)
	if err != nil {
		return nil, err
	}

	verifier := siwe.NewEthVerifier(logger)

	authService := auth.NewService(verifier, deps.oracle, deps.nonces, deps.store, tokens, auth.Config{
		AppName:        cfg.Auth.AppName,
		MaxRoundAge:    cfg.Auth.MaxRoundAge,
		OracleTimeout:  cfg.Auth.OracleTimeout,
		StoreTimeout:   cfg.Auth.StoreTimeout,
		AllowedDomains: cfg.Auth.AllowedDomains,
	}, logger)
	authHandler := auth.NewHandler(authService, tokens)

	// ============================================================================
	// Route Registration
	// ============================================================================

	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1,
			middleware.RateLimit(deps.redis, "verify", cfg.Auth.VerifyRateLimit, cfg.Auth.VerifyRateWindow, logger),
		)
	}

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	c.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", middleware.RequestIDHeader}
	c.ExposeHeaders = []string{middleware.RequestIDHeader}

	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		switch o {
		case "":
			continue
		case "*":
			c.AllowAllOrigins = true
			return c
		}
		allowed = append(allowed, o)
	}

	// an empty list would fail cors validation at startup
	if len(allowed) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = allowed
	return c
}
