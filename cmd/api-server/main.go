package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dramahub/database"
	"dramahub/internal/catalog/tmdb"
	"dramahub/internal/config"
	"dramahub/internal/http-api/handler"
	"dramahub/internal/http-api/middleware"
	"dramahub/internal/http-api/repository"
	"dramahub/internal/http-api/service"
	"dramahub/internal/scheduler"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}
	defer database.Close(db)

	hotCache, err := repository.NewHotCacheRepo(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Printf("hot cache unavailable, continuing without it: %v", err)
	}
	defer hotCache.Close()

	client := tmdb.NewClient(cfg.TMDBAPIURL, cfg.TMDBAPIKey)
	repo := repository.NewDramaRepo(db)
	notifier := service.NewNotifier(cfg.PushTriggerURL)
	svc := service.NewDramaService(repo, client, hotCache, notifier, cfg)

	sched := scheduler.New()
	if err := sched.AddJob(cfg.StaleRefreshSpec, scheduler.NewStaleRefreshJob(svc)); err != nil {
		log.Fatalf("could not register stale refresh job: %v", err)
	}
	if err := sched.AddJob(cfg.RetentionSweepSpec, scheduler.NewRetentionSweepJob(svc)); err != nil {
		log.Fatalf("could not register retention sweep job: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/health", func(ctx *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	dramaHandler := handler.NewDramaHandler(svc)
	dramaHandler.RegisterRoutes(r.Group("/api/dramas"))

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	log.Printf("[API] server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
