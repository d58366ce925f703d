package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apirest "github.com/aoisora/srpg-server/api/rest"
	"github.com/aoisora/srpg-server/audit"
	"github.com/aoisora/srpg-server/cache"
	"github.com/aoisora/srpg-server/config"
	dbadapter "github.com/aoisora/srpg-server/db"
	"github.com/aoisora/srpg-server/game/session"
	mw "github.com/aoisora/srpg-server/middleware"
	"github.com/aoisora/srpg-server/model"
	"github.com/aoisora/srpg-server/resource"
	"github.com/aoisora/srpg-server/scheduler"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// Warn loudly if admin endpoints will be disabled.
	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache ----
	c, err := cache.New(cache.Config{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Item Catalog ----
	catalog := resource.NewCatalog(cfg.Data.CatalogPath, logger)
	if err := catalog.Load(); err != nil {
		log.Fatalf("catalog: %v", err)
	}
	logger.Info("Item catalog loaded", zap.Int("items", len(catalog.All())))

	// ---- Sessions ----
	sessions := session.NewManager(db, c, catalog, cfg.Game, logger)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	sched.AddTicker("auto_save", time.Duration(cfg.Game.SaveIntervalS)*time.Second, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sessions.SaveAll(ctx)
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(db, c, cfg.Security)
	charH := apirest.NewCharacterHandler(db, sessions, cfg.Game)
	invH := apirest.NewInventoryHandler(db, sessions, catalog, auditSvc)
	eqH := apirest.NewEquipmentHandler(db, sessions, catalog, auditSvc)
	saveH := apirest.NewSaveHandler(db, c, sessions)
	turnH := apirest.NewTurnHandler(db, sessions)
	itemH := apirest.NewItemHandler(catalog)
	adminH := apirest.NewAdminHandler(db, sessions, sched, logger)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/login", authH.Login)
		authG.POST("/logout", mw.Auth(cfg.Security, c), authH.Logout)
		authG.POST("/refresh", mw.Auth(cfg.Security, c), authH.Refresh)

		itemsG := api.Group("/items")
		itemsG.GET("", itemH.List)
		itemsG.GET("/:item_id", itemH.Get)

		charsG := api.Group("/characters")
		charsG.Use(mw.Auth(cfg.Security, c))
		charsG.GET("", charH.List)
		charsG.POST("", charH.Create)
		charsG.GET("/:id", charH.Get)
		charsG.DELETE("/:id", charH.Delete)

		charsG.GET("/:id/inventory", invH.List)
		charsG.POST("/:id/inventory/items", invH.AddItem)
		charsG.DELETE("/:id/inventory/items", invH.RemoveItem)
		charsG.POST("/:id/inventory/use", invH.UseItem)
		charsG.POST("/:id/inventory/sort", invH.Sort)
		charsG.POST("/:id/inventory/gold", invH.AdjustGold)

		charsG.GET("/:id/equipment", eqH.Get)
		charsG.POST("/:id/equipment/equip", eqH.Equip)
		charsG.POST("/:id/equipment/unequip", eqH.Unequip)
		charsG.GET("/:id/equipment/requirements", eqH.Requirements)

		charsG.POST("/:id/save", saveH.Save)
		charsG.GET("/:id/save", saveH.Get)
		charsG.POST("/:id/turn", turnH.Advance)
		charsG.GET("/:id/effects", turnH.Effects)

		adminG := api.Group("/admin")
		adminG.Use(apirest.AdminAuth(cfg.Server.AdminKey))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.GET("/sessions", adminH.ListSessions)
		adminG.POST("/save", adminH.ForceSave)
		adminG.POST("/accounts/:id/ban", adminH.BanAccount)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
