package main

import (
	"context"
	"os"

	"whatsapp-admin/internal/api"
	"whatsapp-admin/internal/config"
	"whatsapp-admin/internal/database"
	"whatsapp-admin/internal/meta"
	"whatsapp-admin/internal/sync"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func initLogger(cfg *config.Config) {
	var zapConfig zap.Config
	if cfg.LogMode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	var logger *zap.Logger
	if cfg.LogFileEnable {
		rotated := &lumberjack.Logger{
			Filename:   cfg.LogFilename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
		}
		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(rotated),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}
	zap.ReplaceGlobals(logger)
}

func main() {
	cfg := config.LoadConfig()
	initLogger(cfg)
	defer zap.L().Sync()

	db, err := database.Open(cfg)
	if err != nil {
		zap.S().Fatalf("database init failed: %v", err)
	}

	client := meta.NewClient(cfg)
	syncService := sync.NewService(db, client)

	syncHandler := api.NewSyncHandler(syncService, db)
	accountHandler := api.NewAccountHandler(db)
	appHandler := api.NewAppHandler(db)
	dashboardHandler := api.NewDashboardHandler(db)

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	apiGroup := r.Group("/api")
	{
		// Sync trigger surface
		apiGroup.POST("/sync", syncHandler.SyncAll)
		apiGroup.POST("/accounts/:id/sync", syncHandler.SyncAccount)
		apiGroup.POST("/phone-numbers/:id/sync", syncHandler.SyncPhoneNumber)
		apiGroup.GET("/sync/logs", syncHandler.GetSyncLogs)

		// Synced hierarchy read surface
		apiGroup.GET("/accounts", accountHandler.GetAccounts)
		apiGroup.GET("/accounts/:id", accountHandler.GetAccount)
		apiGroup.GET("/accounts/:id/phone-numbers", accountHandler.GetAccountPhoneNumbers)
		apiGroup.GET("/accounts/:id/templates", accountHandler.GetAccountTemplates)
		apiGroup.GET("/businesses", accountHandler.GetBusinesses)

		// App provisioning
		apiGroup.GET("/apps", appHandler.GetApps)
		apiGroup.POST("/apps", appHandler.CreateApp)
		apiGroup.PUT("/apps/:id", appHandler.UpdateApp)
		apiGroup.DELETE("/apps/:id", appHandler.DeleteApp)

		apiGroup.GET("/dashboard", dashboardHandler.GetDashboard)
	}

	// Optional recurring full sweep. The engine stays pull-based; this just
	// pulls on a schedule.
	if cfg.SyncCron != "" {
		sched := cron.New()
		_, err := sched.AddFunc(cfg.SyncCron, func() {
			result := syncService.SyncAll(context.Background())
			if result.Success {
				zap.S().Infof("scheduled sweep: %s", result.Message)
			} else {
				zap.S().Warnf("scheduled sweep failed: %s", result.Message)
			}
		})
		if err != nil {
			zap.S().Fatalf("invalid SYNC_CRON %q: %v", cfg.SyncCron, err)
		}
		sched.Start()
		defer sched.Stop()
		zap.S().Infof("scheduled sweep enabled: %s", cfg.SyncCron)
	}

	zap.S().Infof("server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		zap.S().Fatalf("failed to run server: %v", err)
	}
}
