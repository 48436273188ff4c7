// =============================================================================
// ModFlow 主入口
// =============================================================================
// 完整服务入口点，包含 HTTP 服务、健康检查、Prometheus 指标
//
// 使用方法:
//
//	modflow serve                       # 启动服务
//	modflow serve --config config.yaml  # 指定配置文件
//	modflow version                     # 显示版本信息
//	modflow health                      # 健康检查
//	modflow migrate up                  # 运行数据库迁移
//	modflow migrate down                # 回滚最后一次迁移
//	modflow migrate status              # 查看迁移状态
// =============================================================================

// @title ModFlow API
// @version 1.0.0
// @description ModFlow is a content moderation service for user-generated text, audio, and video.
// @description
// @description ## Features
// @description - Text / audio / video moderation with a pluggable classification provider
// @description - Async video pipeline with webhook and polling fallback
// @description - Admin policy management with kill switch and per-category thresholds
// @description - Health monitoring and metrics

// @contact.name ModFlow Team
// @contact.url https://github.com/BaSui01/modflow

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Admin JWT, sent as "Bearer <token>"

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/modflow/api/handlers"
	"github.com/BaSui01/modflow/classify"
	"github.com/BaSui01/modflow/config"
	"github.com/BaSui01/modflow/internal/archive"
	"github.com/BaSui01/modflow/internal/cache"
	"github.com/BaSui01/modflow/internal/metrics"
	"github.com/BaSui01/modflow/internal/server"
	"github.com/BaSui01/modflow/internal/store"
	"github.com/BaSui01/modflow/moderation"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "migrate":
		runMigrate(os.Args[2:])
	case "version":
		printVersion()
	case "health":
		runHealthCheck(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// =============================================================================
// 🖥️ serve 命令
// =============================================================================

func runServe(args []string) {
	// 解析命令行参数
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	// 加载配置
	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 验证配置
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting ModFlow",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 初始化数据库连接
	db, err := store.Open(databaseConfig(cfg.Database), logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	st := store.New(db, logger)
	if err := st.AutoMigrate(); err != nil {
		logger.Fatal("Database auto-migrate failed", zap.Error(err))
	}
	pool, err := store.NewPoolManager(db, time.Minute, logger)
	if err != nil {
		logger.Fatal("Failed to create pool manager", zap.Error(err))
	}
	defer pool.Close()

	// Redis 共享缓存（可选）
	var shared moderation.SharedCache
	var cacheMgr *cache.Manager
	if cfg.Redis.Enabled {
		cacheMgr, err = cache.NewManager(cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			logger.Warn("Redis not available, shared cache disabled", zap.Error(err))
			cacheMgr = nil
		} else {
			shared = cacheMgr
			defer cacheMgr.Close()
		}
	}

	// MongoDB 回调归档（可选）
	var archiver moderation.Archiver
	if cfg.Mongo.Enabled {
		mongoArch, archErr := archive.NewMongoArchiver(ctx, archive.Config{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		}, logger)
		if archErr != nil {
			logger.Warn("MongoDB not available, webhook archiving disabled", zap.Error(archErr))
		} else {
			archiver = mongoArch
			defer func() {
				closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer closeCancel()
				mongoArch.Close(closeCtx)
			}()
		}
	}

	// 分类提供商
	provider := classify.NewHiveProvider(classify.Config{
		APIKey:            cfg.Classifier.APIKey,
		BaseURL:           cfg.Classifier.BaseURL,
		Model:             cfg.Classifier.Model,
		Timeout:           cfg.Classifier.Timeout,
		WebhookURL:        cfg.Classifier.WebhookURL,
		RequestsPerSecond: cfg.Classifier.RequestsPerSecond,
	})

	// 指标与事件
	collector := metrics.NewCollector(cfg.Moderation.MetricsNamespace, logger)
	hub := handlers.NewEventHub(logger)

	// 审核编排器
	orch := moderation.NewOrchestrator(moderation.Options{
		Provider:   provider,
		Store:      st,
		Shared:     shared,
		Archiver:   archiver,
		Sink:       hub,
		Metrics:    collector,
		Logger:     logger,
		WebhookURL: cfg.Classifier.WebhookURL,
		PolicyTTL:  cfg.Moderation.PolicyTTL,
	})

	// 管理端鉴权
	var auth *handlers.Authenticator
	if cfg.Auth.Enabled {
		auth = handlers.NewAuthenticator(cfg.Auth.JWTSecret, logger)
	} else {
		logger.Warn("admin auth disabled, /v1/config is unprotected")
	}

	// 健康检查
	health := handlers.NewHealthHandler(Version, logger)
	health.RegisterCheck(handlers.HealthCheckFunc{CheckName: "database", Fn: pool.Ping})
	if cacheMgr != nil {
		health.RegisterCheck(handlers.HealthCheckFunc{CheckName: "redis", Fn: cacheMgr.Ping})
	}

	// 路由与中间件
	router := handlers.NewRouter(handlers.RouterOptions{
		Orchestrator: orch,
		Hub:          hub,
		Health:       health,
		Auth:         auth,
		Logger:       logger,
		Gatherer:     prometheus.DefaultGatherer,
	})

	middlewares := []Middleware{
		Recovery(logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(logger),
		MetricsMiddleware(collector),
	}
	if cfg.Server.RateLimit > 0 {
		middlewares = append(middlewares, RateLimiter(ctx, cfg.Server.RateLimit, cfg.Server.RateBurst, logger))
	}
	handler := Chain(router, middlewares...)

	// 启动服务器
	srv := server.NewManager(handler, server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	if err := srv.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	// 等待关闭信号
	srv.WaitForShutdown()

	logger.Info("ModFlow stopped")
}

// databaseConfig 把应用配置映射为存储层连接配置
func databaseConfig(d config.DatabaseConfig) store.DatabaseConfig {
	return store.DatabaseConfig{
		Driver:          d.Driver,
		DSN:             d.DSN(),
		MaxIdleConns:    d.MaxIdleConns,
		MaxOpenConns:    d.MaxOpenConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
	}
}

// =============================================================================
// 🏥 健康检查命令
// =============================================================================

func runHealthCheck(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	addr := fs.String("addr", "http://localhost:8080", "Server address")
	fs.Parse(args)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*addr + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: status %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("OK")
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("ModFlow %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`ModFlow - Content Moderation Service

Usage:
  modflow <command> [options]

Commands:
  serve     Start the ModFlow server
  migrate   Database migration commands
  version   Show version information
  health    Check server health
  help      Show this help message

Options for 'serve':
  --config <path>   Path to configuration file (YAML)

Migration subcommands:
  migrate up        Apply all pending migrations
  migrate down      Rollback the last migration
  migrate status    Show migration status

Examples:
  modflow serve
  modflow serve --config /etc/modflow/config.yaml
  modflow migrate up
  modflow migrate status
  modflow health --addr http://localhost:8080
  modflow version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	// 解析日志级别
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	// 配置编码器
	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	// 构建 logger
	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      encoding == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}

	return logger
}
