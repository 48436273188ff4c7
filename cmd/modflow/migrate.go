package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/BaSui01/modflow/config"
	"github.com/BaSui01/modflow/internal/migration"
	"github.com/BaSui01/modflow/internal/store"
)

// =============================================================================
// 🗄️ 数据库迁移命令
// =============================================================================

// runMigrate 处理 migrate 命令及其子命令
func runMigrate(args []string) {
	if len(args) < 1 {
		printMigrateUsage()
		os.Exit(1)
	}

	subcommand := args[0]
	subargs := args[1:]

	switch subcommand {
	case "up":
		runMigrateStep(subargs, func(m *migration.Migrator) error { return m.Up() })
	case "down":
		runMigrateStep(subargs, func(m *migration.Migrator) error { return m.Down() })
	case "status", "version":
		runMigrateStatus(subargs)
	case "help", "-h", "--help":
		printMigrateUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown migrate subcommand: %s\n", subcommand)
		printMigrateUsage()
		os.Exit(1)
	}
}

// runMigrateStep 执行一个迁移动作（up / down）
func runMigrateStep(args []string, step func(*migration.Migrator) error) {
	m, logger := createMigrator(args)
	defer m.Close()
	defer logger.Sync()

	if err := step(m); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}
	fmt.Println("OK")
}

// runMigrateStatus 打印当前迁移版本
func runMigrateStatus(args []string) {
	m, logger := createMigrator(args)
	defer m.Close()
	defer logger.Sync()

	version, dirty, ok, err := m.Version()
	if err != nil {
		logger.Fatal("Failed to read migration version", zap.Error(err))
	}
	if !ok {
		fmt.Println("No migrations applied")
		return
	}
	fmt.Printf("Version: %d (dirty: %v)\n", version, dirty)
}

// createMigrator 从命令行参数构建迁移器
func createMigrator(args []string) (*migration.Migrator, *zap.Logger) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)

	db, err := store.Open(databaseConfig(cfg.Database), logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get sql.DB", zap.Error(err))
	}

	m, err := migration.New(sqlDB, cfg.Database.Driver, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	return m, logger
}

// printMigrateUsage 打印 migrate 命令帮助
func printMigrateUsage() {
	fmt.Println(`Database Migration Commands

Usage:
  modflow migrate <subcommand> [options]

Subcommands:
  up        Apply all pending migrations
  down      Rollback the last migration
  status    Show current migration version
  help      Show this help message

Options:
  --config <path>   Path to configuration file (YAML)

Examples:
  modflow migrate up
  modflow migrate up --config /etc/modflow/config.yaml
  modflow migrate down
  modflow migrate status`)
}
