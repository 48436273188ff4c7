package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// =============================================================================
// 🗄️ 内嵌迁移文件
// =============================================================================

//go:embed migrations/postgres/*.sql
var postgresFS embed.FS

//go:embed migrations/mysql/*.sql
var mysqlFS embed.FS

//go:embed migrations/sqlite/*.sql
var sqliteFS embed.FS

// =============================================================================
// 🚚 迁移器
// =============================================================================

// Migrator 基于内嵌 SQL 的数据库迁移器。
// 复用调用方已打开的连接，不自行管理数据库生命周期。
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// New 创建迁移器；driver 取 postgres、mysql 或 sqlite。
func New(db *sql.DB, driver string, logger *zap.Logger) (*Migrator, error) {
	var (
		dbDriver database.Driver
		fsys     embed.FS
		err      error
	)

	switch driver {
	case "postgres":
		fsys = postgresFS
		dbDriver, err = postgres.WithInstance(db, &postgres.Config{})
	case "mysql":
		fsys = mysqlFS
		dbDriver, err = mysql.WithInstance(db, &mysql.Config{})
	case "sqlite":
		fsys = sqliteFS
		dbDriver, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	src, err := iofs.New(fsys, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, dbDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Migrator{
		migrate: m,
		logger:  logger.With(zap.String("component", "migration")),
	}, nil
}

// Up 应用全部待执行迁移；无待执行迁移不算错误。
func (m *Migrator) Up() error {
	if err := m.migrate.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	version, dirty, _ := m.migrate.Version()
	m.logger.Info("migrations applied",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// Down 回滚最近一次迁移
func (m *Migrator) Down() error {
	if err := m.migrate.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// Version 返回当前迁移版本；从未迁移过时 ok 为 false。
func (m *Migrator) Version() (version uint, dirty bool, ok bool, err error) {
	version, dirty, err = m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, true, nil
}

// Close 释放迁移源；数据库连接由调用方关闭。
func (m *Migrator) Close() error {
	srcErr, _ := m.migrate.Close()
	return srcErr
}
