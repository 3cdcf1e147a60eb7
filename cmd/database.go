package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/training-management/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the gorm handle used by repositories and an sqlx view of
// the same pool for health checks and migrations.
type Database struct {
	Gorm *gorm.DB
	SQL  *sqlx.DB
}

func (d *Database) Close() error {
	return d.SQL.Close()
}

// initDB opens the configured driver once and shares the pool between gorm
// and sqlx.
func initDB(cfg internal.DatabaseConfig) (*Database, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var (
		gdb *gorm.DB
		sdb *sqlx.DB
		err error
	)

	switch cfg.DriverName() {
	case "sqlite":
		gdb, err = gorm.Open(sqlite.Open(cfg.Source), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sqlite pool: %w", err)
		}
		sdb = sqlx.NewDb(sqlDB, "sqlite3")
	default:
		sdb, err = sqlx.Connect("pgx", cfg.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to open db connection: %w", err)
		}
		gdb, err = gorm.Open(postgres.New(postgres.Config{Conn: sdb.DB}), gormConfig)
		if err != nil {
			_ = sdb.Close()
			return nil, fmt.Errorf("failed to open gorm session: %w", err)
		}
	}

	sdb.SetMaxIdleConns(cfg.MaxIdleConns)
	sdb.SetMaxOpenConns(cfg.MaxOpenConns)
	if cfg.ConnMaxLifetime > 0 {
		sdb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sdb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sdb.PingContext(ctx); err != nil {
		_ = sdb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{Gorm: gdb, SQL: sdb}, nil
}
