package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thereayou/slack-lite/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// Connect opens the Postgres pool described by cfg.
func Connect(ctx context.Context, cfg Config) (*Database, error) {
	if cfg.DSN == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := Open(postgres.Open(cfg.DSN))
	if err != nil {
		return nil, err
	}

	if err := db.SetPool(cfg.MaxOpenConns, cfg.MaxIdleConns, 30*time.Minute); err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// Open wraps any gorm dialector. Unique violations surface as ErrDuplicate.
func Open(dialector gorm.Dialector) (*Database, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return NewDatabase(db), nil
}

// SetPool sizes the connection pool. Zero values keep the driver defaults.
func (d *Database) SetPool(maxOpen, maxIdle int, maxLifetime time.Duration) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(maxLifetime)
	}
	return nil
}

func (d *Database) Migrate(ctx context.Context) error {
	err := d.conn(ctx).AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.Member{},
		&models.Channel{},
		&models.ChannelMember{},
		&models.Message{},
		&models.DirectMessage{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
