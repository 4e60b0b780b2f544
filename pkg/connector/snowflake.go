// pkg/connector/snowflake.go
package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/config"
)

// OpenSnowflake opens a Snowflake connection pool for the analytical
// warehouse and verifies it with a ping.
func OpenSnowflake(ctx context.Context, cfg *config.SnowflakeConfig, logger *zap.Logger) (*sqlx.DB, error) {
	sfConfig := &gosnowflake.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Warehouse: cfg.Warehouse,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Role:      cfg.Role,
	}

	dsn, err := gosnowflake.DSN(sfConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := sqlx.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open Snowflake connection: %w", err)
	}

	ApplyConnectionSettings(db, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime)

	if err := PingWithTimeout(ctx, db, 15*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to validate Snowflake connection: %w", err)
	}

	logger.Info("Connected to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("database", cfg.Database),
		zap.String("schema", cfg.Schema))
	LogConnectionStats(logger, cfg.Database, db)
	return db, nil
}
