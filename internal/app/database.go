package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	// NewDialector builds the postgres dialector over a pgx stdlib connection pool.
	NewDialector = func(dsn string) (gorm.Dialector, error) {
		connConfig, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse dsn: %w", err)
		}
		return postgres.New(postgres.Config{Conn: stdlib.OpenDB(*connConfig)}), nil
	}

	retryInterval = 500 * time.Millisecond
)

// OpenPostgres opens a gorm handle for dsn without pinging.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	dialector, err := NewDialector(dsn)
	if err != nil {
		return nil, err
	}
	return gorm.Open(dialector, &gorm.Config{NowFunc: func() time.Time { return time.Now().UTC() }})
}

// ConnectWithRetry keeps calling open until the database answers a ping or
// timeout elapses.
func ConnectWithRetry(ctx context.Context, open func(string) (*gorm.DB, error), dsn string, timeout time.Duration, logger *zap.Logger) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error

	for attempt := 1; ; attempt++ {
		db, err := open(dsn)
		if err == nil {
			if err = ping(ctx, db); err == nil {
				return db, nil
			}
		}
		lastErr = err
		logger.Warn("database not ready", zap.Int("attempt", attempt), zap.Error(err))

		if time.Now().Add(retryInterval).After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return nil, fmt.Errorf("connect to database after %s: %w", timeout, lastErr)
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
