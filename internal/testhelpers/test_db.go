package testhelpers

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"bpoc/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	openSQLite = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger:  logger.Default.LogMode(logger.Silent),
			NowFunc: func() time.Time { return time.Now().UTC() },
		})
	}
	migrateSchema = func(db *gorm.DB) error { return db.AutoMigrate(models.All()...) }
	dropTableFn   = func(db *gorm.DB, table any) error { return db.Migrator().DropTable(table) }
)

// SetupTestDB creates an isolated in-memory SQLite database for tests. Every
// call gets its own database, even within one test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, _ := SetupSharedTestDB(t)
	return db
}

// SetupSharedTestDB is SetupTestDB that also returns the DSN, so code under
// test can open a second handle on the same database.
func SetupSharedTestDB(t *testing.T) (*gorm.DB, string) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s-%s?mode=memory&cache=shared", name, uuid.NewString()[:8])
	db, err := openSQLite(dsn)
	if err != nil {
		panic(fmt.Sprintf("failed to open test database: %v", err))
	}
	if err := migrateSchema(db); err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db, dsn
}

// DropTable removes a table to force repository errors.
func DropTable(t *testing.T, db *gorm.DB, table any) {
	t.Helper()
	if err := dropTableFn(db, table); err != nil {
		panic(fmt.Sprintf("failed to drop table: %v", err))
	}
}
