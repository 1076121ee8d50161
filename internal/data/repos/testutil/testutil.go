package testutil

import (
	"os"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	types "github.com/tandemstudy/tandem-backend/internal/domain"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

var (
	dbOnce sync.Once
	db     *gorm.DB
	dbErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a migrated test database. TEST_POSTGRES_DSN selects Postgres;
// otherwise an in-memory sqlite database is used so the suite runs anywhere.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbOnce.Do(func() {
		dialector := dialectorFromEnv()
		db, dbErr = gorm.Open(dialector, &gorm.Config{
			TranslateError: true,
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if dbErr != nil {
			return
		}
		dbErr = autoMigrateAll(db)
	})

	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return db
}

// Tx wraps a test in a transaction that rolls back on cleanup, keeping the
// shared database empty between tests.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func dialectorFromEnv() gorm.Dialector {
	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		return postgres.Open(dsn)
	}
	return sqlite.Open("file::memory:?cache=shared")
}

func autoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Source{},
		&types.Card{},
		&types.ReviewLog{},
		&types.LearningPartner{},
		&types.StudySettings{},
		&types.StudySession{},
		&types.StudySessionCard{},
	)
}
