package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	types "github.com/tandemstudy/tandem-backend/internal/domain"
	"github.com/tandemstudy/tandem-backend/internal/pkg/envutil"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

// Service owns the database handle. Postgres is the production driver;
// DB_DRIVER=sqlite gives a file or in-memory database for local work.
type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewService(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	driver := envutil.String("DB_DRIVER", "postgres")

	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		path := envutil.String("SQLITE_PATH", "tandem.db")
		dialector = sqlite.Open(path)
	case "postgres":
		host := envutil.String("POSTGRES_HOST", "localhost")
		port := envutil.String("POSTGRES_PORT", "5432")
		user := envutil.String("POSTGRES_USER", "postgres")
		password := envutil.String("POSTGRES_PASSWORD", "")
		name := envutil.String("POSTGRES_NAME", "tandem")
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}

	log.Info("Connecting to database...", "driver", driver)
	// TranslateError surfaces unique-constraint violations as
	// gorm.ErrDuplicatedKey on every driver; the session store's
	// get-or-create path depends on it.
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Error("Failed to connect to database", "driver", driver, "error", err)
		return nil, fmt.Errorf("connect to %s: %w", driver, err)
	}

	return &Service{db: db, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.Source{},
		&types.Card{},
		&types.ReviewLog{},
		&types.LearningPartner{},
		&types.StudySettings{},
		&types.StudySession{},
		&types.StudySessionCard{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
