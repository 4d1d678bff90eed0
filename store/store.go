// Package store persists the billing domain model through GORM, against
// postgres in deployments and in-memory sqlite in tests.
package store

import (
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"building-cost/internal/config"
	"building-cost/internal/errors"
)

// Store is the GORM-backed repository. It satisfies reconcile.Repository
// and carries the additional queries the calculation and export paths
// need.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open connects per the configured driver and optionally migrates the
// schema.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, errors.New(errors.TypeConfig, "unsupported database driver: "+cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Persistence("open database", err)
	}

	s := &Store{db: db, log: log}
	if cfg.AutoMigrate {
		if err := s.Migrate(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Migrate creates or updates the schema.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(allModels()...); err != nil {
		return errors.Persistence("migrate schema", err)
	}
	return nil
}
