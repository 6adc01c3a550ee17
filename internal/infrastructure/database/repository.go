package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	adapterrepo "github.com/eslsoft/wordbook/internal/adapter/repository"
	"github.com/eslsoft/wordbook/internal/infrastructure/config"
	"github.com/eslsoft/wordbook/internal/repository"
)

// NewEntryRepository builds the entry repository for the configured driver.
func NewEntryRepository(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (repository.EntryRepository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverJSON:
		logger.WithField("path", cfg.Storage.Path).Debug("using json storage")
		return adapterrepo.NewJSONEntryRepository(afero.NewOsFs(), cfg.Storage.Path, logger), func() {}, nil
	case config.DriverSQLite, config.DriverPostgres:
		db, cleanup, err := OpenDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		repo, err := adapterrepo.NewSQLEntryRepository(ctx, db, cfg.Storage.Driver, logger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		return repo, cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
