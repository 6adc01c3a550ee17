package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordbook/internal/adapter/provider/freedict"
	"github.com/eslsoft/wordbook/internal/infrastructure/config"
	"github.com/eslsoft/wordbook/internal/infrastructure/server"
	"github.com/eslsoft/wordbook/internal/repository"
	"github.com/eslsoft/wordbook/internal/usecase"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Store  usecase.EntryStore
	// Lookup is nil when dictionary.enabled is false.
	Lookup usecase.ExampleLookup
	Server *server.Server
}

// NewEditor starts an editing session over the container's store.
func (c *Container) NewEditor() *usecase.Editor {
	return usecase.NewEditor(c.Store, c.Lookup)
}

func provideFieldLogger(logger *logrus.Logger) logrus.FieldLogger {
	return logger
}

// provideEntryStore builds the store and seeds it from the repository.
func provideEntryStore(ctx context.Context, repo repository.EntryRepository, logger logrus.FieldLogger) (usecase.EntryStore, error) {
	store := usecase.NewEntryStore(repo, logger)
	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("initialize entry store: %w", err)
	}
	return store, nil
}

func provideExampleLookup(cfg *config.Config, logger logrus.FieldLogger) usecase.ExampleLookup {
	if !cfg.Dictionary.Enabled {
		return nil
	}
	client := freedict.NewClient(logger,
		freedict.WithBaseURL(cfg.Dictionary.BaseURL),
		freedict.WithTimeout(cfg.Dictionary.Timeout),
	)
	return usecase.NewExampleLookup(client, logger)
}
