//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"github.com/eslsoft/wordbook/internal/infrastructure/config"
	"github.com/eslsoft/wordbook/internal/infrastructure/database"
	"github.com/eslsoft/wordbook/internal/infrastructure/server"
)

var configSet = wire.NewSet(
	config.Load,
)

var loggerSet = wire.NewSet(
	server.NewLogger,
	provideFieldLogger,
)

var repositorySet = wire.NewSet(
	database.NewEntryRepository,
)

var usecaseSet = wire.NewSet(
	provideEntryStore,
	provideExampleLookup,
)

var serverSet = wire.NewSet(
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize(ctx context.Context) (*Container, func(), error) {
	wire.Build(
		configSet,
		loggerSet,
		repositorySet,
		usecaseSet,
		serverSet,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil, nil
}
