//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
)

var CoreInfraSet = wire.NewSet(
	NewConfigProvider,
	NewConfig,
	NewLogger,
	NewMetricsRegistry,
	NewMetrics,
	NewHealthTracker,
)

var ToolHostSet = wire.NewSet(
	NewCommentStore,
	NewGenerator,
	NewAuthenticator,
	NewMCPServer,
	NewToolRegistry,
	NewToolDependencies,
	NewInitSignal,
	NewReloadManager,
)

var AppSet = wire.NewSet(
	CoreInfraSet,
	ToolHostSet,
	wire.Struct(new(ApplicationOptions), "*"),
	NewApplication,
)
