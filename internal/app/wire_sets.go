//go:build wireinject
// +build wireinject

package app

import "github.com/google/wire"

var CoreInfraSet = wire.NewSet(
	NewMetricsRegistry,
	NewMetrics,
	NewGatherer,
)

var PipelineSet = wire.NewSet(
	NewPipelineRunner,
	NewArchive,
	NewService,
)

var AppSet = wire.NewSet(
	CoreInfraSet,
	PipelineSet,
)
