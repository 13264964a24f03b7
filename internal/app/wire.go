//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"tldrscope/internal/infra/config"
)

func InitializeService(settings config.Settings, logger *zap.Logger) (*Service, func(), error) {
	wire.Build(AppSet)
	return nil, nil, nil
}
