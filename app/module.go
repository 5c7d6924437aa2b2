package app

import (
	"github.com/shelterhq/shelter-api/audit"
	"github.com/shelterhq/shelter-api/config"
	"github.com/shelterhq/shelter-api/repository"
	"github.com/shelterhq/shelter-api/rest"
	"github.com/shelterhq/shelter-api/service"
	"go.uber.org/fx"
)

func ConfigModule(configName string, configPath string) (fx.Option, error) {
	cfg, err := config.InitAppConfig(configName, configPath)
	if err != nil {
		return nil, err
	}

	return fx.Options(
		fx.Provide(func() config.AppConfig {
			return cfg
		}),
		fx.Provide(func(appCfg config.AppConfig) config.MongoDBConfig {
			return appCfg.MongoDB
		}),
		fx.Provide(func(appCfg config.AppConfig) config.ServerConfig {
			return appCfg.Server
		}),
		fx.Provide(func(appCfg config.AppConfig) config.LoggingConfig {
			return appCfg.Logging
		}),
		fx.Provide(func(appCfg config.AppConfig) config.KeyConfig {
			return appCfg.Key
		}),
		fx.Provide(func(appCfg config.AppConfig) config.AccountConfig {
			return appCfg.Account
		}),
		fx.Provide(func(appCfg config.AppConfig) config.RateLimitConfig {
			return appCfg.RateLimit
		}),
	), nil
}

// RepoModule creates an Fx module that provides the repository layer, return domain.Repository
func RepoModule(configName string, configPath string) (fx.Option, error) {
	configModule, err := ConfigModule(configName, configPath)
	if err != nil {
		return nil, err
	}

	return fx.Options(
		configModule,
		fx.Provide(repository.NewRepository),
	), nil
}

// ServiceModule creates an Fx module that provides the audit and service
// layers, return domain.Service
func ServiceModule(configName string, configPath string) (fx.Option, error) {
	repoModule, err := RepoModule(configName, configPath)
	if err != nil {
		return nil, err
	}

	return fx.Options(
		repoModule,
		fx.Provide(audit.NewLogger),
		fx.Provide(service.NewService),
	), nil
}

// HandlerModule creates an Fx module that provides the REST handler, return *rest.Handler
func HandlerModule(configName string, configPath string) (fx.Option, error) {
	serviceModule, err := ServiceModule(configName, configPath)
	if err != nil {
		return nil, err
	}

	return fx.Options(
		serviceModule,
		fx.Provide(rest.NewHandler),
	), nil
}
