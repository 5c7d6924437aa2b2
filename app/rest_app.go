package app

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shelterhq/shelter-api/config"
	"github.com/shelterhq/shelter-api/domain"
	"github.com/shelterhq/shelter-api/migration"
	"github.com/shelterhq/shelter-api/pkg/logger"
	"github.com/shelterhq/shelter-api/rest"
	"go.uber.org/fx"
)

func NewRestApp(configName string, configDirPath string) (*fx.App, error) {
	handlerModule, err := HandlerModule(configName, configDirPath)
	if err != nil {
		return nil, err
	}

	app := fx.New(
		handlerModule,
		fx.Invoke(InitLogging),
		fx.Invoke(migration.RunMongoMigration),
		fx.Invoke(BootstrapAdminUser),
		fx.Invoke(StartRestApp),
	)
	return app, nil
}

func InitLogging(cfg config.LoggingConfig) {
	logger.InitLogger(cfg.Level)
}

// BootstrapAdminUser makes sure the configured admin account exists before
// the server starts taking requests.
func BootstrapAdminUser(lc fx.Lifecycle, cfg config.AccountConfig, svc domain.Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return svc.CreateAdminUserIfNotExists(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword.Value())
		},
	})
}

func StartRestApp(lc fx.Lifecycle, cfg config.ServerConfig, handler *rest.Handler) error {
	engine := echo.New()
	engine.HideBanner = true
	engine.Use(echomw.Secure())
	if cfg.AllowOrigin != "" {
		engine.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{cfg.AllowOrigin},
			AllowCredentials: true,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		}))
	}
	handler.SetupRoutes(engine)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			serverHost := cfg.Host
			if serverHost == "" {
				serverHost = ":8080"
			}
			go func() {
				logger.Logger(ctx).Info().Msgf("starting rest server on %s", serverHost)
				if err := engine.Start(serverHost); err != nil && err != http.ErrServerClosed {
					logger.Logger(ctx).Fatal().Err(err).Msgf("start rest server fail on %s", serverHost)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Logger(ctx).Info().Msg("shutting down rest server")
			handler.Audit.Wait()
			return engine.Shutdown(ctx)
		},
	})

	return nil
}
