package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/shelterhq/shelter-api/domain"
)

func (h *Handler) SetupRoutes(engine *echo.Echo) {
	engine.GET("/health", h.echoHandler(h.HealthCheck))
	engine.GET("/version", h.echoHandler(h.Version))
	engine.GET("/metrics", echo.WrapHandler(h.MetricsHandler()))

	api := engine.Group("/api",
		echo.WrapMiddleware(h.LoggerMiddleware),
		echo.WrapMiddleware(h.MetricsMiddleware),
		echo.WrapMiddleware(h.RateLimitMiddleware),
	)
	{
		// auth routes
		api.POST("/auth/register", h.echoHandler(h.Register))
		api.POST("/auth/login", h.echoHandler(h.Login))
		api.GET("/auth/me", h.echoHandler(h.Me), h.authenticated())
		api.GET("/auth/logout", h.echoHandler(h.Logout), h.authenticated())

		// public animal routes, reduced field set, no session required
		api.GET("/public/animals", h.echoHandler(h.PublicListAnimals))
		api.GET("/public/animals/stats/summary", h.echoHandler(h.PublicAnimalStats))
		api.GET("/public/animals/filter/:filterType", h.echoHandlerWithParams(h.PublicFilterAnimals))
		api.GET("/public/animals/:id", h.echoHandlerWithParams(h.PublicGetAnimal))

		// staff animal routes
		api.GET("/animals", h.echoHandler(h.ListAnimals), h.authenticated())
		api.GET("/animals/filter/:filterType", h.echoHandlerWithParams(h.FilterAnimals), h.authenticated())
		api.GET("/animals/:id", h.echoHandlerWithParams(h.GetAnimal), h.authenticated())
		api.POST("/animals", h.echoHandler(h.CreateAnimal), h.requireRoles(domain.RoleStaff, domain.RoleAdmin))
		api.PUT("/animals/:id", h.echoHandlerWithParams(h.UpdateAnimal), h.requireRoles(domain.RoleStaff, domain.RoleAdmin))
		api.DELETE("/animals/:id", h.echoHandlerWithParams(h.DeleteAnimal), h.requireRoles(domain.RoleAdmin))

		// user administration
		api.GET("/users", h.echoHandler(h.ListUsers), h.requireRoles(domain.RoleAdmin))
		api.POST("/users", h.echoHandler(h.CreateUser), h.requireRoles(domain.RoleAdmin))
		api.GET("/users/:id", h.echoHandlerWithParams(h.GetUser), h.requireRoles(domain.RoleAdmin))
		api.PUT("/users/:id", h.echoHandlerWithParams(h.UpdateUser), h.requireRoles(domain.RoleAdmin))
		api.DELETE("/users/:id", h.echoHandlerWithParams(h.DeleteUser), h.requireRoles(domain.RoleAdmin))

		// audit trail
		api.GET("/audit", h.echoHandler(h.ListAuditLogs), h.requireRoles(domain.RoleAdmin))
		api.GET("/audit/stats", h.echoHandler(h.AuditStats), h.requireRoles(domain.RoleAdmin))
		api.GET("/audit/user/:id", h.echoHandlerWithParams(h.UserActivity), h.requireRoles(domain.RoleAdmin))
		api.GET("/audit/animal/:id", h.echoHandlerWithParams(h.AnimalActivity), h.requireRoles(domain.RoleAdmin, domain.RoleStaff))
		api.GET("/audit/:id", h.echoHandlerWithParams(h.GetAuditLog), h.requireRoles(domain.RoleAdmin))
	}
}

func (h *Handler) authenticated() echo.MiddlewareFunc {
	return echo.WrapMiddleware(h.GetAuthMiddleware())
}

func (h *Handler) requireRoles(roles ...domain.Role) echo.MiddlewareFunc {
	return echo.WrapMiddleware(h.GetAuthMiddleware(roles...))
}

func (h *Handler) echoHandler(handlerFunc func(w http.ResponseWriter, r *http.Request)) echo.HandlerFunc {
	return echo.WrapHandler(http.HandlerFunc(handlerFunc))
}

// echoHandlerWithParams wraps a handler function and injects path parameters
// into request context. Values are percent-decoded so a profile name like
// Mountain%2FWilderness arrives with its slash intact.
func (h *Handler) echoHandlerWithParams(handlerFunc func(w http.ResponseWriter, r *http.Request)) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		for _, name := range c.ParamNames() {
			value := c.Param(name)
			if decoded, err := url.PathUnescape(value); err == nil {
				value = decoded
			}
			r = r.WithContext(context.WithValue(r.Context(), pathParamKey(name), value))
		}
		handlerFunc(c.Response().Writer, r)
		return nil
	}
}

// pathParamKey is a type for path parameter context keys
type pathParamKey string

// GetPathParam retrieves a path parameter from request context
func (h *Handler) GetPathParam(r *http.Request, name string) string {
	if val, ok := r.Context().Value(pathParamKey(name)).(string); ok {
		return val
	}
	return ""
}
