package rest

import (
	"bytes"
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/shelterhq/shelter-api/domain"
	"github.com/shelterhq/shelter-api/pkg/logger"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type contextKey string

const (
	claimsContextKey contextKey = "claims"
	userContextKey   contextKey = "user"
)

func (h *Handler) SetClaimsInContext(ctx context.Context, claims *domain.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

func (h *Handler) GetClaimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*domain.Claims)
	return claims, ok
}

func (h *Handler) SetUserInContext(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func (h *Handler) GetUserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok
}

// GetAuthMiddleware gates a route on a verified token and an optional role
// allow-list. The outcomes, in order:
//
//	no token                 -> 401, no audit entry
//	invalid or expired token -> 401, AUTH_FAILURE entry (no actor)
//	token for a deleted user -> 401, no audit entry
//	role not in allow-list   -> 403, AUTHORIZATION_FAILURE entry
//	otherwise                -> claims and user placed in context
func (h *Handler) GetAuthMiddleware(roles ...domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			origin := originFromRequest(r)

			tokenString := h.extractToken(r)
			if tokenString == "" {
				h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Not authorized to access this route", nil)
				return
			}

			claims, err := h.Svc.VerifyToken(ctx, tokenString)
			if err != nil {
				h.Audit.Record(ctx, &domain.AuditLog{
					Action:     domain.ActionAuthFailure,
					ActionType: domain.ActionTypeRead,
					IP:         origin.IP,
					UserAgent:  origin.UserAgent,
					Details:    bson.M{"error": err.Error(), "path": r.URL.Path},
				})
				h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Not authorized to access this route", err)
				return
			}

			user, err := h.Svc.GetUserByClaims(ctx, claims)
			if err != nil {
				// A valid token whose account has since been removed is a
				// stale session, not an attack; it gets a plain 401.
				h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Not authorized to access this route", err)
				return
			}

			if !user.Role.OneOf(roles) {
				uid := user.ID
				h.Audit.Record(ctx, &domain.AuditLog{
					Action:      domain.ActionAuthorizationFailure,
					ActionType:  domain.ActionTypeRead,
					ActorID:     &uid,
					TargetModel: targetModelFromPath(r.URL.Path),
					IP:          origin.IP,
					UserAgent:   origin.UserAgent,
					Details: bson.M{
						"requiredRoles": roleNames(roles),
						"userRole":      string(user.Role),
						"path":          r.URL.Path,
					},
				})
				h.ErrorResponse(ctx, w, http.StatusForbidden,
					"User role '"+string(user.Role)+"' is not authorized to access this route", nil)
				return
			}

			ctx = h.SetClaimsInContext(ctx, claims)
			ctx = h.SetUserInContext(ctx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken prefers the Authorization bearer header and falls back to the
// session cookie.
func (h *Handler) extractToken(r *http.Request) string {
	const bearerPrefix = "Bearer "
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, bearerPrefix) {
		return header[len(bearerPrefix):]
	}
	cookie, err := r.Cookie(h.cookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// targetModelFromPath maps the first resource segment under /api to the model
// an authorization failure was aimed at.
func targetModelFromPath(path string) string {
	trimmed := strings.TrimPrefix(path, "/api/")
	segment, _, _ := strings.Cut(trimmed, "/")
	switch segment {
	case "animals":
		return "Animal"
	case "users", "auth":
		return "User"
	case "audit":
		return "AuditLog"
	}
	return ""
}

func roleNames(roles []domain.Role) []string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return names
}

func (h *Handler) LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = xid.New().String()
		}
		start := time.Now()
		log := logger.Logger(ctx).With().
			Str("method", r.Method).Str("req_id", reqID).
			Str("url", r.URL.String()).Logger()

		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("panic", err).Msgf("Recovered from panic, stack trace: %s", string(debug.Stack()))
				origin := originFromRequest(r)
				h.Audit.Dispatch(&domain.AuditLog{
					Action:     domain.ActionSystemError,
					ActionType: domain.ActionTypeRead,
					IP:         origin.IP,
					UserAgent:  origin.UserAgent,
					Details:    bson.M{"panic": true, "path": r.URL.Path},
				})
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		ctx = log.WithContext(ctx)
		r = r.WithContext(ctx)
		responseWriter := NewResponseWriter(w)
		next.ServeHTTP(responseWriter, r)
		cost := time.Since(start)
		log = log.With().
			Int("cost_msec", int(cost.Milliseconds())).
			Logger()
		if responseWriter.statusCode >= 500 {
			log.Error().
				Int("status_code", responseWriter.statusCode).
				Str("response_body", responseWriter.responseBody.String()).
				Msg("Request completed with server error")
		} else if responseWriter.statusCode >= 400 {
			log.Warn().
				Int("status_code", responseWriter.statusCode).
				Str("response_body", responseWriter.responseBody.String()).
				Msg("Request completed with client error")
		} else {
			log.Info().
				Int("status_code", responseWriter.statusCode).
				Msg("Request completed successfully")
		}
	})
}

type responseWriter struct {
	http.ResponseWriter
	responseBody bytes.Buffer
	statusCode   int
}

func NewResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.responseBody.Write(b)
	return rw.ResponseWriter.Write(b)
}
