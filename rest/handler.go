package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/shelterhq/shelter-api/audit"
	"github.com/shelterhq/shelter-api/config"
	"github.com/shelterhq/shelter-api/domain"
	"github.com/shelterhq/shelter-api/errs"
	"github.com/shelterhq/shelter-api/pkg/logger"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/fx"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SuccessResponse represents the success response structure
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// DataResponse wraps a single record.
type DataResponse[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// ListResponse wraps a page of records with the pagination echo.
type ListResponse[T any] struct {
	Success    bool        `json:"success"`
	Count      int         `json:"count"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Data       []T         `json:"data"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Pages int64 `json:"pages"`
}

func NewListResponse[T any](page *domain.Page[T]) ListResponse[T] {
	data := page.Items
	if data == nil {
		data = []T{}
	}
	return ListResponse[T]{
		Success: true,
		Count:   len(data),
		Pagination: &Pagination{
			Total: page.Total,
			Page:  page.Page,
			Limit: page.Limit,
			Pages: page.Pages,
		},
		Data: data,
	}
}

type TokenResponse struct {
	Success bool          `json:"success"`
	Token   string        `json:"token"`
	User    *UserResponse `json:"user"`
}

type Params struct {
	fx.In
	Svc          domain.Service
	Audit        *audit.Logger
	ServerConfig config.ServerConfig
	KeyConfig    config.KeyConfig
	RateLimit    config.RateLimitConfig
}

func NewHandler(params Params) (*Handler, error) {
	cookieName := params.KeyConfig.CookieName
	if cookieName == "" {
		cookieName = "token"
	}
	return &Handler{
		Svc:         params.Svc,
		Audit:       params.Audit,
		cookieName:  cookieName,
		development: params.ServerConfig.Development(),
		limiter:     newRateLimiter(params.RateLimit),
	}, nil
}

type Handler struct {
	Svc         domain.Service
	Audit       *audit.Logger
	cookieName  string
	development bool
	limiter     *rateLimiter
}

func (h *Handler) JSONResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		logger.Logger(ctx).Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) JSONBind(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	err := decoder.Decode(dst)
	if err != nil {
		return err
	}
	return nil
}

func (h *Handler) ErrorResponse(ctx context.Context, w http.ResponseWriter, status int, errMsg string, err error) {
	if err != nil {
		logger.Logger(ctx).Warn().Err(err).Int("status", status).Msg(errMsg)
	}
	resp := ErrorResponse{
		Success: false,
		Message: errMsg,
	}
	h.JSONResponse(ctx, w, status, resp)
}

// HandleError translates service errors into HTTP responses. Unmapped errors
// become opaque 500s and leave a SYSTEM_ERROR audit entry; the detail only
// reaches the client in development mode.
func (h *Handler) HandleError(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) {
	if httpErr, ok := errs.IsHTTPStatusError(err); ok {
		h.ErrorResponse(ctx, w, httpErr.StatusCode, httpErr.Message, httpErr.OriginalErr)
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.ErrorResponse(ctx, w, http.StatusNotFound, "Resource not found", err)
	case errors.Is(err, domain.ErrInvalidCredentials):
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Invalid credentials", err)
	case errors.Is(err, domain.ErrInvalidID):
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "Invalid id", err)
	case errors.Is(err, domain.ErrUnknownFilter):
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "Unknown filter type", err)
	case errors.Is(err, domain.ErrDuplicateEmail):
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "Email already registered", err)
	case errors.Is(err, domain.ErrValidation):
		h.ErrorResponse(ctx, w, http.StatusBadRequest, err.Error(), err)
	default:
		logger.Logger(ctx).Error().Err(err).Msg("Unhandled error")
		h.Audit.Dispatch(&domain.AuditLog{
			Action:     domain.ActionSystemError,
			ActionType: domain.ActionTypeRead,
			IP:         originFromRequest(r).IP,
			UserAgent:  originFromRequest(r).UserAgent,
			Details:    bson.M{"error": err.Error(), "path": r.URL.Path},
		})
		msg := "Internal server error"
		if h.development {
			msg = err.Error()
		}
		h.ErrorResponse(ctx, w, http.StatusInternalServerError, msg, err)
	}
}

func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "Shelter Dashboard API Server",
		"version": "1.0.0",
	}
	h.JSONResponse(r.Context(), w, http.StatusOK, response)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "Shelter Dashboard API Server",
	}
	h.JSONResponse(r.Context(), w, http.StatusOK, response)
}

// originFromRequest extracts the caller's forensic trail. The first entry of
// X-Forwarded-For wins when present; otherwise the socket address.
func originFromRequest(r *http.Request) domain.Origin {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		if idx := strings.IndexByte(ip, ','); idx >= 0 {
			ip = ip[:idx]
		}
		ip = strings.TrimSpace(ip)
	} else {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = r.RemoteAddr
		}
	}
	return domain.Origin{
		IP:        ip,
		UserAgent: r.UserAgent(),
	}
}
