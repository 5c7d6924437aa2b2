package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/shelterhq/shelter-api/domain"
)

// UserResponse is the shape user records take on the wire. The password
// never appears; the json tag on the domain type enforces that, this type
// controls the rest.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	LastLogin int64       `json:"lastLogin,omitempty"`
	CreatedAt int64       `json:"createdAt,omitempty"`
}

func NewUserResponse(user *domain.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedTime,
	}
}

type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role,omitempty"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req RegisterRequest
	err := h.JSONBind(r, &req)
	if err != nil {
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, token, err := h.Svc.Register(ctx, originFromRequest(r), domain.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}

	h.setTokenCookie(w, token)
	h.JSONResponse(ctx, w, http.StatusCreated, TokenResponse{
		Success: true,
		Token:   token,
		User:    NewUserResponse(user),
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req LoginRequest
	err := h.JSONBind(r, &req)
	if err != nil {
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Email == "" || req.Password == "" {
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "Email and password are required", errors.New("email or password is empty"))
		return
	}

	user, token, err := h.Svc.Login(ctx, originFromRequest(r), req.Email, req.Password)
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}

	h.setTokenCookie(w, token)
	h.JSONResponse(ctx, w, http.StatusOK, TokenResponse{
		Success: true,
		Token:   token,
		User:    NewUserResponse(user),
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := h.GetClaimsFromContext(ctx)
	if !ok {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Not authorized to access this route", errors.New("claims not found"))
		return
	}

	err := h.Svc.Logout(ctx, originFromRequest(r), claims)
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}

	h.clearTokenCookie(w)
	h.JSONResponse(ctx, w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Logged out",
	})
}

// Me returns the account behind the current session; the middleware already
// resolved it.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.GetUserFromContext(ctx)
	if !ok {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Not authorized to access this route", errors.New("user not found in context"))
		return
	}

	h.JSONResponse(ctx, w, http.StatusOK, DataResponse[*UserResponse]{
		Success: true,
		Data:    NewUserResponse(user),
	})
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   !h.development,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   !h.development,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
