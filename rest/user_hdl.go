package rest

import (
	"errors"
	"net/http"

	"github.com/shelterhq/shelter-api/domain"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := h.GetClaimsFromContext(ctx)

	page, err := h.Svc.ListUsers(ctx, originFromRequest(r), claims, r.URL.Query())
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}

	users := make([]*UserResponse, 0, len(page.Items))
	for _, user := range page.Items {
		users = append(users, NewUserResponse(user))
	}
	h.JSONResponse(ctx, w, http.StatusOK, ListResponse[*UserResponse]{
		Success: true,
		Count:   len(users),
		Pagination: &Pagination{
			Total: page.Total,
			Page:  page.Page,
			Limit: page.Limit,
			Pages: page.Pages,
		},
		Data: users,
	})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := h.GetClaimsFromContext(ctx)

	user, err := h.Svc.GetUser(ctx, originFromRequest(r), claims, h.GetPathParam(r, "id"))
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusOK, DataResponse[*UserResponse]{
		Success: true,
		Data:    NewUserResponse(user),
	})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := h.GetClaimsFromContext(ctx)
	if !ok {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Not authorized to access this route", errors.New("claims not found"))
		return
	}

	var req RegisterRequest
	err := h.JSONBind(r, &req)
	if err != nil {
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.Svc.CreateUser(ctx, originFromRequest(r), claims, domain.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusCreated, DataResponse[*UserResponse]{
		Success: true,
		Data:    NewUserResponse(user),
	})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := h.GetClaimsFromContext(ctx)
	if !ok {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Not authorized to access this route", errors.New("claims not found"))
		return
	}

	var update domain.UserUpdate
	err := h.JSONBind(r, &update)
	if err != nil {
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.Svc.UpdateUser(ctx, originFromRequest(r), claims, h.GetPathParam(r, "id"), update)
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusOK, DataResponse[*UserResponse]{
		Success: true,
		Data:    NewUserResponse(user),
	})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := h.GetClaimsFromContext(ctx)
	if !ok {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Not authorized to access this route", errors.New("claims not found"))
		return
	}

	err := h.Svc.DeleteUser(ctx, originFromRequest(r), claims, h.GetPathParam(r, "id"))
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "User deleted",
	})
}
