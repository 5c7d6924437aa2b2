package rest

import (
	"errors"
	"net/http"

	"github.com/shelterhq/shelter-api/domain"
)

func (h *Handler) ListAnimals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := h.GetClaimsFromContext(ctx)

	page, err := h.Svc.ListAnimals(ctx, originFromRequest(r), claims, r.URL.Query())
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusOK, NewListResponse(page))
}

// FilterAnimals serves the named rescue-training profiles. The profile name
// lives in the path and may contain an escaped slash (Mountain%2FWilderness).
func (h *Handler) FilterAnimals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := h.GetClaimsFromContext(ctx)
	filterName := h.GetPathParam(r, "filterType")

	page, err := h.Svc.FilterAnimals(ctx, originFromRequest(r), claims, filterName, r.URL.Query())
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusOK, NewListResponse(page))
}

func (h *Handler) GetAnimal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := h.GetClaimsFromContext(ctx)

	animal, err := h.Svc.GetAnimal(ctx, originFromRequest(r), claims, h.GetPathParam(r, "id"))
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusOK, DataResponse[*domain.Animal]{
		Success: true,
		Data:    animal,
	})
}

func (h *Handler) CreateAnimal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := h.GetClaimsFromContext(ctx)
	if !ok {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Not authorized to access this route", errors.New("claims not found"))
		return
	}

	var animal domain.Animal
	err := h.JSONBind(r, &animal)
	if err != nil {
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	animal.BaseEntity = domain.NewBaseEntity()

	err = h.Svc.CreateAnimal(ctx, originFromRequest(r), claims, &animal)
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusCreated, DataResponse[*domain.Animal]{
		Success: true,
		Data:    &animal,
	})
}

func (h *Handler) UpdateAnimal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := h.GetClaimsFromContext(ctx)
	if !ok {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Not authorized to access this route", errors.New("claims not found"))
		return
	}

	var update domain.AnimalUpdate
	err := h.JSONBind(r, &update)
	if err != nil {
		h.ErrorResponse(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	animal, err := h.Svc.UpdateAnimal(ctx, originFromRequest(r), claims, h.GetPathParam(r, "id"), update)
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusOK, DataResponse[*domain.Animal]{
		Success: true,
		Data:    animal,
	})
}

func (h *Handler) DeleteAnimal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, ok := h.GetClaimsFromContext(ctx)
	if !ok {
		h.ErrorResponse(ctx, w, http.StatusUnauthorized, "Not authorized to access this route", errors.New("claims not found"))
		return
	}

	err := h.Svc.DeleteAnimal(ctx, originFromRequest(r), claims, h.GetPathParam(r, "id"))
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Animal deleted",
	})
}
