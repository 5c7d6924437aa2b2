package rest

import (
	"net/http"

	"github.com/shelterhq/shelter-api/domain"
)

// The public handlers serve the unauthenticated dashboard embed: same query
// surface as the staff routes, reduced field set, anonymous audit trail.

func (h *Handler) PublicListAnimals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.Svc.PublicListAnimals(ctx, originFromRequest(r), r.URL.Query())
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusOK, NewListResponse(page))
}

func (h *Handler) PublicFilterAnimals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filterName := h.GetPathParam(r, "filterType")

	page, err := h.Svc.PublicFilterAnimals(ctx, originFromRequest(r), filterName, r.URL.Query())
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusOK, NewListResponse(page))
}

func (h *Handler) PublicGetAnimal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	animal, err := h.Svc.PublicGetAnimal(ctx, originFromRequest(r), h.GetPathParam(r, "id"))
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusOK, DataResponse[*domain.Animal]{
		Success: true,
		Data:    animal,
	})
}

func (h *Handler) PublicAnimalStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.Svc.PublicAnimalStats(ctx, originFromRequest(r))
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusOK, DataResponse[*domain.AnimalStats]{
		Success: true,
		Data:    stats,
	})
}
