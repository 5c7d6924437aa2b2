package rest

import (
	"net/http"

	"github.com/shelterhq/shelter-api/domain"
)

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := h.GetClaimsFromContext(ctx)

	page, err := h.Svc.ListAuditLogs(ctx, originFromRequest(r), claims, r.URL.Query())
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusOK, NewListResponse(page))
}

func (h *Handler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := h.GetClaimsFromContext(ctx)

	entry, err := h.Svc.GetAuditLog(ctx, originFromRequest(r), claims, h.GetPathParam(r, "id"))
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusOK, DataResponse[*domain.AuditLog]{
		Success: true,
		Data:    entry,
	})
}

func (h *Handler) UserActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := h.GetClaimsFromContext(ctx)

	page, err := h.Svc.UserActivity(ctx, originFromRequest(r), claims, h.GetPathParam(r, "id"), r.URL.Query())
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusOK, NewListResponse(page))
}

// AnimalActivity returns the complete trail for one animal, unpaginated.
func (h *Handler) AnimalActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := h.GetClaimsFromContext(ctx)

	entries, err := h.Svc.AnimalActivity(ctx, originFromRequest(r), claims, h.GetPathParam(r, "id"))
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	if entries == nil {
		entries = []*domain.AuditLog{}
	}
	h.JSONResponse(ctx, w, http.StatusOK, ListResponse[*domain.AuditLog]{
		Success: true,
		Count:   len(entries),
		Data:    entries,
	})
}

func (h *Handler) AuditStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := h.GetClaimsFromContext(ctx)

	stats, err := h.Svc.AuditStats(ctx, originFromRequest(r), claims)
	if err != nil {
		h.HandleError(ctx, w, r, err)
		return
	}
	h.JSONResponse(ctx, w, http.StatusOK, DataResponse[*domain.AuditStats]{
		Success: true,
		Data:    stats,
	})
}
