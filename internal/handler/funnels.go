package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/export"
	"github.com/gentaArnezzi/onvlo/internal/model"
)

type tenantKey struct{}

// TenantHeader carries the tenant id set by the upstream auth proxy.
const TenantHeader = "X-Tenant-ID"

// RequireTenant rejects operator requests without a tenant identity.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(TenantHeader)
		if id == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "missing tenant identity"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tenantKey{}, id)))
	})
}

func tenantID(r *http.Request) string {
	id, _ := r.Context().Value(tenantKey{}).(string)
	return id
}

// writeError maps service errors onto status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrInvalidInput):
		h.log.Warn("validation failed", zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, apperror.CustomValidationError(err))
	case errors.Is(err, apperror.ErrSlugTaken):
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": apperror.ErrSlugTaken.Error()})
	case errors.Is(err, apperror.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "funnel not found"})
	default:
		h.log.Error("funnel request failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.log.Error("failed to decode json", zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
		return false
	}
	return true
}

func (h *Handler) ListFunnels(w http.ResponseWriter, r *http.Request) {
	funnels, err := h.Funnels.List(r.Context(), tenantID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if funnels == nil {
		funnels = []*model.Funnel{}
	}
	h.writeJSON(w, http.StatusOK, funnels)
}

func (h *Handler) CreateFunnel(w http.ResponseWriter, r *http.Request) {
	var in model.FunnelInput
	if !h.decode(w, r, &in) {
		return
	}
	saved, err := h.Funnels.Create(r.Context(), tenantID(r), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, saved)
}

func (h *Handler) GetFunnel(w http.ResponseWriter, r *http.Request) {
	saved, err := h.Funnels.Get(r.Context(), tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) UpdateFunnel(w http.ResponseWriter, r *http.Request) {
	var patch model.FunnelPatch
	if !h.decode(w, r, &patch) {
		return
	}
	saved, err := h.Funnels.Update(r.Context(), tenantID(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) DeleteFunnel(w http.ResponseWriter, r *http.Request) {
	if err := h.Funnels.Delete(r.Context(), tenantID(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportSubmissions streams the funnel's submissions as an XLSX workbook.
func (h *Handler) ExportSubmissions(w http.ResponseWriter, r *http.Request) {
	saved, err := h.Funnels.Get(r.Context(), tenantID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	subs, err := h.Submissions.ListSubmissions(r.Context(), saved.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	data, err := export.Submissions(saved.Funnel, subs)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-submissions.xlsx", saved.Slug))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
