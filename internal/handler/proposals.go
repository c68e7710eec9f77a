package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/view"
)

// ClientIP returns the first X-Forwarded-For hop, else X-Real-IP, else "unknown".
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return "unknown"
}

// ShowProposal renders a public proposal.
func (h *Handler) ShowProposal(w http.ResponseWriter, r *http.Request) {
	h.renderProposal(w, r, http.StatusOK, "")
}

func (h *Handler) renderProposal(w http.ResponseWriter, r *http.Request, status int, formErr string) {
	id := chi.URLParam(r, "id")
	v, err := h.Proposals.View(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.page(w, r, http.StatusNotFound, view.NotFound("proposal not found"))
			return
		}
		h.log.Error("failed to load proposal", zap.String("proposal_id", id), zap.Error(err))
		h.page(w, r, http.StatusInternalServerError, view.Error("Please try again later."))
		return
	}
	h.page(w, r, status, view.Proposal(view.ProposalPage{
		View:   v,
		Action: "/proposals/" + id + "/sign",
		Error:  formErr,
	}))
}

// SignProposal records the visitor's signature and shows the signed proposal.
func (h *Handler) SignProposal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.renderProposal(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}

	_, err := h.Proposals.Sign(r.Context(), id, r.PostForm.Get("signed_by"), ClientIP(r))
	switch {
	case err == nil:
		http.Redirect(w, r, "/proposals/"+id, http.StatusSeeOther)
	case errors.Is(err, apperror.ErrInvalidInput):
		h.renderProposal(w, r, http.StatusUnprocessableEntity, "Please enter your full name to sign.")
	case errors.Is(err, apperror.ErrConflict):
		h.renderProposal(w, r, http.StatusConflict, "")
	case errors.Is(err, apperror.ErrNotFound):
		h.page(w, r, http.StatusNotFound, view.NotFound("proposal not found"))
	default:
		h.log.Error("failed to sign proposal", zap.String("proposal_id", id), zap.Error(err))
		h.page(w, r, http.StatusInternalServerError, view.Error("Please try again later."))
	}
}
