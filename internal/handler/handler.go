// Package handler contains the HTTP handlers of the public onboarding pages,
// public proposals and the operator funnel API.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/gentaArnezzi/onvlo/internal/funnel"
	"github.com/gentaArnezzi/onvlo/internal/intake"
	"github.com/gentaArnezzi/onvlo/internal/placeholder"
	"github.com/gentaArnezzi/onvlo/internal/proposal"
	"github.com/gentaArnezzi/onvlo/internal/repository"
	"github.com/gentaArnezzi/onvlo/internal/wizard"
)

// Submitter runs the intake pipeline for a finished wizard.
type Submitter interface {
	Submit(ctx context.Context, tenantSlug, funnelSlug string, responses map[string]any) (*intake.Result, error)
}

// Services are the collaborators the handlers delegate to.
type Services struct {
	Funnels     *funnel.Service
	Intake      Submitter
	Wizards     wizard.Store
	Proposals   *proposal.Service
	Submissions repository.SubmissionRepository
	Engine      *placeholder.Engine
	// PortalURL is where the success page sends new clients.
	PortalURL string
}

// Handler wraps HTTP handlers with logger and services.
type Handler struct {
	log *zap.Logger
	Services
}

// New creates a new Handler instance.
func New(log *zap.Logger, s Services) *Handler {
	return &Handler{log: log, Services: s}
}

// Routes mounts every endpoint on a new router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Healthz)

	r.Route("/onboard/{tenantSlug}/{funnelSlug}", func(r chi.Router) {
		r.Get("/", h.ShowWizard)
		r.Post("/", h.AdvanceWizard)
		r.Get("/success", h.ShowSuccess)
	})

	r.Get("/proposals/{id}", h.ShowProposal)
	r.Post("/proposals/{id}/sign", h.SignProposal)

	r.Route("/api/funnels", func(r chi.Router) {
		r.Use(RequireTenant)
		r.Get("/", h.ListFunnels)
		r.Post("/", h.CreateFunnel)
		r.Get("/{id}", h.GetFunnel)
		r.Patch("/{id}", h.UpdateFunnel)
		r.Delete("/{id}", h.DeleteFunnel)
		r.Get("/{id}/submissions.xlsx", h.ExportSubmissions)
	})
	return r
}

// Healthz is a simple health check endpoint.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("unable to write response stream", zap.Error(err))
	}
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	templ.Handler(c, templ.WithStatus(status)).ServeHTTP(w, r)
}
