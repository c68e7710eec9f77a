package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/intake"
	"github.com/gentaArnezzi/onvlo/internal/model"
	"github.com/gentaArnezzi/onvlo/internal/placeholder"
	"github.com/gentaArnezzi/onvlo/internal/view"
	"github.com/gentaArnezzi/onvlo/internal/wizard"
)

const (
	sessionCookie = "onboard_session"
	submitFailed  = "We could not save your submission. Please try again."
)

// onboarding is the resolved target of an /onboard request.
type onboarding struct {
	tenant *model.Tenant
	funnel *model.Funnel
	path   string
}

func (o onboarding) key(session string) wizard.Key {
	return wizard.Key{Tenant: o.tenant.ID, Funnel: o.funnel.ID, Session: session}
}

// resolve writes the error page itself and returns false when the funnel is
// not publicly reachable.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) (onboarding, bool) {
	tenantSlug := chi.URLParam(r, "tenantSlug")
	funnelSlug := chi.URLParam(r, "funnelSlug")
	tenant, f, err := h.Funnels.Resolve(r.Context(), tenantSlug, funnelSlug)
	if err != nil {
		if errors.Is(err, apperror.ErrFunnelNotFound) {
			h.page(w, r, http.StatusNotFound, view.NotFound(apperror.ErrFunnelNotFound.Error()))
			return onboarding{}, false
		}
		h.log.Error("failed to resolve funnel",
			zap.String("tenant_slug", tenantSlug),
			zap.String("funnel_slug", funnelSlug),
			zap.Error(err))
		h.page(w, r, http.StatusInternalServerError, view.Error("Please try again later."))
		return onboarding{}, false
	}
	return onboarding{
		tenant: tenant,
		funnel: f,
		path:   fmt.Sprintf("/onboard/%s/%s", tenantSlug, funnelSlug),
	}, true
}

// session returns the visitor's session id, issuing a new cookie when absent.
func session(w http.ResponseWriter, r *http.Request) (string, bool) {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/onboard/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, false
}

// ShowWizard renders the visitor's current wizard step.
func (h *Handler) ShowWizard(w http.ResponseWriter, r *http.Request) {
	o, ok := h.resolve(w, r)
	if !ok {
		return
	}
	sid, _ := session(w, r)
	wz, err := wizard.LoadOrNew(r.Context(), h.Wizards, o.key(sid))
	if err != nil {
		h.log.Error("failed to load wizard", zap.String("funnel_id", o.funnel.ID), zap.Error(err))
		h.page(w, r, http.StatusInternalServerError, view.Error("Please try again later."))
		return
	}

	h.page(w, r, http.StatusOK, view.Wizard(view.WizardPage{
		AgencyName: o.tenant.Name,
		Funnel:     o.funnel,
		Wizard:     wz,
		Agreement:  h.agreement(o, wz),
		Action:     o.path,
	}))
}

// agreement renders the funnel's agreement for what the visitor entered so far.
func (h *Handler) agreement(o onboarding, wz *wizard.Wizard) string {
	if o.funnel.AgreementTemplate == "" {
		return ""
	}
	d := intake.Derive(wz.Responses)
	return h.Engine.Substitute(o.funnel.AgreementTemplate, placeholder.TemplateContext{
		Recipient: &placeholder.Recipient{Name: d.Name, Company: d.Company, Email: d.Email},
		Document:  &placeholder.Document{CreatedAt: time.Now()},
		Brand:     &placeholder.Brand{Name: o.tenant.Name},
	})
}

// AdvanceWizard applies the posted _action and redirects back to the page.
func (h *Handler) AdvanceWizard(w http.ResponseWriter, r *http.Request) {
	o, ok := h.resolve(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.page(w, r, http.StatusBadRequest, view.Error("The form could not be read."))
		return
	}
	sid, existing := session(w, r)
	if !existing {
		http.Redirect(w, r, o.path, http.StatusSeeOther)
		return
	}
	key := o.key(sid)

	var fn func(wz *wizard.Wizard) error
	switch action := r.PostForm.Get("_action"); action {
	case "start":
		fn = (*wizard.Wizard).Start
	case "back":
		fn = (*wizard.Wizard).Back
	case "collect":
		fn = func(wz *wizard.Wizard) error {
			err := wz.Collect(o.funnel.Fields, r.PostForm)
			var fieldErrs apperror.FieldErrors
			if errors.As(err, &fieldErrs) {
				return nil
			}
			return err
		}
	case "submit":
		h.submit(w, r, o, key)
		return
	default:
		h.page(w, r, http.StatusBadRequest, view.Error("Unknown action."))
		return
	}

	if _, err := h.Wizards.Update(r.Context(), key, fn); err != nil && !stale(err) {
		h.log.Error("failed to update wizard", zap.String("funnel_id", o.funnel.ID), zap.Error(err))
		h.page(w, r, http.StatusInternalServerError, view.Error("Please try again later."))
		return
	}
	http.Redirect(w, r, o.path, http.StatusSeeOther)
}

// stale reports errors caused by a form posted from an outdated page. The
// redirect shows the visitor the current step.
func stale(err error) bool {
	return errors.Is(err, wizard.ErrBusy) ||
		errors.Is(err, wizard.ErrFinished) ||
		errors.Is(err, wizard.ErrInvalidTransition)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, o onboarding, key wizard.Key) {
	agreed := r.PostForm.Get("agree") == "on"

	var responses map[string]any
	_, err := h.Wizards.Update(r.Context(), key, func(wz *wizard.Wizard) error {
		if wz.Step == wizard.StepAgreement {
			if err := wz.SetAgreement(agreed); err != nil {
				return err
			}
		}
		resp, err := wz.BeginSubmit(o.funnel.AgreementTemplate)
		if errors.Is(err, wizard.ErrAgreementRequired) {
			return nil
		}
		responses = resp
		return err
	})
	switch {
	case errors.Is(err, wizard.ErrFinished):
		http.Redirect(w, r, o.path+"/success", http.StatusSeeOther)
		return
	case err != nil && !stale(err):
		h.log.Error("failed to lock wizard", zap.String("funnel_id", o.funnel.ID), zap.Error(err))
		h.page(w, r, http.StatusInternalServerError, view.Error("Please try again later."))
		return
	case err != nil || responses == nil:
		http.Redirect(w, r, o.path, http.StatusSeeOther)
		return
	}

	// The wizard is locked now; finish even if the visitor goes away.
	ctx := context.WithoutCancel(r.Context())
	res, err := h.Intake.Submit(ctx, o.tenant.Slug, o.funnel.Slug, responses)
	if err != nil {
		h.log.Error("onboarding submission failed",
			zap.String("tenant_id", o.tenant.ID),
			zap.String("funnel_id", o.funnel.ID),
			zap.Error(err))
		if _, uerr := h.Wizards.Update(ctx, key, func(wz *wizard.Wizard) error {
			return wz.FailSubmit(submitFailed)
		}); uerr != nil {
			h.log.Error("failed to unlock wizard", zap.String("funnel_id", o.funnel.ID), zap.Error(uerr))
		}
		http.Redirect(w, r, o.path, http.StatusSeeOther)
		return
	}

	if _, err := h.Wizards.Update(ctx, key, (*wizard.Wizard).CompleteSubmit); err != nil {
		h.log.Warn("failed to mark wizard submitted",
			zap.String("submission_id", res.SubmissionID),
			zap.Error(err))
	}
	http.Redirect(w, r, res.Redirect, http.StatusSeeOther)
}

// ShowSuccess renders the confirmation page.
func (h *Handler) ShowSuccess(w http.ResponseWriter, r *http.Request) {
	o, ok := h.resolve(w, r)
	if !ok {
		return
	}
	h.page(w, r, http.StatusOK, view.Success(o.tenant.Name, h.PortalURL))
}
