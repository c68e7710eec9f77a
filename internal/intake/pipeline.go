// Package intake turns a completed wizard into CRM records: client,
// submission, optional project and a best-effort welcome email.
package intake

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/model"
	"github.com/gentaArnezzi/onvlo/internal/notify"
	"github.com/gentaArnezzi/onvlo/internal/placeholder"
	"github.com/gentaArnezzi/onvlo/internal/repository"
)

const (
	StepTenant     = "resolve_tenant"
	StepFunnel     = "resolve_funnel"
	StepClient     = "create_client"
	StepSubmission = "create_submission"
	StepProject    = "create_project"
	StepNotify     = "notify_client"
)

type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

type StepOutcome struct {
	Step   string     `json:"step"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// Result reports what a submission produced. On a fatal error it still lists
// the steps that ran.
type Result struct {
	Redirect     string        `json:"redirect"`
	ClientID     string        `json:"client_id"`
	SubmissionID string        `json:"submission_id"`
	ProjectID    string        `json:"project_id,omitempty"`
	Steps        []StepOutcome `json:"steps"`
}

func (r *Result) record(step string, status StepStatus, err error) {
	o := StepOutcome{Step: step, Status: status}
	if err != nil {
		o.Error = err.Error()
	}
	r.Steps = append(r.Steps, o)
}

// Notifier sends the welcome email.
type Notifier interface {
	Welcome(ctx context.Context, w notify.Welcome) error
}

type Pipeline struct {
	tenants     repository.TenantRepository
	funnels     repository.FunnelRepository
	clients     repository.ClientRepository
	submissions repository.SubmissionRepository
	projects    repository.ProjectRepository
	notifier    Notifier
	tracer      trace.Tracer
	log         *zap.Logger
}

// New returns a Pipeline. notifier may be nil, in which case the
// notification step is skipped.
func New(store repository.Store, notifier Notifier, log *zap.Logger) *Pipeline {
	return &Pipeline{
		tenants:     store.Tenants,
		funnels:     store.Funnels,
		clients:     store.Clients,
		submissions: store.Submissions,
		projects:    store.Projects,
		notifier:    notifier,
		tracer:      otel.Tracer("github.com/gentaArnezzi/onvlo/internal/intake"),
		log:         log,
	}
}

// Submit runs the intake steps in order. Tenant and funnel are resolved from
// the public slugs, never from a client-supplied id. A failure after the
// client was created leaves that client in place.
func (p *Pipeline) Submit(ctx context.Context, tenantSlug, funnelSlug string, responses map[string]any) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "intake.Submit", trace.WithAttributes(
		attribute.String("tenant.slug", tenantSlug),
		attribute.String("funnel.slug", funnelSlug),
	))
	defer span.End()

	res := &Result{}
	var (
		tenant *model.Tenant
		funnel *model.Funnel
	)

	err := p.step(ctx, res, StepTenant, func(ctx context.Context) error {
		t, err := p.tenants.GetTenantBySlug(ctx, tenantSlug)
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ErrTenantNotFound
		}
		tenant = t
		return err
	})
	if err != nil {
		return res, p.fail(span, err)
	}

	err = p.step(ctx, res, StepFunnel, func(ctx context.Context) error {
		f, err := p.funnels.ResolveActive(ctx, tenant.ID, funnelSlug)
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ErrFunnelNotFound
		}
		funnel = f
		return err
	})
	if err != nil {
		return res, p.fail(span, err)
	}

	derived := Derive(responses)

	err = p.step(ctx, res, StepClient, func(ctx context.Context) error {
		id, err := p.clients.CreateClient(ctx, &model.Client{
			TenantID: tenant.ID,
			Name:     derived.Name,
			Email:    derived.Email,
			Phone:    derived.Phone,
			Company:  derived.Company,
			Status:   model.ClientStatusActive,
		})
		if err != nil {
			return apperror.Persistence(StepClient, err)
		}
		res.ClientID = id
		return nil
	})
	if err != nil {
		return res, p.fail(span, err)
	}

	err = p.step(ctx, res, StepSubmission, func(ctx context.Context) error {
		id, err := p.submissions.CreateSubmission(ctx, &model.Submission{
			FunnelID:  funnel.ID,
			ClientID:  res.ClientID,
			Responses: responses,
			Status:    model.SubmissionCompleted,
		})
		if err != nil {
			return apperror.Persistence(StepSubmission, err)
		}
		res.SubmissionID = id
		return nil
	})
	if err != nil {
		p.logOrphan(res, funnel, err)
		return res, p.fail(span, err)
	}

	if funnel.AutoProvision.Enabled && funnel.AutoProvision.ProjectTitleTemplate != "" {
		err = p.step(ctx, res, StepProject, func(ctx context.Context) error {
			title := placeholder.ProjectTitle(funnel.AutoProvision.ProjectTitleTemplate, placeholder.ProjectTitleData{
				ClientName: derived.Name,
				Company:    derived.Company,
			})
			id, err := p.projects.CreateProject(ctx, &model.Project{
				TenantID:    tenant.ID,
				ClientID:    res.ClientID,
				Title:       title,
				Description: "Project created from onboarding funnel: " + funnel.Name,
				Status:      model.ProjectStatusPlanned,
			})
			if err != nil {
				return apperror.Persistence(StepProject, err)
			}
			res.ProjectID = id
			return nil
		})
		if err != nil {
			p.logOrphan(res, funnel, err)
			return res, p.fail(span, err)
		}
	} else {
		res.record(StepProject, StepSkipped, nil)
	}

	if derived.Email != "" && p.notifier != nil {
		p.notify(ctx, res, notify.Welcome{
			AgencyName:  tenant.Name,
			ClientName:  derived.Name,
			ClientEmail: derived.Email,
		})
	} else {
		res.record(StepNotify, StepSkipped, nil)
	}

	res.Redirect = fmt.Sprintf("/onboard/%s/%s/success", tenantSlug, funnelSlug)
	p.log.Info("onboarding submission completed",
		zap.String("tenant_id", tenant.ID),
		zap.String("funnel_id", funnel.ID),
		zap.String("client_id", res.ClientID),
		zap.String("submission_id", res.SubmissionID),
		zap.String("project_id", res.ProjectID))
	return res, nil
}

func (p *Pipeline) step(ctx context.Context, res *Result, name string, fn func(ctx context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "intake."+name)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name+" failed")
		res.record(name, StepFailed, err)
		return err
	}
	res.record(name, StepOK, nil)
	return nil
}

// notify never fails the submission. Errors and panics of the notifier are
// logged and recorded on the result.
func (p *Pipeline) notify(ctx context.Context, res *Result, w notify.Welcome) {
	ctx, span := p.tracer.Start(ctx, "intake."+StepNotify)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("notifier panic: %v", r)
			span.RecordError(err)
			res.record(StepNotify, StepFailed, err)
			p.log.Error("welcome notification failed",
				zap.String("client_id", res.ClientID),
				zap.Any("panic", r))
		}
	}()

	if err := p.notifier.Welcome(ctx, w); err != nil {
		span.RecordError(err)
		res.record(StepNotify, StepFailed, err)
		p.log.Error("welcome notification failed",
			zap.String("client_id", res.ClientID),
			zap.Error(err))
		return
	}
	res.record(StepNotify, StepOK, nil)
}

func (p *Pipeline) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "submission failed")
	return err
}

func (p *Pipeline) logOrphan(res *Result, funnel *model.Funnel, err error) {
	p.log.Warn("submission aborted after client was created",
		zap.String("funnel_id", funnel.ID),
		zap.String("client_id", res.ClientID),
		zap.String("submission_id", res.SubmissionID),
		zap.Error(err))
}
