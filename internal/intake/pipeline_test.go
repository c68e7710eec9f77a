package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/model"
	"github.com/gentaArnezzi/onvlo/internal/notify"
	"github.com/gentaArnezzi/onvlo/internal/repository"
)

type fakeNotifier struct {
	sent  []notify.Welcome
	err   error
	panic bool
}

func (f *fakeNotifier) Welcome(_ context.Context, w notify.Welcome) error {
	if f.panic {
		panic("mailer exploded")
	}
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, w)
	return nil
}

type failingSubmissions struct {
	repository.SubmissionRepository
}

func (failingSubmissions) CreateSubmission(context.Context, *model.Submission) (string, error) {
	return "", errors.New("connection reset")
}

type failingProjects struct {
	repository.ProjectRepository
}

func (failingProjects) CreateProject(context.Context, *model.Project) (string, error) {
	return "", errors.New("connection reset")
}

type fixture struct {
	mem      *repository.Memory
	store    repository.Store
	tenantID string
	funnel   *model.Funnel
	notifier *fakeNotifier
	log      *zap.Logger
	logs     *observer.ObservedLogs
}

func newFixture(t *testing.T, auto model.AutoProvision) *fixture {
	t.Helper()
	mem := repository.NewMemory()
	tenantID := mem.AddTenant(model.Tenant{Slug: "acme", Name: "Acme Agency"})
	id, err := mem.CreateFunnel(context.Background(), &model.Funnel{
		TenantID:      tenantID,
		Name:          "Website intake",
		Slug:          "web",
		IsActive:      true,
		AutoProvision: auto,
	})
	require.NoError(t, err)
	f, err := mem.GetFunnel(context.Background(), tenantID, id)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	return &fixture{
		mem:      mem,
		store:    mem.Store(),
		tenantID: tenantID,
		funnel:   f,
		notifier: &fakeNotifier{},
		log:      zap.New(core),
		logs:     logs,
	}
}

func (fx *fixture) pipeline() *Pipeline {
	return New(fx.store, fx.notifier, fx.log)
}

var responses = map[string]any{
	"name":    "Jane Doe",
	"email":   "jane@example.com",
	"company": "Acme Corp",
	"budget":  "5-10k",
}

func TestSubmit_HappyPath(t *testing.T) {
	fx := newFixture(t, model.AutoProvision{Enabled: true, ProjectTitleTemplate: "{{company}} website for {{client_name}}"})
	p := fx.pipeline()

	res, err := p.Submit(context.Background(), "acme", "web", responses)

	require.NoError(t, err)
	assert.Equal(t, "/onboard/acme/web/success", res.Redirect)

	clients := fx.mem.Clients()
	require.Len(t, clients, 1)
	assert.Equal(t, res.ClientID, clients[0].ID)
	assert.Equal(t, "Jane Doe", clients[0].Name)
	assert.Equal(t, "Acme Corp", clients[0].Company)
	assert.Equal(t, model.ClientStatusActive, clients[0].Status)

	subs, err := fx.store.Submissions.ListSubmissions(context.Background(), fx.funnel.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, res.SubmissionID, subs[0].ID)
	assert.Equal(t, res.ClientID, subs[0].ClientID)
	assert.Equal(t, model.SubmissionCompleted, subs[0].Status)
	assert.Equal(t, responses, subs[0].Responses)

	projects := fx.mem.Projects()
	require.Len(t, projects, 1)
	assert.Equal(t, "Acme Corp website for Jane Doe", projects[0].Title)
	assert.Equal(t, "Project created from onboarding funnel: Website intake", projects[0].Description)
	assert.Equal(t, model.ProjectStatusPlanned, projects[0].Status)
	assert.Empty(t, projects[0].OwnerID)
	assert.Equal(t, res.ClientID, projects[0].ClientID)

	require.Len(t, fx.notifier.sent, 1)
	assert.Equal(t, notify.Welcome{AgencyName: "Acme Agency", ClientName: "Jane Doe", ClientEmail: "jane@example.com"}, fx.notifier.sent[0])

	assert.Equal(t, []StepOutcome{
		{Step: StepTenant, Status: StepOK},
		{Step: StepFunnel, Status: StepOK},
		{Step: StepClient, Status: StepOK},
		{Step: StepSubmission, Status: StepOK},
		{Step: StepProject, Status: StepOK},
		{Step: StepNotify, Status: StepOK},
	}, res.Steps)
}

func TestSubmit_AutoProvisionToggle(t *testing.T) {
	tests := []struct {
		name string
		auto model.AutoProvision
		want int
	}{
		{name: "disabled", auto: model.AutoProvision{Enabled: false, ProjectTitleTemplate: "{{company}}"}, want: 0},
		{name: "enabled without template", auto: model.AutoProvision{Enabled: true}, want: 0},
		{name: "enabled with template", auto: model.AutoProvision{Enabled: true, ProjectTitleTemplate: "{{company}}"}, want: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t, tc.auto)

			res, err := fx.pipeline().Submit(context.Background(), "acme", "web", responses)

			require.NoError(t, err)
			assert.Len(t, fx.mem.Projects(), tc.want)
			if tc.want == 0 {
				assert.Empty(t, res.ProjectID)
			}
		})
	}
}

func TestSubmit_NotificationFailureIsIsolated(t *testing.T) {
	tests := []struct {
		name     string
		notifier *fakeNotifier
	}{
		{name: "error", notifier: &fakeNotifier{err: errors.New("mail API down")}},
		{name: "panic", notifier: &fakeNotifier{panic: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t, model.AutoProvision{Enabled: true, ProjectTitleTemplate: "{{company}}"})
			fx.notifier = tc.notifier

			res, err := fx.pipeline().Submit(context.Background(), "acme", "web", responses)

			require.NoError(t, err)
			assert.Equal(t, "/onboard/acme/web/success", res.Redirect)
			assert.NotEmpty(t, res.SubmissionID)
			assert.Len(t, fx.mem.Clients(), 1)
			subs, err := fx.store.Submissions.ListSubmissions(context.Background(), fx.funnel.ID)
			require.NoError(t, err)
			assert.Len(t, subs, 1)
			projects := fx.mem.Projects()
			require.Len(t, projects, 1)
			assert.Equal(t, res.ProjectID, projects[0].ID)
			last := res.Steps[len(res.Steps)-1]
			assert.Equal(t, StepNotify, last.Step)
			assert.Equal(t, StepFailed, last.Status)
			assert.Equal(t, 1, fx.logs.FilterMessage("welcome notification failed").Len())
		})
	}
}

func TestSubmit_NoEmailSkipsNotification(t *testing.T) {
	fx := newFixture(t, model.AutoProvision{})

	res, err := fx.pipeline().Submit(context.Background(), "acme", "web", map[string]any{"full_name": "Jane", "email": ""})

	require.NoError(t, err)
	assert.Empty(t, fx.notifier.sent)
	assert.Equal(t, StepOutcome{Step: StepNotify, Status: StepSkipped}, res.Steps[len(res.Steps)-1])
	assert.Equal(t, "Jane", fx.mem.Clients()[0].Name)
}

func TestSubmit_ResolutionErrors(t *testing.T) {
	fx := newFixture(t, model.AutoProvision{})
	inactive := *fx.funnel
	inactive.ID = ""
	inactive.Slug = "paused"
	inactive.IsActive = false
	_, err := fx.mem.CreateFunnel(context.Background(), &inactive)
	require.NoError(t, err)

	tests := []struct {
		name       string
		tenantSlug string
		funnelSlug string
		wantErr    error
		wantMsg    string
	}{
		{name: "unknown tenant", tenantSlug: "ghost", funnelSlug: "web", wantErr: apperror.ErrTenantNotFound, wantMsg: "organization not found"},
		{name: "unknown funnel", tenantSlug: "acme", funnelSlug: "nope", wantErr: apperror.ErrFunnelNotFound, wantMsg: "funnel not found or inactive"},
		{name: "inactive funnel", tenantSlug: "acme", funnelSlug: "paused", wantErr: apperror.ErrFunnelNotFound, wantMsg: "funnel not found or inactive"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.pipeline().Submit(context.Background(), tc.tenantSlug, tc.funnelSlug, responses)

			assert.ErrorIs(t, err, tc.wantErr)
			assert.EqualError(t, err, tc.wantMsg)
			assert.Empty(t, fx.mem.Clients())
		})
	}
}

func TestSubmit_PersistenceFailureLeavesOrphanClient(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *repository.Store)
		auto   model.AutoProvision
		failed string
	}{
		{
			name:   "submission write fails",
			mutate: func(s *repository.Store) { s.Submissions = failingSubmissions{s.Submissions} },
			failed: StepSubmission,
		},
		{
			name:   "project write fails",
			mutate: func(s *repository.Store) { s.Projects = failingProjects{s.Projects} },
			auto:   model.AutoProvision{Enabled: true, ProjectTitleTemplate: "{{company}}"},
			failed: StepProject,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t, tc.auto)
			tc.mutate(&fx.store)

			res, err := fx.pipeline().Submit(context.Background(), "acme", "web", responses)

			assert.ErrorIs(t, err, apperror.ErrPersistence)
			assert.Contains(t, err.Error(), "connection reset")
			assert.Empty(t, res.Redirect)
			assert.Len(t, fx.mem.Clients(), 1)
			assert.Empty(t, fx.notifier.sent)
			last := res.Steps[len(res.Steps)-1]
			assert.Equal(t, tc.failed, last.Step)
			assert.Equal(t, StepFailed, last.Status)
			assert.Equal(t, 1, fx.logs.FilterMessage("submission aborted after client was created").Len())
		})
	}
}

func TestSubmit_RecordsSpans(t *testing.T) {
	fx := newFixture(t, model.AutoProvision{})
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	p := fx.pipeline()
	p.tracer = tp.Tracer("test")

	_, err := p.Submit(context.Background(), "acme", "web", responses)
	require.NoError(t, err)

	var names []string
	for _, s := range sr.Ended() {
		names = append(names, s.Name())
	}
	assert.ElementsMatch(t, []string{
		"intake.resolve_tenant",
		"intake.resolve_funnel",
		"intake.create_client",
		"intake.create_submission",
		"intake.notify_client",
		"intake.Submit",
	}, names)
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name      string
		responses map[string]any
		want      DerivedClient
	}{
		{
			name:      "name wins over full_name",
			responses: map[string]any{"name": "Jane", "full_name": "Jane Doe"},
			want:      DerivedClient{Name: "Jane"},
		},
		{
			name:      "empty name falls through",
			responses: map[string]any{"name": "", "full_name": "Jane Doe"},
			want:      DerivedClient{Name: "Jane Doe"},
		},
		{
			name:      "non-string falls through",
			responses: map[string]any{"name": 42, "full_name": "Jane Doe", "email": true},
			want:      DerivedClient{Name: "Jane Doe"},
		},
		{
			name:      "missing name is empty",
			responses: map[string]any{"email": "j@x.io", "phone": "+1 555", "company": "Acme"},
			want:      DerivedClient{Email: "j@x.io", Phone: "+1 555", Company: "Acme"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Derive(tc.responses))
		})
	}
}
