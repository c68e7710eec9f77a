package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/model"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var funnelRowColumns = []string{"id", "tenant_id", "name", "slug", "is_active", "config", "created_at", "updated_at"}

func TestGetTenantBySlug_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresTenantsRepository(db)

	mock.ExpectQuery(`FROM tenants WHERE slug = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	tenant, err := repo.GetTenantBySlug(context.Background(), "ghost")

	assert.Nil(t, tenant)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTenantBySlug_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresTenantsRepository(db)
	tenantID := uuid.NewString()

	mock.ExpectQuery(`FROM tenants WHERE slug = \$1`).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "slug", "name", "status"}).
			AddRow(tenantID, "acme", "Acme Agency", "active"))

	tenant, err := repo.GetTenantBySlug(context.Background(), "acme")

	require.NoError(t, err)
	assert.Equal(t, tenantID, tenant.ID)
	assert.Equal(t, "Acme Agency", tenant.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveActive_DecodesConfig(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresFunnelsRepository(db)
	tenantID := uuid.NewString()
	funnelID := uuid.NewString()
	now := time.Now()

	config := `{"formFields":[{"id":"name","type":"text","label":"Name","required":true}],` +
		`"agreementTemplate":"Hi {{client_name}}","autoProvision":{"enabled":true,"project_title_template":"{{company}} site"}}`
	mock.ExpectQuery(`is_active = TRUE`).
		WithArgs(tenantID, "intake").
		WillReturnRows(sqlmock.NewRows(funnelRowColumns).
			AddRow(funnelID, tenantID, "Intake", "intake", true, config, now, now))

	f, err := repo.ResolveActive(context.Background(), tenantID, "intake")

	require.NoError(t, err)
	assert.Equal(t, funnelID, f.ID)
	require.Len(t, f.Fields, 1)
	assert.Equal(t, model.KindText, f.Fields[0].Kind)
	assert.True(t, f.Fields[0].Required)
	assert.Equal(t, "Hi {{client_name}}", f.AgreementTemplate)
	assert.True(t, f.AutoProvision.Enabled)
	assert.Equal(t, "{{company}} site", f.AutoProvision.ProjectTitleTemplate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveActive_InactiveIsNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresFunnelsRepository(db)
	tenantID := uuid.NewString()

	mock.ExpectQuery(`is_active = TRUE`).
		WithArgs(tenantID, "paused").
		WillReturnRows(sqlmock.NewRows(funnelRowColumns))

	f, err := repo.ResolveActive(context.Background(), tenantID, "paused")

	assert.Nil(t, f)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFunnel_ReturnsID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresFunnelsRepository(db)
	tenantID := uuid.NewString()
	funnelID := uuid.NewString()

	mock.ExpectQuery(`INSERT INTO onboarding_funnels`).
		WithArgs(tenantID, "Intake", "intake", true, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(funnelID))

	id, err := repo.CreateFunnel(context.Background(), &model.Funnel{
		TenantID: tenantID,
		Name:     "Intake",
		Slug:     "intake",
		IsActive: true,
	})

	require.NoError(t, err)
	assert.Equal(t, funnelID, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFunnel_UniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresFunnelsRepository(db)

	mock.ExpectQuery(`INSERT INTO onboarding_funnels`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	_, err := repo.CreateFunnel(context.Background(), &model.Funnel{TenantID: uuid.NewString(), Slug: "intake"})

	assert.ErrorIs(t, err, apperror.ErrSlugTaken)
}

func TestUpdateFunnel_MissingRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresFunnelsRepository(db)
	f := &model.Funnel{ID: uuid.NewString(), TenantID: uuid.NewString(), Name: "Intake", Slug: "intake"}

	mock.ExpectExec(`UPDATE onboarding_funnels`).
		WithArgs(f.ID, f.TenantID, f.Name, f.Slug, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateFunnel(context.Background(), f)

	assert.ErrorIs(t, err, apperror.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlugExists(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresFunnelsRepository(db)
	tenantID := uuid.NewString()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(tenantID, "intake", "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.SlugExists(context.Background(), tenantID, "intake", "")

	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateClient_DefaultsStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresClientsRepository(db)
	tenantID := uuid.NewString()
	clientID := uuid.NewString()

	mock.ExpectQuery(`INSERT INTO clients`).
		WithArgs(tenantID, "Jane Doe", "jane@example.com", "", "Acme", model.ClientStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(clientID))

	id, err := repo.CreateClient(context.Background(), &model.Client{
		TenantID: tenantID,
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Company:  "Acme",
	})

	require.NoError(t, err)
	assert.Equal(t, clientID, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLead_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresClientsRepository(db)

	mock.ExpectQuery(`FROM leads`).WillReturnError(sql.ErrNoRows)

	lead, err := repo.GetLead(context.Background(), uuid.NewString(), uuid.NewString())

	assert.Nil(t, lead)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateProject_WithoutOwner(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresProjectsRepository(db)
	tenantID, clientID, projectID := uuid.NewString(), uuid.NewString(), uuid.NewString()

	mock.ExpectQuery(`INSERT INTO projects`).
		WithArgs(tenantID, clientID, "Acme site", "Project created from onboarding funnel: Intake", model.ProjectStatusPlanned, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(projectID))

	id, err := repo.CreateProject(context.Background(), &model.Project{
		TenantID:    tenantID,
		ClientID:    clientID,
		Title:       "Acme site",
		Description: "Project created from onboarding funnel: Intake",
	})

	require.NoError(t, err)
	assert.Equal(t, projectID, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSubmission_StoresResponsesAsJSON(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresSubmissionsRepository(db)
	funnelID, clientID, submissionID := uuid.NewString(), uuid.NewString(), uuid.NewString()

	mock.ExpectQuery(`INSERT INTO onboarding_submissions`).
		WithArgs(funnelID, clientID, `{"agree":true,"name":"Jane"}`, "completed").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(submissionID))

	id, err := repo.CreateSubmission(context.Background(), &model.Submission{
		FunnelID:  funnelID,
		ClientID:  clientID,
		Responses: map[string]any{"name": "Jane", "agree": true},
		Status:    model.SubmissionCompleted,
	})

	require.NoError(t, err)
	assert.Equal(t, submissionID, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSubmission_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresSubmissionsRepository(db)

	mock.ExpectQuery(`INSERT INTO onboarding_submissions`).WillReturnError(sql.ErrConnDone)

	_, err := repo.CreateSubmission(context.Background(), &model.Submission{FunnelID: uuid.NewString()})

	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Contains(t, err.Error(), "failed to create submission")
}

func TestListSubmissions_DecodesResponses(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresSubmissionsRepository(db)
	funnelID := uuid.NewString()
	now := time.Now()

	mock.ExpectQuery(`FROM onboarding_submissions`).
		WithArgs(funnelID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "funnel_id", "client_id", "responses", "status", "created_at"}).
			AddRow("s1", funnelID, "c1", `{"name":"Jane","budget":"5k"}`, "completed", now).
			AddRow("s2", funnelID, "", `{}`, "pending", now))

	subs, err := repo.ListSubmissions(context.Background(), funnelID)

	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "Jane", subs[0].Responses["name"])
	assert.Equal(t, model.SubmissionCompleted, subs[0].Status)
	assert.Empty(t, subs[1].ClientID)
	require.NoError(t, mock.ExpectationsWereMet())
}

var proposalRowColumns = []string{
	"id", "tenant_id", "client_id", "lead_id", "status", "content",
	"signed_at", "signed_by", "signed_ip", "created_at", "updated_at",
}

func TestSignProposal_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresProposalsRepository(db)
	proposalID := uuid.NewString()
	signedAt := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	sig := model.Signature{SignedBy: "Jane Doe", SignedIP: "203.0.113.7", SignedAt: signedAt}

	mock.ExpectQuery(`UPDATE proposals`).
		WithArgs(proposalID, "Accepted", signedAt, "Jane Doe", "203.0.113.7", "Sent").
		WillReturnRows(sqlmock.NewRows(proposalRowColumns).
			AddRow(proposalID, "t1", "c1", "", "Accepted", "Hello", signedAt, "Jane Doe", "203.0.113.7", signedAt, signedAt))

	p, err := repo.SignProposal(context.Background(), proposalID, sig)

	require.NoError(t, err)
	assert.Equal(t, model.ProposalAccepted, p.Status)
	require.NotNil(t, p.SignedAt)
	assert.True(t, signedAt.Equal(*p.SignedAt))
	assert.Equal(t, "203.0.113.7", p.SignedIP)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignProposal_NotSent(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresProposalsRepository(db)

	mock.ExpectQuery(`UPDATE proposals`).WillReturnRows(sqlmock.NewRows(proposalRowColumns))

	p, err := repo.SignProposal(context.Background(), uuid.NewString(), model.Signature{SignedAt: time.Now()})

	assert.Nil(t, p)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestGetProposal_UnsignedHasNilSignedAt(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresProposalsRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM proposals WHERE id = \$1`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(proposalRowColumns).
			AddRow("p1", "t1", "", "l1", "Sent", "Dear {{client_name}}", nil, "", "", now, now))

	p, err := repo.GetProposal(context.Background(), "p1")

	require.NoError(t, err)
	assert.Nil(t, p.SignedAt)
	assert.Equal(t, "l1", p.LeadID)
	assert.Equal(t, model.ProposalSent, p.Status)
}
