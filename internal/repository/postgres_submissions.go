package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/gentaArnezzi/onvlo/internal/model"
)

// PostgresSubmissionsRepository stores raw onboarding responses as JSONB.
type PostgresSubmissionsRepository struct {
	db *sql.DB
}

func NewPostgresSubmissionsRepository(db *sql.DB) *PostgresSubmissionsRepository {
	return &PostgresSubmissionsRepository{db: db}
}

var _ SubmissionRepository = (*PostgresSubmissionsRepository)(nil)

func (r *PostgresSubmissionsRepository) CreateSubmission(ctx context.Context, s *model.Submission) (string, error) {
	if s == nil {
		return "", fmt.Errorf("submission is required")
	}
	if s.FunnelID == "" {
		return "", fmt.Errorf("funnel_id is required")
	}
	responses, err := json.Marshal(s.Responses)
	if err != nil {
		return "", fmt.Errorf("failed to encode responses: %w", err)
	}
	status := s.Status
	if status == "" {
		status = model.SubmissionPending
	}

	var id string
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO onboarding_submissions (funnel_id, client_id, responses, status)
		 VALUES ($1::uuid, $2::uuid, $3::jsonb, $4)
		 RETURNING id::text`,
		s.FunnelID, nullString(s.ClientID), string(responses), string(status),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create submission: %w", err)
	}
	return id, nil
}

func (r *PostgresSubmissionsRepository) ListSubmissions(ctx context.Context, funnelID string) ([]*model.Submission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id::text, funnel_id::text, COALESCE(client_id::text, ''),
			COALESCE(responses, '{}'::jsonb), status, created_at
		 FROM onboarding_submissions
		 WHERE funnel_id = $1::uuid
		 ORDER BY created_at`,
		funnelID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	submissions := []*model.Submission{}
	for rows.Next() {
		var (
			s      model.Submission
			raw    []byte
			status string
		)
		if err := rows.Scan(&s.ID, &s.FunnelID, &s.ClientID, &raw, &status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		s.Status = model.SubmissionStatus(status)
		if err := json.Unmarshal(raw, &s.Responses); err != nil {
			return nil, fmt.Errorf("failed to decode responses: %w", err)
		}
		submissions = append(submissions, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}
	return submissions, nil
}
