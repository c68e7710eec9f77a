// Package funnel is the boundary for tenant-authored funnel configurations:
// public resolution by slug and the operator authoring operations.
package funnel

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gentaArnezzi/onvlo/internal/apperror"
	"github.com/gentaArnezzi/onvlo/internal/model"
	"github.com/gentaArnezzi/onvlo/internal/placeholder"
	"github.com/gentaArnezzi/onvlo/internal/repository"
	"github.com/gentaArnezzi/onvlo/internal/schema"
)

// Saved is a stored funnel plus the template identifiers that will be left
// untouched at render time.
type Saved struct {
	*model.Funnel
	UnknownPlaceholders []string `json:"unknown_placeholders,omitempty"`
}

type Service struct {
	tenants  repository.TenantRepository
	funnels  repository.FunnelRepository
	engine   *placeholder.Engine
	validate *validator.Validate
	log      *zap.Logger
}

func New(store repository.Store, engine *placeholder.Engine, validate *validator.Validate, log *zap.Logger) *Service {
	return &Service{
		tenants:  store.Tenants,
		funnels:  store.Funnels,
		engine:   engine,
		validate: validate,
		log:      log,
	}
}

// Resolve returns the tenant and its active funnel. A missing tenant, a
// missing funnel and an inactive funnel are indistinguishable to the caller.
func (s *Service) Resolve(ctx context.Context, tenantSlug, funnelSlug string) (*model.Tenant, *model.Funnel, error) {
	tenant, err := s.tenants.GetTenantBySlug(ctx, tenantSlug)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil, apperror.ErrFunnelNotFound
		}
		return nil, nil, fmt.Errorf("resolve tenant: %w", err)
	}
	f, err := s.funnels.ResolveActive(ctx, tenant.ID, funnelSlug)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil, apperror.ErrFunnelNotFound
		}
		return nil, nil, fmt.Errorf("resolve funnel: %w", err)
	}
	return tenant, f, nil
}

func (s *Service) Get(ctx context.Context, tenantID, funnelID string) (*Saved, error) {
	f, err := s.funnels.GetFunnel(ctx, tenantID, funnelID)
	if err != nil {
		return nil, err
	}
	return s.saved(f), nil
}

func (s *Service) List(ctx context.Context, tenantID string) ([]*model.Funnel, error) {
	return s.funnels.ListFunnels(ctx, tenantID)
}

func (s *Service) Create(ctx context.Context, tenantID string, in model.FunnelInput) (*Saved, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	taken, err := s.funnels.SlugExists(ctx, tenantID, in.Slug, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.ErrSlugTaken
	}

	f := in.Funnel(tenantID)
	id, err := s.funnels.CreateFunnel(ctx, f)
	if err != nil {
		return nil, err
	}
	s.log.Info("funnel created", zap.String("tenant_id", tenantID), zap.String("funnel_id", id), zap.String("slug", f.Slug))
	return s.Get(ctx, tenantID, id)
}

// Update merges patch into the stored funnel. Sections absent from the patch
// keep their stored values.
func (s *Service) Update(ctx context.Context, tenantID, funnelID string, patch model.FunnelPatch) (*Saved, error) {
	current, err := s.funnels.GetFunnel(ctx, tenantID, funnelID)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.saved(current), nil
	}

	merged := patch.Apply(*current)
	if err := s.check(inputOf(merged)); err != nil {
		return nil, err
	}
	if patch.Slug != nil && *patch.Slug != current.Slug {
		taken, err := s.funnels.SlugExists(ctx, tenantID, merged.Slug, funnelID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperror.ErrSlugTaken
		}
	}

	if err := s.funnels.UpdateFunnel(ctx, &merged); err != nil {
		return nil, err
	}
	s.log.Info("funnel updated", zap.String("tenant_id", tenantID), zap.String("funnel_id", funnelID))
	return s.Get(ctx, tenantID, funnelID)
}

func (s *Service) Delete(ctx context.Context, tenantID, funnelID string) error {
	if err := s.funnels.DeleteFunnel(ctx, tenantID, funnelID); err != nil {
		return err
	}
	s.log.Info("funnel deleted", zap.String("tenant_id", tenantID), zap.String("funnel_id", funnelID))
	return nil
}

func (s *Service) check(in model.FunnelInput) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidInput, err)
	}
	if err := schema.CheckSchema(in.Fields); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidInput, err)
	}
	return nil
}

func (s *Service) saved(f *model.Funnel) *Saved {
	unknown := s.engine.Unknown(f.AgreementTemplate)
	unknown = append(unknown, placeholder.Unknown(f.AutoProvision.ProjectTitleTemplate, placeholder.ProjectTitleTokens)...)
	return &Saved{Funnel: f, UnknownPlaceholders: unknown}
}

func inputOf(f model.Funnel) model.FunnelInput {
	active := f.IsActive
	return model.FunnelInput{
		Name:              f.Name,
		Slug:              f.Slug,
		IsActive:          &active,
		Fields:            f.Fields,
		AgreementTemplate: f.AgreementTemplate,
		AutoProvision:     f.AutoProvision,
	}
}
