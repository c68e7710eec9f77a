package model

import "time"

// AutoProvision controls project creation after a completed submission.
type AutoProvision struct {
	Enabled              bool   `json:"enabled" yaml:"enabled"`
	ProjectTitleTemplate string `json:"project_title_template,omitempty" yaml:"project_title_template,omitempty"`
}

// Funnel is a tenant-authored onboarding configuration.
type Funnel struct {
	ID                string            `json:"id"`
	TenantID          string            `json:"tenant_id"`
	Name              string            `json:"name"`
	Slug              string            `json:"slug"`
	IsActive          bool              `json:"is_active"`
	Fields            []FieldDescriptor `json:"fields"`
	AgreementTemplate string            `json:"agreement_template,omitempty"`
	AutoProvision     AutoProvision     `json:"auto_provision"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// FunnelConfig is the JSON document persisted next to the funnel's basic columns.
type FunnelConfig struct {
	Fields            []FieldDescriptor `json:"formFields,omitempty"`
	AgreementTemplate string            `json:"agreementTemplate,omitempty"`
	AutoProvision     AutoProvision     `json:"autoProvision"`
}

// Config extracts the persisted config document from f.
func (f *Funnel) Config() FunnelConfig {
	return FunnelConfig{
		Fields:            f.Fields,
		AgreementTemplate: f.AgreementTemplate,
		AutoProvision:     f.AutoProvision,
	}
}

// SetConfig copies a persisted config document onto f.
func (f *Funnel) SetConfig(c FunnelConfig) {
	f.Fields = c.Fields
	f.AgreementTemplate = c.AgreementTemplate
	f.AutoProvision = c.AutoProvision
}

// FunnelInput is the create payload of the authoring API.
type FunnelInput struct {
	Name              string            `json:"name" yaml:"name" validate:"required"`
	Slug              string            `json:"slug" yaml:"slug" validate:"required,slug"`
	IsActive          *bool             `json:"is_active,omitempty" yaml:"is_active,omitempty"`
	Fields            []FieldDescriptor `json:"fields,omitempty" yaml:"fields,omitempty" validate:"dive"`
	AgreementTemplate string            `json:"agreement_template,omitempty" yaml:"agreement_template,omitempty"`
	AutoProvision     AutoProvision     `json:"auto_provision" yaml:"auto_provision"`
}

// Funnel builds a new Funnel from the input. Funnels are active unless stated otherwise.
func (in FunnelInput) Funnel(tenantID string) *Funnel {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return &Funnel{
		TenantID:          tenantID,
		Name:              in.Name,
		Slug:              in.Slug,
		IsActive:          active,
		Fields:            in.Fields,
		AgreementTemplate: in.AgreementTemplate,
		AutoProvision:     in.AutoProvision,
	}
}

// FunnelPatch is a partial update. The authoring UI saves one section at a
// time, so a nil pointer means "leave as is".
type FunnelPatch struct {
	Name              *string             `json:"name,omitempty"`
	Slug              *string             `json:"slug,omitempty"`
	IsActive          *bool               `json:"is_active,omitempty"`
	Fields            *[]FieldDescriptor  `json:"fields,omitempty"`
	AgreementTemplate *string             `json:"agreement_template,omitempty"`
	AutoProvision     *AutoProvisionPatch `json:"auto_provision,omitempty"`
}

// AutoProvisionPatch changes only the auto-provision keys that are set.
type AutoProvisionPatch struct {
	Enabled              *bool   `json:"enabled,omitempty"`
	ProjectTitleTemplate *string `json:"project_title_template,omitempty"`
}

func (p AutoProvisionPatch) apply(a AutoProvision) AutoProvision {
	if p.Enabled != nil {
		a.Enabled = *p.Enabled
	}
	if p.ProjectTitleTemplate != nil {
		a.ProjectTitleTemplate = *p.ProjectTitleTemplate
	}
	return a
}

// Empty reports whether the patch carries no changes.
func (p FunnelPatch) Empty() bool {
	return p.Name == nil && p.Slug == nil && p.IsActive == nil &&
		p.Fields == nil && p.AgreementTemplate == nil && p.AutoProvision == nil
}

// Apply returns a copy of f with the supplied keys replaced.
func (p FunnelPatch) Apply(f Funnel) Funnel {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Slug != nil {
		f.Slug = *p.Slug
	}
	if p.IsActive != nil {
		f.IsActive = *p.IsActive
	}
	if p.Fields != nil {
		f.Fields = append([]FieldDescriptor(nil), (*p.Fields)...)
	}
	if p.AgreementTemplate != nil {
		f.AgreementTemplate = *p.AgreementTemplate
	}
	if p.AutoProvision != nil {
		f.AutoProvision = p.AutoProvision.apply(f.AutoProvision)
	}
	return f
}

// Patch converts a full definition into a patch replacing every section.
func (in FunnelInput) Patch() FunnelPatch {
	fields := in.Fields
	return FunnelPatch{
		Name:              &in.Name,
		Slug:              &in.Slug,
		IsActive:          in.IsActive,
		Fields:            &fields,
		AgreementTemplate: &in.AgreementTemplate,
		AutoProvision: &AutoProvisionPatch{
			Enabled:              &in.AutoProvision.Enabled,
			ProjectTitleTemplate: &in.AutoProvision.ProjectTitleTemplate,
		},
	}
}
