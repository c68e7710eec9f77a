package model

import "time"

// Tenant is an agency account. Slug namespaces its public URLs.
type Tenant struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionCompleted SubmissionStatus = "completed"
)

// Submission stores one visitor's raw responses verbatim.
type Submission struct {
	ID        string           `json:"id"`
	FunnelID  string           `json:"funnel_id"`
	ClientID  string           `json:"client_id,omitempty"`
	Responses map[string]any   `json:"responses"`
	Status    SubmissionStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

const ClientStatusActive = "active"

type Client struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Lead is a prospect that may receive a proposal before becoming a client.
type Lead struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Company  string `json:"company,omitempty"`
}

const ProjectStatusPlanned = "Planned"

type Project struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	ClientID    string    `json:"client_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	OwnerID     string    `json:"owner_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProposalStatus string

const (
	ProposalDraft    ProposalStatus = "Draft"
	ProposalSent     ProposalStatus = "Sent"
	ProposalAccepted ProposalStatus = "Accepted"
	ProposalRejected ProposalStatus = "Rejected"
)

type Proposal struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenant_id"`
	ClientID  string         `json:"client_id,omitempty"`
	LeadID    string         `json:"lead_id,omitempty"`
	Status    ProposalStatus `json:"status"`
	Content   string         `json:"content"`
	SignedAt  *time.Time     `json:"signed_at,omitempty"`
	SignedBy  string         `json:"signed_by,omitempty"`
	SignedIP  string         `json:"signed_ip,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Signature is the e-signature evidence captured when a proposal is accepted.
type Signature struct {
	SignedBy string
	SignedIP string
	SignedAt time.Time
}
