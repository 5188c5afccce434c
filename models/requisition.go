package models

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type RequisitionStatus string

const (
	StatusPending    RequisitionStatus = "pending"
	StatusApproved   RequisitionStatus = "approved"
	StatusRejected   RequisitionStatus = "rejected"
	StatusInProgress RequisitionStatus = "in-progress"
	StatusCompleted  RequisitionStatus = "completed"
)

// Known reports whether s is one of the defined statuses.
func (s RequisitionStatus) Known() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ProjectRequisition is a request for a new tool. Admins move it between
// statuses freely; there is no enforced transition graph.
type ProjectRequisition struct {
	ID               int               `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	RequesterName    string            `json:"requesterName"`
	RequesterEmail   string            `json:"requesterEmail"`
	Priority         Priority          `json:"priority"`
	Category         string            `json:"category"`
	ExpectedDelivery *string           `json:"expectedDelivery"`
	Attachments      []string          `json:"attachments"`
	Logo             *string           `json:"logo"`
	Status           RequisitionStatus `json:"status"`
	DeployedLink     *string           `json:"deployedLink"`
	IsPrivate        bool              `json:"isPrivate"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

func (r ProjectRequisition) Clone() ProjectRequisition {
	r.Attachments = cloneStrings(r.Attachments)
	return r
}

type NewRequisition struct {
	Title            string            `json:"title" validate:"required"`
	Description      string            `json:"description" validate:"required"`
	RequesterName    string            `json:"requesterName" validate:"required"`
	RequesterEmail   string            `json:"requesterEmail" validate:"required,email"`
	Priority         Priority          `json:"priority" validate:"oneof=low medium high urgent"`
	Category         string            `json:"category" validate:"required"`
	ExpectedDelivery *string           `json:"expectedDelivery"`
	Attachments      []string          `json:"attachments" validate:"omitempty,dive,notblank"`
	Logo             *string           `json:"logo"`
	Status           RequisitionStatus `json:"status" validate:"oneof=pending approved rejected in-progress completed"`
	DeployedLink     *string           `json:"deployedLink" validate:"omitempty,optionalurl"`
	IsPrivate        bool              `json:"isPrivate"`
}

func (in *NewRequisition) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.RequesterName = strings.TrimSpace(in.RequesterName)
	in.RequesterEmail = strings.TrimSpace(in.RequesterEmail)
	in.Category = strings.TrimSpace(in.Category)
	in.ExpectedDelivery = optional(in.ExpectedDelivery)
	in.Logo = optional(in.Logo)
	in.DeployedLink = optional(in.DeployedLink)
	if strings.TrimSpace(in.Description) == "" {
		in.Description = ""
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.Status == "" {
		in.Status = StatusPending
	}
}

func (in NewRequisition) Build(id int, now time.Time) ProjectRequisition {
	return ProjectRequisition{
		ID:               id,
		Title:            in.Title,
		Description:      in.Description,
		RequesterName:    in.RequesterName,
		RequesterEmail:   in.RequesterEmail,
		Priority:         in.Priority,
		Category:         in.Category,
		ExpectedDelivery: in.ExpectedDelivery,
		Attachments:      cloneStrings(in.Attachments),
		Logo:             in.Logo,
		Status:           in.Status,
		DeployedLink:     in.DeployedLink,
		IsPrivate:        in.IsPrivate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

type RequisitionPatch struct {
	Title            *string            `json:"title" validate:"omitempty,notblank"`
	Description      *string            `json:"description" validate:"omitempty,notblank"`
	RequesterName    *string            `json:"requesterName" validate:"omitempty,notblank"`
	RequesterEmail   *string            `json:"requesterEmail" validate:"omitempty,email"`
	Priority         *Priority          `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Category         *string            `json:"category" validate:"omitempty,notblank"`
	ExpectedDelivery *string            `json:"expectedDelivery"`
	Attachments      []string           `json:"attachments" validate:"omitempty,dive,notblank"`
	Logo             *string            `json:"logo"`
	Status           *RequisitionStatus `json:"status" validate:"omitempty,oneof=pending approved rejected in-progress completed"`
	DeployedLink     *string            `json:"deployedLink" validate:"omitempty,optionalurl"`
	IsPrivate        *bool              `json:"isPrivate"`
}

func (p *RequisitionPatch) Normalize() {
	p.Title = trimmed(p.Title)
	p.RequesterName = trimmed(p.RequesterName)
	p.RequesterEmail = trimmed(p.RequesterEmail)
	p.Category = trimmed(p.Category)
	p.DeployedLink = trimmed(p.DeployedLink)
}

func (p RequisitionPatch) Apply(r *ProjectRequisition) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.RequesterName != nil {
		r.RequesterName = *p.RequesterName
	}
	if p.RequesterEmail != nil {
		r.RequesterEmail = *p.RequesterEmail
	}
	if p.Priority != nil {
		r.Priority = *p.Priority
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.ExpectedDelivery != nil {
		r.ExpectedDelivery = optional(p.ExpectedDelivery)
	}
	if p.Attachments != nil {
		r.Attachments = cloneStrings(p.Attachments)
	}
	if p.Logo != nil {
		r.Logo = optional(p.Logo)
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.DeployedLink != nil {
		r.DeployedLink = optional(p.DeployedLink)
	}
	if p.IsPrivate != nil {
		r.IsPrivate = *p.IsPrivate
	}
}

// RequisitionFilter narrows the requisition listing. Zero values match all.
type RequisitionFilter struct {
	Status     RequisitionStatus
	PublicOnly bool
}

func (f RequisitionFilter) Matches(r ProjectRequisition) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.PublicOnly && r.IsPrivate {
		return false
	}
	return true
}
