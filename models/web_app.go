package models

import (
	"strings"
	"time"
)

// DefaultAppIcon is used when an app is created without an icon.
const DefaultAppIcon = "fas fa-globe"

// WebApp is a catalog entry linking to an internal tool.
type WebApp struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	ShortDescription *string   `json:"shortDescription"`
	Description      *string   `json:"description"`
	URL              string    `json:"url"`
	Category         string    `json:"category"`
	Subcategory      *string   `json:"subcategory"`
	Icon             string    `json:"icon"`
	IsActive         bool      `json:"isActive"`
	Attachments      []string  `json:"attachments"`
	Rating           int       `json:"rating"`
	SortOrder        int       `json:"sortOrder"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Clone returns a copy that shares no mutable state with the receiver.
func (a WebApp) Clone() WebApp {
	a.Attachments = cloneStrings(a.Attachments)
	return a
}

// NewWebApp is the create payload for a WebApp.
type NewWebApp struct {
	Name             string   `json:"name" validate:"required"`
	ShortDescription *string  `json:"shortDescription"`
	Description      *string  `json:"description"`
	URL              string   `json:"url" validate:"required,url"`
	Category         string   `json:"category" validate:"required"`
	Subcategory      *string  `json:"subcategory"`
	Icon             string   `json:"icon"`
	IsActive         *bool    `json:"isActive"`
	Attachments      []string `json:"attachments" validate:"omitempty,dive,notblank"`
	Rating           *int     `json:"rating" validate:"omitempty,min=0,max=5"`

	// SortOrder is only set when restoring exported records; clients reorder
	// through the reorder operation.
	SortOrder *int `json:"-"`
}

func (in *NewWebApp) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.URL = strings.TrimSpace(in.URL)
	in.Category = strings.TrimSpace(in.Category)
	in.Icon = strings.TrimSpace(in.Icon)
	in.ShortDescription = optional(in.ShortDescription)
	in.Description = optional(in.Description)
	in.Subcategory = optional(in.Subcategory)
	if in.Icon == "" {
		in.Icon = DefaultAppIcon
	}
}

// Build turns a validated payload into a stored record.
func (in NewWebApp) Build(id int, now time.Time) WebApp {
	app := WebApp{
		ID:               id,
		Name:             in.Name,
		ShortDescription: in.ShortDescription,
		Description:      in.Description,
		URL:              in.URL,
		Category:         in.Category,
		Subcategory:      in.Subcategory,
		Icon:             in.Icon,
		IsActive:         true,
		Attachments:      cloneStrings(in.Attachments),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if in.IsActive != nil {
		app.IsActive = *in.IsActive
	}
	if in.Rating != nil {
		app.Rating = *in.Rating
	}
	if in.SortOrder != nil {
		app.SortOrder = *in.SortOrder
	}
	return app
}

// WebAppPatch carries the fields of a partial update. Nil fields are left
// untouched; an empty string clears an optional text field.
type WebAppPatch struct {
	Name             *string  `json:"name" validate:"omitempty,notblank"`
	ShortDescription *string  `json:"shortDescription"`
	Description      *string  `json:"description"`
	URL              *string  `json:"url" validate:"omitempty,url"`
	Category         *string  `json:"category" validate:"omitempty,notblank"`
	Subcategory      *string  `json:"subcategory"`
	Icon             *string  `json:"icon" validate:"omitempty,notblank"`
	IsActive         *bool    `json:"isActive"`
	Attachments      []string `json:"attachments" validate:"omitempty,dive,notblank"`
	Rating           *int     `json:"rating" validate:"omitempty,min=0,max=5"`
}

func (p *WebAppPatch) Normalize() {
	p.Name = trimmed(p.Name)
	p.URL = trimmed(p.URL)
	p.Category = trimmed(p.Category)
	p.Icon = trimmed(p.Icon)
}

// Apply merges the present fields onto app.
func (p WebAppPatch) Apply(app *WebApp) {
	if p.Name != nil {
		app.Name = *p.Name
	}
	if p.ShortDescription != nil {
		app.ShortDescription = optional(p.ShortDescription)
	}
	if p.Description != nil {
		app.Description = optional(p.Description)
	}
	if p.URL != nil {
		app.URL = *p.URL
	}
	if p.Category != nil {
		app.Category = *p.Category
	}
	if p.Subcategory != nil {
		app.Subcategory = optional(p.Subcategory)
	}
	if p.Icon != nil {
		app.Icon = *p.Icon
	}
	if p.IsActive != nil {
		app.IsActive = *p.IsActive
	}
	if p.Attachments != nil {
		app.Attachments = cloneStrings(p.Attachments)
	}
	if p.Rating != nil {
		app.Rating = *p.Rating
	}
}

// ReorderRequest assigns sortOrder by position.
type ReorderRequest struct {
	ReorderedIDs []int `json:"reorderedIds" validate:"required"`
}

func (r *ReorderRequest) Normalize() {}
