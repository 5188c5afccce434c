package models

import (
	"strings"
	"time"
)

// Subcategory belongs to a category through CategoryID. The reference is not
// enforced: deleting the category leaves the subcategory in place.
type Subcategory struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	CategoryID int       `json:"categoryId"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

type NewSubcategory struct {
	Name       string `json:"name" validate:"required"`
	CategoryID int    `json:"categoryId" validate:"required,min=1"`
	IsActive   *bool  `json:"isActive"`
}

func (in *NewSubcategory) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
}

func (in NewSubcategory) Build(id int, now time.Time) Subcategory {
	subcategory := Subcategory{ID: id, Name: in.Name, CategoryID: in.CategoryID, IsActive: true, CreatedAt: now}
	if in.IsActive != nil {
		subcategory.IsActive = *in.IsActive
	}
	return subcategory
}

type SubcategoryPatch struct {
	Name       *string `json:"name" validate:"omitempty,notblank"`
	CategoryID *int    `json:"categoryId" validate:"omitempty,min=1"`
	IsActive   *bool   `json:"isActive"`
}

func (p *SubcategoryPatch) Normalize() {
	p.Name = trimmed(p.Name)
}

func (p SubcategoryPatch) Apply(subcategory *Subcategory) {
	if p.Name != nil {
		subcategory.Name = *p.Name
	}
	if p.CategoryID != nil {
		subcategory.CategoryID = *p.CategoryID
	}
	if p.IsActive != nil {
		subcategory.IsActive = *p.IsActive
	}
}
