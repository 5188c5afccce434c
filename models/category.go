package models

import (
	"strings"
	"time"
)

// Category groups apps by name. Apps reference categories by name only.
type Category struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type NewCategory struct {
	Name     string `json:"name" validate:"required"`
	IsActive *bool  `json:"isActive"`
}

func (in *NewCategory) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
}

func (in NewCategory) Build(id int, now time.Time) Category {
	category := Category{ID: id, Name: in.Name, IsActive: true, CreatedAt: now}
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}
	return category
}

type CategoryPatch struct {
	Name     *string `json:"name" validate:"omitempty,notblank"`
	IsActive *bool   `json:"isActive"`
}

func (p *CategoryPatch) Normalize() {
	p.Name = trimmed(p.Name)
}

func (p CategoryPatch) Apply(category *Category) {
	if p.Name != nil {
		category.Name = *p.Name
	}
	if p.IsActive != nil {
		category.IsActive = *p.IsActive
	}
}
