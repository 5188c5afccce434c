package database

import (
	"context"
	"strings"
	"time"

	"github.com/tooldesk/tooldesk/backend/models"
)

type CategoryRepo struct {
	store *Store
}

func NewCategoryRepo(store *Store) *CategoryRepo {
	return &CategoryRepo{store}
}

// FindAll returns all categories in insertion order
func (r *CategoryRepo) FindAll() []models.Category {
	return listRows(r.store, r.store.categories)
}

func (r *CategoryRepo) FindByID(id int) (models.Category, bool) {
	return getRow(r.store, r.store.categories, id)
}

// FindByName matches case-insensitively. Names are unique by convention only,
// so the first match wins.
func (r *CategoryRepo) FindByName(name string) (models.Category, bool) {
	for _, category := range r.FindAll() {
		if strings.EqualFold(category.Name, name) {
			return category, true
		}
	}
	return models.Category{}, false
}

func (r *CategoryRepo) Add(ctx context.Context, input models.NewCategory) (models.Category, error) {
	return insertRow(ctx, r.store, r.store.categories, input.Build)
}

func (r *CategoryRepo) Update(ctx context.Context, id int, patch models.CategoryPatch) (models.Category, bool, error) {
	return updateRow(ctx, r.store, r.store.categories, id, func(category *models.Category, _ time.Time) {
		patch.Apply(category)
	})
}

// Delete is a hard delete. Apps naming the category and its subcategories are
// left untouched.
func (r *CategoryRepo) Delete(ctx context.Context, id int) (bool, error) {
	return deleteRow(ctx, r.store, r.store.categories, id)
}
