package database

import (
	"context"
	"strings"
	"time"

	"github.com/tooldesk/tooldesk/backend/models"
)

type SubcategoryRepo struct {
	store *Store
}

func NewSubcategoryRepo(store *Store) *SubcategoryRepo {
	return &SubcategoryRepo{store}
}

func (r *SubcategoryRepo) FindAll() []models.Subcategory {
	return listRows(r.store, r.store.subcategories)
}

// FindByCategory returns the subcategories pointing at categoryID
func (r *SubcategoryRepo) FindByCategory(categoryID int) []models.Subcategory {
	all := r.FindAll()
	out := make([]models.Subcategory, 0, len(all))
	for _, subcategory := range all {
		if subcategory.CategoryID == categoryID {
			out = append(out, subcategory)
		}
	}
	return out
}

// FindByName looks for a subcategory with the given name under categoryID
func (r *SubcategoryRepo) FindByName(categoryID int, name string) (models.Subcategory, bool) {
	for _, subcategory := range r.FindByCategory(categoryID) {
		if strings.EqualFold(subcategory.Name, name) {
			return subcategory, true
		}
	}
	return models.Subcategory{}, false
}

func (r *SubcategoryRepo) FindByID(id int) (models.Subcategory, bool) {
	return getRow(r.store, r.store.subcategories, id)
}

func (r *SubcategoryRepo) Add(ctx context.Context, input models.NewSubcategory) (models.Subcategory, error) {
	return insertRow(ctx, r.store, r.store.subcategories, input.Build)
}

func (r *SubcategoryRepo) Update(ctx context.Context, id int, patch models.SubcategoryPatch) (models.Subcategory, bool, error) {
	return updateRow(ctx, r.store, r.store.subcategories, id, func(subcategory *models.Subcategory, _ time.Time) {
		patch.Apply(subcategory)
	})
}

func (r *SubcategoryRepo) Delete(ctx context.Context, id int) (bool, error) {
	return deleteRow(ctx, r.store, r.store.subcategories, id)
}
