package database

import (
	"context"
	"time"

	"github.com/tooldesk/tooldesk/backend/models"
)

type RequisitionRepo struct {
	store *Store
}

func NewRequisitionRepo(store *Store) *RequisitionRepo {
	return &RequisitionRepo{store}
}

// FindAll returns requisitions matching filter in insertion order
func (r *RequisitionRepo) FindAll(filter models.RequisitionFilter) []models.ProjectRequisition {
	all := listRows(r.store, r.store.requisitions)
	out := make([]models.ProjectRequisition, 0, len(all))
	for _, requisition := range all {
		if filter.Matches(requisition) {
			out = append(out, requisition)
		}
	}
	return out
}

func (r *RequisitionRepo) FindByID(id int) (models.ProjectRequisition, bool) {
	return getRow(r.store, r.store.requisitions, id)
}

func (r *RequisitionRepo) Add(ctx context.Context, input models.NewRequisition) (models.ProjectRequisition, error) {
	return insertRow(ctx, r.store, r.store.requisitions, input.Build)
}

func (r *RequisitionRepo) Update(ctx context.Context, id int, patch models.RequisitionPatch) (models.ProjectRequisition, bool, error) {
	return updateRow(ctx, r.store, r.store.requisitions, id, func(requisition *models.ProjectRequisition, now time.Time) {
		patch.Apply(requisition)
		requisition.UpdatedAt = now
	})
}

func (r *RequisitionRepo) Delete(ctx context.Context, id int) (bool, error) {
	return deleteRow(ctx, r.store, r.store.requisitions, id)
}
