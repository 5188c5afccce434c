package database

import (
	"context"
	"sort"
	"time"

	"github.com/tooldesk/tooldesk/backend/models"
)

type AppRepo struct {
	store *Store
}

func NewAppRepo(store *Store) *AppRepo {
	return &AppRepo{store}
}

// FindAll returns every app, active or not, in insertion order
func (r *AppRepo) FindAll() []models.WebApp {
	return listRows(r.store, r.store.apps)
}

// FindAllOrdered returns every app ordered for the admin view: by sortOrder,
// then by ID.
func (r *AppRepo) FindAllOrdered() []models.WebApp {
	apps := r.FindAll()
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].SortOrder != apps[j].SortOrder {
			return apps[i].SortOrder < apps[j].SortOrder
		}
		return apps[i].ID < apps[j].ID
	})
	return apps
}

// FindActive returns the public listing
func (r *AppRepo) FindActive() []models.WebApp {
	return FilterApps(r.FindAll(), AppFilter{})
}

// Search returns active apps matching every non-empty field of filter
func (r *AppRepo) Search(filter AppFilter) []models.WebApp {
	return FilterApps(r.FindAll(), filter)
}

// FindByID returns an app regardless of its isActive flag
func (r *AppRepo) FindByID(id int) (models.WebApp, bool) {
	return getRow(r.store, r.store.apps, id)
}

// Add stores a validated app
func (r *AppRepo) Add(ctx context.Context, input models.NewWebApp) (models.WebApp, error) {
	return insertRow(ctx, r.store, r.store.apps, input.Build)
}

// Update merges the present fields of patch onto the app
func (r *AppRepo) Update(ctx context.Context, id int, patch models.WebAppPatch) (models.WebApp, bool, error) {
	return updateRow(ctx, r.store, r.store.apps, id, func(app *models.WebApp, now time.Time) {
		patch.Apply(app)
		app.UpdatedAt = now
	})
}

// Delete removes an app by id
func (r *AppRepo) Delete(ctx context.Context, id int) (bool, error) {
	return deleteRow(ctx, r.store, r.store.apps, id)
}

// Reorder sets each listed app's sortOrder to its position in ids and
// persists once. Unknown IDs are ignored and unlisted apps keep their value.
func (r *AppRepo) Reorder(ctx context.Context, ids []int) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for position, id := range ids {
		app, ok := s.apps.get(id)
		if !ok {
			continue
		}
		if app.SortOrder == position {
			continue
		}
		app.SortOrder = position
		app.UpdatedAt = now
		s.apps.insert(id, app)
	}
	return s.persistLocked(ctx)
}

// Count returns the number of apps, active or not
func (r *AppRepo) Count() int {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.apps.len()
}
