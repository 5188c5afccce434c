package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tooldesk/tooldesk/backend/models"
)

func ptr[T any](v T) *T { return &v }

func newTestDB(t *testing.T, persister Persister) Database {
	t.Helper()
	store := NewStore(context.Background(), persister)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return New(store)
}

func newApp(name, url, category string) models.NewWebApp {
	input := models.NewWebApp{Name: name, URL: url, Category: category}
	input.Normalize()
	return input
}

func TestIDsAreNeverReused(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, NewMemoryPersister())
	apps := db.AppRepo()

	first, err := apps.Add(ctx, newApp("One", "https://one.example", "Ops"))
	require.NoError(t, err)
	second, err := apps.Add(ctx, newApp("Two", "https://two.example", "Ops"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)

	deleted, err := apps.Delete(ctx, second.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	third, err := apps.Add(ctx, newApp("Three", "https://three.example", "Ops"))
	require.NoError(t, err)
	assert.Equal(t, 3, third.ID)

	// Counters are independent per entity type
	category, err := db.CategoryRepo().Add(ctx, models.NewCategory{Name: "Ops"})
	require.NoError(t, err)
	assert.Equal(t, 1, category.ID)
}

func TestMutationsPersistEveryTime(t *testing.T) {
	ctx := context.Background()
	persister := NewMemoryPersister()
	db := newTestDB(t, persister)

	app, err := db.AppRepo().Add(ctx, newApp("One", "https://one.example", "Ops"))
	require.NoError(t, err)
	_, found, err := db.AppRepo().Update(ctx, app.ID, models.WebAppPatch{Rating: ptr(3)})
	require.NoError(t, err)
	require.True(t, found)
	_, err = db.AppRepo().Delete(ctx, app.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, persister.Saves())

	// Misses do not write
	_, found, err = db.AppRepo().Update(ctx, 99, models.WebAppPatch{Rating: ptr(3)})
	require.NoError(t, err)
	assert.False(t, found)
	deleted, err := db.AppRepo().Delete(ctx, 99)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 3, persister.Saves())
}

func TestUpdateRefreshesUpdatedAtOnly(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, NewMemoryPersister())

	input := newApp("Budget Tool", "https://budget.example.com", "Finance")
	input.Description = ptr("Tracks spend")
	app, err := db.AppRepo().Add(ctx, input)
	require.NoError(t, err)

	updated, found, err := db.AppRepo().Update(ctx, app.ID, models.WebAppPatch{IsActive: ptr(false)})
	require.NoError(t, err)
	require.True(t, found)

	assert.False(t, updated.IsActive)
	assert.Equal(t, app.Name, updated.Name)
	assert.Equal(t, app.URL, updated.URL)
	assert.Equal(t, app.Description, updated.Description)
	assert.Equal(t, app.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(app.UpdatedAt))
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, NewMemoryPersister())

	input := newApp("One", "https://one.example", "Ops")
	input.Attachments = []string{"a.pdf"}
	app, err := db.AppRepo().Add(ctx, input)
	require.NoError(t, err)

	fetched, _ := db.AppRepo().FindByID(app.ID)
	fetched.Attachments[0] = "changed"
	fetched.Name = "changed"

	again, _ := db.AppRepo().FindByID(app.ID)
	assert.Equal(t, "One", again.Name)
	assert.Equal(t, []string{"a.pdf"}, again.Attachments)
}

func TestFailedPersistKeepsMemoryChange(t *testing.T) {
	ctx := context.Background()
	persister := NewMemoryPersister()
	db := newTestDB(t, persister)

	persister.FailWith(errors.New("disk full"))
	app, err := db.AppRepo().Add(ctx, newApp("One", "https://one.example", "Ops"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	stored, found := db.AppRepo().FindByID(app.ID)
	require.True(t, found)
	assert.Equal(t, "One", stored.Name)

	persister.FailWith(nil)
	_, err = db.AppRepo().Add(ctx, newApp("Two", "https://two.example", "Ops"))
	require.NoError(t, err)

	reloaded := New(NewStore(ctx, persister))
	assert.Len(t, reloaded.AppRepo().FindAll(), 2)
}

func TestReloadRestoresCollectionsAndCounters(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "store.json")
	db := newTestDB(t, NewFilePersister(path))

	for _, name := range []string{"One", "Two", "Three"} {
		_, err := db.AppRepo().Add(ctx, newApp(name, "https://"+name+".example", "Ops"))
		require.NoError(t, err)
	}
	_, err := db.AppRepo().Delete(ctx, 3)
	require.NoError(t, err)

	category, err := db.CategoryRepo().Add(ctx, models.NewCategory{Name: "Ops"})
	require.NoError(t, err)
	_, err = db.SubcategoryRepo().Add(ctx, models.NewSubcategory{Name: "Payroll", CategoryID: category.ID})
	require.NoError(t, err)
	_, err = db.RequisitionRepo().Add(ctx, models.NewRequisition{
		Title: "Portal", Description: "d", RequesterName: "Sam", RequesterEmail: "sam@example.com",
		Category: "Ops", Priority: models.PriorityHigh, Status: models.StatusPending,
	})
	require.NoError(t, err)
	_, err = db.AnalyticsRepo().Add(ctx, models.NewAnalyticsEvent{AppID: ptr(1), AppName: "One", AppCategory: "Ops", ViewType: models.ViewTypeLaunch})
	require.NoError(t, err)
	_, err = db.UserRepo().Add(ctx, models.NewUser{Username: "admin", Password: "correct horse"})
	require.NoError(t, err)

	reloaded := New(NewStore(ctx, NewFilePersister(path)))

	apps := reloaded.AppRepo().FindAll()
	require.Len(t, apps, 2)
	assert.Equal(t, "One", apps[0].Name)
	assert.Equal(t, "Two", apps[1].Name)
	assert.Len(t, reloaded.CategoryRepo().FindAll(), 1)
	assert.Len(t, reloaded.SubcategoryRepo().FindAll(), 1)
	assert.Len(t, reloaded.RequisitionRepo().FindAll(models.RequisitionFilter{}), 1)
	assert.Len(t, reloaded.AnalyticsRepo().FindAll(), 1)
	user, found := reloaded.UserRepo().FindByUsername("admin")
	require.True(t, found)
	assert.True(t, reloaded.UserRepo().CheckPassword(user, "correct horse"))

	// The deleted ID 3 stays burned after a restart
	next, err := reloaded.AppRepo().Add(ctx, newApp("Four", "https://four.example", "Ops"))
	require.NoError(t, err)
	assert.Equal(t, 4, next.ID)

	snapshot := reloaded.Store().Snapshot()
	assert.Equal(t, 5, snapshot.NextAppID)
	assert.Equal(t, 2, snapshot.NextCategoryID)
	assert.Equal(t, 2, snapshot.NextUserID)
}

func TestMissingOrMalformedSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	missing := New(NewStore(ctx, NewFilePersister(filepath.Join(dir, "nope.json"))))
	assert.Empty(t, missing.AppRepo().FindAll())

	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	broken := New(NewStore(ctx, NewFilePersister(path)))
	assert.Empty(t, broken.AppRepo().FindAll())

	app, err := broken.AppRepo().Add(ctx, newApp("One", "https://one.example", "Ops"))
	require.NoError(t, err)
	assert.Equal(t, 1, app.ID)
}

func TestSnapshotFileLayout(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")
	db := newTestDB(t, NewFilePersister(path))

	_, err := db.AppRepo().Add(ctx, newApp("One", "https://one.example", "Ops"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, key := range []string{
		`"users"`, `"webApps"`, `"categories"`, `"subcategories"`, `"requisitions"`, `"analyticsEvents"`,
		`"nextUserId"`, `"nextAppId"`, `"nextCategoryId"`, `"nextSubcategoryId"`, `"nextRequisitionId"`, `"nextAnalyticsId"`,
	} {
		assert.Contains(t, string(data), key)
	}
}

func TestRestoreNeverLowersCounter(t *testing.T) {
	tbl := newTable(identity[models.Category])
	tbl.restore([]models.Category{{ID: 4}, {ID: 9}}, func(c models.Category) int { return c.ID }, 2)
	assert.Equal(t, 10, tbl.allocate())

	tbl.restore(nil, func(c models.Category) int { return c.ID }, 15)
	assert.Equal(t, 15, tbl.allocate())
}
