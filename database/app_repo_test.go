package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tooldesk/tooldesk/backend/models"
)

func names(apps []models.WebApp) []string {
	out := make([]string, 0, len(apps))
	for _, app := range apps {
		out = append(out, app.Name)
	}
	return out
}

func seedCatalog(t *testing.T, db Database) {
	t.Helper()
	ctx := context.Background()

	inputs := []models.NewWebApp{
		{Name: "Budget Tool", URL: "https://budget.example.com", Category: "Finance", Subcategory: ptr("Planning"), Description: ptr("Quarterly BUDGET planning")},
		{Name: "Payroll", URL: "https://payroll.example.com", Category: "Finance", Subcategory: ptr("Payroll")},
		{Name: "Wiki", URL: "https://wiki.example.com", Category: "Docs", Description: ptr("Team handbook and budget notes")},
		{Name: "Old Budget", URL: "https://old.example.com", Category: "Finance", Subcategory: ptr("Planning"), IsActive: ptr(false)},
	}
	for _, input := range inputs {
		input.Normalize()
		_, err := db.AppRepo().Add(ctx, input)
		require.NoError(t, err)
	}
}

func TestSearch(t *testing.T) {
	db := newTestDB(t, NewMemoryPersister())
	seedCatalog(t, db)
	apps := db.AppRepo()

	t.Run("inactive apps are hidden", func(t *testing.T) {
		assert.Equal(t, []string{"Budget Tool", "Payroll", "Wiki"}, names(apps.FindActive()))
		assert.Len(t, apps.FindAll(), 4)
	})

	t.Run("query is case-insensitive over name and description", func(t *testing.T) {
		for _, query := range []string{"budget", "BUDGET", "BuDgEt"} {
			assert.Equal(t, []string{"Budget Tool", "Wiki"}, names(apps.Search(AppFilter{Query: query})))
		}
	})

	t.Run("filters are ANDed", func(t *testing.T) {
		got := apps.Search(AppFilter{Category: "Finance", Subcategory: "Planning"})
		assert.Equal(t, []string{"Budget Tool"}, names(got))

		got = apps.Search(AppFilter{Category: "Docs", Subcategory: "Planning"})
		assert.Empty(t, got)

		got = apps.Search(AppFilter{Query: "budget", Category: "Finance"})
		assert.Equal(t, []string{"Budget Tool"}, names(got))
	})

	t.Run("category match is exact", func(t *testing.T) {
		assert.Empty(t, apps.Search(AppFilter{Category: "finance"}))
		assert.Empty(t, apps.Search(AppFilter{Category: "Fin"}))
	})

	t.Run("short description is not searched", func(t *testing.T) {
		ctx := context.Background()
		input := models.NewWebApp{Name: "Tracker", URL: "https://t.example", Category: "Ops", ShortDescription: ptr("zebra")}
		input.Normalize()
		_, err := apps.Add(ctx, input)
		require.NoError(t, err)
		assert.Empty(t, apps.Search(AppFilter{Query: "zebra"}))
	})
}

func TestFilterAppsOnEmptyInput(t *testing.T) {
	assert.True(t, AppFilter{}.IsEmpty())
	assert.False(t, AppFilter{Query: "x"}.IsEmpty())
	assert.Empty(t, FilterApps(nil, AppFilter{Query: "x"}))
}

func TestReorder(t *testing.T) {
	ctx := context.Background()
	persister := NewMemoryPersister()
	db := newTestDB(t, persister)
	seedCatalog(t, db)
	apps := db.AppRepo()
	savesBefore := persister.Saves()

	require.NoError(t, apps.Reorder(ctx, []int{3, 1, 99, 2}))
	assert.Equal(t, savesBefore+1, persister.Saves())

	sortOrders := func() map[int]int {
		out := map[int]int{}
		for _, app := range apps.FindAll() {
			out[app.ID] = app.SortOrder
		}
		return out
	}

	first := sortOrders()
	assert.Equal(t, map[int]int{3: 0, 1: 1, 2: 3, 4: 0}, first)
	assert.Equal(t, []string{"Wiki", "Old Budget", "Budget Tool", "Payroll"}, names(apps.FindAllOrdered()))

	// Same list again leaves everything as it was
	require.NoError(t, apps.Reorder(ctx, []int{3, 1, 99, 2}))
	assert.Equal(t, first, sortOrders())

	// Public listing keeps insertion order regardless of sortOrder
	assert.Equal(t, []string{"Budget Tool", "Payroll", "Wiki"}, names(apps.FindActive()))
}

func TestCategoryAndSubcategoryLookups(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, NewMemoryPersister())

	finance, err := db.CategoryRepo().Add(ctx, models.NewCategory{Name: "Finance"})
	require.NoError(t, err)
	docs, err := db.CategoryRepo().Add(ctx, models.NewCategory{Name: "Docs", IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, docs.IsActive)

	found, ok := db.CategoryRepo().FindByName("FINANCE")
	require.True(t, ok)
	assert.Equal(t, finance.ID, found.ID)

	_, err = db.SubcategoryRepo().Add(ctx, models.NewSubcategory{Name: "Payroll", CategoryID: finance.ID})
	require.NoError(t, err)
	_, err = db.SubcategoryRepo().Add(ctx, models.NewSubcategory{Name: "Guides", CategoryID: docs.ID})
	require.NoError(t, err)

	assert.Len(t, db.SubcategoryRepo().FindByCategory(finance.ID), 1)
	_, ok = db.SubcategoryRepo().FindByName(finance.ID, "Payroll")
	assert.True(t, ok)
	_, ok = db.SubcategoryRepo().FindByName(docs.ID, "Payroll")
	assert.False(t, ok)

	// Deleting a category leaves its subcategories alone
	deleted, err := db.CategoryRepo().Delete(ctx, finance.ID)
	require.NoError(t, err)
	require.True(t, deleted)
	assert.Len(t, db.SubcategoryRepo().FindAll(), 2)
}

func TestRequisitionFilters(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, NewMemoryPersister())
	repo := db.RequisitionRepo()

	base := models.NewRequisition{
		Title: "Portal", Description: "d", RequesterName: "Sam", RequesterEmail: "sam@example.com",
		Category: "Ops", Priority: models.PriorityMedium, Status: models.StatusPending,
	}
	_, err := repo.Add(ctx, base)
	require.NoError(t, err)

	private := base
	private.Title = "Secret"
	private.IsPrivate = true
	_, err = repo.Add(ctx, private)
	require.NoError(t, err)

	approved := base
	approved.Title = "Approved"
	approved.Status = models.StatusApproved
	_, err = repo.Add(ctx, approved)
	require.NoError(t, err)

	assert.Len(t, repo.FindAll(models.RequisitionFilter{}), 3)
	assert.Len(t, repo.FindAll(models.RequisitionFilter{PublicOnly: true}), 2)
	assert.Len(t, repo.FindAll(models.RequisitionFilter{Status: models.StatusPending}), 2)
	assert.Len(t, repo.FindAll(models.RequisitionFilter{Status: models.StatusPending, PublicOnly: true}), 1)

	// Any status can move to any other
	status := models.StatusPending
	updated, found, err := repo.Update(ctx, 3, models.RequisitionPatch{Status: &status})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.StatusPending, updated.Status)
}

func TestSummarize(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	event := func(id int, appID int, name, category string, viewType models.ViewType, session string, age time.Duration) models.AnalyticsEvent {
		e := models.AnalyticsEvent{ID: id, AppID: &appID, AppName: name, AppCategory: category, ViewType: viewType, CreatedAt: base.Add(-age)}
		if session != "" {
			e.SessionID = &session
		}
		return e
	}

	events := []models.AnalyticsEvent{
		event(1, 1, "Budget Tool", "Finance", models.ViewTypeCard, "s1", 72*time.Hour),
		event(2, 2, "Wiki", "Docs", models.ViewTypeCard, "s1", 2*time.Hour),
		event(3, 2, "Wiki", "Docs", models.ViewTypeLaunch, "s2", time.Hour),
		event(4, 1, "Budget Tool", "Finance", models.ViewTypeDetail, "", 30*time.Minute),
		event(5, 2, "Wiki", "Docs", models.ViewTypeDetail, "s2", 10*time.Minute),
	}

	summary := Summarize(events, time.Time{})
	assert.Equal(t, 5, summary.TotalViews)
	assert.Equal(t, 2, summary.UniqueSessions)
	require.Len(t, summary.MostViewedApps, 2)
	assert.Equal(t, "Wiki", summary.MostViewedApps[0].AppName)
	assert.Equal(t, 3, summary.MostViewedApps[0].Views)
	assert.Equal(t, []models.CategoryViews{{Category: "Docs", Views: 3}, {Category: "Finance", Views: 2}}, summary.ViewsByCategory)
	assert.Equal(t, map[models.ViewType]int{models.ViewTypeCard: 2, models.ViewTypeDetail: 2, models.ViewTypeLaunch: 1}, summary.ViewsByType)
	require.Len(t, summary.RecentEvents, 5)
	assert.Equal(t, 5, summary.RecentEvents[0].ID)

	windowed := Summarize(events, base.Add(-24*time.Hour))
	assert.Equal(t, 4, windowed.TotalViews)
	assert.Equal(t, 1, windowed.ViewsByType[models.ViewTypeCard])

	empty := Summarize(nil, time.Time{})
	assert.Zero(t, empty.TotalViews)
	assert.NotNil(t, empty.MostViewedApps)
	assert.Equal(t, 0, empty.ViewsByType[models.ViewTypeLaunch])
}

func TestSummarizeCapsLists(t *testing.T) {
	var events []models.AnalyticsEvent
	for i := 1; i <= 30; i++ {
		appID := i
		events = append(events, models.AnalyticsEvent{ID: i, AppID: &appID, AppName: "App", AppCategory: "Ops", ViewType: models.ViewTypeCard})
	}

	summary := Summarize(events, time.Time{})
	assert.Len(t, summary.MostViewedApps, 10)
	assert.Len(t, summary.RecentEvents, 20)
	assert.Equal(t, 30, summary.RecentEvents[0].ID)
}

func TestUsernamesAreUnique(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, NewMemoryPersister())

	user, err := db.UserRepo().Add(ctx, models.NewUser{Username: "admin", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", user.Password)
	assert.True(t, db.UserRepo().CheckPassword(user, "correct horse"))
	assert.False(t, db.UserRepo().CheckPassword(user, "wrong"))

	_, err = db.UserRepo().Add(ctx, models.NewUser{Username: "admin", Password: "another one"})
	require.Error(t, err)
	assert.Len(t, db.UserRepo().FindAll(), 1)
}
