package database

import (
	"context"
	"sort"
	"time"

	"github.com/tooldesk/tooldesk/backend/models"
)

const (
	topAppsLimit      = 10
	recentEventsLimit = 20
)

// AnalyticsRepo is append-only: events are never updated or deleted.
type AnalyticsRepo struct {
	store *Store
}

func NewAnalyticsRepo(store *Store) *AnalyticsRepo {
	return &AnalyticsRepo{store}
}

func (r *AnalyticsRepo) FindAll() []models.AnalyticsEvent {
	return listRows(r.store, r.store.events)
}

func (r *AnalyticsRepo) Add(ctx context.Context, input models.NewAnalyticsEvent) (models.AnalyticsEvent, error) {
	return insertRow(ctx, r.store, r.store.events, input.Build)
}

// Summary aggregates events created at or after since. A zero since covers the
// whole log.
func (r *AnalyticsRepo) Summary(since time.Time) models.AnalyticsSummary {
	return Summarize(r.FindAll(), since)
}

type appKey struct {
	id   int
	name string
}

// Summarize counts events by app, category and view type. Events must be in
// insertion order.
func Summarize(events []models.AnalyticsEvent, since time.Time) models.AnalyticsSummary {
	summary := models.AnalyticsSummary{
		MostViewedApps:  []models.AppViews{},
		ViewsByCategory: []models.CategoryViews{},
		ViewsByType: map[models.ViewType]int{
			models.ViewTypeCard:   0,
			models.ViewTypeDetail: 0,
			models.ViewTypeLaunch: 0,
		},
		RecentEvents: []models.AnalyticsEvent{},
	}

	byApp := make(map[appKey]*models.AppViews)
	var appOrder []appKey
	byCategory := make(map[string]int)
	var categoryOrder []string
	sessions := make(map[string]struct{})
	var window []models.AnalyticsEvent

	for _, event := range events {
		if !since.IsZero() && event.CreatedAt.Before(since) {
			continue
		}
		window = append(window, event)
		summary.TotalViews++
		summary.ViewsByType[event.ViewType]++

		if event.SessionID != nil {
			sessions[*event.SessionID] = struct{}{}
		}

		// Events without an app ID group by name
		key := appKey{name: event.AppName}
		if event.AppID != nil {
			key = appKey{id: *event.AppID}
		}
		views, ok := byApp[key]
		if !ok {
			views = &models.AppViews{AppID: event.AppID}
			byApp[key] = views
			appOrder = append(appOrder, key)
		}
		// Latest denormalized name and category win
		views.AppName = event.AppName
		views.AppCategory = event.AppCategory
		views.Views++

		if _, ok := byCategory[event.AppCategory]; !ok {
			categoryOrder = append(categoryOrder, event.AppCategory)
		}
		byCategory[event.AppCategory]++
	}
	summary.UniqueSessions = len(sessions)

	for _, key := range appOrder {
		summary.MostViewedApps = append(summary.MostViewedApps, *byApp[key])
	}
	sort.SliceStable(summary.MostViewedApps, func(i, j int) bool {
		return summary.MostViewedApps[i].Views > summary.MostViewedApps[j].Views
	})
	if len(summary.MostViewedApps) > topAppsLimit {
		summary.MostViewedApps = summary.MostViewedApps[:topAppsLimit]
	}

	for _, category := range categoryOrder {
		summary.ViewsByCategory = append(summary.ViewsByCategory, models.CategoryViews{
			Category: category,
			Views:    byCategory[category],
		})
	}
	sort.SliceStable(summary.ViewsByCategory, func(i, j int) bool {
		return summary.ViewsByCategory[i].Views > summary.ViewsByCategory[j].Views
	})

	for i := len(window) - 1; i >= 0 && len(summary.RecentEvents) < recentEventsLimit; i-- {
		summary.RecentEvents = append(summary.RecentEvents, window[i])
	}

	return summary
}
