package database

import (
	"strings"

	"github.com/tooldesk/tooldesk/backend/models"
)

// AppFilter holds the public listing parameters. Empty fields match everything.
type AppFilter struct {
	Query       string
	Category    string
	Subcategory string
}

func (f AppFilter) IsEmpty() bool {
	return f.Query == "" && f.Category == "" && f.Subcategory == ""
}

// FilterApps keeps active apps that satisfy every non-empty filter field. The
// query is a case-insensitive substring of name or description; category and
// subcategory match exactly. Input order is preserved.
func FilterApps(apps []models.WebApp, f AppFilter) []models.WebApp {
	query := strings.ToLower(f.Query)

	out := make([]models.WebApp, 0, len(apps))
	for _, app := range apps {
		if !app.IsActive {
			continue
		}
		if query != "" && !matchesQuery(app, query) {
			continue
		}
		if f.Category != "" && app.Category != f.Category {
			continue
		}
		if f.Subcategory != "" && (app.Subcategory == nil || *app.Subcategory != f.Subcategory) {
			continue
		}
		out = append(out, app)
	}
	return out
}

func matchesQuery(app models.WebApp, lowerQuery string) bool {
	if strings.Contains(strings.ToLower(app.Name), lowerQuery) {
		return true
	}
	return app.Description != nil && strings.Contains(strings.ToLower(*app.Description), lowerQuery)
}
