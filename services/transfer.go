package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tooldesk/tooldesk/backend/database"
	"github.com/tooldesk/tooldesk/backend/models"
)

// Export dumps apps, categories and subcategories.
func Export(db database.Database, now time.Time) models.ExportEnvelope {
	return models.ExportEnvelope{
		ExportDate:    now.UTC(),
		Version:       models.ExportVersion,
		Apps:          db.AppRepo().FindAll(),
		Categories:    db.CategoryRepo().FindAll(),
		Subcategories: db.SubcategoryRepo().FindAll(),
	}
}

// Import loads an import envelope best-effort: categories first, then
// subcategories with their categoryId remapped to the new category IDs, then
// apps. Records go through the same validation and defaults as a create. A
// record that fails is skipped with a reason; the rest carry on.
func Import(ctx context.Context, db database.Database, envelope models.ImportEnvelope) models.ImportResult {
	logger := log.With().Str("service", "import").Logger()
	result := models.ImportResult{Skipped: []models.SkippedRecord{}}

	skip := func(entity string, index int, name, reason string) {
		result.Skipped = append(result.Skipped, models.SkippedRecord{Entity: entity, Index: index, Name: name, Reason: reason})
	}

	categoryIDs := make(map[int]int, len(envelope.Categories))
	for i, category := range envelope.Categories {
		input := category.NewCategory
		if err := models.Validate(&input); err != nil {
			skip("category", i, category.Name, err.Error())
			continue
		}
		if existing, ok := db.CategoryRepo().FindByName(input.Name); ok {
			categoryIDs[category.ID] = existing.ID
			skip("category", i, category.Name, "category already exists")
			continue
		}

		created, err := db.CategoryRepo().Add(ctx, input)
		if err != nil {
			logger.Error().Err(err).Str("name", input.Name).Msg("Failed to import category")
			skip("category", i, category.Name, "could not be saved")
			continue
		}
		categoryIDs[category.ID] = created.ID
		result.Imported.Categories++
	}

	for i, subcategory := range envelope.Subcategories {
		categoryID, ok := categoryIDs[subcategory.CategoryID]
		if !ok {
			skip("subcategory", i, subcategory.Name, fmt.Sprintf("unknown categoryId %d", subcategory.CategoryID))
			continue
		}

		input := subcategory.NewSubcategory
		input.CategoryID = categoryID
		if err := models.Validate(&input); err != nil {
			skip("subcategory", i, subcategory.Name, err.Error())
			continue
		}
		if _, exists := db.SubcategoryRepo().FindByName(categoryID, input.Name); exists {
			skip("subcategory", i, subcategory.Name, "subcategory already exists")
			continue
		}

		if _, err := db.SubcategoryRepo().Add(ctx, input); err != nil {
			logger.Error().Err(err).Str("name", input.Name).Msg("Failed to import subcategory")
			skip("subcategory", i, subcategory.Name, "could not be saved")
			continue
		}
		result.Imported.Subcategories++
	}

	existingApps := make(map[string]struct{})
	for _, app := range db.AppRepo().FindAll() {
		existingApps[app.Name+"\x00"+app.URL] = struct{}{}
	}

	for i, app := range envelope.Apps {
		input := app.NewWebApp
		input.SortOrder = app.SortOrder
		if err := models.Validate(&input); err != nil {
			skip("app", i, app.Name, err.Error())
			continue
		}
		key := input.Name + "\x00" + input.URL
		if _, exists := existingApps[key]; exists {
			skip("app", i, app.Name, "app already exists")
			continue
		}
		if _, err := db.AppRepo().Add(ctx, input); err != nil {
			logger.Error().Err(err).Str("name", input.Name).Msg("Failed to import app")
			skip("app", i, app.Name, "could not be saved")
			continue
		}
		existingApps[key] = struct{}{}
		result.Imported.Apps++
	}

	result.Message = fmt.Sprintf("Imported %d apps, %d categories and %d subcategories",
		result.Imported.Apps, result.Imported.Categories, result.Imported.Subcategories)
	return result
}
