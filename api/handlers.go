package api

import (
	"github.com/tooldesk/tooldesk/backend/config"
	"github.com/tooldesk/tooldesk/backend/database"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, router router) *routeHandlers {
	maxUploadBytes := int64(config.GetInt(router.config, "MAX_UPLOAD_MB", 10)) << 20

	return &routeHandlers{
		appHandler:         newAppHandler(database.AppRepo()),
		categoryHandler:    newCategoryHandler(database.CategoryRepo()),
		subcategoryHandler: newSubcategoryHandler(database.SubcategoryRepo()),
		requisitionHandler: newRequisitionHandler(database.RequisitionRepo(), router.notifier, router.background),
		analyticsHandler:   newAnalyticsHandler(database.AnalyticsRepo(), database.AppRepo()),
		transferHandler:    newTransferHandler(database),
		fileHandler:        newFileHandler(router.blobStore, maxUploadBytes),
		newsHandler:        newNewsHandler(router.news),
		healthHandler:      newHealthHandler(router.startupTime),
	}
}
