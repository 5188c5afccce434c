package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// setupRoutes mounts every endpoint under /api. There is no authentication in
// front of these routes; the admin gate lives in the frontend.
func setupRoutes(r chi.Router, handlers *routeHandlers, analyticsLimiter func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Use(HTTPLoggingMiddleware)

		r.Get("/health", handlers.healthHandler.getHealth())

		// App catalog
		r.Get("/apps", handlers.appHandler.getApps())
		r.Post("/apps", handlers.appHandler.createApp())
		r.Patch("/apps/reorder", handlers.appHandler.reorderApps())
		r.Get("/apps/{appID}", handlers.appHandler.getApp())
		r.Patch("/apps/{appID}", handlers.appHandler.updateApp())
		r.Delete("/apps/{appID}", handlers.appHandler.deleteApp())
		r.Get("/apps/{appID}/qrcode", handlers.appHandler.getAppQRCode())
		r.Get("/admin/apps", handlers.appHandler.getAdminApps())

		// Categories
		r.Get("/categories", handlers.categoryHandler.getCategories())
		r.Post("/categories", handlers.categoryHandler.createCategory())
		r.Get("/categories/{categoryID}", handlers.categoryHandler.getCategory())
		r.Patch("/categories/{categoryID}", handlers.categoryHandler.updateCategory())
		r.Delete("/categories/{categoryID}", handlers.categoryHandler.deleteCategory())

		// Subcategories
		r.Get("/subcategories", handlers.subcategoryHandler.getSubcategories())
		r.Post("/subcategories", handlers.subcategoryHandler.createSubcategory())
		r.Get("/subcategories/{subcategoryID}", handlers.subcategoryHandler.getSubcategory())
		r.Patch("/subcategories/{subcategoryID}", handlers.subcategoryHandler.updateSubcategory())
		r.Delete("/subcategories/{subcategoryID}", handlers.subcategoryHandler.deleteSubcategory())

		// Project requisitions
		r.Get("/requisitions", handlers.requisitionHandler.getRequisitions())
		r.Post("/requisitions", handlers.requisitionHandler.createRequisition())
		r.Get("/requisitions/{requisitionID}", handlers.requisitionHandler.getRequisition())
		r.Patch("/requisitions/{requisitionID}", handlers.requisitionHandler.updateRequisition())
		r.Delete("/requisitions/{requisitionID}", handlers.requisitionHandler.deleteRequisition())

		// Analytics
		r.With(analyticsLimiter).Post("/analytics", handlers.analyticsHandler.createEvent())
		r.Get("/analytics/summary", handlers.analyticsHandler.getSummary())

		// Import / export
		r.Get("/export", handlers.transferHandler.exportData())
		r.Post("/import", handlers.transferHandler.importData())

		// Files
		r.Post("/upload", handlers.fileHandler.upload())
		r.Get("/files/{filename}", handlers.fileHandler.serveFile())

		r.Get("/news", handlers.newsHandler.getNews())
	})
}
