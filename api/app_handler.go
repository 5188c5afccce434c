package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
	"github.com/tooldesk/tooldesk/backend/database"
	"github.com/tooldesk/tooldesk/backend/errs"
	"github.com/tooldesk/tooldesk/backend/models"
)

const (
	defaultQRCodeSize = 256
	minQRCodeSize     = 64
	maxQRCodeSize     = 1024
)

type appHandler struct {
	responder Responder
	logger    zerolog.Logger
	appRepo   *database.AppRepo
}

func newAppHandler(appRepo *database.AppRepo) appHandler {
	logger := log.With().Str("handlerName", "appHandler").Logger()

	return appHandler{
		responder: NewResponder(logger),
		logger:    logger,
		appRepo:   appRepo,
	}
}

// getApps lists active apps, optionally filtered
// @Summary List apps
// @Description Lists active apps in insertion order. search matches name or description case-insensitively; category and subcategory must match exactly. All given filters must hold.
// @Tags Apps
// @Produce json
// @Param search query string false "Name or description substring"
// @Param category query string false "Exact category name"
// @Param subcategory query string false "Exact subcategory name"
// @Success 200 {array} models.WebApp
// @Router /apps [get]
func (h appHandler) getApps() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := database.AppFilter{
			Query:       strings.TrimSpace(query.Get("search")),
			Category:    strings.TrimSpace(query.Get("category")),
			Subcategory: strings.TrimSpace(query.Get("subcategory")),
		}

		h.responder.WriteJSON(w, h.appRepo.Search(filter))
	}
}

// getAdminApps lists every app, active or not, by sort order
// @Summary List all apps for administration
// @Tags Apps
// @Produce json
// @Success 200 {array} models.WebApp
// @Router /admin/apps [get]
func (h appHandler) getAdminApps() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, h.appRepo.FindAllOrdered())
	}
}

// getApp retrieves a specific app by ID
// @Summary Get app
// @Tags Apps
// @Produce json
// @Param appID path int true "App ID"
// @Success 200 {object} models.WebApp
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid appID"
// @Failure 404 {object} ErrorResponse "Not Found - App not found"
// @Router /apps/{appID} [get]
func (h appHandler) getApp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appID, err := pathID(r, "appID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		app, ok := h.appRepo.FindByID(appID)
		if !ok {
			h.responder.WriteError(w, errs.NewNotFound("app"))
			return
		}

		h.responder.WriteJSON(w, app)
	}
}

// createApp adds an app to the catalog
// @Summary Create app
// @Tags Apps
// @Accept json
// @Produce json
// @Param app body models.NewWebApp true "App data"
// @Success 201 {object} models.WebApp "Created app"
// @Failure 400 {object} ErrorResponse "Bad Request - Validation failed"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error saving app"
// @Router /apps [post]
func (h appHandler) createApp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input models.NewWebApp
		if err := decodeJSON(w, r, &input, maxJSONBodyBytes); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := models.Validate(&input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		app, err := h.appRepo.Add(r.Context(), input)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create app", "app", err))
			return
		}

		h.logger.Info().Int("appId", app.ID).Str("name", app.Name).Msg("App created")
		h.responder.WriteJSONStatus(w, http.StatusCreated, app)
	}
}

// updateApp applies a partial update to an app
// @Summary Update app
// @Description Only the fields present in the body change.
// @Tags Apps
// @Accept json
// @Produce json
// @Param appID path int true "App ID"
// @Param app body models.WebAppPatch true "Fields to change"
// @Success 200 {object} models.WebApp "Updated app"
// @Failure 400 {object} ErrorResponse "Bad Request - Validation failed"
// @Failure 404 {object} ErrorResponse "Not Found - App not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error saving app"
// @Router /apps/{appID} [patch]
func (h appHandler) updateApp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appID, err := pathID(r, "appID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if _, ok := h.appRepo.FindByID(appID); !ok {
			h.responder.WriteError(w, errs.NewNotFound("app"))
			return
		}

		var patch models.WebAppPatch
		if err := decodeJSON(w, r, &patch, maxJSONBodyBytes); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := models.Validate(&patch); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		app, ok, err := h.appRepo.Update(r.Context(), appID, patch)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update app", "app", err))
			return
		}
		if !ok {
			h.responder.WriteError(w, errs.NewNotFound("app"))
			return
		}

		h.responder.WriteJSON(w, app)
	}
}

// deleteApp removes an app
// @Summary Delete app
// @Tags Apps
// @Produce json
// @Param appID path int true "App ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse "Not Found - App not found"
// @Router /apps/{appID} [delete]
func (h appHandler) deleteApp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appID, err := pathID(r, "appID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		ok, err := h.appRepo.Delete(r.Context(), appID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete app", "app", err))
			return
		}
		if !ok {
			h.responder.WriteError(w, errs.NewNotFound("app"))
			return
		}

		h.logger.Info().Int("appId", appID).Msg("App deleted")
		h.responder.WriteMessage(w, "App deleted successfully")
	}
}

// reorderApps sets sortOrder from the position of each ID in the list
// @Summary Reorder apps
// @Description IDs that do not exist are ignored. Apps missing from the list keep their sort order.
// @Tags Apps
// @Accept json
// @Produce json
// @Param order body models.ReorderRequest true "App IDs in display order"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Bad Request - reorderedIds missing"
// @Router /apps/reorder [patch]
func (h appHandler) reorderApps() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input models.ReorderRequest
		if err := decodeJSON(w, r, &input, maxJSONBodyBytes); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := models.Validate(&input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.appRepo.Reorder(r.Context(), input.ReorderedIDs); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("reorder apps", "app", err))
			return
		}

		h.responder.WriteMessage(w, "Apps reordered successfully")
	}
}

// getAppQRCode renders the app URL as a PNG QR code
// @Summary App QR code
// @Tags Apps
// @Produce png
// @Param appID path int true "App ID"
// @Param size query int false "Image size in pixels (64-1024)"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse "Not Found - App not found"
// @Router /apps/{appID}/qrcode [get]
func (h appHandler) getAppQRCode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appID, err := pathID(r, "appID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		size := defaultQRCodeSize
		if raw := r.URL.Query().Get("size"); raw != "" {
			size, err = strconv.Atoi(raw)
			if err != nil || size < minQRCodeSize || size > maxQRCodeSize {
				h.responder.WriteError(w, errs.NewInvalidFieldError("size", "must be an integer between 64 and 1024"))
				return
			}
		}

		app, ok := h.appRepo.FindByID(appID)
		if !ok {
			h.responder.WriteError(w, errs.NewNotFound("app"))
			return
		}

		png, err := qrcode.Encode(app.URL, qrcode.Medium, size)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to render QR code", err))
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		if _, err := w.Write(png); err != nil {
			h.logger.Error().Err(err).Msg("error writing QR code")
		}
	}
}
