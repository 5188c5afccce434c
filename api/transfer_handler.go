package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tooldesk/tooldesk/backend/database"
	"github.com/tooldesk/tooldesk/backend/models"
	"github.com/tooldesk/tooldesk/backend/services"
)

type transferHandler struct {
	responder Responder
	logger    zerolog.Logger
	db        database.Database
	now       func() time.Time
}

func newTransferHandler(db database.Database) transferHandler {
	logger := log.With().Str("handlerName", "transferHandler").Logger()

	return transferHandler{
		responder: NewResponder(logger),
		logger:    logger,
		db:        db,
		now:       time.Now,
	}
}

// exportData downloads the catalog as JSON
// @Summary Export catalog
// @Description Apps, categories and subcategories as a downloadable JSON document.
// @Tags Transfer
// @Produce json
// @Success 200 {object} models.ExportEnvelope
// @Router /export [get]
func (h transferHandler) exportData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := h.now()
		envelope := services.Export(h.db, now)

		filename := fmt.Sprintf("tooldesk-export-%s.json", now.UTC().Format("2006-01-02"))
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		h.responder.WriteJSON(w, envelope)
	}
}

// importData folds an export document into the catalog
// @Summary Import catalog
// @Description Records that fail validation or duplicate existing ones are skipped and listed. The request never fails because of a single record.
// @Tags Transfer
// @Accept json
// @Produce json
// @Param export body models.ImportEnvelope true "Export document"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid JSON"
// @Router /import [post]
func (h transferHandler) importData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var envelope models.ImportEnvelope
		if err := decodeJSON(w, r, &envelope, maxImportBodyBytes); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if envelope.Version != "" && envelope.Version != models.ExportVersion {
			h.logger.Warn().Str("version", envelope.Version).Msg("Importing export with unexpected version")
		}

		result := services.Import(r.Context(), h.db, envelope)
		h.logger.Info().
			Int("apps", result.Imported.Apps).
			Int("categories", result.Imported.Categories).
			Int("subcategories", result.Imported.Subcategories).
			Int("skipped", len(result.Skipped)).
			Msg("Import finished")

		h.responder.WriteJSON(w, result)
	}
}
