package api

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tooldesk/tooldesk/backend/database"
	"github.com/tooldesk/tooldesk/backend/errs"
	"github.com/tooldesk/tooldesk/backend/models"
)

type subcategoryHandler struct {
	responder       Responder
	logger          zerolog.Logger
	subcategoryRepo *database.SubcategoryRepo
}

func newSubcategoryHandler(subcategoryRepo *database.SubcategoryRepo) subcategoryHandler {
	logger := log.With().Str("handlerName", "subcategoryHandler").Logger()

	return subcategoryHandler{
		responder:       NewResponder(logger),
		logger:          logger,
		subcategoryRepo: subcategoryRepo,
	}
}

// getSubcategories lists subcategories, narrowed to one category when
// categoryId is given
// @Summary List subcategories
// @Tags Subcategories
// @Produce json
// @Param categoryId query int false "Category ID"
// @Success 200 {array} models.Subcategory
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid categoryId"
// @Router /subcategories [get]
func (h subcategoryHandler) getSubcategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("categoryId")
		if raw == "" {
			h.responder.WriteJSON(w, h.subcategoryRepo.FindAll())
			return
		}

		categoryID, err := strconv.Atoi(raw)
		if err != nil || categoryID < 1 {
			h.responder.WriteError(w, errs.NewInvalidFieldError("categoryId", "must be a positive integer"))
			return
		}

		h.responder.WriteJSON(w, h.subcategoryRepo.FindByCategory(categoryID))
	}
}

func (h subcategoryHandler) getSubcategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subcategoryID, err := pathID(r, "subcategoryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		subcategory, ok := h.subcategoryRepo.FindByID(subcategoryID)
		if !ok {
			h.responder.WriteError(w, errs.NewNotFound("subcategory"))
			return
		}

		h.responder.WriteJSON(w, subcategory)
	}
}

// createSubcategory creates a subcategory. categoryId is not checked against
// existing categories.
// @Summary Create subcategory
// @Tags Subcategories
// @Accept json
// @Produce json
// @Param subcategory body models.NewSubcategory true "Subcategory data"
// @Success 201 {object} models.Subcategory
// @Failure 400 {object} ErrorResponse "Bad Request - Validation failed"
// @Router /subcategories [post]
func (h subcategoryHandler) createSubcategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input models.NewSubcategory
		if err := decodeJSON(w, r, &input, maxJSONBodyBytes); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := models.Validate(&input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		subcategory, err := h.subcategoryRepo.Add(r.Context(), input)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create subcategory", "subcategory", err))
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, subcategory)
	}
}

func (h subcategoryHandler) updateSubcategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subcategoryID, err := pathID(r, "subcategoryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if _, ok := h.subcategoryRepo.FindByID(subcategoryID); !ok {
			h.responder.WriteError(w, errs.NewNotFound("subcategory"))
			return
		}

		var patch models.SubcategoryPatch
		if err := decodeJSON(w, r, &patch, maxJSONBodyBytes); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := models.Validate(&patch); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		subcategory, ok, err := h.subcategoryRepo.Update(r.Context(), subcategoryID, patch)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update subcategory", "subcategory", err))
			return
		}
		if !ok {
			h.responder.WriteError(w, errs.NewNotFound("subcategory"))
			return
		}

		h.responder.WriteJSON(w, subcategory)
	}
}

func (h subcategoryHandler) deleteSubcategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subcategoryID, err := pathID(r, "subcategoryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		ok, err := h.subcategoryRepo.Delete(r.Context(), subcategoryID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete subcategory", "subcategory", err))
			return
		}
		if !ok {
			h.responder.WriteError(w, errs.NewNotFound("subcategory"))
			return
		}

		h.responder.WriteMessage(w, "Subcategory deleted successfully")
	}
}
