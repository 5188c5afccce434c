package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tooldesk/tooldesk/backend/database"
	"github.com/tooldesk/tooldesk/backend/errs"
	"github.com/tooldesk/tooldesk/backend/models"
)

type categoryHandler struct {
	responder    Responder
	logger       zerolog.Logger
	categoryRepo *database.CategoryRepo
}

func newCategoryHandler(categoryRepo *database.CategoryRepo) categoryHandler {
	logger := log.With().Str("handlerName", "categoryHandler").Logger()

	return categoryHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		categoryRepo: categoryRepo,
	}
}

// getCategories lists every category
// @Summary List categories
// @Tags Categories
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (h categoryHandler) getCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, h.categoryRepo.FindAll())
	}
}

// @Summary Get category
// @Tags Categories
// @Produce json
// @Param categoryID path int true "Category ID"
// @Success 200 {object} models.Category
// @Failure 404 {object} ErrorResponse "Not Found - Category not found"
// @Router /categories/{categoryID} [get]
func (h categoryHandler) getCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := pathID(r, "categoryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		category, ok := h.categoryRepo.FindByID(categoryID)
		if !ok {
			h.responder.WriteError(w, errs.NewNotFound("category"))
			return
		}

		h.responder.WriteJSON(w, category)
	}
}

// createCategory creates a new category
// @Summary Create category
// @Tags Categories
// @Accept json
// @Produce json
// @Param category body models.NewCategory true "Category data"
// @Success 201 {object} models.Category
// @Failure 400 {object} ErrorResponse "Bad Request - Validation failed"
// @Router /categories [post]
func (h categoryHandler) createCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input models.NewCategory
		if err := decodeJSON(w, r, &input, maxJSONBodyBytes); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := models.Validate(&input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		category, err := h.categoryRepo.Add(r.Context(), input)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create category", "category", err))
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, category)
	}
}

// @Summary Update category
// @Tags Categories
// @Accept json
// @Produce json
// @Param categoryID path int true "Category ID"
// @Param category body models.CategoryPatch true "Fields to change"
// @Success 200 {object} models.Category
// @Failure 404 {object} ErrorResponse "Not Found - Category not found"
// @Router /categories/{categoryID} [patch]
func (h categoryHandler) updateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := pathID(r, "categoryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if _, ok := h.categoryRepo.FindByID(categoryID); !ok {
			h.responder.WriteError(w, errs.NewNotFound("category"))
			return
		}

		var patch models.CategoryPatch
		if err := decodeJSON(w, r, &patch, maxJSONBodyBytes); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := models.Validate(&patch); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		category, ok, err := h.categoryRepo.Update(r.Context(), categoryID, patch)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update category", "category", err))
			return
		}
		if !ok {
			h.responder.WriteError(w, errs.NewNotFound("category"))
			return
		}

		h.responder.WriteJSON(w, category)
	}
}

// deleteCategory hard-deletes a category. Apps keep the category name they
// were saved with.
// @Summary Delete category
// @Tags Categories
// @Param categoryID path int true "Category ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse "Not Found - Category not found"
// @Router /categories/{categoryID} [delete]
func (h categoryHandler) deleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := pathID(r, "categoryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		ok, err := h.categoryRepo.Delete(r.Context(), categoryID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete category", "category", err))
			return
		}
		if !ok {
			h.responder.WriteError(w, errs.NewNotFound("category"))
			return
		}

		h.responder.WriteMessage(w, "Category deleted successfully")
	}
}
