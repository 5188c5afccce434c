package api

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tooldesk/tooldesk/backend/database"
	"github.com/tooldesk/tooldesk/backend/errs"
	"github.com/tooldesk/tooldesk/backend/models"
	"github.com/tooldesk/tooldesk/backend/services"
)

const notificationTimeout = 30 * time.Second

type requisitionHandler struct {
	responder       Responder
	logger          zerolog.Logger
	requisitionRepo *database.RequisitionRepo
	notifier        *services.Notifier
	background      *sync.WaitGroup
}

func newRequisitionHandler(requisitionRepo *database.RequisitionRepo, notifier *services.Notifier, background *sync.WaitGroup) requisitionHandler {
	logger := log.With().Str("handlerName", "requisitionHandler").Logger()

	return requisitionHandler{
		responder:       NewResponder(logger),
		logger:          logger,
		requisitionRepo: requisitionRepo,
		notifier:        notifier,
		background:      background,
	}
}

// notifyAsync sends a notification after the response is on its way. Failures
// are only logged. Shutdown waits on h.background for pending sends.
func (h requisitionHandler) notifyAsync(action string, requisitionID int, send func(ctx context.Context) error) {
	if !h.notifier.Enabled() {
		return
	}

	h.background.Add(1)
	go func() {
		defer h.background.Done()

		ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
		defer cancel()

		if err := send(ctx); err != nil {
			h.logger.Warn().Err(err).
				Str("action", action).
				Int("requisitionId", requisitionID).
				Msg("Failed to send requisition notification")
		}
	}()
}

// getRequisitions lists requisitions
// @Summary List requisitions
// @Description public=true hides private requisitions; status keeps only that status.
// @Tags Requisitions
// @Produce json
// @Param status query string false "pending, approved, rejected, in-progress or completed"
// @Param public query bool false "Only public requisitions"
// @Success 200 {array} models.ProjectRequisition
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid filter"
// @Router /requisitions [get]
func (h requisitionHandler) getRequisitions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		var filter models.RequisitionFilter
		if status := query.Get("status"); status != "" {
			filter.Status = models.RequisitionStatus(status)
			if !filter.Status.Known() {
				h.responder.WriteError(w, errs.NewInvalidFieldError("status", "must be one of pending, approved, rejected, in-progress, completed"))
				return
			}
		}
		if public := query.Get("public"); public != "" {
			publicOnly, err := strconv.ParseBool(public)
			if err != nil {
				h.responder.WriteError(w, errs.NewInvalidFieldError("public", "must be true or false"))
				return
			}
			filter.PublicOnly = publicOnly
		}

		h.responder.WriteJSON(w, h.requisitionRepo.FindAll(filter))
	}
}

// @Summary Get requisition
// @Tags Requisitions
// @Produce json
// @Param requisitionID path int true "Requisition ID"
// @Success 200 {object} models.ProjectRequisition
// @Failure 404 {object} ErrorResponse "Not Found - Requisition not found"
// @Router /requisitions/{requisitionID} [get]
func (h requisitionHandler) getRequisition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requisitionID, err := pathID(r, "requisitionID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		requisition, ok := h.requisitionRepo.FindByID(requisitionID)
		if !ok {
			h.responder.WriteError(w, errs.NewNotFound("requisition"))
			return
		}

		h.responder.WriteJSON(w, requisition)
	}
}

// createRequisition submits a project request and notifies the admins
// @Summary Submit requisition
// @Tags Requisitions
// @Accept json
// @Produce json
// @Param requisition body models.NewRequisition true "Requisition data"
// @Success 201 {object} models.ProjectRequisition
// @Failure 400 {object} ErrorResponse "Bad Request - Validation failed"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error saving requisition"
// @Router /requisitions [post]
func (h requisitionHandler) createRequisition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input models.NewRequisition
		if err := decodeJSON(w, r, &input, maxJSONBodyBytes); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := models.Validate(&input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		requisition, err := h.requisitionRepo.Add(r.Context(), input)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create requisition", "requisition", err))
			return
		}

		h.logger.Info().Int("requisitionId", requisition.ID).Str("title", requisition.Title).Msg("Requisition submitted")
		h.notifyAsync("submitted", requisition.ID, func(ctx context.Context) error {
			return h.notifier.RequisitionSubmitted(ctx, requisition)
		})

		h.responder.WriteJSONStatus(w, http.StatusCreated, requisition)
	}
}

// updateRequisition applies a partial update. A status change e-mails the
// requester.
// @Summary Update requisition
// @Tags Requisitions
// @Accept json
// @Produce json
// @Param requisitionID path int true "Requisition ID"
// @Param requisition body models.RequisitionPatch true "Fields to change"
// @Success 200 {object} models.ProjectRequisition
// @Failure 400 {object} ErrorResponse "Bad Request - Validation failed"
// @Failure 404 {object} ErrorResponse "Not Found - Requisition not found"
// @Router /requisitions/{requisitionID} [patch]
func (h requisitionHandler) updateRequisition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requisitionID, err := pathID(r, "requisitionID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		existing, ok := h.requisitionRepo.FindByID(requisitionID)
		if !ok {
			h.responder.WriteError(w, errs.NewNotFound("requisition"))
			return
		}

		var patch models.RequisitionPatch
		if err := decodeJSON(w, r, &patch, maxJSONBodyBytes); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := models.Validate(&patch); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		requisition, ok, err := h.requisitionRepo.Update(r.Context(), requisitionID, patch)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update requisition", "requisition", err))
			return
		}
		if !ok {
			h.responder.WriteError(w, errs.NewNotFound("requisition"))
			return
		}

		if requisition.Status != existing.Status {
			h.logger.Info().
				Int("requisitionId", requisition.ID).
				Str("from", string(existing.Status)).
				Str("to", string(requisition.Status)).
				Msg("Requisition status changed")
			h.notifyAsync("status changed", requisition.ID, func(ctx context.Context) error {
				return h.notifier.RequisitionStatusChanged(ctx, requisition, existing.Status)
			})
		}

		h.responder.WriteJSON(w, requisition)
	}
}

func (h requisitionHandler) deleteRequisition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requisitionID, err := pathID(r, "requisitionID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		ok, err := h.requisitionRepo.Delete(r.Context(), requisitionID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete requisition", "requisition", err))
			return
		}
		if !ok {
			h.responder.WriteError(w, errs.NewNotFound("requisition"))
			return
		}

		h.responder.WriteMessage(w, "Requisition deleted successfully")
	}
}
