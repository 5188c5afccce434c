package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tooldesk/tooldesk/backend/database"
	"github.com/tooldesk/tooldesk/backend/errs"
	"github.com/tooldesk/tooldesk/backend/models"
)

const sessionIDHeader = "X-Session-ID"

type analyticsHandler struct {
	responder     Responder
	logger        zerolog.Logger
	analyticsRepo *database.AnalyticsRepo
	appRepo       *database.AppRepo
	now           func() time.Time
}

func newAnalyticsHandler(analyticsRepo *database.AnalyticsRepo, appRepo *database.AppRepo) analyticsHandler {
	logger := log.With().Str("handlerName", "analyticsHandler").Logger()

	return analyticsHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		analyticsRepo: analyticsRepo,
		appRepo:       appRepo,
		now:           time.Now,
	}
}

// createEvent records one app view
// @Summary Record app view
// @Description appName and appCategory are taken from the app when only appId is sent. ipAddress, userAgent and sessionId default to the request's values.
// @Tags Analytics
// @Accept json
// @Produce json
// @Param event body models.NewAnalyticsEvent true "View event"
// @Success 201 {object} models.AnalyticsEvent
// @Failure 400 {object} ErrorResponse "Bad Request - Validation failed"
// @Failure 429 {object} ErrorResponse "Too Many Requests"
// @Router /analytics [post]
func (h analyticsHandler) createEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input models.NewAnalyticsEvent
		if err := decodeJSON(w, r, &input, maxJSONBodyBytes); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if input.AppID != nil {
			if app, ok := h.appRepo.FindByID(*input.AppID); ok {
				if input.AppName == "" {
					input.AppName = app.Name
				}
				if input.AppCategory == "" {
					input.AppCategory = app.Category
				}
			}
		}
		if input.IPAddress == nil {
			if ip := ctxGetClientIP(r.Context()); ip != "" {
				input.IPAddress = &ip
			}
		}
		if input.UserAgent == nil {
			if ua := r.UserAgent(); ua != "" {
				input.UserAgent = &ua
			}
		}
		if input.SessionID == nil {
			if session := r.Header.Get(sessionIDHeader); session != "" {
				input.SessionID = &session
			}
		}

		if err := models.Validate(&input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		event, err := h.analyticsRepo.Add(r.Context(), input)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("record view", "analytics event", err))
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, event)
	}
}

// getSummary aggregates recorded views
// @Summary Analytics summary
// @Tags Analytics
// @Produce json
// @Param days query int false "Only count the last N days"
// @Success 200 {object} models.AnalyticsSummary
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid days"
// @Router /analytics/summary [get]
func (h analyticsHandler) getSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var since time.Time
		if raw := r.URL.Query().Get("days"); raw != "" {
			days, err := strconv.Atoi(raw)
			if err != nil || days < 0 {
				h.responder.WriteError(w, errs.NewInvalidFieldError("days", "must be a non-negative integer"))
				return
			}
			if days > 0 {
				since = h.now().AddDate(0, 0, -days)
			}
		}

		h.responder.WriteJSON(w, h.analyticsRepo.Summary(since))
	}
}
