package api

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/tooldesk/tooldesk/backend/models"
	"github.com/tooldesk/tooldesk/backend/services"
)

type newsHandler struct {
	responder Responder
	news      *services.NewsService
}

func newNewsHandler(news *services.NewsService) newsHandler {
	logger := log.With().Str("handlerName", "newsHandler").Logger()

	return newsHandler{
		responder: NewResponder(logger),
		news:      news,
	}
}

// getNews returns cached headlines from the configured feeds
// @Summary News headlines
// @Tags News
// @Produce json
// @Success 200 {array} models.NewsItem
// @Router /news [get]
func (h newsHandler) getNews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.news == nil {
			h.responder.WriteJSON(w, []models.NewsItem{})
			return
		}
		h.responder.WriteJSON(w, h.news.Headlines(r.Context()))
	}
}
