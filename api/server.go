package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/tooldesk/tooldesk/backend/blob"
	"github.com/tooldesk/tooldesk/backend/config"
	"github.com/tooldesk/tooldesk/backend/database"
	"github.com/tooldesk/tooldesk/backend/services"
)

type Server struct {
	*http.Server
	startupTime time.Time
	background  *sync.WaitGroup
}

func NewServer(c map[string]string, database database.Database, opts ...func(*router)) (Server, error) {
	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	startupTime := time.Now()

	background := &sync.WaitGroup{}
	opts = append([]func(*router){withConfig(c), withStartupTime(startupTime), withBackground(background)}, opts...)
	router := newRouter(database, opts...)

	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,  // Timeout for reading the entire request
		WriteTimeout: writeTimeout, // Timeout for writing the response
		IdleTimeout:  idleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime, background}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
	background  *sync.WaitGroup
	blobStore   blob.Store
	notifier    *services.Notifier
	news        *services.NewsService
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

// withBackground tracks work that outlives a request, such as notification
// e-mails, so shutdown can wait for it.
func withBackground(wg *sync.WaitGroup) func(*router) {
	return func(r *router) {
		r.background = wg
	}
}

// WithBlobStore sets where uploads are kept.
func WithBlobStore(store blob.Store) func(*router) {
	return func(r *router) {
		r.blobStore = store
	}
}

// WithNotifier enables requisition e-mails.
func WithNotifier(notifier *services.Notifier) func(*router) {
	return func(r *router) {
		r.notifier = notifier
	}
}

// WithNews enables the headlines endpoint.
func WithNews(news *services.NewsService) func(*router) {
	return func(r *router) {
		r.news = news
	}
}

func newRouter(database database.Database, opts ...func(*router)) *chi.Mux {
	router := router{startupTime: time.Now(), background: &sync.WaitGroup{}}
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)

	metrics := newMetrics(database)
	chiRouter.Use(metrics.middleware)
	chiRouter.Use(RequestIDMiddleware)
	chiRouter.Use(ClientIPMiddleware(parseTrustedProxies(config.GetList(router.config, "TRUSTED_PROXIES"))))

	acceptedOrigins := config.GetList(router.config, "ACCEPTED_ORIGINS")
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	handlers := initializeHandlers(database, router)

	perMinute := config.GetInt(router.config, "ANALYTICS_RATE_PER_MINUTE", 120)
	analyticsLimiter := newIPRateLimiter(perMinute)

	chiRouter.Handle("/metrics", metrics.handler())
	setupRoutes(chiRouter, handlers, analyticsLimiter.middleware)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}

	// Requests are drained; wait for the work they started
	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Info().Msg("Background work finished")
	case <-gracefullCtx.Done():
		log.Warn().Msg("Shutdown timeout reached with background work still running")
	}
}
