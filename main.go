package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	api "github.com/tooldesk/tooldesk/backend/api"
	"github.com/tooldesk/tooldesk/backend/blob"
	"github.com/tooldesk/tooldesk/backend/config"
	"github.com/tooldesk/tooldesk/backend/database"
	"github.com/tooldesk/tooldesk/backend/errs"
	"github.com/tooldesk/tooldesk/backend/services"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	cfg := config.New()
	setupLogging(cfg)

	log.Info().Msg("Initializing app...")

	ctx := context.Background()

	persister, err := newPersister(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing persistence")
	}

	store := database.NewStore(ctx, persister)
	currentDB := database.New(store)

	if _, err := services.SeedAdmin(ctx, currentDB,
		config.GetString(cfg, "ADMIN_USERNAME", ""),
		config.GetString(cfg, "ADMIN_PASSWORD", ""),
	); err != nil {
		log.Error().Err(err).Msg("Error seeding admin user")
	}

	blobStore, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing file storage")
	}

	notifier := services.NewNotifier(cfg)
	if !notifier.Enabled() {
		log.Info().Msg("RESEND_API_KEY or RESEND_FROM_EMAIL not set, requisition e-mails disabled")
	}

	news := services.NewNewsService(
		config.GetList(cfg, "NEWS_FEEDS"),
		time.Duration(config.GetInt(cfg, "NEWS_CACHE_MINUTES", 15))*time.Minute,
	)

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(cfg, currentDB,
		api.WithBlobStore(blobStore),
		api.WithNotifier(notifier),
		api.WithNews(news),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(config.GetDuration(cfg, "SHUTDOWN_TIMEOUT", 30*time.Second))
}

// setupLogging configures the global logger. LOG_FORMAT=json switches from the
// coloured console writer to plain JSON lines.
func setupLogging(cfg map[string]string) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(cfg, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if strings.EqualFold(config.GetString(cfg, "LOG_FORMAT", "console"), "json") {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

// newPersister picks where the store snapshot lives: a JSON file (default), a
// Postgres row or nowhere.
func newPersister(cfg map[string]string) (database.Persister, error) {
	backend := strings.ToLower(config.GetString(cfg, "STORE_BACKEND", "file"))
	log.Info().Str("backend", backend).Msg("Selecting store backend")

	switch backend {
	case "file":
		path := config.GetString(cfg, "DATA_FILE", "data/store.json")
		log.Info().Str("path", path).Msg("Persisting store to file")
		return database.NewFilePersister(path), nil
	case "memory":
		log.Warn().Msg("Store is in-memory only, data is lost on restart")
		return database.NewMemoryPersister(), nil
	case "postgres":
		return newGormPersister(cfg)
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND %q", backend)
	}
}

func newGormPersister(cfg map[string]string) (database.Persister, error) {
	dsn := config.GetString(cfg, "DATABASE_URL", "")
	if dsn == "" {
		return nil, errs.NewConfigError("DATABASE_URL")
	}

	newLogger := logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test database connection: %w", err)
	}

	persister := database.NewGormPersister(db)
	if err := persister.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate snapshot table: %w", err)
	}
	log.Info().Msg("Persisting store to Postgres")
	return persister, nil
}

func newBlobStore(ctx context.Context, cfg map[string]string) (blob.Store, error) {
	switch backend := strings.ToLower(config.GetString(cfg, "BLOB_BACKEND", "local")); backend {
	case "local":
		dir := config.GetString(cfg, "UPLOAD_DIR", "uploads")
		log.Info().Str("dir", dir).Msg("Storing uploads on disk")
		return blob.NewLocalStore(dir)
	case "s3":
		bucket := config.GetString(cfg, "S3_BUCKET", "")
		if bucket == "" {
			return nil, errs.NewConfigError("S3_BUCKET")
		}
		log.Info().Str("bucket", bucket).Msg("Storing uploads in S3")
		return blob.NewS3Store(ctx, config.GetString(cfg, "AWS_REGION", ""), bucket, config.GetString(cfg, "S3_PREFIX", ""))
	default:
		return nil, fmt.Errorf("unsupported BLOB_BACKEND %q", backend)
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
