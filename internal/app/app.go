package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/quilldesk/wordwar/internal/config"
	"github.com/quilldesk/wordwar/internal/domain/event"
	"github.com/quilldesk/wordwar/internal/domain/project"
	"github.com/quilldesk/wordwar/internal/domain/wordwar"
	"github.com/quilldesk/wordwar/internal/infrastructure/account/scribe"
	"github.com/quilldesk/wordwar/internal/infrastructure/repository/memory"
	"github.com/quilldesk/wordwar/internal/infrastructure/repository/postgres"
	"github.com/quilldesk/wordwar/internal/interfaces/httpapi"
	"github.com/quilldesk/wordwar/internal/platform/cache"
	idgen "github.com/quilldesk/wordwar/internal/platform/id"
	"github.com/quilldesk/wordwar/internal/platform/logging"
	"github.com/quilldesk/wordwar/internal/platform/resilience"
	"github.com/quilldesk/wordwar/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	eventRepo, projectRepo, warRepo, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.EventCacheEnabled {
		eventRepo = newCachedEventRepository(eventRepo, cfg.EventCacheTTL)
	}

	warService := usecase.NewWordWarService(
		eventRepo,
		projectRepo,
		warRepo,
		idgen.NewRandomGenerator(),
		logger,
	)
	recapService := usecase.NewEventRecapService(eventRepo, warRepo, warService, cfg.RecapWorkers)

	scribeClient := scribe.NewClient(
		&http.Client{Timeout: cfg.ScribeTimeout},
		cfg.ScribeBaseURL,
		cfg.ScribeIntrospectPath,
		resilience.CircuitBreakerConfig{
			Enabled:          cfg.ScribeCircuitEnabled,
			FailureThreshold: cfg.ScribeCircuitFailureCount,
			OpenTimeout:      cfg.ScribeCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ScribeCircuitHalfOpenMaxReq,
		},
		logger,
	)

	handler := httpapi.NewHandler(warService, recapService, logger)
	router := httpapi.NewRouter(handler, scribeClient, logger, cfg.CORSAllowedOrigins)

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (event.Repository, project.Repository, wordwar.Repository, error) {
	if cfg.DBURL == "" {
		logger.Warn("DB_URL is empty, using in-memory repositories")
		return memory.NewEventRepository(memory.SeedEvents()),
			memory.NewProjectRepository(memory.SeedProjects()),
			memory.NewWordWarRepository(),
			nil
	}

	db, err := connectDB(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := postgres.BootstrapSeed(ctx, db); err != nil {
		return nil, nil, nil, fmt.Errorf("bootstrap seed: %w", err)
	}

	return postgres.NewEventRepository(db),
		postgres.NewProjectRepository(db),
		postgres.NewWordWarRepository(db),
		nil
}

func connectDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)

	return db, nil
}

// cachedEventRepository keeps event reads briefly in memory. Events change
// rarely while Create and Join hit the event gate on every call.
type cachedEventRepository struct {
	inner event.Repository
	store *cache.Store
}

type cachedEventEntry struct {
	event  event.Event
	exists bool
}

func newCachedEventRepository(inner event.Repository, ttl time.Duration) *cachedEventRepository {
	return &cachedEventRepository{
		inner: inner,
		store: cache.NewStore(ttl),
	}
}

func (r *cachedEventRepository) GetByID(ctx context.Context, eventID string) (event.Event, bool, error) {
	value, err := r.store.GetOrLoad(ctx, "event:"+eventID, func(ctx context.Context) (any, error) {
		ev, exists, err := r.inner.GetByID(ctx, eventID)
		if err != nil {
			return nil, err
		}
		return cachedEventEntry{event: ev, exists: exists}, nil
	})
	if err != nil {
		return event.Event{}, false, err
	}

	entry, ok := value.(cachedEventEntry)
	if !ok {
		return r.inner.GetByID(ctx, eventID)
	}
	return entry.event, entry.exists, nil
}
