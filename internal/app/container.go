package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sandy/internal/config"
	"sandy/internal/database/migration"
	"sandy/internal/database/orm"
	dbpostgres "sandy/internal/database/postgres"
	"sandy/internal/infrastructure/cache"
	"sandy/internal/metrics"
	"sandy/internal/pkg/jwt"
	"sandy/internal/repository"
	"sandy/internal/service"
	"sandy/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Container owns every long-lived dependency of the API. Close releases them
// in reverse order of construction.
type Container struct {
	Config config.Config
	Logger zerolog.Logger

	DB       *dbpostgres.Pool
	ORM      *gorm.DB
	Cache    *cache.Redis
	JWT      jwt.Service
	Service  *service.PostgresService
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Auth           *usecase.Auth
	Users          *usecase.User
	Profiles       *usecase.Profile
	Conversations  *usecase.Conversation
	Recommendation *usecase.Recommendation
	Interactions   *usecase.Interaction
	Analytics      *usecase.Analytics
}

// NewContainer connects to Postgres and Redis and applies pending
// migrations. A Redis outage is tolerated; a Postgres one is not.
func NewContainer(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Container, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	applied, err := migration.Runner{Logger: logger}.Run(connectCtx, db.SQLDB())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if applied > 0 {
		logger.Info().Int("applied", applied).Msg("migrations applied")
	}

	gdb, err := orm.Open(db.SQLDB(), logger.With().Str("component", "gorm").Logger())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		ORM:    gdb,
		Cache:  cache.NewRedis(connectCtx, cfg.Redis, logger),
	}
	c.wire()
	return c, nil
}

func (c *Container) wire() {
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.New(c.Registry)

	auth := c.Config.Auth
	c.JWT = jwt.NewHMACService(auth.JWTSecret, auth.RefreshSecret(), auth.AccessTokenTTL(), auth.RefreshTokenTTL())
	c.Service = service.NewPostgresService(c.DB, c.JWT, service.OptionsFromConfig(c.Config), c.Logger)

	c.Auth = usecase.NewAuthUsecase(c.Service, c.Cache, c.JWT, c.Metrics, c.Logger)
	c.Users = usecase.NewUserUsecase(c.Service)
	c.Profiles = usecase.NewProfileUsecase(repository.NewGormProfileRepository(c.ORM), c.Service)
	c.Conversations = usecase.NewConversationUsecase(repository.NewGormConversationRepository(c.ORM), c.Service)
	c.Recommendation = usecase.NewRecommendationUsecase(repository.NewGormRecommendationRepository(c.ORM), c.Service)
	c.Interactions = usecase.NewInteractionUsecase(repository.NewGormInteractionRepository(c.ORM), c.Service)
	c.Analytics = usecase.NewAnalyticsUsecase(c.Service, c.Cache, c.Metrics, c.Logger)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
