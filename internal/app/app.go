package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/rosvybory/observadores/internal/account"
	"github.com/rosvybory/observadores/internal/auth"
	"github.com/rosvybory/observadores/internal/config"
	"github.com/rosvybory/observadores/internal/db"
	"github.com/rosvybory/observadores/internal/merge"
	"github.com/rosvybory/observadores/internal/metrics"
	"github.com/rosvybory/observadores/internal/repo"
	"github.com/rosvybory/observadores/internal/roles"
	"github.com/rosvybory/observadores/internal/service"
	"github.com/rosvybory/observadores/internal/sms"
)

// App reúne conexões e serviços compartilhados pelos binários.
type App struct {
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	JWT     *auth.JWTManager
	Metrics *metrics.Metrics
	Catalog *roles.Catalog
	Store   *account.Store
	SMS     *sms.Service
	Users   *service.UserService
	Auth    *service.AuthService
	RBAC    *service.RBACService
	Regions *service.RegionService
}

// New conecta ao Postgres e ao Redis e monta os serviços.
func New(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*App, error) {
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)

	queries := repo.New(pool)
	m := metrics.New(reg)
	catalog := roles.NewCatalog(queries, redisClient, cfg.RoleCacheTTL)
	store := account.NewStore(pool, catalog)

	gateway := sms.NewGatewayClient(sms.GatewayOptions{
		BaseURL: cfg.SMS.GatewayURL,
		Token:   cfg.SMS.Token,
		Sender:  cfg.SMS.Sender,
		Timeout: cfg.SMS.Timeout,
	})
	if gateway == nil {
		log.Warn().Msg("SMS_GATEWAY_URL vazio: senhas não serão enviadas")
	}
	smsService := sms.NewService(gateway, redisClient, cfg.SMS.LoginURL, m, log.Logger)

	merger := merge.New(catalog, queries, queries, auth.Credentials{}, log.With().Str("component", "merge").Logger())
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)

	return &App{
		Pool:    pool,
		Redis:   redisClient,
		JWT:     jwtManager,
		Metrics: m,
		Catalog: catalog,
		Store:   store,
		SMS:     smsService,
		Users:   service.NewUserService(queries, store, merger, smsService, m, log.Logger),
		Auth:    service.NewAuthService(store, redisClient, jwtManager),
		RBAC:    service.NewRBACService(queries, catalog),
		Regions: service.NewRegionService(queries),
	}, nil
}

// Close libera conexões.
func (a *App) Close() {
	_ = a.Redis.Close()
	a.Pool.Close()
}
