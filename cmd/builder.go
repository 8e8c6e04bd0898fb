package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SChris-dev/EcoShop-API/api"
	"github.com/SChris-dev/EcoShop-API/api/health"
	apiorder "github.com/SChris-dev/EcoShop-API/api/order"
	apiproduct "github.com/SChris-dev/EcoShop-API/api/product"
	catalogapp "github.com/SChris-dev/EcoShop-API/application/catalog"
	orderapp "github.com/SChris-dev/EcoShop-API/application/order"
	"github.com/SChris-dev/EcoShop-API/config"
	"github.com/SChris-dev/EcoShop-API/domain/catalog"
	orderdomain "github.com/SChris-dev/EcoShop-API/domain/order"
	"github.com/SChris-dev/EcoShop-API/domain/shared"
	"github.com/SChris-dev/EcoShop-API/infrastructure/idempotency"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence/gormdb"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence/memory"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence/retry"
	"github.com/SChris-dev/EcoShop-API/pkg/auth"
	"github.com/SChris-dev/EcoShop-API/pkg/logger"
	"github.com/SChris-dev/EcoShop-API/pkg/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// storage is the set of ports one backend provides.
type storage struct {
	products  catalog.Repository
	inventory catalog.Inventory
	orders    orderdomain.Repository
	uow       shared.UnitOfWork
	db        *gorm.DB
}

// AppBuilder assembles the server from configuration. Tests replace pieces
// with the With* methods before Build.
type AppBuilder struct {
	cfg     *config.Config
	store   *storage
	idem    orderapp.IdempotencyStore
	metrics *metrics.ServerMetrics
	rdb     *redis.Client
}

func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{cfg: cfg}
}

// WithMemoryStore skips database setup and serves from s.
func (b *AppBuilder) WithMemoryStore(s *memory.Store) *AppBuilder {
	b.store = memoryStorage(s)
	return b
}

// WithIdempotencyStore skips Redis setup.
func (b *AppBuilder) WithIdempotencyStore(s orderapp.IdempotencyStore) *AppBuilder {
	b.idem = s
	return b
}

func (b *AppBuilder) Build() (*App, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger.Info("Starting application",
		zap.String("app", b.cfg.App.Name),
		zap.String("version", b.cfg.App.Version),
		zap.String("env", b.cfg.App.Env))

	if b.cfg.Metrics.Enabled {
		b.metrics = metrics.NewServerMetrics(b.cfg.Metrics.Namespace)
	}

	if b.store == nil {
		s, err := b.initStorage()
		if err != nil {
			return nil, err
		}
		b.store = s
	}
	if b.idem == nil {
		idem, err := b.initIdempotency()
		if err != nil {
			return nil, err
		}
		b.idem = idem
	}

	issuer, err := auth.NewIssuer(b.cfg.Auth.JWTSecret, b.cfg.Auth.Issuer, b.cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	orderService := orderapp.NewApplicationService(b.store.products, b.store.inventory, b.store.orders, b.store.uow)
	orderService.SetIdempotencyStore(b.idem)
	if b.metrics != nil {
		orderService.SetRecorder(b.metrics)
	}
	catalogService := catalogapp.NewApplicationService(b.store.products, b.store.inventory, b.store.uow)

	healthController := health.NewController(b.cfg)
	if db := b.store.db; db != nil {
		healthController.AddCheck("database", func(ctx context.Context) error { return gormdb.Ping(ctx, db) })
	}
	if rdb := b.rdb; rdb != nil {
		healthController.AddCheck("redis", func(ctx context.Context) error { return idempotency.Ping(ctx, rdb) })
	}

	router := api.NewRouter(b.cfg, api.Controllers{
		Health:  healthController,
		Product: apiproduct.NewController(catalogService),
		Order:   apiorder.NewController(orderService),
	}, issuer, b.metrics)
	router.SetupRoutes()

	return &App{
		config: b.cfg,
		router: router,
		server: &http.Server{
			Addr:         ":" + b.cfg.Server.Port,
			Handler:      router.GetEngine(),
			ReadTimeout:  b.cfg.Server.ReadTimeout,
			WriteTimeout: b.cfg.Server.WriteTimeout,
		},
		db:    b.store.db,
		redis: b.rdb,
	}, nil
}

func (b *AppBuilder) initStorage() (*storage, error) {
	if !b.cfg.UsesSQL() {
		logger.Info("Using in-memory persistence layer")
		bus := shared.NewEventBus()
		subscribeEventLog(bus)
		s := memory.NewStore(bus)
		s.Seed(persistence.SeedProducts())
		return memoryStorage(s), nil
	}

	db, err := ConnectDatabase(b.cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if b.cfg.Database.AutoMigrate {
		if err := gormdb.AutoMigrate(db); err != nil {
			return nil, err
		}
	}
	if b.cfg.Database.Seed {
		if err := gormdb.Seed(ctx, db); err != nil {
			return nil, err
		}
	}

	products := gormdb.NewProductRepository(db)
	uow := gormdb.NewUnitOfWork(db)
	uow.SetRetryConfig(retry.FromAppConfig(b.cfg))

	return &storage{
		products:  products,
		inventory: products,
		orders:    gormdb.NewOrderRepository(db),
		uow:       uow,
		db:        db,
	}, nil
}

func (b *AppBuilder) initIdempotency() (orderapp.IdempotencyStore, error) {
	ttl := b.cfg.Redis.IdempotencyTTL
	if !b.cfg.Redis.Enabled {
		logger.Info("Using in-memory idempotency store")
		return idempotency.NewMemoryStore(ttl), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     b.cfg.Redis.Addr,
		Password: b.cfg.Redis.Password,
		DB:       b.cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := idempotency.Ping(ctx, rdb); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}

	logger.Info("Connected to Redis", zap.String("addr", b.cfg.Redis.Addr))
	b.rdb = rdb
	return idempotency.NewRedisStore(rdb, ttl), nil
}

// ConnectDatabase opens and pings the configured SQL database.
func ConnectDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gormdb.FromAppConfig(cfg.Database).Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Database.Type, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := gormdb.Ping(ctx, db); err != nil {
		_ = gormdb.Close(db)
		return nil, fmt.Errorf("failed to ping %s: %w", cfg.Database.Type, err)
	}

	logger.Info("Connected to database",
		zap.String("type", cfg.Database.Type),
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database))
	return db, nil
}

func memoryStorage(s *memory.Store) *storage {
	return &storage{
		products:  s.Products(),
		inventory: s.Products(),
		orders:    s.Orders(),
		uow:       s.UnitOfWork(),
	}
}

// subscribeEventLog logs committed order events when there is no outbox.
func subscribeEventLog(bus *shared.EventBus) {
	for _, name := range []string{
		orderdomain.EventOrderPlaced,
		orderdomain.EventOrderStatusChanged,
		orderdomain.EventOrderDeleted,
	} {
		handler := shared.NewFuncHandler("event-log", func(e shared.DomainEvent) error {
			logger.Info("Domain event",
				zap.String("event", e.EventName()),
				zap.String("aggregate_id", e.GetAggregateID()),
				zap.Any("payload", e.Payload()))
			return nil
		})
		if err := bus.Subscribe(name, handler); err != nil {
			logger.Warn("Failed to subscribe event log", zap.String("event", name), zap.Error(err))
		}
	}
}

