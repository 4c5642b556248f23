package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"storefront/internal/app/commands"
	"storefront/internal/app/handlers/backoffice"
	catalogapp "storefront/internal/app/handlers/catalog"
	"storefront/internal/app/handlers/checkout"
	favoritesapp "storefront/internal/app/handlers/favorites"
	"storefront/internal/app/handlers/storefront"
	"storefront/internal/app/handlers/support"
	"storefront/internal/app/middleware"
	"storefront/internal/app/outbox"
	"storefront/internal/app/policies"
	"storefront/internal/app/queries"
	catalogsvc "storefront/internal/app/services/catalog"
	domaincatalog "storefront/internal/domain/catalog"
	"storefront/internal/domain/favorites"
	"storefront/internal/domain/referral"
	"storefront/internal/domain/session"
	"storefront/internal/infra/broker/kafka"
	rediscache "storefront/internal/infra/cache/redis"
	"storefront/internal/infra/config"
	mongodb "storefront/internal/infra/db/mongo"
	"storefront/internal/infra/db/postgres"
	ginserver "storefront/internal/infra/http/gin"
	"storefront/internal/infra/notify/telegram"
	"storefront/internal/infra/obs"
	outboxstore "storefront/internal/infra/outbox"
	"storefront/internal/infra/security"
	"storefront/internal/infra/storage/memory"
	"storefront/internal/infra/storage/s3"
)

type application struct {
	handlers ginserver.Handlers
	health   obs.HealthHandlers
	loader   *catalogsvc.Loader
	worker   *outboxstore.Worker
	closers  []func() error
}

func (a *application) close(logger *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("shutdown cleanup failed", "error", err)
		}
	}
	a.closers = nil
}

// adapters are the storage and delivery ports chosen by configuration.
type adapters struct {
	source      domaincatalog.Source
	settings    domaincatalog.SettingsWriter
	sessions    session.Repository
	favorites   favorites.Repository
	outbox      outbox.Outbox
	idempotency middleware.IdempotencyStore
	proofs      policies.ProofStore
	gateway     policies.NotificationGateway
	referrers   policies.ReferrerLookup
	referrals   referral.Registry
	orders      policies.OrderRecorder
	queue       outboxstore.Queue
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{health: obs.HealthHandlers{Checks: map[string]obs.Check{}}}
	ad, err := app.buildAdapters(ctx, cfg, logger)
	if err != nil {
		app.close(logger)
		return nil, err
	}

	store := memory.NewCatalogStore()
	app.loader = &catalogsvc.Loader{
		Source: ad.source,
		Store:  store,
		Logger: logger,
		Settings: domaincatalog.SiteSettings{
			SupportContact:     cfg.SupportContact,
			PaymentDestination: cfg.PaymentDestination,
		},
		OnLoad: obs.CatalogLoaded,
	}

	sessions := &support.Sessions{
		Repo:    ad.sessions,
		Catalog: store,
		Outbox:  ad.outbox,
		Encoder: outbox.JSONEventEncoder{Headers: map[string]string{"source": "storefront"}},
		Logger:  logger,
	}

	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	(&storefront.Handlers{Sessions: sessions}).Register(commandBus)
	(&favoritesapp.Handlers{Repo: ad.favorites, Sessions: sessions}).Register(commandBus, queryBus)
	(&checkout.Handlers{
		Sessions:  sessions,
		Proofs:    ad.proofs,
		Gateway:   ad.gateway,
		Referrers: ad.referrers,
		Orders:    ad.orders,
	}).Register(commandBus)
	(&backoffice.Handlers{
		Settings:  ad.settings,
		Store:     store,
		Referrals: ad.referrals,
		Logger:    logger,
	}).Register(commandBus)
	(&catalogapp.Queries{Sessions: sessions, Favorites: ad.favorites, SiteURL: cfg.SiteURL}).Register(queryBus)

	validator := middleware.NewStructValidator()
	cmdMiddleware := []middleware.CommandMiddleware{
		middleware.InstrumentCommands(obs.BusObserver{}),
		middleware.Logging(logger),
		middleware.OutboxFlush(ad.outbox),
		middleware.Validation(validator),
		middleware.Authorization(backoffice.NewAdminGate(cfg.AdminIDs)),
	}
	if len(cfg.AdminIDs) == 0 {
		logger.Warn("ADMIN_IDS not set, site settings cannot be edited")
	}
	if cfg.RequireAgeConfirmation {
		cmdMiddleware = append(cmdMiddleware, middleware.Authorization(storefront.AgeGate{Sessions: ad.sessions}))
	}
	cmdMiddleware = append(cmdMiddleware, middleware.Idempotency(ad.idempotency, nil, checkout.Retryable))
	cmds := middleware.ChainCommands(commandBus, cmdMiddleware...)
	qs := middleware.ChainQueries(queryBus,
		middleware.InstrumentQueries(obs.BusObserver{}),
		middleware.QueryValidation(validator),
	)

	secret := cfg.JWTSecret
	if secret == "" {
		if secret, err = security.RandomSecret(32); err != nil {
			app.close(logger)
			return nil, err
		}
		logger.Warn("JWT_SECRET not set, session tokens will not survive a restart")
	}
	tokens, err := security.NewSessionTokens(secret, cfg.SessionTTL)
	if err != nil {
		app.close(logger)
		return nil, err
	}

	app.handlers = ginserver.Handlers{
		Session:        ginserver.SessionHandler{Commands: cmds, Queries: qs, Tokens: tokens, Logger: logger},
		Catalog:        ginserver.CatalogHandler{Queries: qs, Logger: logger},
		Favorites:      ginserver.FavoritesHandler{Commands: cmds, Queries: qs, Logger: logger},
		Checkout:       ginserver.CheckoutHandler{Commands: cmds, Logger: logger, MaxUpload: checkout.DefaultMaxProofSize + 1<<20},
		Backoffice:     ginserver.BackofficeHandler{Commands: cmds, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Tokens: tokens, Logger: logger}.Handle,
		PaymentLimiter: ginserver.NewRateLimiter(cfg.SubmitRatePerMinute, logger).Handle,
	}

	if len(cfg.KafkaBrokers) > 0 && ad.queue != nil {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			app.close(logger)
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		app.closers = append(app.closers, producer.Close)
		app.worker = &outboxstore.Worker{
			Queue:       ad.queue,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
			OnPublish:   obs.OutboxPublished,
		}
	} else if len(cfg.KafkaBrokers) > 0 {
		logger.Warn("KAFKA_BROKERS ignored: the event outbox needs MONGO_URI")
	}
	return app, nil
}

func (a *application) buildAdapters(ctx context.Context, cfg config.Config, logger *slog.Logger) (adapters, error) {
	fixtures := memory.FixtureSource{Path: cfg.CatalogFixtures}
	overlay := memory.NewSettingsOverlay(fixtures)
	ad := adapters{
		source:      overlay,
		settings:    overlay,
		sessions:    memory.NewSessionRepository(),
		favorites:   memory.NewFavoritesRepository(),
		outbox:      memory.NewOutbox(logger),
		idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
		proofs:      memory.NewProofStore(),
		gateway:     memory.NewNotifier(logger),
	}
	directory := memory.NewReferrerDirectory()
	if workers, err := fixtures.LoadWorkers(); err != nil {
		logger.Warn("fixture workers not loaded", "error", err)
	} else {
		for code, w := range workers {
			directory.AddWorker(code, w)
		}
	}
	ad.referrers, ad.referrals = directory, directory
	ad.orders = memory.NewOrderRepository()

	if cfg.MongoURI != "" {
		client, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return ad, fmt.Errorf("mongo: %w", err)
		}
		a.closers = append(a.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Close(ctx)
		})
		a.health.Checks["mongo"] = client.Ping
		box, err := outboxstore.NewStore(ctx, client.DB)
		if err != nil {
			return ad, fmt.Errorf("mongo outbox: %w", err)
		}
		idem, err := mongodb.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
		if err != nil {
			return ad, fmt.Errorf("mongo idempotency: %w", err)
		}
		ad.outbox, ad.queue, ad.idempotency = box, box, idem
		ad.sessions = mongodb.NewSessionRepository(client.DB)
		if cfg.DataBackend == config.BackendMongo {
			source := mongodb.NewCatalogSource(client.DB)
			directory := mongodb.NewReferrerDirectory(client.DB)
			if err := directory.EnsureIndexes(ctx); err != nil {
				return ad, fmt.Errorf("mongo referrals: %w", err)
			}
			ad.source, ad.settings = source, source
			ad.referrers, ad.referrals = directory, directory
			ad.orders = mongodb.NewOrderRepository(client.DB)
		}
	}

	if cfg.DataBackend == config.BackendPostgres {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return ad, err
		}
		a.closers = append(a.closers, db.Close)
		a.health.Checks["postgres"] = db.PingContext
		source := postgres.NewCatalogSource(db)
		directory := postgres.NewReferrerDirectory(db)
		ad.source, ad.settings = source, source
		ad.referrers, ad.referrals = directory, directory
		ad.orders = postgres.NewBookingRepository(db)
	}

	if cfg.RedisAddr != "" {
		rdb, err := rediscache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return ad, err
		}
		a.closers = append(a.closers, rdb.Close)
		a.health.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		ad.favorites = rediscache.NewFavoritesRepository(rdb)
	}

	if cfg.ProofStorage == config.ProofStorageS3 {
		proofs, err := s3.NewProofStore(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			return ad, err
		}
		a.health.Checks["s3"] = proofs.Ping
		ad.proofs = proofs
	}

	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramBotToken, cfg.TelegramAPIEndpoint, checkout.DefaultDeliveryTimeout)
		if err != nil {
			return ad, err
		}
		gateway, err := telegram.NewGateway(bot, cfg.TelegramChannelID, logger)
		if err != nil {
			return ad, err
		}
		ad.gateway = gateway
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN not set, orders are only logged")
	}
	return ad, nil
}
