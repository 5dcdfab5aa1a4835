package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wallfeed/wall-service/internal/config"
	"github.com/wallfeed/wall-service/internal/domain/models"
	"github.com/wallfeed/wall-service/internal/service/eventworker"
	"github.com/wallfeed/wall-service/internal/service/wall"
	"github.com/wallfeed/wall-service/internal/storage/blob"
	"github.com/wallfeed/wall-service/internal/storage/feedcache"
	"github.com/wallfeed/wall-service/internal/storage/postgres"
	"github.com/wallfeed/wall-service/internal/transport/httpserver"
	"github.com/wallfeed/wall-service/internal/transport/kafka"
	"github.com/wallfeed/wall-service/internal/transport/ws"
)

type App struct {
	log           *slog.Logger
	DB            *postgres.Storage
	Cache         *feedcache.Cache
	Blobs         *blob.Store
	EventWorker   *eventworker.Worker
	EventProducer *kafka.Producer
	EventConsumer *kafka.Consumer
	Hub           *ws.Hub
	HTTPServer    *httpserver.Server
	cancel        context.CancelFunc
}

func New(log *slog.Logger, cfg *config.Config) *App {
	const op = "app.New"
	fail := func(err error) {
		panic(op + ": " + err.Error())
	}

	repo, err := postgres.New(
		cfg.Storage.User,
		cfg.Storage.Password,
		cfg.Storage.Host,
		cfg.Storage.Port,
		cfg.Storage.DBName,
		cfg.Storage.Timeout,
	)
	if err != nil {
		fail(err)
	}

	cache := feedcache.New(
		cfg.Redis.Addr,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.TTL.Duration,
	)

	blobs, err := blob.New(blob.Config{
		Endpoint:      cfg.Blob.Endpoint,
		AccessKey:     cfg.Blob.AccessKey,
		SecretKey:     cfg.Blob.SecretKey,
		UseSSL:        cfg.Blob.UseSSL,
		Bucket:        cfg.Blob.Bucket,
		PublicBaseURL: cfg.Blob.PublicBaseURL,
		CacheLifetime: cfg.Blob.CacheLifetime.Duration,
	})
	if err != nil {
		fail(err)
	}

	wallService := wall.New(
		log, repo, repo, cache, cfg.HTTP.Timeout.Duration,
	)

	producer, err := kafka.NewProducer(
		context.Background(),
		log,
		cfg.Kafka.Addrs,
		cfg.Kafka.Topic,
		cfg.Kafka.Timeout,
		cfg.Kafka.Retries,
	)
	if err != nil {
		fail(err)
	}

	worker := eventworker.New(
		log,
		cfg.EventWorker.PageSize,
		repo,
		repo,
		repo,
		producer,
		cfg.EventWorker.Interval.Duration,
		cfg.EventWorker.Timeout.Duration,
	)

	hub := ws.NewHub(log)

	consumer, err := kafka.NewConsumer(
		log,
		cfg.Kafka.Addrs,
		cfg.Kafka.Topic,
		cfg.Kafka.Group,
		func(post models.Post) { hub.Broadcast(post) },
	)
	if err != nil {
		fail(err)
	}

	httpServer := httpserver.New(
		log,
		cfg.HTTP.Port,
		wallService,
		blobs,
		hub,
		models.Profile{
			Name:      cfg.Profile.Name,
			Caption:   cfg.Profile.Caption,
			AvatarUrl: cfg.Profile.AvatarUrl,
			Networks:  cfg.Profile.Networks,
			City:      cfg.Profile.City,
		},
		cfg.HTTP.Timeout.Duration,
	)

	return &App{
		log:           log,
		DB:            repo,
		Cache:         cache,
		Blobs:         blobs,
		EventWorker:   worker,
		EventProducer: producer,
		EventConsumer: consumer,
		Hub:           hub,
		HTTPServer:    httpServer,
	}
}

func (a *App) Start() {
	const op = "app.Start"
	log := a.log.With(slog.String("op", op))
	log.Info("starting application")

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if err := a.Blobs.EnsureBucket(ctx); err != nil {
		panic(op + ": " + err.Error())
	}

	a.Hub.Start(ctx)
	a.EventConsumer.Start(ctx)
	a.EventWorker.Start()

	go a.HTTPServer.MustRun()

	log.Info("application started")
}

func (a *App) Stop() {
	const op = "app.Stop"
	log := a.log.With(slog.String("op", op))
	log.Info("stopping application")

	a.cancel()

	var wg sync.WaitGroup

	wg.Add(6)
	go func() {
		defer wg.Done()
		a.HTTPServer.Stop()
	}()
	go func() {
		defer wg.Done()
		a.EventWorker.Stop()
	}()
	go func() {
		defer wg.Done()
		a.EventProducer.Stop()
	}()
	go func() {
		defer wg.Done()
		a.EventConsumer.Stop()
	}()
	go func() {
		defer wg.Done()
		a.Hub.Stop()
	}()
	go func() {
		defer wg.Done()
		a.DB.Stop()
	}()

	wg.Wait()

	a.Cache.Stop()

	log.Info("application is stopped")
}
