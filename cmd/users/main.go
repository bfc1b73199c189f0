package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ubademy/users-service/internal/app"
	"github.com/ubademy/users-service/internal/auth"
	"github.com/ubademy/users-service/internal/metrics"
	"github.com/ubademy/users-service/internal/notify"
	"github.com/ubademy/users-service/internal/observability"
	"github.com/ubademy/users-service/internal/platform/mongodb"
	"github.com/ubademy/users-service/internal/subscription"
	"github.com/ubademy/users-service/internal/token"
	"github.com/ubademy/users-service/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	mongoClient, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Error("connect mongodb", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Warn("mongodb disconnect", slog.Any("error", err))
		}
	}()

	repo := users.NewMongoRepository(mongoClient.Database(cfg.MongoDatabase))
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Error("ensure indexes", slog.Any("error", err))
		os.Exit(1)
	}

	verifier, err := auth.NewFirebaseVerifier(ctx, cfg.FirebaseSecret)
	if err != nil {
		logger.Error("initialize identity verifier", slog.Any("error", err))
		os.Exit(1)
	}
	sender, err := notify.NewFCMSender(ctx, cfg.FirebaseSecret)
	if err != nil {
		logger.Error("initialize push sender", slog.Any("error", err))
		os.Exit(1)
	}

	codec := token.NewCodec(cfg.TokenSecret)
	publisher := metrics.NewPublisher(logger, cfg.AMQPURL, cfg.MetricsQueue)
	subscribers := subscription.NewClient(cfg.SubscriptionServiceURL)

	service := users.NewService(logger, repo, codec, cfg.TokenTTL(), verifier, publisher, subscribers, sender)
	authenticator := auth.NewAuthenticator(logger, codec, repo)
	usersHandler := users.NewHandler(logger, service, authenticator)

	promMetrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		UsersHandler: usersHandler,
		Metrics:      promMetrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server terminated", slog.Any("error", err))
		os.Exit(1)
	}
}
