package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"customer-registry/internal/config"
	"customer-registry/internal/infra"
)

const defaultConnectTimeout = 5 * time.Second

func main() {
	cfg, err := config.Build()
	if err != nil {
		logrus.Fatalf("failed to build config - %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	pgPool, err := infra.Postgresql(ctx, cfg.PostgresCfg)
	if err != nil {
		logrus.Fatalf("failed to connect to postgres - %v", err)
	}
	defer pgPool.Close()

	mongoClient, err := infra.Mongodb(ctx, cfg.MongoCfg)
	if err != nil {
		logrus.Fatalf("failed to connect to mongo - %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logrus.Errorf("failed to disconnect from mongo - %v", err)
		}
	}()

	redisClient, err := infra.Redis(ctx, cfg.RedisCfg)
	if err != nil {
		logrus.Fatalf("failed to connect to redis - %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logrus.Errorf("failed to close connection to redis - %v", err)
		}
	}()

	app, err := infra.Router(pgPool, mongoClient, redisClient)
	if err != nil {
		logrus.Fatalf("failed to build router - %v", err)
	}

	start(app, cfg.ServerCfg)
}

func start(app *echo.Echo, cfg config.ServerCfg) {
	shutdownCh := make(chan os.Signal, 1)
	errorCh := make(chan error, 1)
	signal.Notify(shutdownCh, os.Interrupt)

	go func() {
		errorCh <- app.Start(fmt.Sprintf(":%d", cfg.Port))
	}()

	select {
	case <-shutdownCh:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logrus.Info("shutdown signal has been sent, stopping the server...")
		if err := app.Shutdown(ctx); err != nil {
			logrus.Fatalf("failed to stop server gracefully - %v", err)
		}
	case err := <-errorCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("shutting down the server, unexpected error occurred - %v", err)
		}
	}
}
