package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/prospectly/email-enrichment-service/internal/client"
	"github.com/prospectly/email-enrichment-service/internal/config"
	httphandler "github.com/prospectly/email-enrichment-service/internal/http"
	"github.com/prospectly/email-enrichment-service/internal/lifecycle"
	"github.com/prospectly/email-enrichment-service/internal/observability"
	"github.com/prospectly/email-enrichment-service/internal/service"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	apolloClient, err := client.NewApolloClient(cfg.ApolloAPIKey, cfg.ApolloAPIURL, cfg.ApolloAPITimeout)
	if err != nil {
		logger.Fatal("apollo client", zap.Error(err))
	}

	// Early warning on a bad key. Not fatal: a transient Apollo outage must
	// not crash-loop the container.
	validateCtx, validateCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := apolloClient.ValidateAPIKey(validateCtx); err != nil {
		logger.Warn("apollo API key validation failed", zap.Error(err))
	}
	validateCancel()

	enrichmentService := service.NewEnrichmentService(apolloClient)

	healthConfig := &httphandler.HealthConfig{
		DegradedWindow:   cfg.DegradedWindow,
		DegradedErrorPct: cfg.DegradedErrorPct,
		StartTime:        time.Now(),
	}
	handler := httphandler.NewHandler(enrichmentService, healthConfig, logger)

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())
	enrichRouter := router.PathPrefix("/enrich").Subrouter()
	enrichRouter.Use(httphandler.TimeoutMiddleware(cfg.RequestTimeout))
	enrichRouter.HandleFunc("", handler.PostEnrich).Methods("POST")
	enrichRouter.HandleFunc("/simple", handler.PostEnrichSimple).Methods("POST")
	enrichRouter.HandleFunc("/bulk", handler.PostEnrichBulk).Methods("POST")

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
