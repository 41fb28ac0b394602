package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/sm8ta/patient_records/internal/adapter/handler/http"
	"github.com/sm8ta/patient_records/internal/adapter/logger"
	"github.com/sm8ta/patient_records/internal/adapter/memory"
	metrics "github.com/sm8ta/patient_records/internal/adapter/prometheus"
	"github.com/sm8ta/patient_records/internal/adapter/postgres/repository"
	"github.com/sm8ta/patient_records/internal/adapter/token"
	"github.com/sm8ta/patient_records/internal/config"
	"github.com/sm8ta/patient_records/internal/core/ports"
	"github.com/sm8ta/patient_records/internal/core/services"

	_ "github.com/lib/pq"
	"github.com/pressly/goose"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Loading environment
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Set logger
	loggerAdapter := logger.NewLoggerAdapter(cfg.App.Env, cfg.App.LogLevel, os.Stdout)
	loggerAdapter.Info("Starting the patient API", map[string]interface{}{
		"app":   cfg.App.Name,
		"env":   cfg.App.Env,
		"store": cfg.Store.Driver,
	})

	// Observability
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsAdapter := metrics.NewPrometheusAdapter(registry, cfg.App.Name)

	// Store
	var store ports.PatientStore
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := sql.Open("postgres", cfg.DB.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: ", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: ", err)
		}

		// Migrate DB
		if err := goose.Up(db, cfg.Store.MigrationsDir); err != nil {
			log.Fatal("Failed to run migrations: ", err)
		}
		store = repository.NewPatientRepository(db)
	default:
		store = memory.NewPatientStore()
	}

	// Auth
	var verifier ports.TokenVerifier = token.AnyBearer{}
	if cfg.Token.Secret != "" {
		verifier = token.NewJWTTokenService(cfg.Token.Secret, cfg.Token.Duration, loggerAdapter)
	}

	// Patients
	patientService := services.NewPatientService(store, loggerAdapter, services.NewValidator())
	patientHandler := handlers.NewPatientHandler(patientService, loggerAdapter, metricsAdapter)

	// Init router
	router, err := handlers.NewRouter(cfg.HTTP, verifier, registry, patientHandler)
	if err != nil {
		log.Fatal("Error initializing router:", err)
	}

	listenAddr := fmt.Sprintf("%s:%s", cfg.HTTP.URL, cfg.HTTP.Port)
	srv := router.Server(listenAddr)

	go func() {
		loggerAdapter.Info("Starting the HTTP server", map[string]interface{}{
			"addr": listenAddr,
		})

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Error starting the HTTP server:", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	loggerAdapter.Info("Application is running", nil)

	<-stop

	loggerAdapter.Info("Shutting down", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		loggerAdapter.Error("Forced shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}
	loggerAdapter.Info("Application stopped", nil)
}
