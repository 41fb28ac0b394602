package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	redisClient "github.com/redis/go-redis/v9"

	"github.com/sm8ta/patient_records/internal/adapter/api"
	metrics "github.com/sm8ta/patient_records/internal/adapter/prometheus"
	"github.com/sm8ta/patient_records/internal/adapter/redis"
	"github.com/sm8ta/patient_records/internal/adapter/storage"
	"github.com/sm8ta/patient_records/internal/adapter/token"
	"github.com/sm8ta/patient_records/internal/config"
	"github.com/sm8ta/patient_records/internal/core/ports"
	"github.com/sm8ta/patient_records/internal/core/services"
)

// App is the client core: one session store shared by the auth gateway and
// the patient API client, and the controller on top.
type App struct {
	Sessions   *services.SessionStore
	Auth       *services.AuthService
	Patients   *api.PatientClient
	Controller *services.Controller

	closers []func() error
}

// New opens the configured session backend and builds the core. The
// persisted session is loaded before New returns.
func New(
	ctx context.Context,
	cfg *config.Container,
	log ports.LoggerPort,
	reg prometheus.Registerer,
) (*App, error) {
	const op = "app.New"

	var (
		kv      ports.KeyValueStore
		closers []func() error
	)

	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		conn := redisClient.NewClient(&redisClient.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		if err := conn.Ping(ctx).Err(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: connect to redis: %w", op, err)
		}
		kv = redis.NewRedisAdapter(conn, cfg.Session.KeyPrefix)
		closers = append(closers, conn.Close)
	default:
		path := cfg.Session.Path
		if path == "" {
			path = storage.DefaultPath(cfg.App.Name)
		}
		kv = storage.NewFileStore(path)
	}

	a, err := Build(ctx, cfg, kv, log, reg)
	if err != nil {
		for _, c := range closers {
			_ = c()
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.closers = closers
	return a, nil
}

// Build wires the core over an already opened key-value store. Extra
// client options go to the patient API client.
func Build(
	ctx context.Context,
	cfg *config.Container,
	kv ports.KeyValueStore,
	log ports.LoggerPort,
	reg prometheus.Registerer,
	clientOpts ...api.Option,
) (*App, error) {
	sessions := services.NewSessionStore(kv, log)
	sessions.Load(ctx)

	var issuer ports.TokenIssuer = token.NewDemoTokenService()
	if cfg.Token.Secret != "" {
		issuer = token.NewJWTTokenService(cfg.Token.Secret, cfg.Token.Duration, log)
	}

	auth, err := services.NewAuthService(issuer, sessions, log, cfg.Auth.LoginDelay)
	if err != nil {
		return nil, err
	}

	opts := append([]api.Option{api.WithTimeout(cfg.API.Timeout)}, clientOpts...)
	patients := api.NewPatientClient(cfg.API.BaseURL, log, []api.Middleware{
		api.Instrument(log, metrics.NewPrometheusAdapter(reg, cfg.App.Name)),
		api.BearerAuth(sessions),
		api.InvalidateOnUnauthorized(auth.Logout, log),
	}, opts...)

	controller := services.NewController(auth, patients, services.NewValidator(), log)

	log.Debug("Client core ready", map[string]interface{}{
		"api":           cfg.API.BaseURL,
		"authenticated": sessions.Current().Authenticated(),
	})

	return &App{
		Sessions:   sessions,
		Auth:       auth,
		Patients:   patients,
		Controller: controller,
	}, nil
}

// Close releases the session backend.
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
