package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"

	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

type (
	Container struct {
		App     *App
		API     *API
		Session *Session
		Token   *Token
		Auth    *Auth
		DB      *DB
		HTTP    *HTTP
		Redis   *Redis
		Store   *Store
	}

	App struct {
		Name     string
		Env      string
		LogLevel string
	}

	// API is the remote patient API the client talks to.
	API struct {
		BaseURL string
		Timeout time.Duration
	}

	Session struct {
		Backend   string
		Path      string
		KeyPrefix string
	}

	// Token switches login to signed JWTs when Secret is set.
	Token struct {
		Secret   string
		Duration string
	}

	Auth struct {
		LoginDelay time.Duration
	}

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	HTTP struct {
		Env            string
		Port           string
		AllowedOrigins string
		URL            string
	}

	Redis struct {
		Address  string
		Password string
	}

	Store struct {
		Driver        string
		MigrationsDir string
	}
)

// New reads the environment, after loading a .env file when one exists.
func New() (*Container, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	apiTimeout, err := getEnvDuration("API_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}
	loginDelay, err := getEnvDuration("AUTH_LOGIN_DELAY", 0)
	if err != nil {
		return nil, err
	}

	app := &App{
		Name:     getEnv("APP_NAME", "patient_records"),
		Env:      getEnv("APP_ENV", "prod"),
		LogLevel: os.Getenv("LOG_LEVEL"),
	}

	api := &API{
		BaseURL: getEnv("API_BASE_URL", "http://localhost:4000"),
		Timeout: apiTimeout,
	}

	session := &Session{
		Backend:   getEnv("SESSION_BACKEND", SessionBackendFile),
		Path:      os.Getenv("SESSION_PATH"),
		KeyPrefix: getEnv("SESSION_KEY_PREFIX", "patient_records:"),
	}
	if session.Backend != SessionBackendFile && session.Backend != SessionBackendRedis {
		return nil, fmt.Errorf("config: unknown SESSION_BACKEND %q", session.Backend)
	}

	token := &Token{
		Secret:   os.Getenv("TOKEN_SECRET"),
		Duration: getEnv("TOKEN_DURATION", "24h"),
	}

	db := &DB{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
	}

	http := &HTTP{
		Port:           getEnv("HTTP_PORT", "4000"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:5173"),
		URL:            os.Getenv("HTTP_URL"),
		Env:            app.Env,
	}

	redis := &Redis{
		Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}

	store := &Store{
		Driver:        getEnv("STORE_DRIVER", StoreDriverMemory),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "./internal/adapter/postgres/migrations"),
	}
	if store.Driver != StoreDriverMemory && store.Driver != StoreDriverPostgres {
		return nil, fmt.Errorf("config: unknown STORE_DRIVER %q", store.Driver)
	}

	return &Container{
		App:     app,
		API:     api,
		Session: session,
		Token:   token,
		Auth:    &Auth{LoginDelay: loginDelay},
		DB:      db,
		HTTP:    http,
		Redis:   redis,
		Store:   store,
	}, nil
}

// DSN is the lib/pq connection string for the demo API store.
func (d *DB) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
