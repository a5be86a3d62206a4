package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"

	IsolationReadCommitted  = "read_committed"
	IsolationRepeatableRead = "repeatable_read"
	IsolationSerializable   = "serializable"
)

type Config struct {
	Logger   LoggerConfig
	Database DatabaseConfig
	GRPC     GRPCConfig
	Ops      OpsConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Puzzle   PuzzleConfig
	Rewards  RewardsConfig
	Tracing  TracingConfig
}

type LoggerConfig struct {
	Env   string
	Level string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Name            string
	User            string
	Password        string
	Port            int
	SSLMode         string
	Isolation       string
	MaxConns        int
	ConnectTimeout  time.Duration
	MaxConnIdleTime time.Duration
	// MemoryCompanies seeds company ids when Driver is memory.
	MemoryCompanies []string
}

type GRPCConfig struct {
	Port       int
	Reflection bool
}

type OpsConfig struct {
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	CacheTTL time.Duration
}

type StorageConfig struct {
	Driver         string
	LocalDir       string
	PublicBaseURL  string
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKeyID  string
	S3SecretKey    string
	S3UsePathStyle bool
}

type PuzzleConfig struct {
	CanvasSize        int
	MaxImageBytes     int
	ArtifactTTL       time.Duration
	GenerationTimeout time.Duration
	Concurrency       int
	MaxSolveTime      time.Duration
}

type RewardsConfig struct {
	Validity          time.Duration
	MaxValue          decimal.Decimal
	FeatureCostPerDay decimal.Decimal
}

type TracingConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	OTLPInsecure bool
	SampleRatio  float64
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{
		Logger: LoggerConfig{
			Env:   getEnv("LOGGER_ENV", "development"),
			Level: getEnv("LOG_LEVEL", ""),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("STORE_DRIVER", StoreDriverPostgres),
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Name:            getEnv("POSTGRES_DB", "puzzle_rewards"),
			User:            getEnv("POSTGRES_USER", "puzzle_rewards"),
			Password:        getEnv("POSTGRES_PASSWORD", "puzzle_rewards"),
			Port:            getEnvInt("POSTGRES_PORT", 5432),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			Isolation:       getEnv("POSTGRES_ISOLATION", IsolationReadCommitted),
			MaxConns:        getEnvInt("POSTGRES_MAX_CONNS", 10),
			ConnectTimeout:  getEnvDuration("POSTGRES_CONNECT_TIMEOUT", 5*time.Second),
			MaxConnIdleTime: getEnvDuration("POSTGRES_MAX_CONN_IDLE_TIME", 5*time.Minute),
			MemoryCompanies: getEnvList("MEMORY_COMPANY_IDS", []string{"demo-company"}),
		},
		GRPC: GRPCConfig{
			Port:       getEnvInt("GRPC_PORT", 50051),
			Reflection: getEnvBool("GRPC_REFLECTION", true),
		},
		Ops: OpsConfig{
			Port: getEnvInt("OPS_HTTP_PORT", 8081),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "puzzle-rewards:"),
			CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),
		},
		Storage: StorageConfig{
			Driver:         getEnv("STORAGE_DRIVER", StorageDriverLocal),
			LocalDir:       getEnv("STORAGE_LOCAL_DIR", "./data/puzzles"),
			PublicBaseURL:  getEnv("STORAGE_PUBLIC_BASE_URL", ""),
			S3Endpoint:     getEnv("S3_ENDPOINT", ""),
			S3Region:       getEnv("S3_REGION", "auto"),
			S3Bucket:       getEnv("S3_BUCKET", ""),
			S3AccessKeyID:  getEnv("S3_ACCESS_KEY_ID", ""),
			S3SecretKey:    getEnv("S3_SECRET_ACCESS_KEY", ""),
			S3UsePathStyle: getEnvBool("S3_USE_PATH_STYLE", false),
		},
		Puzzle: PuzzleConfig{
			CanvasSize:        getEnvInt("PUZZLE_CANVAS_SIZE", 400),
			MaxImageBytes:     getEnvInt("PUZZLE_MAX_IMAGE_BYTES", 5<<20),
			ArtifactTTL:       getEnvDuration("PUZZLE_ARTIFACT_TTL", 24*time.Hour),
			GenerationTimeout: getEnvDuration("PUZZLE_GENERATION_TIMEOUT", 10*time.Second),
			Concurrency:       getEnvInt("PUZZLE_CONCURRENCY", runtime.NumCPU()),
			MaxSolveTime:      getEnvDuration("SCORING_MAX_TIME", 300*time.Second),
		},
		Rewards: RewardsConfig{
			Validity:          getEnvDuration("REWARD_VALIDITY", 30*24*time.Hour),
			MaxValue:          getEnvDecimal("REWARD_MAX_VALUE", decimal.NewFromInt(10000)),
			FeatureCostPerDay: getEnvDecimal("FEATURE_COST_PER_DAY", decimal.NewFromInt(99)),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvBool("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "puzzle-rewards"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			OTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio:  getEnvFloat("OTEL_SAMPLE_RATIO", 1),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Database.Driver == StoreDriverPostgres || c.Database.Driver == StoreDriverMemory,
		"STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.Database.Driver)
	check(validPort(c.GRPC.Port), "GRPC_PORT out of range: %d", c.GRPC.Port)
	check(validPort(c.Ops.Port), "OPS_HTTP_PORT out of range: %d", c.Ops.Port)
	check(c.GRPC.Port != c.Ops.Port, "GRPC_PORT and OPS_HTTP_PORT must differ")
	if c.Database.Driver == StoreDriverPostgres {
		check(validPort(c.Database.Port), "POSTGRES_PORT out of range: %d", c.Database.Port)
		check(c.Database.MaxConns > 0, "POSTGRES_MAX_CONNS must be positive")
		check(c.Database.Isolation == IsolationReadCommitted || c.Database.Isolation == IsolationRepeatableRead || c.Database.Isolation == IsolationSerializable,
			"POSTGRES_ISOLATION must be one of %q, %q, %q, got %q",
			IsolationReadCommitted, IsolationRepeatableRead, IsolationSerializable, c.Database.Isolation)
	}
	if c.Redis.Addr != "" {
		check(c.Redis.CacheTTL > 0, "CACHE_TTL must be positive when REDIS_ADDR is set")
	}

	switch c.Storage.Driver {
	case StorageDriverLocal:
		check(c.Storage.LocalDir != "", "STORAGE_LOCAL_DIR is required for local storage")
	case StorageDriverS3:
		check(c.Storage.S3Bucket != "", "S3_BUCKET is required for s3 storage")
		if c.Storage.S3Endpoint != "" {
			_, err := url.ParseRequestURI(c.Storage.S3Endpoint)
			check(err == nil, "S3_ENDPOINT is not a valid URL: %q", c.Storage.S3Endpoint)
		}
	default:
		check(false, "STORAGE_DRIVER must be %q or %q, got %q", StorageDriverLocal, StorageDriverS3, c.Storage.Driver)
	}

	check(c.Puzzle.CanvasSize >= 30, "PUZZLE_CANVAS_SIZE must be at least 30, got %d", c.Puzzle.CanvasSize)
	check(c.Puzzle.MaxImageBytes > 0, "PUZZLE_MAX_IMAGE_BYTES must be positive")
	check(c.Puzzle.ArtifactTTL > 0, "PUZZLE_ARTIFACT_TTL must be positive")
	check(c.Puzzle.GenerationTimeout > 0, "PUZZLE_GENERATION_TIMEOUT must be positive")
	check(c.Puzzle.Concurrency > 0, "PUZZLE_CONCURRENCY must be positive")
	check(c.Puzzle.MaxSolveTime > 0, "SCORING_MAX_TIME must be positive")

	check(c.Rewards.Validity > 0, "REWARD_VALIDITY must be positive")
	check(c.Rewards.MaxValue.IsPositive(), "REWARD_MAX_VALUE must be positive")
	check(c.Rewards.FeatureCostPerDay.IsPositive(), "FEATURE_COST_PER_DAY must be positive")

	check(c.Tracing.SampleRatio >= 0 && c.Tracing.SampleRatio <= 1, "OTEL_SAMPLE_RATIO must be within [0, 1]")

	return errors.Join(errs...)
}

func (c *Config) GetDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:     c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}

func (c *Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPC.Port)
}

func (c *Config) OpsAddr() string {
	return fmt.Sprintf(":%d", c.Ops.Port)
}

func validPort(p int) bool {
	return p > 0 && p < 65536
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
