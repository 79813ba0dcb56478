package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"alianca-go/pkg/logger"
)

const (
	GatewayMemory   = "memory"
	GatewayPostgres = "postgres"
	GatewaySupabase = "supabase"

	StorageNone     = "none"
	StorageLocal    = "local"
	StorageSupabase = "supabase"

	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	HTTPPort    string
	Env         string
	TimeZone    string
	CORSOrigins []string
	DB          DBConfig
	Supabase    SupabaseConfig
	Gateway     GatewayConfig
	Storage     StorageConfig
	Cache       CacheConfig
	TMDB        TMDBConfig
	Groups      GroupsConfig
	Journal     JournalConfig
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type SupabaseConfig struct {
	URL            string
	PublishableKey string
	ServiceKey     string
	JWTSecret      string
	AuthTimeout    time.Duration
	SkipAuth       bool
	MockUserID     string
	MockUserEmail  string
	MockUserName   string
	MockUserAvatar string
}

type GatewayConfig struct {
	Backend string
	Timeout time.Duration
}

type StorageConfig struct {
	Backend       string
	Bucket        string
	LocalRoot     string
	PublicBaseURL string
	Timeout       time.Duration
}

type CacheConfig struct {
	Backend  string
	TTL      time.Duration
	RedisURL string
}

type TMDBConfig struct {
	APIKey   string
	BaseURL  string
	Language string
	Timeout  time.Duration
}

type GroupsConfig struct {
	MaxMembers    int
	JoinPerMinute int
	JoinBurst     int
}

type JournalConfig struct {
	DBPath string
}

func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		TimeZone:    getEnv("APP_TIMEZONE", "America/Sao_Paulo"),
		CORSOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "alianca"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Supabase: SupabaseConfig{
			URL:            strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
			PublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", getEnv("EXPO_PUBLIC_SUPABASE_ANON_KEY", "")),
			ServiceKey:     getEnv("SUPABASE_SERVICE_KEY", ""),
			JWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
			AuthTimeout:    getEnvDuration("SUPABASE_AUTH_TIMEOUT", 5*time.Second),
			SkipAuth:       getEnvBool("AUTH_SKIP", false),
			MockUserID:     getEnv("AUTH_MOCK_USER_ID", "00000000-0000-0000-0000-000000000001"),
			MockUserEmail:  getEnv("AUTH_MOCK_USER_EMAIL", ""),
			MockUserName:   getEnv("AUTH_MOCK_USER_NAME", ""),
			MockUserAvatar: getEnv("AUTH_MOCK_USER_AVATAR_URL", ""),
		},
		Gateway: GatewayConfig{
			Backend: strings.ToLower(getEnv("GATEWAY_BACKEND", GatewayMemory)),
			Timeout: getEnvDuration("GATEWAY_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal)),
			Bucket:        getEnv("STORAGE_BUCKET", "avatars"),
			LocalRoot:     getEnv("STORAGE_LOCAL_ROOT", "./data/media"),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", "/media"),
			Timeout:       getEnvDuration("STORAGE_TIMEOUT", 30*time.Second),
		},
		Cache: CacheConfig{
			Backend:  strings.ToLower(getEnv("GROUP_CACHE_BACKEND", CacheMemory)),
			TTL:      getEnvDuration("GROUP_CACHE_TTL", time.Minute),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		TMDB: TMDBConfig{
			APIKey:   getEnv("TMDB_API_KEY", ""),
			BaseURL:  getEnv("TMDB_BASE_URL", ""),
			Language: getEnv("TMDB_LANGUAGE", "pt-BR"),
			Timeout:  getEnvDuration("TMDB_TIMEOUT", 3*time.Second),
		},
		Groups: GroupsConfig{
			MaxMembers:    getEnvInt("GROUP_MAX_MEMBERS", 2),
			JoinPerMinute: getEnvInt("GROUP_JOIN_PER_MINUTE", 10),
			JoinBurst:     getEnvInt("GROUP_JOIN_BURST", 5),
		},
		Journal: JournalConfig{
			DBPath: getEnv("JOURNAL_DB_PATH", "./data/journal.db"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Gateway.Backend {
	case GatewayMemory, GatewayPostgres:
	case GatewaySupabase:
		if c.Supabase.URL == "" || c.Supabase.ServiceKey == "" {
			return fmt.Errorf("config: supabase gateway needs SUPABASE_URL and SUPABASE_SERVICE_KEY")
		}
	default:
		return fmt.Errorf("config: unknown GATEWAY_BACKEND %q", c.Gateway.Backend)
	}

	switch c.Storage.Backend {
	case StorageNone, StorageLocal:
	case StorageSupabase:
		if c.Supabase.URL == "" || c.Supabase.ServiceKey == "" {
			return fmt.Errorf("config: supabase storage needs SUPABASE_URL and SUPABASE_SERVICE_KEY")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("config: unknown GROUP_CACHE_BACKEND %q", c.Cache.Backend)
	}

	if !c.Supabase.SkipAuth && c.Supabase.JWTSecret == "" && c.Supabase.URL == "" {
		return fmt.Errorf("config: auth needs SUPABASE_JWT_SECRET or SUPABASE_URL, or AUTH_SKIP=true")
	}
	if c.Groups.MaxMembers < 1 {
		return fmt.Errorf("config: GROUP_MAX_MEMBERS must be positive")
	}
	return nil
}

// Location falls back to UTC when the zone database has no entry.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}

// URL renders the DSN in the URL form golang-migrate expects.
func (c DBConfig) URL() string {
	if strings.HasPrefix(c.DSN, "postgres://") || strings.HasPrefix(c.DSN, "postgresql://") {
		return c.DSN
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}
