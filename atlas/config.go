package atlas

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/lunagic/atlas/atlasservices/cache"
	"github.com/lunagic/atlas/atlasservices/database"
)

// Config holds the connection parameters of the database and cache engines.
// Every field is read from PREFIX_<KOANF_TAG> in the environment.
type Config struct {
	// App
	AppDeveloperMode bool `koanf:"app_developer_mode"`
	// App Drivers
	AppDriverDatabase string `koanf:"app_driver_database" validate:"oneof=sqlite mysql postgres"`
	AppDriverCache    string `koanf:"app_driver_cache" validate:"oneof=memory redis"`
	// Database behavior
	DatabaseTablePrefix        string `koanf:"database_table_prefix"`
	DatabaseStrictComparators  bool   `koanf:"database_strict_comparators"`
	DatabaseSafeDelete         bool   `koanf:"database_safe_delete"`
	DatabaseResultCacheEnabled bool   `koanf:"database_result_cache_enabled"`
	// Services
	MySQLCharset   string `koanf:"mysql_charset"`
	MySQLCollation string `koanf:"mysql_collation"`
	MySQLHost      string `koanf:"mysql_host" validate:"required_if=AppDriverDatabase mysql"`
	MySQLName      string `koanf:"mysql_name" validate:"required_if=AppDriverDatabase mysql"`
	MySQLPass      string `koanf:"mysql_pass"`
	MySQLPort      int    `koanf:"mysql_port" validate:"min=1,max=65535"`
	MySQLUser      string `koanf:"mysql_user" validate:"required_if=AppDriverDatabase mysql"`
	PostgresHost   string `koanf:"postgres_host" validate:"required_if=AppDriverDatabase postgres"`
	PostgresName   string `koanf:"postgres_name" validate:"required_if=AppDriverDatabase postgres"`
	PostgresPass   string `koanf:"postgres_pass"`
	PostgresPort   int    `koanf:"postgres_port" validate:"min=1,max=65535"`
	PostgresUser   string `koanf:"postgres_user" validate:"required_if=AppDriverDatabase postgres"`
	RedisHost      string `koanf:"redis_host" validate:"required_if=AppDriverCache redis"`
	RedisNumber    int    `koanf:"redis_number" validate:"min=0"`
	RedisPass      string `koanf:"redis_pass"`
	RedisPort      int    `koanf:"redis_port" validate:"min=1,max=65535"`
	RedisUser      string `koanf:"redis_user"`
	SQLitePath     string `koanf:"sqlite_path" validate:"required_if=AppDriverDatabase sqlite"`
}

func NewConfig() Config {
	return Config{
		AppDriverCache:    "memory",
		AppDriverDatabase: "sqlite",
		MySQLCharset:      "utf8mb4",
		MySQLCollation:    "utf8mb4_unicode_ci",
		MySQLHost:         "127.0.0.1",
		MySQLPort:         3306,
		PostgresHost:      "127.0.0.1",
		PostgresPort:      5432,
		RedisHost:         "127.0.0.1",
		RedisPort:         6379,
		SQLitePath:        "database.sqlite",
	}
}

// LoadConfig starts from NewConfig and overrides it with the environment
// variables starting with prefix. The .env files given (or ./.env) are loaded
// first when they exist, without replacing variables already set.
func LoadConfig(prefix string, envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("could not load env file: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider(prefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, prefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("could not load env variables: %w", err)
	}

	config := NewConfig()
	if err := k.Unmarshal("", &config); err != nil {
		return Config{}, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (config Config) Validate() error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Database builds the service for the configured engine. The database behavior
// options of the config come first, configFuncs are applied after them.
// resultCache is only used when DatabaseResultCacheEnabled is set.
func (config Config) Database(resultCache cache.Driver, configFuncs ...database.ServiceConfigFunc) (*database.Service, error) {
	options := []database.ServiceConfigFunc{}
	if config.DatabaseTablePrefix != "" {
		options = append(options, database.WithTablePrefix(config.DatabaseTablePrefix))
	}
	if config.DatabaseStrictComparators {
		options = append(options, database.WithStrictComparators())
	}
	if config.DatabaseSafeDelete {
		options = append(options, database.WithSafeDelete())
	}
	if config.DatabaseResultCacheEnabled {
		if resultCache == nil {
			return nil, database.ErrCacheNotConfigured
		}
		options = append(options, database.WithResultCache(resultCache))
	}
	options = append(options, configFuncs...)

	switch config.AppDriverDatabase {
	case "sqlite":
		return database.New(
			database.NewDriverSQLite(config.SQLitePath),
			options...,
		)
	case "postgres":
		return database.New(
			database.NewDriverPostgres(database.DriverPostgresConfig{
				Host: config.PostgresHost,
				Port: config.PostgresPort,
				User: config.PostgresUser,
				Pass: config.PostgresPass,
				Name: config.PostgresName,
			}),
			options...,
		)
	case "mysql":
		return database.New(
			database.NewDriverMySQL(database.DriverMySQLConfig{
				Host:      config.MySQLHost,
				Port:      config.MySQLPort,
				User:      config.MySQLUser,
				Pass:      config.MySQLPass,
				Name:      config.MySQLName,
				Charset:   config.MySQLCharset,
				Collation: config.MySQLCollation,
			}),
			options...,
		)
	}

	return nil, fmt.Errorf("invalid database driver: %s", config.AppDriverDatabase)
}

// Cache builds the configured cache driver. The memory driver sweeps expired
// entries until ctx is done.
func (config Config) Cache(ctx context.Context) (cache.Driver, error) {
	switch config.AppDriverCache {
	case "memory":
		return cache.NewDriverMemory(ctx)
	case "redis":
		return cache.NewDriverRedis(cache.DriverRedisConfig{
			Host:   config.RedisHost,
			Port:   config.RedisPort,
			User:   config.RedisUser,
			Pass:   config.RedisPass,
			Number: config.RedisNumber,
		})
	}

	return nil, fmt.Errorf("invalid cache driver: %s", config.AppDriverCache)
}
