package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rpattn/testplan/internal/db"
)

// Config is the application configuration.
type Config struct {
	Database db.Config
	Server   ServerConfig
	Log      LogConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Database: db.DefaultConfig(),
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads configPath/.env and configPath/config.yaml, both optional, then
// applies environment overrides. TESTPLAN_SERVER_ADDR style variables work for
// every key; the database keys also accept DB_HOST, DB_PORT and friends.
func Load(configPath string) (Config, error) {
	cfg := Default()

	if configPath == "" {
		configPath = "."
	}

	envFile := filepath.Join(configPath, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix("TESTPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.host", cfg.Database.Host)
	v.SetDefault("database.port", cfg.Database.Port)
	v.SetDefault("database.user", cfg.Database.User)
	v.SetDefault("database.password", cfg.Database.Password)
	v.SetDefault("database.dbname", cfg.Database.DBName)
	v.SetDefault("database.sslmode", cfg.Database.SSLMode)
	v.SetDefault("database.maxconns", cfg.Database.MaxConns)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.allowedorigins", cfg.Server.AllowedOrigins)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)

	for _, key := range []string{"host", "port", "user", "password", "dbname", "sslmode"} {
		if err := v.BindEnv("database."+key, "TESTPLAN_DATABASE_"+strings.ToUpper(key), "DB_"+strings.ToUpper(key)); err != nil {
			return cfg, fmt.Errorf("failed to bind database.%s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.Database = db.Config{
		Host:     v.GetString("database.host"),
		Port:     v.GetInt("database.port"),
		User:     v.GetString("database.user"),
		Password: v.GetString("database.password"),
		DBName:   v.GetString("database.dbname"),
		SSLMode:  v.GetString("database.sslmode"),
		MaxConns: v.GetInt32("database.maxconns"),
	}
	cfg.Server = ServerConfig{
		Addr:           v.GetString("server.addr"),
		AllowedOrigins: splitOrigins(v.GetStringSlice("server.allowedorigins")),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	if cfg.Database.Port <= 0 {
		return cfg, fmt.Errorf("invalid database port %d", cfg.Database.Port)
	}
	return cfg, nil
}

// env vars arrive as a single comma separated string
func splitOrigins(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, origin := range strings.Split(entry, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}
