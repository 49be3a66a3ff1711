package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DatabaseURL   string `validate:"omitempty,pgdsn"`
	WorkerCount   int    `validate:"min=1,max=256"`
	BatchSize     int    `validate:"min=1"`
	ParseMode     string `validate:"omitempty,oneof=auto direct translate"`
	ExportFormat  string `validate:"oneof=tsv json"`
	LogLevel      string `validate:"oneof=trace debug info warn error"`
	LogFile       string
	LogMaxSizeMB  int `validate:"min=1"`
	LogMaxBackups int `validate:"min=0"`
}

// Load reads .env (if present) and the environment. Missing or unparsable
// values fall back to defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		WorkerCount:   getEnvInt("WORKER_COUNT", 8),
		BatchSize:     getEnvInt("BATCH_SIZE", 200),
		ParseMode:     strings.ToLower(getEnv("PARSE_MODE", "auto")),
		ExportFormat:  strings.ToLower(getEnv("EXPORT_FORMAT", "tsv")),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
	}
}

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("pgdsn", isPostgresDSN); err != nil {
		return fmt.Errorf("register validator: %w", err)
	}

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// isPostgresDSN accepts anything pgxpool can connect with: URLs and
// keyword/value strings alike.
func isPostgresDSN(fl validator.FieldLevel) bool {
	_, err := pgxpool.ParseConfig(fl.Field().String())
	return err == nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-numeric value")
		return fallback
	}
	return n
}
