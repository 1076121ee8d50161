package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tandemstudy/tandem-backend/internal/fsrs"
	"github.com/tandemstudy/tandem-backend/internal/pkg/envutil"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

type Config struct {
	HTTPAddr    string
	Environment string
	Version     string

	RedisAddr     string
	RedisPassword string

	Study fsrs.Config
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		HTTPAddr:      envutil.String("HTTP_ADDR", ":8080"),
		Environment:   envutil.String("APP_ENV", "development"),
		Version:       envutil.String("APP_VERSION", "dev"),
		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
	}

	// Scheduler tuning is optional; the FSRS defaults are the shipped
	// behavior and the file only overrides what it names.
	if path := envutil.String("STUDY_CONFIG_PATH", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read study config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg.Study); err != nil {
			return cfg, fmt.Errorf("parse study config %s: %w", path, err)
		}
		log.Info("Loaded study config", "path", path)
	}

	return cfg, nil
}
