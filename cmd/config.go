package cmd

import (
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/josephgoksu/backlog/internal/config"
)

// InitConfig loads .env and sets up environment overrides for the global
// flags (BACKLOG_JSON, BACKLOG_LOCAL_ONLY, ...). The project configuration
// itself is read per command by openProject.
func InitConfig() {
	// It's okay if .env file doesn't exist.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}
