package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger: console output on stderr, info level
// unless LOG_LEVEL says otherwise (debug|info|warn|error).
func Setup() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()

	level := zerolog.InfoLevel
	if s := strings.TrimSpace(os.Getenv("LOG_LEVEL")); s != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(s)); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
}
