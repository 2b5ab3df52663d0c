package testlog

import (
	"testing"

	"github.com/danmuck/collectdin/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Start configures the test logging profile and returns a logger tagged with
// the running test name.
func Start(t *testing.T) zerolog.Logger {
	t.Helper()
	logging.ConfigureTests()
	logger := log.Logger.With().Str("test", t.Name()).Logger()
	logger.Info().Msg("start")
	return logger
}
