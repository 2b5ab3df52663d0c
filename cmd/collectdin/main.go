package main

import (
	"fmt"
	"os"

	"github.com/danmuck/collectdin/internal/collectdin"
	"github.com/danmuck/collectdin/internal/logging"
)

func main() {
	logging.ConfigureRuntime()
	logger := logging.Component("collectdin")

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "collectdin: %v\n", err)
		os.Exit(2)
	}

	svc, err := collectdin.NewService(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "collectdin: %v\n", err)
		os.Exit(1)
	}
	logger.Info().
		Str("listen", cfg.Listen).
		Str("admin", cfg.AdminAddr).
		Str("output", cfg.Output).
		Int("types", svc.Types().Len()).
		Msg("collectdin starting")
	if err := svc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "collectdin: %v\n", err)
		os.Exit(1)
	}
}
