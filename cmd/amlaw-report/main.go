package main

import (
	"fmt"
	"os"

	"amlaw/internal/config"
	"amlaw/internal/logging"
	"amlaw/internal/report"
)

func main() {
	cfg, err := config.Load()
	must(err)

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	must(report.ListenAndServe(cfg, logger))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
