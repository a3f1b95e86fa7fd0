// Package main is the entry point for the timesheet application.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/milymoreno/timesheet/cmd"
	"github.com/milymoreno/timesheet/internal/logging"
)

func main() {
	// Missing .env is fine; production deployments use real env vars.
	if err := godotenv.Load(); err == nil {
		logging.Debug("loaded environment from .env file")
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Info("starting timesheet", "log_level", logLevel)

	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
