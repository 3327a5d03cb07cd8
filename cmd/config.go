package main

import (
	"chat-relay/internal"
	"fmt"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// loadConfig reads an optional .env file, then the environment.
// Variables already set in the environment win over the file.
func loadConfig() (internal.Config, error) {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return config, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}
