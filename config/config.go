/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package config loads settings for the long running binaries from the
// environment, optionally seeded from a .env file.
package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mikeb26/chess-pre/internal"
	"github.com/mikeb26/chess-pre/perf"
	"github.com/mikeb26/chess-pre/pre"
)

const (
	EnvServerPort    = "PRE_SERVER_PORT"
	EnvMode          = "PRE_MODE"
	EnvMaxIterations = "PRE_MAX_ITERATIONS"
	EnvBracketLow    = "PRE_BRACKET_LOW"
	EnvBracketHigh   = "PRE_BRACKET_HIGH"
	EnvTolerance     = "PRE_TOLERANCE"
	EnvCORSOrigins   = "PRE_CORS_ORIGINS"

	EnvDiscordToken     = "DISCORD_BOT_TOKEN"
	EnvDiscordPublicKey = "DISCORD_PUBLIC_KEY"
	EnvDiscordAppID     = "DISCORD_APP_ID"
	EnvDiscordPerfCmdID = "DISCORD_PERF_CMD_ID"

	DefaultServerPort = 8080
)

// Config holds the solver and server settings.
type Config struct {
	ServerPort     int
	Solver         pre.Config
	WebCacheBucket string
	CORSOrigins    []string
}

// Discord holds the bot credentials in addition to Config.
type Discord struct {
	Config
	BotToken  string
	PublicKey ed25519.PublicKey
	AppID     string
	PerfCmdID string
}

func envInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %v environment variable: %w", key, err)
	}
	return v, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %v environment variable: %w", key, err)
	}
	return v, nil
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() (*Config, error) {
	// a missing .env file is not an error
	_ = godotenv.Load()

	port, err := envInt(EnvServerPort, DefaultServerPort)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("%v must be between 1 and 65535, got %d",
			EnvServerPort, port)
	}

	solver := pre.DefaultConfig()
	solver.Perf.Mode, err = perf.ParseMode(os.Getenv(EnvMode))
	if err != nil {
		return nil, fmt.Errorf("invalid %v environment variable: %w", EnvMode, err)
	}
	solver.MaxIterations, err = envInt(EnvMaxIterations, solver.MaxIterations)
	if err != nil {
		return nil, err
	}
	solver.Perf.Low, err = envFloat(EnvBracketLow, solver.Perf.Low)
	if err != nil {
		return nil, err
	}
	solver.Perf.High, err = envFloat(EnvBracketHigh, solver.Perf.High)
	if err != nil {
		return nil, err
	}
	solver.Perf.Tolerance, err = envFloat(EnvTolerance, solver.Perf.Tolerance)
	if err != nil {
		return nil, err
	}
	if err := solver.Validate(); err != nil {
		return nil, fmt.Errorf("invalid solver configuration: %w", err)
	}

	var origins []string
	for _, o := range strings.Split(os.Getenv(EnvCORSOrigins), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Config{
		ServerPort:     port,
		Solver:         solver,
		WebCacheBucket: internal.CacheBucket(),
		CORSOrigins:    origins,
	}, nil
}

// LoadDiscord reads Config plus the Discord application credentials, which
// are all required except the command id.
func LoadDiscord() (*Discord, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	token := os.Getenv(EnvDiscordToken)
	if token == "" {
		return nil, fmt.Errorf("%v environment variable is not set",
			EnvDiscordToken)
	}
	pubKeyText := strings.TrimSpace(os.Getenv(EnvDiscordPublicKey))
	if pubKeyText == "" {
		return nil, fmt.Errorf("%v environment variable is not set",
			EnvDiscordPublicKey)
	}
	pubKey, err := hex.DecodeString(pubKeyText)
	if err != nil || len(pubKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid %v environment variable", EnvDiscordPublicKey)
	}
	appID := os.Getenv(EnvDiscordAppID)
	if appID == "" {
		return nil, fmt.Errorf("%v environment variable is not set",
			EnvDiscordAppID)
	}

	return &Discord{
		Config:    *cfg,
		BotToken:  token,
		PublicKey: ed25519.PublicKey(pubKey),
		AppID:     appID,
		PerfCmdID: os.Getenv(EnvDiscordPerfCmdID),
	}, nil
}
