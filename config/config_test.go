/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/mikeb26/chess-pre/perf"
	"github.com/mikeb26/chess-pre/pre"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvServerPort, EnvMode, EnvMaxIterations,
		EnvBracketLow, EnvBracketHigh, EnvTolerance, EnvCORSOrigins,
		EnvDiscordToken, EnvDiscordPublicKey, EnvDiscordAppID,
		EnvDiscordPerfCmdID} {

		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != DefaultServerPort {
		t.Errorf("port %v", cfg.ServerPort)
	}
	if cfg.Solver.MaxIterations != pre.DefaultMaxIterations ||
		cfg.Solver.Perf != perf.DefaultOptions() {
		t.Errorf("unexpected solver config %+v", cfg.Solver)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvServerPort, "9090")
	t.Setenv(EnvMode, "linear")
	t.Setenv(EnvMaxIterations, "50")
	t.Setenv(EnvBracketLow, "1000")
	t.Setenv(EnvBracketHigh, "3500")
	t.Setenv(EnvTolerance, "0.01")
	t.Setenv(EnvCORSOrigins, "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != 9090 || cfg.Solver.MaxIterations != 50 {
		t.Errorf("unexpected config %+v", cfg)
	}
	p := cfg.Solver.Perf
	if p.Mode != perf.ModeLinear || p.Low != 1000 || p.High != 3500 || p.Tolerance != 0.01 {
		t.Errorf("unexpected perf options %+v", p)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		EnvServerPort:    "70000",
		EnvMode:          "fast",
		EnvMaxIterations: "many",
		EnvBracketHigh:   "-1",
		EnvTolerance:     "0",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(k, v)
			if _, err := Load(); err == nil {
				t.Fatalf("expected an error for %v=%v", k, v)
			}
		})
	}
}

func TestLoadDiscord(t *testing.T) {
	clearEnv(t)
	if _, err := LoadDiscord(); err == nil {
		t.Fatalf("expected an error without credentials")
	}

	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	t.Setenv(EnvDiscordToken, "token")
	t.Setenv(EnvDiscordPublicKey, hex.EncodeToString(pub))
	t.Setenv(EnvDiscordAppID, "1234")

	d, err := LoadDiscord()
	if err != nil {
		t.Fatalf("LoadDiscord: %v", err)
	}
	if !d.PublicKey.Equal(pub) || d.AppID != "1234" || d.PerfCmdID != "" {
		t.Fatalf("unexpected discord config %+v", d)
	}

	t.Setenv(EnvDiscordPublicKey, "zz")
	if _, err := LoadDiscord(); err == nil {
		t.Fatalf("expected an error for a malformed key")
	}
}
