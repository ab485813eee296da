/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package pre

import (
	"fmt"
	"runtime"

	"github.com/mikeb26/chess-pre/perf"
)

const DefaultMaxIterations = 1000

// Config controls an equilibrium run.
type Config struct {
	Perf perf.Options
	// MaxIterations caps the number of Jacobi steps.
	MaxIterations int
	// Workers bounds how many players are updated concurrently within one
	// iteration.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		Perf:          perf.DefaultOptions(),
		MaxIterations: DefaultMaxIterations,
		Workers:       runtime.GOMAXPROCS(0),
	}
}

func (cfg Config) Validate() error {
	if err := cfg.Perf.Validate(); err != nil {
		return err
	}
	if cfg.MaxIterations < 2 {
		return fmt.Errorf("max iterations %v must be at least 2: %w",
			cfg.MaxIterations, perf.ErrInvalidInput)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers %v: %w", cfg.Workers, perf.ErrInvalidInput)
	}
	return nil
}
