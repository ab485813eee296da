/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// InitLogging installs a tint handler on stderr as the default slog logger.
func InitLogging(verbose bool) {
	InitLoggingTo(os.Stderr, verbose)
}

func InitLoggingTo(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}),
	))
}
