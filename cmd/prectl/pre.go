/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mikeb26/chess-pre/config"
	"github.com/mikeb26/chess-pre/perf"
	"github.com/mikeb26/chess-pre/pgn"
	"github.com/mikeb26/chess-pre/pre"
	"github.com/mikeb26/chess-pre/uschess"
	"github.com/mikeb26/chess-pre/xtable"
)

// rosterSource names where the games of an equilibrium run come from.
// Exactly one source may be set.
type rosterSource struct {
	uscfEvent  int
	section    string
	pgnPath    string
	xtablePath string
	rounds     int
	rosterPath string
}

func (src rosterSource) validate() error {
	count := 0
	for _, set := range []bool{src.uscfEvent != 0, src.pgnPath != "",
		src.xtablePath != "", src.rosterPath != ""} {
		if set {
			count++
		}
	}
	if count != 1 {
		return fmt.Errorf("exactly one of -uscfeid, -pgn, -xtable or -roster is required")
	}
	return nil
}

func readRosterJSON(path string) (*pre.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var roster pre.Roster
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("failed to parse roster %v: %w", path, err)
	}
	if roster.Event == "" {
		roster.Event = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &roster, nil
}

// loadRosters returns one roster per section of the source. client is only
// used for US Chess events.
func loadRosters(ctx context.Context, src rosterSource,
	client *uschess.Client) ([]*pre.Roster, error) {

	if err := src.validate(); err != nil {
		return nil, err
	}

	switch {
	case src.pgnPath != "":
		roster, err := pgn.Load(src.pgnPath)
		if err != nil {
			return nil, err
		}
		return []*pre.Roster{roster}, nil
	case src.xtablePath != "":
		roster, err := xtable.Load(src.xtablePath, src.rounds)
		if err != nil {
			return nil, err
		}
		return []*pre.Roster{roster}, nil
	case src.rosterPath != "":
		roster, err := readRosterJSON(src.rosterPath)
		if err != nil {
			return nil, err
		}
		return []*pre.Roster{roster}, nil
	}

	tourney, err := client.FetchCrossTables(ctx, uschess.EventID(src.uscfEvent))
	if err != nil {
		return nil, err
	}
	if src.section == "" {
		return tourney.Rosters(), nil
	}
	xt, ok := tourney.Section(src.section)
	if !ok {
		return nil, fmt.Errorf("event %v has no section matching %q",
			src.uscfEvent, src.section)
	}
	return []*pre.Roster{xt.Roster(tourney.Event.Name)}, nil
}

func handlePre(ctx context.Context, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	solverCfg := cfg.Solver

	var src rosterSource
	fs, verbose := newFlagSet("pre")
	fs.IntVar(&src.uscfEvent, "uscfeid", 0, "US Chess event id")
	fs.StringVar(&src.section, "section", "", "Only this section of the event")
	fs.StringVar(&src.pgnPath, "pgn", "", "PGN file or directory")
	fs.StringVar(&src.xtablePath, "xtable", "", "Crosstable file (.html or .csv)")
	fs.IntVar(&src.rounds, "rounds", 0, "Rounds in the crosstable (0 infers)")
	fs.StringVar(&src.rosterPath, "roster", "", "Roster JSON file")
	fs.TextVar(&solverCfg.Perf.Mode, "mode", solverCfg.Perf.Mode, "Solver mode (exact|linear)")
	fs.IntVar(&solverCfg.MaxIterations, "maxiter", solverCfg.MaxIterations, "Iteration cap")
	fs.Float64Var(&solverCfg.Perf.Low, "low", solverCfg.Perf.Low, "Lower bound of the search bracket")
	fs.Float64Var(&solverCfg.Perf.High, "high", solverCfg.Perf.High, "Upper bound of the search bracket")
	fs.Float64Var(&solverCfg.Perf.Tolerance, "tol", solverCfg.Perf.Tolerance, "Solver tolerance in rating points")
	fs.IntVar(&solverCfg.Workers, "workers", solverCfg.Workers, "Players updated concurrently")
	timeout := fs.Duration("timeout", 0, "Abandon the run after this long (0 for no limit)")
	csvPath := fs.String("csv", "", "Also write the standings to this CSV file")
	jsonOut := fs.Bool("json", false, "Print results as JSON")
	parseFlags(fs, verbose, args)

	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	var client *uschess.Client
	if src.uscfEvent != 0 {
		client = uschess.NewClient(ctx)
	}
	rosters, err := loadRosters(ctx, src, client)
	if err != nil {
		log.Fatalf("Error loading games: %v", err)
	}

	results, err := runPre(ctx, solverCfg, rosters)
	if err != nil {
		log.Fatalf("Error computing PRE: %v", err)
	}

	if *jsonOut {
		err = writeResultsJSON(os.Stdout, results)
	} else {
		for _, res := range results {
			fmt.Println(pre.BuildReport(res))
		}
	}
	if err != nil {
		log.Fatalf("Error writing results: %v", err)
	}

	if *csvPath != "" {
		if err := writeResultsCSV(*csvPath, results); err != nil {
			log.Fatalf("Error writing CSV: %v", err)
		}
	}
}

// runPre solves every roster. A roster that does not converge still yields
// its flagged result.
func runPre(ctx context.Context, cfg pre.Config,
	rosters []*pre.Roster) ([]*pre.Result, error) {

	solver, err := pre.NewSolver(cfg)
	if err != nil {
		return nil, err
	}

	var results []*pre.Result
	for _, roster := range rosters {
		g, err := pre.NewGraph(roster)
		if err != nil {
			if errors.Is(err, perf.ErrInputEmpty) {
				slog.Warn("prectl.runPre: skipping empty roster",
					"event", roster.Event)
				continue
			}
			return nil, fmt.Errorf("%v: %w", roster.Event, err)
		}
		for _, issue := range g.CheckReciprocity() {
			slog.Warn("prectl.runPre: inconsistent games", "event", g.Event(),
				"issue", issue.String())
		}

		start := time.Now()
		res, err := solver.Run(ctx, g)
		switch {
		case errors.Is(err, perf.ErrNonConvergent):
		case errors.Is(err, perf.ErrInputEmpty):
			slog.Warn("prectl.runPre: no games played", "event", g.Event())
			continue
		case err != nil:
			return nil, fmt.Errorf("%v: %w", g.Event(), err)
		}
		slog.Debug("prectl.runPre: solved", "event", g.Event(),
			"iterations", res.Iterations, "converged", res.Converged,
			"elapsed", time.Since(start))
		results = append(results, res)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no games to rate: %w", perf.ErrInputEmpty)
	}
	return results, nil
}

func writeResultsJSON(w io.Writer, results []*pre.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// writeResultsCSV writes one file per result; with several results the
// section number is appended to the file name.
func writeResultsCSV(path string, results []*pre.Result) error {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i, res := range results {
		name := path
		if len(results) > 1 {
			name = fmt.Sprintf("%v-%d%v", base, i+1, ext)
		}
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		err = pre.WriteCSV(f, res)
		closeErr := f.Close()
		if err != nil {
			return err
		}
		if closeErr != nil {
			return closeErr
		}
	}
	return nil
}
