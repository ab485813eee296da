/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package pre computes tournament-wide equilibrium performance ratings (PRE):
// every player's performance rating, computed against the opponents'
// equilibrium ratings, equals their own.
package pre

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mikeb26/chess-pre/perf"
)

// Solver runs the equilibrium iteration. A Solver may be reused across runs
// and graphs; each Run owns its own state.
type Solver struct {
	cfg Config
}

func NewSolver(cfg Config) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Solver{cfg: cfg}, nil
}

func (s *Solver) Config() Config {
	return s.cfg
}

// run is the state of one equilibrium computation.
type run struct {
	graph   *Graph
	avg     float64
	perf    *perf.Solver
	active  []*Player
	index   map[string]int
	initial []float64
	series  []*Series
	iter    int
}

// Run iterates until every active player's rounded estimate repeats, the
// iteration cap is reached, or ctx is done.
//
// On non-convergence the returned result is complete but flagged and the
// error wraps perf.ErrNonConvergent. On cancellation the partial result is
// returned along with ctx's error.
func (s *Solver) Run(ctx context.Context, g *Graph) (*Result, error) {
	if g == nil || len(g.Players()) == 0 {
		return nil, fmt.Errorf("equilibrium: %w", perf.ErrInputEmpty)
	}
	avg, ok := g.AverageRating()
	if !ok {
		return nil, fmt.Errorf("equilibrium: no known ratings: %w",
			perf.ErrInvalidInput)
	}

	opts := s.cfg.Perf
	opts.Fallback = avg
	ps, err := perf.NewSolver(opts)
	if err != nil {
		return nil, err
	}

	r := s.newRun(g, avg, ps)
	if len(r.active) == 0 {
		return nil, fmt.Errorf("equilibrium: no games played: %w",
			perf.ErrInputEmpty)
	}

	for r.iter < s.cfg.MaxIterations {
		if err := ctx.Err(); err != nil {
			return r.result(s.cfg.Perf.Mode, false), err
		}

		next, err := s.step(ctx, r)
		if err != nil {
			return r.result(s.cfg.Perf.Mode, false), err
		}
		for i, e := range next {
			r.series[i].append(e)
		}
		r.iter++

		if r.iter >= 2 && r.settled() {
			return r.result(s.cfg.Perf.Mode, true), nil
		}
	}

	slog.Warn("pre.Run: equilibrium not reached", "event", g.Event(),
		"iterations", r.iter)

	return r.result(s.cfg.Perf.Mode, false),
		fmt.Errorf("equilibrium not reached after %v iterations: %w", r.iter,
			perf.ErrNonConvergent)
}

func (s *Solver) newRun(g *Graph, avg float64, ps *perf.Solver) *run {
	r := &run{
		graph: g,
		avg:   avg,
		perf:  ps,
		index: make(map[string]int),
	}
	for _, p := range g.Players() {
		if len(p.Games) == 0 {
			continue
		}
		r.index[p.ID] = len(r.active)
		r.active = append(r.active, p)
		seed := p.Rating
		if seed == perf.Unrated {
			seed = avg
		}
		r.initial = append(r.initial, seed)
		r.series = append(r.series, newSeries(seed))
	}
	return r
}

// step computes iteration t from the t-1 snapshot. Each worker writes only
// its own slot of next.
func (s *Solver) step(ctx context.Context, r *run) ([]Estimate, error) {
	snapshot := make([]float64, len(r.active))
	for i, ser := range r.series {
		latest := ser.Latest()
		if latest.Valid {
			snapshot[i] = latest.Value
		} else {
			snapshot[i] = r.initial[i]
		}
	}

	next := make([]Estimate, len(r.active))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.cfg.Workers)
	for i := range r.active {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			next[i] = r.estimate(i, snapshot)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return next, nil
}

// estimate solves one player's performance rating against the snapshot.
// Solver failures yield an invalid estimate rather than an error.
func (r *run) estimate(i int, snapshot []float64) Estimate {
	p := r.active[i]
	opps := make([]float64, 0, len(p.Games))
	for _, g := range p.Games {
		opps = append(opps, r.opponentRating(g, snapshot))
	}

	val, err := r.perf.Solve(opps, p.Points())
	if err != nil {
		slog.Debug("pre.estimate: unable to solve", "player", p.ID,
			"iteration", r.iter+1, "err", err)
		return Estimate{}
	}
	return validEstimate(val)
}

func (r *run) opponentRating(g Game, snapshot []float64) float64 {
	if idx, ok := r.index[g.OpponentID]; ok {
		return snapshot[idx]
	}
	if opp, ok := r.graph.Player(g.OpponentID); ok && opp.Rating != perf.Unrated {
		return opp.Rating
	}
	if g.OpponentRating != perf.Unrated {
		return g.OpponentRating
	}
	return r.avg
}

func (r *run) settled() bool {
	for _, ser := range r.series {
		if !ser.Settled() {
			return false
		}
	}
	return true
}
