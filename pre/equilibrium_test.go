/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package pre

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/mikeb26/chess-pre/perf"
)

// game records result from a's perspective for both players.
func game(a, b *Player, result float64) {
	a.Games = append(a.Games, Game{OpponentID: b.ID, Result: result,
		OpponentRating: b.Rating})
	b.Games = append(b.Games, Game{OpponentID: a.ID, Result: 1 - result,
		OpponentRating: a.Rating})
}

func newTestSolver(t *testing.T, mutate func(cfg *Config)) *Solver {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewSolver(cfg)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	return s
}

func mustGraph(t *testing.T, players ...*Player) *Graph {
	t.Helper()
	g, err := NewGraph(&Roster{Event: "test", Players: players})
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	return g
}

func cyclicRoster() []*Player {
	a := &Player{ID: "a", Name: "Alice", Rating: 2000}
	b := &Player{ID: "b", Name: "Bob", Rating: 1900}
	c := &Player{ID: "c", Name: "Carol", Rating: 1800}
	game(a, b, 1)
	game(b, c, 1)
	game(c, a, 1)
	return []*Player{a, b, c}
}

func TestRun_DrawBetweenEquals(t *testing.T) {
	a := &Player{ID: "1", Name: "A", Rating: 1500}
	b := &Player{ID: "2", Name: "B", Rating: 1500}
	game(a, b, 0.5)

	res, err := newTestSolver(t, nil).Run(context.Background(),
		mustGraph(t, a, b))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Converged || res.Iterations != 2 {
		t.Fatalf("expected convergence in exactly 2 iterations, got %v %v",
			res.Converged, res.Iterations)
	}
	for _, pr := range res.Players {
		if pr.PRE != 1500 || pr.TPR != 1500 {
			t.Errorf("%v: TPR %v PRE %v; want 1500", pr.ID, pr.TPR, pr.PRE)
		}
		if !pr.Converged || !pr.Valid {
			t.Errorf("%v: expected converged and valid", pr.ID)
		}
		// seed plus one estimate per iteration
		if pr.Series.Len() != res.Iterations+1 {
			t.Errorf("%v: series length %v", pr.ID, pr.Series.Len())
		}
	}
}

func TestRun_Oscillation(t *testing.T) {
	// each player's performance is the other's rating, so the estimates
	// swap forever
	a := &Player{ID: "1", Name: "A", Rating: 1600}
	b := &Player{ID: "2", Name: "B", Rating: 1400}
	game(a, b, 0.5)

	s := newTestSolver(t, func(cfg *Config) { cfg.MaxIterations = 25 })
	res, err := s.Run(context.Background(), mustGraph(t, a, b))
	if !errors.Is(err, perf.ErrNonConvergent) {
		t.Fatalf("expected ErrNonConvergent, got %v", err)
	}
	if res == nil || res.Converged || res.Iterations != 25 {
		t.Fatalf("expected a flagged result after 25 iterations, got %+v", res)
	}
	for _, pr := range res.Players {
		if pr.Converged {
			t.Errorf("%v: unexpectedly converged", pr.ID)
		}
		if pr.Series.Len() != 26 {
			t.Errorf("%v: series length %v want 26", pr.ID, pr.Series.Len())
		}
	}
}

func TestRun_Cyclic(t *testing.T) {
	var first *Result
	for _, workers := range []int{1, 2, 8} {
		s := newTestSolver(t, func(cfg *Config) { cfg.Workers = workers })
		res, err := s.Run(context.Background(), mustGraph(t, cyclicRoster()...))
		if err != nil {
			t.Fatalf("workers=%v: unexpected error: %v", workers, err)
		}
		if !res.Converged || res.Iterations > 50 {
			t.Fatalf("workers=%v: converged=%v after %v iterations", workers,
				res.Converged, res.Iterations)
		}
		for _, pr := range res.Players {
			if pr.PRE != 1900 {
				t.Errorf("workers=%v %v: PRE %v want 1900", workers, pr.ID, pr.PRE)
			}
		}
		if first == nil {
			first = res
			continue
		}
		if res.Iterations != first.Iterations {
			t.Fatalf("iterations differ across runs: %v vs %v", res.Iterations,
				first.Iterations)
		}
		for i, pr := range res.Players {
			prev := first.Players[i]
			for j := 0; j < pr.Series.Len(); j++ {
				if pr.Series.At(j) != prev.Series.At(j) {
					t.Fatalf("%v: estimate %v differs: %v vs %v", pr.ID, j,
						pr.Series.At(j), prev.Series.At(j))
				}
			}
		}
	}

	// first iteration: Alice beat 1900 and lost to 1800
	alice, _ := first.Player("a")
	if alice.TPR != 1850 {
		t.Errorf("Alice TPR %v want 1850", alice.TPR)
	}
}

func TestRun_Linear(t *testing.T) {
	s := newTestSolver(t, func(cfg *Config) { cfg.Perf.Mode = perf.ModeLinear })
	res, err := s.Run(context.Background(), mustGraph(t, cyclicRoster()...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != perf.ModeLinear {
		t.Fatalf("unexpected mode %v", res.Mode)
	}
	bob, _ := res.Player("b")
	if bob.TPR != 1900 || bob.PRE != 1900 {
		t.Fatalf("Bob TPR %v PRE %v; want 1900", bob.TPR, bob.PRE)
	}
}

func TestRun_UnratedAndPerfect(t *testing.T) {
	// an unrated player is seeded with the average; a perfect score uses CPR
	a := &Player{ID: "a", Name: "A", Rating: 1800}
	b := &Player{ID: "b", Name: "B", Rating: 1600}
	c := &Player{ID: "c", Name: "C"}
	game(c, a, 1)
	game(c, b, 1)
	game(a, b, 0.5)

	s := newTestSolver(t, func(cfg *Config) { cfg.MaxIterations = 10 })
	res, err := s.Run(context.Background(), mustGraph(t, a, b, c))
	if err != nil && !errors.Is(err, perf.ErrNonConvergent) {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AverageRating != 1700 {
		t.Fatalf("average %v want 1700", res.AverageRating)
	}
	pc, _ := res.Player("c")
	want, _ := perf.CPR(1700, 2, 2)
	if pc.TPR != int(math.Round(want)) {
		t.Fatalf("C TPR %v want %v", pc.TPR, math.Round(want))
	}
	if pc.Points != 2 || pc.Games != 2 {
		t.Fatalf("C points %v games %v", pc.Points, pc.Games)
	}
}

func TestRun_IllPosedPlayer(t *testing.T) {
	// A's only opponent is far outside the bracket, so A never solves; B
	// still converges using A's initial rating
	a := &Player{ID: "a", Name: "A", Rating: 1500}
	b := &Player{ID: "b", Name: "B", Rating: 1500}
	game(a, b, 0.5)
	a.Games = append(a.Games, Game{OpponentID: "x", Result: 0.5,
		OpponentRating: 3900})

	s := newTestSolver(t, func(cfg *Config) {
		cfg.Perf.Low = 1400
		cfg.Perf.High = 1600
		cfg.MaxIterations = 5
	})
	res, err := s.Run(context.Background(), mustGraph(t, a, b))
	if !errors.Is(err, perf.ErrNonConvergent) {
		t.Fatalf("expected ErrNonConvergent, got %v", err)
	}
	pa, _ := res.Player("a")
	if pa.Valid || pa.TPRValid {
		t.Fatalf("expected A to have no estimate, got %+v", pa)
	}
	pb, _ := res.Player("b")
	if !pb.Valid || !pb.Converged || pb.PRE != 1500 {
		t.Fatalf("expected B to settle at 1500, got %+v", pb)
	}
}

func TestRun_Inactive(t *testing.T) {
	a := &Player{ID: "a", Name: "A", Rating: 1500}
	b := &Player{ID: "b", Name: "B", Rating: 1500}
	idle := &Player{ID: "z", Name: "Z", Rating: 2200}
	game(a, b, 0.5)

	res, err := newTestSolver(t, nil).Run(context.Background(),
		mustGraph(t, a, b, idle))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pz, ok := res.Player("z")
	if !ok || pz.Valid || pz.Series != nil || pz.Games != 0 {
		t.Fatalf("expected idle player without estimates, got %+v", pz)
	}
	if len(res.Players) != 3 {
		t.Fatalf("expected 3 players, got %v", len(res.Players))
	}
}

func TestRun_Errors(t *testing.T) {
	s := newTestSolver(t, nil)
	ctx := context.Background()

	if _, err := s.Run(ctx, nil); !errors.Is(err, perf.ErrInputEmpty) {
		t.Errorf("nil graph: expected ErrInputEmpty, got %v", err)
	}

	a := &Player{ID: "a", Name: "A"}
	b := &Player{ID: "b", Name: "B"}
	game(a, b, 1)
	if _, err := s.Run(ctx, mustGraph(t, a, b)); !errors.Is(err, perf.ErrInvalidInput) {
		t.Errorf("no ratings: expected ErrInvalidInput, got %v", err)
	}

	idle := &Player{ID: "z", Rating: 1500}
	if _, err := s.Run(ctx, mustGraph(t, idle)); !errors.Is(err, perf.ErrInputEmpty) {
		t.Errorf("no games: expected ErrInputEmpty, got %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newTestSolver(t, nil).Run(ctx, mustGraph(t, cyclicRoster()...))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res == nil || res.Converged || res.Iterations != 0 {
		t.Fatalf("expected an empty partial result, got %+v", res)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 1
	if _, err := NewSolver(cfg); !errors.Is(err, perf.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for 1 iteration, got %v", err)
	}
	cfg = DefaultConfig()
	cfg.Workers = 0
	if _, err := NewSolver(cfg); !errors.Is(err, perf.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for 0 workers, got %v", err)
	}
	cfg = DefaultConfig()
	cfg.Perf.High = cfg.Perf.Low
	if _, err := NewSolver(cfg); !errors.Is(err, perf.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty bracket, got %v", err)
	}
}
