/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package perf

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func defaultSolver(t *testing.T) *Solver {
	t.Helper()
	s, err := NewSolver(DefaultOptions())
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	return s
}

func TestExpectedScore(t *testing.T) {
	got, err := ExpectedScore([]float64{2000, 2000}, 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-1.0) > 1e-12 {
		t.Fatalf("ExpectedScore equal ratings: got %v want 1", got)
	}

	// 400 points stronger scores 10:1
	got, _ = ExpectedScore([]float64{1600}, 2000)
	if math.Abs(got-10.0/11.0) > 1e-12 {
		t.Fatalf("ExpectedScore +400: got %v want %v", got, 10.0/11.0)
	}

	if _, err := ExpectedScore(nil, 2000); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for no opponents, got %v", err)
	}
	if _, err := ExpectedScore([]float64{2000}, math.NaN()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing rating, got %v", err)
	}
}

func TestExpectedScore_Monotone(t *testing.T) {
	opps := []float64{2100, 2350, 1980}
	prev := 0.0
	for r := 1000.0; r <= 3500; r += 50 {
		got, err := ExpectedScore(opps, r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got <= prev || got <= 0 || got >= float64(len(opps)) {
			t.Fatalf("ExpectedScore(%v)=%v not strictly increasing in (0,%v)",
				r, got, len(opps))
		}
		prev = got
	}
}

func TestSolve_InvertsExpectedScore(t *testing.T) {
	s := defaultSolver(t)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		k := 1 + rng.Intn(11)
		opps := make([]float64, k)
		for j := range opps {
			opps[j] = 1400 + rng.Float64()*1300
		}
		// a non-boundary half-point score
		halfPoints := 1 + rng.Intn(2*k-1)
		score := float64(halfPoints) / 2

		r, err := s.Solve(opps, score)
		if err != nil {
			t.Fatalf("Solve(%v, %v): %v", opps, score, err)
		}
		// d(expected)/d(rating) <= k*ln(10)/1600 bounds the score error
		e, _ := ExpectedScore(opps, r)
		if math.Abs(e-score) > 2e-4*float64(k) {
			t.Fatalf("ExpectedScore(Solve)=%v want %v (opps=%v r=%v)", e,
				score, opps, r)
		}
	}
}

func TestSolve_NearBoundaryIsStable(t *testing.T) {
	s := defaultSolver(t)
	opps := []float64{2700, 2650, 2720, 2680, 2750, 2690, 2710, 2730, 2660}
	k := float64(len(opps))

	for _, score := range []float64{0.5, k - 0.5} {
		r, err := s.Solve(opps, score)
		if err != nil {
			t.Fatalf("Solve(%v): %v", score, err)
		}
		e, _ := ExpectedScore(opps, r)
		if math.Abs(e-score) > 2e-4*k {
			t.Fatalf("near-boundary score %v: expected score %v at %v", score,
				e, r)
		}
	}
}

func TestSolve_PerfectAndZeroUseCPR(t *testing.T) {
	s := defaultSolver(t)
	opps := []float64{2585, 2585, 2585, 2585, 2585, 2585, 2585, 2585, 2585}

	got, err := s.Solve(opps, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, m, e := 9.0, 9.0, 2585.0
	want := e - ((n+1)/n)*400*math.Log10((n+0.5-m)/(m+0.5))
	if got != want {
		t.Fatalf("perfect score: got %v want exactly %v", got, want)
	}
	cpr, _ := CPR(2585, 9, 9)
	if got != cpr {
		t.Fatalf("perfect score: Solve %v != CPR %v", got, cpr)
	}
	if !(got > 2585) || math.IsInf(got, 0) {
		t.Fatalf("perfect score CPR %v should be finite and above average", got)
	}

	got, err = s.Solve(opps, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !(got < 2585) || math.IsInf(got, 0) {
		t.Fatalf("zero score CPR %v should be finite and below average", got)
	}
}

func TestSolve_MonotoneInOpponentRating(t *testing.T) {
	s := defaultSolver(t)
	base := []float64{1800, 1900, 2000, 2100}
	prev := math.Inf(-1)
	for bump := 0.0; bump <= 600; bump += 25 {
		opps := append([]float64(nil), base...)
		opps[2] += bump
		r, err := s.Solve(opps, 2.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r < prev-s.Options().Tolerance {
			t.Fatalf("raising an opponent lowered the rating: %v -> %v", prev, r)
		}
		prev = r
	}
}

func TestSolve_MissingRatingsUseFallback(t *testing.T) {
	opts := DefaultOptions()
	opts.Fallback = 2000
	s, err := NewSolver(opts)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	withMissing, err := s.Solve([]float64{2000, Unrated}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(withMissing-2000) > opts.Tolerance {
		t.Fatalf("fallback not applied: got %v want 2000", withMissing)
	}

	// without a fallback the rated opponents' mean stands in and the game
	// still counts: 1/2 against 2000s, not a perfect 1/1
	s = defaultSolver(t)
	filled, err := s.Solve([]float64{2000, Unrated}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(filled-2000) > s.Options().Tolerance {
		t.Fatalf("missing rating without fallback: got %v want 2000", filled)
	}

	if _, err := s.Solve([]float64{Unrated}, 0); !errors.Is(err, ErrInputEmpty) {
		t.Fatalf("expected ErrInputEmpty, got %v", err)
	}
	if _, err := s.Solve(nil, 0); !errors.Is(err, ErrInputEmpty) {
		t.Fatalf("expected ErrInputEmpty for no opponents, got %v", err)
	}
}

func TestFillUnrated(t *testing.T) {
	got, err := FillUnrated([]float64{1400, Unrated, 1600, math.NaN()}, Unrated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1400, 1500, 1600, 1500}
	if len(got) != len(want) {
		t.Fatalf("got %v entries want %v", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %v: got %v want %v", i, got[i], want[i])
		}
	}

	got, err = FillUnrated([]float64{Unrated, 1800}, 1200)
	if err != nil || got[0] != 1200 || got[1] != 1800 {
		t.Fatalf("explicit fallback: got %v, %v", got, err)
	}

	in := []float64{2000, Unrated}
	if _, err := FillUnrated(in, Unrated); err != nil || in[1] != Unrated {
		t.Fatalf("input modified or error: %v, %v", in, err)
	}

	if _, err := FillUnrated([]float64{Unrated, Unrated}, Unrated); !errors.Is(err, ErrInputEmpty) {
		t.Fatalf("expected ErrInputEmpty, got %v", err)
	}
}

func TestSolve_Errors(t *testing.T) {
	s := defaultSolver(t)
	if _, err := s.Solve([]float64{2000, 2100}, 3); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for score > games, got %v", err)
	}
	if _, err := s.Solve([]float64{2000, 2100}, -0.5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative score, got %v", err)
	}

	narrow := DefaultOptions()
	narrow.Low, narrow.High = 1000, 4000
	ns, _ := NewSolver(narrow)
	// a 50% score against 500 rated players has its root at 500
	if _, err := ns.Solve([]float64{500, 500}, 1); !errors.Is(err, ErrRootNotBracketed) {
		t.Fatalf("expected ErrRootNotBracketed, got %v", err)
	}
}

func TestSolve_Linear(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeLinear
	s, _ := NewSolver(opts)

	cases := []struct {
		score float64
		want  float64
	}{
		{0, 1600},
		{1, 1800},
		{2, 2000},
		{4, 2400},
	}
	for _, c := range cases {
		got, err := s.Solve([]float64{2000, 2000, 2000, 2000}, c.score)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("linear score %v: got %v want %v", c.score, got, c.want)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	bad := []Options{
		{Low: 4000, High: 0, Tolerance: 0.1},
		{Low: 0, High: 4000, Tolerance: 0},
		{Low: 0, High: 4000, Tolerance: 0.1, Mode: Mode(7)},
	}
	for i, o := range bad {
		if _, err := NewSolver(o); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"exact":    ModeExact,
		"standard": ModeExact,
		"Linear":   ModeLinear,
		"":         ModeExact,
	} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("glicko"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestBrent_NotBracketed(t *testing.T) {
	_, err := brent(func(x float64) float64 { return x*x + 1 }, -1, 1, 1e-9)
	if !errors.Is(err, ErrRootNotBracketed) {
		t.Fatalf("expected ErrRootNotBracketed, got %v", err)
	}
	r, err := brent(func(x float64) float64 { return x*x*x - 2 }, 0, 2, 1e-12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(r-math.Cbrt(2)) > 1e-9 {
		t.Fatalf("brent cube root of 2: got %v", r)
	}
}
