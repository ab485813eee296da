/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package perf

import (
	"fmt"
	"math"
	"strings"
)

// Unrated marks a missing rating.
const Unrated = 0.0

// Mode selects how a performance rating is computed.
type Mode int

const (
	// ModeExact inverts the expected score function (closed form CPR for
	// perfect and zero scores).
	ModeExact Mode = iota
	// ModeLinear uses the linear approximation avg + 800*p - 400.
	ModeLinear
)

func (m Mode) String() string {
	if m == ModeExact {
		return "exact"
	} else if m == ModeLinear {
		return "linear"
	} else {
		return "?"
	}
}

// ParseMode accepts "exact" (or the original program's "standard") and
// "linear".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact", "standard":
		return ModeExact, nil
	case "linear":
		return ModeLinear, nil
	default:
		return ModeExact, fmt.Errorf("unknown mode %q: %w", s, ErrInvalidInput)
	}
}

// MarshalText lets Mode appear as a string in JSON documents.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Options configures a Solver.
type Options struct {
	// Low and High bound the root search.
	Low  float64
	High float64
	// Tolerance is the root-finding accuracy in rating points.
	Tolerance float64
	Mode      Mode
	// Fallback replaces Unrated opponent ratings. When it is also Unrated
	// the mean of the rated opponents is used instead.
	Fallback float64
}

// DefaultOptions returns a [0, 4000] search bracket with 0.1 point
// tolerance in exact mode.
func DefaultOptions() Options {
	return Options{
		Low:       0,
		High:      4000,
		Tolerance: 0.1,
		Mode:      ModeExact,
	}
}

func (o Options) Validate() error {
	if math.IsNaN(o.Low) || math.IsNaN(o.High) || !(o.Low < o.High) {
		return fmt.Errorf("search bracket [%v, %v]: %w", o.Low, o.High,
			ErrInvalidInput)
	}
	if !(o.Tolerance > 0) {
		return fmt.Errorf("tolerance %v: %w", o.Tolerance, ErrInvalidInput)
	}
	if o.Mode != ModeExact && o.Mode != ModeLinear {
		return fmt.Errorf("mode %v: %w", int(o.Mode), ErrInvalidInput)
	}
	return nil
}

// Solver computes performance ratings. A Solver is immutable and safe for
// concurrent use.
type Solver struct {
	opts Options
}

func NewSolver(opts Options) (*Solver, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Solver{opts: opts}, nil
}

func (s *Solver) Options() Options {
	return s.opts
}

// Solve returns the performance rating for scoring score points against
// opponents.
//
// Perfect and zero scores use the closed form CPR in exact mode; every other
// score is root-found inside the search bracket. If the bracket does not
// contain the root, ErrRootNotBracketed is returned rather than a clamped
// value.
func (s *Solver) Solve(opponents []float64, score float64) (float64, error) {
	if len(opponents) == 0 {
		return 0, fmt.Errorf("performance rating: %w", ErrInputEmpty)
	}
	opps, err := FillUnrated(opponents, s.opts.Fallback)
	if err != nil {
		return 0, fmt.Errorf("performance rating: %w", err)
	}
	k := float64(len(opps))
	if math.IsNaN(score) || score < 0 || score > k {
		return 0, fmt.Errorf("score %v in %v games: %w", score, len(opps),
			ErrInvalidInput)
	}

	if s.opts.Mode == ModeLinear {
		return LinearPerformance(average(opps), score, len(opps)), nil
	}

	if score == 0 || score == k {
		return CPR(average(opps), score, len(opps))
	}

	f := func(r float64) float64 {
		return expectedScore(opps, r) - score
	}
	r, err := brent(f, s.opts.Low, s.opts.High, s.opts.Tolerance)
	if err != nil {
		return 0, fmt.Errorf("performance rating for %v/%v in [%v, %v]: %w",
			score, len(opps), s.opts.Low, s.opts.High, err)
	}
	return r, nil
}

func isUnrated(r float64) bool {
	return r == Unrated || math.IsNaN(r)
}

// FillUnrated returns a copy of opponents with every Unrated entry replaced
// by fallback, or by the mean of the rated entries when fallback is itself
// Unrated. Every game keeps its slot. ErrInputEmpty is returned when there
// is nothing to fill from.
func FillUnrated(opponents []float64, fallback float64) ([]float64, error) {
	if isUnrated(fallback) {
		var sum float64
		var rated int
		for _, r := range opponents {
			if !isUnrated(r) {
				sum += r
				rated++
			}
		}
		if rated == 0 {
			return nil, fmt.Errorf("no rated opponents: %w", ErrInputEmpty)
		}
		fallback = sum / float64(rated)
	}

	out := make([]float64, len(opponents))
	for i, r := range opponents {
		if isUnrated(r) {
			r = fallback
		}
		out[i] = r
	}
	return out, nil
}

// CPR returns the Complete Performance Rating for scoring score points in
// games games against opponents averaging avg.
//
// CPR is the rating R such that, had the player additionally drawn a game
// against an opponent rated R, the rating would not change. It is finite
// for every 0 <= score <= games.
func CPR(avg float64, score float64, games int) (float64, error) {
	if games <= 0 {
		return 0, fmt.Errorf("cpr with %v games: %w", games, ErrInvalidInput)
	}
	n := float64(games)
	if math.IsNaN(score) || score < 0 || score > n {
		return 0, fmt.Errorf("cpr score %v in %v games: %w", score, games,
			ErrInvalidInput)
	}

	return avg - ((n+1)/n)*Scale*math.Log10((n+0.5-score)/(score+0.5)), nil
}

// CompletePerformance is CPR against an explicit list of opponent ratings.
func CompletePerformance(opponents []float64, score float64) (float64, error) {
	if len(opponents) == 0 {
		return 0, fmt.Errorf("complete performance: %w", ErrInputEmpty)
	}
	return CPR(average(opponents), score, len(opponents))
}

// LinearPerformance returns avg + 800*(score/games) - 400. It is continuous
// over the whole score range, including perfect and zero scores.
func LinearPerformance(avg float64, score float64, games int) float64 {
	return avg + 2*Scale*(score/float64(games)) - Scale
}
