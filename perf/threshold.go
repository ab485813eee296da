/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package perf

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// probability roots are found to well below any displayed precision
const probTolerance = 1e-12

// Optimum is a win probability chosen by Optimize or OptimizePlus along with
// the probability of the score at that win probability.
type Optimum struct {
	W           float64
	Probability float64
}

// AdjustScore converts a score of m points in n games into integral trials.
// Half-point scores are doubled so that a draw counts as one success out of
// two.
func AdjustScore(m float64, n float64) (int, int) {
	if m != math.Trunc(m) {
		return int(m * 2), int(n * 2)
	}
	return int(m), int(n)
}

func validateTrials(m int, n int) error {
	if n <= 0 || m < 0 || m > n {
		return fmt.Errorf("score %v in %v games: %w", m, n, ErrInvalidInput)
	}
	return nil
}

// ScoreProbability returns the probability of exactly m successes in n
// independent games with per-game win probability w.
func ScoreProbability(w float64, m int, n int) float64 {
	switch {
	case m < 0 || m > n:
		return 0
	case w <= 0:
		return boolProb(m == 0)
	case w >= 1:
		return boolProb(m == n)
	}
	return distuv.Binomial{N: float64(n), P: w}.Prob(float64(m))
}

// ScorePlusProbability returns the probability of at least m successes in n
// games.
func ScorePlusProbability(w float64, m int, n int) float64 {
	switch {
	case m <= 0:
		return 1
	case m > n:
		return 0
	case w <= 0:
		return 0
	case w >= 1:
		return 1
	}
	// Survival(x) is P(X > x)
	return distuv.Binomial{N: float64(n), P: w}.Survival(float64(m - 1))
}

// the binomial log-density is undefined at w == 0 and w == 1
func boolProb(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Optimize returns the win probability w that maximises the probability of
// scoring exactly m in n games subject to that probability not exceeding
// threshold.
//
// The objective is unimodal with its mode at m/n. If the mode satisfies the
// threshold it is returned; otherwise the threshold boundary nearest the
// mode is (both boundaries have probability == threshold).
func Optimize(m int, n int, threshold float64) (Optimum, error) {
	if err := validateTrials(m, n); err != nil {
		return Optimum{}, err
	}
	if math.IsNaN(threshold) || threshold < 0 {
		return Optimum{}, fmt.Errorf("threshold %v: %w", threshold,
			ErrInfeasibleThreshold)
	}

	mode := float64(m) / float64(n)
	peak := ScoreProbability(mode, m, n)
	if peak <= threshold {
		return Optimum{W: mode, Probability: peak}, nil
	}

	f := func(w float64) float64 {
		return ScoreProbability(w, m, n) - threshold
	}

	// the objective increases on [0, mode] and decreases on [mode, 1]
	var candidates []float64
	if m > 0 {
		w, err := brent(f, 0, mode, probTolerance)
		if err == nil {
			candidates = append(candidates, w)
		}
	}
	if m < n {
		w, err := brent(f, mode, 1, probTolerance)
		if err == nil {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		return Optimum{}, fmt.Errorf("score %v/%v below %v: %w", m, n,
			threshold, ErrInfeasibleThreshold)
	}

	best := candidates[0]
	for _, w := range candidates[1:] {
		if math.Abs(w-mode) < math.Abs(best-mode) {
			best = w
		}
	}
	return Optimum{W: best, Probability: ScoreProbability(best, m, n)}, nil
}

// OptimizePlus returns the largest win probability w whose probability of
// scoring at least m in n games does not exceed threshold. The cumulative
// probability is non-decreasing in w so this is a root find rather than a
// general optimisation.
func OptimizePlus(m int, n int, threshold float64) (Optimum, error) {
	if err := validateTrials(m, n); err != nil {
		return Optimum{}, err
	}
	if math.IsNaN(threshold) || threshold < 0 {
		return Optimum{}, fmt.Errorf("threshold %v: %w", threshold,
			ErrInfeasibleThreshold)
	}
	if threshold >= 1 {
		return Optimum{W: 1, Probability: 1}, nil
	}
	if m == 0 {
		// at least zero points is certain for every w
		return Optimum{}, fmt.Errorf("score 0/%v below %v: %w", n, threshold,
			ErrInfeasibleThreshold)
	}

	f := func(w float64) float64 {
		return ScorePlusProbability(w, m, n) - threshold
	}
	w, err := brent(f, 0, 1, probTolerance)
	if err != nil {
		return Optimum{}, err
	}
	// keep the constraint satisfied despite the root tolerance
	for w > 0 && ScorePlusProbability(w, m, n) > threshold {
		w = math.Max(0, w-probTolerance)
	}
	return Optimum{W: w, Probability: ScorePlusProbability(w, m, n)}, nil
}
