/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package perf implements performance ratings under the logistic (Elo)
// expected-score model with a fixed 400 point scale.
//
// A performance rating is the constant rating that would have produced an
// observed score against a given set of opponents. The exact solver inverts
// the expected score function with Brent's method; perfect and zero scores,
// which have no finite inverse, fall back to the Complete Performance Rating
// (CPR) which applies a half-point continuity correction.
package perf

import (
	"fmt"
	"math"
)

// Scale is the rating difference at which the stronger player is expected to
// score 10 times as much as the weaker one.
const Scale = 400.0

// WinProbability returns the expected score of a player rated a against a
// player rated b.
func WinProbability(a float64, b float64) float64 {
	// 1/(exp(ln(10)*((b-a)/400))+1) == 1/(10^((b-a)/400)+1)
	exp := math.Pow(10, (b-a)/Scale)
	return 1.0 / (exp + 1.0)
}

// ExpectedScore returns the sum of the win probabilities of a player rated
// own against each of the opponents.
func ExpectedScore(opponents []float64, own float64) (float64, error) {
	if len(opponents) == 0 {
		return 0, fmt.Errorf("expected score with no opponents: %w",
			ErrInvalidInput)
	}
	if math.IsNaN(own) || math.IsInf(own, 0) {
		return 0, fmt.Errorf("expected score for rating %v: %w", own,
			ErrInvalidInput)
	}

	return expectedScore(opponents, own), nil
}

// expectedScore is ExpectedScore without validation for use inside the root
// finder.
func expectedScore(opponents []float64, own float64) float64 {
	sum := 0.0
	for _, r := range opponents {
		sum += WinProbability(own, r)
	}
	return sum
}

func average(ratings []float64) float64 {
	sum := 0.0
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}
