/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package perf

import "errors"

var (
	// ErrInvalidInput indicates a malformed score, game count, rating or
	// option.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRootNotBracketed indicates the search bracket does not contain a
	// sign change, so no rating in the bracket produces the score.
	ErrRootNotBracketed = errors.New("root not bracketed")

	// ErrInputEmpty indicates there were no (usable) opponent ratings.
	ErrInputEmpty = errors.New("input empty")

	// ErrInfeasibleThreshold indicates no win probability in [0,1] satisfies
	// the probability threshold.
	ErrInfeasibleThreshold = errors.New("infeasible threshold")

	// ErrNonConvergent indicates an iterative process exhausted its
	// iteration budget.
	ErrNonConvergent = errors.New("non-convergent")
)
