/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package perf

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// MaxSubsetSize bounds BestPerfectScoreExhaustive, which visits 2^k-1
// subsets.
const MaxSubsetSize = 24

// PerfectScore is the best CPR achievable with a perfect record against some
// subset of a rating list.
type PerfectScore struct {
	Rating float64
	// Subset holds indices into the input list, ascending.
	Subset []int
}

// BestPerfectScore returns the highest CPR obtainable by winning every game
// against a non-empty subset of ratings.
//
// With a perfect score the CPR of a subset depends only on its size and
// average, so for each size s the best subset is the s highest ratings. This
// visits k subsets instead of 2^k-1 and returns the same maximum as
// BestPerfectScoreExhaustive.
func BestPerfectScore(ratings []float64) (PerfectScore, error) {
	if len(ratings) == 0 {
		return PerfectScore{}, fmt.Errorf("best perfect score: %w",
			ErrInputEmpty)
	}

	order := make([]int, len(ratings))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return ratings[order[i]] > ratings[order[j]]
	})

	best := PerfectScore{Rating: math.Inf(-1)}
	bestSize := 0
	sum := 0.0
	for s := 1; s <= len(order); s++ {
		sum += ratings[order[s-1]]
		cpr, err := CPR(sum/float64(s), float64(s), s)
		if err != nil {
			return PerfectScore{}, err
		}
		if cpr > best.Rating {
			best.Rating = cpr
			bestSize = s
		}
	}

	best.Subset = append([]int(nil), order[:bestSize]...)
	sort.Ints(best.Subset)
	return best, nil
}

// BestPerfectScoreExhaustive enumerates every non-empty subset of ratings
// and returns the one with the highest perfect-score CPR. Ties keep the
// lowest subset mask. It fails with ErrInvalidInput when len(ratings)
// exceeds MaxSubsetSize.
func BestPerfectScoreExhaustive(ctx context.Context,
	ratings []float64) (PerfectScore, error) {

	k := len(ratings)
	if k == 0 {
		return PerfectScore{}, fmt.Errorf("best perfect score: %w",
			ErrInputEmpty)
	}
	if k > MaxSubsetSize {
		return PerfectScore{}, fmt.Errorf("%v ratings exceeds subset limit %v: %w",
			k, MaxSubsetSize, ErrInvalidInput)
	}

	total := uint64(1) << uint(k)
	chunks := uint64(runtime.GOMAXPROCS(0))
	if chunks > total-1 {
		chunks = total - 1
	}
	span := (total - 1 + chunks - 1) / chunks

	type partial struct {
		cpr  float64
		mask uint64
	}
	results := make([]partial, chunks)

	g, ctx := errgroup.WithContext(ctx)
	for c := uint64(0); c < chunks; c++ {
		c := c
		g.Go(func() error {
			lo := 1 + c*span
			hi := lo + span
			if hi > total {
				hi = total
			}
			best := partial{cpr: math.Inf(-1)}
			for mask := lo; mask < hi; mask++ {
				if mask&0xffff == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				sum := 0.0
				s := 0
				for i := 0; i < k; i++ {
					if mask&(1<<uint(i)) != 0 {
						sum += ratings[i]
						s++
					}
				}
				cpr, err := CPR(sum/float64(s), float64(s), s)
				if err != nil {
					return err
				}
				if cpr > best.cpr {
					best = partial{cpr: cpr, mask: mask}
				}
			}
			results[c] = best
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PerfectScore{}, err
	}

	best := partial{cpr: math.Inf(-1)}
	for _, p := range results {
		if p.cpr > best.cpr {
			best = p
		}
	}

	ret := PerfectScore{Rating: best.cpr}
	for i := 0; i < k; i++ {
		if best.mask&(1<<uint(i)) != 0 {
			ret.Subset = append(ret.Subset, i)
		}
	}
	return ret, nil
}
