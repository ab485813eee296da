/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package perf

import (
	"fmt"
	"math"
	"sort"
)

// TournamentPerformance returns avg - 400*log10((n-m)/m). It is undefined
// for zero and perfect scores.
func TournamentPerformance(m float64, n float64, avg float64) (float64, error) {
	if !(n > 0) || m < 0 || m > n {
		return 0, fmt.Errorf("score %v in %v games: %w", m, n, ErrInvalidInput)
	}
	if m == 0 {
		return 0, fmt.Errorf("tpr undefined: player lost all games: %w",
			ErrInvalidInput)
	}
	if m == n {
		return 0, fmt.Errorf("tpr undefined: player won all games: %w",
			ErrInvalidInput)
	}
	return avg - Scale*math.Log10((n-m)/m), nil
}

// EstimatedPerformance converts a per-game win probability against
// opponents averaging avg into a rating.
func EstimatedPerformance(w float64, avg float64) (float64, error) {
	if !(w > 0 && w < 1) {
		return 0, fmt.Errorf("win probability %v: %w", w, ErrInvalidInput)
	}
	return avg - Scale*math.Log10((1-w)/w), nil
}

// fideStep is one row of the FIDE p -> dp conversion table; P is the
// percentage score.
type fideStep struct {
	P  int
	DP int
}

// ordered by P ascending
var fideTable = []fideStep{
	{0, -800}, {1, -677}, {2, -589}, {3, -538}, {4, -501}, {5, -470},
	{6, -444}, {7, -422}, {8, -401}, {9, -383}, {10, -366}, {11, -351},
	{12, -336}, {13, -322}, {14, -309}, {15, -296}, {16, -284}, {17, -273},
	{18, -262}, {19, -251}, {20, -240}, {21, -230}, {22, -220}, {23, -211},
	{24, -202}, {25, -193}, {26, -184}, {27, -175}, {28, -166}, {29, -158},
	{30, -149}, {31, -141}, {32, -133}, {33, -125}, {34, -117}, {35, -110},
	{36, -102}, {37, -95}, {38, -87}, {39, -80}, {40, -72}, {41, -65},
	{42, -57}, {43, -50}, {44, -43}, {45, -36}, {46, -29}, {47, -21},
	{48, -14}, {49, -7}, {50, 0}, {51, 7}, {52, 14}, {53, 21}, {54, 29},
	{55, 36}, {56, 43}, {57, 50}, {58, 57}, {59, 65}, {60, 72}, {61, 80},
	{62, 87}, {63, 95}, {64, 102}, {65, 110}, {66, 117}, {67, 125},
	{68, 133}, {69, 141}, {70, 149}, {71, 158}, {72, 166}, {73, 175},
	{74, 184}, {75, 193}, {76, 202}, {77, 211}, {78, 220}, {79, 230},
	{80, 240}, {81, 251}, {82, 262}, {83, 273}, {84, 284}, {85, 296},
	{86, 309}, {87, 322}, {88, 336}, {89, 351}, {90, 366}, {91, 383},
	{92, 401}, {93, 422}, {94, 444}, {95, 470}, {96, 501}, {97, 538},
	{98, 589}, {99, 677}, {100, 800},
}

// FideRatingDifference returns the FIDE table dp for percentage score
// pct (0..100), using the nearest table entry.
func FideRatingDifference(pct float64) (int, error) {
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return 0, fmt.Errorf("percentage %v: %w", pct, ErrInvalidInput)
	}

	i := sort.Search(len(fideTable), func(i int) bool {
		return float64(fideTable[i].P) >= pct
	})
	if i == len(fideTable) {
		i--
	}
	if i > 0 && pct-float64(fideTable[i-1].P) <= float64(fideTable[i].P)-pct {
		i--
	}
	return fideTable[i].DP, nil
}

// FidePerformance returns avg + dp(p) where p is m/n rounded to two decimal
// places.
func FidePerformance(m float64, n float64, avg float64) (float64, error) {
	if !(n > 0) || m < 0 || m > n {
		return 0, fmt.Errorf("score %v in %v games: %w", m, n, ErrInvalidInput)
	}
	dp, err := FideRatingDifference(math.Round(100 * m / n))
	if err != nil {
		return 0, err
	}
	return avg + float64(dp), nil
}
