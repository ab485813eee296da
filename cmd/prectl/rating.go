/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mikeb26/chess-pre/internal"
	"github.com/mikeb26/chess-pre/perf"
)

// parseRatings parses a comma or whitespace separated rating list. "unr"
// and "0" are unrated.
func parseRatings(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no ratings given: %w", perf.ErrInputEmpty)
	}

	ratings := make([]float64, 0, len(fields))
	for _, f := range fields {
		if strings.EqualFold(f, "unr") || strings.EqualFold(f, "unr.") {
			ratings = append(ratings, perf.Unrated)
			continue
		}
		r, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(r) || r < 0 {
			return nil, fmt.Errorf("invalid rating %q: %w", f, perf.ErrInvalidInput)
		}
		ratings = append(ratings, r)
	}

	return ratings, nil
}

func parseScoreFlag(s string) (float64, error) {
	score, ok := internal.ParseScore(s)
	if !ok {
		return 0, fmt.Errorf("invalid score %q: %w", s, perf.ErrInvalidInput)
	}
	return score, nil
}

func ratingOrDash(r float64, err error) string {
	if err != nil {
		return "-"
	}
	return strconv.Itoa(int(math.Round(r)))
}

func handleCPR(ctx context.Context, args []string) {
	fs, verbose := newFlagSet("cpr")
	avg := fs.Float64("avg", 0, "Average rating of the opponents")
	games := fs.Int("games", 0, "Number of games played")
	ratingsText := fs.String("ratings", "", "Comma separated opponent ratings")
	scoreText := fs.String("score", "", "Points scored")
	parseFlags(fs, verbose, args)

	score, err := parseScoreFlag(*scoreText)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if *ratingsText != "" {
		ratings, err := parseRatings(*ratingsText)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		err = writeCPRForRatings(os.Stdout, ratings, score)
		if err != nil {
			log.Fatalf("Error computing CPR: %v", err)
		}
		return
	}

	if err := writeCPR(os.Stdout, *avg, score, *games); err != nil {
		log.Fatalf("Error computing CPR: %v", err)
	}
}

func writeCPRForRatings(w io.Writer, ratings []float64, score float64) error {
	filled, err := perf.FillUnrated(ratings, perf.Unrated)
	if err != nil {
		return err
	}
	var sum float64
	for _, r := range filled {
		sum += r
	}
	return writeCPR(w, sum/float64(len(filled)), score, len(filled))
}

func writeCPR(w io.Writer, avg float64, score float64, games int) error {
	cpr, err := perf.CPR(avg, score, games)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Score: %v / %v against %v average\n",
		internal.ScoreToString(score), games, int(avg))
	fmt.Fprintf(w, "CPR: %v\n", int(math.Round(cpr)))
	fmt.Fprintf(w, "Linear: %v\n",
		int(math.Round(perf.LinearPerformance(avg, score, games))))

	return nil
}

func handlePerf(ctx context.Context, args []string) {
	opts := perf.DefaultOptions()

	fs, verbose := newFlagSet("perf")
	ratingsText := fs.String("ratings", "", "Comma separated opponent ratings")
	scoreText := fs.String("score", "", "Points scored")
	fs.TextVar(&opts.Mode, "mode", opts.Mode, "Solver mode (exact|linear)")
	fs.Float64Var(&opts.Low, "low", opts.Low, "Lower bound of the search bracket")
	fs.Float64Var(&opts.High, "high", opts.High, "Upper bound of the search bracket")
	fs.Float64Var(&opts.Tolerance, "tol", opts.Tolerance, "Solver tolerance in rating points")
	parseFlags(fs, verbose, args)

	ratings, err := parseRatings(*ratingsText)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	score, err := parseScoreFlag(*scoreText)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if err := writePerf(os.Stdout, opts, ratings, score); err != nil {
		log.Fatalf("Error computing performance: %v", err)
	}
}

func writePerf(w io.Writer, opts perf.Options, ratings []float64,
	score float64) error {

	solver, err := perf.NewSolver(opts)
	if err != nil {
		return err
	}
	rating, err := solver.Solve(ratings, score)
	if err != nil {
		return err
	}

	filled, err := perf.FillUnrated(ratings, opts.Fallback)
	if err != nil {
		return err
	}
	n := float64(len(filled))
	var avg float64
	for _, r := range filled {
		avg += r / n
	}

	fmt.Fprintf(w, "Score: %v / %v against %v average\n",
		internal.ScoreToString(score), len(filled), int(avg))
	fmt.Fprintf(w, "Performance (%v): %v\n", opts.Mode,
		int(math.Round(rating)))
	fmt.Fprintf(w, "CPR: %v\n", ratingOrDash(perf.CompletePerformance(filled, score)))
	fmt.Fprintf(w, "TPR: %v\n", ratingOrDash(perf.TournamentPerformance(score, n, avg)))
	fmt.Fprintf(w, "FIDE: %v\n", ratingOrDash(perf.FidePerformance(score, n, avg)))

	return nil
}

func handleBest(ctx context.Context, args []string) {
	fs, verbose := newFlagSet("best")
	ratingsText := fs.String("ratings", "", "Comma separated opponent ratings")
	exhaustive := fs.Bool("exhaustive", false, "Enumerate every subset")
	parseFlags(fs, verbose, args)

	ratings, err := parseRatings(*ratingsText)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if err := writeBest(ctx, os.Stdout, ratings, *exhaustive); err != nil {
		log.Fatalf("Error computing best perfect score: %v", err)
	}
}

func writeBest(ctx context.Context, w io.Writer, ratings []float64,
	exhaustive bool) error {

	var best perf.PerfectScore
	var err error
	if exhaustive {
		best, err = perf.BestPerfectScoreExhaustive(ctx, ratings)
	} else {
		best, err = perf.BestPerfectScore(ratings)
	}
	if err != nil {
		return err
	}

	subset := make([]string, 0, len(best.Subset))
	for _, idx := range best.Subset {
		subset = append(subset, strconv.Itoa(int(ratings[idx])))
	}
	fmt.Fprintf(w, "Best perfect score: %v\n", int(math.Round(best.Rating)))
	fmt.Fprintf(w, "Opponents: %v\n", strings.Join(subset, ", "))

	return nil
}

func handleThreshold(ctx context.Context, args []string) {
	fs, verbose := newFlagSet("threshold")
	avg := fs.Float64("avg", 2700, "Average rating of the opponents")
	scoreText := fs.String("score", "10", "Points scored")
	games := fs.Float64("games", 10, "Number of games played")
	t := fs.Float64("t", 0.75, "Threshold probability")
	parseFlags(fs, verbose, args)

	score, err := parseScoreFlag(*scoreText)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if err := writeThreshold(os.Stdout, *avg, score, *games, *t); err != nil {
		log.Fatalf("Error computing threshold: %v", err)
	}
}

// writeThreshold reports the win probabilities at which the score stops
// being more likely than t, and the ratings they imply.
func writeThreshold(w io.Writer, avg float64, score float64, games float64,
	t float64) error {

	m, n := perf.AdjustScore(score, games)
	opt, err := perf.Optimize(m, n, t)
	if err != nil {
		return err
	}
	optPlus, err := perf.OptimizePlus(m, n, t)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Average: %v\n", avg)
	fmt.Fprintf(w, "Score: %v / %v\n", m, n)
	fmt.Fprintf(w, "Threshold: %v\n", t)
	fmt.Fprintf(w, "w*: %.6f\n", opt.W)
	fmt.Fprintf(w, "Probability of scoring %v points: %.6f\n", m,
		opt.Probability)
	fmt.Fprintf(w, "Estimated performance (EPR): %v\n",
		ratingOrDash(perf.EstimatedPerformance(opt.W, avg)))
	fmt.Fprintf(w, "Tournament performance (TPR): %v\n",
		ratingOrDash(perf.TournamentPerformance(float64(m), float64(n), avg)))
	fmt.Fprintf(w, "FIDE performance: %v\n",
		ratingOrDash(perf.FidePerformance(float64(m), float64(n), avg)))
	fmt.Fprintf(w, "Probability of scoring %v points at w=0.99: %.6f\n", m,
		perf.ScoreProbability(0.99, m, n))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "w*+: %.6f\n", optPlus.W)
	fmt.Fprintf(w, "EPR+: %v\n",
		ratingOrDash(perf.EstimatedPerformance(optPlus.W, avg)))
	fmt.Fprintf(w, "Probability of scoring %v points or more: %.6f\n", m,
		optPlus.Probability)

	return nil
}
