/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mikeb26/chess-pre/config"
	"github.com/mikeb26/chess-pre/perf"
	"github.com/mikeb26/chess-pre/pre"
	"github.com/mikeb26/chess-pre/uschess"
	"github.com/mikeb26/chess-pre/xtable"
)

const requestTimeout = 30 * time.Second

type server struct {
	cfg    *config.Config
	solver *pre.Solver
	uscf   *uschess.Client
}

func newServer(cfg *config.Config, uscf *uschess.Client) (*server, error) {
	solver, err := pre.NewSolver(cfg.Solver)
	if err != nil {
		return nil, err
	}
	return &server{cfg: cfg, solver: solver, uscf: uscf}, nil
}

func (s *server) routes() http.Handler {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.Timeout(requestTimeout))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/api/health", s.handleHealth)
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/performance", s.handlePerformance)
		r.Post("/cpr", s.handleCPR)
		r.Post("/best-perfect", s.handleBestPerfect)
		r.Post("/threshold", s.handleThreshold)
		r.Post("/equilibrium", s.handleEquilibrium)
		r.Post("/crosstable", s.handleCrossTable)
		r.Get("/uschess/events/{eventID}/pre", s.handleUSChessEvent)
	})

	return router
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"})
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// optionalRating rounds a derived rating, omitting it when undefined.
func optionalRating(r float64, err error) *int {
	if err != nil {
		return nil
	}
	v := int(math.Round(r))
	return &v
}

type performanceRequest struct {
	Ratings   []float64  `json:"ratings"`
	Score     float64    `json:"score"`
	Mode      *perf.Mode `json:"mode,omitempty"`
	Low       *float64   `json:"low,omitempty"`
	High      *float64   `json:"high,omitempty"`
	Tolerance *float64   `json:"tolerance,omitempty"`
}

type performanceResponse struct {
	Rating  float64 `json:"rating"`
	Rounded int     `json:"rounded"`
	Mode    string  `json:"mode"`
	CPR     *int    `json:"cpr,omitempty"`
	TPR     *int    `json:"tpr,omitempty"`
	FIDE    *int    `json:"fide,omitempty"`
}

func (s *server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	var input performanceRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	opts := s.cfg.Solver.Perf
	if input.Mode != nil {
		opts.Mode = *input.Mode
	}
	if input.Low != nil {
		opts.Low = *input.Low
	}
	if input.High != nil {
		opts.High = *input.High
	}
	if input.Tolerance != nil {
		opts.Tolerance = *input.Tolerance
	}

	solver, err := perf.NewSolver(opts)
	if err != nil {
		mapSolverErrorToHTTP(w, r, err)
		return
	}
	rating, err := solver.Solve(input.Ratings, input.Score)
	if err != nil {
		mapSolverErrorToHTTP(w, r, err)
		return
	}

	filled, err := perf.FillUnrated(input.Ratings, opts.Fallback)
	if err != nil {
		mapSolverErrorToHTTP(w, r, err)
		return
	}
	var avg float64
	for _, rt := range filled {
		avg += rt
	}
	n := float64(len(filled))
	avg /= n

	resp := performanceResponse{
		Rating:  rating,
		Rounded: int(math.Round(rating)),
		Mode:    opts.Mode.String(),
		CPR:     optionalRating(perf.CompletePerformance(filled, input.Score)),
		TPR:     optionalRating(perf.TournamentPerformance(input.Score, n, avg)),
		FIDE:    optionalRating(perf.FidePerformance(input.Score, n, avg)),
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type cprRequest struct {
	Average float64 `json:"average"`
	Score   float64 `json:"score"`
	Games   int     `json:"games"`
}

func (s *server) handleCPR(w http.ResponseWriter, r *http.Request) {
	var input cprRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	cpr, err := perf.CPR(input.Average, input.Score, input.Games)
	if err != nil {
		mapSolverErrorToHTTP(w, r, err)
		return
	}
	resp := jsonResponse{
		"cpr":    cpr,
		"linear": perf.LinearPerformance(input.Average, input.Score, input.Games),
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type bestPerfectRequest struct {
	Ratings    []float64 `json:"ratings"`
	Exhaustive bool      `json:"exhaustive,omitempty"`
}

type bestPerfectResponse struct {
	Rating    float64   `json:"rating"`
	Subset    []int     `json:"subset"`
	Opponents []float64 `json:"opponents"`
}

func (s *server) handleBestPerfect(w http.ResponseWriter, r *http.Request) {
	var input bestPerfectRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var best perf.PerfectScore
	var err error
	if input.Exhaustive {
		best, err = perf.BestPerfectScoreExhaustive(r.Context(), input.Ratings)
	} else {
		best, err = perf.BestPerfectScore(input.Ratings)
	}
	if err != nil {
		mapSolverErrorToHTTP(w, r, err)
		return
	}

	resp := bestPerfectResponse{Rating: best.Rating, Subset: best.Subset}
	for _, idx := range best.Subset {
		resp.Opponents = append(resp.Opponents, input.Ratings[idx])
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type thresholdRequest struct {
	Average   float64 `json:"average"`
	Score     float64 `json:"score"`
	Games     float64 `json:"games"`
	Threshold float64 `json:"threshold"`
}

type thresholdResponse struct {
	Score           int     `json:"score"`
	Games           int     `json:"games"`
	W               float64 `json:"w"`
	Probability     float64 `json:"probability"`
	EPR             *int    `json:"epr,omitempty"`
	TPR             *int    `json:"tpr,omitempty"`
	FIDE            *int    `json:"fide,omitempty"`
	WPlus           float64 `json:"wPlus"`
	ProbabilityPlus float64 `json:"probabilityPlus"`
	EPRPlus         *int    `json:"eprPlus,omitempty"`
}

func (s *server) handleThreshold(w http.ResponseWriter, r *http.Request) {
	var input thresholdRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	m, n := perf.AdjustScore(input.Score, input.Games)
	opt, err := perf.Optimize(m, n, input.Threshold)
	if err != nil {
		mapSolverErrorToHTTP(w, r, err)
		return
	}
	optPlus, err := perf.OptimizePlus(m, n, input.Threshold)
	if err != nil {
		mapSolverErrorToHTTP(w, r, err)
		return
	}

	resp := thresholdResponse{
		Score:           m,
		Games:           n,
		W:               opt.W,
		Probability:     opt.Probability,
		EPR:             optionalRating(perf.EstimatedPerformance(opt.W, input.Average)),
		TPR:             optionalRating(perf.TournamentPerformance(float64(m), float64(n), input.Average)),
		FIDE:            optionalRating(perf.FidePerformance(float64(m), float64(n), input.Average)),
		WPlus:           optPlus.W,
		ProbabilityPlus: optPlus.Probability,
		EPRPlus:         optionalRating(perf.EstimatedPerformance(optPlus.W, input.Average)),
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type equilibriumResponse struct {
	*pre.Result
	Issues []string `json:"issues,omitempty"`
}

// solve runs the equilibrium for one roster. Non-convergence is reported in
// the result rather than as an error.
func (s *server) solve(r *http.Request, roster *pre.Roster) (*equilibriumResponse, error) {
	g, err := pre.NewGraph(roster)
	if err != nil {
		return nil, err
	}
	res, err := s.solver.Run(r.Context(), g)
	if err != nil && !errors.Is(err, perf.ErrNonConvergent) {
		return nil, err
	}

	resp := &equilibriumResponse{Result: res}
	for _, issue := range g.CheckReciprocity() {
		resp.Issues = append(resp.Issues, issue.String())
	}
	return resp, nil
}

func (s *server) handleEquilibrium(w http.ResponseWriter, r *http.Request) {
	var roster pre.Roster
	if err := readJSON(w, r, &roster); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	resp, err := s.solve(r, &roster)
	if err != nil {
		mapSolverErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// handleCrossTable accepts a crosstable page or its CSV export as the
// request body. CSV is selected by a text/csv content type.
func (s *server) handleCrossTable(w http.ResponseWriter, r *http.Request) {
	rounds := 0
	if v := r.URL.Query().Get("rounds"); v != "" {
		var err error
		rounds, err = strconv.Atoi(v)
		if err != nil || rounds < 0 {
			badRequestResponse(w, r, fmt.Errorf("invalid rounds %q", v))
			return
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("unable to read body: %w", err))
		return
	}

	var table *xtable.Table
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		table, err = xtable.ParseCSV(bytes.NewReader(body))
	} else {
		table, err = xtable.ParseHTML(bytes.NewReader(body))
	}
	if err != nil {
		mapSolverErrorToHTTP(w, r, err)
		return
	}
	roster, err := table.Roster(r.URL.Query().Get("event"), rounds)
	if err != nil {
		mapSolverErrorToHTTP(w, r, err)
		return
	}

	resp, err := s.solve(r, roster)
	if err != nil {
		mapSolverErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (s *server) handleUSChessEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.Atoi(chi.URLParam(r, "eventID"))
	if err != nil || eventID <= 0 {
		badRequestResponse(w, r, fmt.Errorf("invalid event id %q",
			chi.URLParam(r, "eventID")))
		return
	}

	tourney, err := s.uscf.FetchCrossTables(r.Context(), uschess.EventID(eventID))
	if err != nil {
		errorResponse(w, r, http.StatusBadGateway,
			fmt.Sprintf("unable to fetch event %v: %v", eventID, err))
		return
	}

	rosters := tourney.Rosters()
	if section := r.URL.Query().Get("section"); section != "" {
		xt, ok := tourney.Section(section)
		if !ok {
			errorResponse(w, r, http.StatusNotFound,
				fmt.Sprintf("event %v has no section matching %q", eventID, section))
			return
		}
		rosters = []*pre.Roster{xt.Roster(tourney.Event.Name)}
	}

	var sections []*equilibriumResponse
	for _, roster := range rosters {
		resp, err := s.solve(r, roster)
		if errors.Is(err, perf.ErrInputEmpty) {
			continue
		}
		if err != nil {
			mapSolverErrorToHTTP(w, r, err)
			return
		}
		sections = append(sections, resp)
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{
		"event":    tourney.Event.Name,
		"id":       eventID,
		"sections": sections,
	})
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
