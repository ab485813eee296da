/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mikeb26/chess-pre/internal"
)

// Result represents the outcome of a round.
type Result int

const (
	ResultWin Result = iota
	ResultLoss
	ResultDraw
	ResultFullBye
	ResultHalfBye
	ResultLossByForfeit
	ResultWinByForfeit
	ResultUnplayedGame
	ResultUnknown
)

// Played reports whether the round was an over-the-board game.
func (r Result) Played() bool {
	return r == ResultWin || r == ResultLoss || r == ResultDraw
}

// Score is the points earned in a played game.
func (r Result) Score() float64 {
	switch r {
	case ResultWin:
		return 1
	case ResultDraw:
		return 0.5
	default:
		return 0
	}
}

// RoundResult holds the result of a single round for a player.
type RoundResult struct {
	OpponentPairNum int
	Outcome         Result
	Color           string
}

// CrossTableEntry holds the data for one player in the cross table.
type CrossTableEntry struct {
	PairNum     int
	PlayerName  string
	PlayerId    MemID
	PreRating   int
	PostRating  int
	TotalPoints float64
	Results     []RoundResult
}

type MemID int

type RatingType int

const (
	RatingTypeRegular RatingType = iota
	RatingTypeQuick
	RatingTypeBlitz
)

func (rt RatingType) String() string {
	switch rt {
	case RatingTypeQuick:
		return "quick"
	case RatingTypeBlitz:
		return "blitz"
	default:
		return "regular"
	}
}

// CrossTable holds the full cross table data, one per section.
type CrossTable struct {
	SectionName   string
	NumRounds     int
	NumPlayers    int
	RType         RatingType
	PlayerEntries []CrossTableEntry
}

// Tournament encapsulates the overall event and its cross tables.
type Tournament struct {
	Event       Event
	NumSections int

	CrossTables []*CrossTable
}

// API response structures for rated events JSON API
type apiRatedEventResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	SectionCount int    `json:"sectionCount"`
	Sections     []struct {
		ID     string `json:"id"`
		Number int    `json:"number"`
		Name   string `json:"name"`
	} `json:"sections"`
}

type apiStandingsResponse struct {
	Items []apiStandingItem `json:"items"`
}

type apiStandingItem struct {
	Ordinal       int               `json:"ordinal"`
	PairingNumber int               `json:"pairingNumber"`
	MemberID      string            `json:"memberId"`
	FirstName     string            `json:"firstName"`
	LastName      string            `json:"lastName"`
	Score         float64           `json:"score"`
	RoundOutcomes []apiRoundOutcome `json:"roundOutcomes"`
	Ratings       []apiRatingChange `json:"ratings"`
}

type apiRoundOutcome struct {
	RoundNumber           int    `json:"roundNumber"`
	Outcome               string `json:"outcome"`
	Color                 string `json:"color"`
	OpponentOrdinal       int    `json:"opponentOrdinal"`
	OpponentPairingNumber int    `json:"opponentPairingNumber"`
}

type apiRatingChange struct {
	PreRating    int    `json:"preRating"`
	PostRating   int    `json:"postRating"`
	RatingSystem string `json:"ratingSystem"`
}

// FetchCrossTables retrieves a Tournament with all sections' cross tables
// for the given event id. Sections are fetched concurrently; a section that
// fails to load is logged and skipped.
func (client *Client) FetchCrossTables(ctx context.Context,
	id EventID) (*Tournament, error) {

	var eventData apiRatedEventResponse
	err := client.getJSON(ctx, client.httpClient30day,
		fmt.Sprintf("/api/v1/rated-events/%v", id), "event", &eventData)
	if err != nil {
		return nil, err
	}

	standings := make([]*apiStandingsResponse, len(eventData.Sections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, section := range eventData.Sections {
		g.Go(func() error {
			var oneStandings apiStandingsResponse
			path := fmt.Sprintf("/api/v1/rated-events/%v/sections/%d/standings",
				id, section.Number)
			err := client.getJSON(gctx, client.httpClient30day, path,
				"standings", &oneStandings)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slog.Warn("uschess.FetchCrossTables: failed to fetch section",
					"event", id, "section", section.Number, "err", err)
				return nil
			}
			standings[i] = &oneStandings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var crossTables []*CrossTable
	for i, section := range eventData.Sections {
		if standings[i] == nil {
			continue
		}
		crossTables = append(crossTables,
			convertStandingsToCrossTable(standings[i], section.Name))
	}

	endDate, err := internal.ParseDateOrZero(eventData.EndDate)
	if err != nil {
		slog.Warn("uschess.FetchCrossTables: unable to parse event end date",
			"date", eventData.EndDate, "err", err)
	}

	return &Tournament{
		Event: Event{
			EndDate: endDate,
			Name:    eventData.Name,
			ID:      id,
		},
		NumSections: len(crossTables),
		CrossTables: crossTables,
	}, nil
}

// Section returns the first cross table whose name contains name, ignoring
// case.
func (t *Tournament) Section(name string) (*CrossTable, bool) {
	want := strings.ToUpper(name)
	for _, xt := range t.CrossTables {
		if strings.Contains(strings.ToUpper(xt.SectionName), want) {
			return xt, true
		}
	}
	return nil, false
}

func sectionRatingType(item apiStandingItem) RatingType {
	// dual-rated sections prefer the regular rating
	for _, rating := range item.Ratings {
		if rating.RatingSystem == "R" || rating.RatingSystem == "D" {
			return RatingTypeRegular
		}
	}
	if len(item.Ratings) == 0 {
		return RatingTypeRegular
	}
	switch item.Ratings[0].RatingSystem {
	case "B":
		return RatingTypeBlitz
	case "Q":
		return RatingTypeQuick
	default:
		return RatingTypeRegular
	}
}

func (rt RatingType) matches(system string) bool {
	switch rt {
	case RatingTypeBlitz:
		return system == "B"
	case RatingTypeQuick:
		return system == "Q"
	default:
		return system == "R" || system == "D"
	}
}

func convertStandingsToCrossTable(standings *apiStandingsResponse,
	sectionName string) *CrossTable {

	var entries []CrossTableEntry
	var numRounds int
	ratingType := RatingTypeRegular

	for _, item := range standings.Items {
		if len(entries) == 0 && len(item.Ratings) > 0 {
			ratingType = sectionRatingType(item)
		}

		var results []RoundResult
		for _, outcome := range item.RoundOutcomes {
			results = append(results, RoundResult{
				OpponentPairNum: outcome.OpponentOrdinal,
				Outcome:         convertOutcome(outcome.Outcome),
				Color:           convertColor(outcome.Color),
			})
		}
		if len(results) > numRounds {
			numRounds = len(results)
		}

		var preRating, postRating int
		for _, rating := range item.Ratings {
			if ratingType.matches(rating.RatingSystem) {
				preRating = rating.PreRating
				postRating = rating.PostRating
				break
			}
		}

		memberID, err := strconv.Atoi(item.MemberID)
		if err != nil {
			slog.Warn("uschess.convertStandings: invalid member id",
				"id", item.MemberID, "err", err)
		}

		entries = append(entries, CrossTableEntry{
			PairNum:     item.Ordinal,
			PlayerName:  internal.NormalizeName(item.FirstName + " " + item.LastName),
			PlayerId:    MemID(memberID),
			PreRating:   preRating,
			PostRating:  postRating,
			TotalPoints: item.Score,
			Results:     results,
		})
	}

	return &CrossTable{
		SectionName:   fmt.Sprintf("Section %s", sectionName),
		NumRounds:     numRounds,
		NumPlayers:    len(entries),
		RType:         ratingType,
		PlayerEntries: entries,
	}
}

func convertOutcome(outcome string) Result {
	switch outcome {
	case "Win":
		return ResultWin
	case "Loss":
		return ResultLoss
	case "Draw":
		return ResultDraw
	case "ByeFull":
		return ResultFullBye
	case "ByeHalf":
		return ResultHalfBye
	case "LossByForfeit", "LossForfeit":
		return ResultLossByForfeit
	case "WinByForfeit", "WinForfeit":
		return ResultWinByForfeit
	case "Unplayed", "Unpaired":
		return ResultUnplayedGame
	default:
		return ResultUnknown
	}
}

func convertColor(color string) string {
	switch strings.ToLower(color) {
	case "white":
		return "white"
	case "black":
		return "black"
	default:
		return ""
	}
}

// BuildCrossTableOutput renders a section as a fixed-width table. Played
// games appear as W/L/D followed by the opponent's pairing number and colour.
func BuildCrossTableOutput(xt *CrossTable, includeSectionHeader bool) string {
	var sb strings.Builder

	if includeSectionHeader {
		sb.WriteString(fmt.Sprintf("%v\n", xt.SectionName))
	}

	headers := []string{"No", "Name", "Rating", "Pts"}
	for i := 1; i <= xt.NumRounds; i++ {
		headers = append(headers, fmt.Sprintf("R%d", i))
	}

	forfeitFound := false
	var rows [][]string
	for _, e := range xt.PlayerEntries {
		row := []string{
			fmt.Sprintf("%d.", e.PairNum),
			e.PlayerName,
			fmt.Sprintf("%v->%v", ratingText(e.PreRating), ratingText(e.PostRating)),
			internal.ScoreToString(e.TotalPoints),
		}
		for _, res := range e.Results {
			var cell string
			switch res.Outcome {
			case ResultWin:
				cell = gameCell("W", res)
			case ResultLoss:
				cell = gameCell("L", res)
			case ResultDraw:
				cell = gameCell("D", res)
			case ResultWinByForfeit:
				forfeitFound = true
				cell = "W*"
			case ResultLossByForfeit:
				forfeitFound = true
				cell = "L*"
			case ResultFullBye:
				cell = "BYE(1)"
			case ResultHalfBye:
				cell = "BYE(½)"
			case ResultUnplayedGame:
				cell = "BYE(0)"
			default:
				cell = "?"
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}

	sb.WriteString(internal.FormatTable(headers, rows))
	if forfeitFound {
		sb.WriteString("* indicates game was decided by forfeit\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func gameCell(prefix string, res RoundResult) string {
	cell := fmt.Sprintf("%v%d", prefix, res.OpponentPairNum)
	if res.Color != "" {
		cell += fmt.Sprintf("(%c)", res.Color[0])
	}
	return cell
}

func ratingText(r int) string {
	if r <= 0 {
		return "unr."
	}
	return strconv.Itoa(r)
}
