/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package pre

import (
	"fmt"
	"math"

	"github.com/mikeb26/chess-pre/perf"
)

// Game is one game from a player's perspective.
type Game struct {
	OpponentID string `json:"opponent"`
	// Result is 1 for a win, 0.5 for a draw and 0 for a loss.
	Result float64 `json:"result"`
	// OpponentRating is the opponent's rating as recorded for this game, or
	// perf.Unrated.
	OpponentRating float64 `json:"opponentRating,omitempty"`
}

// Player is a tournament participant and the games they played.
type Player struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating,omitempty"`
	Games  []Game  `json:"games"`
}

// Points returns the player's total score.
func (p *Player) Points() float64 {
	sum := 0.0
	for _, g := range p.Games {
		sum += g.Result
	}
	return sum
}

// Roster is the in-memory input contract produced by the ingestion
// packages.
type Roster struct {
	Event   string    `json:"event,omitempty"`
	Players []*Player `json:"players"`
}

// Graph is a validated, read-only view of a Roster keyed by player ID.
type Graph struct {
	event   string
	players []*Player
	byID    map[string]*Player
}

func validResult(r float64) bool {
	return r == 0 || r == 0.5 || r == 1
}

// NewGraph validates roster and indexes it by player ID. Games against
// opponents that are not in the roster are allowed; their recorded rating is
// used.
func NewGraph(roster *Roster) (*Graph, error) {
	if roster == nil || len(roster.Players) == 0 {
		return nil, fmt.Errorf("roster has no players: %w", perf.ErrInputEmpty)
	}

	g := &Graph{
		event:   roster.Event,
		players: make([]*Player, 0, len(roster.Players)),
		byID:    make(map[string]*Player, len(roster.Players)),
	}
	for i, p := range roster.Players {
		if p == nil || p.ID == "" {
			return nil, fmt.Errorf("player %v has no id: %w", i,
				perf.ErrInvalidInput)
		}
		if _, ok := g.byID[p.ID]; ok {
			return nil, fmt.Errorf("duplicate player id %q: %w", p.ID,
				perf.ErrInvalidInput)
		}
		if p.Rating < 0 || math.IsNaN(p.Rating) {
			return nil, fmt.Errorf("player %q rating %v: %w", p.ID, p.Rating,
				perf.ErrInvalidInput)
		}
		for _, game := range p.Games {
			if !validResult(game.Result) {
				return nil, fmt.Errorf("player %q result %v vs %q: %w", p.ID,
					game.Result, game.OpponentID, perf.ErrInvalidInput)
			}
			if game.OpponentID == p.ID {
				return nil, fmt.Errorf("player %q paired with self: %w", p.ID,
					perf.ErrInvalidInput)
			}
		}
		g.byID[p.ID] = p
		g.players = append(g.players, p)
	}

	return g, nil
}

func (g *Graph) Event() string {
	return g.event
}

func (g *Graph) Players() []*Player {
	return g.players
}

func (g *Graph) Player(id string) (*Player, bool) {
	p, ok := g.byID[id]
	return p, ok
}

// AverageRating returns the mean of every known player rating and recorded
// opponent rating, truncated to a whole rating point. ok is false when no
// rating is known.
func (g *Graph) AverageRating() (avg float64, ok bool) {
	sum := 0.0
	count := 0
	for _, p := range g.players {
		if p.Rating != perf.Unrated {
			sum += p.Rating
			count++
		}
		for _, game := range p.Games {
			if game.OpponentRating != perf.Unrated {
				sum += game.OpponentRating
				count++
			}
		}
	}
	if count == 0 {
		return 0, false
	}
	return math.Trunc(sum / float64(count)), true
}

// ReciprocityIssue describes a game recorded by one player that the opponent
// did not record consistently.
type ReciprocityIssue struct {
	PlayerID   string
	OpponentID string
	Reason     string
}

func (ri ReciprocityIssue) String() string {
	return fmt.Sprintf("%v vs %v: %v", ri.PlayerID, ri.OpponentID, ri.Reason)
}

// CheckReciprocity reports games whose mirror image is missing or whose
// results do not sum to one. The solver tolerates such data; this is for
// diagnostics only.
func (g *Graph) CheckReciprocity() []ReciprocityIssue {
	var issues []ReciprocityIssue
	for _, p := range g.players {
		// count results per opponent so repeated pairings are matched up
		mine := make(map[string][]float64)
		for _, game := range p.Games {
			mine[game.OpponentID] = append(mine[game.OpponentID], game.Result)
		}
		for oppID, results := range mine {
			opp, ok := g.byID[oppID]
			if !ok {
				continue
			}
			var theirs []float64
			for _, game := range opp.Games {
				if game.OpponentID == p.ID {
					theirs = append(theirs, game.Result)
				}
			}
			if len(theirs) != len(results) {
				issues = append(issues, ReciprocityIssue{
					PlayerID:   p.ID,
					OpponentID: oppID,
					Reason: fmt.Sprintf("%v games recorded vs %v mirrored",
						len(results), len(theirs)),
				})
				continue
			}
			sumMine, sumTheirs := 0.0, 0.0
			for i := range results {
				sumMine += results[i]
				sumTheirs += theirs[i]
			}
			if sumMine+sumTheirs != float64(len(results)) {
				issues = append(issues, ReciprocityIssue{
					PlayerID:   p.ID,
					OpponentID: oppID,
					Reason: fmt.Sprintf("scores %v and %v do not sum to %v",
						sumMine, sumTheirs, len(results)),
				})
			}
		}
	}
	return issues
}
