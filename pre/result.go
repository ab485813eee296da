/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package pre

import (
	"github.com/mikeb26/chess-pre/perf"
)

// PlayerResult is one row of the output roster.
type PlayerResult struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
	Points float64 `json:"points"`
	Games  int     `json:"games"`
	// TPR is the first-iteration estimate, the plain tournament
	// performance rating.
	TPR      int  `json:"tpr"`
	TPRValid bool `json:"tprValid"`
	// PRE is the latest estimate.
	PRE       int  `json:"pre"`
	Converged bool `json:"converged"`
	// Valid is false when the player has no usable estimate: no games were
	// played or the last iteration failed to solve.
	Valid bool `json:"valid"`

	Series *Series `json:"-"`
}

// Result is the output of an equilibrium run, with players in roster order.
type Result struct {
	Event         string         `json:"event,omitempty"`
	Players       []PlayerResult `json:"players"`
	Iterations    int            `json:"iterations"`
	Converged     bool           `json:"converged"`
	AverageRating float64        `json:"averageRating"`
	Mode          perf.Mode      `json:"mode"`
}

func (r *run) result(mode perf.Mode, converged bool) *Result {
	res := &Result{
		Event:         r.graph.Event(),
		Players:       make([]PlayerResult, 0, len(r.graph.Players())),
		Iterations:    r.iter,
		Converged:     converged,
		AverageRating: r.avg,
		Mode:          mode,
	}

	for _, p := range r.graph.Players() {
		pr := PlayerResult{
			ID:     p.ID,
			Name:   p.Name,
			Rating: p.Rating,
			Points: p.Points(),
			Games:  len(p.Games),
		}
		idx, ok := r.index[p.ID]
		if ok {
			ser := r.series[idx]
			pr.Series = ser
			if ser.Len() > 1 {
				if first := ser.At(1); first.Valid {
					pr.TPR = first.Rounded()
					pr.TPRValid = true
				}
				latest := ser.Latest()
				pr.Valid = latest.Valid
				if latest.Valid {
					pr.PRE = latest.Rounded()
				}
				pr.Converged = ser.Settled()
			}
		}
		res.Players = append(res.Players, pr)
	}

	return res
}

// Player returns the result row for id.
func (res *Result) Player(id string) (PlayerResult, bool) {
	for _, pr := range res.Players {
		if pr.ID == id {
			return pr, true
		}
	}
	return PlayerResult{}, false
}
