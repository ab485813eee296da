/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mikeb26/chess-pre/pre"
)

// Roster converts the cross table into a roster keyed by pairing number.
// Only games played over the board are kept; byes, forfeits and unplayed
// rounds do not count toward a performance rating.
func (xt *CrossTable) Roster(event string) *pre.Roster {
	byPair := make(map[int]*CrossTableEntry, len(xt.PlayerEntries))
	for i := range xt.PlayerEntries {
		byPair[xt.PlayerEntries[i].PairNum] = &xt.PlayerEntries[i]
	}

	name := xt.SectionName
	if event != "" {
		name = fmt.Sprintf("%v - %v", event, xt.SectionName)
	}
	roster := &pre.Roster{
		Event:   name,
		Players: make([]*pre.Player, 0, len(xt.PlayerEntries)),
	}
	for _, e := range xt.PlayerEntries {
		p := &pre.Player{
			ID:     strconv.Itoa(e.PairNum),
			Name:   e.PlayerName,
			Rating: float64(e.PreRating),
		}
		for round, res := range e.Results {
			if !res.Outcome.Played() {
				continue
			}
			opp, ok := byPair[res.OpponentPairNum]
			if !ok {
				slog.Warn("uschess.Roster: opponent missing from section",
					"section", xt.SectionName, "player", e.PairNum,
					"round", round+1, "opponent", res.OpponentPairNum)
				continue
			}
			p.Games = append(p.Games, pre.Game{
				OpponentID:     strconv.Itoa(opp.PairNum),
				Result:         res.Outcome.Score(),
				OpponentRating: float64(opp.PreRating),
			})
		}
		roster.Players = append(roster.Players, p)
	}

	return roster
}

// Rosters returns one roster per section.
func (t *Tournament) Rosters() []*pre.Roster {
	rosters := make([]*pre.Roster, 0, len(t.CrossTables))
	for _, xt := range t.CrossTables {
		rosters = append(rosters, xt.Roster(t.Event.Name))
	}
	return rosters
}
