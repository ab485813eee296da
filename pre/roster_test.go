/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package pre

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mikeb26/chess-pre/perf"
)

func TestNewGraph_Errors(t *testing.T) {
	cases := []struct {
		name   string
		roster *Roster
		want   error
	}{
		{"nil", nil, perf.ErrInputEmpty},
		{"empty", &Roster{}, perf.ErrInputEmpty},
		{"no id", &Roster{Players: []*Player{{Name: "x"}}}, perf.ErrInvalidInput},
		{"duplicate", &Roster{Players: []*Player{{ID: "1"}, {ID: "1"}}},
			perf.ErrInvalidInput},
		{"bad result", &Roster{Players: []*Player{
			{ID: "1", Games: []Game{{OpponentID: "2", Result: 0.75}}},
			{ID: "2"},
		}}, perf.ErrInvalidInput},
		{"self", &Roster{Players: []*Player{
			{ID: "1", Games: []Game{{OpponentID: "1", Result: 1}}},
		}}, perf.ErrInvalidInput},
		{"negative rating", &Roster{Players: []*Player{{ID: "1", Rating: -5}}},
			perf.ErrInvalidInput},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := NewGraph(c.roster); !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
		})
	}
}

func TestGraph_Reciprocity(t *testing.T) {
	a := &Player{ID: "a", Rating: 1500}
	b := &Player{ID: "b", Rating: 1500}
	c := &Player{ID: "c", Rating: 1500}
	game(a, b, 1)
	// c claims a win over a that a never recorded
	c.Games = append(c.Games, Game{OpponentID: "a", Result: 1})
	// and an unknown opponent, which is allowed
	c.Games = append(c.Games, Game{OpponentID: "ghost", Result: 0,
		OpponentRating: 1400})

	g, err := NewGraph(&Roster{Players: []*Player{a, b, c}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	issues := g.CheckReciprocity()
	if len(issues) != 1 || issues[0].PlayerID != "c" || issues[0].OpponentID != "a" {
		t.Fatalf("unexpected issues %v", issues)
	}

	b.Games[0].Result = 1
	issues = g.CheckReciprocity()
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues after corrupting b, got %v", issues)
	}
}

func TestGraph_AverageRating(t *testing.T) {
	a := &Player{ID: "a", Rating: 1501}
	b := &Player{ID: "b", Rating: 1500}
	game(a, b, 0.5)

	g, err := NewGraph(&Roster{Players: []*Player{a, b}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	avg, ok := g.AverageRating()
	// 6002 / 4 = 1500.5, truncated
	if !ok || avg != 1500 {
		t.Fatalf("average %v %v; want 1500", avg, ok)
	}
}

func TestRoster_JSON(t *testing.T) {
	doc := `{
	  "event": "Club Championship",
	  "players": [
	    {"id": "1", "name": "A", "rating": 1800,
	     "games": [{"opponent": "2", "result": 1, "opponentRating": 1700}]},
	    {"id": "2", "name": "B",
	     "games": [{"opponent": "1", "result": 0}]}
	  ]
	}`
	var roster Roster
	if err := json.Unmarshal([]byte(doc), &roster); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	g, err := NewGraph(&roster)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	if g.Event() != "Club Championship" || len(g.Players()) != 2 {
		t.Fatalf("unexpected graph %+v", g)
	}
	p, ok := g.Player("1")
	if !ok || p.Points() != 1 || p.Games[0].OpponentRating != 1700 {
		t.Fatalf("unexpected player %+v", p)
	}
	if q, _ := g.Player("2"); q.Rating != perf.Unrated {
		t.Fatalf("expected B unrated, got %v", q.Rating)
	}
}
