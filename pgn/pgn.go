/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package pgn builds rosters from PGN game files. Players are identified by
// name and numbered in order of first appearance.
package pgn

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/notnil/chess"

	"github.com/mikeb26/chess-pre/pre"
)

const unknownPlayer = "Unknown"

// Builder accumulates games from one or more PGN sources.
type Builder struct {
	event   string
	players []*pre.Player
	byName  map[string]*pre.Player
	games   int
	skipped int
}

func NewBuilder(event string) *Builder {
	return &Builder{
		event:  event,
		byName: make(map[string]*pre.Player),
	}
}

// ParseResult maps a PGN result to white's and black's score. ok is false for
// unfinished or unknown results.
func ParseResult(result string) (white float64, black float64, ok bool) {
	switch strings.TrimSpace(result) {
	case "1-0":
		return 1, 0, true
	case "0-1":
		return 0, 1, true
	case "1/2-1/2", "½-½":
		return 0.5, 0.5, true
	default:
		return 0, 0, false
	}
}

func parseElo(s string) float64 {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return 0
	}
	return float64(v)
}

func (b *Builder) player(name string, rating float64) *pre.Player {
	p, ok := b.byName[name]
	if !ok {
		p = &pre.Player{
			ID:   strconv.Itoa(len(b.players) + 1),
			Name: name,
		}
		b.byName[name] = p
		b.players = append(b.players, p)
	}
	if p.Rating == 0 {
		p.Rating = rating
	}
	return p
}

// AddGame records one game. Missing names become "Unknown". Games without a
// decisive or drawn result, and games pairing a name with itself, are
// skipped and AddGame returns false.
func (b *Builder) AddGame(white, black string, whiteElo, blackElo float64,
	result string) bool {

	if white == "" {
		white = unknownPlayer
	}
	if black == "" {
		black = unknownPlayer
	}
	wScore, bScore, ok := ParseResult(result)
	if !ok || white == black {
		b.skipped++
		return false
	}

	w := b.player(white, whiteElo)
	bl := b.player(black, blackElo)
	w.Games = append(w.Games, pre.Game{OpponentID: bl.ID, Result: wScore,
		OpponentRating: blackElo})
	bl.Games = append(bl.Games, pre.Game{OpponentID: w.ID, Result: bScore,
		OpponentRating: whiteElo})
	b.games++

	return true
}

func tag(g *chess.Game, key string) string {
	tp := g.GetTagPair(key)
	if tp == nil {
		return ""
	}
	return tp.Value
}

// Read adds every game in r.
func (b *Builder) Read(r io.Reader) error {
	scanner := chess.NewScanner(r)
	for scanner.Scan() {
		g := scanner.Next()
		if b.event == "" {
			if ev := tag(g, "Event"); ev != "" && ev != "?" {
				b.event = ev
			}
		}
		result := tag(g, "Result")
		if result == "" {
			result = g.Outcome().String()
		}
		b.AddGame(tag(g, "White"), tag(g, "Black"), parseElo(tag(g, "WhiteElo")),
			parseElo(tag(g, "BlackElo")), result)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("pgn.Read: %w", err)
	}
	return nil
}

// ReadFile adds every game in the named file.
func (b *Builder) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("pgn.ReadFile: %w", err)
	}
	defer f.Close()

	if err := b.Read(f); err != nil {
		return fmt.Errorf("%v: %w", path, err)
	}
	return nil
}

// ReadDir adds every *.pgn file under dir, walking it in lexical order.
func (b *Builder) ReadDir(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pgn") {
			return nil
		}
		return b.ReadFile(path)
	})
}

// Games returns the number of games recorded and skipped so far.
func (b *Builder) Games() (recorded int, skipped int) {
	return b.games, b.skipped
}

func (b *Builder) Roster() *pre.Roster {
	if b.skipped > 0 {
		slog.Info("pgn.Roster: skipped unfinished or self-paired games",
			"event", b.event, "skipped", b.skipped)
	}
	return &pre.Roster{Event: b.event, Players: b.players}
}

// Load reads a PGN file, or every PGN file beneath a directory.
func Load(path string) (*pre.Roster, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("pgn.Load: %w", err)
	}
	b := NewBuilder("")
	if info.IsDir() {
		err = b.ReadDir(path)
	} else {
		err = b.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return b.Roster(), nil
}
