/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package xtable reads chess-results style crosstables, either the HTML page
// or its CSV export, and converts them into rosters.
//
// A crosstable needs "Rk.", "Name" and "Rtg" columns. Swiss tables carry one
// "N.Rd" column per round whose cells look like "12w1" (opponent rank,
// colour, result). Round-robin tables carry one column per player, headed by
// the player's rank, holding "1", "0", "½" or "*".
package xtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mikeb26/chess-pre/pre"
)

var ErrNoTable = errors.New("no crosstable found")

type Kind int

const (
	KindUnknown Kind = iota
	KindSwiss
	KindRoundRobin
)

func (k Kind) String() string {
	switch k {
	case KindSwiss:
		return "Swiss"
	case KindRoundRobin:
		return "Round-robin"
	default:
		return "unknown"
	}
}

const (
	colRank   = "Rk."
	colName   = "Name"
	colRating = "Rtg"
)

var requiredColumns = []string{colRank, colName, colRating}

// Table is a parsed crosstable: a header row and the player rows beneath it.
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

func newTable(header []string, rows [][]string) (*Table, error) {
	t := &Table{Header: header, Rows: rows, index: make(map[string]int)}
	for i, h := range header {
		h = strings.TrimSpace(h)
		t.Header[i] = h
		if _, ok := t.index[h]; !ok {
			t.index[h] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := t.index[c]; !ok {
			return nil, fmt.Errorf("crosstable must contain the columns %v; missing %q: %w",
				requiredColumns, c, ErrNoTable)
		}
	}
	return t, nil
}

func isHeader(cells []string) bool {
	seen := 0
	for _, c := range cells {
		c = strings.TrimSpace(c)
		for _, want := range requiredColumns {
			if c == want {
				seen++
			}
		}
	}
	return seen == len(requiredColumns)
}

// ParseHTML finds the first HTML table with a crosstable header row.
func ParseHTML(r io.Reader) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("xtable.ParseHTML: %w", err)
	}

	var header []string
	var rows [][]string
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		header = nil
		rows = nil
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, cellText(cell))
			})
			if len(cells) == 0 {
				return
			}
			if header == nil {
				if isHeader(cells) {
					header = cells
				}
				return
			}
			rows = append(rows, cells)
		})
		// stop at the first table that has a header
		return header == nil
	})
	if header == nil {
		return nil, ErrNoTable
	}

	return newTable(header, rows)
}

func cellText(cell *goquery.Selection) string {
	return strings.Join(strings.Fields(cell.Text()), " ")
}

// ParseCSV reads a crosstable exported as CSV; the first row is the header.
func ParseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("xtable.ParseCSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoTable
	}
	return newTable(records[0], records[1:])
}

func (t *Table) cell(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func swissColumn(round int) string {
	return fmt.Sprintf("%d.Rd", round)
}

// Rounds counts the consecutive "N.Rd" columns starting at round 1.
func (t *Table) Rounds() int {
	n := 0
	for {
		if _, ok := t.index[swissColumn(n+1)]; !ok {
			return n
		}
		n++
	}
}

func (t *Table) numericColumns() int {
	n := 0
	for {
		if _, ok := t.index[strconv.Itoa(n+1)]; !ok {
			return n
		}
		n++
	}
}

// DetectKind classifies the table. rounds <= 0 infers the round count from
// the header.
func (t *Table) DetectKind(rounds int) (Kind, error) {
	if rounds <= 0 {
		if t.Rounds() > 0 {
			return KindSwiss, nil
		}
		if t.numericColumns() > 1 {
			return KindRoundRobin, nil
		}
		return KindUnknown, fmt.Errorf("cannot determine tournament type from header %v: %w",
			t.Header, ErrNoTable)
	}

	if t.Rounds() >= rounds {
		return KindSwiss, nil
	}
	// a single round robin among rounds+1 players
	if t.numericColumns() >= rounds+1 {
		return KindRoundRobin, nil
	}
	return KindUnknown, fmt.Errorf("cannot determine tournament type for %v rounds from header %v: %w",
		rounds, t.Header, ErrNoTable)
}

var swissCellRe = regexp.MustCompile(`^(\d+)\s*([wb])\s*([01½]|1/2)$`)

// ParseSwissCell parses a "12w1" style cell. ok is false for byes, forfeits
// and unplayed rounds.
func ParseSwissCell(cell string) (opponent int, result float64, ok bool) {
	m := swissCellRe.FindStringSubmatch(strings.TrimSpace(cell))
	if m == nil {
		return 0, 0, false
	}
	opponent, err := strconv.Atoi(m[1])
	if err != nil || opponent <= 0 {
		return 0, 0, false
	}
	return opponent, parseResult(m[3]), true
}

// ParseRoundRobinCell parses a round-robin cell; ok is false for "*", blank
// and anything that is not a played result.
func ParseRoundRobinCell(cell string) (result float64, ok bool) {
	switch strings.TrimSpace(cell) {
	case "1":
		return 1, true
	case "0":
		return 0, true
	case "½", "1/2", "0.5":
		return 0.5, true
	default:
		return 0, false
	}
}

func parseResult(s string) float64 {
	switch s {
	case "1":
		return 1
	case "½", "1/2":
		return 0.5
	default:
		return 0
	}
}

func parseRating(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}
	return float64(v)
}

type entry struct {
	rank   int
	name   string
	rating float64
	row    []string
}

// Roster converts the table. rounds <= 0 infers the round count.
func (t *Table) Roster(event string, rounds int) (*pre.Roster, error) {
	kind, err := t.DetectKind(rounds)
	if err != nil {
		return nil, err
	}
	if rounds <= 0 {
		if kind == KindSwiss {
			rounds = t.Rounds()
		} else {
			rounds = t.numericColumns() - 1
		}
	}

	byRank := make(map[int]*entry)
	var entries []*entry
	for _, row := range t.Rows {
		rank, err := strconv.Atoi(strings.TrimSuffix(t.cell(row, colRank), "."))
		if err != nil {
			// footers and section breaks
			continue
		}
		if _, dup := byRank[rank]; dup {
			return nil, fmt.Errorf("duplicate rank %v in crosstable", rank)
		}
		e := &entry{
			rank:   rank,
			name:   t.cell(row, colName),
			rating: parseRating(t.cell(row, colRating)),
			row:    row,
		}
		byRank[rank] = e
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("crosstable has no player rows: %w", ErrNoTable)
	}

	// a round robin among rounds+1 players has one column per player
	slots := rounds
	if kind == KindRoundRobin {
		slots = rounds + 1
	}

	roster := &pre.Roster{Event: event}
	for _, e := range entries {
		p := &pre.Player{
			ID:     strconv.Itoa(e.rank),
			Name:   e.name,
			Rating: e.rating,
		}
		for round := 1; round <= slots; round++ {
			var oppRank int
			var result float64
			var ok bool
			if kind == KindSwiss {
				oppRank, result, ok = ParseSwissCell(t.cell(e.row, swissColumn(round)))
			} else {
				oppRank = round
				if oppRank == e.rank {
					continue
				}
				result, ok = ParseRoundRobinCell(t.cell(e.row, strconv.Itoa(oppRank)))
			}
			if !ok {
				continue
			}
			opp, found := byRank[oppRank]
			if !found {
				continue
			}
			p.Games = append(p.Games, pre.Game{
				OpponentID:     strconv.Itoa(opp.rank),
				Result:         result,
				OpponentRating: opp.rating,
			})
		}
		roster.Players = append(roster.Players, p)
	}

	return roster, nil
}

// Load reads a crosstable file; ".csv" files are parsed as CSV and anything
// else as HTML. The file's base name becomes the event name.
func Load(path string, rounds int) (*pre.Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("xtable.Load: %w", err)
	}
	defer f.Close()

	var t *Table
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		t, err = ParseCSV(f)
	} else {
		t, err = ParseHTML(f)
	}
	if err != nil {
		return nil, err
	}

	event := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return t.Roster(event, rounds)
}
