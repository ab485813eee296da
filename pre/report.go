/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package pre

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/mikeb26/chess-pre/internal"
)

// Standings returns the player results ordered by points, then PRE, then
// name.
func (res *Result) Standings() []PlayerResult {
	out := make([]PlayerResult, len(res.Players))
	copy(out, res.Players)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].PRE != out[j].PRE {
			return out[i].PRE > out[j].PRE
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func ratingString(r float64) string {
	if r == 0 {
		return "unr."
	}
	return strconv.Itoa(int(r))
}

func estimateString(v int, valid bool) string {
	if !valid {
		return "-"
	}
	return strconv.Itoa(v)
}

// BuildReport renders res as a fixed-width text table.
func BuildReport(res *Result) string {
	var sb strings.Builder

	if res.Event != "" {
		sb.WriteString(fmt.Sprintf("%v\n", res.Event))
	}

	headers := []string{"Rk", "Name", "Rating", "Pts", "Gms", "TPR", "PRE"}
	var rows [][]string
	unsettled := false
	for i, pr := range res.Standings() {
		pre := estimateString(pr.PRE, pr.Valid)
		if pr.Valid && !pr.Converged {
			pre += "*"
			unsettled = true
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d.", i+1),
			pr.Name,
			ratingString(pr.Rating),
			internal.ScoreToString(pr.Points),
			strconv.Itoa(pr.Games),
			estimateString(pr.TPR, pr.TPRValid),
			pre,
		})
	}

	sb.WriteString(internal.FormatTable(headers, rows))
	if unsettled {
		sb.WriteString("* estimate had not settled\n")
	}
	if res.Converged {
		sb.WriteString(fmt.Sprintf("Converged after %v iterations (%v mode, average rating %v)\n",
			res.Iterations, res.Mode, int(res.AverageRating)))
	} else {
		sb.WriteString(fmt.Sprintf("Did not converge after %v iterations (%v mode, average rating %v)\n",
			res.Iterations, res.Mode, int(res.AverageRating)))
	}

	return sb.String()
}

// WriteCSV writes res in standings order with a header row.
func WriteCSV(w io.Writer, res *Result) error {
	cw := csv.NewWriter(w)
	err := cw.Write([]string{"Rank", "ID", "Name", "Rating", "Points", "Games",
		"TPR", "PRE", "Converged"})
	if err != nil {
		return fmt.Errorf("pre.WriteCSV: %w", err)
	}
	for i, pr := range res.Standings() {
		tpr, pre := "", ""
		if pr.TPRValid {
			tpr = strconv.Itoa(pr.TPR)
		}
		if pr.Valid {
			pre = strconv.Itoa(pr.PRE)
		}
		rating := ""
		if pr.Rating != 0 {
			rating = strconv.Itoa(int(pr.Rating))
		}
		err = cw.Write([]string{
			strconv.Itoa(i + 1),
			pr.ID,
			pr.Name,
			rating,
			strconv.FormatFloat(pr.Points, 'f', -1, 64),
			strconv.Itoa(pr.Games),
			tpr,
			pre,
			strconv.FormatBool(pr.Converged),
		})
		if err != nil {
			return fmt.Errorf("pre.WriteCSV: %w", err)
		}
	}
	cw.Flush()

	return cw.Error()
}
