/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"strings"
	"unicode/utf8"
)

// FormatTable renders left-aligned columns separated by two spaces. Rows
// shorter than headers are padded with empty cells.
func FormatTable(headers []string, rows [][]string) string {
	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(colWidths) {
				break
			}
			if w := utf8.RuneCountInString(cell); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	var sb strings.Builder
	writeRow := func(row []string) {
		var line strings.Builder
		for i, w := range colWidths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			line.WriteString(cell)
			if i < len(colWidths)-1 {
				pad := w - utf8.RuneCountInString(cell) + 2
				line.WriteString(strings.Repeat(" ", pad))
			}
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		sb.WriteString("\n")
	}

	writeRow(headers)
	for _, row := range rows {
		writeRow(row)
	}

	return sb.String()
}
