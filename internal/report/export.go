package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// utf8BOM keeps Excel from misreading CSV exports as Latin-1.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var issueHeader = []string{
	"Rule", "Category", "Severity", "Title", "Description",
	"Recommendation", "Current", "Expected", "Impact", "Locator",
}

// ExportJSON writes the report as indented JSON.
func ExportJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// ExportCSV writes the issue list as CSV, preceded by a score summary block.
func ExportCSV(w io.Writer, r *Report) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)

	summary := [][]string{
		{"URL", r.URL},
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Overall Score", formatScore(r.Score.Overall)},
		{"Technical Score", formatScore(r.Score.Technical)},
		{"Content Score", formatScore(r.Score.Content)},
		{"Performance Score", formatScore(r.Score.Performance)},
		{"Issues", strconv.Itoa(len(r.Issues))},
		{},
		issueHeader,
	}
	for _, row := range summary {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	for _, issue := range r.Issues {
		row := []string{
			issue.ID,
			string(issue.Category),
			issue.Severity.String(),
			issue.Title,
			issue.Description,
			issue.Recommendation,
			issue.CurrentValue,
			issue.ExpectedValue,
			issue.Impact,
			issue.Locator,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportXLSX writes a two-sheet workbook: a summary sheet and the issue list.
func ExportXLSX(w io.Writer, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	const issueSheet = "Issues"

	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(issueSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	summaryRows := [][]interface{}{
		{"URL", r.URL},
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Overall Score", r.Score.Overall},
		{"Technical Score", r.Score.Technical},
		{"Content Score", r.Score.Content},
		{"Performance Score", r.Score.Performance},
		{"Issues", len(r.Issues)},
	}
	for i, row := range summaryRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 20)
	_ = f.SetColWidth(summarySheet, "B", "B", 60)

	header := make([]interface{}, len(issueHeader))
	for i, h := range issueHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(issueSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write issue header: %w", err)
	}
	endCol, _ := excelize.CoordinatesToCellName(len(issueHeader), 1)
	_ = f.SetCellStyle(issueSheet, "A1", endCol, headerStyle)

	for i, issue := range r.Issues {
		row := []interface{}{
			issue.ID,
			string(issue.Category),
			issue.Severity.String(),
			issue.Title,
			issue.Description,
			issue.Recommendation,
			issue.CurrentValue,
			issue.ExpectedValue,
			issue.Impact,
			issue.Locator,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(issueSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write issue row: %w", err)
		}
	}
	_ = f.SetColWidth(issueSheet, "A", "B", 18)
	_ = f.SetColWidth(issueSheet, "D", "F", 40)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
