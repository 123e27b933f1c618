package classify

import "github.com/ukaji3/matrixplan-go/pkg/matrixplan/models"

// TableReport describes how one table on a slide was handled.
type TableReport struct {
	Slide int `json:"slide"`
	// Table is the 0-based table index on the slide.
	Table int `json:"table"`
	// Header is nil when the table has no Flag header and was skipped.
	Header *models.HeaderInfo `json:"header,omitempty"`
	// Rows is the number of output rows the table produced.
	Rows int `json:"rows"`
}

// SlideRows classifies every compliance table on the slide, in document
// order, followed by gate rows from the slide notes.
func SlideRows(slide models.Slide) ([]models.PlanRow, []TableReport) {
	var rows []models.PlanRow
	var reports []TableReport

	for i, table := range slide.Tables() {
		report := TableReport{Slide: slide.Index, Table: i}
		header, ok := LocateHeader(table)
		if !ok {
			reports = append(reports, report)
			continue
		}
		report.Header = header

		for r := header.Row + 1; r < len(table.Rows); r++ {
			out := ClassifyRow(table.Rows[r], header)
			report.Rows += len(out)
			rows = append(rows, out...)
		}
		reports = append(reports, report)
	}

	rows = append(rows, NoteGates(slide.Notes)...)
	return rows, reports
}
