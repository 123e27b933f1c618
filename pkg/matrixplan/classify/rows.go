package classify

import (
	"strings"

	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/models"
)

// IsGreyEmptyRow reports whether every cell is blank and at least one cell
// has a solid grey-ish fill.
func IsGreyEmptyRow(row models.TableRow) bool {
	for _, cell := range row.Cells {
		if strings.TrimSpace(cell.Text) != "" {
			return false
		}
	}
	for _, cell := range row.Cells {
		if cell.Fill.Type != models.FillSolid || cell.Fill.Color == nil {
			continue
		}
		if IsGreyish(*cell.Fill.Color) {
			return true
		}
	}
	return false
}

// ClassifyRow turns one table row below the header into output rows.
// A nil result means the row produces nothing.
func ClassifyRow(row models.TableRow, header *models.HeaderInfo) []models.PlanRow {
	if IsGreyEmptyRow(row) {
		return []models.PlanRow{{Kind: models.RowGreyEmpty}}
	}

	question := strings.TrimSpace(row.CellText(header.FlagCol))
	if question == "" {
		return nil
	}
	if kind, label, ok := gateNote(question); ok {
		return []models.PlanRow{{Kind: kind, Question: label}}
	}

	return questionRows(SanitizeText(question), conditionTexts(row, header.Conditions))
}

// conditionTexts gathers the sanitized, non-empty condition cell texts.
func conditionTexts(row models.TableRow, cols map[models.Condition]int) map[models.Condition]string {
	texts := make(map[models.Condition]string, len(cols))
	for cond, col := range cols {
		if v := strings.TrimSpace(row.CellText(col)); v != "" {
			texts[cond] = SanitizeText(v)
		}
	}
	return texts
}

func questionRows(question string, texts map[models.Condition]string) []models.PlanRow {
	if question == "" || len(texts) == 0 {
		return nil
	}

	if isYesNoPattern(texts[models.ConditionApproved], texts[models.ConditionNotApproved]) {
		rows := make([]models.PlanRow, 0, len(YesNoResponses))
		for _, response := range YesNoResponses {
			expected := models.OutcomeRed
			if response == "Yes" {
				expected = models.OutcomeGreen
			}
			rows = append(rows, models.PlanRow{
				Kind:     models.RowYesNoQuestion,
				Question: question,
				Response: response,
				Expected: expected,
			})
		}
		return rows
	}

	var rows []models.PlanRow
	for _, cond := range models.Conditions {
		desc := texts[cond]
		if desc == "" {
			continue
		}
		rows = append(rows, models.PlanRow{
			Kind:     models.RowGenericQuestion,
			Question: question,
			Response: desc,
			Expected: cond.Outcome(),
		})
	}
	return rows
}

// NoteGates returns a gate row for every notes line that carries a
// Yes/No applicability phrase.
func NoteGates(notes string) []models.PlanRow {
	var rows []models.PlanRow
	for _, line := range splitLines(notes) {
		if kind, label, ok := gateNote(line); ok {
			rows = append(rows, models.PlanRow{Kind: kind, Question: label})
		}
	}
	return rows
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '\v' || r == '\f'
	})
}
