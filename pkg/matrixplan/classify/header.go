package classify

import "github.com/ukaji3/matrixplan-go/pkg/matrixplan/models"

// FindFlagHeader scans rows top to bottom and cells left to right for the
// first "Flag" cell. ok is false when the table is not a compliance table.
func FindFlagHeader(table *models.Table) (row, col int, ok bool) {
	for r, tr := range table.Rows {
		for c, cell := range tr.Cells {
			if isFlagHeader(cell.Text) {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// FindConditionColumns maps condition names to column indices in the header
// row. When a name repeats, the rightmost column wins.
func FindConditionColumns(table *models.Table, headerRow int) map[models.Condition]int {
	cols := make(map[models.Condition]int)
	if headerRow < 0 || headerRow >= len(table.Rows) {
		return cols
	}
	for c, cell := range table.Rows[headerRow].Cells {
		if cond, ok := conditionHeader(cell.Text); ok {
			cols[cond] = c
		}
	}
	return cols
}

// LocateHeader combines FindFlagHeader and FindConditionColumns.
func LocateHeader(table *models.Table) (*models.HeaderInfo, bool) {
	row, col, ok := FindFlagHeader(table)
	if !ok {
		return nil, false
	}
	return &models.HeaderInfo{
		Row:        row,
		FlagCol:    col,
		Conditions: FindConditionColumns(table, row),
	}, true
}
