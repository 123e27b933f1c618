package sheet

import (
	"fmt"
	"strings"

	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/models"
	"github.com/xuri/excelize/v2"
)

// Fixed layout of a test plan sheet.
const (
	// FirstDataRow is the first row after the fixed header block.
	FirstDataRow = spacerRow + 1
	headerRow    = 5
	spacerRow    = 6
	lastColumn   = "I"
)

var metaLabels = []string{"Employer", "Server", "Test AccountID", "Config #"}

// headerCaptions are the row-5 captions of columns B through I.
var headerCaptions = []string{
	"Question Name: ",
	"Condition/Response",
	"Expected Outcome:",
	"Actual Outcome:",
	"Comments:",
	"Reviewed By:",
	"Date",
	"Comments",
}

var columnWidths = []struct {
	From, To string
	Width    float64
}{
	{"A", "A", 20},
	{"B", "B", 70},
	{"C", "C", 30},
	{"D", "I", 20},
}

// Builder appends test rows to one sheet. Rows are written at a cursor that
// only moves forward; Close applies the outcome dropdown and conditional
// formatting over the rows written so far, exactly once.
type Builder struct {
	f      *excelize.File
	styles *palette
	name   string

	cursor       int
	dropdownRows []int
	closed       bool
}

func newBuilder(f *excelize.File, styles *palette, name string) (*Builder, error) {
	b := &Builder{f: f, styles: styles, name: name, cursor: FirstDataRow}
	if err := b.initHeaders(); err != nil {
		return nil, fmt.Errorf("sheet %q: %w", name, err)
	}
	return b, nil
}

// Name returns the sheet name.
func (b *Builder) Name() string {
	return b.name
}

// Cursor returns the next free row.
func (b *Builder) Cursor() int {
	return b.cursor
}

func (b *Builder) initHeaders() error {
	for i, label := range metaLabels {
		if err := b.f.SetCellStr(b.name, cellName("A", i+1), label); err != nil {
			return err
		}
	}
	for i, caption := range headerCaptions {
		col, _ := excelize.ColumnNumberToName(i + 2)
		if err := b.f.SetCellStr(b.name, cellName(col, headerRow), caption); err != nil {
			return err
		}
	}
	if err := b.fillRow(headerRow, b.styles.header); err != nil {
		return err
	}
	if err := b.fillRow(spacerRow, b.styles.spacer); err != nil {
		return err
	}
	for _, cw := range columnWidths {
		if err := b.f.SetColWidth(b.name, cw.From, cw.To, cw.Width); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) fillRow(row, style int) error {
	return b.f.SetCellStyle(b.name, cellName("A", row), cellName(lastColumn, row), style)
}

// AppendRows writes classified rows in order, one sheet row each.
func (b *Builder) AppendRows(rows []models.PlanRow) error {
	if b.closed {
		return fmt.Errorf("sheet %q: append after close", b.name)
	}
	for _, row := range rows {
		if err := b.appendRow(row); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", b.name, b.cursor, err)
		}
	}
	return nil
}

func (b *Builder) appendRow(row models.PlanRow) error {
	switch row.Kind {
	case models.RowGreyEmpty:
		if err := b.fillRow(b.cursor, b.styles.grey); err != nil {
			return err
		}
	case models.RowGateYes, models.RowGateNo:
		if err := b.f.SetCellStr(b.name, cellName("B", b.cursor), row.Question); err != nil {
			return err
		}
	case models.RowYesNoQuestion, models.RowGenericQuestion:
		if err := b.f.SetCellStr(b.name, cellName("B", b.cursor), row.Question); err != nil {
			return err
		}
		if err := b.f.SetCellStr(b.name, cellName("C", b.cursor), row.Response); err != nil {
			return err
		}
		if err := b.setOutcome(cellName("D", b.cursor), row.Expected); err != nil {
			return err
		}
		if strings.TrimSpace(row.Response) != "" {
			b.dropdownRows = append(b.dropdownRows, b.cursor)
		}
	default:
		return fmt.Errorf("sheet %q: unknown row kind %q", b.name, row.Kind)
	}
	b.cursor++
	return nil
}

// setOutcome writes an outcome value and, for Green/Yellow/Red, its palette style.
func (b *Builder) setOutcome(cell string, outcome models.Outcome) error {
	if err := b.f.SetCellStr(b.name, cell, string(outcome)); err != nil {
		return err
	}
	if style, ok := b.styles.outcomeStyle(outcome); ok {
		return b.f.SetCellStyle(b.name, cell, cell, style)
	}
	return nil
}

// Close applies the outcome rules over rows FirstDataRow..Cursor()-1.
// It is a no-op when no rows were written or when already closed.
func (b *Builder) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	last := b.cursor - 1
	if last < FirstDataRow {
		return nil
	}
	if err := b.addDropdown(); err != nil {
		return fmt.Errorf("sheet %q: data validation: %w", b.name, err)
	}
	for _, col := range []string{"D", "E"} {
		ref := fmt.Sprintf("%s%d:%s%d", col, FirstDataRow, col, last)
		if err := b.f.SetConditionalFormat(b.name, ref, b.conditionalRules()); err != nil {
			return fmt.Errorf("sheet %q: conditional format %s: %w", b.name, ref, err)
		}
	}
	return nil
}

// addDropdown attaches the Outcome list to D:E of every row with a response.
func (b *Builder) addDropdown() error {
	sqref := dropdownSqref(b.dropdownRows)
	if sqref == "" {
		return nil
	}
	dv := excelize.NewDataValidation(true)
	dv.Sqref = sqref
	dv.SetSqrefDropList(OutcomeName)
	return b.f.AddDataValidation(b.name, dv)
}

func (b *Builder) conditionalRules() []excelize.ConditionalFormatOptions {
	rules := make([]excelize.ConditionalFormatOptions, 0, len(coloredOutcomes))
	for _, outcome := range coloredOutcomes {
		format := b.styles.conditional[outcome]
		rules = append(rules, excelize.ConditionalFormatOptions{
			Type:     "cell",
			Criteria: "==",
			Format:   &format,
			Value:    fmt.Sprintf("%q", string(outcome)),
		})
	}
	return rules
}

// dropdownSqref joins ascending rows into D:E ranges, one per contiguous run.
func dropdownSqref(rows []int) string {
	var refs []string
	for i := 0; i < len(rows); {
		j := i
		for j+1 < len(rows) && rows[j+1] == rows[j]+1 {
			j++
		}
		refs = append(refs, fmt.Sprintf("D%d:E%d", rows[i], rows[j]))
		i = j + 1
	}
	return strings.Join(refs, " ")
}

func cellName(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
