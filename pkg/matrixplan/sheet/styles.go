package sheet

import (
	"fmt"

	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/models"
	"github.com/xuri/excelize/v2"
)

// Fixed fills of the test plan template.
const (
	headerFillColor = "FFFF00"
	spacerFillColor = "FFC000"
	greyFillColor   = "D9D9D9"
)

// outcomeColors is the font/fill palette of the Green, Yellow and Red outcomes.
var outcomeColors = map[models.Outcome]struct{ Font, Fill string }{
	models.OutcomeGreen:  {Font: "006100", Fill: "C6EFCE"},
	models.OutcomeYellow: {Font: "9C6500", Fill: "FFEB9C"},
	models.OutcomeRed:    {Font: "9C0006", Fill: "FFC7CE"},
}

// coloredOutcomes is the order conditional-format rules are written in.
var coloredOutcomes = []models.Outcome{models.OutcomeGreen, models.OutcomeYellow, models.OutcomeRed}

// palette holds the style ids registered once per workbook.
type palette struct {
	header      int
	spacer      int
	grey        int
	outcome     map[models.Outcome]int
	conditional map[models.Outcome]int
}

func solidFill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

func newPalette(f *excelize.File) (*palette, error) {
	p := &palette{
		outcome:     make(map[models.Outcome]int, len(outcomeColors)),
		conditional: make(map[models.Outcome]int, len(outcomeColors)),
	}

	var err error
	if p.header, err = f.NewStyle(&excelize.Style{Fill: solidFill(headerFillColor)}); err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if p.spacer, err = f.NewStyle(&excelize.Style{Fill: solidFill(spacerFillColor)}); err != nil {
		return nil, fmt.Errorf("spacer style: %w", err)
	}
	if p.grey, err = f.NewStyle(&excelize.Style{Fill: solidFill(greyFillColor)}); err != nil {
		return nil, fmt.Errorf("grey style: %w", err)
	}

	for _, outcome := range coloredOutcomes {
		colors := outcomeColors[outcome]
		style := &excelize.Style{
			Font: &excelize.Font{Color: colors.Font},
			Fill: solidFill(colors.Fill),
		}
		id, err := f.NewStyle(style)
		if err != nil {
			return nil, fmt.Errorf("%s outcome style: %w", outcome, err)
		}
		p.outcome[outcome] = id

		id, err = f.NewConditionalStyle(style)
		if err != nil {
			return nil, fmt.Errorf("%s conditional style: %w", outcome, err)
		}
		p.conditional[outcome] = id
	}

	return p, nil
}

// outcomeStyle returns the cell style for a colored outcome value.
func (p *palette) outcomeStyle(outcome models.Outcome) (int, bool) {
	id, ok := p.outcome[outcome]
	return id, ok
}
