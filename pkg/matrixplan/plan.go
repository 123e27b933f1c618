package matrixplan

import (
	"github.com/rs/zerolog"
	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/classify"
	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/models"
	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/sheet"
)

// Plan is the classified content of a deck, one Section per output sheet.
type Plan struct {
	Sections []models.Section       `json:"sections"`
	Tables   []classify.TableReport `json:"tables"`
	// Implicit is true when the deck had no section marker and every
	// slide went into the default sheet.
	Implicit bool `json:"implicit"`
}

// BuildPlan groups slides into sections and classifies their table rows.
// A section starts at every slide whose title (or any text frame) carries
// the marker phrase; slides before the first marker are not part of any
// section. Without markers the whole deck becomes one section.
func BuildPlan(deck *models.Deck, names *sheet.NameRegistry, log *zerolog.Logger) *Plan {
	plan := &Plan{}
	index := 0

	for _, slide := range deck.Slides {
		if title := classify.SectionTitle(slide); title != "" {
			index++
			base := sheet.SheetNameFromTitle(classify.MarkerRemainder(title), index)
			name := names.Reserve(base, index)
			plan.Sections = append(plan.Sections, models.Section{
				Index:      index,
				Title:      title,
				SheetName:  name,
				FirstSlide: slide.Index,
			})
			log.Debug().Int("section", index).Str("sheet", name).Int("slide", slide.Index).Msg("section start")
		}
		if len(plan.Sections) == 0 {
			continue
		}
		current := &plan.Sections[len(plan.Sections)-1]
		plan.addSlide(current, slide, log)
	}

	if len(plan.Sections) > 0 {
		return plan
	}

	plan.Implicit = true
	plan.Sections = []models.Section{{
		Index:      1,
		SheetName:  names.Reserve(sheet.DefaultSheetName, 1),
		FirstSlide: 1,
	}}
	for _, slide := range deck.Slides {
		plan.addSlide(&plan.Sections[0], slide, log)
	}
	return plan
}

func (p *Plan) addSlide(section *models.Section, slide models.Slide, log *zerolog.Logger) {
	rows, reports := classify.SlideRows(slide)
	for _, r := range reports {
		if r.Header == nil {
			log.Debug().Int("slide", r.Slide).Int("table", r.Table).Msg("table skipped: no Flag header")
		}
	}
	p.Tables = append(p.Tables, reports...)
	section.Rows = append(section.Rows, rows...)
	if len(rows) > 0 {
		log.Debug().Int("slide", slide.Index).Int("rows", len(rows)).Str("sheet", section.SheetName).Msg("rows classified")
	}
}
