package matrixplan

import (
	"bytes"
	"io"

	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/parser"
	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/sheet"
)

// Convert turns .pptx bytes into .xlsx bytes. On error no workbook is returned.
func Convert(data []byte, opts Options) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	return ConvertReader(bytes.NewReader(data), int64(len(data)), opts)
}

// ConvertReader is Convert for inputs that are not held in memory.
func ConvertReader(r io.ReaderAt, size int64, opts Options) ([]byte, error) {
	if size == 0 {
		return nil, ErrEmptyInput
	}
	log := opts.logger()

	deck, err := parser.LoadDeck(r, size)
	if err != nil {
		return nil, wrapLoadError(err)
	}

	wb, err := sheet.NewAssembler()
	if err != nil {
		return nil, NewConversionError(0, "workbook", err)
	}
	defer wb.Close()

	plan := BuildPlan(deck, wb.Names(), log)
	for _, section := range plan.Sections {
		b, err := wb.StartSection(section.SheetName)
		if err != nil {
			return nil, NewConversionError(section.FirstSlide, "sheet", err)
		}
		if err := b.AppendRows(section.Rows); err != nil {
			return nil, NewConversionError(section.FirstSlide, "sheet", err)
		}
		log.Debug().Str("sheet", b.Name()).Int("first_row", sheet.FirstDataRow).Int("last_row", b.Cursor()-1).Msg("section rows written")
	}

	out, err := wb.Bytes()
	if err != nil {
		return nil, NewConversionError(0, "workbook", err)
	}
	log.Debug().Int("sheets", len(plan.Sections)).Int("slides", len(deck.Slides)).Int("bytes", len(out)).Msg("workbook written")
	return out, nil
}

// Inspect loads a deck and returns its plan without building a workbook.
func Inspect(data []byte, opts Options) (*Plan, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	deck, err := parser.ParseDeck(data)
	if err != nil {
		return nil, wrapLoadError(err)
	}
	names := sheet.NewNameRegistry(sheet.LookupsSheetName, sheet.ListSheetName)
	return BuildPlan(deck, names, opts.logger()), nil
}
