package matrixplan

import (
	"bytes"
	"errors"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/matrixplan-go/internal/fixture"
	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/models"
	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/sheet"
	"github.com/xuri/excelize/v2"
)

const marker = "This is the Compliance Matrix that has been applied to "

func headerRow() []fixture.Cell {
	return fixture.Row("Flag", "Approved", "Approved with Restriction", "Not Approved")
}

func billingTable() fixture.Table {
	return fixture.Table{
		headerRow(),
		fixture.Row("Is MFA enforced?", "Has answered Yes", "", "Has answered No or Question Unanswered"),
		fixture.GreyRow(4, "D9D9D9"),
		fixture.Row("Password length", "12+", "8-11", "<8"),
		fixture.Row("Please note: The following factors only apply if you have answered Yes", "", "", ""),
		fixture.Row("", "orphan", "", ""),
	}
}

func convertDeck(t *testing.T, d fixture.Deck) *excelize.File {
	t.Helper()
	out, err := Convert(fixture.Build(d), DefaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, out)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func visibleSheets(t *testing.T, f *excelize.File) []string {
	t.Helper()
	var names []string
	for _, name := range f.GetSheetList() {
		visible, err := f.GetSheetVisible(name)
		require.NoError(t, err)
		if visible {
			names = append(names, name)
		}
	}
	return names
}

func column(t *testing.T, f *excelize.File, sheetName, col string, from, to int) []string {
	t.Helper()
	var values []string
	for row := from; row <= to; row++ {
		v, err := f.GetCellValue(sheetName, col+strconv.Itoa(row))
		require.NoError(t, err)
		values = append(values, v)
	}
	return values
}

func TestConvertBillingSection(t *testing.T) {
	f := convertDeck(t, fixture.Deck{Slides: []fixture.Slide{
		{Title: marker + "Billing", Tables: []fixture.Table{billingTable()}},
	}})

	assert.Equal(t, []string{"Billing"}, visibleSheets(t, f))

	assert.Equal(t, []string{
		"Is MFA enforced?", "Is MFA enforced?", "Is MFA enforced?",
		"",
		"Password length", "Password length", "Password length",
		"If anwered Yes to above queestion",
		"",
	}, column(t, f, "Billing", "B", 7, 15))
	assert.Equal(t, []string{"Unanswered", "No", "Yes", "", "12+", "8-11", "<8", ""},
		column(t, f, "Billing", "C", 7, 14))
	assert.Equal(t, []string{"Red", "Red", "Green", "", "Green", "Yellow", "Red", ""},
		column(t, f, "Billing", "D", 7, 14))

	dvs, err := f.GetDataValidations("Billing")
	require.NoError(t, err)
	require.Len(t, dvs, 1)
	assert.Equal(t, "D7:E9 D11:E13", dvs[0].Sqref)

	cfs, err := f.GetConditionalFormats("Billing")
	require.NoError(t, err)
	assert.Contains(t, cfs, "D7:D14")
	assert.Contains(t, cfs, "E7:E14")
}

func TestConvertWithoutMarkers(t *testing.T) {
	f := convertDeck(t, fixture.Deck{Slides: []fixture.Slide{
		{Title: "Agenda"},
		{Title: "Controls", Tables: []fixture.Table{billingTable()}},
	}})

	assert.Equal(t, []string{sheet.DefaultSheetName}, visibleSheets(t, f))
	v, err := f.GetCellValue(sheet.DefaultSheetName, "B7")
	require.NoError(t, err)
	assert.Equal(t, "Is MFA enforced?", v)
}

func TestConvertEmptyDeck(t *testing.T) {
	f := convertDeck(t, fixture.Deck{Slides: []fixture.Slide{{Title: "Nothing here"}}})

	assert.Equal(t, []string{sheet.DefaultSheetName}, visibleSheets(t, f))
	v, err := f.GetCellValue(sheet.DefaultSheetName, "B5")
	require.NoError(t, err)
	assert.Equal(t, "Question Name: ", v)
	dvs, err := f.GetDataValidations(sheet.DefaultSheetName)
	require.NoError(t, err)
	assert.Empty(t, dvs)
}

func TestConvertMultipleSections(t *testing.T) {
	f := convertDeck(t, fixture.Deck{Slides: []fixture.Slide{
		{Title: "Intro", Tables: []fixture.Table{billingTable()}},
		{Title: marker + "Billing", Tables: []fixture.Table{{headerRow(), fixture.Row("Q1", "ok", "", "")}}},
		{Title: "continued", Tables: []fixture.Table{{headerRow(), fixture.Row("Q2", "ok", "", "")}}},
		{TextBoxes: []string{marker + "billing"}, Tables: []fixture.Table{{headerRow(), fixture.Row("Q3", "ok", "", "")}}},
		{Title: marker, Tables: []fixture.Table{{headerRow(), fixture.Row("Q4", "", "meh", "")}}},
	}})

	assert.Equal(t, []string{"Billing", "billing (2)", "Section 3"}, visibleSheets(t, f))

	assert.Equal(t, []string{"Q1", "Q2", ""}, column(t, f, "Billing", "B", 7, 9))
	assert.Equal(t, []string{"Q3", ""}, column(t, f, "billing (2)", "B", 7, 8))
	assert.Equal(t, []string{"Q4"}, column(t, f, "Section 3", "B", 7, 7))
	assert.Equal(t, []string{"Yellow"}, column(t, f, "Section 3", "D", 7, 7))

	var outcomes int
	for _, dn := range f.GetDefinedName() {
		if dn.Name == sheet.OutcomeName {
			outcomes++
		}
	}
	assert.Equal(t, 1, outcomes)
}

func TestConvertThemeGreyAndGroups(t *testing.T) {
	f := convertDeck(t, fixture.Deck{Slides: []fixture.Slide{
		{
			Title:   marker + "Payroll",
			Grouped: true,
			Tables: []fixture.Table{{
				headerRow(),
				fixture.Row("Q1", "ok", "", ""),
				{{Scheme: "bg1", LumMod: 85000}, {}, {}, {}},
				{{Scheme: "accent1"}, {}, {}, {}},
				fixture.Row("Q2", "ok", "", ""),
			}},
		},
	}})

	assert.Equal(t, []string{"Q1", "", "Q2", ""}, column(t, f, "Payroll", "B", 7, 10))

	style, err := f.GetCellStyle("Payroll", "A8")
	require.NoError(t, err)
	s, err := f.GetStyle(style)
	require.NoError(t, err)
	require.NotEmpty(t, s.Fill.Color)
	assert.Contains(t, s.Fill.Color[0], "D9D9D9")
}

func TestConvertNotesGates(t *testing.T) {
	f := convertDeck(t, fixture.Deck{Slides: []fixture.Slide{
		{
			Title:  marker + "Billing",
			Tables: []fixture.Table{{headerRow(), fixture.Row("Q1", "ok", "", "")}},
			Notes:  "Reviewer hint\nPlease note: the following factors only apply if you have answered No",
		},
	}})

	assert.Equal(t, []string{"Q1", "If anwered No to above queestion", ""}, column(t, f, "Billing", "B", 7, 9))
}

func TestConvertErrors(t *testing.T) {
	_, err := Convert(nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Convert([]byte("not a zip"), DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = Convert(fixture.Build(fixture.Deck{
		Slides: []fixture.Slide{{Title: "a"}},
		Omit:   []string{"ppt/presentation.xml"},
	}), DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = Convert(fixture.Build(fixture.Deck{
		Slides: []fixture.Slide{{Title: "a"}, {Title: "b"}},
		Parts:  map[string]string{"ppt/slides/slide2.xml": `<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:sp>`},
	}), DefaultOptions())
	var ce *ConversionError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, 2, ce.Slide)
	assert.Equal(t, "slide", ce.Component)
	assert.Contains(t, err.Error(), "slide 2")
}

func TestConvertLogsSections(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	_, err := Convert(fixture.Build(fixture.Deck{Slides: []fixture.Slide{
		{Title: marker + "Billing", Tables: []fixture.Table{{fixture.Row("Legend")}, billingTable()}},
	}}), Options{Logger: &log})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"section start"`)
	assert.Contains(t, out, `"sheet":"Billing"`)
	assert.Contains(t, out, `"message":"table skipped: no Flag header"`)
	assert.Contains(t, out, `"message":"workbook written"`)
}

func TestInspect(t *testing.T) {
	plan, err := Inspect(fixture.Build(fixture.Deck{Slides: []fixture.Slide{
		{Title: "cover"},
		{Title: marker + "Lookups", Tables: []fixture.Table{billingTable()}},
	}}), DefaultOptions())
	require.NoError(t, err)

	assert.False(t, plan.Implicit)
	require.Len(t, plan.Sections, 1)
	section := plan.Sections[0]
	assert.Equal(t, 1, section.Index)
	assert.Equal(t, 2, section.FirstSlide)
	assert.Equal(t, "Lookups (2)", section.SheetName)
	require.Len(t, section.Rows, 8)
	assert.Equal(t, models.RowGreyEmpty, section.Rows[3].Kind)
	assert.Equal(t, models.RowGateYes, section.Rows[7].Kind)

	require.Len(t, plan.Tables, 1)
	assert.Equal(t, 2, plan.Tables[0].Slide)
	assert.Equal(t, 8, plan.Tables[0].Rows)

	_, err = Inspect(nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyInput)
}
