package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/matrixplan-go/internal/fixture"
	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/models"
)

func TestParseDeck(t *testing.T) {
	data := fixture.Build(fixture.Deck{Slides: []fixture.Slide{
		{
			Title: "This is the compliance matrix that has been applied to Billing",
			Tables: []fixture.Table{{
				fixture.Row("Flag", "Approved", "Not Approved"),
				fixture.Row("Is it on?", "Has answered Yes", "Has answered No or Question Unanswered"),
			}},
			Notes: "first line\nsecond line",
		},
		{
			TextBoxes: []string{"Just a text box"},
		},
	}})

	deck, err := ParseDeck(data)
	require.NoError(t, err)
	require.Len(t, deck.Slides, 2)

	first := deck.Slides[0]
	assert.Equal(t, 1, first.Index)
	title, ok := first.Title()
	require.True(t, ok)
	assert.Equal(t, "This is the compliance matrix that has been applied to Billing", title)
	assert.Equal(t, "first line\nsecond line", first.Notes)

	tables := first.Tables()
	require.Len(t, tables, 1)
	require.Len(t, tables[0].Rows, 2)
	assert.Equal(t, "Flag", tables[0].Rows[0].CellText(0))
	assert.Equal(t, "Has answered No or Question Unanswered", tables[0].Rows[1].CellText(2))
	assert.Equal(t, "", tables[0].Rows[1].CellText(7))

	second := deck.Slides[1]
	_, ok = second.Title()
	assert.False(t, ok)
	require.Len(t, second.Shapes, 1)
	assert.Equal(t, models.ShapeText, second.Shapes[0].Kind)
	assert.Equal(t, "Just a text box", second.Shapes[0].Text)
	assert.Equal(t, 1, second.Shapes[0].L)
	assert.Empty(t, second.Notes)
}

func TestParseDeckCellFills(t *testing.T) {
	data := fixture.Build(fixture.Deck{Slides: []fixture.Slide{{
		Tables: []fixture.Table{{
			{
				{Fill: "D9D9D9"},
				{Scheme: "bg1", LumMod: 85000},
				{Scheme: "accent1"},
				{Text: "plain"},
			},
		}},
	}}})

	deck, err := ParseDeck(data)
	require.NoError(t, err)
	cells := deck.Slides[0].Tables()[0].Rows[0].Cells
	require.Len(t, cells, 4)

	tests := []struct {
		name     string
		cell     models.TableCell
		fillType models.FillType
		hex      string
	}{
		{"srgb", cells[0], models.FillSolid, "D9D9D9"},
		{"scheme with lumMod", cells[1], models.FillSolid, "D9D9D9"},
		{"scheme accent", cells[2], models.FillSolid, "4472C4"},
		{"no fill, border fill ignored", cells[3], models.FillNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fillType, tt.cell.Fill.Type)
			if tt.hex == "" {
				assert.Nil(t, tt.cell.Fill.Color)
				return
			}
			require.NotNil(t, tt.cell.Fill.Color)
			assert.Equal(t, tt.hex, tt.cell.Fill.Color.Hex())
		})
	}
	assert.Equal(t, "bg1", cells[1].Fill.SchemeID)
}

func TestParseDeckFlattensGroups(t *testing.T) {
	data := fixture.Build(fixture.Deck{Slides: []fixture.Slide{{
		Title:   "Grouped",
		Grouped: true,
		Tables:  []fixture.Table{{fixture.Row("Flag")}, {fixture.Row("Other")}},
	}}})

	deck, err := ParseDeck(data)
	require.NoError(t, err)
	tables := deck.Slides[0].Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, "Flag", tables[0].Rows[0].CellText(0))
	assert.Equal(t, "Other", tables[1].Rows[0].CellText(0))
}

func TestParseDeckErrors(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		_, err := ParseDeck([]byte("definitely not a zip"))
		assert.True(t, errors.Is(err, ErrNotPresentation))
	})

	t.Run("zip without presentation", func(t *testing.T) {
		data := fixture.Build(fixture.Deck{Omit: []string{"ppt/presentation.xml"}})
		_, err := ParseDeck(data)
		assert.True(t, errors.Is(err, ErrNotPresentation))
	})

	t.Run("malformed slide", func(t *testing.T) {
		data := fixture.Build(fixture.Deck{
			Slides: []fixture.Slide{{Title: "ok"}, {Title: "broken"}},
			Parts: map[string]string{
				"ppt/slides/slide2.xml": `<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:sp>`,
			},
		})
		_, err := ParseDeck(data)
		require.Error(t, err)
		var pe *PartError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, 2, pe.Slide)
		assert.Equal(t, "ppt/slides/slide2.xml", pe.Part)
	})

	t.Run("missing slide relationship", func(t *testing.T) {
		data := fixture.Build(fixture.Deck{
			Slides: []fixture.Slide{{Title: "ok"}},
			Parts: map[string]string{
				"ppt/_rels/presentation.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"/>`,
			},
		})
		_, err := ParseDeck(data)
		var pe *PartError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, 1, pe.Slide)
	})
}

func TestParseTextBody(t *testing.T) {
	data := []byte(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree>
<p:sp><p:nvSpPr><p:cNvPr id="7" name="Body"/><p:cNvSpPr/><p:nvPr><p:ph idx="1"/></p:nvPr></p:nvSpPr>
<p:txBody><a:bodyPr/><a:p><a:r><a:t>one</a:t></a:r><a:br/><a:r><a:t>two</a:t></a:r></a:p><a:p><a:fld id="x" type="slidenum"><a:t>3</a:t></a:fld></a:p></p:txBody></p:sp>
</p:spTree></p:cSld></p:sld>`)

	shapes, err := parseSlideXML(data, nil)
	require.NoError(t, err)
	require.Len(t, shapes, 1)
	assert.Equal(t, 7, shapes[0].ID)
	assert.Equal(t, "Body", shapes[0].Name)
	assert.Equal(t, "obj", shapes[0].Placeholder)
	assert.Equal(t, "one\ntwo\n3", shapes[0].Text)
}

func TestResolveRelativePath(t *testing.T) {
	tests := []struct {
		target   string
		baseDir  string
		expected string
	}{
		{"../slideLayouts/slideLayout1.xml", "ppt/slides", "ppt/slideLayouts/slideLayout1.xml"},
		{"/ppt/slides/slide1.xml", "ppt", "ppt/slides/slide1.xml"},
		{"slides/slide1.xml", "ppt", "ppt/slides/slide1.xml"},
		{"../../docProps/core.xml", "ppt/slides", "docProps/core.xml"},
	}

	for _, tt := range tests {
		result := resolveRelativePath(tt.target, tt.baseDir)
		if result != tt.expected {
			t.Errorf("resolveRelativePath(%q, %q) = %q, expected %q",
				tt.target, tt.baseDir, result, tt.expected)
		}
	}
}

func TestRelsPathFor(t *testing.T) {
	assert.Equal(t, "ppt/slides/_rels/slide3.xml.rels", relsPathFor("ppt/slides/slide3.xml"))
	assert.Equal(t, "ppt/_rels/presentation.xml.rels", relsPathFor("ppt/presentation.xml"))
}
