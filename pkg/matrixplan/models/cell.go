package models

import "fmt"

// RGB is a resolved 24-bit color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color as an uppercase RRGGBB string.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// FillType is the kind of fill applied to a table cell.
type FillType string

const (
	// FillNone means no explicit fill (inherited or noFill).
	FillNone FillType = ""
	// FillSolid is an a:solidFill.
	FillSolid FillType = "solid"
	// FillOther covers gradient, pattern and picture fills.
	FillOther FillType = "other"
)

// Fill is a table cell fill. Color is only meaningful for solid fills
// whose color could be resolved.
type Fill struct {
	Type     FillType `json:"type,omitempty"`
	Color    *RGB     `json:"color,omitempty"`
	SchemeID string   `json:"scheme,omitempty"`
}

// TableCell is a single a:tc element.
type TableCell struct {
	// Text is the cell text; paragraphs are joined with "\n".
	Text string `json:"text"`
	// Fill is the cell's own fill from a:tcPr.
	Fill Fill `json:"fill,omitempty"`
	// Merged is true for hMerge/vMerge continuation cells.
	Merged bool `json:"merged,omitempty"`
}

// TableRow is a single a:tr element.
type TableRow struct {
	Cells []TableCell `json:"cells"`
}

// Table is the a:tbl content of a graphic frame.
type Table struct {
	Rows []TableRow `json:"rows"`
}

// CellText returns the text of the cell at col, or "" when the row is short.
func (r TableRow) CellText(col int) string {
	if col < 0 || col >= len(r.Cells) {
		return ""
	}
	return r.Cells[col].Text
}
