// Package models defines data structures for presentation decks and test plans.
package models

// ShapeKind identifies what a slide shape carries.
type ShapeKind string

const (
	// ShapeText is a shape with a text frame (p:sp).
	ShapeText ShapeKind = "text"
	// ShapeTable is a graphic frame holding a table (a:tbl).
	ShapeTable ShapeKind = "table"
	// ShapeOther is any other graphic frame or picture.
	ShapeOther ShapeKind = "other"
)

// Shape represents one shape on a slide in document order.
type Shape struct {
	// ID is the cNvPr id within the slide.
	ID int `json:"id"`
	// Name is the cNvPr name.
	Name string `json:"name,omitempty"`
	// Kind tells whether the shape holds text, a table or something else.
	Kind ShapeKind `json:"kind"`
	// Placeholder is the placeholder type (e.g. "title", "ctrTitle", "body"), if any.
	Placeholder string `json:"placeholder,omitempty"`
	// Text is the text frame content; paragraphs are joined with "\n".
	Text string `json:"text,omitempty"`
	// L is the left offset in pixels.
	L int `json:"l"`
	// T is the top offset in pixels.
	T int `json:"t"`
	// Table is set when Kind is ShapeTable.
	Table *Table `json:"table,omitempty"`
}

// IsTitle reports whether the shape is the slide's title placeholder.
func (s Shape) IsTitle() bool {
	return s.Placeholder == "title" || s.Placeholder == "ctrTitle"
}

// HasTextFrame reports whether the shape can carry text.
func (s Shape) HasTextFrame() bool {
	return s.Kind == ShapeText
}
