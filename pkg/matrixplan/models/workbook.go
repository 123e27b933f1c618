package models

// Slide represents one slide in presentation order.
type Slide struct {
	// Index is the 1-based slide number.
	Index int `json:"index"`
	// Shapes are the slide's shapes in document order, groups flattened.
	Shapes []Shape `json:"shapes"`
	// Notes is the notes-slide body text, empty when the slide has no notes.
	Notes string `json:"notes,omitempty"`
}

// Title returns the text of the title placeholder, if present.
func (s Slide) Title() (string, bool) {
	for _, sh := range s.Shapes {
		if sh.IsTitle() {
			return sh.Text, true
		}
	}
	return "", false
}

// Tables returns the tables on the slide in document order.
func (s Slide) Tables() []*Table {
	var tables []*Table
	for _, sh := range s.Shapes {
		if sh.Kind == ShapeTable && sh.Table != nil {
			tables = append(tables, sh.Table)
		}
	}
	return tables
}

// Deck is a loaded presentation.
type Deck struct {
	Slides []Slide `json:"slides"`
}
