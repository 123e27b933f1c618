package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/models"
)

const presentationPart = "ppt/presentation.xml"

// ErrNotPresentation indicates the input is not a PresentationML package.
var ErrNotPresentation = errors.New("not a pptx presentation")

// PartError reports a failure while reading one package part.
type PartError struct {
	// Slide is the 1-based slide number, 0 for deck-level parts.
	Slide int
	Part  string
	Err   error
}

func (e *PartError) Error() string {
	if e.Slide > 0 {
		return fmt.Sprintf("slide %d (%s): %v", e.Slide, e.Part, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Part, e.Err)
}

func (e *PartError) Unwrap() error {
	return e.Err
}

// ParseDeck loads a deck held in memory.
func ParseDeck(data []byte) (*models.Deck, error) {
	return LoadDeck(bytes.NewReader(data), int64(len(data)))
}

// LoadDeck reads slides, their shapes, tables and notes from a .pptx package.
func LoadDeck(r io.ReaderAt, size int64) (*models.Deck, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPresentation, err)
	}
	pkg := newPackage(zr)
	if !pkg.has(presentationPart) {
		return nil, fmt.Errorf("%w: missing %s", ErrNotPresentation, presentationPart)
	}

	presXML, err := pkg.read(presentationPart)
	if err != nil {
		return nil, &PartError{Part: presentationPart, Err: err}
	}
	slideIDs, err := parseSlideIDList(presXML)
	if err != nil {
		return nil, &PartError{Part: presentationPart, Err: err}
	}
	presRels, err := pkg.rels(presentationPart)
	if err != nil {
		return nil, &PartError{Part: presentationPart, Err: err}
	}

	loader := &deckLoader{pkg: pkg, contexts: make(map[string]*colorContext)}
	deck := &models.Deck{}
	for i, rID := range slideIDs {
		index := i + 1
		rel, ok := presRels.get(rID)
		if !ok || !strings.HasSuffix(rel.Type, relSlide) {
			return nil, &PartError{Slide: index, Part: presentationPart, Err: fmt.Errorf("no slide relationship %q", rID)}
		}
		slide, err := loader.loadSlide(index, rel.Target)
		if err != nil {
			return nil, err
		}
		deck.Slides = append(deck.Slides, slide)
	}

	return deck, nil
}

// parseSlideIDList returns the r:id values of p:sldIdLst in presentation order.
func parseSlideIDList(data []byte) ([]string, error) {
	var ids []string
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "sldId" {
			continue
		}
		for _, attr := range se.Attr {
			if attr.Name.Local == "id" && attr.Name.Space == nsR {
				ids = append(ids, attr.Value)
			}
		}
	}

	return ids, nil
}

// deckLoader caches the color context of each slide master.
type deckLoader struct {
	pkg      *opcPackage
	contexts map[string]*colorContext
}

func (l *deckLoader) loadSlide(index int, slidePath string) (models.Slide, error) {
	slide := models.Slide{Index: index}

	data, err := l.pkg.read(slidePath)
	if err != nil {
		return slide, &PartError{Slide: index, Part: slidePath, Err: err}
	}
	rels, err := l.pkg.rels(slidePath)
	if err != nil {
		return slide, &PartError{Slide: index, Part: slidePath, Err: err}
	}

	cc := l.colorContextFor(rels)
	override, err := parseColorMap(data, "overrideClrMapping")
	if err != nil {
		return slide, &PartError{Slide: index, Part: slidePath, Err: err}
	}
	if override != nil {
		cc = cc.withMap(override)
	}

	shapes, err := parseSlideXML(data, cc)
	if err != nil {
		return slide, &PartError{Slide: index, Part: slidePath, Err: err}
	}
	slide.Shapes = shapes

	if notesPath, ok := rels.firstOfType(relNotesSlide); ok {
		notes, err := l.loadNotes(notesPath)
		if err != nil {
			return slide, &PartError{Slide: index, Part: notesPath, Err: err}
		}
		slide.Notes = notes
	}

	return slide, nil
}

// loadNotes returns the body placeholder text of a notes slide.
func (l *deckLoader) loadNotes(notesPath string) (string, error) {
	data, err := l.pkg.read(notesPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	shapes, err := parseSlideXML(data, nil)
	if err != nil {
		return "", err
	}
	for _, sh := range shapes {
		if sh.Placeholder == "body" && sh.HasTextFrame() {
			return sh.Text, nil
		}
	}
	return "", nil
}

// colorContextFor follows slide -> layout -> master -> theme. Any missing
// link leaves scheme colors unresolved; it never fails the slide.
func (l *deckLoader) colorContextFor(slideRels relationships) *colorContext {
	layoutPath, ok := slideRels.firstOfType(relSlideLayout)
	if !ok {
		return newColorContext(nil, nil)
	}
	layoutRels, err := l.pkg.rels(layoutPath)
	if err != nil {
		return newColorContext(nil, nil)
	}
	masterPath, ok := layoutRels.firstOfType(relSlideMaster)
	if !ok {
		return newColorContext(nil, nil)
	}
	if cc, ok := l.contexts[masterPath]; ok {
		return cc
	}

	var clrMap map[string]string
	var theme map[string]models.RGB
	if data, err := l.pkg.read(masterPath); err == nil {
		clrMap, _ = parseColorMap(data, "clrMap")
	}
	if masterRels, err := l.pkg.rels(masterPath); err == nil {
		if themePath, ok := masterRels.firstOfType(relTheme); ok {
			if data, err := l.pkg.read(themePath); err == nil {
				theme, _ = parseTheme(data)
			}
		}
	}

	cc := newColorContext(theme, clrMap)
	l.contexts[masterPath] = cc
	return cc
}
