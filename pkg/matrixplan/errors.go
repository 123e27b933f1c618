package matrixplan

import (
	"errors"
	"fmt"

	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/parser"
)

// ErrEmptyInput indicates a zero-length input.
var ErrEmptyInput = errors.New("empty input")

// ErrInvalidFormat indicates the input is not a .pptx presentation.
var ErrInvalidFormat = parser.ErrNotPresentation

// ConversionError represents a failure while converting a deck.
type ConversionError struct {
	// Slide is the 1-based slide number, 0 when not tied to a slide.
	Slide     int
	Component string // "deck", "slide", "sheet", "workbook"
	Err       error
}

func (e *ConversionError) Error() string {
	if e.Slide > 0 {
		return fmt.Sprintf("conversion error on slide %d (%s): %v", e.Slide, e.Component, e.Err)
	}
	return fmt.Sprintf("conversion error (%s): %v", e.Component, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// NewConversionError creates a new ConversionError.
func NewConversionError(slide int, component string, err error) *ConversionError {
	return &ConversionError{
		Slide:     slide,
		Component: component,
		Err:       err,
	}
}

// wrapLoadError attaches the slide number of a parser failure.
func wrapLoadError(err error) error {
	if errors.Is(err, parser.ErrNotPresentation) {
		return err
	}
	var pe *parser.PartError
	if errors.As(err, &pe) && pe.Slide > 0 {
		return NewConversionError(pe.Slide, "slide", err)
	}
	return NewConversionError(0, "deck", err)
}
