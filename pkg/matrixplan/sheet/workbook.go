// Package sheet renders test plan sections into an xlsx workbook: fixed
// header rows, outcome dropdowns backed by a named range, and conditional
// formatting of the expected/actual outcome columns.
package sheet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/models"
	"github.com/xuri/excelize/v2"
)

// Infrastructure sheets and the named range used by the dropdowns.
const (
	ListSheetName    = "_lists"
	LookupsSheetName = "Lookups"
	OutcomeName      = "Outcome"
	OutcomeRange     = "$C$3:$C$8"
)

// Assembler owns the workbook: infrastructure sheets, sheet naming and the
// lifecycle of the section sheets.
type Assembler struct {
	f       *excelize.File
	styles  *palette
	names   *NameRegistry
	current *Builder
	count   int
}

// NewAssembler creates a workbook with the hidden list and lookup sheets.
func NewAssembler() (*Assembler, error) {
	f := excelize.NewFile()
	styles, err := newPalette(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	a := &Assembler{
		f:      f,
		styles: styles,
		names:  NewNameRegistry(LookupsSheetName, ListSheetName),
	}
	if err := a.ensureListSheet(); err != nil {
		f.Close()
		return nil, err
	}
	if err := EnsureOutcomeLookups(f); err != nil {
		f.Close()
		return nil, err
	}
	return a, nil
}

// Names returns the registry used for section sheet names.
func (a *Assembler) Names() *NameRegistry {
	return a.names
}

// File exposes the underlying workbook.
func (a *Assembler) File() *excelize.File {
	return a.f
}

// ensureListSheet writes the legacy four-value list (blank, Green, Yellow,
// Red) to a hidden sheet. Nothing references it; older templates expect it.
func (a *Assembler) ensureListSheet() error {
	if idx, _ := a.f.GetSheetIndex(ListSheetName); idx >= 0 {
		return nil
	}
	if _, err := a.f.NewSheet(ListSheetName); err != nil {
		return fmt.Errorf("create %s: %w", ListSheetName, err)
	}
	for i, outcome := range coloredOutcomes {
		if err := a.f.SetCellStr(ListSheetName, cellName("A", i+2), string(outcome)); err != nil {
			return err
		}
	}
	return a.f.SetSheetVisible(ListSheetName, false)
}

// EnsureOutcomeLookups writes the six outcome values to C3:C8 of a hidden
// Lookups sheet and points the workbook-level name Outcome at them. Any
// earlier definition of Outcome is removed first.
func EnsureOutcomeLookups(f *excelize.File) error {
	idx, err := f.GetSheetIndex(LookupsSheetName)
	if err != nil {
		return err
	}
	if idx < 0 {
		if _, err := f.NewSheet(LookupsSheetName); err != nil {
			return fmt.Errorf("create %s: %w", LookupsSheetName, err)
		}
	}
	if err := f.SetSheetVisible(LookupsSheetName, false); err != nil {
		return err
	}

	if err := f.SetCellStr(LookupsSheetName, "C2", OutcomeName); err != nil {
		return err
	}
	for i, outcome := range models.Outcomes {
		if outcome == models.OutcomeBlank {
			continue
		}
		if err := f.SetCellStr(LookupsSheetName, cellName("C", 3+i), string(outcome)); err != nil {
			return err
		}
	}

	for _, dn := range f.GetDefinedName() {
		if dn.Name == OutcomeName {
			if err := f.DeleteDefinedName(&excelize.DefinedName{Name: dn.Name, Scope: dn.Scope}); err != nil {
				return fmt.Errorf("remove %s: %w", OutcomeName, err)
			}
		}
	}
	return f.SetDefinedName(&excelize.DefinedName{
		Name:     OutcomeName,
		RefersTo: LookupsSheetName + "!" + OutcomeRange,
	})
}

// StartSection closes the current sheet and opens a new one named name.
// The first section reuses the workbook's default sheet.
func (a *Assembler) StartSection(name string) (*Builder, error) {
	if err := a.closeCurrent(); err != nil {
		return nil, err
	}

	if a.count == 0 {
		defaultName := a.f.GetSheetName(0)
		if err := a.f.SetSheetName(defaultName, name); err != nil {
			return nil, fmt.Errorf("rename %q to %q: %w", defaultName, name, err)
		}
	} else if _, err := a.f.NewSheet(name); err != nil {
		return nil, fmt.Errorf("create sheet %q: %w", name, err)
	}
	a.count++

	b, err := newBuilder(a.f, a.styles, name)
	if err != nil {
		return nil, err
	}
	a.current = b
	return b, nil
}

func (a *Assembler) closeCurrent() error {
	if a.current == nil {
		return nil
	}
	err := a.current.Close()
	a.current = nil
	return err
}

// WriteTo closes the open section and writes the workbook to w.
func (a *Assembler) WriteTo(w io.Writer) (int64, error) {
	if err := a.closeCurrent(); err != nil {
		return 0, err
	}
	a.f.SetActiveSheet(0)
	return a.f.WriteTo(w)
}

// Bytes closes the open section and returns the serialized workbook.
func (a *Assembler) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := a.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Close releases the workbook.
func (a *Assembler) Close() error {
	return a.f.Close()
}
