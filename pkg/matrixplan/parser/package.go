package parser

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// nsR is the namespace of r:id attributes.
const nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

// Relationship type suffixes
const (
	relSlide       = "/slide"
	relSlideLayout = "/slideLayout"
	relSlideMaster = "/slideMaster"
	relTheme       = "/theme"
	relNotesSlide  = "/notesSlide"
)

// maxPartSize bounds the decompressed size of a single package part.
const maxPartSize = 64 << 20

// ErrPartTooLarge is returned when a part exceeds maxPartSize once decompressed.
var ErrPartTooLarge = errors.New("package part too large")

// opcPackage gives name-indexed access to the parts of a zip container.
type opcPackage struct {
	files map[string]*zip.File
}

func newPackage(r *zip.Reader) *opcPackage {
	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		files[strings.TrimPrefix(f.Name, "/")] = f
	}
	return &opcPackage{files: files}
}

// has reports whether the part exists.
func (p *opcPackage) has(name string) bool {
	_, ok := p.files[name]
	return ok
}

// read returns the content of a part. A missing part yields an error
// wrapping fs.ErrNotExist.
func (p *opcPackage) read(name string) ([]byte, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(data) > maxPartSize {
		return nil, fmt.Errorf("%s: %w", name, ErrPartTooLarge)
	}
	return data, nil
}

// relationship is one entry of a .rels part with its target resolved
// to a package part name.
type relationship struct {
	ID     string
	Type   string
	Target string
}

type relationships struct {
	byID  map[string]relationship
	order []string
}

// get returns the relationship with the given id.
func (rs relationships) get(id string) (relationship, bool) {
	rel, ok := rs.byID[id]
	return rel, ok
}

// firstOfType returns the target of the first relationship whose type
// ends with suffix, in rels document order.
func (rs relationships) firstOfType(suffix string) (string, bool) {
	for _, id := range rs.order {
		if rel := rs.byID[id]; strings.HasSuffix(rel.Type, suffix) {
			return rel.Target, true
		}
	}
	return "", false
}

// rels parses the relationships of a part. A part without a rels part has
// no relationships; that is not an error.
func (p *opcPackage) rels(part string) (relationships, error) {
	relsPath := relsPathFor(part)
	if !p.has(relsPath) {
		return relationships{}, nil
	}
	data, err := p.read(relsPath)
	if err != nil {
		return relationships{}, err
	}
	return parseRels(data, part)
}

func relsPathFor(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

func parseRels(data []byte, source string) (relationships, error) {
	result := relationships{byID: make(map[string]relationship)}
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return relationships{}, fmt.Errorf("%s: %w", relsPathFor(source), err)
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			var rel relationship
			var external bool
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "Id":
					rel.ID = attr.Value
				case "Type":
					rel.Type = attr.Value
				case "Target":
					rel.Target = attr.Value
				case "TargetMode":
					external = strings.EqualFold(attr.Value, "External")
				}
			}
			if rel.ID == "" || external {
				continue
			}
			rel.Target = resolveRelativePath(rel.Target, path.Dir(source))
			if _, dup := result.byID[rel.ID]; !dup {
				result.order = append(result.order, rel.ID)
			}
			result.byID[rel.ID] = rel
		}
	}

	return result, nil
}

// resolveRelativePath resolves a relationship target against the directory
// of the source part. Absolute targets are rooted at the package root.
func resolveRelativePath(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Clean(path.Join(baseDir, target)), "/")
}

// Helper functions

func attrValue(se xml.StartElement, local string) string {
	for _, attr := range se.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

func readElementText(decoder *xml.Decoder) (string, error) {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text.String(), nil
}
