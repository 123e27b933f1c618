package parser

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/models"
)

// parseSlideXML parses a slide (or notes slide) part and returns its shapes
// in document order. Group shapes are flattened into their children.
func parseSlideXML(data []byte, cc *colorContext) ([]models.Shape, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "spTree" {
			return parseShapeTree(decoder, cc)
		}
	}
}

// parseShapeTree parses the children of p:spTree or p:grpSp and consumes
// the closing element.
func parseShapeTree(decoder *xml.Decoder, cc *colorContext) ([]models.Shape, error) {
	var shapes []models.Shape
	for {
		token, err := decoder.Token()
		if err != nil {
			return shapes, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp", "pic", "cxnSp":
				shape, err := parseShapeElement(decoder, cc)
				if err != nil {
					return shapes, err
				}
				shapes = append(shapes, shape)
			case "graphicFrame":
				shape, err := parseShapeElement(decoder, cc)
				if err != nil {
					return shapes, err
				}
				shapes = append(shapes, shape)
			case "grpSp":
				children, err := parseShapeTree(decoder, cc)
				if err != nil {
					return shapes, err
				}
				shapes = append(shapes, children...)
			case "AlternateContent":
				// mc:AlternateContent wraps shapes in Choice/Fallback; only the
				// Fallback branch is guaranteed to be plain PresentationML.
				children, err := parseAlternateContent(decoder, cc)
				if err != nil {
					return shapes, err
				}
				shapes = append(shapes, children...)
			default:
				if err := decoder.Skip(); err != nil {
					return shapes, err
				}
			}
		case xml.EndElement:
			return shapes, nil
		}
	}
}

func parseAlternateContent(decoder *xml.Decoder, cc *colorContext) ([]models.Shape, error) {
	var shapes []models.Shape
	for {
		token, err := decoder.Token()
		if err != nil {
			return shapes, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "Fallback" {
				children, err := parseShapeTree(decoder, cc)
				if err != nil {
					return shapes, err
				}
				shapes = append(shapes, children...)
				continue
			}
			if err := decoder.Skip(); err != nil {
				return shapes, err
			}
		case xml.EndElement:
			return shapes, nil
		}
	}
}

// parseShapeElement parses p:sp, p:pic, p:cxnSp and p:graphicFrame.
func parseShapeElement(decoder *xml.Decoder, cc *colorContext) (models.Shape, error) {
	shape := models.Shape{Kind: models.ShapeOther}
	var posSet bool

	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return shape, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "cNvPr":
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "id":
						shape.ID, _ = strconv.Atoi(attr.Value)
					case "name":
						shape.Name = attr.Value
					}
				}
			case "ph":
				shape.Placeholder = attrValue(t, "type")
				if shape.Placeholder == "" {
					shape.Placeholder = "obj"
				}
			case "off":
				if !posSet {
					shape.L, shape.T = parseOffset(t)
					posSet = true
				}
			case "txBody":
				text, err := parseTextBody(decoder)
				if err != nil {
					return shape, err
				}
				shape.Kind = models.ShapeText
				shape.Text = text
				depth--
			case "tbl":
				table, err := parseTable(decoder, cc)
				if err != nil {
					return shape, err
				}
				shape.Kind = models.ShapeTable
				shape.Table = table
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	return shape, nil
}

// parseTextBody reads a p:txBody or a:txBody and consumes its end element.
// Paragraphs are joined with "\n"; a:br becomes "\n" as well.
func parseTextBody(decoder *xml.Decoder) (string, error) {
	var paragraphs []string
	var current strings.Builder

	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				current.Reset()
				depth++
			case "t":
				txt, err := readElementText(decoder)
				if err != nil {
					return "", err
				}
				current.WriteString(txt)
			case "br":
				current.WriteString("\n")
				if err := decoder.Skip(); err != nil {
					return "", err
				}
			default:
				depth++
			}
		case xml.EndElement:
			depth--
			if t.Name.Local == "p" && depth > 0 {
				paragraphs = append(paragraphs, current.String())
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}

// parseTable reads an a:tbl element and consumes its end element.
func parseTable(decoder *xml.Decoder, cc *colorContext) (*models.Table, error) {
	table := &models.Table{}
	for {
		token, err := decoder.Token()
		if err != nil {
			return table, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "tr" {
				row, err := parseTableRow(decoder, cc)
				if err != nil {
					return table, err
				}
				table.Rows = append(table.Rows, row)
				continue
			}
			if err := decoder.Skip(); err != nil {
				return table, err
			}
		case xml.EndElement:
			return table, nil
		}
	}
}

func parseTableRow(decoder *xml.Decoder, cc *colorContext) (models.TableRow, error) {
	var row models.TableRow
	for {
		token, err := decoder.Token()
		if err != nil {
			return row, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "tc" {
				cell, err := parseTableCell(decoder, t, cc)
				if err != nil {
					return row, err
				}
				row.Cells = append(row.Cells, cell)
				continue
			}
			if err := decoder.Skip(); err != nil {
				return row, err
			}
		case xml.EndElement:
			return row, nil
		}
	}
}

func parseTableCell(decoder *xml.Decoder, start xml.StartElement, cc *colorContext) (models.TableCell, error) {
	var cell models.TableCell
	cell.Merged = isTrue(attrValue(start, "hMerge")) || isTrue(attrValue(start, "vMerge"))

	for {
		token, err := decoder.Token()
		if err != nil {
			return cell, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "txBody":
				text, err := parseTextBody(decoder)
				if err != nil {
					return cell, err
				}
				cell.Text = text
			case "tcPr":
				fill, err := parseCellFill(decoder, cc)
				if err != nil {
					return cell, err
				}
				cell.Fill = fill
			default:
				if err := decoder.Skip(); err != nil {
					return cell, err
				}
			}
		case xml.EndElement:
			return cell, nil
		}
	}
}

// parseCellFill reads the direct fill child of a:tcPr. Fills nested in
// border line properties (a:lnL, a:lnR, ...) are ignored.
func parseCellFill(decoder *xml.Decoder, cc *colorContext) (models.Fill, error) {
	var fill models.Fill
	for {
		token, err := decoder.Token()
		if err != nil {
			return fill, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "solidFill":
				spec, err := parseColorChoice(decoder)
				if err != nil {
					return fill, err
				}
				fill.Type = models.FillSolid
				fill.Color = cc.resolve(spec)
				if spec.Kind == "schemeClr" {
					fill.SchemeID = spec.Val
				}
				continue
			case "gradFill", "pattFill", "blipFill", "grpFill":
				fill.Type = models.FillOther
			case "noFill":
				fill.Type = models.FillNone
			}
			if err := decoder.Skip(); err != nil {
				return fill, err
			}
		case xml.EndElement:
			return fill, nil
		}
	}
}

func isTrue(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}
