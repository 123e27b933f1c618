package parser

import (
	"encoding/xml"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/models"
	"github.com/xuri/excelize/v2"
)

// colorMod is a DrawingML color transform such as lumMod or shade.
// Val is in thousandths of a percent (100000 = 100%).
type colorMod struct {
	Name string
	Val  int
}

// colorSpec is an unresolved DrawingML color choice.
type colorSpec struct {
	Kind string // srgbClr, sysClr, schemeClr, prstClr
	Val  string
	Mods []colorMod
}

// presetColors covers the a:prstClr values that show up in table fills.
var presetColors = map[string]models.RGB{
	"black":     {R: 0x00, G: 0x00, B: 0x00},
	"white":     {R: 0xFF, G: 0xFF, B: 0xFF},
	"gray":      {R: 0x80, G: 0x80, B: 0x80},
	"grey":      {R: 0x80, G: 0x80, B: 0x80},
	"silver":    {R: 0xC0, G: 0xC0, B: 0xC0},
	"ltGray":    {R: 0xD3, G: 0xD3, B: 0xD3},
	"lightGray": {R: 0xD3, G: 0xD3, B: 0xD3},
	"dkGray":    {R: 0xA9, G: 0xA9, B: 0xA9},
	"darkGray":  {R: 0xA9, G: 0xA9, B: 0xA9},
	"dimGray":   {R: 0x69, G: 0x69, B: 0x69},
	"red":       {R: 0xFF, G: 0x00, B: 0x00},
	"green":     {R: 0x00, G: 0x80, B: 0x00},
	"blue":      {R: 0x00, G: 0x00, B: 0xFF},
	"yellow":    {R: 0xFF, G: 0xFF, B: 0x00},
}

// defaultColorMap is the clrMap PowerPoint writes on new masters.
var defaultColorMap = map[string]string{
	"bg1": "lt1",
	"tx1": "dk1",
	"bg2": "lt2",
	"tx2": "dk2",
}

// colorContext resolves scheme colors for one slide.
type colorContext struct {
	theme  map[string]models.RGB
	clrMap map[string]string
}

func newColorContext(theme map[string]models.RGB, clrMap map[string]string) *colorContext {
	if clrMap == nil {
		clrMap = defaultColorMap
	}
	return &colorContext{theme: theme, clrMap: clrMap}
}

// withMap returns a copy of the context using an overriding color map.
func (cc *colorContext) withMap(clrMap map[string]string) *colorContext {
	if cc == nil {
		return newColorContext(nil, clrMap)
	}
	return &colorContext{theme: cc.theme, clrMap: clrMap}
}

// resolve turns a color spec into an RGB value. It returns nil when the
// color refers to a scheme slot that cannot be resolved.
func (cc *colorContext) resolve(spec colorSpec) *models.RGB {
	var base models.RGB
	switch spec.Kind {
	case "srgbClr", "sysClr":
		c, ok := parseHexColor(spec.Val)
		if !ok {
			return nil
		}
		base = c
	case "prstClr":
		c, ok := presetColors[spec.Val]
		if !ok {
			return nil
		}
		base = c
	case "schemeClr":
		if cc == nil || cc.theme == nil {
			return nil
		}
		slot := spec.Val
		if mapped, ok := cc.clrMap[slot]; ok {
			slot = mapped
		}
		c, ok := cc.theme[slot]
		if !ok {
			return nil
		}
		base = c
	default:
		return nil
	}
	out := applyColorMods(base, spec.Mods)
	return &out
}

func parseHexColor(s string) (models.RGB, bool) {
	if len(s) != 6 {
		return models.RGB{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return models.RGB{}, false
	}
	return models.RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

// applyColorMods applies transforms in document order. lumMod and lumOff
// work on HSL luminance; tint and shade blend toward white and black.
func applyColorMods(c models.RGB, mods []colorMod) models.RGB {
	for _, m := range mods {
		f := float64(m.Val) / 100000
		switch m.Name {
		case "lumMod", "lumOff":
			h, s, l := excelize.RGBToHSL(c.R, c.G, c.B)
			if m.Name == "lumMod" {
				l *= f
			} else {
				l += f
			}
			c.R, c.G, c.B = excelize.HSLToRGB(h, s, clamp01(l))
		case "tint":
			c = models.RGB{
				R: blend(c.R, 255, 1-f),
				G: blend(c.G, 255, 1-f),
				B: blend(c.B, 255, 1-f),
			}
		case "shade":
			c = models.RGB{
				R: blend(c.R, 0, 1-f),
				G: blend(c.G, 0, 1-f),
				B: blend(c.B, 0, 1-f),
			}
		}
	}
	return c
}

func blend(from, to uint8, f float64) uint8 {
	v := float64(from) + (float64(to)-float64(from))*clamp01(f)
	return uint8(math.Round(v))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// parseColorChoice reads the color element inside a fill such as
// a:solidFill and consumes the fill's end element.
func parseColorChoice(decoder *xml.Decoder) (colorSpec, error) {
	var spec colorSpec
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return spec, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "srgbClr", "schemeClr", "prstClr":
				spec.Kind = t.Name.Local
				spec.Val = attrValue(t, "val")
				mods, err := parseColorMods(decoder)
				if err != nil {
					return spec, err
				}
				spec.Mods = mods
			case "sysClr":
				spec.Kind = t.Name.Local
				spec.Val = attrValue(t, "lastClr")
				mods, err := parseColorMods(decoder)
				if err != nil {
					return spec, err
				}
				spec.Mods = mods
			default:
				if err := decoder.Skip(); err != nil {
					return spec, err
				}
			}
		case xml.EndElement:
			depth--
		}
	}
	return spec, nil
}

// parseColorMods reads transform children of a color element and consumes
// its end element.
func parseColorMods(decoder *xml.Decoder) ([]colorMod, error) {
	var mods []colorMod
	for {
		token, err := decoder.Token()
		if err != nil {
			return mods, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "lumMod", "lumOff", "tint", "shade":
				if v, err := strconv.Atoi(attrValue(t, "val")); err == nil {
					mods = append(mods, colorMod{Name: t.Name.Local, Val: v})
				}
			}
			if err := decoder.Skip(); err != nil {
				return mods, err
			}
		case xml.EndElement:
			return mods, nil
		}
	}
}

// parseTheme reads the a:clrScheme slots (dk1, lt1, accent1, ...) of a theme part.
func parseTheme(data []byte) (map[string]models.RGB, error) {
	theme := make(map[string]models.RGB)
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
		if !ok || se.Name.Local != "clrScheme" {
			continue
		}
		if err := parseColorScheme(decoder, theme); err != nil {
			return nil, err
		}
		break
	}

	return theme, nil
}

func parseColorScheme(decoder *xml.Decoder, theme map[string]models.RGB) error {
	for {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.StartElement:
			spec, err := parseColorChoice(decoder)
			if err != nil {
				return err
			}
			spec.Mods = nil
			if c := (*colorContext)(nil).resolve(spec); c != nil {
				theme[t.Name.Local] = *c
			}
		case xml.EndElement:
			return nil
		}
	}
}

// parseColorMap finds the first element with the given local name
// (p:clrMap on masters, a:overrideClrMapping on slides) and returns its
// attributes. It returns nil when the element is absent.
func parseColorMap(data []byte, local string) (map[string]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == local {
			m := make(map[string]string, len(se.Attr))
			for _, attr := range se.Attr {
				m[attr.Name.Local] = attr.Value
			}
			return m, nil
		}
	}
}
