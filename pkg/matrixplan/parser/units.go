// Package parser reads PresentationML decks into the models package types.
package parser

import (
	"encoding/xml"
	"strconv"
)

// EMUPerPixel is the number of EMUs per pixel at 96 DPI (914400 / 96).
const EMUPerPixel = 9525

// EMUToPixels converts slide geometry from EMU to pixels at 96 DPI.
func EMUToPixels(emu int64) int {
	return int(emu / EMUPerPixel)
}

// parseOffset reads the x/y attributes of an a:off or p:xfrm offset.
// Unparsable coordinates stay 0.
func parseOffset(se xml.StartElement) (left, top int) {
	for _, attr := range se.Attr {
		v, err := strconv.ParseInt(attr.Value, 10, 64)
		if err != nil {
			continue
		}
		switch attr.Name.Local {
		case "x":
			left = EMUToPixels(v)
		case "y":
			top = EMUToPixels(v)
		}
	}
	return
}
