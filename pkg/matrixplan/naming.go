package matrixplan

import (
	"path"
	"strings"
	"time"
)

// OutputTimeFormat is the timestamp layout used in generated file names.
const OutputTimeFormat = "20060102_150405"

// OutputName returns the workbook file name for an input deck:
// "<base>_test_sheet_<YYYYMMDD_HHMMSS>.xlsx". Directories and the last
// extension are stripped from input; an empty base becomes "converted".
func OutputName(input string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(input, `\`, "/"))
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}
	base = strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 {
			return '_'
		}
		return r
	}, base)
	if strings.TrimSpace(base) == "" || base == "/" {
		base = "converted"
	}
	return base + "_test_sheet_" + now.Format(OutputTimeFormat) + ".xlsx"
}
