package classify

import "github.com/ukaji3/matrixplan-go/pkg/matrixplan/models"

const (
	greyTolerance = 10
	greyMinLevel  = 80
	greyMaxLevel  = 230
)

// IsGreyish reports whether a fill color reads as a grey separator: the
// channels differ by less than greyTolerance and the level sits inside
// [greyMinLevel, greyMaxLevel], which rules out black, white and tinted fills.
func IsGreyish(c models.RGB) bool {
	r, g, b := int(c.R), int(c.G), int(c.B)
	if absDiff(r, g) >= greyTolerance || absDiff(r, b) >= greyTolerance || absDiff(g, b) >= greyTolerance {
		return false
	}
	return r >= greyMinLevel && r <= greyMaxLevel
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
