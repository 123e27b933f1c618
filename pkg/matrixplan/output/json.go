// Package output serializes inspection results to JSON.
package output

import (
	"github.com/goccy/go-json"
	"github.com/ukaji3/matrixplan-go/pkg/matrixplan"
)

// ToJSON encodes v, indented by two spaces when pretty is set.
func ToJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// PlanToJSON encodes the sections, table reports and row classifications
// of a plan.
func PlanToJSON(plan *matrixplan.Plan, pretty bool) ([]byte, error) {
	return ToJSON(plan, pretty)
}
