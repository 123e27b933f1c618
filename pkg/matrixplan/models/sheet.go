package models

// Outcome is the expected/actual result value used by the dropdowns.
type Outcome string

const (
	OutcomeBlank  Outcome = ""
	OutcomeGreen  Outcome = "Green"
	OutcomeYellow Outcome = "Yellow"
	OutcomeRed    Outcome = "Red"
	OutcomeNoFlag Outcome = "No Flag"
	OutcomeNA     Outcome = "N/A"
)

// Outcomes lists the lookup values in the order they appear on the lookup sheet.
var Outcomes = []Outcome{OutcomeBlank, OutcomeGreen, OutcomeYellow, OutcomeRed, OutcomeNoFlag, OutcomeNA}

// Condition is one of the approval-outcome column names.
type Condition string

const (
	ConditionApproved                Condition = "Approved"
	ConditionApprovedWithRestriction Condition = "Approved with Restriction"
	ConditionNotApproved             Condition = "Not Approved"
)

// Conditions is the fixed emission order for generic question rows.
var Conditions = []Condition{ConditionApproved, ConditionApprovedWithRestriction, ConditionNotApproved}

// Outcome maps a condition column to its expected outcome color.
func (c Condition) Outcome() Outcome {
	switch c {
	case ConditionApproved:
		return OutcomeGreen
	case ConditionApprovedWithRestriction:
		return OutcomeYellow
	case ConditionNotApproved:
		return OutcomeRed
	}
	return OutcomeBlank
}

// RowKind classifies a table row below the header.
type RowKind string

const (
	RowGreyEmpty       RowKind = "grey_empty"
	RowGateYes         RowKind = "gate_yes"
	RowGateNo          RowKind = "gate_no"
	RowYesNoQuestion   RowKind = "yes_no_question"
	RowGenericQuestion RowKind = "generic_question"
)

// PlanRow is one output spreadsheet data row (columns B, C, D).
// Grey rows and gate rows leave Response and Expected empty.
type PlanRow struct {
	Kind     RowKind `json:"kind"`
	Question string  `json:"question,omitempty"`
	Response string  `json:"response,omitempty"`
	Expected Outcome `json:"expected,omitempty"`
}

// HeaderInfo locates the Flag header and the condition columns of a table.
type HeaderInfo struct {
	// Row is the 0-based header row index.
	Row int `json:"row"`
	// FlagCol is the 0-based Flag column index.
	FlagCol int `json:"flag_col"`
	// Conditions maps condition names to 0-based column indices.
	Conditions map[Condition]int `json:"conditions"`
}

// Section is a group of slides that share one output sheet.
type Section struct {
	// Index is 1-based and increases once per detected marker.
	Index int `json:"index"`
	// Title is the full text that contained the marker phrase.
	Title string `json:"title,omitempty"`
	// SheetName is the final, unique sheet name.
	SheetName string `json:"sheet_name"`
	// FirstSlide is the 1-based slide where the section starts.
	FirstSlide int `json:"first_slide"`
	// Rows are the data rows in emission order, starting at sheet row 7.
	Rows []PlanRow `json:"rows"`
}
