// Package classify finds compliance-matrix structure in a loaded deck:
// section starts, Flag header rows, condition columns and row kinds.
//
// Every literal the detection depends on lives in this file so that a new
// template variant only needs a different phrase set.
package classify

import (
	"strings"

	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/models"
)

// MarkerPhrase starts a new section when found in a slide title or text frame.
const MarkerPhrase = "this is the compliance matrix that has been applied to"

const (
	flagHeader = "flag"

	yesNotePhrase = "please note: the following factors only apply if you have answered yes"
	noNotePhrase  = "please note: the following factors only apply if you have answered no"

	answeredYesPhrase = "has answered yes"
	answeredNoPhrase  = "has answered no"
	unansweredPhrase  = "question unanswered"
)

// Gate labels are written verbatim into column B; downstream reviewers
// match on the exact text, typos included.
const (
	GateYesLabel = "If anwered Yes to above queestion"
	GateNoLabel  = "If anwered No to above queestion"
)

// YesNoResponses is the fixed response order for Yes/No questions.
var YesNoResponses = []string{"Unanswered", "No", "Yes"}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// containsMarker reports whether text contains the section marker phrase.
func containsMarker(text string) bool {
	return strings.Contains(strings.ToLower(text), MarkerPhrase)
}

// isFlagHeader reports whether a header cell names the Flag column.
func isFlagHeader(text string) bool {
	return fold(text) == flagHeader
}

// conditionHeader maps a header cell to its condition column name.
func conditionHeader(text string) (models.Condition, bool) {
	switch fold(text) {
	case "approved":
		return models.ConditionApproved, true
	case "approved with restriction":
		return models.ConditionApprovedWithRestriction, true
	case "not approved":
		return models.ConditionNotApproved, true
	}
	return "", false
}

// gateNote returns the gate row kind and label for a note phrase in text.
func gateNote(text string) (models.RowKind, string, bool) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, yesNotePhrase):
		return models.RowGateYes, GateYesLabel, true
	case strings.Contains(lower, noNotePhrase):
		return models.RowGateNo, GateNoLabel, true
	}
	return "", "", false
}

// isYesNoPattern reports whether the condition texts describe a Yes/No
// question rather than per-condition descriptions.
func isYesNoPattern(approved, notApproved string) bool {
	approved = strings.ToLower(approved)
	notApproved = strings.ToLower(notApproved)
	return strings.Contains(approved, answeredYesPhrase) &&
		strings.Contains(notApproved, answeredNoPhrase) &&
		strings.Contains(notApproved, unansweredPhrase)
}
