// Package nda holds the contract parameters collected by the form and the
// wire representation shared by the client and the reference backend.
package nda

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the format expected for EffectiveDate.
const DateLayout = "2006-01-02"

// FormInput carries the parameters of a single generation request.
type FormInput struct {
	PartyOne      string `json:"partyOne"`
	PartyTwo      string `json:"partyTwo"`
	EffectiveDate string `json:"effectiveDate"`
	Description   string `json:"description"`
	TermLength    int    `json:"termLength"`
}

// Field names used in validation errors and prompts.
const (
	FieldPartyOne      = "partyOne"
	FieldPartyTwo      = "partyTwo"
	FieldEffectiveDate = "effectiveDate"
	FieldDescription   = "description"
	FieldTermLength    = "termLength"
)

// FieldLabels maps wire names to the labels shown to users.
var FieldLabels = map[string]string{
	FieldPartyOne:      "Party One Name",
	FieldPartyTwo:      "Party Two Name",
	FieldEffectiveDate: "Effective Date",
	FieldDescription:   "Description of Confidential Information",
	FieldTermLength:    "Term Length (years)",
}

// FieldProblem describes one rejected field.
type FieldProblem struct {
	Field  string
	Reason string
}

// ValidationError lists every field that prevents submission.
type ValidationError struct {
	Problems []FieldProblem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, fmt.Sprintf("%s %s", FieldLabels[p.Field], p.Reason))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Has reports whether the given field was rejected.
func (e *ValidationError) Has(field string) bool {
	for _, p := range e.Problems {
		if p.Field == field {
			return true
		}
	}
	return false
}

// Validate checks that every field is present and well formed. It returns a
// *ValidationError, or nil.
func (f FormInput) Validate() error {
	var problems []FieldProblem
	required := []struct {
		field string
		value string
	}{
		{FieldPartyOne, f.PartyOne},
		{FieldPartyTwo, f.PartyTwo},
		{FieldEffectiveDate, f.EffectiveDate},
		{FieldDescription, f.Description},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			problems = append(problems, FieldProblem{Field: r.field, Reason: "is required"})
		}
	}
	if date := strings.TrimSpace(f.EffectiveDate); date != "" {
		if _, err := time.Parse(DateLayout, date); err != nil {
			problems = append(problems, FieldProblem{Field: FieldEffectiveDate, Reason: "must use YYYY-MM-DD"})
		}
	}
	if f.TermLength <= 0 {
		problems = append(problems, FieldProblem{Field: FieldTermLength, Reason: "must be a positive number of years"})
	}
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// ParseTermLength converts user text into a term length. Empty input yields 0
// so Validate can report it as missing.
func ParseTermLength(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("term length %q is not a whole number", raw)
	}
	return n, nil
}

// UnmarshalJSON accepts termLength as a JSON number or a numeric string.
func (f *FormInput) UnmarshalJSON(data []byte) error {
	var raw struct {
		PartyOne      string          `json:"partyOne"`
		PartyTwo      string          `json:"partyTwo"`
		EffectiveDate string          `json:"effectiveDate"`
		Description   string          `json:"description"`
		TermLength    json.RawMessage `json:"termLength"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	term, err := decodeTermLength(raw.TermLength)
	if err != nil {
		return err
	}
	*f = FormInput{
		PartyOne:      raw.PartyOne,
		PartyTwo:      raw.PartyTwo,
		EffectiveDate: raw.EffectiveDate,
		Description:   raw.Description,
		TermLength:    term,
	}
	return nil
}

func decodeTermLength(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return numberToTerm(n.String())
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("termLength: expected number or numeric string")
	}
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return numberToTerm(s)
}

func numberToTerm(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("termLength: %q is not a whole number", s)
	}
	return int(f), nil
}
