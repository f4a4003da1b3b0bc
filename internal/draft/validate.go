package draft

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Validation failure reasons.
const (
	ReasonRequired    = "is required"
	ReasonNotNumber   = "must be a number"
	ReasonBelowMin    = "is below the minimum"
	ReasonAboveMax    = "is above the maximum"
	ReasonNotDate     = "must be a date (YYYY-MM-DD)"
	ReasonNotChoice   = "is not an allowed value"
	ReasonTooLong     = "is too long"
	ReasonUnchecked   = "must be checked"
	ReasonDateOrder   = "must be later than the launch date"
	ReasonUnknownStep = "does not exist"
)

// decimalPattern is the number grammar a browser number input accepts: no
// sign prefix other than minus, no digit separators, no hex, NaN or Inf.
var decimalPattern = regexp.MustCompile(`^-?(\d+|\d*\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber parses a decimal number as typed into a number input.
func ParseNumber(s string) (float64, error) {
	if !decimalPattern.MatchString(s) {
		return 0, fmt.Errorf("%q is not a decimal number", s)
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%q is out of range", s)
	}
	return n, nil
}

// ValidationError describes the first invalid field of a step.
type ValidationError struct {
	Step   int
	Field  string
	Label  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Label, e.Reason)
}

// ValidateStep checks the fields of step n in document order and stops at the
// first failure. The launch/end date order is checked on every step.
func (m *Manager) ValidateStep(n int) error {
	if n < 1 || n > len(m.sections) {
		return &ValidationError{Step: n, Field: "", Label: fmt.Sprintf("Step %d", n), Reason: ReasonUnknownStep}
	}
	sec := m.sections[n-1]

	for _, f := range sec.Fields {
		if reason := m.checkField(f); reason != "" {
			return &ValidationError{Step: n, Field: f.Name, Label: f.Label, Reason: reason}
		}
	}

	if sec.Milestones {
		for _, ms := range m.milestones {
			if ms.Target == "" {
				continue
			}
			amount, err := ms.TargetAmount()
			label := fmt.Sprintf("Milestone %d Funding Goal", ms.Label)
			if err != nil {
				return &ValidationError{Step: n, Field: ms.TargetField(), Label: label, Reason: ReasonNotNumber}
			}
			if amount < *milestoneTargetMin {
				return &ValidationError{Step: n, Field: ms.TargetField(), Label: label, Reason: ReasonBelowMin}
			}
		}
	}

	if err := m.checkDateOrder(); err != nil {
		err.Step = n
		return err
	}
	return nil
}

// ValidateAll validates every step, returning the first failure.
func (m *Manager) ValidateAll() error {
	for n := 1; n <= len(m.sections); n++ {
		if err := m.ValidateStep(n); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) checkField(f Field) string {
	if f.Kind == KindFiles {
		if f.Required && m.files[f.Category].Len() == 0 {
			return ReasonRequired
		}
		return ""
	}
	if f.Kind == KindCheckbox {
		if f.Required && !m.Checked(f.Name) {
			return ReasonUnchecked
		}
		return ""
	}

	value := strings.TrimSpace(m.values[f.Name])
	if value == "" {
		if f.Required {
			return ReasonRequired
		}
		return ""
	}

	switch f.Kind {
	case KindNumber:
		n, err := ParseNumber(value)
		if err != nil {
			return ReasonNotNumber
		}
		if f.Min != nil && n < *f.Min {
			return ReasonBelowMin
		}
		if f.Max != nil && n > *f.Max {
			return ReasonAboveMax
		}
	case KindDate:
		if _, err := time.Parse(DateLayout, value); err != nil {
			return ReasonNotDate
		}
	case KindChoice:
		found := false
		for _, c := range f.Choices {
			if c == value {
				found = true
				break
			}
		}
		if !found {
			return ReasonNotChoice
		}
	}

	if f.MaxLen > 0 && utf8.RuneCountInString(value) > f.MaxLen {
		return ReasonTooLong
	}
	return ""
}

// checkDateOrder requires the end date to be strictly after the launch date
// when both are present and parse.
func (m *Manager) checkDateOrder() *ValidationError {
	launch, err := time.Parse(DateLayout, strings.TrimSpace(m.values[FieldLaunchDate]))
	if err != nil {
		return nil
	}
	end, err := time.Parse(DateLayout, strings.TrimSpace(m.values[FieldEndTime]))
	if err != nil {
		return nil
	}
	if !end.After(launch) {
		return &ValidationError{Field: FieldEndTime, Label: m.labelOf(FieldEndTime), Reason: ReasonDateOrder}
	}
	return nil
}

func (m *Manager) labelOf(name string) string {
	for _, sec := range m.sections {
		for _, f := range sec.Fields {
			if f.Name == name {
				return f.Label
			}
		}
	}
	return name
}
