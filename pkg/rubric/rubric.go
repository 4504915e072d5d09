package rubric

import (
	"encoding/json"
	"fmt"
)

// Type selects the grading strategy attached to a problem.
type Type string

const (
	// TypeNumeric grades against a numeric target inside a tolerance band.
	TypeNumeric Type = "numeric_match"
	// TypeOneOf grades against a finite set of acceptable strings.
	TypeOneOf Type = "one_of_match"
	// TypeText defers correctness entirely to the vision model's reading of
	// free-text criteria.
	TypeText Type = "text_criteria"
)

// KnownType reports whether t is one of the supported grading strategies.
func KnownType(t Type) bool {
	return t == TypeNumeric || t == TypeOneOf || t == TypeText
}

// NumericSpec is the expected answer carried by numeric rubrics.
type NumericSpec struct {
	Value     float64 `json:"value"`
	Tolerance float64 `json:"tolerance"`
}

// PartialCreditRule pairs a human-readable condition with a score in [0,1].
// Rules are advisory text forwarded to the grader model; they are never
// evaluated programmatically.
type PartialCreditRule struct {
	Condition string  `json:"condition"`
	Score     float64 `json:"score"`
}

// Rubric is a teacher-authored grading specification. Exactly one variant
// payload is populated, matching Type: Numeric for numeric_match, OneOf for
// one_of_match, neither for text_criteria.
type Rubric struct {
	Type          Type
	Numeric       *NumericSpec
	OneOf         []string
	Instructions  string
	PartialCredit []PartialCreditRule
}

// wireRubric is the persisted and model-facing JSON shape.
type wireRubric struct {
	Type               string              `json:"type"`
	Expected           *NumericSpec        `json:"expected,omitempty"`
	AcceptableStrings  []string            `json:"acceptable_strings,omitempty"`
	Instructions       string              `json:"instructions"`
	PartialCreditRules []PartialCreditRule `json:"partial_credit_rules"`
}

// MarshalJSON serializes the rubric into its wire shape.
func (r Rubric) MarshalJSON() ([]byte, error) {
	wire := wireRubric{
		Type:               string(r.Type),
		Expected:           r.Numeric,
		AcceptableStrings:  r.OneOf,
		Instructions:       r.Instructions,
		PartialCreditRules: r.PartialCredit,
	}
	if wire.PartialCreditRules == nil {
		wire.PartialCreditRules = []PartialCreditRule{}
	}

	return json.Marshal(wire)
}

// UnmarshalJSON decodes the wire shape. It does not validate; use Parse for
// untrusted input.
func (r *Rubric) UnmarshalJSON(data []byte) error {
	var wire wireRubric
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	r.Type = Type(wire.Type)
	r.Numeric = wire.Expected
	r.OneOf = wire.AcceptableStrings
	r.Instructions = wire.Instructions
	r.PartialCredit = wire.PartialCreditRules

	return nil
}

// Validate enforces the structural invariants the JSON schema cannot express:
// the variant payload must match the type tag, and exactly one variant may be
// populated.
func (r Rubric) Validate() error {
	switch r.Type {
	case TypeNumeric:
		if r.Numeric == nil {
			return fmt.Errorf("%w: numeric_match requires an expected value", ErrSchemaViolation)
		}
		if r.OneOf != nil {
			return fmt.Errorf("%w: numeric_match must not carry acceptable strings", ErrSchemaViolation)
		}
		if r.Numeric.Tolerance < 0 {
			return fmt.Errorf("%w: tolerance must be non-negative", ErrSchemaViolation)
		}
	case TypeOneOf:
		if len(r.OneOf) == 0 {
			return fmt.Errorf("%w: one_of_match requires at least one acceptable string", ErrSchemaViolation)
		}
		if r.Numeric != nil {
			return fmt.Errorf("%w: one_of_match must not carry an expected value", ErrSchemaViolation)
		}
	case TypeText:
		if r.Numeric != nil || r.OneOf != nil {
			return fmt.Errorf("%w: text_criteria carries no structured expected answer", ErrSchemaViolation)
		}
	default:
		return fmt.Errorf("%w: unknown rubric type %q", ErrSchemaViolation, r.Type)
	}

	for _, rule := range r.PartialCredit {
		if rule.Score < 0 || rule.Score > 1 {
			return fmt.Errorf("%w: partial credit score %v outside [0,1]", ErrSchemaViolation, rule.Score)
		}
	}

	return nil
}

// Parse validates raw rubric JSON against the closed schema and decodes it.
// Any rubric accepted into persistence must pass through here.
func Parse(data []byte) (Rubric, error) {
	if err := ValidateJSON(data); err != nil {
		return Rubric{}, err
	}

	var r Rubric
	if err := json.Unmarshal(data, &r); err != nil {
		return Rubric{}, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	if err := r.Validate(); err != nil {
		return Rubric{}, err
	}

	return r, nil
}
