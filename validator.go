package rel

import (
	"strings"

	"github.com/gobuffalo/validate/v3"
)

// Validator is the pluggable capability a command consults before mutating
// its dataset. Validate returns nil when the tuple passes, or a
// validation-coded error describing the failure.
type Validator interface {
	Validate(t Tuple) error
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(t Tuple) error

func (f ValidatorFunc) Validate(t Tuple) error { return f(t) }

// Checks adapts gobuffalo validators to the Validator interface. The build
// function inspects the tuple and returns the validators to run against it;
// any resulting errors are folded into a single validation error whose
// payload maps each failing attribute to its messages.
type Checks struct {
	build func(t Tuple) []validate.Validator
}

var _ Validator = (*Checks)(nil)

// NewChecks returns a Checks validator around build.
func NewChecks(build func(t Tuple) []validate.Validator) *Checks {
	return &Checks{build: build}
}

func (c *Checks) Validate(t Tuple) error {
	verrs := validate.Validate(c.build(t)...)
	if !verrs.HasAny() {
		return nil
	}

	payload := make(map[string]interface{}, verrs.Count())
	for attr, msgs := range verrs.Errors {
		payload[attr] = strings.Join(msgs, "; ")
	}
	return NewErrValidation("tuple failed validation", payload)
}

// SchemaValidator validates that a tuple conforms to a schema: every present
// attribute must be declared and coercible to its type.
type SchemaValidator struct {
	schema *Schema
}

var _ Validator = (*SchemaValidator)(nil)

// NewSchemaValidator returns a validator enforcing conformance with s.
func NewSchemaValidator(s *Schema) *SchemaValidator {
	return &SchemaValidator{schema: s}
}

func (v *SchemaValidator) Validate(t Tuple) error {
	_, err := v.schema.Coerce(t)
	return err
}

// All combines validators; the first failure wins.
func All(vs ...Validator) Validator {
	return ValidatorFunc(func(t Tuple) error {
		for _, v := range vs {
			if err := v.Validate(t); err != nil {
				return err
			}
		}
		return nil
	})
}
