package rel

import (
	"fmt"

	"github.com/featurebasedb/rel/errors"
)

const (
	// ErrValidation indicates an input tuple failed a command's validator.
	// No mutation occurred.
	ErrValidation errors.Code = "Validation"

	// ErrCardinality indicates a command's execution yielded a tuple count
	// inconsistent with its declared result cardinality.
	ErrCardinality errors.Code = "Cardinality"

	// ErrMapping indicates a mapper's required attribute was absent from its
	// input tuple.
	ErrMapping errors.Code = "Mapping"

	// ErrConfiguration indicates an invalid definition (unknown cardinality,
	// bad step arrangement, missing schema, and so on). Configuration errors
	// are raised at definition time, never deferred to invocation.
	ErrConfiguration errors.Code = "Configuration"

	ErrRelationExists       errors.Code = "RelationExists"
	ErrRelationDoesNotExist errors.Code = "RelationDoesNotExist"
	ErrCommandExists        errors.Code = "CommandExists"
	ErrCommandDoesNotExist  errors.Code = "CommandDoesNotExist"
	ErrMapperExists         errors.Code = "MapperExists"
	ErrMapperDoesNotExist   errors.Code = "MapperDoesNotExist"

	// ErrTupleExists indicates an insert collided with an existing tuple's
	// primary key.
	ErrTupleExists errors.Code = "TupleExists"
)

// The following are helper functions for constructing coded errors containing
// relevant information about the specific error.

func NewErrValidation(message string, payload map[string]interface{}) error {
	return errors.NewWithPayload(
		ErrValidation,
		message,
		payload,
	)
}

func NewErrCardinality(card Cardinality, n int) error {
	return errors.New(
		ErrCardinality,
		fmt.Sprintf("expected result cardinality '%s' but execution yielded %d tuples", card, n),
	)
}

func NewErrMapping(mapper string, attr string) error {
	return errors.New(
		ErrMapping,
		fmt.Sprintf("mapper '%s' requires attribute '%s' which is absent from its input tuple", mapper, attr),
	)
}

func NewErrConfiguration(format string, args ...interface{}) error {
	return errors.New(
		ErrConfiguration,
		fmt.Sprintf(format, args...),
	)
}

func NewErrRelationExists(name string) error {
	return errors.New(
		ErrRelationExists,
		fmt.Sprintf("relation '%s' already exists", name),
	)
}

func NewErrRelationDoesNotExist(name string) error {
	return errors.New(
		ErrRelationDoesNotExist,
		fmt.Sprintf("relation '%s' does not exist", name),
	)
}

func NewErrCommandExists(name string) error {
	return errors.New(
		ErrCommandExists,
		fmt.Sprintf("command '%s' already exists", name),
	)
}

func NewErrCommandDoesNotExist(name string) error {
	return errors.New(
		ErrCommandDoesNotExist,
		fmt.Sprintf("command '%s' does not exist", name),
	)
}

func NewErrMapperExists(name string) error {
	return errors.New(
		ErrMapperExists,
		fmt.Sprintf("mapper '%s' already exists", name),
	)
}

func NewErrMapperDoesNotExist(name string) error {
	return errors.New(
		ErrMapperDoesNotExist,
		fmt.Sprintf("mapper '%s' does not exist", name),
	)
}

func NewErrTupleExists(key string) error {
	return errors.New(
		ErrTupleExists,
		fmt.Sprintf("a tuple with primary key '%s' already exists", key),
	)
}
