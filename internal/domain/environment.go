package domain

import "errors"

// NoEnvironment is the sentinel ID returned when an environment name does not
// resolve. It is never assigned to a stored environment.
const NoEnvironment int64 = 0

// DefaultGroup is the distinguished "no override" group.
const DefaultGroup = ""

var ErrEmptyEnvironmentName = errors.New("environment name cannot be empty")

// Environment is one deployment target (dev, test, prod, ...). The set of
// environments is closed; unknown names are rejected, never created.
type Environment struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Valid reports whether the environment carries a usable ID.
func (e Environment) Valid() bool {
	return e.ID != NoEnvironment
}

// Validate checks that the environment has a name.
func (e *Environment) Validate() error {
	if e.Name == "" {
		return ErrEmptyEnvironmentName
	}
	return nil
}
