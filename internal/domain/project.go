package domain

import "errors"

// Project-specific validation errors
var (
	ErrEmptyProjectName = errors.New("project name cannot be empty")
)

// Project owns zero or more configs. Projects are administered outside the
// registry's call surface and are referenced by ID.
type Project struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Validate checks that the project has a name.
func (p *Project) Validate() error {
	if p.Name == "" {
		return ErrEmptyProjectName
	}
	return nil
}
