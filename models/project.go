package models

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultCategory is stored when a project is created without a category.
const DefaultCategory = "web"

var (
	ErrNotFound     = errors.New("project not found")
	ErrNameRequired = errors.New("name is required")
	ErrEmptyPatch   = errors.New("at least one field (name/description/category) required")
)

type Project struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ValidationError marks input that was rejected before reaching storage.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ProjectInput is the payload of a create. Nil optional fields take their defaults.
type ProjectInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

func (in ProjectInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrNameRequired}
	}
	return nil
}

// Normalize returns the project that a create of in would store.
func (in ProjectInput) Normalize() Project {
	p := Project{Name: in.Name, Category: DefaultCategory}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	return p
}

// ProjectPatch carries the fields of an update. A nil field keeps its stored value.
type ProjectPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

func (p ProjectPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Category == nil
}

func (p ProjectPatch) Validate() error {
	if p.IsEmpty() {
		return &ValidationError{Err: ErrEmptyPatch}
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrNameRequired}
	}
	return nil
}

// Replacement builds the patch that overwrites every field of a project.
func Replacement(name, description, category string) ProjectPatch {
	return ProjectPatch{Name: &name, Description: &description, Category: &category}
}
