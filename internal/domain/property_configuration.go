package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PropertyType represents the type of a workspace-defined property
type PropertyType string

const (
	PropertyTypeText   PropertyType = "TEXT"
	PropertyTypeNumber PropertyType = "NUMBER"
	// PropertyTypeSingleSelect restricts values to one of the configured
	// SelectOptions. It is the only type that carries options.
	PropertyTypeSingleSelect PropertyType = "SINGLE_SELECT_LIST"
)

// UnsetOptionLabel is the reserved label that stands for "no value" when an
// optional single select property is edited. It can never be a real option.
const UnsetOptionLabel = "Not set"

// IsValid reports whether t is one of the known property types.
func (t PropertyType) IsValid() bool {
	switch t {
	case PropertyTypeText, PropertyTypeNumber, PropertyTypeSingleSelect:
		return true
	default:
		return false
	}
}

// PropertyConfiguration describes one typed attribute in a workspace schema.
type PropertyConfiguration struct {
	ID            uuid.UUID    `json:"id"`
	WorkspaceID   uuid.UUID    `json:"workspaceId"`
	Title         string       `json:"title"`
	Type          PropertyType `json:"type"`
	IsRequired    bool         `json:"isRequired"`
	DefaultValue  *string      `json:"defaultValue,omitempty"`
	SelectOptions []string     `json:"selectOptions,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// NewPropertyConfiguration creates a new property configuration with immutable pattern.
// The result is not validated; callers go through the schema to enforce invariants.
func NewPropertyConfiguration(workspaceID uuid.UUID, title string, propertyType PropertyType, required bool) PropertyConfiguration {
	now := time.Now()
	return PropertyConfiguration{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Title:       title,
		Type:        propertyType,
		IsRequired:  required,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsSingleSelect reports whether the property restricts values to its options.
func (p PropertyConfiguration) IsSingleSelect() bool {
	return p.Type == PropertyTypeSingleSelect
}

// HasOption reports whether value is one of the configured select options.
func (p PropertyConfiguration) HasOption(value string) bool {
	for _, option := range p.SelectOptions {
		if option == value {
			return true
		}
	}
	return false
}

// Default returns the default value and whether one is configured.
func (p PropertyConfiguration) Default() (string, bool) {
	if p.DefaultValue == nil {
		return "", false
	}
	return *p.DefaultValue, true
}

// WithTitle returns a new configuration with an updated title
func (p PropertyConfiguration) WithTitle(title string) PropertyConfiguration {
	clone := p.clone()
	clone.Title = title
	clone.UpdatedAt = time.Now()
	return clone
}

// WithType returns a new configuration with an updated type. Options are kept
// as-is so that validation can report a mismatch instead of silently dropping them.
func (p PropertyConfiguration) WithType(propertyType PropertyType) PropertyConfiguration {
	clone := p.clone()
	clone.Type = propertyType
	clone.UpdatedAt = time.Now()
	return clone
}

// WithRequired returns a new configuration with an updated required flag
func (p PropertyConfiguration) WithRequired(required bool) PropertyConfiguration {
	clone := p.clone()
	clone.IsRequired = required
	clone.UpdatedAt = time.Now()
	return clone
}

// WithSelectOptions returns a new configuration with the given options
func (p PropertyConfiguration) WithSelectOptions(options ...string) PropertyConfiguration {
	clone := p.clone()
	clone.SelectOptions = copyStrings(options)
	clone.UpdatedAt = time.Now()
	return clone
}

// WithDefaultValue returns a new configuration with the given default value
func (p PropertyConfiguration) WithDefaultValue(value string) PropertyConfiguration {
	clone := p.clone()
	clone.DefaultValue = &value
	clone.UpdatedAt = time.Now()
	return clone
}

// WithoutDefaultValue returns a new configuration with no default value
func (p PropertyConfiguration) WithoutDefaultValue() PropertyConfiguration {
	clone := p.clone()
	clone.DefaultValue = nil
	clone.UpdatedAt = time.Now()
	return clone
}

func (p PropertyConfiguration) clone() PropertyConfiguration {
	clone := p
	clone.SelectOptions = copyStrings(p.SelectOptions)
	if p.DefaultValue != nil {
		value := *p.DefaultValue
		clone.DefaultValue = &value
	}
	return clone
}

func copyStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// SchemaError reports a property configuration that violates a schema invariant.
type SchemaError struct {
	PropertyID uuid.UUID
	Field      string
	Message    string
}

func (e *SchemaError) Error() string {
	if e.PropertyID == uuid.Nil {
		return fmt.Sprintf("schema error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("schema error: property %s: %s: %s", e.PropertyID, e.Field, e.Message)
}

// NewSchemaError builds a SchemaError for the given property and field.
func NewSchemaError(propertyID uuid.UUID, field, format string, args ...any) *SchemaError {
	return &SchemaError{
		PropertyID: propertyID,
		Field:      field,
		Message:    fmt.Sprintf(format, args...),
	}
}

// IsSchemaError reports whether err wraps a SchemaError.
func IsSchemaError(err error) bool {
	var target *SchemaError
	return errors.As(err, &target)
}
