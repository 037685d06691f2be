package domain

import (
	"time"

	"github.com/google/uuid"
)

// Filterable is implemented by records the filter engine can evaluate.
type Filterable interface {
	GetTitle() string
	GetDescription() string
	Values() PropertyValues
}

// Identifiable is implemented by records that can be selected by id.
type Identifiable interface {
	GetID() uuid.UUID
}

// TestCase represents a test case annotated with workspace property values
type TestCase struct {
	ID             uuid.UUID      `json:"id"`
	WorkspaceID    uuid.UUID      `json:"workspaceId"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	PropertyValues PropertyValues `json:"propertyValues"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// NewTestCase creates a new test case with immutable pattern
func NewTestCase(workspaceID uuid.UUID, title, description string, values PropertyValues) TestCase {
	now := time.Now()
	return TestCase{
		ID:             uuid.New(),
		WorkspaceID:    workspaceID,
		Title:          title,
		Description:    description,
		PropertyValues: values.Clone(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (tc TestCase) GetID() uuid.UUID { return tc.ID }
func (tc TestCase) GetTitle() string { return tc.Title }
func (tc TestCase) GetDescription() string { return tc.Description }
func (tc TestCase) Values() PropertyValues { return tc.PropertyValues }

// WithPropertyValue returns a new test case with the property set. Blank values unset it.
func (tc TestCase) WithPropertyValue(propertyID uuid.UUID, value string) TestCase {
	values := tc.PropertyValues.Clone()
	values.Set(propertyID, value)
	return tc.withValues(values)
}

// WithoutPropertyValue returns a new test case with the property unset
func (tc TestCase) WithoutPropertyValue(propertyID uuid.UUID) TestCase {
	values := tc.PropertyValues.Clone()
	values.Unset(propertyID)
	return tc.withValues(values)
}

// WithPropertyValues returns a new test case with replaced property values
func (tc TestCase) WithPropertyValues(values PropertyValues) TestCase {
	return tc.withValues(values.Clone())
}

// WithTitle returns a new test case with an updated title
func (tc TestCase) WithTitle(title string) TestCase {
	return TestCase{
		ID:             tc.ID,
		WorkspaceID:    tc.WorkspaceID,
		Title:          title,
		Description:    tc.Description,
		PropertyValues: tc.PropertyValues.Clone(),
		CreatedAt:      tc.CreatedAt,
		UpdatedAt:      time.Now(),
	}
}

// WithDescription returns a new test case with an updated description
func (tc TestCase) WithDescription(description string) TestCase {
	return TestCase{
		ID:             tc.ID,
		WorkspaceID:    tc.WorkspaceID,
		Title:          tc.Title,
		Description:    description,
		PropertyValues: tc.PropertyValues.Clone(),
		CreatedAt:      tc.CreatedAt,
		UpdatedAt:      time.Now(),
	}
}

func (tc TestCase) withValues(values PropertyValues) TestCase {
	return TestCase{
		ID:             tc.ID,
		WorkspaceID:    tc.WorkspaceID,
		Title:          tc.Title,
		Description:    tc.Description,
		PropertyValues: values,
		CreatedAt:      tc.CreatedAt,
		UpdatedAt:      time.Now(),
	}
}
