package domain

import (
	"time"

	"github.com/google/uuid"
)

// TestRun groups selected test cases for execution. It carries its own
// property values against the same workspace schema.
type TestRun struct {
	ID             uuid.UUID      `json:"id"`
	WorkspaceID    uuid.UUID      `json:"workspaceId"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	PropertyValues PropertyValues `json:"propertyValues"`
	TestCaseIDs    []uuid.UUID    `json:"testCaseIds"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// NewTestRun creates a new test run with immutable pattern
func NewTestRun(workspaceID uuid.UUID, title, description string, values PropertyValues, testCaseIDs []uuid.UUID) TestRun {
	now := time.Now()
	return TestRun{
		ID:             uuid.New(),
		WorkspaceID:    workspaceID,
		Title:          title,
		Description:    description,
		PropertyValues: values.Clone(),
		TestCaseIDs:    copyIDs(testCaseIDs),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (tr TestRun) GetID() uuid.UUID { return tr.ID }
func (tr TestRun) GetTitle() string { return tr.Title }
func (tr TestRun) GetDescription() string { return tr.Description }
func (tr TestRun) Values() PropertyValues { return tr.PropertyValues }

// WithTestCases returns a new test run with the given test case ids
func (tr TestRun) WithTestCases(ids []uuid.UUID) TestRun {
	return TestRun{
		ID:             tr.ID,
		WorkspaceID:    tr.WorkspaceID,
		Title:          tr.Title,
		Description:    tr.Description,
		PropertyValues: tr.PropertyValues.Clone(),
		TestCaseIDs:    copyIDs(ids),
		CreatedAt:      tr.CreatedAt,
		UpdatedAt:      time.Now(),
	}
}

// WithPropertyValue returns a new test run with the property set. Blank values unset it.
func (tr TestRun) WithPropertyValue(propertyID uuid.UUID, value string) TestRun {
	values := tr.PropertyValues.Clone()
	values.Set(propertyID, value)
	return TestRun{
		ID:             tr.ID,
		WorkspaceID:    tr.WorkspaceID,
		Title:          tr.Title,
		Description:    tr.Description,
		PropertyValues: values,
		TestCaseIDs:    copyIDs(tr.TestCaseIDs),
		CreatedAt:      tr.CreatedAt,
		UpdatedAt:      time.Now(),
	}
}

func copyIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return nil
	}
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out
}
