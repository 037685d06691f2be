package schema

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/testplan/internal/domain"
)

var workspaceID = uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

func priority() domain.PropertyConfiguration {
	return domain.NewPropertyConfiguration(workspaceID, "Priority", domain.PropertyTypeSingleSelect, true).
		WithSelectOptions("Critical", "High", "Medium", "Low")
}

func TestNewKeepsDeclarationOrder(t *testing.T) {
	p := priority()
	owner := domain.NewPropertyConfiguration(workspaceID, "Owner", domain.PropertyTypeText, false)
	estimate := domain.NewPropertyConfiguration(workspaceID, "Estimate", domain.PropertyTypeNumber, false)

	s, err := New(workspaceID, p, owner, estimate)
	require.NoError(t, err)

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{p.ID, owner.ID, estimate.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, workspaceID, s.WorkspaceID())

	got, ok := s.Get(owner.ID)
	require.True(t, ok)
	assert.Equal(t, "Owner", got.Title)
}

func TestAddRejectsSingleSelectWithoutOptions(t *testing.T) {
	s, err := New(workspaceID)
	require.NoError(t, err)

	cfg := domain.NewPropertyConfiguration(workspaceID, "Priority", domain.PropertyTypeSingleSelect, true).WithSelectOptions()
	err = s.Add(cfg)

	require.Error(t, err)
	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, 0, s.Len())
}

func TestAddRejectsDefaultOutsideOptions(t *testing.T) {
	s, err := New(workspaceID)
	require.NoError(t, err)

	err = s.Add(priority().WithDefaultValue("Blocker"))
	assert.True(t, domain.IsSchemaError(err))
}

func TestAddRejectsDuplicateIDAndTitle(t *testing.T) {
	p := priority()
	s, err := New(workspaceID, p)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Add(p), ErrDuplicateProperty)

	other := domain.NewPropertyConfiguration(workspaceID, "priority", domain.PropertyTypeText, false)
	assert.True(t, domain.IsSchemaError(s.Add(other)))
}

func TestUpdateKeepsPositionAndValidates(t *testing.T) {
	p := priority()
	owner := domain.NewPropertyConfiguration(workspaceID, "Owner", domain.PropertyTypeText, false)
	s, err := New(workspaceID, p, owner)
	require.NoError(t, err)

	require.NoError(t, s.Update(p.WithTitle("Severity").WithDefaultValue("Low")))
	all := s.All()
	assert.Equal(t, "Severity", all[0].Title)

	err = s.Update(p.WithSelectOptions())
	assert.True(t, domain.IsSchemaError(err))
	got, _ := s.Get(p.ID)
	assert.Equal(t, "Severity", got.Title, "failed update must not be applied")

	unknown := domain.NewPropertyConfiguration(workspaceID, "Area", domain.PropertyTypeText, false)
	assert.ErrorIs(t, s.Update(unknown), ErrUnknownProperty)
}

func TestRemoveReindexes(t *testing.T) {
	p := priority()
	owner := domain.NewPropertyConfiguration(workspaceID, "Owner", domain.PropertyTypeText, false)
	estimate := domain.NewPropertyConfiguration(workspaceID, "Estimate", domain.PropertyTypeNumber, false)
	s, err := New(workspaceID, p, owner, estimate)
	require.NoError(t, err)

	assert.True(t, s.Remove(owner.ID))
	assert.False(t, s.Remove(owner.ID))
	assert.False(t, s.Has(owner.ID))

	got, ok := s.Get(estimate.ID)
	require.True(t, ok)
	assert.Equal(t, "Estimate", got.Title)
	assert.Equal(t, 2, s.Len())
}

func TestFindByTitle(t *testing.T) {
	s, err := New(workspaceID, priority())
	require.NoError(t, err)

	got, ok := s.FindByTitle("  PRIORITY ")
	require.True(t, ok)
	assert.Equal(t, "Priority", got.Title)

	_, ok = s.FindByTitle("Owner")
	assert.False(t, ok)
}

func TestLoadSeed(t *testing.T) {
	seed := `
properties:
  - title: Priority
    type: SINGLE_SELECT_LIST
    isRequired: true
    defaultValue: Medium
    selectOptions: [Critical, High, Medium, Low]
  - title: Component
    type: TEXT
`
	configs, err := LoadSeed(strings.NewReader(seed), workspaceID)
	require.NoError(t, err)
	require.Len(t, configs, 2)

	assert.Equal(t, domain.PropertyTypeSingleSelect, configs[0].Type)
	def, ok := configs[0].Default()
	require.True(t, ok)
	assert.Equal(t, "Medium", def)
	assert.Equal(t, workspaceID, configs[1].WorkspaceID)
	assert.NotEqual(t, configs[0].ID, configs[1].ID)
}

func TestLoadSeedRejectsInvalidProperty(t *testing.T) {
	seed := `
properties:
  - title: Priority
    type: SINGLE_SELECT_LIST
    selectOptions: []
`
	_, err := LoadSeed(strings.NewReader(seed), workspaceID)
	assert.True(t, domain.IsSchemaError(err))

	_, err = LoadSeed(strings.NewReader("properties:\n  - title: X\n    kind: TEXT\n"), workspaceID)
	assert.Error(t, err, "unknown keys are rejected")
}
