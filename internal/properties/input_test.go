package properties

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/schema"
)

var workspaceID = uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

func selectProperty(required bool) domain.PropertyConfiguration {
	return domain.NewPropertyConfiguration(workspaceID, "Priority", domain.PropertyTypeSingleSelect, required).
		WithSelectOptions("Critical", "High", "Medium", "Low")
}

func TestResolveInputDomain_RequiredSelect(t *testing.T) {
	in, err := ResolveInputDomain(selectProperty(true), "High")
	require.NoError(t, err)

	assert.Equal(t, "Select Priority", in.Placeholder)
	assert.Equal(t, []string{"Critical", "High", "Medium", "Low"}, in.Options)
	assert.True(t, in.Constrained)
	assert.Equal(t, "High", in.Selected)
}

func TestResolveInputDomain_OptionalSelectOffersSentinel(t *testing.T) {
	in, err := ResolveInputDomain(selectProperty(false), "")
	require.NoError(t, err)

	assert.Equal(t, "Select Priority (optional)", in.Placeholder)
	assert.Equal(t, []string{UnsetLabel, "Critical", "High", "Medium", "Low"}, in.Options)
	assert.Equal(t, UnsetLabel, in.Selected)
}

func TestResolveInputDomain_TextAndNumberAreUnconstrained(t *testing.T) {
	text := domain.NewPropertyConfiguration(workspaceID, "Owner", domain.PropertyTypeText, true)
	in, err := ResolveInputDomain(text, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Enter Owner", in.Placeholder)
	assert.Nil(t, in.Options)
	assert.False(t, in.Constrained)
	assert.Equal(t, "alice", in.Selected)

	number := domain.NewPropertyConfiguration(workspaceID, "Estimate", domain.PropertyTypeNumber, false)
	in, err = ResolveInputDomain(number, "")
	require.NoError(t, err)
	assert.Equal(t, "Enter Estimate (optional)", in.Placeholder)
}

func TestResolveInputDomain_SelectWithoutOptionsIsConfigurationError(t *testing.T) {
	cfg := domain.NewPropertyConfiguration(workspaceID, "Priority", domain.PropertyTypeSingleSelect, true)
	_, err := ResolveInputDomain(cfg, "")
	assert.True(t, domain.IsSchemaError(err))
}

func TestResolveInputDomain_ReservedOptionIsConfigurationError(t *testing.T) {
	cfg := domain.NewPropertyConfiguration(workspaceID, "Status", domain.PropertyTypeSingleSelect, false).
		WithSelectOptions(UnsetLabel, "Done")

	_, err := ResolveInputDomain(cfg, "")
	assert.True(t, domain.IsSchemaError(err))

	values := domain.PropertyValues{}
	err = ApplyInput(values, cfg, UnsetLabel)
	assert.True(t, domain.IsSchemaError(err))
	_, set := values.Get(cfg.ID)
	assert.False(t, set)

	_, err = schema.New(workspaceID, cfg)
	assert.True(t, domain.IsSchemaError(err), "the schema refuses the reserved option")
}

func TestApplyInput(t *testing.T) {
	optional := selectProperty(false)
	required := selectProperty(true)
	values := domain.PropertyValues{}

	require.NoError(t, ApplyInput(values, optional, "High"))
	assert.Equal(t, "High", values.Resolve(optional.ID))

	require.NoError(t, ApplyInput(values, optional, UnsetLabel))
	_, set := values.Get(optional.ID)
	assert.False(t, set, "sentinel must unset the value")

	err := ApplyInput(values, required, UnsetLabel)
	assert.ErrorIs(t, err, ErrValueOutsideDomain, "required properties do not offer the sentinel")

	err = ApplyInput(values, required, "Blocker")
	assert.ErrorIs(t, err, ErrValueOutsideDomain)

	number := domain.NewPropertyConfiguration(workspaceID, "Estimate", domain.PropertyTypeNumber, false)
	require.NoError(t, ApplyInput(values, number, "not-a-number"))
	assert.Equal(t, "not-a-number", values.Resolve(number.ID), "numbers are stored as opaque strings")

	require.NoError(t, ApplyInput(values, number, "  "))
	_, set = values.Get(number.ID)
	assert.False(t, set)
}

func TestDescribeListsSchemaThenOrphans(t *testing.T) {
	p := selectProperty(true)
	owner := domain.NewPropertyConfiguration(workspaceID, "Owner", domain.PropertyTypeText, false)
	s, err := schema.New(workspaceID, p, owner)
	require.NoError(t, err)

	stale := uuid.MustParse("ffffffff-0000-0000-0000-000000000000")
	values := domain.PropertyValues{p.ID: "Low", stale: "legacy"}

	views := Describe(s, values)
	require.Len(t, views, 3)
	assert.Equal(t, ValueView{PropertyID: p.ID, Title: "Priority", Value: "Low", Known: true}, views[0])
	assert.Equal(t, ValueView{PropertyID: owner.ID, Title: "Owner", Value: "", Known: true}, views[1])
	assert.Equal(t, ValueView{PropertyID: stale, Title: UnknownPropertyLabel, Value: "legacy"}, views[2])
}
