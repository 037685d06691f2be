package filter

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/schema"
)

var workspaceID = uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

type fixture struct {
	schema    *schema.Schema
	engine    *Engine
	priority  domain.PropertyConfiguration
	component domain.PropertyConfiguration
	cases     []domain.TestCase
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	priority := domain.NewPropertyConfiguration(workspaceID, "Priority", domain.PropertyTypeSingleSelect, true).
		WithSelectOptions("Critical", "High", "Medium", "Low")
	component := domain.NewPropertyConfiguration(workspaceID, "Component", domain.PropertyTypeText, false)

	s, err := schema.New(workspaceID, priority, component)
	require.NoError(t, err)

	cases := []domain.TestCase{
		domain.NewTestCase(workspaceID, "Login bug", "Password reset loops", domain.PropertyValues{priority.ID: "Critical", component.ID: "auth-service"}),
		domain.NewTestCase(workspaceID, "Signup flow", "New account wizard", domain.PropertyValues{priority.ID: "Low", component.ID: "web"}),
		domain.NewTestCase(workspaceID, "Checkout", "Pay with saved card", domain.PropertyValues{priority.ID: "High"}),
		domain.NewTestCase(workspaceID, "Search", "Faceted search results", domain.PropertyValues{priority.ID: "Medium", component.ID: "XABCX"}),
	}

	return fixture{schema: s, engine: New(s), priority: priority, component: component, cases: cases}
}

func titles(cases []domain.TestCase) []string {
	out := make([]string, len(cases))
	for i, c := range cases {
		out[i] = c.Title
	}
	return out
}

func TestEvaluate_EmptyFilterSetReturnsInput(t *testing.T) {
	f := newFixture(t)

	got := Evaluate(f.engine, f.cases, domain.NewFilterSet())
	assert.Equal(t, f.cases, got)

	got = Evaluate(f.engine, f.cases, domain.FilterSet{})
	assert.Equal(t, f.cases, got, "nil criteria behave like an empty set")
}

func TestEvaluate_PriorityScenario(t *testing.T) {
	f := newFixture(t)
	cases := f.cases[:2]

	bySelect := domain.NewFilterSet().WithCriterion(f.priority.ID, domain.NewSelectCriterion("Critical"))
	assert.Equal(t, []string{"Login bug"}, titles(Evaluate(f.engine, cases, bySelect)))

	bySearch := domain.NewFilterSet().WithSearchQuery("signup")
	assert.Equal(t, []string{"Signup flow"}, titles(Evaluate(f.engine, cases, bySearch)))
}

func TestEvaluate_TextCriterionIsCaseInsensitiveSubstring(t *testing.T) {
	f := newFixture(t)

	set := domain.NewFilterSet().WithCriterion(f.component.ID, domain.TextCriterion{Value: "ABC"})
	assert.Equal(t, []string{"Search"}, titles(Evaluate(f.engine, f.cases, set)))

	set = domain.NewFilterSet().WithCriterion(f.component.ID, domain.TextCriterion{Value: ""})
	assert.Len(t, Evaluate(f.engine, f.cases, set), len(f.cases), "empty text criterion matches everything")

	set = domain.NewFilterSet().WithCriterion(f.component.ID, domain.TextCriterion{Value: "e"})
	assert.Equal(t, []string{"Login bug", "Signup flow"}, titles(Evaluate(f.engine, f.cases, set)),
		"unset values resolve to empty string and do not match a non-empty criterion")
}

func TestEvaluate_SelectCriterionIsMembership(t *testing.T) {
	f := newFixture(t)

	set := domain.NewFilterSet().WithCriterion(f.priority.ID, domain.NewSelectCriterion("High", "Low"))
	assert.Equal(t, []string{"Signup flow", "Checkout"}, titles(Evaluate(f.engine, f.cases, set)))

	set = domain.NewFilterSet().WithCriterion(f.priority.ID, domain.NewSelectCriterion())
	assert.Len(t, Evaluate(f.engine, f.cases, set), len(f.cases), "empty select criterion matches everything")
}

func TestEvaluate_CriteriaCombineWithAnd(t *testing.T) {
	f := newFixture(t)

	set := domain.NewFilterSet().
		WithCriterion(f.priority.ID, domain.NewSelectCriterion("Critical", "Low")).
		WithCriterion(f.component.ID, domain.TextCriterion{Value: "auth"})
	assert.Equal(t, []string{"Login bug"}, titles(Evaluate(f.engine, f.cases, set)))

	withSearch := set.WithSearchQuery("wizard")
	assert.Empty(t, Evaluate(f.engine, f.cases, withSearch), "search and criteria must both hold")
}

func TestEvaluate_SearchMatchesDescription(t *testing.T) {
	f := newFixture(t)

	set := domain.NewFilterSet().WithSearchQuery("SAVED CARD")
	assert.Equal(t, []string{"Checkout"}, titles(Evaluate(f.engine, f.cases, set)))
}

func TestEvaluate_UnknownPropertyReference(t *testing.T) {
	f := newFixture(t)
	stale := uuid.New()

	cases := []domain.TestCase{
		f.cases[0].WithPropertyValue(stale, "Critical"),
		f.cases[1],
	}

	set := domain.NewFilterSet().WithCriterion(stale, domain.NewSelectCriterion("Critical"))
	assert.Empty(t, Evaluate(f.engine, cases, set), "stale keys are excluded from matching")

	set = domain.NewFilterSet().WithCriterion(stale, domain.NewSelectCriterion())
	assert.Len(t, Evaluate(f.engine, cases, set), 2)

	set = domain.NewFilterSet().WithCriterion(stale, domain.TextCriterion{Value: ""})
	assert.Len(t, Evaluate(f.engine, cases, set), 2)

	set = domain.NewFilterSet().WithCriterion(stale, domain.TextCriterion{Value: "crit"})
	assert.Empty(t, Evaluate(f.engine, cases, set))
}

func TestEvaluate_IsOrderedSubsequenceAndIdempotent(t *testing.T) {
	f := newFixture(t)
	sets := []domain.FilterSet{
		domain.NewFilterSet(),
		domain.NewFilterSet().WithSearchQuery("s"),
		domain.NewFilterSet().WithCriterion(f.priority.ID, domain.NewSelectCriterion("Medium", "Critical")),
		domain.NewFilterSet().WithCriterion(f.component.ID, domain.TextCriterion{Value: "W"}).WithSearchQuery("flow"),
	}

	for _, set := range sets {
		once := Evaluate(f.engine, f.cases, set)
		twice := Evaluate(f.engine, once, set)
		assert.Equal(t, once, twice)

		next := 0
		for _, got := range once {
			for next < len(f.cases) && f.cases[next].ID != got.ID {
				next++
			}
			require.Less(t, next, len(f.cases), "result is not an ordered subsequence of the input")
			next++
		}
	}
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	f := newFixture(t)
	before := make([]domain.TestCase, len(f.cases))
	copy(before, f.cases)

	set := domain.NewFilterSet().WithCriterion(f.priority.ID, domain.NewSelectCriterion("Low"))
	_ = Evaluate(f.engine, f.cases, set)

	assert.Equal(t, before, f.cases)
}

func TestEvaluate_WorksForTestRuns(t *testing.T) {
	f := newFixture(t)
	runs := []domain.TestRun{
		domain.NewTestRun(workspaceID, "Nightly", "", domain.PropertyValues{f.priority.ID: "High"}, nil),
		domain.NewTestRun(workspaceID, "Release", "", domain.PropertyValues{f.priority.ID: "Low"}, nil),
	}

	set := domain.NewFilterSet().WithCriterion(f.priority.ID, domain.NewSelectCriterion("Low"))
	got := Evaluate(f.engine, runs, set)
	require.Len(t, got, 1)
	assert.Equal(t, "Release", got[0].Title)
}

func TestDefaultCriterion(t *testing.T) {
	f := newFixture(t)

	assert.IsType(t, domain.SelectCriterion{}, DefaultCriterion(f.priority))
	assert.IsType(t, domain.TextCriterion{}, DefaultCriterion(f.component))

	number := domain.NewPropertyConfiguration(workspaceID, "Estimate", domain.PropertyTypeNumber, false)
	assert.Equal(t, domain.TextCriterion{}, DefaultCriterion(number))
}

func TestFacets(t *testing.T) {
	f := newFixture(t)
	cases := append(f.cases, domain.NewTestCase(workspaceID, "Untriaged", "", nil))

	facets := Facets(f.schema, cases)
	require.Len(t, facets, 1)

	facet := facets[0]
	assert.Equal(t, f.priority.ID, facet.PropertyID)
	assert.Equal(t, []OptionCount{
		{Option: "Critical", Count: 1},
		{Option: "High", Count: 1},
		{Option: "Medium", Count: 1},
		{Option: "Low", Count: 1},
	}, facet.Options)
	assert.Equal(t, 1, facet.Unset)
}

func TestFacetsWithoutSelectPropertiesEncodeAsEmptyList(t *testing.T) {
	text := domain.NewPropertyConfiguration(workspaceID, "Owner", domain.PropertyTypeText, false)
	sch, err := schema.New(workspaceID, text)
	require.NoError(t, err)

	facets := Facets(sch, []domain.TestCase{domain.NewTestCase(workspaceID, "Login bug", "", nil)})
	encoded, err := json.Marshal(facets)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(encoded))
}
