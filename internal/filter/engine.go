// Package filter evaluates filter sets over test cases and test runs.
//
// Evaluation is pure: inputs are never mutated and the result preserves the
// order of the source collection.
package filter

import (
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/schema"
)

// Engine evaluates filter sets against a workspace schema.
type Engine struct {
	schema *schema.Schema
}

// New returns an engine bound to s. Criteria on properties missing from s are
// evaluated against an absent value.
func New(s *schema.Schema) *Engine {
	return &Engine{schema: s}
}

// Evaluate returns the entities matching set, in their original order.
func Evaluate[E domain.Filterable](e *Engine, entities []E, set domain.FilterSet) []E {
	matcher := e.Compile(set)
	return lo.Filter(entities, func(entity E, _ int) bool {
		return matcher.Match(entity)
	})
}

// Matcher is a compiled filter set.
type Matcher struct {
	predicates []predicate
	search     string
}

type predicate func(values domain.PropertyValues) bool

// Compile turns set into a Matcher. Lower-casing of criterion values and
// schema lookups happen once here instead of per entity.
func (e *Engine) Compile(set domain.FilterSet) Matcher {
	m := Matcher{search: strings.ToLower(set.SearchQuery)}
	for propertyID, criterion := range set.Criteria {
		if p := e.predicateFor(propertyID, criterion); p != nil {
			m.predicates = append(m.predicates, p)
		}
	}
	return m
}

// Match reports whether entity passes every criterion and the search query.
func (m Matcher) Match(entity domain.Filterable) bool {
	values := entity.Values()
	for _, p := range m.predicates {
		if !p(values) {
			return false
		}
	}
	return m.matchesSearch(entity)
}

func (m Matcher) matchesSearch(entity domain.Filterable) bool {
	if m.search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(entity.GetTitle()), m.search) ||
		strings.Contains(strings.ToLower(entity.GetDescription()), m.search)
}

// predicateFor returns nil for criteria that match everything.
func (e *Engine) predicateFor(propertyID uuid.UUID, criterion domain.FilterCriterion) predicate {
	known := e.schema != nil && e.schema.Has(propertyID)
	resolve := func(values domain.PropertyValues) string {
		if !known {
			return ""
		}
		return values.Resolve(propertyID)
	}

	switch c := criterion.(type) {
	case domain.TextCriterion:
		if c.Value == "" {
			return nil
		}
		needle := strings.ToLower(c.Value)
		return func(values domain.PropertyValues) bool {
			return strings.Contains(strings.ToLower(resolve(values)), needle)
		}
	case domain.SelectCriterion:
		if len(c.Values) == 0 {
			return nil
		}
		return func(values domain.PropertyValues) bool {
			return c.Contains(resolve(values))
		}
	default:
		return func(domain.PropertyValues) bool { return false }
	}
}

// DefaultCriterion returns the inactive criterion matching the property type:
// a select criterion for single select properties, a text criterion otherwise.
func DefaultCriterion(cfg domain.PropertyConfiguration) domain.FilterCriterion {
	switch cfg.Type {
	case domain.PropertyTypeSingleSelect:
		return domain.NewSelectCriterion()
	default:
		return domain.TextCriterion{}
	}
}
