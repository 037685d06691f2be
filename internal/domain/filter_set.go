package domain

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// FilterCriterion is one active constraint on one property. The set of
// implementations is closed: TextCriterion and SelectCriterion.
type FilterCriterion interface {
	isFilterCriterion()
}

// TextCriterion matches values containing Value, ignoring case. An empty
// Value matches everything.
type TextCriterion struct {
	Value string
}

// SelectCriterion matches values that are members of Values. An empty set
// matches everything.
type SelectCriterion struct {
	Values map[string]struct{}
}

func (TextCriterion) isFilterCriterion()   {}
func (SelectCriterion) isFilterCriterion() {}

// NewSelectCriterion builds a SelectCriterion from the given option values.
func NewSelectCriterion(values ...string) SelectCriterion {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return SelectCriterion{Values: set}
}

// Contains reports whether value is one of the selected options.
func (c SelectCriterion) Contains(value string) bool {
	_, ok := c.Values[value]
	return ok
}

// Sorted returns the selected options in lexical order.
func (c SelectCriterion) Sorted() []string {
	out := make([]string, 0, len(c.Values))
	for value := range c.Values {
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

// FilterSet holds at most one criterion per property plus a global search query
// matched against title and description.
type FilterSet struct {
	Criteria    map[uuid.UUID]FilterCriterion
	SearchQuery string
}

// NewFilterSet returns an empty filter set.
func NewFilterSet() FilterSet {
	return FilterSet{Criteria: map[uuid.UUID]FilterCriterion{}}
}

// IsEmpty reports whether the set imposes no constraint at all.
func (fs FilterSet) IsEmpty() bool {
	return len(fs.Criteria) == 0 && fs.SearchQuery == ""
}

// WithCriterion returns a new filter set where criterion replaces any existing
// criterion for the property.
func (fs FilterSet) WithCriterion(propertyID uuid.UUID, criterion FilterCriterion) FilterSet {
	criteria := fs.copyCriteria()
	criteria[propertyID] = criterion
	return FilterSet{Criteria: criteria, SearchQuery: fs.SearchQuery}
}

// WithoutCriterion returns a new filter set with the property's criterion removed
func (fs FilterSet) WithoutCriterion(propertyID uuid.UUID) FilterSet {
	criteria := fs.copyCriteria()
	delete(criteria, propertyID)
	return FilterSet{Criteria: criteria, SearchQuery: fs.SearchQuery}
}

// WithSearchQuery returns a new filter set with an updated search query
func (fs FilterSet) WithSearchQuery(query string) FilterSet {
	return FilterSet{Criteria: fs.copyCriteria(), SearchQuery: query}
}

func (fs FilterSet) copyCriteria() map[uuid.UUID]FilterCriterion {
	criteria := make(map[uuid.UUID]FilterCriterion, len(fs.Criteria)+1)
	for id, criterion := range fs.Criteria {
		criteria[id] = criterion
	}
	return criteria
}

type criterionJSON struct {
	PropertyID uuid.UUID `json:"propertyId"`
	Text       *string   `json:"text,omitempty"`
	Values     []string  `json:"values,omitempty"`
}

type filterSetJSON struct {
	Criteria    []criterionJSON `json:"criteria"`
	SearchQuery string          `json:"searchQuery"`
}

// MarshalJSON encodes criteria as a list sorted by property id.
func (fs FilterSet) MarshalJSON() ([]byte, error) {
	payload := filterSetJSON{Criteria: []criterionJSON{}, SearchQuery: fs.SearchQuery}
	for id, criterion := range fs.Criteria {
		entry := criterionJSON{PropertyID: id}
		switch c := criterion.(type) {
		case TextCriterion:
			value := c.Value
			entry.Text = &value
		case SelectCriterion:
			entry.Values = c.Sorted()
		default:
			return nil, fmt.Errorf("unsupported filter criterion %T", criterion)
		}
		payload.Criteria = append(payload.Criteria, entry)
	}
	sort.Slice(payload.Criteria, func(i, j int) bool {
		return payload.Criteria[i].PropertyID.String() < payload.Criteria[j].PropertyID.String()
	})
	return json.Marshal(payload)
}

// UnmarshalJSON decodes the list form produced by MarshalJSON. An entry with
// "text" is a text criterion, otherwise a select criterion.
func (fs *FilterSet) UnmarshalJSON(data []byte) error {
	var payload filterSetJSON
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	result := FilterSet{
		Criteria:    make(map[uuid.UUID]FilterCriterion, len(payload.Criteria)),
		SearchQuery: payload.SearchQuery,
	}
	for _, entry := range payload.Criteria {
		if entry.PropertyID == uuid.Nil {
			return fmt.Errorf("filter criterion is missing propertyId")
		}
		if _, dup := result.Criteria[entry.PropertyID]; dup {
			return fmt.Errorf("duplicate filter criterion for property %s", entry.PropertyID)
		}
		if entry.Text != nil {
			if len(entry.Values) > 0 {
				return fmt.Errorf("filter criterion for property %s sets both text and values", entry.PropertyID)
			}
			result.Criteria[entry.PropertyID] = TextCriterion{Value: *entry.Text}
			continue
		}
		result.Criteria[entry.PropertyID] = NewSelectCriterion(entry.Values...)
	}
	*fs = result
	return nil
}
