package filter

import (
	"github.com/google/uuid"

	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/schema"
)

// OptionCount is the number of entities holding one select option.
type OptionCount struct {
	Option string `json:"option"`
	Count  int    `json:"count"`
}

// Facet summarises one single select property over a collection.
type Facet struct {
	PropertyID uuid.UUID     `json:"propertyId"`
	Title      string        `json:"title"`
	Options    []OptionCount `json:"options"`
	// Unset counts entities without a value or with a value outside the options.
	Unset int `json:"unset"`
}

// Facets counts option usage for every single select property in s, in
// schema order. Options are listed in their configured order.
func Facets[E domain.Filterable](s *schema.Schema, entities []E) []Facet {
	facets := []Facet{}
	for _, cfg := range s.All() {
		if !cfg.IsSingleSelect() {
			continue
		}
		counts := make(map[string]int, len(cfg.SelectOptions))
		unset := 0
		for _, entity := range entities {
			value, ok := entity.Values().Get(cfg.ID)
			if !ok || !cfg.HasOption(value) {
				unset++
				continue
			}
			counts[value]++
		}
		facet := Facet{PropertyID: cfg.ID, Title: cfg.Title, Unset: unset}
		for _, option := range cfg.SelectOptions {
			facet.Options = append(facet.Options, OptionCount{Option: option, Count: counts[option]})
		}
		facets = append(facets, facet)
	}
	return facets
}
