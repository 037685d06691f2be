// Package properties resolves how a property configuration is entered and displayed.
package properties

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/schema"
)

const (
	// UnsetLabel is offered ahead of the real options of an optional single
	// select property and maps to an unset value when chosen.
	UnsetLabel = domain.UnsetOptionLabel
	// UnknownPropertyLabel is displayed for values whose configuration was removed.
	UnknownPropertyLabel = "Unknown property"
)

// ErrValueOutsideDomain is returned when an input is not in the property's domain.
var ErrValueOutsideDomain = errors.New("value is not an accepted option")

// InputDomain describes how a property is presented for editing.
type InputDomain struct {
	Placeholder string   `json:"placeholder"`
	Options     []string `json:"options,omitempty"`
	// Constrained is true when only Options are accepted.
	Constrained bool `json:"constrained"`
	// Selected is the value to preselect: the current value, or UnsetLabel
	// for an optional single select property without one.
	Selected string `json:"selected"`
}

// ResolveInputDomain computes the placeholder and accepted values for cfg.
// currentValue is the entity's stored value, "" when unset.
func ResolveInputDomain(cfg domain.PropertyConfiguration, currentValue string) (InputDomain, error) {
	switch cfg.Type {
	case domain.PropertyTypeSingleSelect:
		if len(cfg.SelectOptions) == 0 {
			return InputDomain{}, domain.NewSchemaError(cfg.ID, "selectOptions", "single select property %q has no options", cfg.Title)
		}
		if cfg.HasOption(UnsetLabel) {
			return InputDomain{}, domain.NewSchemaError(cfg.ID, "selectOptions", "single select property %q uses the reserved option %q", cfg.Title, UnsetLabel)
		}
		in := InputDomain{
			Placeholder: placeholder("Select", cfg),
			Constrained: true,
			Selected:    currentValue,
		}
		if cfg.IsRequired {
			in.Options = append([]string(nil), cfg.SelectOptions...)
		} else {
			in.Options = append([]string{UnsetLabel}, cfg.SelectOptions...)
			if currentValue == "" {
				in.Selected = UnsetLabel
			}
		}
		return in, nil
	case domain.PropertyTypeText, domain.PropertyTypeNumber:
		return InputDomain{
			Placeholder: placeholder("Enter", cfg),
			Selected:    currentValue,
		}, nil
	default:
		return InputDomain{}, domain.NewSchemaError(cfg.ID, "type", "unsupported property type %q", cfg.Type)
	}
}

func placeholder(verb string, cfg domain.PropertyConfiguration) string {
	text := fmt.Sprintf("%s %s", verb, cfg.Title)
	if !cfg.IsRequired {
		text += " (optional)"
	}
	return text
}

// ApplyInput stores raw into values for cfg. Choosing UnsetLabel on an optional
// single select, or entering a blank value, unsets the property.
func ApplyInput(values domain.PropertyValues, cfg domain.PropertyConfiguration, raw string) error {
	in, err := ResolveInputDomain(cfg, values.Resolve(cfg.ID))
	if err != nil {
		return err
	}
	if !in.Constrained {
		values.Set(cfg.ID, raw)
		return nil
	}
	if raw == "" || (!cfg.IsRequired && raw == UnsetLabel) {
		values.Unset(cfg.ID)
		return nil
	}
	if !cfg.HasOption(raw) {
		return fmt.Errorf("%w: %q for property %q", ErrValueOutsideDomain, raw, cfg.Title)
	}
	values.Set(cfg.ID, raw)
	return nil
}

// ValueView is one display row for an entity's stored value.
type ValueView struct {
	PropertyID uuid.UUID `json:"propertyId"`
	Title      string    `json:"title"`
	Value      string    `json:"value"`
	Known      bool      `json:"known"`
}

// Describe lists the entity's values for display: schema properties in
// declaration order (unset ones included with an empty value), followed by
// orphaned keys labelled UnknownPropertyLabel in id order.
func Describe(s *schema.Schema, values domain.PropertyValues) []ValueView {
	kept, orphaned := values.Split(s.Has)

	views := make([]ValueView, 0, s.Len()+len(orphaned))
	for _, cfg := range s.All() {
		views = append(views, ValueView{
			PropertyID: cfg.ID,
			Title:      cfg.Title,
			Value:      kept.Resolve(cfg.ID),
			Known:      true,
		})
	}

	ids := make([]uuid.UUID, 0, len(orphaned))
	for id := range orphaned {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	for _, id := range ids {
		views = append(views, ValueView{
			PropertyID: id,
			Title:      UnknownPropertyLabel,
			Value:      orphaned[id],
		})
	}
	return views
}
