package domain

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// PropertyValues maps property configuration ids to the scalar stored for an
// entity. A missing key means unset; empty strings are never stored.
type PropertyValues map[uuid.UUID]string

// NewPropertyValues copies raw into a normalised PropertyValues, dropping blank values.
func NewPropertyValues(raw map[uuid.UUID]string) PropertyValues {
	values := make(PropertyValues, len(raw))
	for id, value := range raw {
		values.Set(id, value)
	}
	return values
}

// Get returns the stored value and whether the property is set.
func (v PropertyValues) Get(propertyID uuid.UUID) (string, bool) {
	value, ok := v[propertyID]
	return value, ok
}

// Resolve returns the stored value, or "" when the property is unset.
func (v PropertyValues) Resolve(propertyID uuid.UUID) string {
	return v[propertyID]
}

// Set stores value for the property. A blank value removes the key so that
// "empty" and "absent" share one representation.
func (v PropertyValues) Set(propertyID uuid.UUID, value string) {
	if strings.TrimSpace(value) == "" {
		delete(v, propertyID)
		return
	}
	v[propertyID] = value
}

// Unset removes the property value.
func (v PropertyValues) Unset(propertyID uuid.UUID) {
	delete(v, propertyID)
}

// Clone returns an independent copy of the values. Nil clones to an empty map.
func (v PropertyValues) Clone() PropertyValues {
	out := make(PropertyValues, len(v))
	for id, value := range v {
		out[id] = value
	}
	return out
}

// ApplyDefaults fills unset properties from their configured default value.
func (v PropertyValues) ApplyDefaults(configs []PropertyConfiguration) {
	for _, cfg := range configs {
		if _, ok := v[cfg.ID]; ok {
			continue
		}
		if def, ok := cfg.Default(); ok {
			v.Set(cfg.ID, def)
		}
	}
}

// Split partitions the stored keys into those accepted by known and orphaned
// keys whose configuration no longer exists.
func (v PropertyValues) Split(known func(uuid.UUID) bool) (PropertyValues, PropertyValues) {
	kept := make(PropertyValues)
	orphaned := make(PropertyValues)
	for id, value := range v {
		if known(id) {
			kept[id] = value
		} else {
			orphaned[id] = value
		}
	}
	return kept, orphaned
}

// MarshalJSONB returns the values encoded for a jsonb column.
func (v PropertyValues) MarshalJSONB() (json.RawMessage, error) {
	if v == nil {
		return json.RawMessage("{}"), nil
	}
	return json.Marshal(map[uuid.UUID]string(v))
}

// PropertyValuesFromJSONB decodes a jsonb column into normalised values.
func PropertyValuesFromJSONB(raw []byte) (PropertyValues, error) {
	if len(raw) == 0 {
		return PropertyValues{}, nil
	}
	var decoded map[uuid.UUID]string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return NewPropertyValues(decoded), nil
}
