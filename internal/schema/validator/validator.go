package validator

import (
	"strings"

	"github.com/samber/lo"

	"github.com/rpattn/testplan/internal/domain"
)

// ValidateConfiguration ensures a property configuration satisfies the schema
// invariants. Violations are reported as *domain.SchemaError and never corrected.
func ValidateConfiguration(cfg domain.PropertyConfiguration) error {
	if strings.TrimSpace(cfg.Title) == "" {
		return domain.NewSchemaError(cfg.ID, "title", "title is required")
	}
	if !cfg.Type.IsValid() {
		return domain.NewSchemaError(cfg.ID, "type", "unsupported property type %q", cfg.Type)
	}

	if !cfg.IsSingleSelect() {
		if len(cfg.SelectOptions) > 0 {
			return domain.NewSchemaError(cfg.ID, "selectOptions", "type %s does not support select options", cfg.Type)
		}
		return nil
	}

	if len(cfg.SelectOptions) == 0 {
		return domain.NewSchemaError(cfg.ID, "selectOptions", "single select property %q requires at least one option", cfg.Title)
	}
	for _, option := range cfg.SelectOptions {
		if strings.TrimSpace(option) == "" {
			return domain.NewSchemaError(cfg.ID, "selectOptions", "select options must not be blank")
		}
		if strings.EqualFold(strings.TrimSpace(option), domain.UnsetOptionLabel) {
			return domain.NewSchemaError(cfg.ID, "selectOptions", "%q is reserved and cannot be a select option", domain.UnsetOptionLabel)
		}
	}
	if dups := lo.FindDuplicates(cfg.SelectOptions); len(dups) > 0 {
		return domain.NewSchemaError(cfg.ID, "selectOptions", "duplicate select options: %s", strings.Join(dups, ", "))
	}
	if def, ok := cfg.Default(); ok && !cfg.HasOption(def) {
		return domain.NewSchemaError(cfg.ID, "defaultValue", "default value %q is not one of the select options", def)
	}

	return nil
}

// ValidateConfigurations validates each configuration and rejects duplicate
// ids and titles (titles compared case-insensitively) across the batch.
func ValidateConfigurations(configs []domain.PropertyConfiguration) error {
	seenIDs := make(map[string]struct{}, len(configs))
	seenTitles := make(map[string]struct{}, len(configs))

	for _, cfg := range configs {
		if err := ValidateConfiguration(cfg); err != nil {
			return err
		}

		id := cfg.ID.String()
		if _, dup := seenIDs[id]; dup {
			return domain.NewSchemaError(cfg.ID, "id", "duplicate property id")
		}
		seenIDs[id] = struct{}{}

		title := strings.ToLower(strings.TrimSpace(cfg.Title))
		if _, dup := seenTitles[title]; dup {
			return domain.NewSchemaError(cfg.ID, "title", "duplicate property title %q", cfg.Title)
		}
		seenTitles[title] = struct{}{}
	}

	return nil
}
