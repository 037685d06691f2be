package schema

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/schema/validator"
)

// SeedFile is the YAML layout used to bootstrap a workspace schema.
type SeedFile struct {
	Properties []SeedProperty `yaml:"properties"`
}

// SeedProperty describes one property configuration in a seed file.
type SeedProperty struct {
	Title         string   `yaml:"title"`
	Type          string   `yaml:"type"`
	IsRequired    bool     `yaml:"isRequired"`
	DefaultValue  *string  `yaml:"defaultValue"`
	SelectOptions []string `yaml:"selectOptions"`
}

// LoadSeed decodes a YAML seed into validated configurations for the workspace.
// Each configuration receives a fresh id.
func LoadSeed(r io.Reader, workspaceID uuid.UUID) ([]domain.PropertyConfiguration, error) {
	var seed SeedFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&seed); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode schema seed: %w", err)
	}

	configs := make([]domain.PropertyConfiguration, 0, len(seed.Properties))
	for _, p := range seed.Properties {
		cfg := domain.NewPropertyConfiguration(workspaceID, p.Title, domain.PropertyType(p.Type), p.IsRequired)
		if len(p.SelectOptions) > 0 {
			cfg = cfg.WithSelectOptions(p.SelectOptions...)
		}
		if p.DefaultValue != nil {
			cfg = cfg.WithDefaultValue(*p.DefaultValue)
		}
		configs = append(configs, cfg)
	}

	if err := validator.ValidateConfigurations(configs); err != nil {
		return nil, err
	}
	return configs, nil
}
