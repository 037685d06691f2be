// Package schema holds the ordered property configurations of a workspace.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/schema/validator"
)

var (
	// ErrDuplicateProperty is returned when adding a configuration whose id already exists.
	ErrDuplicateProperty = errors.New("property configuration already exists")
	// ErrUnknownProperty is returned when updating a configuration that does not exist.
	ErrUnknownProperty = errors.New("unknown property configuration")
)

// Schema is the read-mostly set of property configurations for one workspace.
// It is owned by a single session and is not safe for concurrent writers.
type Schema struct {
	workspaceID uuid.UUID
	configs     []domain.PropertyConfiguration
	byID        map[uuid.UUID]int
}

// New builds a schema from configurations in declaration order.
func New(workspaceID uuid.UUID, configs ...domain.PropertyConfiguration) (*Schema, error) {
	s := &Schema{
		workspaceID: workspaceID,
		byID:        make(map[uuid.UUID]int, len(configs)),
	}
	for _, cfg := range configs {
		if err := s.Add(cfg); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// WorkspaceID returns the workspace owning the schema.
func (s *Schema) WorkspaceID() uuid.UUID {
	return s.workspaceID
}

// All returns a copy of the configurations in declaration order.
func (s *Schema) All() []domain.PropertyConfiguration {
	out := make([]domain.PropertyConfiguration, len(s.configs))
	copy(out, s.configs)
	return out
}

// Len returns the number of configurations.
func (s *Schema) Len() int {
	return len(s.configs)
}

// Get looks up a configuration by id.
func (s *Schema) Get(id uuid.UUID) (domain.PropertyConfiguration, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return domain.PropertyConfiguration{}, false
	}
	return s.configs[idx], true
}

// Has reports whether id references a configuration in the schema.
func (s *Schema) Has(id uuid.UUID) bool {
	_, ok := s.byID[id]
	return ok
}

// FindByTitle looks up a configuration by title, ignoring case and surrounding space.
func (s *Schema) FindByTitle(title string) (domain.PropertyConfiguration, bool) {
	needle := strings.TrimSpace(title)
	for _, cfg := range s.configs {
		if strings.EqualFold(strings.TrimSpace(cfg.Title), needle) {
			return cfg, true
		}
	}
	return domain.PropertyConfiguration{}, false
}

// Add appends a validated configuration.
func (s *Schema) Add(cfg domain.PropertyConfiguration) error {
	if err := validator.ValidateConfiguration(cfg); err != nil {
		return err
	}
	if _, exists := s.byID[cfg.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProperty, cfg.ID)
	}
	if err := s.checkTitle(cfg); err != nil {
		return err
	}
	s.byID[cfg.ID] = len(s.configs)
	s.configs = append(s.configs, cfg)
	return nil
}

// Update replaces an existing configuration in place, keeping its position.
// Stored values are not revalidated against the new definition.
func (s *Schema) Update(cfg domain.PropertyConfiguration) error {
	idx, ok := s.byID[cfg.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProperty, cfg.ID)
	}
	if err := validator.ValidateConfiguration(cfg); err != nil {
		return err
	}
	if err := s.checkTitle(cfg); err != nil {
		return err
	}
	s.configs[idx] = cfg
	return nil
}

// Remove drops a configuration. Values referencing it become orphaned.
func (s *Schema) Remove(id uuid.UUID) bool {
	idx, ok := s.byID[id]
	if !ok {
		return false
	}
	s.configs = append(s.configs[:idx], s.configs[idx+1:]...)
	delete(s.byID, id)
	for i := idx; i < len(s.configs); i++ {
		s.byID[s.configs[i].ID] = i
	}
	return true
}

func (s *Schema) checkTitle(cfg domain.PropertyConfiguration) error {
	if existing, ok := s.FindByTitle(cfg.Title); ok && existing.ID != cfg.ID {
		return domain.NewSchemaError(cfg.ID, "title", "title %q is already used by property %s", cfg.Title, existing.ID)
	}
	return nil
}
