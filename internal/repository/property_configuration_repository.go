package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rpattn/testplan/internal/domain"
)

// propertyConfigurationRepository implements PropertyConfigurationRepository interface
type propertyConfigurationRepository struct {
	db DBTX
}

// NewPropertyConfigurationRepository creates a new property configuration repository
func NewPropertyConfigurationRepository(db DBTX) PropertyConfigurationRepository {
	return &propertyConfigurationRepository{db: db}
}

const propertyColumns = `id, workspace_id, title, type, is_required, default_value, select_options, created_at, updated_at`

// Create appends a configuration to the end of the workspace schema
func (r *propertyConfigurationRepository) Create(ctx context.Context, cfg domain.PropertyConfiguration) (domain.PropertyConfiguration, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO property_configurations
			(id, workspace_id, position, title, type, is_required, default_value, select_options, created_at, updated_at)
		VALUES ($1, $2,
			(SELECT COALESCE(MAX(position), -1) + 1 FROM property_configurations WHERE workspace_id = $2),
			$3, $4, $5, $6, $7, $8, $9)
		RETURNING `+propertyColumns,
		cfg.ID, cfg.WorkspaceID, cfg.Title, string(cfg.Type), cfg.IsRequired, cfg.DefaultValue,
		selectOptionsParam(cfg.SelectOptions), cfg.CreatedAt, cfg.UpdatedAt,
	)
	created, err := scanPropertyConfiguration(row)
	if err != nil {
		return domain.PropertyConfiguration{}, fmt.Errorf("failed to create property configuration: %w", err)
	}
	return created, nil
}

// GetByID retrieves a property configuration by ID
func (r *propertyConfigurationRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.PropertyConfiguration, error) {
	row := r.db.QueryRow(ctx, `SELECT `+propertyColumns+` FROM property_configurations WHERE id = $1`, id)
	cfg, err := scanPropertyConfiguration(row)
	if err != nil {
		if nf := notFound(err, "property configuration", id); nf != nil {
			return domain.PropertyConfiguration{}, nf
		}
		return domain.PropertyConfiguration{}, fmt.Errorf("failed to get property configuration: %w", err)
	}
	return cfg, nil
}

// ListByWorkspace returns the workspace schema in declaration order
func (r *propertyConfigurationRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.PropertyConfiguration, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+propertyColumns+`
		FROM property_configurations
		WHERE workspace_id = $1
		ORDER BY position, created_at`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list property configurations: %w", err)
	}
	configs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PropertyConfiguration, error) {
		return scanPropertyConfiguration(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list property configurations: %w", err)
	}
	return configs, nil
}

// Update edits a configuration in place; stored values are left untouched
func (r *propertyConfigurationRepository) Update(ctx context.Context, cfg domain.PropertyConfiguration) (domain.PropertyConfiguration, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE property_configurations
		SET title = $2, type = $3, is_required = $4, default_value = $5, select_options = $6, updated_at = $7
		WHERE id = $1
		RETURNING `+propertyColumns,
		cfg.ID, cfg.Title, string(cfg.Type), cfg.IsRequired, cfg.DefaultValue,
		selectOptionsParam(cfg.SelectOptions), cfg.UpdatedAt,
	)
	updated, err := scanPropertyConfiguration(row)
	if err != nil {
		if nf := notFound(err, "property configuration", cfg.ID); nf != nil {
			return domain.PropertyConfiguration{}, nf
		}
		return domain.PropertyConfiguration{}, fmt.Errorf("failed to update property configuration: %w", err)
	}
	return updated, nil
}

// Delete removes a configuration. Values keyed by it stay on test cases and runs.
func (r *propertyConfigurationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM property_configurations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property configuration: %w", err)
	}
	return expectOneRow(tag.RowsAffected(), "property configuration", id)
}

func selectOptionsParam(options []string) []string {
	if options == nil {
		return []string{}
	}
	return options
}

func scanPropertyConfiguration(row pgx.Row) (domain.PropertyConfiguration, error) {
	var (
		cfg          domain.PropertyConfiguration
		propertyType string
		options      []string
	)
	err := row.Scan(&cfg.ID, &cfg.WorkspaceID, &cfg.Title, &propertyType, &cfg.IsRequired,
		&cfg.DefaultValue, &options, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return domain.PropertyConfiguration{}, err
	}
	cfg.Type = domain.PropertyType(propertyType)
	if len(options) > 0 {
		cfg.SelectOptions = options
	}
	return cfg, nil
}
