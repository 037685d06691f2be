package main

import (
	"context"
	"fmt"

	"github.com/rpattn/testplan/internal/db"
	"github.com/rpattn/testplan/internal/repository"
	"github.com/rpattn/testplan/internal/repository/memory"
	"github.com/rpattn/testplan/internal/service"
)

type backend struct {
	service   *service.Service
	testCases repository.TestCaseRepository
	close     func()
}

// openBackend connects to PostgreSQL, applying pending migrations when
// migrateUp is set, or builds an in-memory store.
func openBackend(ctx context.Context, inMemory, migrateUp bool) (*backend, error) {
	if inMemory {
		store := memory.NewStore()
		logger.Warn("using in-memory store, data is lost on exit")
		return &backend{
			service:   service.New(store.Workspaces(), store.Properties(), store.TestCases(), store.TestRuns(), logger),
			testCases: store.TestCases(),
			close:     func() {},
		}, nil
	}

	conn, err := db.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if migrateUp {
		if err := db.RunMigrations(conn.Pool); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	testCases := repository.NewTestCaseRepository(conn.Pool)
	return &backend{
		service: service.New(
			repository.NewWorkspaceRepository(conn.Pool),
			repository.NewPropertyConfigurationRepository(conn.Pool),
			testCases,
			repository.NewTestRunRepository(conn.Pool),
			logger,
		),
		testCases: testCases,
		close:     conn.Close,
	}, nil
}
