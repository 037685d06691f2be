// Package api serves the workspace JSON API.
package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/rpattn/testplan/internal/export"
	"github.com/rpattn/testplan/internal/ingestion"
	"github.com/rpattn/testplan/internal/middleware"
	"github.com/rpattn/testplan/internal/repository"
	"github.com/rpattn/testplan/internal/service"
)

const workspacePrefix = "/api/workspaces/{workspaceId}"

// Deps are the collaborators of the router.
type Deps struct {
	Service   *service.Service
	Ingestion *ingestion.Service
	// TestCases backs the per-request test case loader.
	TestCases repository.TestCaseRepository
	Logger    *zap.Logger
}

// NewRouter registers every endpoint and wraps them with workspace scoping,
// the test case loader and request logging. CORS is applied by the caller.
func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	h := &Handler{svc: deps.Service, logger: deps.Logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.health)

	mux.HandleFunc("GET /api/workspaces", h.listWorkspaces)
	mux.HandleFunc("POST /api/workspaces", h.createWorkspace)
	mux.HandleFunc("GET "+workspacePrefix, h.getWorkspace)
	mux.HandleFunc("DELETE "+workspacePrefix, h.deleteWorkspace)

	mux.HandleFunc("GET "+workspacePrefix+"/properties", h.listProperties)
	mux.HandleFunc("POST "+workspacePrefix+"/properties", h.createProperty)
	mux.HandleFunc("PUT "+workspacePrefix+"/properties/{propertyId}", h.updateProperty)
	mux.HandleFunc("DELETE "+workspacePrefix+"/properties/{propertyId}", h.deleteProperty)

	mux.HandleFunc("GET "+workspacePrefix+"/test-cases", h.listTestCases)
	mux.HandleFunc("POST "+workspacePrefix+"/test-cases/query", h.queryTestCases)
	mux.HandleFunc("POST "+workspacePrefix+"/test-cases", h.createTestCase)
	mux.HandleFunc("GET "+workspacePrefix+"/test-cases/{testCaseId}", h.getTestCase)
	mux.HandleFunc("DELETE "+workspacePrefix+"/test-cases/{testCaseId}", h.deleteTestCase)
	mux.HandleFunc("GET "+workspacePrefix+"/test-cases/{testCaseId}/inputs", h.testCaseInputs)
	mux.HandleFunc("PATCH "+workspacePrefix+"/test-cases/{testCaseId}/properties/{propertyId}", h.setTestCaseProperty)

	exportHandler := export.NewHTTPHandler(deps.Service, deps.Logger)
	mux.Handle("GET "+workspacePrefix+"/test-cases/export.xlsx", exportHandler)
	mux.Handle("GET "+workspacePrefix+"/test-cases/export.csv", exportHandler)
	if deps.Ingestion != nil {
		mux.Handle("POST "+workspacePrefix+"/test-cases/import", ingestion.NewHTTPHandler(deps.Ingestion))
	}

	mux.HandleFunc("GET "+workspacePrefix+"/test-runs", h.listTestRuns)
	mux.HandleFunc("POST "+workspacePrefix+"/test-runs", h.createTestRun)
	mux.HandleFunc("GET "+workspacePrefix+"/test-runs/{testRunId}", h.getTestRun)
	mux.HandleFunc("DELETE "+workspacePrefix+"/test-runs/{testRunId}", h.deleteTestRun)

	var handler http.Handler = mux
	handler = middleware.WorkspaceScopeMiddleware(handler)
	handler = middleware.DataLoaderMiddleware(deps.TestCases)(handler)
	handler = middleware.LoggingMiddleware(deps.Logger)(handler)
	return handler
}
