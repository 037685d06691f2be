package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/ingestion"
	"github.com/rpattn/testplan/internal/middleware"
	"github.com/rpattn/testplan/internal/properties"
	"github.com/rpattn/testplan/internal/repository/memory"
	"github.com/rpattn/testplan/internal/service"
)

type apiClient struct {
	t       *testing.T
	handler http.Handler
	base    string
}

func newClient(t *testing.T) *apiClient {
	t.Helper()
	store := memory.NewStore()
	svc := service.New(store.Workspaces(), store.Properties(), store.TestCases(), store.TestRuns(), nil)
	handler := NewRouter(Deps{
		Service:   svc,
		Ingestion: ingestion.NewService(svc, nil),
		TestCases: store.TestCases(),
	})

	c := &apiClient{t: t, handler: handler}
	var workspace domain.Workspace
	c.do(http.MethodPost, "/api/workspaces", map[string]string{"name": "qa"}, http.StatusCreated, &workspace)
	c.base = "/api/workspaces/" + workspace.ID.String()
	return c
}

func (c *apiClient) request(req *http.Request, wantStatus int, out any) *httptest.ResponseRecorder {
	c.t.Helper()
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	require.Equal(c.t, wantStatus, rec.Code, "%s %s: %s", req.Method, req.URL.Path, rec.Body.String())
	if out != nil {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func (c *apiClient) do(method, path string, body any, wantStatus int, out any) *httptest.ResponseRecorder {
	c.t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&payload).Encode(body))
	}
	return c.request(httptest.NewRequest(method, path, &payload), wantStatus, out)
}

func (c *apiClient) addPriority() domain.PropertyConfiguration {
	c.t.Helper()
	var created domain.PropertyConfiguration
	c.do(http.MethodPost, c.base+"/properties", map[string]any{
		"title":         "Priority",
		"type":          "SINGLE_SELECT_LIST",
		"selectOptions": []string{"Critical", "High", "Low"},
	}, http.StatusCreated, &created)
	return created
}

func TestPropertyEndpoints(t *testing.T) {
	c := newClient(t)
	priority := c.addPriority()
	assert.Equal(t, domain.PropertyTypeSingleSelect, priority.Type)

	var errBody errorResponse
	c.do(http.MethodPost, c.base+"/properties", map[string]any{
		"title":         "Severity",
		"type":          "SINGLE_SELECT_LIST",
		"selectOptions": []string{},
	}, http.StatusUnprocessableEntity, &errBody)
	assert.Equal(t, "selectOptions", errBody.Field)

	c.do(http.MethodPost, c.base+"/properties", map[string]any{"title": "X", "bogus": true}, http.StatusBadRequest, nil)

	var updated domain.PropertyConfiguration
	c.do(http.MethodPut, c.base+"/properties/"+priority.ID.String(), map[string]any{
		"title":         "Urgency",
		"type":          "SINGLE_SELECT_LIST",
		"selectOptions": []string{"Now", "Later"},
	}, http.StatusOK, &updated)
	assert.Equal(t, "Urgency", updated.Title)

	var listed []domain.PropertyConfiguration
	c.do(http.MethodGet, c.base+"/properties", nil, http.StatusOK, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, []string{"Now", "Later"}, listed[0].SelectOptions)

	c.do(http.MethodDelete, c.base+"/properties/"+priority.ID.String(), nil, http.StatusNoContent, nil)
	c.do(http.MethodDelete, c.base+"/properties/"+priority.ID.String(), nil, http.StatusNotFound, nil)
}

func TestTestCaseEndpoints(t *testing.T) {
	c := newClient(t)
	priority := c.addPriority()

	var login, signup domain.TestCase
	c.do(http.MethodPost, c.base+"/test-cases", map[string]any{
		"title":      "Login bug",
		"properties": map[string]string{priority.ID.String(): "Critical"},
	}, http.StatusCreated, &login)
	c.do(http.MethodPost, c.base+"/test-cases", map[string]any{
		"title":      "Signup flow",
		"properties": map[string]string{priority.ID.String(): "Low"},
	}, http.StatusCreated, &signup)

	c.do(http.MethodPost, c.base+"/test-cases", map[string]any{
		"title":      "Bad",
		"properties": map[string]string{priority.ID.String(): "Blocker"},
	}, http.StatusUnprocessableEntity, nil)

	var list service.TestCaseList
	c.do(http.MethodPost, c.base+"/test-cases/query", domain.NewFilterSet().
		WithCriterion(priority.ID, domain.NewSelectCriterion("Critical")), http.StatusOK, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, login.ID, list.Items[0].ID)
	assert.Equal(t, 2, list.Total)

	c.do(http.MethodGet, c.base+"/test-cases?q=SIGNUP", nil, http.StatusOK, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, signup.ID, list.Items[0].ID)

	c.do(http.MethodGet, c.base+"/test-cases?sort=rank", nil, http.StatusBadRequest, nil)

	var inputs service.TestCaseInputs
	c.do(http.MethodGet, c.base+"/test-cases/"+login.ID.String()+"/inputs", nil, http.StatusOK, &inputs)
	require.Len(t, inputs.Inputs, 1)
	assert.Equal(t, []string{properties.UnsetLabel, "Critical", "High", "Low"}, inputs.Inputs[0].Input.Options)
	assert.Equal(t, "Critical", inputs.Inputs[0].Input.Selected)

	var updated domain.TestCase
	c.do(http.MethodPatch, c.base+"/test-cases/"+login.ID.String()+"/properties/"+priority.ID.String(),
		map[string]string{"value": properties.UnsetLabel}, http.StatusOK, &updated)
	_, set := updated.PropertyValues.Get(priority.ID)
	assert.False(t, set)

	c.do(http.MethodGet, c.base+"/test-cases/"+uuid.NewString(), nil, http.StatusNotFound, nil)
	c.do(http.MethodGet, c.base+"/test-cases/not-a-uuid", nil, http.StatusBadRequest, nil)
}

func TestTestRunEndpoints(t *testing.T) {
	c := newClient(t)

	var first, second domain.TestCase
	c.do(http.MethodPost, c.base+"/test-cases", map[string]any{"title": "first"}, http.StatusCreated, &first)
	c.do(http.MethodPost, c.base+"/test-cases", map[string]any{"title": "second"}, http.StatusCreated, &second)

	var run domain.TestRun
	c.do(http.MethodPost, c.base+"/test-runs", map[string]any{
		"title":       "Release",
		"testCaseIds": []uuid.UUID{second.ID, first.ID, uuid.New()},
	}, http.StatusCreated, &run)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, run.TestCaseIDs)

	var resp testRunResponse
	c.do(http.MethodGet, c.base+"/test-runs/"+run.ID.String(), nil, http.StatusOK, &resp)
	require.Len(t, resp.TestCases, 2)
	assert.Equal(t, "first", resp.TestCases[0].Title)

	var runs []domain.TestRun
	c.do(http.MethodGet, c.base+"/test-runs?q=release", nil, http.StatusOK, &runs)
	assert.Len(t, runs, 1)

	c.do(http.MethodDelete, c.base+"/test-cases/"+first.ID.String(), nil, http.StatusNoContent, nil)
	c.do(http.MethodGet, c.base+"/test-runs/"+run.ID.String(), nil, http.StatusOK, &resp)
	require.Len(t, resp.TestCases, 1)
	assert.Equal(t, "second", resp.TestCases[0].Title)

	c.do(http.MethodDelete, c.base+"/test-runs/"+run.ID.String(), nil, http.StatusNoContent, nil)
	c.do(http.MethodGet, c.base+"/test-runs/"+run.ID.String(), nil, http.StatusNotFound, nil)
}

func TestWorkspaceEndpoints(t *testing.T) {
	c := newClient(t)

	c.do(http.MethodPost, "/api/workspaces", map[string]string{"name": "qa"}, http.StatusConflict, nil)

	var other domain.Workspace
	c.do(http.MethodPost, "/api/workspaces", map[string]string{"name": "billing"}, http.StatusCreated, &other)

	var listed []domain.Workspace
	c.do(http.MethodGet, "/api/workspaces", nil, http.StatusOK, &listed)
	assert.Len(t, listed, 2)

	req := httptest.NewRequest(http.MethodGet, "/api/workspaces", nil)
	req.Header.Set(middleware.WorkspaceHeader, other.ID.String())
	c.request(req, http.StatusOK, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "billing", listed[0].Name)

	c.do(http.MethodDelete, "/api/workspaces/"+other.ID.String(), nil, http.StatusNoContent, nil)
	c.do(http.MethodGet, "/api/workspaces/"+other.ID.String(), nil, http.StatusNotFound, nil)
}

func TestWorkspaceScopeHeader(t *testing.T) {
	c := newClient(t)

	req := httptest.NewRequest(http.MethodGet, c.base+"/properties", nil)
	req.Header.Set(middleware.WorkspaceHeader, uuid.NewString())
	c.request(req, http.StatusForbidden, nil)

	c.do(http.MethodGet, "/api/workspaces/"+uuid.NewString(), nil, http.StatusNotFound, nil)
}

func TestImportAndExportEndpoints(t *testing.T) {
	c := newClient(t)
	c.addPriority()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "cases.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Title,Priority\nLogin bug,Critical\nBroken,Nope\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, c.base+"/test-cases/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var summary ingestion.Summary
	c.request(req, http.StatusOK, &summary)
	assert.Equal(t, 1, summary.ImportedRows)
	assert.Equal(t, 1, summary.InvalidRows)

	rec := c.do(http.MethodGet, c.base+"/test-cases/export.csv", nil, http.StatusOK, nil)
	assert.Equal(t, "Title,Description,Priority\nLogin bug,,Critical\n", rec.Body.String())
}
