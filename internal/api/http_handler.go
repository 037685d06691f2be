package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/rpattn/testplan/internal/auth"
	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/selection"
	"github.com/rpattn/testplan/internal/service"
	"github.com/rpattn/testplan/internal/testcaseloader"
)

// Handler implements the JSON endpoints on top of the workspace service.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

type workspacePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type propertyPayload struct {
	Title         string              `json:"title"`
	Type          domain.PropertyType `json:"type"`
	IsRequired    bool                `json:"isRequired"`
	DefaultValue  *string             `json:"defaultValue"`
	SelectOptions []string            `json:"selectOptions"`
}

func (p propertyPayload) configuration(workspaceID uuid.UUID) domain.PropertyConfiguration {
	cfg := domain.NewPropertyConfiguration(workspaceID, strings.TrimSpace(p.Title), p.Type, p.IsRequired)
	if p.SelectOptions != nil {
		cfg = cfg.WithSelectOptions(p.SelectOptions...)
	}
	if p.DefaultValue != nil {
		cfg = cfg.WithDefaultValue(*p.DefaultValue)
	}
	return cfg
}

type testCasePayload struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Properties  map[uuid.UUID]string `json:"properties"`
}

type propertyValuePayload struct {
	Value string `json:"value"`
}

type testRunPayload struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Properties  map[uuid.UUID]string `json:"properties"`
	TestCaseIDs []uuid.UUID          `json:"testCaseIds"`
}

type testRunResponse struct {
	TestRun   domain.TestRun    `json:"testRun"`
	TestCases []domain.TestCase `json:"testCases"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) createWorkspace(w http.ResponseWriter, r *http.Request) {
	var body workspacePayload
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	workspace, err := h.svc.CreateWorkspace(r.Context(), body.Name, body.Description)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, workspace)
}

func (h *Handler) getWorkspace(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	workspace, err := h.svc.GetWorkspace(r.Context(), workspaceID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workspace)
}

func (h *Handler) listWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := h.svc.ListWorkspaces(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if id, ok := auth.WorkspaceIDFromContext(r.Context()); ok {
		workspaces = lo.Filter(workspaces, func(ws domain.Workspace, _ int) bool { return ws.ID == id })
	}
	writeJSON(w, http.StatusOK, workspaces)
}

func (h *Handler) deleteWorkspace(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteWorkspace(r.Context(), workspaceID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listProperties(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sch, err := h.svc.LoadSchema(r.Context(), workspaceID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sch.All())
}

func (h *Handler) createProperty(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body propertyPayload
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.svc.AddProperty(r.Context(), body.configuration(workspaceID))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateProperty(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	propertyID, err := pathID(r, "propertyId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body propertyPayload
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	cfg := body.configuration(workspaceID)
	cfg.ID = propertyID
	updated, err := h.svc.UpdateProperty(r.Context(), cfg)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteProperty(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	propertyID, err := pathID(r, "propertyId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.RemoveProperty(r.Context(), workspaceID, propertyID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listTestCases(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	set := domain.NewFilterSet().WithSearchQuery(r.URL.Query().Get("q"))
	h.respondTestCases(w, r, workspaceID, set)
}

func (h *Handler) queryTestCases(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var set domain.FilterSet
	if err := decode(r, &set); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondTestCases(w, r, workspaceID, set)
}

func (h *Handler) respondTestCases(w http.ResponseWriter, r *http.Request, workspaceID uuid.UUID, set domain.FilterSet) {
	order, err := domain.ParseTestCaseSort(r.URL.Query().Get("sort"), r.URL.Query().Get("direction"))
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	list, err := h.svc.ListTestCases(r.Context(), workspaceID, set, order)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) createTestCase(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body testCasePayload
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.svc.CreateTestCase(r.Context(), workspaceID, body.Title, body.Description, body.Properties)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) getTestCase(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	testCaseID, err := pathID(r, "testCaseId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	testCase, err := h.svc.GetTestCase(r.Context(), workspaceID, testCaseID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, testCase)
}

func (h *Handler) deleteTestCase(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	testCaseID, err := pathID(r, "testCaseId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteTestCase(r.Context(), workspaceID, testCaseID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) testCaseInputs(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	testCaseID, err := pathID(r, "testCaseId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	inputs, err := h.svc.InputDomains(r.Context(), workspaceID, testCaseID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inputs)
}

func (h *Handler) setTestCaseProperty(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	testCaseID, err := pathID(r, "testCaseId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	propertyID, err := pathID(r, "propertyId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body propertyValuePayload
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.svc.SetTestCaseProperty(r.Context(), workspaceID, testCaseID, propertyID, body.Value)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) listTestRuns(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	runs, err := h.svc.ListTestRuns(r.Context(), workspaceID, domain.NewFilterSet().WithSearchQuery(r.URL.Query().Get("q")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) createTestRun(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body testRunPayload
	if err := decode(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	run, err := h.svc.CreateTestRun(r.Context(), workspaceID, body.Title, body.Description, body.Properties, selection.New(body.TestCaseIDs...))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

func (h *Handler) getTestRun(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	testRunID, err := pathID(r, "testRunId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	run, err := h.svc.GetTestRun(r.Context(), workspaceID, testRunID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := testRunResponse{TestRun: run, TestCases: []domain.TestCase{}}
	if loader := testcaseloader.FromContext(r.Context()); loader != nil {
		cases, err := loader.LoadMany(r.Context(), run.TestCaseIDs)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		for _, tc := range cases {
			if tc.WorkspaceID == workspaceID {
				resp.TestCases = append(resp.TestCases, tc)
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) deleteTestRun(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	testRunID, err := pathID(r, "testRunId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteTestRun(r.Context(), workspaceID, testRunID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func scopedWorkspace(r *http.Request) (uuid.UUID, error) {
	workspaceID, err := pathID(r, "workspaceId")
	if err != nil {
		return uuid.Nil, err
	}
	if err := auth.EnforceWorkspaceScope(r.Context(), workspaceID); err != nil {
		return uuid.Nil, err
	}
	return workspaceID, nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s: %v", errBadRequest, name, err)
	}
	return id, nil
}

func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}
