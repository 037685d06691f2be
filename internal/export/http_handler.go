package export

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rpattn/testplan/internal/auth"
	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/repository"
	"github.com/rpattn/testplan/internal/schema"
	"github.com/rpattn/testplan/internal/service"
)

// Source provides the schema and filtered test cases of a workspace.
type Source interface {
	LoadSchema(ctx context.Context, workspaceID uuid.UUID) (*schema.Schema, error)
	ListTestCases(ctx context.Context, workspaceID uuid.UUID, set domain.FilterSet, order domain.TestCaseSort) (service.TestCaseList, error)
}

// Handler streams a workspace export. The format follows the request path
// extension and may be overridden with ?format=.
type Handler struct {
	source Source
	logger *zap.Logger
}

// NewHTTPHandler creates an export handler. The route must define a
// {workspaceId} wildcard.
func NewHTTPHandler(source Source, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{source: source, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workspaceID, err := uuid.Parse(r.PathValue("workspaceId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid workspace id: %v", err), http.StatusBadRequest)
		return
	}
	if err := auth.EnforceWorkspaceScope(r.Context(), workspaceID); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	formatHint := r.URL.Query().Get("format")
	if formatHint == "" {
		formatHint = r.URL.Path
	}
	format, err := ParseFormat(formatHint)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := domain.ParseTestCaseSort(r.URL.Query().Get("sort"), r.URL.Query().Get("direction"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sch, err := h.source.LoadSchema(r.Context(), workspaceID)
	if err != nil {
		h.fail(w, err)
		return
	}
	set := domain.NewFilterSet().WithSearchQuery(strings.TrimSpace(r.URL.Query().Get("q")))
	list, err := h.source.ListTestCases(r.Context(), workspaceID, set, order)
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "test-cases."+string(format)))
	if err := Write(w, format, sch, list.Items); err != nil {
		h.logger.Error("export failed",
			zap.Stringer("workspace_id", workspaceID),
			zap.String("format", string(format)),
			zap.Error(err))
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.logger.Error("export failed", zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}
