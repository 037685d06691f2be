package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rpattn/testplan/internal/auth"
)

// WorkspaceHeader names the header that scopes a request to one workspace.
const WorkspaceHeader = "X-Workspace-ID"

// WorkspaceScopeMiddleware stores the workspace named by WorkspaceHeader in the
// request context. Requests without the header are unscoped.
func WorkspaceScopeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(WorkspaceHeader))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid "+WorkspaceHeader+" header", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithWorkspaceID(r.Context(), id)))
	})
}
