package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestEnforceWorkspaceScope(t *testing.T) {
	workspaceID := uuid.New()

	if err := EnforceWorkspaceScope(context.Background(), uuid.Nil); !errors.Is(err, ErrWorkspaceRequired) {
		t.Fatalf("expected ErrWorkspaceRequired, got %v", err)
	}

	if err := EnforceWorkspaceScope(context.Background(), workspaceID); err != nil {
		t.Fatalf("unscoped context should allow any workspace, got %v", err)
	}

	ctx := ContextWithWorkspaceID(context.Background(), workspaceID)
	if err := EnforceWorkspaceScope(ctx, workspaceID); err != nil {
		t.Fatalf("matching scope rejected: %v", err)
	}
	if err := EnforceWorkspaceScope(ctx, uuid.New()); !errors.Is(err, ErrScopeMismatch) {
		t.Fatalf("expected ErrScopeMismatch, got %v", err)
	}
}

func TestWorkspaceIDFromContextIgnoresNil(t *testing.T) {
	ctx := ContextWithWorkspaceID(context.Background(), uuid.Nil)
	if _, ok := WorkspaceIDFromContext(ctx); ok {
		t.Fatalf("nil workspace id must not count as a scope")
	}
}
