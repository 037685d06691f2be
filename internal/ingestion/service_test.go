package ingestion

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/schema"
)

func newTestSchema(t *testing.T) (*schema.Schema, domain.PropertyConfiguration, domain.PropertyConfiguration) {
	t.Helper()
	workspaceID := uuid.New()
	priority := domain.NewPropertyConfiguration(workspaceID, "Priority", domain.PropertyTypeSingleSelect, false).
		WithSelectOptions("High", "Low").
		WithDefaultValue("Low")
	component := domain.NewPropertyConfiguration(workspaceID, "Component", domain.PropertyTypeText, false)
	sch, err := schema.New(workspaceID, priority, component)
	if err != nil {
		t.Fatalf("schema.New returned error: %v", err)
	}
	return sch, priority, component
}

type stubStore struct {
	schema  *schema.Schema
	created []domain.TestCase
}

func (s *stubStore) LoadSchema(ctx context.Context, workspaceID uuid.UUID) (*schema.Schema, error) {
	return s.schema, nil
}

func (s *stubStore) ImportTestCases(ctx context.Context, testCases []domain.TestCase) (int, error) {
	s.created = append(s.created, testCases...)
	return len(testCases), nil
}

func TestServiceImportCSV(t *testing.T) {
	sch, priority, component := newTestSchema(t)
	store := &stubStore{schema: sch}
	service := NewService(store, nil)

	data := "\uFEFFtitle,Description,PRIORITY,component,Owner\n" +
		"Login bug,Password reset,High,auth,alice\n" +
		",,,,\n" +
		"Signup flow,,,web,bob\n" +
		"Checkout,,Blocker,,carol\n" +
		",no title,Low,,dave\n"

	summary, err := service.Import(context.Background(), Request{
		WorkspaceID: sch.WorkspaceID(),
		FileName:    "cases.CSV",
		Data:        strings.NewReader(data),
	})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}

	if summary.TotalRows != 4 || summary.ValidRows != 2 || summary.InvalidRows != 2 || summary.ImportedRows != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.UnmappedColumns) != 1 || summary.UnmappedColumns[0] != "Owner" {
		t.Fatalf("expected Owner to be unmapped, got %v", summary.UnmappedColumns)
	}
	if len(summary.Errors) != 2 || summary.Errors[0].Row != 5 || summary.Errors[0].Column != "PRIORITY" {
		t.Fatalf("unexpected row errors: %+v", summary.Errors)
	}

	if len(store.created) != 2 {
		t.Fatalf("expected 2 stored test cases, got %d", len(store.created))
	}
	login := store.created[0]
	if login.Title != "Login bug" || login.Description != "Password reset" {
		t.Fatalf("unexpected first test case: %+v", login)
	}
	if login.PropertyValues.Resolve(priority.ID) != "High" || login.PropertyValues.Resolve(component.ID) != "auth" {
		t.Fatalf("unexpected values: %v", login.PropertyValues)
	}
	if got := store.created[1].PropertyValues.Resolve(priority.ID); got != "Low" {
		t.Fatalf("expected default Low for blank priority, got %q", got)
	}
}

func TestBuildTestCasesUnsetLabelClearsDefault(t *testing.T) {
	sch, priority, _ := newTestSchema(t)
	table := Table{
		Headers: []string{"Title", "Priority"},
		Rows:    [][]string{{"Cleared", "Not set"}, {"Defaulted", ""}},
	}

	cases, summary, err := BuildTestCases(sch, table)
	if err != nil {
		t.Fatalf("BuildTestCases returned error: %v", err)
	}
	if summary.ValidRows != 2 || len(cases) != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, set := cases[0].PropertyValues.Get(priority.ID); set {
		t.Fatalf("expected the unset label to clear the default, got %v", cases[0].PropertyValues)
	}
	if got := cases[1].PropertyValues.Resolve(priority.ID); got != "Low" {
		t.Fatalf("expected blank cell to keep default Low, got %q", got)
	}
}

func TestServiceImportDryRunStoresNothing(t *testing.T) {
	sch, _, _ := newTestSchema(t)
	store := &stubStore{schema: sch}

	summary, err := NewService(store, nil).Import(context.Background(), Request{
		WorkspaceID: sch.WorkspaceID(),
		FileName:    "cases.csv",
		Data:        strings.NewReader("Title\nOne\nTwo\n"),
		DryRun:      true,
	})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}
	if summary.ValidRows != 2 || summary.ImportedRows != 0 || len(store.created) != 0 {
		t.Fatalf("dry run stored data: %+v", summary)
	}
}

func TestServiceImportXLSX(t *testing.T) {
	sch, priority, _ := newTestSchema(t)
	store := &stubStore{schema: sch}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]interface{}{"Title", "Priority"})
	_ = f.SetSheetRow(sheet, "A2", &[]interface{}{"Login bug", "High"})
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("failed to build workbook: %v", err)
	}

	summary, err := NewService(store, nil).Import(context.Background(), Request{
		WorkspaceID: sch.WorkspaceID(),
		FileName:    "cases.xlsx",
		Data:        &buf,
	})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}
	if summary.ImportedRows != 1 || store.created[0].PropertyValues.Resolve(priority.ID) != "High" {
		t.Fatalf("unexpected result: %+v", summary)
	}
}

func TestBuildTestCasesRequiresTitleColumn(t *testing.T) {
	sch, _, _ := newTestSchema(t)

	_, _, err := BuildTestCases(sch, Table{Headers: []string{"Priority"}, Rows: [][]string{{"High"}}})
	if !errors.Is(err, ErrMissingTitleColumn) {
		t.Fatalf("expected ErrMissingTitleColumn, got %v", err)
	}

	_, _, err = BuildTestCases(sch, Table{Headers: []string{"Title", "priority", "Priority"}})
	if err == nil {
		t.Fatalf("expected duplicate column mapping to fail")
	}
}

func TestParseTableRejectsUnknownFormat(t *testing.T) {
	if _, err := ParseTable("cases.json", []byte("[]")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := ParseTable("cases.csv", nil); err == nil {
		t.Fatalf("expected empty file to fail")
	}
}
