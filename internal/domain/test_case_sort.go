package domain

import "fmt"

// SortDirection represents ordering direction for sortable fields.
type SortDirection string

const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

// TestCaseSortField enumerates fields that can be sorted when listing test cases.
type TestCaseSortField string

const (
	TestCaseSortFieldCreatedAt TestCaseSortField = "created_at"
	TestCaseSortFieldUpdatedAt TestCaseSortField = "updated_at"
	TestCaseSortFieldTitle     TestCaseSortField = "title"
)

// TestCaseSort captures ordering preferences for test case listings. The
// filter engine never reorders; this only applies when loading from storage.
type TestCaseSort struct {
	Field     TestCaseSortField
	Direction SortDirection
}

// DefaultTestCaseSort lists oldest test cases first.
func DefaultTestCaseSort() TestCaseSort {
	return TestCaseSort{Field: TestCaseSortFieldCreatedAt, Direction: SortDirectionAsc}
}

// ParseTestCaseSort parses a field and direction, falling back to defaults for blanks.
func ParseTestCaseSort(field, direction string) (TestCaseSort, error) {
	sort := DefaultTestCaseSort()
	switch TestCaseSortField(field) {
	case "":
	case TestCaseSortFieldCreatedAt, TestCaseSortFieldUpdatedAt, TestCaseSortFieldTitle:
		sort.Field = TestCaseSortField(field)
	default:
		return TestCaseSort{}, fmt.Errorf("unsupported sort field %q", field)
	}
	switch SortDirection(direction) {
	case "":
	case SortDirectionAsc, SortDirectionDesc:
		sort.Direction = SortDirection(direction)
	default:
		return TestCaseSort{}, fmt.Errorf("unsupported sort direction %q", direction)
	}
	return sort, nil
}
