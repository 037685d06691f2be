package repository

import "fmt"

func errorf(base error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", base, fmt.Sprintf(format, args...))
}

func expectOneRow(affected int64, what string, id any) error {
	if affected == 0 {
		return errorf(ErrNotFound, "%s %v", what, id)
	}
	return nil
}
