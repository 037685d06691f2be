package middleware

import (
	"net/http"

	"github.com/rpattn/testplan/internal/repository"
	"github.com/rpattn/testplan/internal/testcaseloader"
)

// DataLoaderMiddleware attaches a fresh test case loader to the request context
func DataLoaderMiddleware(repo repository.TestCaseRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := testcaseloader.WithLoader(r.Context(), testcaseloader.New(repo))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
