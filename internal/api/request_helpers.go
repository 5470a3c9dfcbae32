package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/phrazzld/confhub/internal/domain"
)

// queryInt64 parses the named query parameter. A missing parameter yields 0.
func queryInt64(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", domain.ErrInvalidID)
	}
	return v, nil
}

// queryOptional returns the named query parameter and whether it was present.
func queryOptional(r *http.Request, name string) (string, bool) {
	values, ok := r.URL.Query()[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}
