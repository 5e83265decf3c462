package shared

import (
	"net/http"
	"strconv"
)

type Pagination struct {
	Limit  int
	Offset int
}

func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	limit := defaultLimit
	offset := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return Pagination{Limit: limit, Offset: offset}
}

// ParseYear falls back when the query parameter is absent or invalid.
func ParseYear(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return fallback
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 2999 {
		return fallback
	}
	return year
}
