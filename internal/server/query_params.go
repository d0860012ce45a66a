package server

import (
	"strings"
	"time"

	"github.com/smallbiznis/referralhub/pkg/db/pagination"
)

const dateOnlyLayout = "2006-01-02"

type listQuery struct {
	pagination.Pagination
	Status string `form:"status"`
	Search string `form:"search"`
}

// parseOptionalTime accepts RFC3339 timestamps and plain dates. Plain dates
// are read as midnight UTC.
func parseOptionalTime(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		parsed = parsed.UTC()
		return &parsed, nil
	}
	parsed, err := time.Parse(dateOnlyLayout, trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
