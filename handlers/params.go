package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// parsePagination reads page/limit query parameters and clamps them to
// page >= 1 and 1 <= limit <= 100.
func parsePagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// parseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC 3339", s)
}

// parseDateRange reads the inclusive from/to window. Empty parameters
// leave the corresponding bound open.
func parseDateRange(c echo.Context) (from, to time.Time, err error) {
	if s := c.QueryParam("from"); s != "" {
		if from, err = parseDate(s); err != nil {
			return
		}
	}
	if s := c.QueryParam("to"); s != "" {
		if to, err = parseDate(s); err != nil {
			return
		}
	}
	return
}
