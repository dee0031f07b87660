package utils

import (
	"strconv"
	"time"
)

func formatDate(t *time.Time) string {
	if t == nil {
		return "an unknown date"
	}
	return t.Format("02 Jan 2006")
}

// ParseID reads a positive numeric id from a route parameter.
func ParseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
