package docstore

import (
	"errors"
	"math"
	"strconv"
)

// Default page parameters used when the caller sends none (or garbage).
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// Window is a (page, limit) slice of a collection. Pages start at 1.
type Window struct {
	Page  int
	Limit int
}

// ParseWindow reads page and limit query values. Only the leading digits
// count, so "2.5" is page 2. Missing, non-numeric or non-positive values
// fall back to DefaultPage and DefaultLimit.
func ParseWindow(page, limit string) Window {
	return Window{
		Page:  positiveOr(page, DefaultPage),
		Limit: positiveOr(limit, DefaultLimit),
	}
}

// Offset is the number of documents skipped before the window. It
// saturates at math.MaxInt64 so a huge page lands past the end.
func (w Window) Offset() int64 {
	if w.Page <= 1 || w.Limit <= 0 {
		return 0
	}
	pages, limit := int64(w.Page-1), int64(w.Limit)
	if pages > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return pages * limit
}

// TotalPages is ceil(total/limit).
func (w Window) TotalPages(total int64) int64 {
	if w.Limit <= 0 || total <= 0 {
		return 0
	}
	limit := int64(w.Limit)
	return (total + limit - 1) / limit
}

// FindOptions converts the window into Find options.
func (w Window) FindOptions() FindOptions {
	return FindOptions{Skip: w.Offset(), Limit: int64(w.Limit)}
}

func positiveOr(s string, def int) int {
	n, err := strconv.Atoi(leadingInt(s))
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return n
	}
	if err != nil || n < 1 {
		return def
	}
	return n
}

// leadingInt returns the optional sign and digits at the start of s,
// after leading whitespace.
func leadingInt(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return ""
	}
	return s[start:i]
}
