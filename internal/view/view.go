// Package view derives display state from repository snapshots.
//
// Everything here is pure: the same snapshot, query and clock give the same result.
// "now" is always passed in; dates compare as calendar days in now's location.
package view

import (
	"sort"
	"strings"
	"time"

	"shobdo-cli/internal/model"
)

const isoDate = "2006-01-02"

type DateStatus string

const (
	StatusPast     DateStatus = "past"
	StatusToday    DateStatus = "today"
	StatusUpcoming DateStatus = "upcoming"
)

// ParseDate parses YYYY-MM-DD as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(isoDate, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ClassifyByDate compares a show date with today. Missing or malformed dates are past.
func ClassifyByDate(date string, now time.Time) DateStatus {
	d, ok := ParseDate(date, now.Location())
	if !ok {
		return StatusPast
	}
	today := startOfDay(now)
	switch {
	case d.Equal(today):
		return StatusToday
	case d.After(today):
		return StatusUpcoming
	default:
		return StatusPast
	}
}

// Fields extracts the searchable text of an entity.
type Fields[T any] func(T) []string

func DramaFields(d model.Drama) []string {
	return []string{d.DramaName, d.CustomSMS}
}

func ContactFields(c model.Contact) []string {
	return []string{c.Name, c.MobileNumber}
}

// NormalizeQuery lowercases and trims a search string the way FilterEntities does.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// FilterEntities keeps items whose joined fields contain query, case-insensitively.
// Fields are joined with a newline so a match never spans two fields. An empty query
// returns list itself.
func FilterEntities[T any](list []T, query string, fields Fields[T]) []T {
	q := NormalizeQuery(query)
	if q == "" {
		return list
	}
	out := make([]T, 0, len(list))
	for _, it := range list {
		hay := strings.ToLower(strings.Join(fields(it), "\n"))
		if strings.Contains(hay, q) {
			out = append(out, it)
		}
	}
	return out
}

// IsUpcoming is true for shows today or later.
func IsUpcoming(d model.Drama, now time.Time) bool {
	return ClassifyByDate(d.DisplayDate, now) != StatusPast
}

// TopUpcoming returns at most n shows dated today or later, soonest first. ISO dates
// sort lexicographically in date order; ties keep their input order.
func TopUpcoming(list []model.Drama, n int, now time.Time) []model.Drama {
	if n <= 0 {
		return []model.Drama{}
	}
	out := make([]model.Drama, 0, len(list))
	for _, d := range list {
		if IsUpcoming(d, now) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.TrimSpace(out[i].DisplayDate) < strings.TrimSpace(out[j].DisplayDate)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// UpcomingCount counts shows dated today or later.
func UpcomingCount(list []model.Drama, now time.Time) int {
	n := 0
	for _, d := range list {
		if IsUpcoming(d, now) {
			n++
		}
	}
	return n
}
