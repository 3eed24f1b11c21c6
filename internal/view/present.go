package view

import (
	"fmt"
	"time"
	"unicode/utf8"
)

const (
	// SMSMaxChars is the longest custom SMS the dashboard accepts.
	SMSMaxChars = 500
	// SMSWarnChars is where the counter turns to a warning.
	SMSWarnChars = 400

	// OverviewLimit is how many upcoming shows the overview table lists.
	OverviewLimit = 6
)

// FormatDate renders an ISO date as "10 Mar 2024"; empty input renders as "—".
// Malformed dates are shown as given.
func FormatDate(date string) string {
	d, ok := ParseDate(date, time.UTC)
	if !ok {
		if date == "" {
			return "—"
		}
		return date
	}
	return d.Format("2 Jan 2006")
}

func StatusLabel(s DateStatus) string {
	switch s {
	case StatusToday:
		return "Today"
	case StatusUpcoming:
		return "Upcoming"
	default:
		return "Past"
	}
}

type SMSCount struct {
	Len  int
	Max  int
	Warn bool
	Over bool
}

func (c SMSCount) String() string {
	return fmt.Sprintf("%d/%d", c.Len, c.Max)
}

// SMSCounter counts characters (not bytes): Bangla text is multi-byte.
func SMSCounter(text string) SMSCount {
	n := utf8.RuneCountInString(text)
	return SMSCount{
		Len:  n,
		Max:  SMSMaxChars,
		Warn: n > SMSWarnChars,
		Over: n > SMSMaxChars,
	}
}

// ContactCountLabel is "1 contact", "3 contacts", or "" for none.
func ContactCountLabel(n int) string {
	switch {
	case n <= 0:
		return ""
	case n == 1:
		return "1 contact"
	default:
		return fmt.Sprintf("%d contacts", n)
	}
}

type EmptyState struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// EmptyFor describes an empty list. kind is the plural noun ("dramas", "contacts").
func EmptyFor(kind, query string) EmptyState {
	q := NormalizeQuery(query)
	if q != "" {
		return EmptyState{
			Title:   "No results found",
			Message: fmt.Sprintf("No %s match %q", kind, q),
		}
	}
	switch kind {
	case "dramas":
		return EmptyState{Title: "No dramas yet", Message: "Add your first drama to get started."}
	case "contacts":
		return EmptyState{Title: "No contacts yet", Message: "Add contacts to start sending SMS notifications."}
	case "upcoming":
		return EmptyState{Title: "No upcoming dramas", Message: "All shows have passed or no dramas have been added yet."}
	default:
		return EmptyState{Title: "Nothing here yet"}
	}
}
