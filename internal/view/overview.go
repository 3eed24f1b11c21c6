package view

import (
	"time"

	"shobdo-cli/internal/model"
)

// Overview is the dashboard landing view.
type Overview struct {
	TotalDramas    int           `json:"totalDramas"`
	UpcomingDramas int           `json:"upcomingDramas"`
	TotalContacts  int           `json:"totalContacts"`
	ShowContacts   bool          `json:"showContacts"`
	Upcoming       []model.Drama `json:"upcoming"`
}

// BuildOverview derives the overview from fetched lists. contacts is nil when the
// viewer may not see contacts.
func BuildOverview(dramas []model.Drama, contacts []model.Contact, now time.Time) Overview {
	return Overview{
		TotalDramas:    len(dramas),
		UpcomingDramas: UpcomingCount(dramas, now),
		TotalContacts:  len(contacts),
		ShowContacts:   contacts != nil,
		Upcoming:       TopUpcoming(dramas, OverviewLimit, now),
	}
}

// DramaRow is one rendered drama line.
type DramaRow struct {
	Drama  model.Drama `json:"drama"`
	Status DateStatus  `json:"status"`
	Date   string      `json:"date"`
	Badge  string      `json:"badge"`
}

func DramaRows(list []model.Drama, now time.Time) []DramaRow {
	out := make([]DramaRow, 0, len(list))
	for _, d := range list {
		st := ClassifyByDate(d.DisplayDate, now)
		out = append(out, DramaRow{Drama: d, Status: st, Date: FormatDate(d.DisplayDate), Badge: StatusLabel(st)})
	}
	return out
}

// Counts summarises a filtered drama list.
type Counts struct {
	Total    int `json:"total"`
	Upcoming int `json:"upcoming"`
}

func CountDramas(list []model.Drama, now time.Time) Counts {
	return Counts{Total: len(list), Upcoming: UpcomingCount(list, now)}
}
