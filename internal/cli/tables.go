package cli

import (
	"strconv"
	"time"

	"shobdo-cli/internal/model"
	"shobdo-cli/internal/view"

	"github.com/charmbracelet/x/ansi"
)

const smsPreviewWidth = 40

type dramaTable []view.DramaRow

func (t dramaTable) TableHeaders() []string {
	return []string{"ID", "NAME", "DATE", "STATUS", "SMS"}
}

func (t dramaTable) TableRows() [][]string {
	out := make([][]string, 0, len(t))
	for _, r := range t {
		out = append(out, []string{r.Drama.ID, r.Drama.DramaName, r.Date, r.Badge, ansi.Truncate(r.Drama.CustomSMS, smsPreviewWidth, "…")})
	}
	return out
}

type contactTable []model.Contact

func (t contactTable) TableHeaders() []string { return []string{"ID", "NAME", "MOBILE"} }

func (t contactTable) TableRows() [][]string {
	out := make([][]string, 0, len(t))
	for _, c := range t {
		out = append(out, []string{c.ID, c.Name, c.MobileNumber})
	}
	return out
}

type activityTable []model.Activity

func (t activityTable) TableHeaders() []string {
	return []string{"TIME", "ACTOR", "KIND", "TARGET", "OK", "MESSAGE"}
}

func (t activityTable) TableRows() [][]string {
	out := make([][]string, 0, len(t))
	for _, a := range t {
		out = append(out, []string{a.TS.Local().Format(time.DateTime), a.Actor, a.Kind, a.Target, strconv.FormatBool(a.OK), a.Message})
	}
	return out
}

// overviewOut renders as JSON like view.Overview and as a metric table.
type overviewOut struct {
	view.Overview
}

func (o overviewOut) TableHeaders() []string { return []string{"", ""} }

func (o overviewOut) TableRows() [][]string {
	rows := [][]string{
		{"Total dramas", strconv.Itoa(o.TotalDramas)},
		{"Upcoming", strconv.Itoa(o.UpcomingDramas)},
	}
	if o.ShowContacts {
		rows = append(rows, []string{"Contacts", strconv.Itoa(o.TotalContacts)})
	}
	for _, d := range o.Upcoming {
		rows = append(rows, []string{view.FormatDate(d.DisplayDate), d.DramaName})
	}
	return rows
}
