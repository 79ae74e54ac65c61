// Package ical serializes a user's events into an iCalendar document so the
// planner can be imported into other calendar clients.
package ical

import (
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/avolkov/dayplanner/internal/storage"
)

const productID = "-//dayplanner//calendar//EN"

// Export renders events as a VCALENDAR. Recurring events are exported as
// their single stored instance, the pattern is not expanded.
func Export(events []storage.Event) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	now := time.Now()
	for _, e := range events {
		ev := cal.AddEvent(e.ID)
		ev.SetDtStampTime(now)
		ev.SetCreatedTime(e.CreatedAt)
		ev.SetModifiedAt(e.UpdatedAt)
		ev.SetStartAt(e.StartTime)
		ev.SetEndAt(e.EndTime)
		ev.SetSummary(e.Title)
		if e.Description != "" {
			ev.SetDescription(e.Description)
		}
		if e.Location != "" {
			ev.SetLocation(e.Location)
		}
	}
	return cal.Serialize()
}
