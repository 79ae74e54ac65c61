// Package grid lays events out on day, week and month calendar grids.
// All composition is pure and uses wall-clock dates in the anchor's
// location; stored instants are not normalized to any timezone, which is a
// known source of skew when writer and reader sit in different zones.
package grid

import (
	"fmt"
	"sort"
	"time"

	"github.com/avolkov/dayplanner/internal/storage"
	"github.com/avolkov/dayplanner/internal/util"
)

type View string

const (
	ViewDay   View = "day"
	ViewWeek  View = "week"
	ViewMonth View = "month"
)

func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewDay, ViewWeek, ViewMonth:
		return View(s), nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// Weeks start on Sunday, leading/trailing rows of the month grid are filled
// with adjacent-month days.
const firstWeekDay = time.Sunday

// MonthCellCap is the number of events surfaced per month cell; the rest is
// collapsed into the cell's More counter.
const MonthCellCap = 3

type HourBucket struct {
	Hour   int             `json:"hour"`
	Events []storage.Event `json:"events"`
}

type DayGrid struct {
	Date  time.Time    `json:"date"`
	Hours []HourBucket `json:"hours"`
}

type WeekDay struct {
	Date  time.Time    `json:"date"`
	Hours []HourBucket `json:"hours"`
}

type WeekGrid struct {
	Start time.Time `json:"start"`
	Days  []WeekDay `json:"days"`
}

type MonthCell struct {
	Date    time.Time       `json:"date"`
	InMonth bool            `json:"inMonth"`
	Events  []storage.Event `json:"events"`
	More    int             `json:"more"`
}

type MonthGrid struct {
	Year  int            `json:"year"`
	Month time.Month     `json:"month"`
	Weeks [][7]MonthCell `json:"weeks"`
}

// ComposeDay buckets events into the 24 hours of the anchor's calendar day.
// An event lands in exactly one bucket, its start hour; spanning multiple
// hours does not split it, consumers size it by duration.
func ComposeDay(anchor time.Time, events []storage.Event) DayGrid {
	grid := DayGrid{Date: util.TruncateToDay(anchor), Hours: make([]HourBucket, 24)}
	for h := range grid.Hours {
		grid.Hours[h] = HourBucket{Hour: h, Events: make([]storage.Event, 0)}
	}
	for _, e := range events {
		if !util.SameDay(e.StartTime, anchor) {
			continue
		}
		h := e.StartTime.Hour()
		grid.Hours[h].Events = append(grid.Hours[h].Events, e)
	}
	for h := range grid.Hours {
		sortEvents(grid.Hours[h].Events)
	}
	return grid
}

// ComposeWeek builds the 7-day window starting at the Sunday of the anchor's
// week and applies the day-view bucketing per (day, hour) cell.
func ComposeWeek(anchor time.Time, events []storage.Event) WeekGrid {
	start := util.StartOfWeek(anchor, firstWeekDay)
	grid := WeekGrid{Start: start, Days: make([]WeekDay, 7)}
	for i := range grid.Days {
		date := start.AddDate(0, 0, i)
		day := ComposeDay(date, events)
		grid.Days[i] = WeekDay{Date: date, Hours: day.Hours}
	}
	return grid
}

// ComposeMonth builds a rectangle of full weeks covering the anchor's
// calendar month. Cells bucket by start date only; at most MonthCellCap
// events are surfaced per cell, ordered by start time then id.
func ComposeMonth(anchor time.Time, events []storage.Event) MonthGrid {
	monthStart := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)
	start := util.StartOfWeek(monthStart, firstWeekDay)
	end := util.StartOfWeek(monthEnd, firstWeekDay).AddDate(0, 0, 6)

	byDay := make(map[time.Time][]storage.Event)
	for _, e := range events {
		key := util.TruncateToDay(e.StartTime)
		key = time.Date(key.Year(), key.Month(), key.Day(), 0, 0, 0, 0, anchor.Location())
		byDay[key] = append(byDay[key], e)
	}

	grid := MonthGrid{Year: anchor.Year(), Month: anchor.Month()}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 7) {
		var week [7]MonthCell
		for i := 0; i < 7; i++ {
			date := day.AddDate(0, 0, i)
			cellEvents := byDay[date]
			sortEvents(cellEvents)
			more := 0
			if len(cellEvents) > MonthCellCap {
				more = len(cellEvents) - MonthCellCap
				cellEvents = cellEvents[:MonthCellCap]
			}
			if cellEvents == nil {
				cellEvents = make([]storage.Event, 0)
			}
			week[i] = MonthCell{
				Date:    date,
				InMonth: date.Month() == anchor.Month(),
				Events:  cellEvents,
				More:    more,
			}
		}
		grid.Weeks = append(grid.Weeks, week)
	}
	return grid
}

// sortEvents orders a bucket by start time ascending with the event id as a
// tie-break, giving a total order independent of input order.
func sortEvents(events []storage.Event) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].StartTime.Equal(events[j].StartTime) {
			return events[i].StartTime.Before(events[j].StartTime)
		}
		return events[i].ID < events[j].ID
	})
}
