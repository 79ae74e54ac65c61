package storage

import (
	"time"
)

type RecurrencePattern string

const (
	RecurrenceNone    RecurrencePattern = "none"
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
	RecurrenceYearly  RecurrencePattern = "yearly"
)

const (
	DefaultColor           = "#3b82f6"
	DefaultReminderMinutes = 10
)

// EventColors is the fixed palette accepted for Event.Color.
var EventColors = []string{
	"#3b82f6", // blue
	"#ef4444", // red
	"#10b981", // green
	"#f59e0b", // orange
	"#8b5cf6", // purple
	"#ec4899", // pink
}

func ValidColor(color string) bool {
	for _, c := range EventColors {
		if c == color {
			return true
		}
	}
	return false
}

func ValidRecurrence(p RecurrencePattern) bool {
	switch p {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// Event is a single calendar entry. RecurrencePattern is stored as submitted
// but never expanded into occurrences; only the stored StartTime/EndTime
// instance is ever placed on a grid.
type Event struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Description       string            `json:"description,omitempty"`
	StartTime         time.Time         `json:"startTime"`
	EndTime           time.Time         `json:"endTime"`
	Location          string            `json:"location,omitempty"`
	Color             string            `json:"color"`
	ReminderMinutes   int32             `json:"reminderMinutes"`
	RecurrencePattern RecurrencePattern `json:"recurrencePattern"`
	RecurrenceEndDate *time.Time        `json:"recurrenceEndDate,omitempty"`
	OwnerID           string            `json:"ownerId"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// EventPatch is a sparse update: nil fields leave the stored value unchanged.
// Owner and ID are deliberately absent, they are never client-settable.
type EventPatch struct {
	Title             *string            `json:"title"`
	Description       *string            `json:"description"`
	StartTime         *time.Time         `json:"startTime"`
	EndTime           *time.Time         `json:"endTime"`
	Location          *string            `json:"location"`
	Color             *string            `json:"color"`
	ReminderMinutes   *int32             `json:"reminderMinutes"`
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern"`
	RecurrenceEndDate *time.Time         `json:"recurrenceEndDate"`
}

// Apply merges the patch into e field by field.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	if p.ReminderMinutes != nil {
		e.ReminderMinutes = *p.ReminderMinutes
	}
	if p.RecurrencePattern != nil {
		e.RecurrencePattern = *p.RecurrencePattern
	}
	if p.RecurrenceEndDate != nil {
		e.RecurrenceEndDate = p.RecurrenceEndDate
	}
}
