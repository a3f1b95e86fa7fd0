// Package models defines data structures shared across the application.
package models

import (
	"time"
)

// Meeting represents one calendar meeting as produced by a meeting source.
// Date and Hours are derived by the loader and must stay consistent with
// Start and End. Meetings are read-only once loaded; truncation during
// allocation is expressed as a separate allocation record, never by
// editing the meeting.
type Meeting struct {
	// Title is the meeting subject with any source decoration (e.g.
	// "[GMAIL]") already stripped
	Title string `json:"titulo"`

	// RawTitle is the subject exactly as exported
	RawTitle string `json:"titulo_original,omitempty"`

	// Start is the scheduled start time
	Start time.Time `json:"horaInicio"`

	// End is the scheduled end time (End >= Start; equal means a
	// zero-duration meeting)
	End time.Time `json:"horaFin"`

	// Organizer is the organizer's email address
	Organizer string `json:"organizador"`

	// Date is the calendar date of Start, formatted YYYY-MM-DD
	Date string `json:"fecha"`

	// Hours is (End - Start) in hours
	Hours float64 `json:"duracion_horas"`
}

// TaskRequest carries everything needed to create one Task work item.
// Hours is written to both the original-estimate and completed-work
// fields. The request is discarded once the gateway answers.
type TaskRequest struct {
	// Title is the work item title
	Title string

	// Description is the work item description body
	Description string

	// Assignee is the display name of the assigned user
	Assignee string

	// Hours is the estimated and completed work in hours
	Hours float64

	// TargetDate is the day the work is accounted against
	TargetDate time.Time

	// FinishTime is the finish timestamp; if its day differs from
	// TargetDate the gateway realigns it onto TargetDate
	FinishTime time.Time

	// EnablerID is the parent weekly enabler to link the task under
	EnablerID int
}

// CreatedTask is a successfully registered task, merged from the
// originating meeting or filler request plus the gateway response.
type CreatedTask struct {
	Title       string  `json:"titulo"`
	Description string  `json:"descripcion,omitempty"`
	Hours       float64 `json:"duracion_horas"`
	ID          int     `json:"id"`
	URL         string  `json:"url,omitempty"`
}

// WorkItem is the read model for a tracker work item.
type WorkItem struct {
	// ID is the numeric work item id
	ID int

	// Type is the work item type (e.g. "Task", "Enabler")
	Type string

	// Title is the work item title
	Title string

	// State is the current workflow state (e.g. "New", "Closed")
	State string

	// AssignedTo is the display name of the assignee
	AssignedTo string

	// Hours is the original-estimate or completed-work value,
	// depending on the query that produced the item
	Hours float64

	// HasChildren reports whether the item carries forward hierarchy
	// links (used to skip enablers that delegate to child tasks)
	HasChildren bool
}

// DayHours summarizes the hours already logged for a user on a date.
type DayHours struct {
	Total float64       `json:"total_horas"`
	Items []LoggedEntry `json:"items"`
}

// LoggedEntry is one counted work item inside a DayHours summary.
type LoggedEntry struct {
	ID    int     `json:"id"`
	Type  string  `json:"tipo"`
	Title string  `json:"titulo"`
	Hours float64 `json:"horas"`
}

// EnablerHours reports the hours registered under a specific weekly
// enabler on a date, with a coarse completion status.
type EnablerHours struct {
	Tasks  []EnablerTaskEntry `json:"tareas"`
	Total  float64            `json:"total_horas"`
	Status string             `json:"estado"`
}

// EnablerTaskEntry is one task counted toward an enabler's hours.
type EnablerTaskEntry struct {
	ID    int     `json:"id"`
	Title string  `json:"titulo"`
	State string  `json:"estado"`
	Hours float64 `json:"horas"`
}
