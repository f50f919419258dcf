package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire and display format of task dates.
const DateLayout = "2006-01-02"

var ErrTaskNotFound = fmt.Errorf("task %w", ErrNotFound)

// Task is a unit of work assigned to a user.
type Task struct {
	ID               int64
	OwnerID          int64
	Name             string
	RegistrationDate time.Time
	DueDate          time.Time
	Completed        bool

	// OwnerName is filled by store reads that join the owning user.
	OwnerName string
}

// Overdue reports whether an incomplete task is past its due date on today.
func (t *Task) Overdue(today time.Time) bool {
	return !t.Completed && t.DueDate.Before(Date(today))
}

// Date truncates t to a calendar date at midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Date(t), nil
}

// FilterKind selects which tasks a listing returns.
type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterCompleted
	FilterIncomplete
	FilterSearch
)

func (k FilterKind) String() string {
	switch k {
	case FilterCompleted:
		return "completed"
	case FilterIncomplete:
		return "incomplete"
	case FilterSearch:
		return "search"
	default:
		return "all"
	}
}

// TaskFilter is the listing criterion. Term is only used by FilterSearch and
// matches case-insensitively against the task name or the owner's name.
// Results are always ordered by due date ascending, then id.
type TaskFilter struct {
	Kind FilterKind
	Term string
}
