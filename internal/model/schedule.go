package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors for schedule entries.
var (
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidTime = errors.New("invalid time")
	ErrMissingName = errors.New("missing name")
)

// ClockTime is a time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses an "HH:MM" string.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Appointment is a scheduled visit. Appointments are never modified after creation.
type Appointment struct {
	Date        time.Time
	Description string
	Assignee    string // empty when unassigned
	Time        ClockTime
}

// NewAppointment builds an appointment from its textual form.
func NewAppointment(date, clock, description, assignee string) (Appointment, error) {
	d, err := ParseDate(date)
	if err != nil {
		return Appointment{}, err
	}
	c, err := ParseClockTime(clock)
	if err != nil {
		return Appointment{}, err
	}
	return Appointment{
		Date:        d,
		Time:        c,
		Description: strings.TrimSpace(description),
		Assignee:    strings.TrimSpace(assignee),
	}, nil
}

// Task is an item on the task board. Only Complete changes after creation.
type Task struct {
	EstimatedStart  time.Time
	EstimatedFinish time.Time
	ActualStart     time.Time
	ActualFinish    time.Time
	Name            string
	Assignee        string
	Complete        bool
}

// TaskInput is the textual form of a new task. Empty actual dates fall back
// to the estimated ones.
type TaskInput struct {
	Name            string
	Assignee        string
	EstimatedStart  string
	EstimatedFinish string
	ActualStart     string
	ActualFinish    string
}

// NewTask parses a task from its textual form.
func NewTask(in TaskInput) (Task, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Task{}, ErrMissingName
	}

	estStart, err := ParseDate(in.EstimatedStart)
	if err != nil {
		return Task{}, fmt.Errorf("estimated start: %w", err)
	}
	estFinish, err := ParseDate(in.EstimatedFinish)
	if err != nil {
		return Task{}, fmt.Errorf("estimated finish: %w", err)
	}

	actStart, actFinish := estStart, estFinish
	if strings.TrimSpace(in.ActualStart) != "" {
		if actStart, err = ParseDate(in.ActualStart); err != nil {
			return Task{}, fmt.Errorf("actual start: %w", err)
		}
	}
	if strings.TrimSpace(in.ActualFinish) != "" {
		if actFinish, err = ParseDate(in.ActualFinish); err != nil {
			return Task{}, fmt.Errorf("actual finish: %w", err)
		}
	}

	return Task{
		Name:            name,
		Assignee:        strings.TrimSpace(in.Assignee),
		EstimatedStart:  estStart,
		EstimatedFinish: estFinish,
		ActualStart:     actStart,
		ActualFinish:    actFinish,
	}, nil
}
