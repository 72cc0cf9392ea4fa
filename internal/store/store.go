// Package store holds the appointments and tasks created during a session.
package store

import (
	"errors"
	"fmt"

	"github.com/avero-hq/avero/internal/model"
)

// ErrIndexOutOfRange is returned for a task index that was never issued.
var ErrIndexOutOfRange = errors.New("task index out of range")

// Store is an append-only list of appointments and tasks. Indices returned by
// AddTask stay valid for the life of the store.
// A Store is owned by a single session and is not safe for concurrent use.
type Store struct {
	appointments []model.Appointment
	tasks        []model.Task
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// AddAppointment appends a. Duplicates are kept.
func (s *Store) AddAppointment(a model.Appointment) {
	s.appointments = append(s.appointments, a)
}

// Appointments returns a copy of all appointments in insertion order.
func (s *Store) Appointments() []model.Appointment {
	out := make([]model.Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out
}

// AddTask appends t as not complete and returns its index.
func (s *Store) AddTask(t model.Task) int {
	t.Complete = false
	s.tasks = append(s.tasks, t)
	return len(s.tasks) - 1
}

// SetTaskComplete sets the completion flag of the task at index i.
func (s *Store) SetTaskComplete(i int, complete bool) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.tasks[i].Complete = complete
	return nil
}

// Task returns the task at index i.
func (s *Store) Task(i int) (model.Task, error) {
	if err := s.check(i); err != nil {
		return model.Task{}, err
	}
	return s.tasks[i], nil
}

// Tasks returns a copy of all tasks in insertion order.
func (s *Store) Tasks() []model.Task {
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) check(i int) error {
	if i < 0 || i >= len(s.tasks) {
		return fmt.Errorf("%w: index %d, %d tasks", ErrIndexOutOfRange, i, len(s.tasks))
	}
	return nil
}
