package store

import (
	"testing"

	"github.com/avero-hq/avero/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTask(t *testing.T, name string) model.Task {
	t.Helper()
	task, err := model.NewTask(model.TaskInput{
		Name:            name,
		Assignee:        "Bob",
		EstimatedStart:  "2024-02-01",
		EstimatedFinish: "2024-02-03",
	})
	require.NoError(t, err)
	return task
}

func TestAppointments(t *testing.T) {
	t.Run("single appointment", func(t *testing.T) {
		s := New()
		appt, err := model.NewAppointment("2024-05-01", "10:00", "Consultation", "Alice")
		require.NoError(t, err)

		s.AddAppointment(appt)

		got := s.Appointments()
		require.Len(t, got, 1)
		assert.Equal(t, "2024-05-01", got[0].Date.Format(model.DateLayout))
		assert.Equal(t, "10:00", got[0].Time.String())
		assert.Equal(t, "Consultation", got[0].Description)
		assert.Equal(t, "Alice", got[0].Assignee)
	})

	t.Run("insertion order and duplicates kept", func(t *testing.T) {
		s := New()
		descriptions := []string{"b", "a", "c", "a"}
		for _, d := range descriptions {
			appt, err := model.NewAppointment("2024-05-01", "09:30", d, "")
			require.NoError(t, err)
			s.AddAppointment(appt)
		}

		got := s.Appointments()
		require.Len(t, got, 4)
		for i, d := range descriptions {
			assert.Equal(t, d, got[i].Description)
		}
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		s := New()
		appt, err := model.NewAppointment("2024-05-01", "09:30", "x", "")
		require.NoError(t, err)
		s.AddAppointment(appt)

		got := s.Appointments()
		got[0].Description = "changed"
		assert.Equal(t, "x", s.Appointments()[0].Description)
	})
}

func TestTasks(t *testing.T) {
	t.Run("indices are sequential and stable", func(t *testing.T) {
		s := New()
		names := []string{"paint", "plaster", "clean"}
		for i, n := range names {
			assert.Equal(t, i, s.AddTask(mustTask(t, n)))
		}

		require.NoError(t, s.SetTaskComplete(1, true))

		got := s.Tasks()
		require.Len(t, got, 3)
		for i, n := range names {
			assert.Equal(t, n, got[i].Name)
		}
		assert.False(t, got[0].Complete)
		assert.True(t, got[1].Complete)
		assert.False(t, got[2].Complete)
	})

	t.Run("adding a task keeps earlier flags and indices", func(t *testing.T) {
		s := New()
		first := s.AddTask(mustTask(t, "paint"))
		require.NoError(t, s.SetTaskComplete(first, true))
		second := s.AddTask(mustTask(t, "plaster"))

		assert.Equal(t, 0, first)
		assert.Equal(t, 1, second)

		got := s.Tasks()
		require.Len(t, got, 2)
		assert.Equal(t, "paint", got[0].Name)
		assert.True(t, got[0].Complete)
		assert.Equal(t, "plaster", got[1].Name)
		assert.False(t, got[1].Complete)
	})

	t.Run("added tasks start incomplete", func(t *testing.T) {
		s := New()
		task := mustTask(t, "roof")
		task.Complete = true
		i := s.AddTask(task)

		got, err := s.Task(i)
		require.NoError(t, err)
		assert.False(t, got.Complete)
	})

	t.Run("toggle is idempotent", func(t *testing.T) {
		s := New()
		i := s.AddTask(mustTask(t, "roof"))

		require.NoError(t, s.SetTaskComplete(i, true))
		once := s.Tasks()
		require.NoError(t, s.SetTaskComplete(i, true))
		assert.Equal(t, once, s.Tasks())

		require.NoError(t, s.SetTaskComplete(i, false))
		got, err := s.Task(i)
		require.NoError(t, err)
		assert.False(t, got.Complete)
	})

	t.Run("unknown index", func(t *testing.T) {
		s := New()
		s.AddTask(mustTask(t, "a"))
		s.AddTask(mustTask(t, "b"))
		before := s.Tasks()

		for _, idx := range []int{99, 2, -1} {
			err := s.SetTaskComplete(idx, true)
			require.ErrorIs(t, err, ErrIndexOutOfRange)
			_, err = s.Task(idx)
			require.ErrorIs(t, err, ErrIndexOutOfRange)
		}
		assert.Contains(t, s.SetTaskComplete(99, true).Error(), "index 99, 2 tasks")
		assert.Equal(t, before, s.Tasks())
	})

	t.Run("empty store", func(t *testing.T) {
		s := New()
		assert.Empty(t, s.Tasks())
		assert.Empty(t, s.Appointments())
		assert.ErrorIs(t, s.SetTaskComplete(0, true), ErrIndexOutOfRange)
	})
}
