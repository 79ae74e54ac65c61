package app

import (
	"context"
	"testing"
	"time"

	"github.com/avolkov/dayplanner/internal/auth"
	"github.com/avolkov/dayplanner/internal/storage"
	memorystorage "github.com/avolkov/dayplanner/internal/storage/memory"
	"github.com/stretchr/testify/require"
)

func newTestApp() *App {
	return New(memorystorage.New(), auth.NewTokenManager("test-secret", time.Hour))
}

func ptr[T any](v T) *T {
	return &v
}

func eventFields(start time.Time) storage.EventPatch {
	return storage.EventPatch{
		Title:     ptr("Standup"),
		StartTime: ptr(start),
		EndTime:   ptr(start.Add(30 * time.Minute)),
	}
}

func TestAuthFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("register issues a working token", func(t *testing.T) {
		a := newTestApp()
		token, user, err := a.Register(ctx, "User@Example.com", "secret123")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.Equal(t, "user@example.com", user.Email)

		userID, err := a.Authenticate(token)
		require.NoError(t, err)
		require.Equal(t, user.ID, userID)

		profile, err := a.GetProfile(ctx, userID)
		require.NoError(t, err)
		require.Equal(t, user.Email, profile.Email)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		a := newTestApp()
		_, _, err := a.Register(ctx, "user@example.com", "secret123")
		require.NoError(t, err)
		_, _, err = a.Register(ctx, "USER@example.com", "another")
		require.ErrorIs(t, err, storage.ErrDuplicateUser)
	})

	t.Run("missing fields", func(t *testing.T) {
		a := newTestApp()
		_, _, err := a.Register(ctx, "", "secret123")
		require.ErrorIs(t, err, storage.ErrIncorrectUser)
		_, _, err = a.Register(ctx, "user@example.com", "")
		require.ErrorIs(t, err, storage.ErrIncorrectUser)
	})

	t.Run("login", func(t *testing.T) {
		a := newTestApp()
		_, _, err := a.Register(ctx, "user@example.com", "secret123")
		require.NoError(t, err)

		token, user, err := a.Login(ctx, "user@example.com", "secret123")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.Equal(t, "user@example.com", user.Email)
	})

	t.Run("wrong password and unknown email are identical", func(t *testing.T) {
		a := newTestApp()
		_, _, err := a.Register(ctx, "user@example.com", "secret123")
		require.NoError(t, err)

		_, _, wrongPass := a.Login(ctx, "user@example.com", "wrong")
		_, _, unknown := a.Login(ctx, "nobody@example.com", "secret123")
		require.ErrorIs(t, wrongPass, auth.ErrInvalidCredentials)
		require.ErrorIs(t, unknown, auth.ErrInvalidCredentials)
		require.Equal(t, wrongPass.Error(), unknown.Error())
	})
}

func TestEvents(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

	t.Run("create applies defaults", func(t *testing.T) {
		a := newTestApp()
		e, err := a.CreateEvent(ctx, "owner-a", eventFields(start))
		require.NoError(t, err)
		require.NotEmpty(t, e.ID)
		require.Equal(t, "owner-a", e.OwnerID)
		require.Equal(t, storage.DefaultColor, e.Color)
		require.Equal(t, int32(storage.DefaultReminderMinutes), e.ReminderMinutes)
		require.Equal(t, storage.RecurrenceNone, e.RecurrencePattern)
		require.False(t, e.CreatedAt.IsZero())
	})

	t.Run("create ignores client-side owner", func(t *testing.T) {
		a := newTestApp()
		e, err := a.CreateEvent(ctx, "owner-a", eventFields(start))
		require.NoError(t, err)

		_, err = a.GetEvent(ctx, "owner-b", e.ID)
		require.ErrorIs(t, err, storage.ErrNotFoundEvent)
	})

	t.Run("create round-trip preserves fields", func(t *testing.T) {
		a := newTestApp()
		fields := eventFields(start)
		fields.Description = ptr("daily sync")
		fields.Location = ptr("room 4")
		fields.Color = ptr("#ef4444")
		fields.ReminderMinutes = ptr(int32(0))
		fields.RecurrencePattern = ptr(storage.RecurrenceWeekly)
		fields.RecurrenceEndDate = ptr(start.AddDate(0, 1, 0))

		created, err := a.CreateEvent(ctx, "owner-a", fields)
		require.NoError(t, err)

		got, err := a.GetEvent(ctx, "owner-a", created.ID)
		require.NoError(t, err)
		require.Equal(t, created, got)
		require.Equal(t, "daily sync", got.Description)
		require.Equal(t, "room 4", got.Location)
		require.Equal(t, "#ef4444", got.Color)
		require.Equal(t, int32(0), got.ReminderMinutes)
		require.Equal(t, storage.RecurrenceWeekly, got.RecurrencePattern)
		require.NotNil(t, got.RecurrenceEndDate)
	})

	t.Run("validation", func(t *testing.T) {
		a := newTestApp()
		tests := []struct {
			name   string
			fields storage.EventPatch
		}{
			{"missing title", storage.EventPatch{StartTime: ptr(start), EndTime: ptr(start.Add(time.Hour))}},
			{"blank title", storage.EventPatch{Title: ptr("  "), StartTime: ptr(start), EndTime: ptr(start.Add(time.Hour))}},
			{"missing times", storage.EventPatch{Title: ptr("x")}},
			{"bad color", func() storage.EventPatch { f := eventFields(start); f.Color = ptr("#000000"); return f }()},
			{"negative reminder", func() storage.EventPatch { f := eventFields(start); f.ReminderMinutes = ptr(int32(-5)); return f }()},
			{"bad recurrence", func() storage.EventPatch {
				f := eventFields(start)
				f.RecurrencePattern = ptr(storage.RecurrencePattern("hourly"))
				return f
			}()},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := a.CreateEvent(ctx, "owner-a", tt.fields)
				require.ErrorIs(t, err, storage.ErrIncorrectEvent)
			})
		}
	})

	t.Run("end before start is accepted", func(t *testing.T) {
		a := newTestApp()
		fields := eventFields(start)
		fields.EndTime = ptr(start.Add(-time.Hour))
		_, err := a.CreateEvent(ctx, "owner-a", fields)
		require.NoError(t, err)
	})

	t.Run("partial update leaves omitted fields unchanged", func(t *testing.T) {
		a := newTestApp()
		created, err := a.CreateEvent(ctx, "owner-a", eventFields(start))
		require.NoError(t, err)

		updated, err := a.UpdateEvent(ctx, "owner-a", created.ID, storage.EventPatch{
			Title: ptr("Renamed"),
		})
		require.NoError(t, err)
		require.Equal(t, "Renamed", updated.Title)
		require.Equal(t, created.StartTime, updated.StartTime)
		require.Equal(t, created.EndTime, updated.EndTime)
		require.Equal(t, created.Color, updated.Color)
		require.Equal(t, created.CreatedAt, updated.CreatedAt)
	})

	t.Run("update of foreign event is not found", func(t *testing.T) {
		a := newTestApp()
		created, err := a.CreateEvent(ctx, "owner-a", eventFields(start))
		require.NoError(t, err)

		_, err = a.UpdateEvent(ctx, "owner-b", created.ID, storage.EventPatch{Title: ptr("stolen")})
		require.ErrorIs(t, err, storage.ErrNotFoundEvent)
	})

	t.Run("second delete is not found", func(t *testing.T) {
		a := newTestApp()
		created, err := a.CreateEvent(ctx, "owner-a", eventFields(start))
		require.NoError(t, err)

		require.NoError(t, a.RemoveEvent(ctx, "owner-a", created.ID))
		require.ErrorIs(t, a.RemoveEvent(ctx, "owner-a", created.ID), storage.ErrNotFoundEvent)
	})

	t.Run("list never leaks foreign events", func(t *testing.T) {
		a := newTestApp()
		_, err := a.CreateEvent(ctx, "owner-a", eventFields(start))
		require.NoError(t, err)
		_, err = a.CreateEvent(ctx, "owner-b", eventFields(start.Add(time.Hour)))
		require.NoError(t, err)

		events, err := a.ListEvents(ctx, "owner-a")
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, "owner-a", events[0].OwnerID)
	})
}
