//go:build sql

package sqlstorage_test

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/avolkov/dayplanner/internal/storage"
	sqlstorage "github.com/avolkov/dayplanner/internal/storage/sql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	host     = "127.0.0.1"
	port     = 5432
	database = "testing"
	username = "postgres"
	password = "pas"
)

func TestMain(m *testing.M) {
	pgHost := os.Getenv("POSTGRES_HOST")
	pgPort := os.Getenv("POSTGRES_PORT")
	if pgHost != "" {
		host = pgHost
	}
	if pgPort != "" {
		port, _ = strconv.Atoi(pgPort)
	}

	os.Exit(m.Run())
}

func createStorage(t *testing.T) *sqlstorage.Storage {
	t.Helper()
	s := sqlstorage.New(sqlstorage.Config{
		Host:     host,
		Port:     port,
		Database: database,
		Username: username,
		Password: password,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	require.NoError(t, s.Connect(ctx))
	t.Cleanup(func() {
		s.Close(context.Background())
	})
	return s
}

func createOwner(t *testing.T, s *sqlstorage.Storage) string {
	t.Helper()
	u := storage.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.AddUser(context.Background(), &u))
	return u.ID
}

func newEvent(owner string, start time.Time) storage.Event {
	now := time.Now()
	return storage.Event{
		Title:             "test",
		Description:       "description",
		StartTime:         start,
		EndTime:           start.Add(time.Hour),
		Color:             storage.DefaultColor,
		ReminderMinutes:   storage.DefaultReminderMinutes,
		RecurrencePattern: storage.RecurrenceNone,
		OwnerID:           owner,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestStorage(t *testing.T) {
	ctx := context.Background()
	initDate := time.Date(2300, 1, 1, 10, 0, 0, 0, time.UTC)

	t.Run("add and get event", func(t *testing.T) {
		s := createStorage(t)
		owner := createOwner(t, s)
		e := newEvent(owner, initDate)
		require.NoError(t, s.AddEvent(ctx, &e))
		require.NotEmpty(t, e.ID)

		got, err := s.GetEvent(ctx, owner, e.ID)
		require.NoError(t, err)
		compareEvents(t, e, got)
	})

	t.Run("ownership is enforced", func(t *testing.T) {
		s := createStorage(t)
		owner := createOwner(t, s)
		other := createOwner(t, s)
		e := newEvent(owner, initDate)
		require.NoError(t, s.AddEvent(ctx, &e))

		_, err := s.GetEvent(ctx, other, e.ID)
		require.ErrorIs(t, err, storage.ErrNotFoundEvent)
		require.ErrorIs(t, s.RemoveEvent(ctx, other, e.ID), storage.ErrNotFoundEvent)
	})

	t.Run("update event", func(t *testing.T) {
		s := createStorage(t)
		owner := createOwner(t, s)
		e := newEvent(owner, initDate)
		require.NoError(t, s.AddEvent(ctx, &e))

		e.Title = "updated title"
		e.StartTime = e.StartTime.Add(21 * time.Minute)
		e.UpdatedAt = time.Now()
		require.NoError(t, s.UpdateEvent(ctx, owner, e.ID, e))

		got, err := s.GetEvent(ctx, owner, e.ID)
		require.NoError(t, err)
		compareEvents(t, e, got)
	})

	t.Run("remove twice", func(t *testing.T) {
		s := createStorage(t)
		owner := createOwner(t, s)
		e := newEvent(owner, initDate)
		require.NoError(t, s.AddEvent(ctx, &e))

		require.NoError(t, s.RemoveEvent(ctx, owner, e.ID))
		require.ErrorIs(t, s.RemoveEvent(ctx, owner, e.ID), storage.ErrNotFoundEvent)
	})

	t.Run("list is ordered by start time", func(t *testing.T) {
		s := createStorage(t)
		owner := createOwner(t, s)
		second := newEvent(owner, initDate.Add(3*time.Hour))
		first := newEvent(owner, initDate)
		require.NoError(t, s.AddEvent(ctx, &second))
		require.NoError(t, s.AddEvent(ctx, &first))

		events, err := s.ListEvents(ctx, owner)
		require.NoError(t, err)
		require.Len(t, events, 2)
		require.Equal(t, first.ID, events[0].ID)
		require.Equal(t, second.ID, events[1].ID)
	})

	t.Run("duplicate user email", func(t *testing.T) {
		s := createStorage(t)
		u := storage.User{Email: uuid.NewString() + "@example.com", PasswordHash: "hash", CreatedAt: time.Now()}
		require.NoError(t, s.AddUser(ctx, &u))
		dup := storage.User{Email: u.Email, PasswordHash: "hash2", CreatedAt: time.Now()}
		require.ErrorIs(t, s.AddUser(ctx, &dup), storage.ErrDuplicateUser)
	})
}

func compareEvents(t *testing.T, expected storage.Event, actual storage.Event) {
	t.Helper()
	require.Equal(t, expected.ID, actual.ID)
	require.Equal(t, expected.Title, actual.Title)
	require.Equal(t, expected.Description, actual.Description)
	require.True(t, expected.StartTime.Equal(actual.StartTime))
	require.True(t, expected.EndTime.Equal(actual.EndTime))
	require.Equal(t, expected.Location, actual.Location)
	require.Equal(t, expected.Color, actual.Color)
	require.Equal(t, expected.ReminderMinutes, actual.ReminderMinutes)
	require.Equal(t, expected.RecurrencePattern, actual.RecurrencePattern)
	require.Equal(t, expected.OwnerID, actual.OwnerID)
}
