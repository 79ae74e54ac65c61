package memorystorage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/avolkov/dayplanner/internal/storage"
	"github.com/google/uuid"
)

type Storage struct {
	mu           sync.RWMutex
	users        map[string]storage.User
	usersByEmail map[string]string
	events       map[string]storage.Event
}

func New() *Storage {
	return &Storage{
		users:        make(map[string]storage.User),
		usersByEmail: make(map[string]string),
		events:       make(map[string]storage.Event),
	}
}

func (s *Storage) Connect(_ context.Context) error {
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	return nil
}

func (s *Storage) AddUser(_ context.Context, u *storage.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usersByEmail[u.Email]; ok {
		return fmt.Errorf("email %q: %w", u.Email, storage.ErrDuplicateUser)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users[u.ID] = *u
	s.usersByEmail[u.Email] = u.ID
	return nil
}

func (s *Storage) GetUser(_ context.Context, id string) (storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return storage.User{}, storage.ErrNotFoundUser
	}
	return u, nil
}

func (s *Storage) GetUserByEmail(_ context.Context, email string) (storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByEmail[email]
	if !ok {
		return storage.User{}, storage.ErrNotFoundUser
	}
	return s.users[id], nil
}

func (s *Storage) AddEvent(_ context.Context, e *storage.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.events[e.ID] = *e
	return nil
}

func (s *Storage) GetEvent(_ context.Context, ownerID string, id string) (storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok || e.OwnerID != ownerID {
		return storage.Event{}, fmt.Errorf("event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	return e, nil
}

func (s *Storage) UpdateEvent(_ context.Context, ownerID string, id string, e storage.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.events[id]
	if !ok || old.OwnerID != ownerID {
		return fmt.Errorf("failed to update event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	e.ID = id
	e.OwnerID = ownerID
	s.events[id] = e
	return nil
}

func (s *Storage) RemoveEvent(_ context.Context, ownerID string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.OwnerID != ownerID {
		return fmt.Errorf("failed to remove event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	delete(s.events, id)
	return nil
}

func (s *Storage) ListEvents(_ context.Context, ownerID string) ([]storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]storage.Event, 0)
	for _, e := range s.events {
		if e.OwnerID == ownerID {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].StartTime.Equal(events[j].StartTime) {
			return events[i].StartTime.Before(events[j].StartTime)
		}
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}
