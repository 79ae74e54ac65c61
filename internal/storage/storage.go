package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFoundEvent  = errors.New("event not found")
	ErrIncorrectEvent = errors.New("incorrect event data")
	ErrDuplicateUser  = errors.New("user already exists")
	ErrNotFoundUser   = errors.New("user not found")
	ErrIncorrectUser  = errors.New("incorrect user data")
)

// Storage persists users and their events. Every event operation takes the
// owner's id and treats an ownership mismatch exactly like a missing record,
// so callers cannot probe for other users' event ids.
type Storage interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error

	AddUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)

	AddEvent(ctx context.Context, e *Event) error
	GetEvent(ctx context.Context, ownerID string, id string) (Event, error)
	UpdateEvent(ctx context.Context, ownerID string, id string, e Event) error
	RemoveEvent(ctx context.Context, ownerID string, id string) error
	ListEvents(ctx context.Context, ownerID string) ([]Event, error)
}
