package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avolkov/dayplanner/internal/auth"
	"github.com/avolkov/dayplanner/internal/storage"
)

type App struct {
	Storage storage.Storage
	Tokens  *auth.TokenManager
}

func New(storage storage.Storage, tokens *auth.TokenManager) *App {
	return &App{Storage: storage, Tokens: tokens}
}

// Register creates an account and signs the new user in.
func (a *App) Register(ctx context.Context, email string, password string) (string, storage.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", storage.User{}, fmt.Errorf("email and password are required: %w", storage.ErrIncorrectUser)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", storage.User{}, err
	}
	user := storage.User{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := a.Storage.AddUser(ctx, &user); err != nil {
		return "", storage.User{}, err
	}

	token, err := a.Tokens.Issue(user.ID)
	if err != nil {
		return "", storage.User{}, err
	}
	return token, user, nil
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords both come back as auth.ErrInvalidCredentials.
func (a *App) Login(ctx context.Context, email string, password string) (string, storage.User, error) {
	user, err := a.Storage.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFoundUser) {
			return "", storage.User{}, auth.ErrInvalidCredentials
		}
		return "", storage.User{}, err
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return "", storage.User{}, err
	}

	token, err := a.Tokens.Issue(user.ID)
	if err != nil {
		return "", storage.User{}, err
	}
	return token, user, nil
}

// Authenticate resolves a bearer token to the owning user id.
func (a *App) Authenticate(token string) (string, error) {
	return a.Tokens.Verify(token)
}

func (a *App) GetProfile(ctx context.Context, userID string) (storage.User, error) {
	return a.Storage.GetUser(ctx, userID)
}

// CreateEvent builds an event from the submitted fields over the defaults,
// validates it and persists it under ownerID. Any client-supplied id or
// owner is discarded, only the fields of the patch are honored.
func (a *App) CreateEvent(ctx context.Context, ownerID string, fields storage.EventPatch) (storage.Event, error) {
	e := storage.Event{
		OwnerID:           ownerID,
		Color:             storage.DefaultColor,
		ReminderMinutes:   storage.DefaultReminderMinutes,
		RecurrencePattern: storage.RecurrenceNone,
	}
	fields.Apply(&e)
	if err := fillAndValidate(&e); err != nil {
		return storage.Event{}, err
	}

	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	if err := a.Storage.AddEvent(ctx, &e); err != nil {
		return storage.Event{}, err
	}
	return e, nil
}

func (a *App) GetEvent(ctx context.Context, ownerID string, id string) (storage.Event, error) {
	return a.Storage.GetEvent(ctx, ownerID, id)
}

func (a *App) ListEvents(ctx context.Context, ownerID string) ([]storage.Event, error) {
	return a.Storage.ListEvents(ctx, ownerID)
}

// UpdateEvent merges the sparse patch into the stored record and writes it
// back, last write wins. Omitted fields stay unchanged.
func (a *App) UpdateEvent(
	ctx context.Context,
	ownerID string,
	id string,
	patch storage.EventPatch,
) (storage.Event, error) {
	e, err := a.Storage.GetEvent(ctx, ownerID, id)
	if err != nil {
		return storage.Event{}, err
	}
	patch.Apply(&e)
	if err := fillAndValidate(&e); err != nil {
		return storage.Event{}, err
	}

	e.UpdatedAt = time.Now()
	if err := a.Storage.UpdateEvent(ctx, ownerID, id, e); err != nil {
		return storage.Event{}, err
	}
	return e, nil
}

func (a *App) RemoveEvent(ctx context.Context, ownerID string, id string) error {
	return a.Storage.RemoveEvent(ctx, ownerID, id)
}

// fillAndValidate applies defaults and checks the field shape. End before
// start is accepted: the convention endTime >= startTime is not enforced.
func fillAndValidate(e *storage.Event) error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return fmt.Errorf("title is required: %w", storage.ErrIncorrectEvent)
	}
	if e.StartTime.IsZero() || e.EndTime.IsZero() {
		return fmt.Errorf("start and end time are required: %w", storage.ErrIncorrectEvent)
	}
	if e.Color == "" {
		e.Color = storage.DefaultColor
	}
	if !storage.ValidColor(e.Color) {
		return fmt.Errorf("color %q is not in the palette: %w", e.Color, storage.ErrIncorrectEvent)
	}
	if e.ReminderMinutes < 0 {
		return fmt.Errorf("reminder minutes must be non-negative: %w", storage.ErrIncorrectEvent)
	}
	if e.RecurrencePattern == "" {
		e.RecurrencePattern = storage.RecurrenceNone
	}
	if !storage.ValidRecurrence(e.RecurrencePattern) {
		return fmt.Errorf("unknown recurrence pattern %q: %w", e.RecurrencePattern, storage.ErrIncorrectEvent)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
