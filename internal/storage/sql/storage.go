package sqlstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avolkov/dayplanner/internal/storage"
	"github.com/avolkov/dayplanner/internal/storage/sql/migrations"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
)

var ErrConnectionFailed = errors.New("failed to connect")

const dbErrUniqueViolation = "23505"

const eventColumns = "id, title, description, start_timestamp AS startTime, end_timestamp AS endTime, " +
	"location, color, reminder_minutes AS reminderMinutes, recurrence_pattern AS recurrencePattern, " +
	"recurrence_end_date AS recurrenceEndDate, owner_id AS ownerId, created_at AS createdAt, updated_at AS updatedAt"

type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

type Storage struct {
	host     string
	port     int
	database string
	username string
	password string
	db       *sqlx.DB
}

func New(config Config) *Storage {
	return &Storage{
		host:     config.Host,
		port:     config.Port,
		database: config.Database,
		username: config.Username,
		password: config.Password,
	}
}

func (s *Storage) Connect(ctx context.Context) error {
	db, err := sqlx.ConnectContext(
		ctx,
		"postgres",
		fmt.Sprintf(
			"sslmode=disable host=%s port=%d dbname=%s user=%s password=%s",
			s.host, s.port, s.database, s.username, s.password),
	)
	if err != nil {
		log.Errorf("failed to connect: %v", err)
		return ErrConnectionFailed
	}
	s.db = db
	return s.migrate(ctx)
}

func (s *Storage) migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, s.db.DB, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func (s *Storage) AddUser(ctx context.Context, u *storage.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(
		ctx,
		"INSERT INTO users(id, email, password_hash, created_at) VALUES($1, $2, $3, $4)",
		u.ID, u.Email, u.PasswordHash, u.CreatedAt.UTC(),
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == dbErrUniqueViolation {
		return fmt.Errorf("email %q: %w", u.Email, storage.ErrDuplicateUser)
	}
	return err
}

func (s *Storage) GetUser(ctx context.Context, id string) (storage.User, error) {
	var u storage.User
	err := s.db.GetContext(
		ctx,
		&u,
		"SELECT id, email, password_hash AS passwordHash, created_at AS createdAt FROM users WHERE id=$1",
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.User{}, storage.ErrNotFoundUser
	}
	return u, err
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (storage.User, error) {
	var u storage.User
	err := s.db.GetContext(
		ctx,
		&u,
		"SELECT id, email, password_hash AS passwordHash, created_at AS createdAt FROM users WHERE email=$1",
		email,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.User{}, storage.ErrNotFoundUser
	}
	return u, err
}

func (s *Storage) AddEvent(ctx context.Context, e *storage.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(
		ctx,
		"INSERT INTO events(id, title, description, start_timestamp, end_timestamp, location, color, "+
			"reminder_minutes, recurrence_pattern, recurrence_end_date, owner_id, created_at, updated_at) "+
			"VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)",
		e.ID, e.Title, e.Description, e.StartTime.UTC(), e.EndTime.UTC(), e.Location, e.Color,
		e.ReminderMinutes, e.RecurrencePattern, e.RecurrenceEndDate, e.OwnerID, e.CreatedAt.UTC(), e.UpdatedAt.UTC(),
	)
	return err
}

func (s *Storage) GetEvent(ctx context.Context, ownerID string, id string) (storage.Event, error) {
	var e storage.Event
	err := s.db.GetContext(
		ctx,
		&e,
		"SELECT "+eventColumns+" FROM events WHERE id=$1 AND owner_id=$2",
		id, ownerID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Event{}, fmt.Errorf("event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	return e, err
}

func (s *Storage) UpdateEvent(ctx context.Context, ownerID string, id string, e storage.Event) error {
	var found bool
	err := s.db.GetContext(
		ctx,
		&found,
		"UPDATE events SET title=$3, description=$4, start_timestamp=$5, end_timestamp=$6, location=$7, "+
			"color=$8, reminder_minutes=$9, recurrence_pattern=$10, recurrence_end_date=$11, updated_at=$12 "+
			"WHERE id=$1 AND owner_id=$2 RETURNING TRUE",
		id, ownerID, e.Title, e.Description, e.StartTime.UTC(), e.EndTime.UTC(), e.Location,
		e.Color, e.ReminderMinutes, e.RecurrencePattern, e.RecurrenceEndDate, e.UpdatedAt.UTC(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to update event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	return err
}

func (s *Storage) RemoveEvent(ctx context.Context, ownerID string, id string) error {
	var found bool
	err := s.db.GetContext(
		ctx,
		&found,
		"DELETE FROM events WHERE id=$1 AND owner_id=$2 RETURNING TRUE",
		id, ownerID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to remove event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	return err
}

func (s *Storage) ListEvents(ctx context.Context, ownerID string) ([]storage.Event, error) {
	events := make([]storage.Event, 0)
	err := s.db.SelectContext(
		ctx,
		&events,
		"SELECT "+eventColumns+" FROM events WHERE owner_id=$1 ORDER BY start_timestamp, created_at, id",
		ownerID,
	)
	return events, err
}
