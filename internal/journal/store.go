package journal

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbmodel "kernelgate/internal/db"
)

// Event kinds recorded by the supervisor.
const (
	KindStarted     = "started"
	KindReady       = "ready"
	KindSpawnFailed = "spawn_failed"
	KindExited      = "exited"
	KindClosed      = "closed"
)

type Entry struct {
	ID        string
	Kind      string
	Port      int
	Detail    string
	CreatedAt time.Time
}

type Store struct {
	db *gorm.DB
}

// NewStore uses the shared global DB. Caller must not close the db.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return &Store{db: db}, nil
}

// Record appends one lifecycle event. Never called on the request path.
func (s *Store) Record(kind string, port int, detail string) error {
	if s == nil || s.db == nil {
		return errors.New("journal store is not initialized")
	}
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return errors.New("kind is required")
	}
	row := dbmodel.Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Port:      port,
		Detail:    strings.TrimSpace(detail),
		CreatedAt: time.Now().UnixNano(),
	}
	return s.db.Create(&row).Error
}

// Recent returns the newest events, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("journal store is not initialized")
	}
	if limit <= 0 {
		limit = 20
	}
	rows := make([]dbmodel.Event, 0, limit)
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{
			ID:        row.ID,
			Kind:      row.Kind,
			Port:      row.Port,
			Detail:    row.Detail,
			CreatedAt: time.Unix(0, row.CreatedAt).UTC(),
		})
	}
	return entries, nil
}
