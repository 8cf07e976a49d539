package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stakeplatform/core/events"
	"stakeplatform/core/types"
)

// ErrDSNRequired is returned when no archive location is configured.
var ErrDSNRequired = errors.New("archive: dsn must be configured")

// EventRecord is the persisted form of a ledger notification.
type EventRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq        uint64    `gorm:"uniqueIndex;not null"`
	Type       string    `gorm:"index;not null"`
	Attributes string    `gorm:"type:text;not null"`
	CreatedAt  time.Time
}

// TableName pins the table name independent of gorm's pluralisation rules.
func (EventRecord) TableName() string { return "staking_events" }

// Decode converts the stored row back into an event payload.
func (r EventRecord) Decode() (*types.Event, error) {
	attrs := make(map[string]string)
	if strings.TrimSpace(r.Attributes) != "" {
		if err := json.Unmarshal([]byte(r.Attributes), &attrs); err != nil {
			return nil, fmt.Errorf("archive: decode attributes for seq %d: %w", r.Seq, err)
		}
	}
	return &types.Event{Type: r.Type, Attributes: attrs}, nil
}

// Archive persists every emitted event to a SQL table so observers outside the
// process can replay the notification stream. It satisfies events.Emitter.
type Archive struct {
	db     *gorm.DB
	logger *slog.Logger
	nowFn  func() time.Time

	mu       sync.Mutex
	seq      uint64
	failures uint64
}

// Open connects to the archive database. DSNs starting with postgres:// or
// postgresql:// use the Postgres driver, anything else is treated as a SQLite
// path or URI.
func Open(dsn string) (*Archive, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, ErrDSNRequired
	}
	var dialector gorm.Dialector
	if strings.HasPrefix(trimmed, "postgres://") || strings.HasPrefix(trimmed, "postgresql://") {
		dialector = postgres.Open(trimmed)
	} else {
		dialector = sqlite.Open(trimmed)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("archive: open database: %w", err)
	}
	return New(db)
}

// New wraps an existing gorm handle, migrating the schema and resuming the
// sequence counter from the highest stored record.
func New(db *gorm.DB) (*Archive, error) {
	if db == nil {
		return nil, fmt.Errorf("archive: database handle required")
	}
	if err := db.AutoMigrate(&EventRecord{}); err != nil {
		return nil, fmt.Errorf("archive: migrate: %w", err)
	}
	var maxSeq uint64
	if err := db.Model(&EventRecord{}).Select("COALESCE(MAX(seq), 0)").Scan(&maxSeq).Error; err != nil {
		return nil, fmt.Errorf("archive: load sequence: %w", err)
	}
	return &Archive{
		db:     db,
		logger: slog.Default().With(slog.String("component", "event_archive")),
		nowFn:  func() time.Time { return time.Now().UTC() },
		seq:    maxSeq,
	}, nil
}

// SetLogger overrides the logger used to report persistence failures.
func (a *Archive) SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	a.logger = l.With(slog.String("component", "event_archive"))
}

// SetNowFunc overrides the timestamp source for deterministic testing.
func (a *Archive) SetNowFunc(now func() time.Time) {
	if now == nil {
		a.nowFn = func() time.Time { return time.Now().UTC() }
		return
	}
	a.nowFn = now
}

// Emit implements events.Emitter. Persistence failures are logged and counted
// but never propagated, the ledger state change has already committed.
func (a *Archive) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	if _, err := a.Append(evt); err != nil {
		a.mu.Lock()
		a.failures++
		a.mu.Unlock()
		a.logger.Error("archive: persist event failed",
			slog.String("type", evt.EventType()),
			slog.Any("error", err))
	}
}

// Append stores the event and returns the persisted row.
func (a *Archive) Append(evt events.Event) (*EventRecord, error) {
	rendered := events.Materialize(evt)
	if rendered == nil {
		return nil, fmt.Errorf("archive: nil event")
	}
	encoded, err := json.Marshal(rendered.Attributes)
	if err != nil {
		return nil, fmt.Errorf("archive: encode attributes: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	rec := &EventRecord{
		ID:         uuid.New(),
		Seq:        a.seq + 1,
		Type:       rendered.Type,
		Attributes: string(encoded),
		CreatedAt:  a.nowFn(),
	}
	if err := a.db.Create(rec).Error; err != nil {
		return nil, fmt.Errorf("archive: insert event: %w", err)
	}
	a.seq = rec.Seq
	return rec, nil
}

// List returns up to limit records with a sequence greater than afterSeq.
func (a *Archive) List(ctx context.Context, afterSeq uint64, limit int) ([]EventRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []EventRecord
	err := a.db.WithContext(ctx).
		Where("seq > ?", afterSeq).
		Order("seq ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("archive: list events: %w", err)
	}
	return out, nil
}

// Failures reports how many events could not be persisted.
func (a *Archive) Failures() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failures
}

// Close releases the underlying connection pool.
func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
