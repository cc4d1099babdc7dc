// Package sqlite provides a SQLite-backed control journal.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/louisbranch/beanmachine/internal/platform/errors"
	"github.com/louisbranch/beanmachine/internal/platform/grpc/pagination"
	sqlitemigrate "github.com/louisbranch/beanmachine/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/beanmachine/internal/services/board/domain"
	"github.com/louisbranch/beanmachine/internal/services/board/filter"
	"github.com/louisbranch/beanmachine/internal/services/board/storage"
	"github.com/louisbranch/beanmachine/internal/services/board/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists control events in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite journal and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendControlEvent stores event and returns it with its assigned id.
func (s *Store) AppendControlEvent(ctx context.Context, event domain.ControlEvent) (domain.ControlEvent, error) {
	if err := ctx.Err(); err != nil {
		return domain.ControlEvent{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.ControlEvent{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(string(event.Kind)) == "" {
		return domain.ControlEvent{}, fmt.Errorf("event kind is required")
	}
	if event.Source == "" {
		event.Source = domain.SourceLocal
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	event.CreatedAt = fromMillis(toMillis(event.CreatedAt))

	var rate sql.NullFloat64
	if !math.IsNaN(event.Rate) && !math.IsInf(event.Rate, 0) {
		rate = sql.NullFloat64{Float64: event.Rate, Valid: true}
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO control_events (kind, source, rate, total_paths, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(event.Kind),
		string(event.Source),
		rate,
		int64(event.TotalPaths),
		event.Message,
		toMillis(event.CreatedAt),
	)
	if err != nil {
		return domain.ControlEvent{}, fmt.Errorf("append control event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return domain.ControlEvent{}, fmt.Errorf("append control event: %w", err)
	}
	event.ID = id
	return event, nil
}

// ListControlEvents returns one page of events in id order. The page token
// is the id of the last event of the previous page.
func (s *Store) ListControlEvents(ctx context.Context, pageSize int, pageToken string, filterStr string) (storage.ControlEventPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.ControlEventPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ControlEventPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.ControlEventPage{}, fmt.Errorf("page size must be greater than zero")
	}

	after, err := pagination.ParseCursor(pageToken)
	if err != nil {
		return storage.ControlEventPage{}, apperrors.WithMetadata(apperrors.CodeInvalidPageToken,
			fmt.Sprintf("invalid page token %q", pageToken),
			map[string]string{"PageToken": pageToken})
	}

	cond, err := filter.Parse(filterStr)
	if err != nil {
		return storage.ControlEventPage{}, err
	}
	where := "id > ?"
	params := []any{after}
	if !cond.Empty() {
		where += " AND " + cond.Clause
		params = append(params, cond.Params...)
	}
	params = append(params, pageSize+1)

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, kind, source, rate, total_paths, message, created_at
		   FROM control_events
		  WHERE `+where+`
		  ORDER BY id ASC
		  LIMIT ?`,
		params...,
	)
	if err != nil {
		return storage.ControlEventPage{}, fmt.Errorf("list control events: %w", err)
	}
	defer rows.Close()

	page := storage.ControlEventPage{
		Events: make([]domain.ControlEvent, 0, pageSize),
	}
	for rows.Next() {
		var (
			event      domain.ControlEvent
			kind       string
			source     string
			rate       sql.NullFloat64
			totalPaths int64
			createdAt  int64
		)
		if err := rows.Scan(&event.ID, &kind, &source, &rate, &totalPaths, &event.Message, &createdAt); err != nil {
			return storage.ControlEventPage{}, fmt.Errorf("list control events: %w", err)
		}
		event.Kind = domain.ControlKind(kind)
		event.Source = domain.Source(source)
		event.Rate = math.NaN()
		if rate.Valid {
			event.Rate = rate.Float64
		}
		event.TotalPaths = uint64(totalPaths)
		event.CreatedAt = fromMillis(createdAt)
		page.Events = append(page.Events, event)
	}
	if err := rows.Err(); err != nil {
		return storage.ControlEventPage{}, fmt.Errorf("list control events: %w", err)
	}
	if len(page.Events) > pageSize {
		page.NextPageToken = pagination.FormatCursor(page.Events[pageSize-1].ID)
		page.Events = page.Events[:pageSize]
	}
	return page, nil
}

var _ storage.ControlEventStore = (*Store)(nil)
