package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"oceaneye/internal/identification"
	"oceaneye/internal/services"
)

const defaultListLimit = 20

// timestampLayout keeps a fixed-width fraction so stored timestamps sort
// lexically in chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// Entry is one recorded identification.
type Entry struct {
	ID           int64     `json:"id" yaml:"id"`
	RequestID    string    `json:"request_id" yaml:"request_id"`
	Digest       string    `json:"digest,omitempty" yaml:"digest,omitempty"`
	Algorithm    string    `json:"algorithm" yaml:"algorithm"`
	Outcome      string    `json:"outcome" yaml:"outcome"`
	RecordKey    string    `json:"record_key,omitempty" yaml:"record_key,omitempty"`
	RecordName   string    `json:"record_name,omitempty" yaml:"record_name,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	Source       string    `json:"source,omitempty" yaml:"source,omitempty"`
	DurationMS   int64     `json:"duration_ms" yaml:"duration_ms"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// EntryFromReport converts a settled report into a history entry.
func EntryFromReport(report identification.Report, source string) Entry {
	entry := Entry{
		RequestID:    report.RequestID,
		Digest:       report.Digest.String(),
		Algorithm:    string(report.Algorithm),
		Outcome:      string(report.Outcome),
		ErrorMessage: report.ErrorMessage(),
		Source:       source,
		DurationMS:   report.Duration.Milliseconds(),
		CreatedAt:    report.StartedAt,
	}
	if report.Record != nil {
		entry.RecordKey = report.Record.Key
		entry.RecordName = report.Record.Name
	}
	return entry
}

// Store manages the identification log backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

var _ identification.Recorder = (*Store)(nil)

// Open initializes or connects to the history database and applies migrations.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends a settled report, tagging it with the request source from ctx.
func (s *Store) Record(ctx context.Context, report identification.Report) error {
	source, _ := services.SourceFromContext(ctx)
	_, err := s.Append(ctx, EntryFromReport(report, source))
	return err
}

// Append inserts entry and returns its row ID.
func (s *Store) Append(ctx context.Context, entry Entry) (int64, error) {
	if strings.TrimSpace(entry.RequestID) == "" {
		return 0, errors.New("history entry requires a request id")
	}
	if strings.TrimSpace(entry.Outcome) == "" {
		return 0, errors.New("history entry requires an outcome")
	}
	created := entry.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO identifications (
            request_id, digest, algorithm, outcome, record_key, record_name,
            error_message, source, duration_ms, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RequestID,
		nullableString(entry.Digest),
		entry.Algorithm,
		entry.Outcome,
		nullableString(entry.RecordKey),
		nullableString(entry.RecordName),
		nullableString(entry.ErrorMessage),
		nullableString(entry.Source),
		entry.DurationMS,
		created.UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert identification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// List returns up to limit entries, newest first. A non-positive limit uses
// the default.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, request_id, digest, algorithm, outcome, record_key, record_name,
                error_message, source, duration_ms, created_at
           FROM identifications
          ORDER BY created_at DESC, id DESC
          LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query identifications: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identifications: %w", err)
	}
	return entries, nil
}

// CountByOutcome returns the number of entries per outcome.
func (s *Store) CountByOutcome(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT outcome, COUNT(1) FROM identifications GROUP BY outcome")
	if err != nil {
		return nil, fmt.Errorf("count identifications: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		counts[outcome] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcome counts: %w", err)
	}
	return counts, nil
}

// Clear removes every entry and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM identifications")
	if err != nil {
		return 0, fmt.Errorf("clear identifications: %w", err)
	}
	return res.RowsAffected()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry                              Entry
		digestValue, recordKey, recordName sql.NullString
		errorMessage, source               sql.NullString
		createdAt                          string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.RequestID,
		&digestValue,
		&entry.Algorithm,
		&entry.Outcome,
		&recordKey,
		&recordName,
		&errorMessage,
		&source,
		&entry.DurationMS,
		&createdAt,
	); err != nil {
		return Entry{}, fmt.Errorf("scan identification: %w", err)
	}
	entry.Digest = digestValue.String
	entry.RecordKey = recordKey.String
	entry.RecordName = recordName.String
	entry.ErrorMessage = errorMessage.String
	entry.Source = source.String
	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	entry.CreatedAt = created
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
