package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/FlakM/czujka-librus/internal/domain"
	"github.com/FlakM/czujka-librus/internal/ports"
)

// one table per stream, TEXT identity as primary key
var schema = []string{
	`CREATE TABLE IF NOT EXISTS announcements (
		id TEXT PRIMARY KEY,
		title TEXT,
		content TEXT,
		date TEXT,
		author TEXT,
		fetched_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		title TEXT,
		content TEXT,
		date TEXT,
		sender TEXT,
		fetched_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS grades (
		id TEXT PRIMARY KEY,
		subject TEXT,
		value TEXT,
		info TEXT,
		fetched_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		title TEXT,
		day TEXT,
		description TEXT,
		fetched_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS homework (
		id TEXT PRIMARY KEY,
		subject TEXT,
		title TEXT,
		type TEXT,
		date_from TEXT,
		date_to TEXT,
		content TEXT,
		teacher TEXT,
		fetched_at TIMESTAMPTZ
	)`,
}

// PostgresRepository persists stream records into Postgres, one table per
// stream, keyed by the record identity.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.RecordStore = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Init creates the per-stream tables when they do not exist yet.
func (r *PostgresRepository) Init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// KnownKeys returns every identity already stored for the stream.
func (r *PostgresRepository) KnownKeys(ctx context.Context, stream domain.Stream) (map[string]struct{}, error) {
	table, err := tableFor(stream)
	if err != nil {
		return nil, err
	}

	rows, err := sq.Select("id").
		From(table).
		PlaceholderFormat(sq.Dollar).
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query known keys for %s: %w", stream, err)
	}
	defer rows.Close()

	known := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		known[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return known, nil
}

// Insert writes one record into its stream table. The primary key reports
// a duplicate identity as ports.ErrDuplicate.
func (r *PostgresRepository) Insert(ctx context.Context, rec domain.Persisted) error {
	builder, err := insertBuilder(rec)
	if err != nil {
		return err
	}

	_, err = builder.
		PlaceholderFormat(sq.Dollar).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s/%s: %w", rec.Record.Stream(), rec.Key, ports.ErrDuplicate)
		}
		return fmt.Errorf("insert %s/%s: %w", rec.Record.Stream(), rec.Key, err)
	}

	return nil
}

func insertBuilder(rec domain.Persisted) (sq.InsertBuilder, error) {
	switch v := rec.Record.(type) {
	case domain.Announcement:
		return sq.Insert("announcements").
			Columns("id", "title", "content", "date", "author", "fetched_at").
			Values(rec.Key, v.Title, v.Content, v.Date, v.Author, rec.FetchedAt), nil
	case domain.Message:
		return sq.Insert("messages").
			Columns("id", "title", "content", "date", "sender", "fetched_at").
			Values(rec.Key, v.Title, v.Body, v.Date, v.Sender, rec.FetchedAt), nil
	case domain.Grade:
		return sq.Insert("grades").
			Columns("id", "subject", "value", "info", "fetched_at").
			Values(rec.Key, v.Subject, v.Value, v.Info, rec.FetchedAt), nil
	case domain.Event:
		return sq.Insert("events").
			Columns("id", "title", "day", "description", "fetched_at").
			Values(rec.Key, v.Title, v.Day, v.Description, rec.FetchedAt), nil
	case domain.Homework:
		return sq.Insert("homework").
			Columns("id", "subject", "title", "type", "date_from", "date_to", "content", "teacher", "fetched_at").
			Values(rec.Key, v.Subject, v.Title, v.Kind, v.DateFrom, v.DateTo, v.Content, v.Teacher, rec.FetchedAt), nil
	default:
		return sq.InsertBuilder{}, fmt.Errorf("unsupported record type %T", rec.Record)
	}
}

func tableFor(stream domain.Stream) (string, error) {
	switch stream {
	case domain.StreamAnnouncements:
		return "announcements", nil
	case domain.StreamMessages:
		return "messages", nil
	case domain.StreamGrades:
		return "grades", nil
	case domain.StreamEvents:
		return "events", nil
	case domain.StreamHomework:
		return "homework", nil
	default:
		return "", fmt.Errorf("unknown stream %q", stream)
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
