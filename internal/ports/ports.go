package ports

import (
	"context"
	"errors"
	"time"

	"github.com/FlakM/czujka-librus/internal/domain"
)

// ErrDuplicate reports that storage already holds a record with the same
// (stream, identity) key. The uniqueness constraint is the backstop
// against duplicate-identity races.
var ErrDuplicate = errors.New("record already stored")

// Inbox folder numbers used by the portal.
const (
	FolderSent     = 5
	FolderReceived = 6
)

// Portal is the authenticated read-only session against the school portal.
// All calls may fail; pipelines decide what each failure degrades to.
type Portal interface {
	Authenticate(ctx context.Context) error
	Announcements(ctx context.Context) ([]domain.Announcement, error)
	Inbox(ctx context.Context, folder int) ([]domain.MessageHeader, error)
	Message(ctx context.Context, folder, id int) (domain.MessageDetail, error)
	Grades(ctx context.Context) ([]domain.SubjectGrades, error)
	Calendar(ctx context.Context, month time.Month, year int) ([]domain.CalendarDay, error)
	Event(ctx context.Context, id int) (domain.EventDetail, error)
	HomeworkSubjects(ctx context.Context) ([]domain.Subject, error)
	Homework(ctx context.Context, subjectID int, from, to time.Time) ([]domain.HomeworkHeader, error)
	HomeworkDetail(ctx context.Context, id int) (domain.HomeworkDetail, error)
}

// RecordStore persists records keyed by (stream, identity).
type RecordStore interface {
	// KnownKeys returns every identity already stored for the stream.
	KnownKeys(ctx context.Context, stream domain.Stream) (map[string]struct{}, error)
	// Insert writes one record. Storage enforces key uniqueness as a
	// backstop; a duplicate surfaces as an error.
	Insert(ctx context.Context, rec domain.Persisted) error
}

// Classifier summarizes and urgency-ranks one stream's batch of new
// records. Never called with an empty batch.
type Classifier interface {
	Classify(ctx context.Context, stream domain.Stream, records []domain.Record) (domain.ClassificationResult, error)
}

// Notifier renders and delivers the aggregated notification.
type Notifier interface {
	Send(ctx context.Context, n domain.Notification) error
}

// Scheduler controls when sync runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
