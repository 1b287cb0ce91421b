package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/FlakM/czujka-librus/internal/domain"
	"github.com/FlakM/czujka-librus/internal/ports"
)

// Syncer implements the per-stream fetch pipelines: fetch listings, flatten
// nesting, filter novelty against stored identities, enrich novel records
// with detail fetches and persist each one. A Sync method returning an
// empty batch and nil error means nothing new for that stream.
type Syncer struct {
	portal ports.Portal
	store  ports.RecordStore
	logger *slog.Logger
	now    func() time.Time
}

// NewSyncer wires the portal session and record store into the pipelines.
func NewSyncer(portal ports.Portal, store ports.RecordStore, logger *slog.Logger) *Syncer {
	return &Syncer{
		portal: portal,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// SyncAnnouncements pulls the announcement board. Announcements have no
// native id and need no detail fetch.
func (s *Syncer) SyncAnnouncements(ctx context.Context) ([]domain.Record, error) {
	listing, err := s.portal.Announcements(ctx)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	if len(listing) == 0 {
		s.logger.Info("no announcements returned")
		return nil, nil
	}

	known, err := s.store.KnownKeys(ctx, domain.StreamAnnouncements)
	if err != nil {
		return nil, fmt.Errorf("load known announcement keys: %w", err)
	}

	records := make([]domain.Record, 0)
	for _, a := range SelectNew(s.logger, known, listing) {
		records = append(records, a)
		s.persist(ctx, a)
	}
	return records, nil
}

// SyncMessages pulls the received inbox folder. Messages the account itself
// authored are excluded via the sent folder before novelty filtering, so
// they never reach storage regardless of novelty status.
func (s *Syncer) SyncMessages(ctx context.Context) ([]domain.Record, error) {
	sent, err := s.portal.Inbox(ctx, ports.FolderSent)
	if err != nil {
		return nil, fmt.Errorf("list sent messages: %w", err)
	}
	sentIDs := make(map[int]struct{}, len(sent))
	for _, m := range sent {
		sentIDs[m.ID] = struct{}{}
	}

	headers, err := s.portal.Inbox(ctx, ports.FolderReceived)
	if err != nil {
		return nil, fmt.Errorf("list received messages: %w", err)
	}

	known, err := s.store.KnownKeys(ctx, domain.StreamMessages)
	if err != nil {
		return nil, fmt.Errorf("load known message keys: %w", err)
	}

	candidates := make([]domain.Message, 0, len(headers))
	for _, h := range headers {
		if _, ours := sentIDs[h.ID]; ours {
			continue
		}
		candidates = append(candidates, domain.Message{
			ID:     h.ID,
			Title:  h.Title,
			Date:   h.Date,
			Sender: h.Sender,
		})
	}

	records := make([]domain.Record, 0)
	for _, m := range SelectNew(s.logger, known, candidates) {
		detail, err := s.portal.Message(ctx, ports.FolderReceived, m.ID)
		if err != nil {
			s.logger.Warn("failed to fetch full message", "id", m.ID, "error", err)
		} else {
			m.Body = detail.Body
			if detail.Sender != "" {
				m.Sender = detail.Sender
			}
		}
		records = append(records, m)
		s.persist(ctx, m)
	}
	if len(records) == 0 {
		s.logger.Info("no new messages")
		return nil, nil
	}
	return records, nil
}

// SyncGrades flattens the subject -> semester -> grade nesting. Levels with
// an absent nested collection are skipped rather than failing the stream.
func (s *Syncer) SyncGrades(ctx context.Context) ([]domain.Record, error) {
	subjects, err := s.portal.Grades(ctx)
	if err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	if len(subjects) == 0 {
		s.logger.Info("no grades returned")
		return nil, nil
	}

	known, err := s.store.KnownKeys(ctx, domain.StreamGrades)
	if err != nil {
		return nil, fmt.Errorf("load known grade keys: %w", err)
	}

	var candidates []domain.Grade
	for _, subject := range subjects {
		if subject.ID == 0 {
			// unassigned-subject placeholder
			continue
		}
		for _, semester := range subject.Semesters {
			for _, g := range semester.Grades {
				candidates = append(candidates, domain.Grade{
					ID:      g.ID,
					Subject: subject.Name,
					Value:   g.Value,
					Info:    g.Info,
				})
			}
		}
	}

	records := make([]domain.Record, 0)
	for _, g := range SelectNew(s.logger, known, candidates) {
		records = append(records, g)
		s.persist(ctx, g)
	}
	return records, nil
}

// SyncEvents pulls the current month's calendar. Cells with the sentinel
// id -1 are placeholders and are skipped before identity resolution.
// Detail-fetch failures are non-fatal: the event is persisted with an
// empty description.
func (s *Syncer) SyncEvents(ctx context.Context) ([]domain.Record, error) {
	now := s.now()
	days, err := s.portal.Calendar(ctx, now.Month(), now.Year())
	if err != nil {
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	if len(days) == 0 {
		s.logger.Info("no calendar events returned")
		return nil, nil
	}

	known, err := s.store.KnownKeys(ctx, domain.StreamEvents)
	if err != nil {
		return nil, fmt.Errorf("load known event keys: %w", err)
	}

	var candidates []domain.Event
	for _, day := range days {
		for _, ev := range day.Events {
			if ev.ID == -1 {
				continue
			}
			eventDay := ev.Day
			if eventDay == "" {
				eventDay = day.Day
			}
			candidates = append(candidates, domain.Event{
				ID:    ev.ID,
				Title: ev.Title,
				Day:   eventDay,
			})
		}
	}

	records := make([]domain.Record, 0)
	for _, e := range SelectNew(s.logger, known, candidates) {
		detail, err := s.portal.Event(ctx, e.ID)
		if err != nil {
			s.logger.Warn("failed to fetch event details", "id", e.ID, "error", err)
		} else {
			e.Description = detail.Description
		}
		records = append(records, e)
		s.persist(ctx, e)
	}
	return records, nil
}

// SyncHomework walks homework subject by subject over a window from the
// first day of the current month to the last day of the next. A failing
// subject listing skips that subject only. An in-run seen set deduplicates
// assignments appearing under more than one subject.
func (s *Syncer) SyncHomework(ctx context.Context) ([]domain.Record, error) {
	subjects, err := s.portal.HomeworkSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list homework subjects: %w", err)
	}
	if len(subjects) == 0 {
		s.logger.Info("no subjects found for homework")
		return nil, nil
	}

	known, err := s.store.KnownKeys(ctx, domain.StreamHomework)
	if err != nil {
		return nil, fmt.Errorf("load known homework keys: %w", err)
	}

	now := s.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 2, -1)

	seen := make(map[string]struct{})
	records := make([]domain.Record, 0)
	for _, subject := range subjects {
		if subject.ID <= 0 {
			continue
		}

		listing, err := s.portal.Homework(ctx, subject.ID, from, to)
		if err != nil {
			s.logger.Warn("failed to fetch homework for subject",
				"subject", subject.Name, "error", err)
			continue
		}

		candidates := make([]domain.Homework, 0, len(listing))
		for _, h := range listing {
			subjectName := h.Subject
			if subjectName == "" {
				subjectName = subject.Name
			}
			candidates = append(candidates, domain.Homework{
				ID:       h.ID,
				Subject:  subjectName,
				Title:    h.Title,
				Kind:     h.Kind,
				DateFrom: h.DateFrom,
				DateTo:   h.DateTo,
				Teacher:  h.Teacher,
			})
		}

		for _, hw := range SelectNew(s.logger, known, candidates) {
			key, err := hw.Key()
			if err != nil {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			detail, err := s.portal.HomeworkDetail(ctx, hw.ID)
			if err != nil {
				s.logger.Warn("failed to fetch homework details", "id", hw.ID, "error", err)
			} else {
				hw.Content = detail.Content
				if hw.Teacher == "" {
					hw.Teacher = detail.Teacher
				}
			}
			records = append(records, hw)
			s.persist(ctx, hw)
		}
	}
	return records, nil
}

// persist writes one record immediately. A failed insert is isolated: it is
// logged and the pipeline moves on to the next record, leaving the failed
// one to be re-fetched as new on the next run.
func (s *Syncer) persist(ctx context.Context, rec domain.Record) {
	key, err := rec.Key()
	if err != nil {
		// candidates are screened before persistence
		return
	}
	err = s.store.Insert(ctx, domain.Persisted{
		Key:       key,
		FetchedAt: s.now(),
		Record:    rec,
	})
	switch {
	case err == nil:
	case errors.Is(err, ports.ErrDuplicate):
		s.logger.Warn("record already persisted", "stream", rec.Stream(), "key", key)
	default:
		s.logger.Error("failed to persist record",
			"stream", rec.Stream(), "key", key, "error", err)
	}
}
