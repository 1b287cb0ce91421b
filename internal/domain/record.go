package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrMissingField marks a record that cannot produce a deduplication key
// because a required source field is absent. Such records are dropped.
var ErrMissingField = errors.New("record missing required field")

// Record is one item of a stream. Each variant carries its own
// deduplication-key derivation, prompt line and rendering rule, so stream
// handling stays exhaustively checkable instead of string-dispatched.
type Record interface {
	Stream() Stream
	// Key derives the identity used to deduplicate the record within its
	// stream. Returns ErrMissingField when the source data is incomplete.
	Key() (string, error)
	// PromptLine renders the record as item n of a classification prompt.
	PromptLine(n int) string
	Display() Display
}

// Display carries the fields notification channels render for one record.
type Display struct {
	Title string
	Meta  string
	Body  string
	// Link is a deep link back to the portal, empty when none exists.
	Link string
}

// Persisted is a record together with its resolved key and fetch time,
// exactly as it is written to storage. Never updated once stored.
type Persisted struct {
	Key       string
	FetchedAt time.Time
	Record    Record
}

// Announcement has no source-assigned id; its key is the composite
// title + "_" + date. Two distinct announcements sharing title and date
// collapse onto one key — accepted limitation, the portal offers nothing
// more stable.
type Announcement struct {
	Title   string
	Content string
	Date    string
	Author  string
}

func (a Announcement) Stream() Stream { return StreamAnnouncements }

func (a Announcement) Key() (string, error) {
	if a.Title == "" || a.Date == "" {
		return "", fmt.Errorf("announcement %q/%q: %w", a.Title, a.Date, ErrMissingField)
	}
	return a.Title + "_" + a.Date, nil
}

func (a Announcement) PromptLine(n int) string {
	return fmt.Sprintf("%d. %s\n   Author: %s\n   Date: %s\n   Content: %s",
		n, orUnknown(a.Title), orUnknown(a.Author), orUnknown(a.Date), orUnknown(a.Content))
}

func (a Announcement) Display() Display {
	return Display{
		Title: orUnknown(a.Title),
		Meta:  fmt.Sprintf("Author: %s | Date: %s", orUnknown(a.Author), orUnknown(a.Date)),
		Body:  a.Content,
	}
}

// Message is an inbox message; the body and full sender come from a
// secondary detail fetch and may be empty when that fetch failed.
type Message struct {
	ID     int
	Title  string
	Body   string
	Date   string
	Sender string
}

func (m Message) Stream() Stream { return StreamMessages }

func (m Message) Key() (string, error) {
	if m.ID <= 0 {
		return "", fmt.Errorf("message %q: %w", m.Title, ErrMissingField)
	}
	return strconv.Itoa(m.ID), nil
}

func (m Message) PromptLine(n int) string {
	return fmt.Sprintf("%d. %s\n   From: %s\n   Date: %s\n   Content: %s",
		n, orUnknown(m.Title), orUnknown(m.Sender), orUnknown(m.Date), orUnknown(m.Body))
}

func (m Message) Display() Display {
	return Display{
		Title: orUnknown(m.Title),
		Meta:  fmt.Sprintf("From: %s | Date: %s", orUnknown(m.Sender), orUnknown(m.Date)),
		Body:  m.Body,
		Link:  fmt.Sprintf("https://synergia.librus.pl/wiadomosci/1/5/%d/f0", m.ID),
	}
}

// Grade is one grade entry flattened out of the subject/semester nesting.
type Grade struct {
	ID      int
	Subject string
	Value   string
	Info    string
}

func (g Grade) Stream() Stream { return StreamGrades }

func (g Grade) Key() (string, error) {
	if g.ID <= 0 {
		return "", fmt.Errorf("grade in %q: %w", g.Subject, ErrMissingField)
	}
	return strconv.Itoa(g.ID), nil
}

func (g Grade) PromptLine(n int) string {
	return fmt.Sprintf("%d. Subject: %s\n   Grade: %s\n   Details: %s",
		n, orUnknown(g.Subject), orUnknown(g.Value), orUnknown(g.Info))
}

func (g Grade) Display() Display {
	return Display{
		Title: fmt.Sprintf("%s: %s", orUnknown(g.Subject), orUnknown(g.Value)),
		Meta:  fmt.Sprintf("Subject: %s", orUnknown(g.Subject)),
		Body:  g.Info,
	}
}

// Event is a calendar entry; the description comes from a secondary fetch.
type Event struct {
	ID          int
	Title       string
	Day         string
	Description string
}

func (e Event) Stream() Stream { return StreamEvents }

func (e Event) Key() (string, error) {
	if e.ID <= 0 {
		return "", fmt.Errorf("event %q: %w", e.Title, ErrMissingField)
	}
	return strconv.Itoa(e.ID), nil
}

func (e Event) PromptLine(n int) string {
	return fmt.Sprintf("%d. %s\n   Day: %s\n   Description: %s",
		n, orUnknown(e.Title), orUnknown(e.Day), orUnknown(e.Description))
}

func (e Event) Display() Display {
	return Display{
		Title: orUnknown(e.Title),
		Meta:  fmt.Sprintf("Day: %s", orUnknown(e.Day)),
		Body:  e.Description,
	}
}

// Homework is one assignment; content comes from a secondary fetch.
type Homework struct {
	ID       int
	Subject  string
	Title    string
	Kind     string
	DateFrom string
	DateTo   string
	Content  string
	Teacher  string
}

func (h Homework) Stream() Stream { return StreamHomework }

func (h Homework) Key() (string, error) {
	if h.ID <= 0 {
		return "", fmt.Errorf("homework %q: %w", h.Title, ErrMissingField)
	}
	return strconv.Itoa(h.ID), nil
}

func (h Homework) PromptLine(n int) string {
	return fmt.Sprintf("%d. %s (%s)\n   Subject: %s\n   Assigned by: %s\n   Due: %s - %s\n   Content: %s",
		n, orUnknown(h.Title), orUnknown(h.Kind), orUnknown(h.Subject),
		orUnknown(h.Teacher), orUnknown(h.DateFrom), orUnknown(h.DateTo), orUnknown(h.Content))
}

func (h Homework) Display() Display {
	return Display{
		Title: orUnknown(h.Title),
		Meta: fmt.Sprintf("Subject: %s | Due: %s - %s | Teacher: %s",
			orUnknown(h.Subject), orUnknown(h.DateFrom), orUnknown(h.DateTo), orUnknown(h.Teacher)),
		Body: h.Content,
	}
}

func orUnknown(value string) string {
	if value == "" {
		return "(unknown)"
	}
	return value
}
