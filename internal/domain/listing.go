package domain

// Raw listing shapes as returned by the portal, before flattening and
// novelty filtering. Nesting mirrors the portal pages: grades arrive as
// subject -> semester -> grade, the calendar as day -> event, homework as
// subject -> assignment.

// MessageHeader is an inbox listing row; the body requires a detail fetch.
type MessageHeader struct {
	ID     int
	Title  string
	Sender string
	Date   string
}

// MessageDetail is the full message page.
type MessageDetail struct {
	Body   string
	Sender string
}

// SubjectGrades groups every grade of one subject across semesters.
// ID 0 is the portal's unassigned-subject placeholder.
type SubjectGrades struct {
	ID        int
	Name      string
	Semesters []Semester
}

// Semester holds the grades of one semester.
type Semester struct {
	Number int
	Grades []GradeEntry
}

// GradeEntry is a single grade cell.
type GradeEntry struct {
	ID    int
	Value string
	Info  string
}

// CalendarDay lists the events of one day of the month view. An event id
// of -1 is the portal's placeholder for a non-event cell.
type CalendarDay struct {
	Day    string
	Events []EventHeader
}

// EventHeader is a calendar listing entry; description requires a detail fetch.
type EventHeader struct {
	ID    int
	Title string
	Day   string
}

// EventDetail is the event detail page.
type EventDetail struct {
	Description string
}

// Subject is a homework subject; id 0 is the unassigned-subject placeholder.
type Subject struct {
	ID   int
	Name string
}

// HomeworkHeader is a per-subject assignment listing row.
type HomeworkHeader struct {
	ID       int
	Subject  string
	Title    string
	Kind     string
	DateFrom string
	DateTo   string
	Teacher  string
}

// HomeworkDetail is the assignment detail page.
type HomeworkDetail struct {
	Content string
	Teacher string
}
