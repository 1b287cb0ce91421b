package domain

// Stream identifies one of the five record categories pulled from the portal.
type Stream string

const (
	StreamAnnouncements Stream = "announcements"
	StreamMessages      Stream = "messages"
	StreamGrades        Stream = "grades"
	StreamEvents        Stream = "events"
	StreamHomework      Stream = "homework"
)

// Streams lists all streams in their fixed processing and rendering order.
func Streams() []Stream {
	return []Stream{
		StreamAnnouncements,
		StreamMessages,
		StreamGrades,
		StreamEvents,
		StreamHomework,
	}
}

// Label returns the human-readable section heading for the stream.
func (s Stream) Label() string {
	switch s {
	case StreamAnnouncements:
		return "Announcements"
	case StreamMessages:
		return "Messages"
	case StreamGrades:
		return "Grades"
	case StreamEvents:
		return "Calendar events"
	case StreamHomework:
		return "Homework"
	}
	return string(s)
}
