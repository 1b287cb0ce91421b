package domain

import (
	"fmt"
	"time"
)

// Urgency ranks a classification result. The numeric order is the
// aggregation precedence: Urgent > Normal > NotUrgent.
type Urgency int

const (
	NotUrgent Urgency = iota
	Normal
	Urgent
)

func (u Urgency) String() string {
	switch u {
	case Urgent:
		return "URGENT"
	case NotUrgent:
		return "NOT_URGENT"
	default:
		return "NORMAL"
	}
}

// ParseUrgency maps the classifier's wire value onto an Urgency. Unknown
// values fall back to Normal rather than failing the run.
func ParseUrgency(value string) Urgency {
	switch value {
	case "URGENT":
		return Urgent
	case "NOT_URGENT":
		return NotUrgent
	default:
		return Normal
	}
}

// ClassificationResult is the summarization outcome for one stream's batch
// of new records.
type ClassificationResult struct {
	Urgency   Urgency
	Summary   string
	KeyPoints []string
}

// Present reports whether the result counts for aggregation and dispatch.
// A result without key points carries nothing worth notifying about.
func (r ClassificationResult) Present() bool {
	return len(r.KeyPoints) > 0
}

// AggregateUrgency reduces the present results into the run-level rank.
// With no present results it returns NotUrgent; callers must check
// presence separately before dispatching.
func AggregateUrgency(results []ClassificationResult) Urgency {
	agg := NotUrgent
	for _, r := range results {
		if !r.Present() {
			continue
		}
		if r.Urgency > agg {
			agg = r.Urgency
		}
	}
	return agg
}

// DegradedResult substitutes for a failed classifier call so new records
// still reach the user: normal urgency, a count summary, titles as points.
func DegradedResult(stream Stream, records []Record) ClassificationResult {
	points := make([]string, 0, len(records))
	for _, r := range records {
		points = append(points, r.Display().Title)
	}
	return ClassificationResult{
		Urgency:   Normal,
		Summary:   fmt.Sprintf("Summary unavailable. New %s: %d.", stream, len(records)),
		KeyPoints: points,
	}
}

// Section pairs one stream's new records with their classification.
type Section struct {
	Stream   Stream
	Records  []Record
	Result   ClassificationResult
	Degraded bool
}

// Notification is the single aggregated payload of one run, sections in
// fixed stream order.
type Notification struct {
	GeneratedAt time.Time
	Sections    []Section
}

// Urgency returns the aggregated rank over the present sections.
func (n Notification) Urgency() Urgency {
	results := make([]ClassificationResult, 0, len(n.Sections))
	for _, s := range n.Sections {
		results = append(results, s.Result)
	}
	return AggregateUrgency(results)
}

// HasContent reports whether any section is worth dispatching.
func (n Notification) HasContent() bool {
	for _, s := range n.Sections {
		if s.Result.Present() {
			return true
		}
	}
	return false
}
