package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FlakM/czujka-librus/internal/domain"
	"github.com/FlakM/czujka-librus/internal/ports"
)

// Phase names a stage of one sync run.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAuthenticating
	PhaseFetching
	PhaseClassifying
	PhaseDispatching
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseFetching:
		return "fetching"
	case PhaseClassifying:
		return "classifying"
	case PhaseDispatching:
		return "dispatching"
	case PhaseDone:
		return "done"
	default:
		return "failed"
	}
}

// StreamStatus is the typed outcome of one stream's pipeline, so callers
// cannot confuse "nothing new" with "pipeline failed".
type StreamStatus int

const (
	StreamOK StreamStatus = iota
	StreamEmpty
	StreamFailed
)

// StreamReport is one pipeline's contribution to a run.
type StreamReport struct {
	Stream  domain.Stream
	Status  StreamStatus
	Records []domain.Record
	Err     error
}

// Runner orchestrates one run: authenticate, fan the five pipelines out
// concurrently with per-stream failure isolation, classify the non-empty
// batches sequentially, then dispatch a single aggregated notification.
type Runner struct {
	portal     ports.Portal
	syncer     *Syncer
	classifier ports.Classifier
	notifiers  []ports.Notifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewRunner wires the orchestrator.
func NewRunner(portal ports.Portal, syncer *Syncer, classifier ports.Classifier, notifiers []ports.Notifier, logger *slog.Logger) *Runner {
	return &Runner{
		portal:     portal,
		syncer:     syncer,
		classifier: classifier,
		notifiers:  notifiers,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes one full sync run. Authentication failure is the only
// stream-independent fatal condition; everything after it degrades
// per stream.
func (r *Runner) Run(ctx context.Context) error {
	logger := r.logger.With("run_id", uuid.NewString())
	logger.Info("run starting")

	logger.Info("entering phase", "phase", PhaseAuthenticating.String())
	if err := r.portal.Authenticate(ctx); err != nil {
		logger.Error("authentication failed", "phase", PhaseFailed.String(), "error", err)
		return fmt.Errorf("authenticate: %w", err)
	}

	logger.Info("entering phase", "phase", PhaseFetching.String())
	reports := r.fetchAll(ctx, logger)

	logger.Info("entering phase", "phase", PhaseClassifying.String())
	sections := r.classifyAll(ctx, logger, reports)

	notification := domain.Notification{GeneratedAt: r.now(), Sections: sections}
	if !notification.HasContent() {
		logger.Info("no new items to notify about", "phase", PhaseDone.String())
		return nil
	}

	logger.Info("entering phase", "phase", PhaseDispatching.String(),
		"urgency", notification.Urgency().String())
	var dispatchErrs []error
	for _, notifier := range r.notifiers {
		if err := notifier.Send(ctx, notification); err != nil {
			logger.Error("dispatch failed", "error", err)
			dispatchErrs = append(dispatchErrs, err)
		}
	}
	if len(dispatchErrs) > 0 {
		return fmt.Errorf("dispatch: %w", errors.Join(dispatchErrs...))
	}

	logger.Info("run completed", "phase", PhaseDone.String())
	return nil
}

// fetchAll runs the five pipelines concurrently and waits for all of them.
// Each goroutine writes only its own report slot, so no locking is needed;
// a failing stream becomes a failed report and never aborts its siblings.
func (r *Runner) fetchAll(ctx context.Context, logger *slog.Logger) []StreamReport {
	type pipeline struct {
		stream domain.Stream
		sync   func(context.Context) ([]domain.Record, error)
	}
	pipelines := []pipeline{
		{domain.StreamAnnouncements, r.syncer.SyncAnnouncements},
		{domain.StreamMessages, r.syncer.SyncMessages},
		{domain.StreamGrades, r.syncer.SyncGrades},
		{domain.StreamEvents, r.syncer.SyncEvents},
		{domain.StreamHomework, r.syncer.SyncHomework},
	}

	reports := make([]StreamReport, len(pipelines))
	var wg sync.WaitGroup
	for i, p := range pipelines {
		wg.Add(1)
		go func(i int, p pipeline) {
			defer wg.Done()
			records, err := p.sync(ctx)
			switch {
			case err != nil:
				logger.Error("stream sync failed", "stream", p.stream, "error", err)
				reports[i] = StreamReport{Stream: p.stream, Status: StreamFailed, Err: err}
			case len(records) == 0:
				reports[i] = StreamReport{Stream: p.stream, Status: StreamEmpty}
			default:
				logger.Info("found new records", "stream", p.stream, "count", len(records))
				reports[i] = StreamReport{Stream: p.stream, Status: StreamOK, Records: records}
			}
		}(i, p)
	}
	wg.Wait()
	return reports
}

// classifyAll walks the reports in listed stream order and classifies each
// non-empty batch. A classifier failure substitutes the degraded result so
// the stream's records are still surfaced to the user.
func (r *Runner) classifyAll(ctx context.Context, logger *slog.Logger, reports []StreamReport) []domain.Section {
	var sections []domain.Section
	for _, rep := range reports {
		if rep.Status != StreamOK {
			continue
		}
		result, err := r.classifier.Classify(ctx, rep.Stream, rep.Records)
		degraded := false
		if err != nil {
			logger.Error("classification failed, substituting degraded result",
				"stream", rep.Stream, "error", err)
			result = domain.DegradedResult(rep.Stream, rep.Records)
			degraded = true
		}
		logger.Info("classification completed", "stream", rep.Stream,
			"urgency", result.Urgency.String(), "degraded", degraded)
		sections = append(sections, domain.Section{
			Stream:   rep.Stream,
			Records:  rep.Records,
			Result:   result,
			Degraded: degraded,
		})
	}
	return sections
}
