package films

import (
	"animfilms-backend/internal/telemetry"
	"animfilms-backend/lib/scrapers/wikitable"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const DefaultSourceUrl = "https://en.wikipedia.org/wiki/List_of_highest-grossing_animated_films"

// RowSkip describes a row that was dropped because it could not be normalized.
type RowSkip struct {
	Ordinal int    `json:"ordinal"`
	Field   string `json:"field"`
	Reason  string `json:"reason"`
}

// RefreshOutcome is the summary of a single refresh cycle.
type RefreshOutcome struct {
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	// Rows is the amount of data rows the table had.
	Rows      int       `json:"rows"`
	Discarded int       `json:"discarded"`
	Empty     int       `json:"empty"`
	Skipped   int       `json:"skipped"`
	Skips     []RowSkip `json:"skips,omitempty"`

	Reconcile ReconcileReport `json:"reconcile"`
}

type JobOptions struct {
	SourceUrl string
	Selector  wikitable.TableSelector
	Fetcher   wikitable.Fetcher
	Store     Store
	Telemetry telemetry.API
	// Notifier is told about extraction failures, it can be nil.
	Notifier Notifier
}

type jobMetrics struct {
	runs    metric.Int64Counter
	stored  metric.Int64Counter
	skipped metric.Int64Counter
	failed  metric.Int64Counter
}

func newJobMetrics() (jobMetrics, error) {
	runs, err := meter.Int64Counter("films.refresh.runs", metric.WithDescription("refresh cycles, by result"))
	if err != nil {
		return jobMetrics{}, err
	}
	stored, err := meter.Int64Counter("films.refresh.stored", metric.WithDescription("films written to the store"))
	if err != nil {
		return jobMetrics{}, err
	}
	skipped, err := meter.Int64Counter("films.refresh.skipped", metric.WithDescription("rows that could not be normalized"))
	if err != nil {
		return jobMetrics{}, err
	}
	failed, err := meter.Int64Counter("films.refresh.failed", metric.WithDescription("films that could not be stored"))
	if err != nil {
		return jobMetrics{}, err
	}
	return jobMetrics{
		runs:    runs,
		stored:  stored,
		skipped: skipped,
		failed:  failed,
	}, nil
}

// Job is a single fetch, extract, normalize and reconcile pipeline.
type Job struct {
	opts    JobOptions
	tel     telemetry.API
	metrics jobMetrics
}

func NewJob(opts JobOptions) (Job, error) {
	if opts.Fetcher == nil {
		return Job{}, fmt.Errorf("new job: a fetcher was not specified")
	}
	if opts.Store == nil {
		return Job{}, fmt.Errorf("new job: a store was not specified")
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.NewSlogAPI(slog.Default())
	}
	if opts.SourceUrl == "" {
		opts.SourceUrl = DefaultSourceUrl
	}

	metrics, err := newJobMetrics()
	if err != nil {
		return Job{}, fmt.Errorf("new job: %w", err)
	}

	return Job{
		opts:    opts,
		tel:     telemetry.NewScopedAPI("refresh", opts.Telemetry),
		metrics: metrics,
	}, nil
}

func (j Job) notify(ctx context.Context, subject string, err error) {
	if j.opts.Notifier == nil {
		return
	}
	body := fmt.Sprintf(
		"The animated films refresh could not complete.\n\nSource: %s\nSelector: %s\nError: %s\n",
		j.opts.SourceUrl, j.opts.Selector, err.Error(),
	)
	nerr := j.opts.Notifier.Notify(ctx, subject, body)
	if nerr != nil {
		j.tel.ReportWarning("notify", nerr)
	}
}

func (j Job) fetch(ctx context.Context) ([]byte, error) {
	document, err := j.opts.Fetcher.Fetch(ctx, j.opts.SourceUrl)
	if err != nil {
		var fetchErr *wikitable.FetchError
		if !errors.As(err, &fetchErr) {
			err = &wikitable.FetchError{Url: j.opts.SourceUrl, Err: err}
		}
		return nil, err
	}
	return document, nil
}

func missingColumns(header []string) []string {
	var missing []string
	for _, required := range RequiredColumns {
		found := false
		for _, h := range header {
			if h == required {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, required)
		}
	}
	return missing
}

func (j Job) extract(ctx context.Context, document []byte) (wikitable.Table, error) {
	table, err := wikitable.Extract(ctx, document, j.opts.Selector)
	if err != nil {
		return wikitable.Table{}, err
	}
	missing := missingColumns(table.Header)
	if len(missing) > 0 {
		return wikitable.Table{}, &wikitable.ExtractionError{
			Reason: fmt.Sprintf(
				"%s is missing the columns %q (header: %q)",
				j.opts.Selector, missing, table.Header,
			),
		}
	}
	return table, nil
}

// Run executes one refresh cycle.
//
// A *wikitable.FetchError or *wikitable.ExtractionError is returned when the
// cycle is aborted, in which case the store has not been touched. Rows that
// fail to normalize and films that fail to store do not fail the cycle, they
// are reported in the outcome.
func (j Job) Run(ctx context.Context) (RefreshOutcome, error) {
	ctx, span := tracer.Start(ctx, "Job:Run")
	defer span.End()

	outcome := RefreshOutcome{StartedAt: time.Now()}

	document, err := j.fetch(ctx)
	if err != nil {
		j.tel.ReportWarning("fetch", err)
		j.metrics.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "fetch_error")))
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch source page")
		outcome.Duration = time.Since(outcome.StartedAt)
		return outcome, err
	}

	table, err := j.extract(ctx, document)
	if err != nil {
		j.tel.ReportBroken("extract", err, j.opts.SourceUrl)
		j.notify(ctx, "animated films refresh: source table changed", err)
		j.metrics.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "extraction_error")))
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract table")
		outcome.Duration = time.Since(outcome.StartedAt)
		return outcome, err
	}
	outcome.Rows = len(table.Rows)
	outcome.Discarded = table.Discarded

	films := make([]Film, 0, len(table.Rows))
	for _, row := range table.Rows {
		result := Normalize(row)
		switch {
		case result.Empty:
			outcome.Empty++
		case result.Err != nil:
			outcome.Skipped++
			outcome.Skips = append(outcome.Skips, RowSkip{
				Ordinal: result.Ordinal,
				Field:   result.Err.Field,
				Reason:  result.Err.Error(),
			})
			j.tel.ReportDebug(fmt.Sprintf("skip row %d", result.Ordinal), result.Err)
		default:
			films = append(films, result.Film)
		}
	}

	outcome.Reconcile = Reconcile(ctx, j.opts.Store, films)
	for _, failed := range outcome.Reconcile.Failed {
		j.tel.ReportWarning("store", failed)
	}

	j.tel.ReportCount("rows", int64(outcome.Rows))
	j.tel.ReportCount("discarded", int64(outcome.Discarded))
	j.tel.ReportCount("skipped", int64(outcome.Skipped))
	j.tel.ReportCount("stored", int64(outcome.Reconcile.Upserted))
	j.tel.ReportCount("failed", int64(len(outcome.Reconcile.Failed)))

	j.metrics.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "ok")))
	j.metrics.stored.Add(ctx, int64(outcome.Reconcile.Upserted))
	j.metrics.skipped.Add(ctx, int64(outcome.Skipped))
	j.metrics.failed.Add(ctx, int64(len(outcome.Reconcile.Failed)))

	span.SetAttributes(
		attribute.Int("rows", outcome.Rows),
		attribute.Int("skipped", outcome.Skipped),
		attribute.Int("stored", outcome.Reconcile.Upserted),
	)

	outcome.Duration = time.Since(outcome.StartedAt)
	return outcome, nil
}

// Summary is a single line description of the outcome meant for logs and the cli.
func (o RefreshOutcome) Summary() string {
	parts := []string{
		fmt.Sprintf("%d rows", o.Rows),
		fmt.Sprintf("%d stored", o.Reconcile.Upserted),
	}
	if o.Reconcile.Duplicates > 0 {
		parts = append(parts, fmt.Sprintf("%d duplicate titles", o.Reconcile.Duplicates))
	}
	if o.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", o.Skipped))
	}
	if o.Discarded > 0 {
		parts = append(parts, fmt.Sprintf("%d malformed", o.Discarded))
	}
	if len(o.Reconcile.Failed) > 0 {
		parts = append(parts, fmt.Sprintf("%d failed to store", len(o.Reconcile.Failed)))
	}
	return strings.Join(parts, ", ")
}
