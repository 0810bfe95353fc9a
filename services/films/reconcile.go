package films

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// StoreError means a single film could not be written, the rest of the batch
// is still written.
type StoreError struct {
	Title string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %q: %s", e.Title, e.Err.Error())
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Title string `json:"title"`
		Error string `json:"error"`
	}{
		Title: e.Title,
		Error: e.Err.Error(),
	})
}

type ReconcileReport struct {
	// Upserted is the amount of successful writes, duplicates included.
	Upserted int `json:"upserted"`
	// Duplicates is the amount of films whose title already appeared earlier
	// in the same batch, the later one overwrites the earlier one.
	Duplicates int           `json:"duplicates"`
	Failed     []*StoreError `json:"failed,omitempty"`
}

// Reconcile upserts every film into store in order, so the last film of a
// given title wins.
func Reconcile(ctx context.Context, store Store, films []Film) ReconcileReport {
	ctx, span := tracer.Start(ctx, "Reconcile")
	defer span.End()

	report := ReconcileReport{}
	seen := make(map[string]struct{}, len(films))
	for _, film := range films {
		if _, ok := seen[film.Title]; ok {
			report.Duplicates++
		}
		seen[film.Title] = struct{}{}

		err := store.Upsert(ctx, film)
		if err != nil {
			report.Failed = append(report.Failed, &StoreError{Title: film.Title, Err: err})
			continue
		}
		report.Upserted++
	}

	span.SetAttributes(
		attribute.Int("upserted", report.Upserted),
		attribute.Int("duplicates", report.Duplicates),
		attribute.Int("failed", len(report.Failed)),
	)
	if len(report.Failed) > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d films failed to store", len(report.Failed)))
	}
	return report
}
