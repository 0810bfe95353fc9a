// Package wikitable pulls a single data table out of a wiki style html page.
//
// The page is an external document we do not control, which table is used is
// part of the integration contract and is expressed with a TableSelector.
package wikitable

import (
	"animfilms-backend/lib/htmlutil"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ExtractionError means the document does not have the expected table structure.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract table: %s", e.Reason)
}

// RawRow is a data row keyed by header name, values are cleaned cell text.
type RawRow struct {
	// Ordinal is the position of the row in the table, the header row is 0.
	Ordinal int
	Cells   map[string]string
}

// Get returns the cell under column, ok is false if the table has no such column.
func (r RawRow) Get(column string) (value string, ok bool) {
	value, ok = r.Cells[column]
	return value, ok
}

type Table struct {
	Header []string
	Rows   []RawRow
	// Discarded is the amount of rows that had fewer cells than the header.
	Discarded int
}

const DefaultOrdinal = 2

// TableSelector picks the table to extract.
//
// If Headers is set, the first table whose header row has every one of the
// given columns (case-insensitive) is used. Otherwise the table at Ordinal
// (1-based, in document order, nested tables included) is used, the zero value
// means DefaultOrdinal, the second table of the page.
type TableSelector struct {
	Ordinal int      `json:"ordinal" yaml:"ordinal"`
	Headers []string `json:"headers" yaml:"headers"`
}

func (s TableSelector) ordinal() int {
	if s.Ordinal <= 0 {
		return DefaultOrdinal
	}
	return s.Ordinal
}

func (s TableSelector) String() string {
	if len(s.Headers) > 0 {
		return fmt.Sprintf("table with headers %q", s.Headers)
	}
	return fmt.Sprintf("table #%d", s.ordinal())
}

func (s TableSelector) pick(tables *goquery.Selection) (*goquery.Selection, error) {
	if len(s.Headers) > 0 {
		var found *goquery.Selection
		tables.EachWithBreak(func(_ int, table *goquery.Selection) bool {
			if hasColumns(headerNames(tableRows(table).First()), s.Headers) {
				found = table
				return false
			}
			return true
		})
		if found == nil {
			return nil, &ExtractionError{
				Reason: fmt.Sprintf("none of the %d tables has the columns %q", tables.Length(), s.Headers),
			}
		}
		return found, nil
	}

	ordinal := s.ordinal()
	if tables.Length() < ordinal {
		return nil, &ExtractionError{
			Reason: fmt.Sprintf("expected at least %d tables, found %d", ordinal, tables.Length()),
		}
	}
	return tables.Eq(ordinal - 1), nil
}

func hasColumns(header []string, columns []string) bool {
	for _, c := range columns {
		found := false
		for _, h := range header {
			if strings.EqualFold(h, c) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// rows of the table itself, not the ones of tables nested inside its cells
func tableRows(table *goquery.Selection) *goquery.Selection {
	return table.ChildrenFiltered("thead, tbody, tfoot").ChildrenFiltered("tr")
}

func rowCells(row *goquery.Selection) *goquery.Selection {
	return row.ChildrenFiltered("td, th")
}

var bracketRef = regexp.MustCompile(`\[[^\]]*\]`)

func headerNames(row *goquery.Selection) []string {
	cells := rowCells(row)
	names := make([]string, cells.Length())
	cells.Each(func(i int, cell *goquery.Selection) {
		name := htmlutil.CellText(cell)
		name = bracketRef.ReplaceAllString(name, "")
		names[i] = htmlutil.CleanText(name)
	})
	return names
}

// Extract parses document and returns the rows of the table chosen by sel.
// The first row of the table is the header, rows with fewer cells than the
// header are discarded rather than padded.
func Extract(ctx context.Context, document []byte, sel TableSelector) (Table, error) {
	_, span := tracer.Start(ctx, "Extract")
	defer span.End()

	table, err := extract(document, sel)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract table")
		return Table{}, err
	}

	span.SetAttributes(
		attribute.String("selector", sel.String()),
		attribute.StringSlice("header", table.Header),
		attribute.Int("rows", len(table.Rows)),
		attribute.Int("discarded", table.Discarded),
	)
	return table, nil
}

func extract(document []byte, sel TableSelector) (Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(document))
	if err != nil {
		return Table{}, &ExtractionError{Reason: fmt.Sprintf("parse document: %s", err.Error())}
	}

	target, err := sel.pick(doc.Find("table"))
	if err != nil {
		return Table{}, err
	}

	rows := tableRows(target)
	if rows.Length() == 0 {
		return Table{}, &ExtractionError{Reason: fmt.Sprintf("%s has no rows", sel)}
	}

	header := headerNames(rows.First())
	if len(header) == 0 {
		return Table{}, &ExtractionError{Reason: fmt.Sprintf("%s has an empty header row", sel)}
	}

	out := Table{Header: header}
	rows.Slice(1, goquery.ToEnd).Each(func(i int, row *goquery.Selection) {
		cells := rowCells(row)
		// blank cells still count, a fully blank row is returned as data
		if cells.Length() < len(header) {
			out.Discarded++
			return
		}

		values := make(map[string]string, len(header))
		for col, name := range header {
			if _, exists := values[name]; exists {
				continue
			}
			values[name] = htmlutil.CellText(cells.Eq(col))
		}
		out.Rows = append(out.Rows, RawRow{
			Ordinal: i + 1,
			Cells:   values,
		})
	})

	if len(out.Rows) == 0 {
		return Table{}, &ExtractionError{
			Reason: fmt.Sprintf("%s has no data rows (%d discarded)", sel, out.Discarded),
		}
	}

	return out, nil
}
