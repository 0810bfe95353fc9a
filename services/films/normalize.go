package films

import (
	"animfilms-backend/lib/htmlutil"
	"animfilms-backend/lib/scrapers/wikitable"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// source columns, anything else in the table is ignored
const (
	ColumnTitle          = "Title"
	ColumnYear           = "Year"
	ColumnWorldwideGross = "Worldwide gross"
)

// RequiredColumns are the columns a source table must have.
var RequiredColumns = []string{ColumnTitle, ColumnYear, ColumnWorldwideGross}

// field names used in NormalizationError
const (
	FieldTitle          = "title"
	FieldYear           = "year"
	FieldWorldwideGross = "worldwideGross"
)

var (
	ErrMissingValue = errors.New("value is missing")
	ErrNotNumeric   = errors.New("value is not a number")
)

// NormalizationError means a single row could not be turned into a Film.
type NormalizationError struct {
	Field string
	Value string
	Err   error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %s %q: %s", e.Field, e.Value, e.Err.Error())
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}

var footnoteGlyphs = strings.NewReplacer("†", "", "‡", "")
var footnoteRef = regexp.MustCompile(`\[(?:nb\s*)?\d+\]`)

// NormalizeTitle strips footnote daggers and `[nb 1]` / `[1]` style references.
func NormalizeTitle(raw string) string {
	title := footnoteGlyphs.Replace(raw)
	title = footnoteRef.ReplaceAllString(title, "")
	return htmlutil.CleanText(title)
}

var bracketRef = regexp.MustCompile(`\[[^\]]*\]`)
var decimal = regexp.MustCompile(`^\d+(\.\d+)?$`)

// ParseGross parses an amount like `$1,450,026,933` or `US$ 1,450,026,933[a]`.
func ParseGross(raw string) (float64, error) {
	cleaned := bracketRef.ReplaceAllString(raw, "")
	cleaned = strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, cleaned)
	cleaned = strings.TrimPrefix(cleaned, "US")

	if cleaned == "" {
		return 0, &NormalizationError{Field: FieldWorldwideGross, Value: raw, Err: ErrMissingValue}
	}
	if !decimal.MatchString(cleaned) {
		return 0, &NormalizationError{Field: FieldWorldwideGross, Value: raw, Err: ErrNotNumeric}
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &NormalizationError{Field: FieldWorldwideGross, Value: raw, Err: err}
	}
	return value, nil
}

// RowResult is the outcome of normalizing one row, exactly one of
// Film (when Ok), Empty or Err is meaningful.
type RowResult struct {
	Ordinal int
	Film    Film
	// Empty rows are blank separators in the source table, they are dropped silently.
	Empty bool
	Err   *NormalizationError
}

func (r RowResult) Ok() bool {
	return !r.Empty && r.Err == nil
}

func rowError(ordinal int, err error) RowResult {
	var normErr *NormalizationError
	if !errors.As(err, &normErr) {
		normErr = &NormalizationError{Err: err}
	}
	return RowResult{Ordinal: ordinal, Err: normErr}
}

// Normalize turns a raw table row into a Film.
func Normalize(row wikitable.RawRow) RowResult {
	rawTitle, hasTitle := row.Get(ColumnTitle)
	rawYear, hasYear := row.Get(ColumnYear)
	rawGross, hasGross := row.Get(ColumnWorldwideGross)

	title := NormalizeTitle(rawTitle)
	if title == "" && strings.TrimSpace(rawYear) == "" && strings.TrimSpace(rawGross) == "" {
		return RowResult{Ordinal: row.Ordinal, Empty: true}
	}

	if !hasTitle || title == "" {
		return rowError(row.Ordinal, &NormalizationError{Field: FieldTitle, Value: rawTitle, Err: ErrMissingValue})
	}
	if !hasYear || rawYear == "" {
		return rowError(row.Ordinal, &NormalizationError{Field: FieldYear, Value: rawYear, Err: ErrMissingValue})
	}
	if !hasGross {
		return rowError(row.Ordinal, &NormalizationError{Field: FieldWorldwideGross, Err: ErrMissingValue})
	}
	gross, err := ParseGross(rawGross)
	if err != nil {
		return rowError(row.Ordinal, err)
	}

	return RowResult{
		Ordinal: row.Ordinal,
		Film: Film{
			Title:          title,
			Year:           rawYear,
			WorldwideGross: gross,
		},
	}
}
