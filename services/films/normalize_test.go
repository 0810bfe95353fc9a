package films

import (
	"animfilms-backend/lib/scrapers/wikitable"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeTitle(t *testing.T) {
	testCases := []struct {
		raw      string
		expected string
	}{
		{raw: "Frozen II†", expected: "Frozen II"},
		{raw: "Encanto [nb 1]", expected: "Encanto"},
		{raw: "Encanto[nb 12]", expected: "Encanto"},
		{raw: "Toy Story 4‡[12]", expected: "Toy Story 4"},
		{raw: "  Moana  ", expected: "Moana"},
		{raw: "The  Lion\tKing", expected: "The Lion King"},
		{raw: "WALL-E [a]", expected: "WALL-E [a]"},
		{raw: "†", expected: ""},
	}

	for _, test := range testCases {
		t.Run(test.raw, func(t *testing.T) {
			require.Equal(t, test.expected, NormalizeTitle(test.raw))
		})
	}
}

func TestParseGross(t *testing.T) {
	testCases := []struct {
		raw      string
		expected float64
		err      error
	}{
		{raw: "$1,450,026,933", expected: 1450026933},
		{raw: "US$ 1,234", expected: 1234},
		{raw: "$1,000[a]", expected: 1000},
		{raw: "$ 987,654 ", expected: 987654},
		{raw: "€200", expected: 200},
		{raw: "1.5", expected: 1.5},
		{raw: "TBD", err: ErrNotNumeric},
		{raw: "-5", err: ErrNotNumeric},
		{raw: "NaN", err: ErrNotNumeric},
		{raw: "Inf", err: ErrNotNumeric},
		{raw: "1e9", err: ErrNotNumeric},
		{raw: "", err: ErrMissingValue},
		{raw: "$[1]", err: ErrMissingValue},
	}

	for _, test := range testCases {
		t.Run(test.raw, func(t *testing.T) {
			value, err := ParseGross(test.raw)
			if test.err != nil {
				require.ErrorIs(t, err, test.err)

				var normErr *NormalizationError
				require.True(t, errors.As(err, &normErr))
				require.Equal(t, FieldWorldwideGross, normErr.Field)
				require.Equal(t, test.raw, normErr.Value)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expected, value)
		})
	}
}

func row(ordinal int, title, year, gross string) wikitable.RawRow {
	return wikitable.RawRow{
		Ordinal: ordinal,
		Cells: map[string]string{
			"Rank":               "1",
			ColumnTitle:          title,
			ColumnYear:           year,
			ColumnWorldwideGross: gross,
		},
	}
}

func TestNormalize(t *testing.T) {
	result := Normalize(row(1, "Frozen II†", "2019", "$1,450,026,933"))
	require.True(t, result.Ok())
	require.Equal(t, 1, result.Ordinal)
	require.Equal(t, Film{
		Title:          "Frozen II",
		Year:           "2019",
		WorldwideGross: 1450026933,
	}, result.Film)

	// the year is passed through verbatim
	result = Normalize(row(2, "Moana", "2016 ", "$687,229,620"))
	require.True(t, result.Ok())
	require.Equal(t, "2016 ", result.Film.Year)
}

func TestNormalizeEmptyRow(t *testing.T) {
	result := Normalize(row(3, "", "", ""))
	require.True(t, result.Empty)
	require.False(t, result.Ok())
	require.Nil(t, result.Err)

	result = Normalize(row(3, " † ", " ", ""))
	require.True(t, result.Empty)
}

func TestNormalizeRejectsRow(t *testing.T) {
	testCases := []struct {
		name  string
		row   wikitable.RawRow
		field string
		err   error
	}{
		{
			name:  "missing title",
			row:   row(1, "", "2019", "$1"),
			field: FieldTitle,
			err:   ErrMissingValue,
		},
		{
			name:  "missing year",
			row:   row(2, "Frozen II", "", "$1"),
			field: FieldYear,
			err:   ErrMissingValue,
		},
		{
			name:  "unknown gross",
			row:   row(3, "Untitled sequel", "2027", "TBD"),
			field: FieldWorldwideGross,
			err:   ErrNotNumeric,
		},
		{
			name: "no year column",
			row: wikitable.RawRow{
				Ordinal: 4,
				Cells: map[string]string{
					ColumnTitle:          "Frozen",
					ColumnWorldwideGross: "$1",
				},
			},
			field: FieldYear,
			err:   ErrMissingValue,
		},
		{
			name: "no gross column",
			row: wikitable.RawRow{
				Ordinal: 5,
				Cells: map[string]string{
					ColumnTitle: "Frozen",
					ColumnYear:  "2013",
				},
			},
			field: FieldWorldwideGross,
			err:   ErrMissingValue,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			result := Normalize(test.row)
			require.False(t, result.Ok())
			require.False(t, result.Empty)
			require.NotNil(t, result.Err)
			require.Equal(t, test.row.Ordinal, result.Ordinal)
			require.Equal(t, test.field, result.Err.Field)
			require.ErrorIs(t, result.Err, test.err)
		})
	}
}
