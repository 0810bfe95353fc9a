package wikitable

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html><body>
<table class="infobox"><tr><td>Contents</td></tr></table>
<table class="wikitable sortable">
<thead>
<tr><th>Rank</th><th>Title</th><th>Worldwide gross<sup class="reference"><a>[1]</a></sup></th><th>Year</th><th>Ref</th></tr>
</thead>
<tbody>
<tr><td>1</td><th scope="row"><i>Inside Out 2</i> †</th><td>$1,698,863,816</td><td>2024</td><td><sup>[2]</sup></td></tr>
<tr><td>2</td><th scope="row"><i>Frozen II</i></th><td>$1,450,026,933</td><td>2019</td><td></td><td>extra</td></tr>
<tr><td>3</td><th scope="row"><i>Broken row</i></th><td>$1</td></tr>
<tr><td>4</td><th scope="row"><i>Encanto</i> [nb 1]</th><td>$256,786,742</td><td>2021</td><td>
	<table><tr><td>nested</td><td>a</td><td>b</td><td>c</td><td>d</td></tr></table>
</td></tr>
</tbody>
</table>
<table class="wikitable"><tr><th>Year</th><th>Title</th></tr><tr><td>2016</td><td>Moana</td></tr></table>
</body></html>`

func TestExtractDefaultsToSecondTable(t *testing.T) {
	table, err := Extract(context.Background(), []byte(page), TableSelector{})
	require.NoError(t, err)

	require.Equal(t, []string{"Rank", "Title", "Worldwide gross", "Year", "Ref"}, table.Header)
	require.Len(t, table.Rows, 3)
	require.Equal(t, 1, table.Discarded)

	require.Equal(t, "Inside Out 2 †", table.Rows[0].Cells["Title"])
	require.Equal(t, "$1,698,863,816", table.Rows[0].Cells["Worldwide gross"])
	require.Equal(t, "2024", table.Rows[0].Cells["Year"])
	require.Equal(t, 1, table.Rows[0].Ordinal)

	// extra cells are ignored
	require.Len(t, table.Rows[1].Cells, 5)
	require.Equal(t, "Frozen II", table.Rows[1].Cells["Title"])

	title, ok := table.Rows[2].Get("Title")
	require.True(t, ok)
	require.Equal(t, "Encanto [nb 1]", title)
	require.Equal(t, 4, table.Rows[2].Ordinal)

	_, ok = table.Rows[2].Get("Director")
	require.False(t, ok)
}

func TestExtractByOrdinal(t *testing.T) {
	table, err := Extract(context.Background(), []byte(page), TableSelector{Ordinal: 4})
	require.NoError(t, err)
	require.Equal(t, []string{"Year", "Title"}, table.Header)
	require.Equal(t, "Moana", table.Rows[0].Cells["Title"])
}

func TestExtractByHeaders(t *testing.T) {
	table, err := Extract(context.Background(), []byte(page), TableSelector{
		Headers: []string{"title", "WORLDWIDE GROSS"},
	})
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	_, err = Extract(context.Background(), []byte(page), TableSelector{
		Headers: []string{"Title", "Director"},
	})
	var extractErr *ExtractionError
	require.True(t, errors.As(err, &extractErr))
}

func TestExtractErrors(t *testing.T) {
	testCases := []struct {
		name     string
		document string
		selector TableSelector
	}{
		{
			name:     "no tables",
			document: `<html><body><p>moved</p></body></html>`,
		},
		{
			name:     "one table",
			document: `<table><tr><th>Title</th></tr><tr><td>Moana</td></tr></table>`,
		},
		{
			name:     "ordinal past the end",
			document: page,
			selector: TableSelector{Ordinal: 9},
		},
		{
			name:     "header only",
			document: `<table></table><table><tr><th>Title</th><th>Year</th></tr></table>`,
		},
		{
			name:     "every row malformed",
			document: `<table></table><table><tr><th>Title</th><th>Year</th></tr><tr><td>Moana</td></tr></table>`,
		},
		{
			name:     "no rows",
			document: `<table></table><table></table>`,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			_, err := Extract(context.Background(), []byte(test.document), test.selector)
			require.Error(t, err)

			var extractErr *ExtractionError
			require.True(t, errors.As(err, &extractErr), "expected an ExtractionError, got %v", err)
			require.NotEmpty(t, extractErr.Reason)
		})
	}
}

func TestExtractKeepsBlankRows(t *testing.T) {
	document := `<table></table>
<table>
<tr><th>Title</th><th>Year</th><th>Worldwide gross</th></tr>
<tr><td>Moana</td><td>2016</td><td>$687,229,620</td></tr>
<tr><td></td><td> </td><td>&nbsp;</td></tr>
<tr><td colspan="3">Figures are not adjusted for inflation.</td></tr>
</table>`

	table, err := Extract(context.Background(), []byte(document), TableSelector{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	require.Equal(t, 1, table.Discarded)

	blank := table.Rows[1]
	require.Equal(t, 2, blank.Ordinal)
	require.Equal(t, map[string]string{
		"Title":           "",
		"Year":            "",
		"Worldwide gross": "",
	}, blank.Cells)
}
