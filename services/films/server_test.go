package films

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type fixedStatus struct {
	status Status
	ok     bool
}

func (s fixedStatus) LastStatus() (Status, bool) {
	return s.status, s.ok
}

func setupServer(t testing.TB, status StatusSource, films ...Film) (*resty.Client, func()) {
	store, cleanup := setupStore(t)
	seed(t, store, films...)

	server := httptest.NewServer(NewServer(store, status).Handler())
	client := resty.New().SetBaseURL(server.URL)

	return client, func() {
		server.Close()
		cleanup()
	}
}

func getJson(t testing.TB, client *resty.Client, path string, out any) int {
	res, err := client.R().Get(path)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "application/json", res.Header().Get("content-type"))
	err = json.Unmarshal(res.Body(), out)
	if err != nil {
		t.Fatal(err)
	}
	return res.StatusCode()
}

func TestServerHome(t *testing.T) {
	client, cleanup := setupServer(t, nil)
	defer cleanup()

	res, err := client.R().Get("/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())
	require.Contains(t, res.String(), `action="/search"`)
	require.Contains(t, res.String(), `href="/films"`)
}

func TestServerFilms(t *testing.T) {
	client, cleanup := setupServer(t, nil)
	defer cleanup()

	res, err := client.R().Get("/films")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())
	require.JSONEq(t, "[]", res.String())
}

func TestServerFilmsJsonKeys(t *testing.T) {
	client, cleanup := setupServer(t, nil, frozen2)
	defer cleanup()

	res, err := client.R().Get("/films")
	require.NoError(t, err)
	require.JSONEq(t, `[{"Title": "Frozen II", "Year": "2019", "Worldwide gross": 1450026933}]`, res.String())
}

func TestServerFilmsByYear(t *testing.T) {
	client, cleanup := setupServer(t, nil, frozen2, frozen, moana)
	defer cleanup()

	var films []Film
	status := getJson(t, client, "/films/2019", &films)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []Film{frozen2}, films)

	var notFound map[string]any
	status = getJson(t, client, "/films/1999", &notFound)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "No films found for this year 1999", notFound["error"])
	require.Equal(t, 1999.0, notFound["year"])
}

func TestServerFilmByTitle(t *testing.T) {
	client, cleanup := setupServer(t, nil, frozen2, frozen, moana)
	defer cleanup()

	var film Film
	status := getJson(t, client, "/films/Frozen%20II", &film)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, frozen2, film)

	var notFound map[string]any
	status = getJson(t, client, "/films/Frozen%20III", &notFound)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "Film not found in our list", notFound["error"])
	require.Equal(t, "Frozen III", notFound["title"])
	require.Equal(t, "Frozen II", notFound["suggestion"])

	notFound = nil
	status = getJson(t, client, "/films/Shrek", &notFound)
	require.Equal(t, http.StatusNotFound, status)
	_, hasSuggestion := notFound["suggestion"]
	require.False(t, hasSuggestion)
}

func TestServerSanitizesEchoedTitle(t *testing.T) {
	client, cleanup := setupServer(t, nil, moana)
	defer cleanup()

	var notFound map[string]any
	status := getJson(t, client, "/films/%3Ci%3EFrozen%203", &notFound)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "Frozen 3", notFound["title"])
}

func TestServerSearch(t *testing.T) {
	client, cleanup := setupServer(t, nil, frozen2, frozen, moana)
	defer cleanup()

	var films []Film
	status := getJson(t, client, "/search?q=frozen", &films)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []Film{frozen2, frozen}, films)

	films = nil
	getJson(t, client, "/search", &films)
	require.Len(t, films, 3)

	res, err := client.R().SetQueryParam("q", "shrek").Get("/search")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())
	require.JSONEq(t, "[]", res.String())
}

func TestServerStatus(t *testing.T) {
	{
		client, cleanup := setupServer(t, nil)
		var res statusResponse
		status := getJson(t, client, "/status", &res)
		require.Equal(t, http.StatusOK, status)
		require.False(t, res.Refreshed)
		cleanup()
	}
	{
		client, cleanup := setupServer(t, fixedStatus{
			status: Status{
				Outcome:    RefreshOutcome{Rows: 9, Skipped: 1},
				FinishedAt: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
				Runs:       2,
			},
			ok: true,
		})
		var res statusResponse
		getJson(t, client, "/status", &res)
		require.True(t, res.Refreshed)
		require.Equal(t, 9, res.Last.Outcome.Rows)
		require.Equal(t, 2, res.Last.Runs)
		cleanup()
	}
}
