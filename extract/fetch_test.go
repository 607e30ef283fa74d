package extract

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"log/slog"

	"github.com/stretchr/testify/assert"

	"github.com/AtticusColwell/game-data-collector-primitive/config"
)

const directoryJSON = `{
  "resource": "commonallplayers",
  "resultSets": [{
    "name": "CommonAllPlayers",
    "headers": ["PERSON_ID", "DISPLAY_LAST_COMMA_FIRST", "DISPLAY_FIRST_LAST", "ROSTERSTATUS"],
    "rowSet": [
      [2544, "James, LeBron", "LeBron James", 1],
      [203999, "Jokic, Nikola", "Nikola Jokic", 1],
      [1628973, "Brunson, Jalen", "Jalen Brunson", 1]
    ]
  }]
}`

const gameLogJSON = `{
  "resource": "playergamelog",
  "resultSets": [{
    "name": "PlayerGameLog",
    "headers": ["SEASON_ID", "Player_ID", "Game_ID", "GAME_DATE", "MATCHUP", "WL", "PTS"],
    "rowSet": [
      ["22024", 2544, "0022400014", "OCT 22, 2024", "LAL vs. MIN", "W", 16],
      ["22024", 2544, "0022400028", "OCT 25, 2024", "LAL @ PHX", "L", 21.5]
    ]
  }]
}`

func newTestServer(t *testing.T, directoryHits *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The stats API rejects requests without browser headers; the
		// client must always send them.
		if r.Header.Get("Referer") != "https://www.nba.com/" {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		switch r.URL.Path {
		case "/commonallplayers":
			if directoryHits != nil {
				directoryHits.Add(1)
			}
			fmt.Fprint(w, directoryJSON)
		case "/playergamelog":
			if r.URL.Query().Get("PlayerID") == "0" {
				fmt.Fprint(w, `{"resource":"playergamelog","resultSets":[{"name":"PlayerGameLog","headers":["SEASON_ID"],"rowSet":[]}]}`)
				return
			}
			fmt.Fprint(w, gameLogJSON)
		case "/commonplayerinfo":
			fmt.Fprint(w, `{
  "resource": "commonplayerinfo",
  "resultSets": [{
    "name": "CommonPlayerInfo",
    "headers": ["PERSON_ID", "DISPLAY_FIRST_LAST", "BIRTHDATE", "COUNTRY", "HEIGHT", "WEIGHT", "POSITION", "SCHOOL", "DRAFT_YEAR", "DRAFT_ROUND", "DRAFT_NUMBER", "DRAFT_TEAM_ID", "HAND"],
    "rowSet": [[2544, "LeBron James", "1984-12-30T00:00:00", "USA", "6-9", "250", "Forward", "St. Vincent-St. Mary HS (OH)", "2003", "1", "1", 1610612739, "Right"]]
  }]
}`)
		case "/playercareerstats":
			fmt.Fprint(w, `{
  "resource": "playercareerstats",
  "resultSets": [
    {"name": "SeasonTotalsRegularSeason", "headers": ["PLAYER_ID"], "rowSet": [[2544]]},
    {"name": "CareerTotalsRegularSeason", "headers": ["PLAYER_ID", "GP", "PTS", "REB", "AST"], "rowSet": [[2544, 1492, 27.1, 7.5, 7.4]]}
  ]
}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "Not found")
		}
	}))
}

func getTestConfig(baseURL string) *config.Config {
	return &config.Config{
		Stats: config.StatsConfig{
			BaseURL:         baseURL,
			LeagueID:        "00",
			DirectorySeason: "2024-25",
			Timeout:         5 * time.Second,
		},
		Extract: config.ExtractConfig{
			Backoff: config.BackoffConfig{
				RetryWaitMin: 10 * time.Millisecond,
				RetryWaitMax: 20 * time.Millisecond,
				RetryMax:     1,
			},
			// No throttling in tests.
			RateLimit: config.RateLimitConfig{},
		},
	}
}

func getTestLogger(buffer *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buffer, nil))
}

func newTestClient(t *testing.T, baseURL string) *StatsClient {
	t.Helper()
	client, err := NewStatsClient(getTestConfig(baseURL), getTestLogger(&bytes.Buffer{}))
	assert.NoError(t, err)
	return client
}

func TestNewStatsClient(t *testing.T) {
	cfg := getTestConfig("https://stats.nba.com/stats")
	client, err := NewStatsClient(cfg, getTestLogger(&bytes.Buffer{}))
	assert.NoError(t, err)
	assert.NotNil(t, client)
	assert.Equal(t, cfg.Stats.LeagueID, client.StatsConfig.LeagueID)
	assert.Equal(t, cfg.Extract.Backoff.RetryMax, client.HTTPClient.RetryMax)
	assert.Equal(t, cfg.Stats.Timeout, client.HTTPClient.HTTPClient.Timeout)
}

func TestNewStatsClient_NoBaseURL(t *testing.T) {
	cfg := getTestConfig("")
	client, err := NewStatsClient(cfg, getTestLogger(&bytes.Buffer{}))
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestPlayerGameLog(t *testing.T) {
	server := newTestServer(t, nil)
	defer server.Close()

	client := newTestClient(t, server.URL)

	rs, err := client.PlayerGameLog(2544, "2024-25", "Regular Season")
	assert.NoError(t, err)
	assert.False(t, rs.Empty())
	assert.Len(t, rs.RowSet, 2)
	assert.Equal(t, "0022400014", rs.Field(rs.RowSet[0], "Game_ID"))
	assert.Equal(t, "16", rs.Field(rs.RowSet[0], "PTS"))
	assert.Equal(t, "21.5", rs.Field(rs.RowSet[1], "PTS"))
}

func TestPlayerGameLog_EmptyLog(t *testing.T) {
	server := newTestServer(t, nil)
	defer server.Close()

	client := newTestClient(t, server.URL)

	rs, err := client.PlayerGameLog(0, "2024-25", "Playoffs")
	assert.NoError(t, err)
	assert.True(t, rs.Empty())
}

func TestCommonPlayerInfo(t *testing.T) {
	server := newTestServer(t, nil)
	defer server.Close()

	client := newTestClient(t, server.URL)

	rs, raw, err := client.CommonPlayerInfo(2544)
	assert.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.False(t, rs.Empty())
	assert.Equal(t, "6-9", rs.Field(rs.RowSet[0], "HEIGHT"))
	assert.Equal(t, "", rs.Field(rs.RowSet[0], "NO_SUCH_COLUMN"))
}

func TestPlayerCareerStats(t *testing.T) {
	server := newTestServer(t, nil)
	defer server.Close()

	client := newTestClient(t, server.URL)

	rs, err := client.PlayerCareerStats(2544)
	assert.NoError(t, err)
	assert.Equal(t, "CareerTotalsRegularSeason", rs.Name)
	assert.Equal(t, "27.1", rs.Field(rs.RowSet[0], "PTS"))
	assert.Equal(t, "1492", rs.Field(rs.RowSet[0], "GP"))
}

func TestCommonAllPlayers_FetchedOnce(t *testing.T) {
	var hits atomic.Int64
	server := newTestServer(t, &hits)
	defer server.Close()

	client := newTestClient(t, server.URL)

	for i := 0; i < 3; i++ {
		players, err := client.CommonAllPlayers()
		assert.NoError(t, err)
		assert.Len(t, players, 3)
	}
	assert.Equal(t, int64(1), hits.Load())
}

func TestFindPlayerID(t *testing.T) {
	server := newTestServer(t, nil)
	defer server.Close()

	client := newTestClient(t, server.URL)

	tests := []struct {
		name      string
		query     string
		wantID    int
		wantFound bool
	}{
		{name: "exact match", query: "LeBron James", wantID: 2544, wantFound: true},
		{name: "case insensitive", query: "lebron james", wantID: 2544, wantFound: true},
		{name: "last comma first form", query: "Brunson, Jalen", wantID: 1628973, wantFound: true},
		{name: "partial match", query: "Jokic", wantID: 203999, wantFound: true},
		{name: "word order independent", query: "Brunson Jalen", wantID: 1628973, wantFound: true},
		{name: "no match", query: "Benchy McBenchface", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, found, err := client.FindPlayerID(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}

func TestFetchData_Non200(t *testing.T) {
	server := newTestServer(t, nil)
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.FetchData(server.URL+"/nope", "missing endpoint")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing endpoint")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "LAL vs. MIN", FormatValue("LAL vs. MIN"))
	assert.Equal(t, "16", FormatValue(float64(16)))
	assert.Equal(t, "0.512", FormatValue(0.512))
	assert.Equal(t, "true", FormatValue(true))
}
