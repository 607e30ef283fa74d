package extract

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"time"

	"log/slog"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/AtticusColwell/game-data-collector-primitive/config"
)

// Browser-like headers; stats.nba.com rejects requests without them.
var statsHeaders = map[string]string{
	"Accept":          "application/json",
	"Accept-Language": "en-US,en;q=0.9",
	"Origin":          "https://www.nba.com",
	"Referer":         "https://www.nba.com/",
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

type StatsClient struct {
	HTTPClient  *retryablehttp.Client
	Logger      *slog.Logger
	StatsConfig *config.StatsConfig

	delay  time.Duration
	jitter time.Duration

	directory *playerDirectory
}

func NewStatsClient(cfg *config.Config, logger *slog.Logger) (*StatsClient, error) {
	if cfg.Stats.BaseURL == "" {
		return nil, fmt.Errorf("stats.base_url is not configured")
	}

	client := &StatsClient{
		HTTPClient:  retryablehttp.NewClient(),
		Logger:      logger,
		StatsConfig: &cfg.Stats,
		delay:       cfg.Extract.RateLimit.Delay,
		jitter:      cfg.Extract.RateLimit.Jitter,
		directory:   &playerDirectory{},
	}

	client.HTTPClient.RetryWaitMin = cfg.Extract.Backoff.RetryWaitMin
	client.HTTPClient.RetryWaitMax = cfg.Extract.Backoff.RetryWaitMax
	client.HTTPClient.RetryMax = cfg.Extract.Backoff.RetryMax
	client.HTTPClient.HTTPClient.Timeout = cfg.Stats.Timeout
	client.HTTPClient.Logger = logger

	return client, nil
}

// PlayerGameLog fetches one player's game log for a season. seasonType is
// "Regular Season" or "Playoffs".
func (c *StatsClient) PlayerGameLog(playerID int, season, seasonType string) (*ResultSet, error) {
	url, err := c.endpointURL("playergamelog", map[string]string{
		"PlayerID":   fmt.Sprintf("%d", playerID),
		"Season":     season,
		"SeasonType": seasonType,
	})
	if err != nil {
		return nil, err
	}

	body, err := c.FetchData(url, fmt.Sprintf("game log for player %d season %s", playerID, season))
	if err != nil {
		return nil, err
	}

	return firstResultSet(body)
}

// CommonPlayerInfo fetches a player's biographical record. The raw response
// body is returned alongside the parsed resultSet so callers can archive it.
func (c *StatsClient) CommonPlayerInfo(playerID int) (*ResultSet, []byte, error) {
	url, err := c.endpointURL("commonplayerinfo", map[string]string{
		"PlayerID": fmt.Sprintf("%d", playerID),
	})
	if err != nil {
		return nil, nil, err
	}

	body, err := c.FetchData(url, fmt.Sprintf("bio for player %d", playerID))
	if err != nil {
		return nil, nil, err
	}

	rs, err := firstResultSet(body)
	if err != nil {
		return nil, nil, err
	}

	return rs, body, nil
}

// PlayerCareerStats fetches a player's career regular season totals.
func (c *StatsClient) PlayerCareerStats(playerID int) (*ResultSet, error) {
	url, err := c.endpointURL("playercareerstats", map[string]string{
		"PlayerID": fmt.Sprintf("%d", playerID),
		"PerMode":  "PerGame",
	})
	if err != nil {
		return nil, err
	}

	body, err := c.FetchData(url, fmt.Sprintf("career stats for player %d", playerID))
	if err != nil {
		return nil, err
	}

	return resultSetByName(body, "CareerTotalsRegularSeason")
}

// FetchData handles the common logic of making the HTTP request and checking the response status
func (c *StatsClient) FetchData(url, description string) ([]byte, error) {
	body, resp, err := c.get(url)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch `%s`, status: %s, body: %s", description, resp.Status, string(body))
	}

	return body, nil
}

// endpointURL builds a stats API URL with the league ID and endpoint params.
func (c *StatsClient) endpointURL(endpoint string, params map[string]string) (string, error) {
	parsedURL, err := url.Parse(c.StatsConfig.BaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}
	parsedURL = parsedURL.JoinPath(endpoint)

	query := parsedURL.Query()
	query.Set("LeagueID", c.StatsConfig.LeagueID)
	for k, v := range params {
		query.Set(k, v)
	}
	parsedURL.RawQuery = query.Encode()

	return parsedURL.String(), nil
}

// get throttles, fetches the URL with browser headers and returns the body and response
func (c *StatsClient) get(url string) (body []byte, resp *http.Response, err error) {
	c.throttle()

	req, err := retryablehttp.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range statsHeaders {
		req.Header.Set(k, v)
	}

	resp, err = c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	return body, resp, nil
}

// throttle sleeps for the configured delay plus jitter before every request.
// The stats API rate limits aggressively, so this runs per worker.
func (c *StatsClient) throttle() {
	if c.delay <= 0 && c.jitter <= 0 {
		return
	}
	wait := c.delay
	if c.jitter > 0 {
		wait += time.Duration(rand.Int63n(int64(c.jitter)))
	}
	time.Sleep(wait)
}

// IsTimeout reports whether err came from an HTTP timeout, as opposed to a
// non-200 response or a parse failure.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return os.IsTimeout(err)
}
