package load

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"log/slog"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/AtticusColwell/game-data-collector-primitive/config"
)

// SupabaseClient upserts rows into hosted Postgres tables through the
// PostgREST endpoint Supabase exposes under /rest/v1.
type SupabaseClient struct {
	HTTPClient *retryablehttp.Client
	Logger     *slog.Logger
	baseURL    string
	apiKey     string
}

func NewSupabaseClient(cfg *config.Config, logger *slog.Logger) (*SupabaseClient, error) {
	baseURL := os.Getenv("SUPABASE_URL")
	apiKey := os.Getenv("SUPABASE_KEY")
	if baseURL == "" || apiKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_KEY env variables must be set")
	}

	client := &SupabaseClient{
		HTTPClient: retryablehttp.NewClient(),
		Logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}

	client.HTTPClient.RetryWaitMin = cfg.Extract.Backoff.RetryWaitMin
	client.HTTPClient.RetryWaitMax = cfg.Extract.Backoff.RetryWaitMax
	client.HTTPClient.RetryMax = cfg.Extract.Backoff.RetryMax
	client.HTTPClient.Logger = logger

	return client, nil
}

// Upsert inserts-or-updates rows in a table, keyed by conflictColumn. rows
// may be a single map or a slice of maps; PostgREST accepts both shapes.
func (c *SupabaseClient) Upsert(table, conflictColumn string, rows any) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal rows for table %s: %w", table, err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s?on_conflict=%s", c.baseURL, url.PathEscape(table), url.QueryEscape(conflictColumn))

	req, err := retryablehttp.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build upsert request for table %s: %w", table, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("upsert request to table %s failed: %w", table, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read upsert response for table %s: %w", table, err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("upsert to table %s failed, status: %s, body: %s", table, resp.Status, string(body))
	}

	return nil
}
