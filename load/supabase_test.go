package load

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/assert"

	"github.com/AtticusColwell/game-data-collector-primitive/config"
)

func newSupabaseTestClient(t *testing.T, baseURL string) *SupabaseClient {
	t.Helper()
	t.Setenv("SUPABASE_URL", baseURL)
	t.Setenv("SUPABASE_KEY", "test_key")

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	client, err := NewSupabaseClient(&config.Config{}, logger)
	assert.NoError(t, err)
	return client
}

func TestNewSupabaseClient_MissingEnv(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_KEY", "")

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	client, err := NewSupabaseClient(&config.Config{}, logger)
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestUpsert(t *testing.T) {
	var gotPath, gotConflict, gotPrefer, gotAPIKey string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotConflict = r.URL.Query().Get("on_conflict")
		gotPrefer = r.Header.Get("Prefer")
		gotAPIKey = r.Header.Get("apikey")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newSupabaseTestClient(t, server.URL)

	row := map[string]any{"player_id": 2544, "full_name": "LeBron James"}
	err := client.Upsert("nba_players", "player_id", row)
	assert.NoError(t, err)

	assert.Equal(t, "/rest/v1/nba_players", gotPath)
	assert.Equal(t, "player_id", gotConflict)
	assert.Equal(t, "resolution=merge-duplicates,return=minimal", gotPrefer)
	assert.Equal(t, "test_key", gotAPIKey)

	var decoded map[string]any
	assert.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, "LeBron James", decoded["full_name"])
}

func TestUpsert_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"message":"duplicate key"}`)
	}))
	defer server.Close()

	client := newSupabaseTestClient(t, server.URL)

	err := client.Upsert("nba_players", "player_id", map[string]any{"player_id": 1})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nba_players")
	assert.Contains(t, err.Error(), "duplicate key")
}
