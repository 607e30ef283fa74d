package extract

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// DirectoryPlayer is one row of the commonallplayers directory.
type DirectoryPlayer struct {
	PersonID         int
	DisplayFirstLast string
	DisplayLastFirst string
}

// playerDirectory caches the commonallplayers listing so it is fetched at
// most once per run, no matter how many workers look up names concurrently.
type playerDirectory struct {
	mu      sync.Mutex
	loaded  bool
	players []DirectoryPlayer
}

// CommonAllPlayers returns the full player directory, fetching it on first
// use and serving the cached copy afterwards.
func (c *StatsClient) CommonAllPlayers() ([]DirectoryPlayer, error) {
	c.directory.mu.Lock()
	defer c.directory.mu.Unlock()

	if c.directory.loaded {
		return c.directory.players, nil
	}

	url, err := c.endpointURL("commonallplayers", map[string]string{
		"Season":              c.StatsConfig.DirectorySeason,
		"IsOnlyCurrentSeason": "0",
	})
	if err != nil {
		return nil, err
	}

	body, err := c.FetchData(url, "player directory")
	if err != nil {
		return nil, err
	}

	rs, err := firstResultSet(body)
	if err != nil {
		return nil, err
	}

	idCol := rs.Column("PERSON_ID")
	firstLastCol := rs.Column("DISPLAY_FIRST_LAST")
	lastFirstCol := rs.Column("DISPLAY_LAST_COMMA_FIRST")
	if idCol < 0 || firstLastCol < 0 {
		return nil, fmt.Errorf("player directory response missing expected columns")
	}

	players := make([]DirectoryPlayer, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		id, err := strconv.Atoi(rs.Field(row, "PERSON_ID"))
		if err != nil {
			continue
		}
		player := DirectoryPlayer{
			PersonID:         id,
			DisplayFirstLast: rs.Field(row, "DISPLAY_FIRST_LAST"),
		}
		if lastFirstCol >= 0 {
			player.DisplayLastFirst = rs.Field(row, "DISPLAY_LAST_COMMA_FIRST")
		}
		players = append(players, player)
	}

	c.directory.loaded = true
	c.directory.players = players
	c.Logger.Info(fmt.Sprintf("Cached player directory with %d players", len(players)))

	return players, nil
}

// FindPlayerID resolves a player name against the cached directory. Exact
// case-insensitive matches on either display form win; otherwise the first
// partial match (every word of the query present in the name) is used.
func (c *StatsClient) FindPlayerID(name string) (int, bool, error) {
	players, err := c.CommonAllPlayers()
	if err != nil {
		return 0, false, err
	}

	normalized := strings.ToLower(strings.TrimSpace(name))

	for _, p := range players {
		if normalized == strings.ToLower(p.DisplayFirstLast) || normalized == strings.ToLower(p.DisplayLastFirst) {
			return p.PersonID, true, nil
		}
	}

	parts := strings.Fields(normalized)
	for _, p := range players {
		display := strings.ToLower(p.DisplayFirstLast)
		if strings.Contains(display, normalized) || containsAll(display, parts) {
			c.Logger.Info(fmt.Sprintf("Partial name match: %q resolved to %q", name, p.DisplayFirstLast))
			return p.PersonID, true, nil
		}
	}

	return 0, false, nil
}

func containsAll(s string, parts []string) bool {
	if len(parts) == 0 {
		return false
	}
	for _, part := range parts {
		if !strings.Contains(s, part) {
			return false
		}
	}
	return true
}
