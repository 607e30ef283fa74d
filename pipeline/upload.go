package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// Upserter is the remote sink for the upload pipeline. *load.SupabaseClient
// satisfies it.
type Upserter interface {
	Upsert(table, conflictColumn string, rows any) error
}

// playerFields maps hosted players-table columns to commonplayerinfo
// resultSet columns.
var playerFields = []struct {
	column string
	source string
}{
	{"first_name", "FIRST_NAME"},
	{"last_name", "LAST_NAME"},
	{"full_name", "DISPLAY_FIRST_LAST"},
	{"jersey_number", "JERSEY"},
	{"position", "POSITION"},
	{"height", "HEIGHT"},
	{"weight", "WEIGHT"},
	{"birth_date", "BIRTHDATE"},
	{"country", "COUNTRY"},
	{"school", "SCHOOL"},
	{"draft_year", "DRAFT_YEAR"},
	{"draft_round", "DRAFT_ROUND"},
	{"draft_number", "DRAFT_NUMBER"},
	{"team_id", "TEAM_ID"},
	{"team_name", "TEAM_NAME"},
	{"from_year", "FROM_YEAR"},
	{"to_year", "TO_YEAR"},
}

// careerFields maps hosted career-stats-table columns to the
// CareerTotalsRegularSeason resultSet.
var careerFields = []struct {
	column string
	source string
}{
	{"games_played", "GP"},
	{"ppg", "PTS"},
	{"rpg", "REB"},
	{"apg", "AST"},
	{"spg", "STL"},
	{"bpg", "BLK"},
	{"fg_pct", "FG_PCT"},
	{"ft_pct", "FT_PCT"},
	{"fg3_pct", "FG3_PCT"},
}

// HeadshotURL derives the CDN URL for a player's headshot image.
func HeadshotURL(playerID int) string {
	return fmt.Sprintf("https://cdn.nba.com/headshots/nba/latest/1040x760/%d.png", playerID)
}

// Upload resolves each listed player against the cached directory, fetches
// their bio and career totals, and upserts both into the hosted tables keyed
// by player_id. A missing career row downgrades to a warning; the player
// still counts as processed.
func (p *Pipeline) Upload(playersPath string, sink Upserter) (int, []Failure, error) {
	names, err := readNamesFile(playersPath)
	if err != nil {
		return 0, nil, err
	}
	if len(names) == 0 {
		return 0, nil, fmt.Errorf("no player names found in %s", playersPath)
	}

	// Warm the directory up front so the per-player loop only pays for
	// the lookups it actually needs.
	if _, err := p.Stats.CommonAllPlayers(); err != nil {
		return 0, nil, fmt.Errorf("error fetching player directory: %w", err)
	}

	var failures []Failure
	processed := 0
	for i, name := range names {
		p.Logger.Info(fmt.Sprintf("Processing player %d/%d: %s", i+1, len(names), name))

		id, found, err := p.Stats.FindPlayerID(name)
		if err != nil {
			failures = append(failures, Failure{Player: name, Status: errorStatus(err)})
			continue
		}
		if !found {
			failures = append(failures, Failure{Player: name, Status: StatusNoID})
			continue
		}

		info, _, err := p.Stats.CommonPlayerInfo(id)
		if err != nil {
			failures = append(failures, Failure{Player: name, Status: errorStatus(err)})
			continue
		}
		if info.Empty() {
			failures = append(failures, Failure{Player: name, Status: StatusEmpty})
			continue
		}

		updatedAt := p.timeProvider.Now().Format(time.RFC3339)

		row := map[string]any{
			"player_id":    id,
			"headshot_url": HeadshotURL(id),
			"updated_at":   updatedAt,
		}
		for _, f := range playerFields {
			row[f.column] = info.Value(info.RowSet[0], f.source)
		}

		if err := sink.Upsert(p.Config.Supabase.PlayersTable, "player_id", row); err != nil {
			failures = append(failures, Failure{Player: name, Status: errorStatus(err)})
			continue
		}

		career, err := p.Stats.PlayerCareerStats(id)
		if err != nil || career.Empty() {
			p.Logger.Warn(fmt.Sprintf("No career stats for player %s", name))
		} else {
			careerRow := map[string]any{
				"player_id":  id,
				"updated_at": updatedAt,
			}
			for _, f := range careerFields {
				careerRow[f.column] = career.Value(career.RowSet[0], f.source)
			}
			if err := sink.Upsert(p.Config.Supabase.CareerStatsTable, "player_id", careerRow); err != nil {
				p.Logger.Warn(fmt.Sprintf("Failed to store career stats for player %s: %v", name, err))
			}
		}

		processed++
	}

	p.Logger.Info("Upload finished", "processed", processed, "failed", len(failures))

	return processed, failures, nil
}

// readNamesFile reads a plain list of player names, one per line.
func readNamesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open players file: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			names = append(names, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read players file: %w", err)
	}

	return names, nil
}
