package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/AtticusColwell/game-data-collector-primitive/extract"
	"github.com/AtticusColwell/game-data-collector-primitive/load"
	"github.com/AtticusColwell/game-data-collector-primitive/roster"
	"github.com/AtticusColwell/game-data-collector-primitive/utils"
)

const (
	SeasonTypeRegular  = "Regular Season"
	SeasonTypePlayoffs = "Playoffs"
)

type GameLogOptions struct {
	RosterPath string
	OutDir     string
	SeasonType string
	// FromYear and ToYear bound the season start years to collect.
	FromYear int
	ToYear   int
}

func failureLogName(seasonType string) string {
	if seasonType == SeasonTypePlayoffs {
		return "failed_playoff_logs.txt"
	}
	return "failed_game_logs.txt"
}

// GameLogs collects one CSV per player per season under
// <OutDir>/<season>/<slug>.csv, seasons most recent first. Files that
// already exist are skipped, so re-runs only fetch what is missing.
// Returns the number of logs saved plus per-player failures; err is reserved
// for setup problems, not individual misses.
func (p *Pipeline) GameLogs(opts GameLogOptions) (int, []Failure, error) {
	rst, err := roster.ParseFile(opts.RosterPath)
	if err != nil {
		return 0, nil, err
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return 0, nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	failLog, err := load.OpenFailureLog(filepath.Join(opts.OutDir, failureLogName(opts.SeasonType)))
	if err != nil {
		return 0, nil, err
	}
	defer failLog.Close()

	seasons := utils.FilterSeasonsDescending(rst.SeasonList(), opts.FromYear, opts.ToYear)

	var failures []Failure
	saved := 0
	for _, season := range seasons {
		players := rst.Seasons[season]
		seasonDir := filepath.Join(opts.OutDir, season)
		if err := os.MkdirAll(seasonDir, 0o755); err != nil {
			return saved, failures, fmt.Errorf("failed to create season directory %s: %w", seasonDir, err)
		}

		season := season
		mapper := iter.Mapper[string, Failure]{MaxGoroutines: p.maxWorkers()}
		results := mapper.Map(players, func(name *string) Failure {
			return p.fetchGameLog(*name, season, seasonDir, opts.SeasonType)
		})

		seasonFailed := 0
		for _, res := range results {
			switch res.Status {
			case StatusOK:
				saved++
			case StatusAlready:
				// nothing to do
			default:
				seasonFailed++
				failures = append(failures, res)
				if err := failLog.Record(res.Season, res.Player, res.Status); err != nil {
					p.Logger.Error(fmt.Sprintf("Failed to record miss for %s: %v", res.Player, err))
				}
			}
		}

		p.Logger.Info(fmt.Sprintf("Finished season %s", season),
			"players", len(players),
			"failed", seasonFailed)
	}

	return saved, failures, nil
}

// fetchGameLog handles a single player in a single season: resolve ID,
// fetch, flatten, write. Retries exactly once on timeout after a fixed wait,
// matching the stats API's habit of stalling under load.
func (p *Pipeline) fetchGameLog(name, season, outDir, seasonType string) Failure {
	result := Failure{Season: season, Player: name}

	csvPath := filepath.Join(outDir, roster.Slug(name)+".csv")
	if _, err := os.Stat(csvPath); err == nil {
		result.Status = StatusAlready
		return result
	}

	id, found, err := p.Stats.FindPlayerID(name)
	if err != nil {
		result.Status = errorStatus(err)
		return result
	}
	if !found {
		result.Status = StatusNoID
		return result
	}

	for attempt := 1; attempt <= 2; attempt++ {
		rs, err := p.Stats.PlayerGameLog(id, season, seasonType)
		if err != nil {
			if extract.IsTimeout(err) {
				if attempt == 1 {
					time.Sleep(p.Config.Stats.TimeoutRetryWait)
					continue
				}
				result.Status = StatusTimeout
				return result
			}
			result.Status = errorStatus(err)
			return result
		}

		if rs.Empty() {
			result.Status = StatusEmpty
			return result
		}

		csvData, err := load.RecordsToCSV(rs.Headers, rs.RowSet)
		if err != nil {
			result.Status = errorStatus(err)
			return result
		}

		if err := os.WriteFile(csvPath, csvData, 0o644); err != nil {
			result.Status = errorStatus(err)
			return result
		}

		result.Status = StatusOK
		return result
	}

	result.Status = StatusTimeout
	return result
}
