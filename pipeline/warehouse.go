package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AtticusColwell/game-data-collector-primitive/load"
	"github.com/AtticusColwell/game-data-collector-primitive/template"
)

// CSVLoader is the warehouse sink for collected game logs. *load.DuckDB
// satisfies it.
type CSVLoader interface {
	LoadCSV(csv []byte, table string, insert bool) error
	RunQueryFile(path string) error
	GetQueryResults(query string) (map[string][]string, error)
}

// LoadGameLogs walks a game-log output tree (<dir>/<season>/<slug>.csv),
// tags every file with its season and slug, and upserts the combined rows
// into the game_logs table. Returns the number of files loaded.
func (p *Pipeline) LoadGameLogs(dir string, db CSVLoader) (int, error) {
	initSQL, err := p.getSQLPath("init.sql")
	if err != nil {
		return 0, err
	}
	if err := db.RunQueryFile(initSQL); err != nil {
		return 0, fmt.Errorf("error initializing warehouse schema: %w", err)
	}

	seasons, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read game log directory: %w", err)
	}

	var csvs [][]byte
	files := 0
	for _, season := range seasons {
		if !season.IsDir() {
			continue
		}
		seasonDir := filepath.Join(dir, season.Name())
		entries, err := os.ReadDir(seasonDir)
		if err != nil {
			return files, fmt.Errorf("failed to read season directory %s: %w", seasonDir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
				continue
			}

			data, err := os.ReadFile(filepath.Join(seasonDir, entry.Name()))
			if err != nil {
				return files, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
			}

			tagged, err := load.AddColumn(data, "season", season.Name())
			if err != nil {
				return files, fmt.Errorf("error tagging %s with season: %w", entry.Name(), err)
			}
			slug := strings.TrimSuffix(entry.Name(), ".csv")
			tagged, err = load.AddColumn(tagged, "slug", slug)
			if err != nil {
				return files, fmt.Errorf("error tagging %s with slug: %w", entry.Name(), err)
			}

			csvs = append(csvs, tagged)
			files++
		}
	}

	if files == 0 {
		return 0, fmt.Errorf("no game log CSVs found under %s", dir)
	}

	combined, err := load.ConcatCSVs(csvs)
	if err != nil {
		return files, fmt.Errorf("error concatenating game log CSVs: %w", err)
	}

	combined, err = load.RemoveDuplicateRows(combined)
	if err != nil {
		return files, fmt.Errorf("error de-duplicating game log rows: %w", err)
	}

	if err := db.LoadCSV(combined, "game_logs", true); err != nil {
		return files, fmt.Errorf("error loading game logs into warehouse: %w", err)
	}

	if err := p.logSeasonCounts(db); err != nil {
		p.Logger.Warn(fmt.Sprintf("Could not read post-load season counts: %v", err))
	}

	p.Logger.Info("Warehouse load finished", "files", files)

	return files, nil
}

// logSeasonCounts reports per-season row counts after a load, so a truncated
// or mis-tagged batch shows up in the job logs.
func (p *Pipeline) logSeasonCounts(db CSVLoader) error {
	queryPath, err := p.getSQLPath("season_counts.sql")
	if err != nil {
		return err
	}

	query, err := template.ExecuteSqlTemplate(queryPath, map[string]any{"Table": "game_logs"})
	if err != nil {
		return err
	}

	results, err := db.GetQueryResults(query)
	if err != nil {
		return err
	}

	for i, season := range results["season"] {
		if i < len(results["games"]) {
			p.Logger.Info("Warehouse season count", "season", season, "games", results["games"][i])
		}
	}

	return nil
}
