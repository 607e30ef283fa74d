package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sourcegraph/conc/iter"

	"github.com/AtticusColwell/game-data-collector-primitive/extract"
	"github.com/AtticusColwell/game-data-collector-primitive/load"
	"github.com/AtticusColwell/game-data-collector-primitive/roster"
)

// bioColumns is the fixed column order of the master bio CSV.
var bioColumns = []string{
	"Player", "Player_ID", "Birthdate", "Country", "Height", "Weight_lbs",
	"Position", "College", "Draft_Year", "Draft_Round", "Draft_Number",
	"Draft_Team", "Shoot_Hand",
}

// bioFields maps master CSV columns (after the name and ID) to the
// commonplayerinfo resultSet columns they come from.
var bioFields = []struct {
	column string
	source string
}{
	{"Birthdate", "BIRTHDATE"},
	{"Country", "COUNTRY"},
	{"Height", "HEIGHT"},
	{"Weight_lbs", "WEIGHT"},
	{"Position", "POSITION"},
	{"College", "SCHOOL"},
	{"Draft_Year", "DRAFT_YEAR"},
	{"Draft_Round", "DRAFT_ROUND"},
	{"Draft_Number", "DRAFT_NUMBER"},
	{"Draft_Team", "DRAFT_TEAM_ID"},
	{"Shoot_Hand", "HAND"},
}

type bioResult struct {
	Failure
	row []any
}

// Bios fetches biographical records for every unique player in the roster
// file. It writes one master CSV row per player, archives the raw JSON per
// slug under raw_json/, and records misses in failed_bio.txt.
func (p *Pipeline) Bios(rosterPath, outDir string) (int, []Failure, error) {
	rst, err := roster.ParseFile(rosterPath)
	if err != nil {
		return 0, nil, err
	}
	names := rst.Names()

	rawDir := filepath.Join(outDir, "raw_json")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return 0, nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	failLog, err := load.OpenFailureLog(filepath.Join(outDir, "failed_bio.txt"))
	if err != nil {
		return 0, nil, err
	}
	defer failLog.Close()

	mapper := iter.Mapper[string, bioResult]{MaxGoroutines: p.maxWorkers()}
	results := mapper.Map(names, func(name *string) bioResult {
		return p.fetchBio(*name, rawDir)
	})

	var rows [][]any
	var failures []Failure
	for _, res := range results {
		if res.Status == StatusOK {
			rows = append(rows, res.row)
			continue
		}
		failures = append(failures, res.Failure)
		if err := failLog.Record(res.Player, res.Status); err != nil {
			p.Logger.Error(fmt.Sprintf("Failed to record miss for %s: %v", res.Player, err))
		}
	}

	if len(rows) > 0 {
		master, err := load.RecordsToCSV(bioColumns, rows)
		if err != nil {
			return 0, failures, fmt.Errorf("failed to build master bio CSV: %w", err)
		}
		masterPath := filepath.Join(outDir, "player_bio_master.csv")
		if err := os.WriteFile(masterPath, master, 0o644); err != nil {
			return 0, failures, fmt.Errorf("failed to write master bio CSV: %w", err)
		}
	}

	p.Logger.Info("Bio collection finished", "saved", len(rows), "failed", len(failures))

	return len(rows), failures, nil
}

func (p *Pipeline) fetchBio(name, rawDir string) bioResult {
	result := bioResult{Failure: Failure{Player: name}}

	id, found, err := p.Stats.FindPlayerID(name)
	if err != nil {
		result.Status = errorStatus(err)
		return result
	}
	if !found {
		result.Status = StatusNoID
		return result
	}

	rs, raw, err := p.Stats.CommonPlayerInfo(id)
	if err != nil {
		if extract.IsTimeout(err) {
			result.Status = StatusTimeout
		} else {
			result.Status = errorStatus(err)
		}
		return result
	}
	if rs.Empty() {
		result.Status = StatusEmpty
		return result
	}

	rawPath := filepath.Join(rawDir, roster.Slug(name)+".json")
	if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
		result.Status = errorStatus(err)
		return result
	}

	row := make([]any, 0, len(bioColumns))
	row = append(row, name, id)
	for _, f := range bioFields {
		row = append(row, rs.Field(rs.RowSet[0], f.source))
	}

	result.row = row
	result.Status = StatusOK
	return result
}
