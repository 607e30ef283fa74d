package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"log/slog"

	"github.com/AtticusColwell/game-data-collector-primitive/config"
	"github.com/AtticusColwell/game-data-collector-primitive/extract"
	"github.com/AtticusColwell/game-data-collector-primitive/utils"
)

// Per-player outcome statuses shared by all collectors.
const (
	StatusOK      = "ok"
	StatusAlready = "already"
	StatusEmpty   = "empty"
	StatusNoID    = "no_id"
	StatusTimeout = "timeout"
)

// Failure records one player that a run could not collect, in the shape the
// tab-separated miss logs are written in.
type Failure struct {
	Season string
	Player string
	Status string
}

type Pipeline struct {
	Stats        *extract.StatsClient
	Logger       *slog.Logger
	Config       *config.Config
	timeProvider utils.TimeProvider
	sqlDir       string
}

func NewPipeline(cfg *config.Config, logger *slog.Logger, timeProvider utils.TimeProvider) (*Pipeline, error) {
	client, err := extract.NewStatsClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating stats HTTP client: %w", err)
	}

	return &Pipeline{
		Stats:        client,
		Logger:       logger,
		Config:       cfg,
		timeProvider: timeProvider,
	}, nil
}

func (p *Pipeline) maxWorkers() int {
	if n := p.Config.Extract.RateLimit.MaxWorkers; n > 0 {
		return n
	}
	return 1
}

func errorStatus(err error) string {
	return fmt.Sprintf("error:%v", err)
}

// getSQLPath resolves a SQL file against the sql directory, checking the
// working directory and its parent before falling back to the source tree.
func (p *Pipeline) getSQLPath(filename string) (string, error) {
	if p.sqlDir == "" {
		for _, dir := range []string{"sql", filepath.Join("..", "sql"), filepath.Join(utils.ProjectRoot(), "sql")} {
			if _, err := os.Stat(dir); err == nil {
				p.sqlDir = dir
				break
			}
		}
		if p.sqlDir == "" {
			return "", fmt.Errorf("cannot find SQL directory")
		}
	}
	return filepath.Join(p.sqlDir, filename), nil
}
