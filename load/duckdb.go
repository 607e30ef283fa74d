package load

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"log/slog"

	"github.com/marcboeker/go-duckdb"

	"github.com/AtticusColwell/game-data-collector-primitive/config"
	"github.com/AtticusColwell/game-data-collector-primitive/constants"
)

// DuckDB is the warehouse sink for collected CSVs. A path prefixed with
// "md:" connects to MotherDuck; an empty or ":memory:" path is in-memory.
type DuckDB struct {
	Logger    *slog.Logger
	DB        *sql.DB
	Connector *duckdb.Connector
	DBType    string
}

func NewDuckDB(config *config.Config, logger *slog.Logger) (*DuckDB, error) {
	var path string
	var dbType string
	if strings.HasPrefix(config.DuckDB.Path, "md:") {
		motherduckToken := os.Getenv("MOTHERDUCK_TOKEN")
		if motherduckToken == "" {
			return nil, fmt.Errorf("MOTHERDUCK_TOKEN env variable is not set")
		}
		path = fmt.Sprintf("%s?motherduck_token=%s", config.DuckDB.Path, motherduckToken)
		dbType = ":md:"
	} else if config.DuckDB.Path == "" || config.DuckDB.Path == ":memory:" {
		path = ""
		dbType = ":memory:"
	} else {
		path = config.DuckDB.Path
		dbType = path
	}

	var connInitFn func(driver.ExecerContext) error
	if len(config.DuckDB.ConnInitFnQueries) > 0 {
		connInitFn = func(exec driver.ExecerContext) error {
			for _, queryPath := range config.DuckDB.ConnInitFnQueries {
				query, err := readQuery(queryPath)
				if err != nil {
					return err
				}

				if _, err := exec.ExecContext(context.Background(), string(query), nil); err != nil {
					return fmt.Errorf("failed to execute query from file %s: %w", queryPath, err)
				}
			}
			return nil
		}
		logger.Debug(fmt.Sprintf("Connection initialization queries: %v", config.DuckDB.ConnInitFnQueries))
	}

	connector, err := duckdb.NewConnector(path, connInitFn)
	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(connector)

	switch dbType {
	case ":memory:":
		logger.Info("Connected to DuckDB in-memory database")
	case ":md:":
		logger.Info("Connected to MotherDuck database")
	default:
		logger.Info(fmt.Sprintf("Connected to local DuckDB database at %s", dbType))
	}

	return &DuckDB{
		Logger:    logger,
		DB:        db,
		Connector: connector,
		DBType:    dbType,
	}, nil
}

func readQuery(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	query, err := io.ReadAll(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file %s: %w", path, err)
	}
	return query, nil
}

func (db *DuckDB) Close() {
	db.DB.Close()
	db.Connector.Close()
}

// LoadCSVWithQuery loads CSV data using a templated SQL query.
// The query template should use {{.CsvFile}} where the temporary CSV filename should be inserted.
func (db *DuckDB) LoadCSVWithQuery(csv []byte, queryTemplate string, params map[string]any) (sql.Result, error) {
	tmpFile, err := createTmpFile(csv)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpFile.Name())

	if params == nil {
		params = make(map[string]any)
	}
	params["CsvFile"] = tmpFile.Name()

	tmpl, err := template.New("sql").Parse(queryTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query template: %w", err)
	}

	var queryBuffer bytes.Buffer
	if err := tmpl.Execute(&queryBuffer, params); err != nil {
		return nil, fmt.Errorf("failed to execute query template: %w", err)
	}

	db.Logger.Debug("Executing DuckDB query", "query", queryBuffer.String())

	res, err := db.DB.ExecContext(context.Background(), queryBuffer.String())
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	return res, nil
}

const (
	insertQueryTemplate = `INSERT OR REPLACE INTO {{.Table}} SELECT * FROM read_csv('{{.CsvFile}}', delim=',', quote='"', escape='"', header=true);`
	copyQueryTemplate   = `COPY {{.Table}} FROM '{{.CsvFile}}' (FORMAT CSV, DELIMITER ',', QUOTE '"', ESCAPE '"', HEADER, NULL_PADDING, IGNORE_ERRORS);`
)

// LoadCSV loads CSV data into a table in DuckDB.
// If insert is true, 'insert or replace' semantics are used (upsert keyed by
// the table's primary key), else the 'copy' command appends the data as-is.
func (db *DuckDB) LoadCSV(csv []byte, table string, insert bool) error {
	queryTemplate := copyQueryTemplate
	if insert {
		queryTemplate = insertQueryTemplate
	}

	if _, err := db.LoadCSVWithQuery(csv, queryTemplate, map[string]any{"Table": table}); err != nil {
		return fmt.Errorf("failed to execute COPY or INSERT OR REPLACE INTO statement: %w", err)
	}

	return nil
}

func createTmpFile(csv []byte) (*os.File, error) {
	if len(csv) == 0 {
		return nil, fmt.Errorf("received empty CSV data")
	}

	tmpFile, err := os.CreateTemp("", constants.TmpCSVFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}

	if _, err := tmpFile.Write(csv); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to write to temporary file: %w", err)
	}

	// Close the file to flush the data
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temporary file: %w", err)
	}

	return tmpFile, nil
}

func (db *DuckDB) RunQuery(query string) error {
	_, err := db.DB.ExecContext(context.Background(), query)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}

func (db *DuckDB) RunQueryFile(path string) error {
	query, err := readQuery(path)
	if err != nil {
		return err
	}

	return db.RunQuery(string(query))
}

// GetQueryResults executes a query and returns the results as a map of column names to slices of values
func (db *DuckDB) GetQueryResults(query string) (map[string][]string, error) {
	rows, err := db.DB.QueryContext(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	results := make(map[string][]string)
	for _, col := range columns {
		results[col] = []string{}
	}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, col := range columns {
			valueStr := fmt.Sprintf("%v", values[i])
			results[col] = append(results[col], valueStr)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}

	return results, nil
}
