package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// statsResponse is the envelope every stats API endpoint wraps its data in:
// one or more named resultSets, each a header row plus untyped value rows.
type statsResponse struct {
	Resource   string      `json:"resource"`
	ResultSets []ResultSet `json:"resultSets"`
}

type ResultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

// Empty reports whether the resultSet carries no data rows.
func (rs *ResultSet) Empty() bool {
	return rs == nil || len(rs.RowSet) == 0
}

// Column returns the index of a header column, or -1 if absent.
func (rs *ResultSet) Column(name string) int {
	for i, h := range rs.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Field returns the formatted value of a named column in a row, or "" when
// the column is missing or null. Presence checks only; no validation.
func (rs *ResultSet) Field(row []any, column string) string {
	i := rs.Column(column)
	if i < 0 || i >= len(row) {
		return ""
	}
	return FormatValue(row[i])
}

// Value returns the raw cell of a named column in a row, or nil when the
// column is missing. Used when the JSON type must survive re-serialization.
func (rs *ResultSet) Value(row []any, column string) any {
	i := rs.Column(column)
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}

// FormatValue renders a resultSet cell as a string. The API encodes all
// numbers as JSON numbers, so whole floats print without a decimal point.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func parseResultSets(body []byte) (*statsResponse, error) {
	var resp statsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse stats response: %w", err)
	}
	if len(resp.ResultSets) == 0 {
		return nil, fmt.Errorf("no resultSets in stats response")
	}
	return &resp, nil
}

// firstResultSet parses the response body and returns its first resultSet.
func firstResultSet(body []byte) (*ResultSet, error) {
	resp, err := parseResultSets(body)
	if err != nil {
		return nil, err
	}
	return &resp.ResultSets[0], nil
}

// resultSetByName parses the response body and returns the named resultSet.
func resultSetByName(body []byte, name string) (*ResultSet, error) {
	resp, err := parseResultSets(body)
	if err != nil {
		return nil, err
	}
	for i := range resp.ResultSets {
		if strings.EqualFold(resp.ResultSets[i].Name, name) {
			return &resp.ResultSets[i], nil
		}
	}
	return nil, fmt.Errorf("resultSet %q not found in stats response", name)
}
