package load

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordsToCSV(t *testing.T) {
	tests := []struct {
		name           string
		headers        []string
		rows           [][]any
		expectedOutput string
		expectedError  string
	}{
		{
			name:    "typical game log rows",
			headers: []string{"Player_ID", "Game_ID", "PTS", "FG_PCT"},
			rows: [][]any{
				{float64(2544), "0022400014", float64(16), 0.512},
				{float64(2544), "0022400028", 21.5, nil},
			},
			expectedOutput: "Player_ID,Game_ID,PTS,FG_PCT\n2544,0022400014,16,0.512\n2544,0022400028,21.5,\n",
		},
		{
			name:           "header only",
			headers:        []string{"Player_ID", "PTS"},
			rows:           nil,
			expectedOutput: "Player_ID,PTS\n",
		},
		{
			name:    "short row padded with empty fields",
			headers: []string{"a", "b", "c"},
			rows:    [][]any{{"x"}},
			expectedOutput: "a,b,c\nx,,\n",
		},
		{
			name:          "no headers",
			headers:       nil,
			expectedError: "received no CSV headers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := RecordsToCSV(tt.headers, tt.rows)
			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedOutput, string(output))
			}
		})
	}
}

func TestAddColumn(t *testing.T) {
	tests := []struct {
		name           string
		csvData        []byte
		column         string
		value          string
		expectedOutput string
		expectedError  string
	}{
		{
			name:           "tag rows with season",
			csvData:        []byte("Player_ID,PTS\n2544,16\n2544,21\n"),
			column:         "season",
			value:          "2024-25",
			expectedOutput: "Player_ID,PTS,season\n2544,16,2024-25\n2544,21,2024-25\n",
		},
		{
			name:           "header only",
			csvData:        []byte("Player_ID,PTS\n"),
			column:         "slug",
			value:          "LeBron_James",
			expectedOutput: "Player_ID,PTS,slug\n",
		},
		{
			name:          "empty input",
			csvData:       []byte(""),
			column:        "season",
			value:         "2024-25",
			expectedError: "failed to read CSV header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := AddColumn(tt.csvData, tt.column, tt.value)
			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedOutput, string(output))
			}
		})
	}
}

func TestConcatCSVs(t *testing.T) {
	tests := []struct {
		name           string
		csvData        [][]byte
		expectedOutput []byte
		expectedError  string
	}{
		{
			name: "single CSV",
			csvData: [][]byte{[]byte(`Player_ID,PTS
2544,16`)},
			expectedOutput: []byte(`Player_ID,PTS
2544,16`),
		},
		{
			name: "multiple CSVs",
			csvData: [][]byte{
				[]byte(`Player_ID,PTS
2544,16`),
				[]byte(`Player_ID,PTS
203999,29`),
			},
			expectedOutput: []byte(`Player_ID,PTS
2544,16
203999,29
`),
		},
		{
			name:          "empty input",
			csvData:       [][]byte{},
			expectedError: "received empty CSV data",
		},
		{
			name: "empty CSV between valid ones",
			csvData: [][]byte{
				[]byte(`Player_ID,PTS
2544,16`),
				[]byte(``),
				[]byte(`Player_ID,PTS
203999,29`),
			},
			expectedOutput: []byte(`Player_ID,PTS
2544,16
203999,29
`),
		},
		{
			name: "mismatched columns",
			csvData: [][]byte{
				[]byte(`Player_ID,PTS
2544,16`),
				[]byte(`Player_ID,REB
203999,13`),
			},
			expectedError: "mismatched column name in part 2: expected 'PTS', got 'REB' at position 2",
		},
		{
			name: "different number of columns",
			csvData: [][]byte{
				[]byte(`Player_ID,PTS
2544,16`),
				[]byte(`Player_ID,PTS,REB
203999,29,13`),
			},
			expectedError: "mismatched number of columns in part 2: expected 2, got 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := ConcatCSVs(tt.csvData)
			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, string(tt.expectedOutput), string(output))
			}
		})
	}
}

func TestRemoveDuplicateRows(t *testing.T) {
	input := []byte(`Player_ID,Game_ID,PTS
2544,0022400014,16
203999,0022400015,29
2544,0022400014,16
`)
	expected := `Player_ID,Game_ID,PTS
2544,0022400014,16
203999,0022400015,29
`

	output, err := RemoveDuplicateRows(input)
	assert.NoError(t, err)
	assert.Equal(t, expected, string(output))

	_, err = RemoveDuplicateRows([]byte("  "))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "received empty CSV data")
}

func TestRemoveDuplicateRows_KeepsNearDuplicates(t *testing.T) {
	// Rows differing only inside a field value are distinct rows.
	input := []byte(`Player_ID,MATCHUP
2544,LAL vs. MIN
2544,LAL  vs. MIN
`)

	output, err := RemoveDuplicateRows(input)
	assert.NoError(t, err)
	assert.Equal(t, `Player_ID,MATCHUP
2544,LAL vs. MIN
2544,LAL  vs. MIN
`, string(output))
}
