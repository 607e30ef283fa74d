package utils

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SeasonString formats a season start year the way the stats API expects,
// e.g. 2024 -> "2024-25".
func SeasonString(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// SeasonStartYear parses the start year out of a season string like "2024-25".
func SeasonStartYear(season string) (int, error) {
	first, _, found := strings.Cut(season, "-")
	if !found {
		return 0, fmt.Errorf("invalid season string: %s", season)
	}
	year, err := strconv.Atoi(first)
	if err != nil {
		return 0, fmt.Errorf("invalid season start year in %q: %w", season, err)
	}
	return year, nil
}

// FilterSeasonsDescending keeps seasons whose start year falls in [from, to]
// and returns them most recent first. Seasons that do not parse are dropped.
func FilterSeasonsDescending(seasons []string, from, to int) []string {
	type parsed struct {
		season string
		year   int
	}
	var kept []parsed
	for _, s := range seasons {
		year, err := SeasonStartYear(s)
		if err != nil {
			continue
		}
		if year >= from && year <= to {
			kept = append(kept, parsed{season: s, year: year})
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].year > kept[j].year
	})
	out := make([]string, len(kept))
	for i, p := range kept {
		out[i] = p.season
	}
	return out
}
