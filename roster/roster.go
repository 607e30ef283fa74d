package roster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Roster holds the player lists parsed from a roster export file. The file
// format is a sequence of `Season: <YYYY-YY>` headers, each followed by one
// player name per line. Lines of `=` characters are decorative separators.
type Roster struct {
	Seasons map[string][]string
}

// ParseFile reads and parses a roster file from disk.
func ParseFile(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse parses roster content. Player names that appear before any Season
// header are ignored, as are blank lines and separator rules.
func Parse(r io.Reader) (*Roster, error) {
	roster := &Roster{Seasons: make(map[string][]string)}
	var current string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "="):
			continue
		case strings.HasPrefix(line, "Season:"):
			current = strings.TrimSpace(strings.TrimPrefix(line, "Season:"))
			if _, ok := roster.Seasons[current]; !ok {
				roster.Seasons[current] = []string{}
			}
		default:
			if current == "" {
				continue
			}
			roster.Seasons[current] = append(roster.Seasons[current], line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read roster content: %w", err)
	}

	return roster, nil
}

// Names returns the sorted, de-duplicated player names across all seasons.
func (r *Roster) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, players := range r.Seasons {
		for _, name := range players {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// SeasonList returns the season keys present in the roster, unordered.
func (r *Roster) SeasonList() []string {
	seasons := make([]string, 0, len(r.Seasons))
	for season := range r.Seasons {
		seasons = append(seasons, season)
	}
	return seasons
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// deaccent decomposes characters and strips combining marks, so that e.g.
// "Jokić" transliterates to "Jokic" before slugging.
var deaccent = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug returns an ASCII, filesystem-safe key for a player name. Accents are
// stripped and any run of non-alphanumeric characters collapses to a single
// underscore.
func Slug(name string) string {
	clean, _, err := transform.String(deaccent, name)
	if err != nil {
		clean = name
	}
	return strings.Trim(nonAlnum.ReplaceAllString(clean, "_"), "_")
}
