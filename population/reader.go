// Package population looks up city populations in a comma separated data
// file with one "city,state,population" record per line.
package population

import (
	"bufio"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
)

var (
	ErrNilURI       = errors.New("uri cannot be null")
	ErrMissingQuery = errors.New("missing query")
	ErrMissingCity  = errors.New("missing city")
	ErrMissingState = errors.New("missing state")
)

// NotFound is returned in place of a population when no record matches
const NotFound = -1

// ReadPopulation scans the file named by the path of u for the record matching
// the city and state query parameters. Matching ignores case and surrounding
// spaces. Malformed queries are errors; an unreadable file, a bad population
// field or a miss all yield NotFound.
func ReadPopulation(u *url.URL) (int, error) {
	if u == nil {
		return NotFound, ErrNilURI
	}
	if strings.TrimSpace(u.RawQuery) == "" {
		return NotFound, ErrMissingQuery
	}

	query, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return NotFound, ErrMissingQuery
	}
	city := strings.TrimSpace(query.Get("city"))
	if city == "" {
		return NotFound, ErrMissingCity
	}
	state := strings.TrimSpace(query.Get("state"))
	if state == "" {
		return NotFound, ErrMissingState
	}

	return scan(u.Path, city, state), nil
}

func scan(path, city, state string) int {
	f, err := os.Open(path)
	if err != nil {
		slog.Debug("Population file unreadable", "path", path, "error", err)
		return NotFound
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		fields := strings.Split(s.Text(), ",")
		if len(fields) < 3 {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(fields[0]), city) ||
			!strings.EqualFold(strings.TrimSpace(fields[1]), state) {
			continue
		}

		n, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			slog.Debug("Bad population field", "city", city, "state", state, "error", err)
			return NotFound
		}
		return n
	}
	if err := s.Err(); err != nil {
		slog.Debug("Population file scan failed", "path", path, "error", err)
	}
	return NotFound
}
