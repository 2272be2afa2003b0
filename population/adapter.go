package population

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrNoFile  = errors.New("file cannot be null")
	ErrNoCity  = errors.New("city cannot be null")
	ErrNoState = errors.New("state cannot be null")
)

// ReaderFunc reads one population for a query URL
type ReaderFunc func(u *url.URL) (int, error)

type cacheKey struct {
	city, state string
}

// Adapter answers population lookups by city and state over a data file,
// remembering every population it has found.
type Adapter struct {
	path string
	read ReaderFunc

	mu    sync.Mutex
	cache map[cacheKey]int
}

// Option configures an Adapter
type Option func(*Adapter)

// WithReader replaces ReadPopulation as the source of lookups
func WithReader(fn ReaderFunc) Option {
	return func(a *Adapter) {
		if fn != nil {
			a.read = fn
		}
	}
}

// NewAdapter creates an adapter over the file at path. The file is not opened
// until the first lookup.
func NewAdapter(path string, opts ...Option) (*Adapter, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoFile
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve population file: %w", err)
	}

	a := &Adapter{
		path:  abs,
		read:  ReadPopulation,
		cache: make(map[cacheKey]int),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Population returns the population of city in state, or NotFound. Misses are
// not cached, so a later lookup reads the file again.
func (a *Adapter) Population(city, state string) (int, error) {
	if strings.TrimSpace(city) == "" {
		return NotFound, ErrNoCity
	}
	if strings.TrimSpace(state) == "" {
		return NotFound, ErrNoState
	}

	key := cacheKey{city: strings.ToLower(city), state: strings.ToLower(state)}

	a.mu.Lock()
	defer a.mu.Unlock()

	if n, ok := a.cache[key]; ok {
		return n, nil
	}

	n, err := a.read(a.queryURL(key))
	if err != nil {
		return NotFound, err
	}
	if n > NotFound {
		a.cache[key] = n
		return n, nil
	}
	return NotFound, nil
}

func (a *Adapter) queryURL(key cacheKey) *url.URL {
	return &url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(a.path),
		RawQuery: url.Values{"city": {key.city}, "state": {key.state}}.Encode(),
	}
}
