package rail

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/cxd309/rail-engine/internal/curve"
	"github.com/cxd309/rail-engine/internal/raildef"
	"github.com/cxd309/rail-engine/internal/railstore"
)

// DefaultGranularity is the node time granularity used by a Manager unless
// overridden with WithGranularity, in seconds.
const DefaultGranularity = 0.01

var (
	// ErrLoadFailed wraps any error from the Loader. Nothing is cached.
	ErrLoadFailed = errors.New("rail load failed")
	// ErrSchemaViolation wraps any error from the Parser. Nothing is cached.
	ErrSchemaViolation = errors.New("rail definition violates schema")
)

// ID identifies a rail source, typically its path under the loader root.
type ID = string

// Loader fetches the raw bytes of a baked rail.
type Loader interface {
	Load(id ID) ([]byte, error)
}

// Parser decodes baked rail bytes into a definition.
type Parser interface {
	Parse(data []byte) (*raildef.Definition, error)
}

// Stats counts Manager activity since it was created.
type Stats struct {
	Hits         int `json:"hits"`
	Misses       int `json:"misses"`
	Builds       int `json:"builds"`
	LoadFailures int `json:"load_failures"`
	Evictions    int `json:"evictions"`
}

type entry struct {
	rail   *Rail
	digest railstore.Hash
}

// Manager loads rails on first request and caches them by ID.
//
// A Manager is not safe for concurrent use: GetRail, Evict and Clear must all
// be called from one goroutine (normally the simulation loop). The *Rail
// values it returns are borrowed. They remain valid until Clear, or Evict of
// their ID, after which the caller must drop them; a later GetRail for the
// same ID builds a new Rail.
type Manager struct {
	loader      Loader
	parser      Parser
	builder     curve.Builder
	granularity float64
	logger      *slog.Logger

	rails map[ID]*entry
	stats Stats
}

// Option configures a Manager.
type Option func(*Manager)

// WithGranularity overrides DefaultGranularity.
func WithGranularity(g float64) Option {
	return func(m *Manager) { m.granularity = g }
}

// WithLogger sets the logger. The default discards all records.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager returns an empty Manager using the given collaborators.
func NewManager(loader Loader, parser Parser, builder curve.Builder, opts ...Option) *Manager {
	m := &Manager{
		loader:      loader,
		parser:      parser,
		builder:     builder,
		granularity: DefaultGranularity,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		rails:       make(map[ID]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetRail returns the cached Rail for id, loading and building it on first
// request. A failed load, parse or build returns a nil Rail and leaves the
// cache unchanged, so a later call retries.
func (m *Manager) GetRail(id ID) (*Rail, error) {
	if e, ok := m.rails[id]; ok {
		m.stats.Hits++
		return e.rail, nil
	}
	m.stats.Misses++

	data, err := m.loader.Load(id)
	if err != nil {
		m.stats.LoadFailures++
		m.logger.Warn("rail load failed", "id", id, "error", err)
		return nil, fmt.Errorf("%w: %q: %w", ErrLoadFailed, id, err)
	}

	def, err := m.parser.Parse(data)
	if err != nil {
		m.logger.Error("rail definition rejected", "id", id, "error", err)
		return nil, fmt.Errorf("%w: %q: %w", ErrSchemaViolation, id, err)
	}

	r, err := New(def, m.granularity, m.builder)
	if err != nil {
		m.logger.Error("rail build failed", "id", id, "error", err)
		return nil, fmt.Errorf("building rail %q: %w", id, err)
	}
	m.stats.Builds++

	e := &entry{rail: r, digest: railstore.Digest(data)}
	m.rails[id] = e
	m.logger.Info("rail loaded",
		"id", id,
		"name", r.Name(),
		"nodes", r.NumNodes(),
		"duration", r.Duration(),
		"digest", e.digest.Short(),
	)
	return r, nil
}

// Evict drops the cached Rail for id, reporting whether one was present.
func (m *Manager) Evict(id ID) bool {
	if _, ok := m.rails[id]; !ok {
		return false
	}
	delete(m.rails, id)
	m.stats.Evictions++
	m.logger.Debug("rail evicted", "id", id)
	return true
}

// Clear drops every cached Rail.
func (m *Manager) Clear() {
	n := len(m.rails)
	m.rails = make(map[ID]*entry)
	m.stats.Evictions += n
	m.logger.Info("rail cache cleared", "count", n)
}

// Len returns the number of cached rails.
func (m *Manager) Len() int { return len(m.rails) }

// IDs returns the cached rail IDs in sorted order.
func (m *Manager) IDs() []ID {
	ids := make([]ID, 0, len(m.rails))
	for id := range m.rails {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Digest returns the source digest of the cached rail id.
func (m *Manager) Digest(id ID) (railstore.Hash, bool) {
	e, ok := m.rails[id]
	if !ok {
		return railstore.Hash{}, false
	}
	return e.digest, true
}

// Granularity returns the node time granularity used for builds.
func (m *Manager) Granularity() float64 { return m.granularity }

// Stats returns a snapshot of the activity counters.
func (m *Manager) Stats() Stats { return m.stats }
