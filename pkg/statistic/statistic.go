// Package statistic provides named, self-describing scalar statistics that
// can be selected by name and fed to the bootstrap estimator.
//
// Each statistic:
//   - Maps a sample of any length to a single real number
//   - Never modifies its input
//   - Provides metadata for documentation and listing
package statistic

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Sumatoshi-tech/resample/pkg/bootstrap"
)

// Sentinel errors.
var (
	// ErrUnknownStatistic is returned by Lookup for unregistered names.
	ErrUnknownStatistic = errors.New("unknown statistic")
	// ErrDuplicateStatistic is returned when a name is registered twice.
	ErrDuplicateStatistic = errors.New("statistic already registered")
	// ErrDivisionByZero is returned by statistics with an undefined value
	// on a particular sample.
	ErrDivisionByZero = errors.New("division by zero")
)

// Statistic categories.
const (
	TypeLocation = "location"
	TypeSpread   = "spread"
	TypeExtreme  = "extreme"
	TypeTeaching = "teaching"
)

// Statistic is the interface all named statistics implement.
type Statistic interface {
	// Name returns the machine-readable identifier (snake_case, unique).
	Name() string

	// DisplayName returns a human-readable name for reports.
	DisplayName() string

	// Description explains what the statistic measures.
	Description() string

	// Type returns the statistic category (e.g. "location", "spread").
	Type() string

	// Compute evaluates the statistic on values.
	Compute(values []float64) (float64, error)
}

// Meta holds the common metadata for a statistic.
// Embed this in implementations to satisfy the metadata methods.
type Meta struct {
	StatName        string
	StatDisplayName string
	StatDescription string
	StatType        string
}

// Name returns the machine-readable identifier.
func (m Meta) Name() string { return m.StatName }

// DisplayName returns a human-readable name.
func (m Meta) DisplayName() string { return m.StatDisplayName }

// Description returns the documentation string.
func (m Meta) Description() string { return m.StatDescription }

// Type returns the statistic category.
func (m Meta) Type() string { return m.StatType }

// Func adapts a plain function into a Statistic.
type Func struct {
	Meta

	Fn func(values []float64) (float64, error)
}

// Compute calls Fn.
func (f Func) Compute(values []float64) (float64, error) {
	return f.Fn(values)
}

// Bootstrap returns s as a bootstrap.Statistic.
func Bootstrap(s Statistic) bootstrap.Statistic {
	return s.Compute
}

// Registry holds a collection of statistics addressable by name.
type Registry struct {
	stats map[string]Statistic
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stats: make(map[string]Statistic)}
}

// Register adds s to the registry.
func (r *Registry) Register(s Statistic) error {
	if _, exists := r.stats[s.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateStatistic, s.Name())
	}

	r.stats[s.Name()] = s

	return nil
}

// Lookup retrieves a statistic by name.
func (r *Registry) Lookup(name string) (Statistic, error) {
	s, ok := r.stats[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownStatistic, name, r.Names())
	}

	return s, nil
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.stats))

	for name := range r.stats {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// All returns the registered statistics sorted by name.
func (r *Registry) All() []Statistic {
	names := r.Names()
	out := make([]Statistic, 0, len(names))

	for _, name := range names {
		out = append(out, r.stats[name])
	}

	return out
}
