package benchmark

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"zap/internal/measure"
)

// MaxNameLen bounds group, benchmark and implementation names.
const MaxNameLen = 1024

// ErrDuplicate is returned when two benchmarks resolve to the same key.
var ErrDuplicate = errors.New("duplicate benchmark")

// Func is a benchmark body. It must drive the loop through b.
type Func func(b *measure.B)

// ValidateName rejects names that cannot be reported or stored in a baseline.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case len(name) > MaxNameLen:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidName, MaxNameLen)
	case strings.ContainsAny(name, "|\n\r"):
		return fmt.Errorf("%w: %q contains a reserved character", ErrInvalidName, name)
	}
	return nil
}

// ID names a parameterized benchmark, rendered as "label/param".
type ID struct {
	Label string
	Param string
}

func IDStr(label, param string) ID { return ID{Label: label, Param: param} }

func IDInt(label string, param int64) ID {
	return ID{Label: label, Param: strconv.FormatInt(param, 10)}
}

func (id ID) String() string {
	if id.Param == "" {
		return id.Label
	}
	return id.Label + "/" + id.Param
}

// Benchmark is one registered, runnable unit.
type Benchmark struct {
	key   string
	name  string
	impl  string
	group *Group
	fn    Func
}

// Key is the unique, hierarchical name used for filtering, reporting and
// the baseline file.
func (bm *Benchmark) Key() string   { return bm.key }
func (bm *Benchmark) Name() string  { return bm.name }
func (bm *Benchmark) Impl() string  { return bm.impl }
func (bm *Benchmark) Group() string { return bm.group.name }

// Tags returns the tags of the owning group.
func (bm *Benchmark) Tags() []string { return bm.group.tags }

// unit is either a plain benchmark or a comparison case.
type unit struct {
	bench *Benchmark
	cs    *Case
}

// Registry holds benchmarks in registration order. Registration problems
// are collected and reported together by Err.
type Registry struct {
	units []unit
	keys  map[string]bool
	errs  []error
}

func NewRegistry() *Registry {
	return &Registry{keys: make(map[string]bool)}
}

// Err returns every registration error, joined, or nil.
func (r *Registry) Err() error {
	return errors.Join(r.errs...)
}

// Len returns the number of runnable benchmarks, counting every
// implementation of every comparison case.
func (r *Registry) Len() int {
	n := 0
	for _, u := range r.units {
		if u.bench != nil {
			n++
		} else {
			n += len(u.cs.impls)
		}
	}
	return n
}

// Benchmarks lists every runnable benchmark in registration order.
func (r *Registry) Benchmarks() []*Benchmark {
	var out []*Benchmark
	for _, u := range r.units {
		if u.bench != nil {
			out = append(out, u.bench)
		} else {
			out = append(out, u.cs.impls...)
		}
	}
	return out
}

func (r *Registry) fail(err error) {
	r.errs = append(r.errs, err)
}

func (r *Registry) claim(key string) bool {
	if r.keys[key] {
		r.fail(fmt.Errorf("%w: %s", ErrDuplicate, key))
		return false
	}
	r.keys[key] = true
	return true
}

// settings are per-group overrides of the session's measurement config.
type settings struct {
	warmup      *time.Duration
	measurement *time.Duration
	samples     *int
	minIters    *uint64
}

// GroupOption overrides one measurement setting for a group.
type GroupOption func(*settings)

func WithWarmup(d time.Duration) GroupOption {
	return func(s *settings) { s.warmup = &d }
}

func WithMeasurement(d time.Duration) GroupOption {
	return func(s *settings) { s.measurement = &d }
}

func WithSamples(n int) GroupOption {
	return func(s *settings) { s.samples = &n }
}

func WithMinIterations(n uint64) GroupOption {
	return func(s *settings) { s.minIters = &n }
}

// Group is a named set of benchmarks sharing tags and settings. Keys of its
// benchmarks are prefixed with the group name.
type Group struct {
	reg  *Registry
	name string
	tags []string
	set  settings
}

// Group starts a new group. An invalid name is recorded as a registration
// error and the group's benchmarks are dropped.
func (r *Registry) Group(name string, opts ...GroupOption) *Group {
	g := &Group{reg: r, name: name}
	for _, opt := range opts {
		opt(&g.set)
	}
	if err := ValidateName(name); err != nil {
		r.fail(fmt.Errorf("group: %w", err))
	}
	return g
}

func (g *Group) Name() string { return g.name }

// Tag attaches tags used by the tag filter.
func (g *Group) Tag(tags ...string) *Group {
	g.tags = append(g.tags, tags...)
	return g
}

// Config applies the group's overrides to base.
func (g *Group) Config(base measure.Config) measure.Config {
	if g.set.warmup != nil {
		base.Warmup = *g.set.warmup
	}
	if g.set.measurement != nil {
		base.Measurement = *g.set.measurement
	}
	if g.set.samples != nil {
		base.Samples = *g.set.samples
	}
	if g.set.minIters != nil {
		base.MinIterations = *g.set.minIters
	}
	return base
}

func (g *Group) valid() bool {
	return ValidateName(g.name) == nil
}

func (g *Group) newBenchmark(name string, fn Func) *Benchmark {
	if !g.valid() {
		return nil
	}
	if err := ValidateName(name); err != nil {
		g.reg.fail(fmt.Errorf("%s: %w", g.name, err))
		return nil
	}
	if fn == nil {
		g.reg.fail(fmt.Errorf("%s/%s: nil benchmark function", g.name, name))
		return nil
	}
	key := g.name + "/" + name
	if !g.reg.claim(key) {
		return nil
	}
	return &Benchmark{key: key, name: name, group: g, fn: fn}
}

// Bench registers fn as group/name.
func (g *Group) Bench(name string, fn Func) *Group {
	if bm := g.newBenchmark(name, fn); bm != nil {
		g.reg.units = append(g.reg.units, unit{bench: bm})
	}
	return g
}

// BenchID registers fn as group/label/param.
func (g *Group) BenchID(id ID, fn Func) *Group {
	return g.Bench(id.String(), fn)
}

// BenchInput registers fn with input bound, as group/label/param.
func BenchInput[T any](g *Group, id ID, input T, fn func(b *measure.B, input T)) *Group {
	if fn == nil {
		return g.BenchID(id, nil)
	}
	return g.BenchID(id, func(b *measure.B) { fn(b, input) })
}
