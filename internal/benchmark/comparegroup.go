package benchmark

import "fmt"

// Impl is one implementation measured inside a comparison case.
type Impl struct {
	Name string
	Fn   Func
}

// CompareGroup measures several implementations of the same operation
// across a set of inputs and reports each relative to a baseline
// implementation.
type CompareGroup struct {
	*Group
	baseline int
}

// Case is one input of a comparison group. Its implementations are keyed
// "group/label/param [impl]".
type Case struct {
	group *CompareGroup
	id    ID
	impls []*Benchmark
}

func (c *Case) ID() ID                   { return c.id }
func (c *Case) Group() *CompareGroup     { return c.group }
func (c *Case) Benchmarks() []*Benchmark { return c.impls }

// CompareGroup starts a comparison group. The first implementation of each
// case is the baseline unless Baseline says otherwise.
func (r *Registry) CompareGroup(name string, opts ...GroupOption) *CompareGroup {
	return &CompareGroup{Group: r.Group(name, opts...)}
}

// Baseline selects the implementation, by position, that ratios are
// computed against.
func (cg *CompareGroup) Baseline(i int) *CompareGroup {
	if i < 0 {
		cg.reg.fail(fmt.Errorf("%s: negative baseline index %d", cg.name, i))
		return cg
	}
	cg.baseline = i
	return cg
}

// BaselineIndex returns the position selected by Baseline.
func (cg *CompareGroup) BaselineIndex() int { return cg.baseline }

// Tag attaches tags used by the tag filter.
func (cg *CompareGroup) Tag(tags ...string) *CompareGroup {
	cg.Group.Tag(tags...)
	return cg
}

// Case registers every impl for input id.
func (cg *CompareGroup) Case(id ID, impls ...Impl) *CompareGroup {
	if !cg.valid() {
		return cg
	}
	if err := ValidateName(id.Label); err != nil {
		cg.reg.fail(fmt.Errorf("%s: case: %w", cg.name, err))
		return cg
	}
	if len(impls) == 0 {
		cg.reg.fail(fmt.Errorf("%s/%s: case has no implementations", cg.name, id))
		return cg
	}

	c := &Case{group: cg, id: id}
	for _, impl := range impls {
		if err := ValidateName(impl.Name); err != nil {
			cg.reg.fail(fmt.Errorf("%s/%s: impl: %w", cg.name, id, err))
			continue
		}
		bm := cg.newBenchmark(id.String()+" ["+impl.Name+"]", impl.Fn)
		if bm == nil {
			continue
		}
		bm.impl = impl.Name
		c.impls = append(c.impls, bm)
	}
	if len(c.impls) > 0 {
		cg.reg.units = append(cg.reg.units, unit{cs: c})
	}
	return cg
}
