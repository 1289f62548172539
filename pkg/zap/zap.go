// Package zap is the public entry point for writing benchmark binaries.
//
//	func main() {
//		zap.Main(func(reg *zap.Registry) {
//			reg.Group("fib").BenchID(zap.IDInt("n", 20), func(b *zap.B) {
//				b.Iter(func() { zap.BlackBox(fib(20)) })
//			})
//		})
//	}
package zap

import (
	"os"
	"path/filepath"
	"time"

	"zap/internal/benchmark"
	"zap/internal/cli"
	"zap/internal/measure"
)

type (
	Registry     = benchmark.Registry
	Group        = benchmark.Group
	CompareGroup = benchmark.CompareGroup
	GroupOption  = benchmark.GroupOption
	Impl         = benchmark.Impl
	ID           = benchmark.ID
	B            = measure.B
	Func         = benchmark.Func
)

// Main runs the command line for the benchmarks registered by register and
// exits non-zero on failure.
func Main(register func(reg *Registry)) {
	cli.Execute(filepath.Base(os.Args[0]), cli.Suite(register))
}

// NewRegistry returns an empty registry, for running benchmarks without the
// command line.
func NewRegistry() *Registry { return benchmark.NewRegistry() }

func IDInt(label string, n int64) ID { return benchmark.IDInt(label, n) }
func IDStr(label, param string) ID   { return benchmark.IDStr(label, param) }

func WithWarmup(d time.Duration) GroupOption      { return benchmark.WithWarmup(d) }
func WithMeasurement(d time.Duration) GroupOption { return benchmark.WithMeasurement(d) }
func WithSamples(n int) GroupOption               { return benchmark.WithSamples(n) }
func WithMinIterations(n uint64) GroupOption      { return benchmark.WithMinIterations(n) }

// BenchInput registers fn under id with input passed on every call.
func BenchInput[T any](g *Group, id ID, input T, fn func(b *B, input T)) *Group {
	return benchmark.BenchInput(g, id, input, fn)
}

// BlackBox returns v unchanged and keeps the compiler from discarding the
// computation that produced it.
func BlackBox[T any](v T) T { return measure.BlackBox(v) }
