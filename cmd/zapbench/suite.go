package main

import (
	"math/rand/v2"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"zap/pkg/zap"
)

func register(reg *zap.Registry) {
	registerFib(reg)
	registerSort(reg)
	registerMemcpy(reg)
	registerMicro(reg)
}

func fib(n int) int {
	if n < 2 {
		return n
	}
	return fib(n-1) + fib(n-2)
}

func registerFib(reg *zap.Registry) {
	g := reg.Group("fib").Tag("cpu")
	for _, n := range []int{10, 20} {
		zap.BenchInput(g, zap.IDInt("n", int64(n)), n, func(b *zap.B, n int) {
			b.Iter(func() { zap.BlackBox(fib(zap.BlackBox(n))) })
		})
	}
}

func insertionSort(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// sortImpl copies the unsorted input on every iteration so each call sorts
// the same data.
func sortImpl(input []int, sortFn func([]int)) zap.Func {
	return func(b *zap.B) {
		work := make([]int, len(input))
		b.SetThroughputElements(uint64(len(input)))
		b.Iter(func() {
			copy(work, input)
			sortFn(work)
			zap.BlackBox(work)
		})
	}
}

func registerSort(reg *zap.Registry) {
	cg := reg.CompareGroup("sort", zap.WithSamples(50)).Tag("cpu", "compare")
	rng := rand.New(rand.NewPCG(1, 2))
	for _, n := range []int{100, 1000} {
		input := make([]int, n)
		for i := range input {
			input[i] = rng.IntN(10000)
		}
		cg.Case(zap.IDInt("n", int64(n)),
			zap.Impl{Name: "sort.Ints", Fn: sortImpl(input, sort.Ints)},
			zap.Impl{Name: "slices.Sort", Fn: sortImpl(input, slices.Sort[[]int])},
			zap.Impl{Name: "insertion", Fn: sortImpl(input, insertionSort)},
		)
	}
}

func registerMemcpy(reg *zap.Registry) {
	g := reg.Group("memcpy", zap.WithMeasurement(2*time.Second)).Tag("memory")
	for _, size := range []int{64, 4096, 1 << 20} {
		zap.BenchInput(g, zap.IDInt("bytes", int64(size)), size, func(b *zap.B, size int) {
			src := make([]byte, size)
			dst := make([]byte, size)
			b.SetThroughputBytes(uint64(size))
			b.Iter(func() { copy(dst, src) })
			zap.BlackBox(dst)
		})
	}
}

func registerMicro(reg *zap.Registry) {
	g := reg.Group("micro", zap.WithWarmup(500*time.Millisecond)).Tag("cpu")

	m := make(map[string]int, 1024)
	keys := make([]string, 1024)
	for i := range keys {
		keys[i] = "key" + strconv.Itoa(i)
		m[keys[i]] = i
	}
	g.Bench("map_lookup", func(b *zap.B) {
		i := 0
		b.Iter(func() {
			zap.BlackBox(m[keys[i&1023]])
			i++
		})
	})

	g.Bench("builder", func(b *zap.B) {
		b.IterBatch(func(n uint64) {
			var sb strings.Builder
			for range n {
				sb.WriteByte('x')
			}
			zap.BlackBox(sb.Len())
		})
	})

	zap.BenchInput(g, zap.IDStr("itoa", "large"), int64(1<<40), func(b *zap.B, v int64) {
		var buf []byte
		b.IterCustom(
			func() { buf = make([]byte, 0, 32) },
			func() { buf = strconv.AppendInt(buf[:0], v, 10) },
			func() { zap.BlackBox(buf) },
		)
	})
}
