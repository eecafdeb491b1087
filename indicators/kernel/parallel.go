package kernel

import (
	"runtime"
	"sync"
)

// parallelThreshold is the element count below which elementwise kernels stay
// on the calling goroutine.
const parallelThreshold = 1 << 15

// parallelFor calls fn(i) for every i in [from, to). fn must only write index
// i of its output. Large ranges are split into contiguous chunks, one per CPU.
func parallelFor(from, to int, fn func(i int)) {
	n := to - from
	if n <= 0 {
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if n < parallelThreshold || workers < 2 {
		for i := from; i < to; i++ {
			fn(i)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := from; start < to; start += chunk {
		end := min(start+chunk, to)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
