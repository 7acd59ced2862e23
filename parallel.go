package cog

import (
	"runtime"
	"sync"
)

// parallelRows calls fn over contiguous row ranges covering [0, n) using up
// to numWorkers goroutines. Ranges don't overlap, so fn may write to
// per-row output slots without synchronization. With numWorkers <= 1 it runs
// fn(0, n) on the calling goroutine.
func parallelRows(n, numWorkers int, fn func(start, end int)) {
	if numWorkers <= 1 || n <= 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	rowsPerWorker := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > n {
			endRow = n
		}
		if startRow >= n {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(startRow, endRow)
	}

	wg.Wait()
}

// workerCount resolves a Workers setting: 0 means runtime.NumCPU().
func workerCount(workers int) int {
	if workers <= 0 {
		return runtime.NumCPU()
	}
	return workers
}
