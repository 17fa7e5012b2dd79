package mask

import (
	"runtime"
	"sync"
	"sync/atomic"

	"starquads/pkg/geometry"
)

// ForegroundPixels extracts the coordinates of every foreground cell
// using two data-parallel passes over the mask:
//
//  1. Count foreground cells, each worker adding its band's total to a
//     single atomic counter.
//  2. Allocate the output buffer at that exact size and, in a second
//     pass, have each foreground cell atomically claim the next output
//     slot and write its coordinate.
//
// The two-pass design sizes the output buffer up front instead of
// growing it inside the parallel section. A full barrier separates the
// passes, so no partial results are ever visible.
//
// The ordering of the returned coordinates is unspecified; downstream
// stages must not depend on it.
func (m *Mask) ForegroundPixels() []geometry.PixelCoordinate {
	workers := runtime.NumCPU()
	if workers > m.height {
		workers = m.height
	}
	if workers < 1 {
		workers = 1
	}

	rowsPerWorker := (m.height + workers - 1) / workers

	// Pass 1: count foreground cells.
	var total int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		startY := w * rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > m.height {
			endY = m.height
		}
		if startY >= endY {
			continue
		}

		wg.Add(1)
		go func(startY, endY int) {
			defer wg.Done()

			var local int64
			for y := startY; y < endY; y++ {
				row := m.data[y*m.width : (y+1)*m.width]
				for x := range row {
					if row[x] >= foregroundLevel {
						local++
					}
				}
			}
			atomic.AddInt64(&total, local)
		}(startY, endY)
	}
	wg.Wait()

	if total == 0 {
		return nil
	}

	// Pass 2: each foreground cell claims the next output slot.
	out := make([]geometry.PixelCoordinate, total)
	var next int64
	for w := 0; w < workers; w++ {
		startY := w * rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > m.height {
			endY = m.height
		}
		if startY >= endY {
			continue
		}

		wg.Add(1)
		go func(startY, endY int) {
			defer wg.Done()

			for y := startY; y < endY; y++ {
				row := m.data[y*m.width : (y+1)*m.width]
				for x := range row {
					if row[x] >= foregroundLevel {
						slot := atomic.AddInt64(&next, 1) - 1
						out[slot] = geometry.PixelCoordinate{X: x, Y: y}
					}
				}
			}
		}(startY, endY)
	}
	wg.Wait()

	return out
}

// CountForeground returns the number of foreground cells without
// collecting their coordinates.
func (m *Mask) CountForeground() int {
	n := 0
	for _, v := range m.data {
		if v >= foregroundLevel {
			n++
		}
	}
	return n
}
