package raster

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum row count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 32

// rowBand represents a range of rows for a worker to shade.
type rowBand struct {
	start, end int
	index      int
}

// bandPool splits a frame into row bands shaded by persistent workers.
// Each run is a fork/join inside one frame.
type bandPool struct {
	raster     *Raster
	numWorkers int

	// Worker pool channels
	workChan chan rowBand  // sends work to workers
	doneChan chan struct{} // workers signal completion
	stopChan chan struct{} // signals workers to exit
	wg       sync.WaitGroup
	running  bool
}

func newBandPool(r *Raster, workers int) *bandPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &bandPool{raster: r, numWorkers: workers}
}

// start launches persistent worker goroutines.
func (p *bandPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan rowBand, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *bandPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, shading bands until stopped.
func (p *bandPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case band, ok := <-p.workChan:
			if !ok {
				return
			}
			p.raster.renderRows(band.start, band.end, band.index)
			p.doneChan <- struct{}{}
		}
	}
}

// run shades rows [0, rows) and returns when every band is done.
func (p *bandPool) run(rows int) {
	if rows <= 0 {
		return
	}
	if rows < parallelThreshold || p.numWorkers == 1 {
		p.raster.renderRows(0, rows, 0)
		return
	}

	if !p.running {
		p.start()
	}

	bandSize := (rows + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * bandSize
		end := start + bandSize
		if end > rows {
			end = rows
		}
		if start >= end {
			continue
		}

		p.workChan <- rowBand{start: start, end: end, index: w}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
