package renderer

import (
	"runtime"
	"sync"

	"github.com/cloudmarch/sky/pkg/core"
	"github.com/cloudmarch/sky/pkg/integrator"
)

// BandTask represents one horizontal band of the low-resolution buffer for
// the worker pool. Bands do not overlap, so workers write the shared buffers
// without locking.
type BandTask struct {
	Y0, Y1     int // half-open pixel row range
	Integrator *integrator.Integrator
	View       *core.ViewState
	Buffers    *core.FrameBuffers
	TMax       float64
	TaskID     int // for deterministic ordering
}

// BandResult contains the result from marching one band
type BandResult struct {
	TaskID int
	Stats  FrameStats
	Error  error
}

// WorkerPool manages parallel band rendering
type WorkerPool struct {
	taskQueue   chan BandTask
	resultQueue chan BandResult
	numWorkers  int
	wg          sync.WaitGroup
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(numWorkers, maxBands int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{
		taskQueue:   make(chan BandTask, maxBands),
		resultQueue: make(chan BandResult, maxBands),
		numWorkers:  numWorkers,
	}
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run()
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// SubmitTask submits a band task to the worker pool
func (wp *WorkerPool) SubmitTask(task BandTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed band result
func (wp *WorkerPool) GetResult() (BandResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (wp *WorkerPool) run() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		stats := marchBand(task)
		wp.resultQueue <- BandResult{TaskID: task.TaskID, Stats: stats}
	}
}
