package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// Description labels the progress line.
	// Default: "Fetching data"
	Description string

	// TotalSize is the total size in bytes to fetch.
	TotalSize int64

	// TotalFiles is the number of files to fetch.
	TotalFiles int

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration

	// Source is the repository being fetched from (for display).
	Source string
}

// Reporter outputs human-readable progress information.
type Reporter struct {
	opts Options

	mu             sync.Mutex
	current        string
	completedBytes atomic.Int64
	completedFiles atomic.Int32
	failedFiles    atomic.Int32
	startTime      time.Time
	lastUpdate     time.Time
	lastBytes      int64
	stopCh         chan struct{}
	doneCh         chan struct{}
	started        bool
	stopped        bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}
	if opts.Description == "" {
		opts.Description = "Fetching data"
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.startTime = time.Now()
	r.lastUpdate = r.startTime
	r.mu.Unlock()

	if r.opts.Source != "" {
		fmt.Fprintf(r.opts.Output, "[mdfetch] Source: %s\n", r.opts.Source)
	}
	fmt.Fprintf(r.opts.Output, "[mdfetch] Total size: %s | Files: %d\n",
		formatBytes(r.opts.TotalSize),
		r.opts.TotalFiles,
	)

	go r.updateLoop()
}

// Stop stops the reporter and prints the final status. It waits for the
// final status to be written.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped || !r.started {
		r.stopped = true
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh
}

// FileStarted marks name as the file being fetched.
func (r *Reporter) FileStarted(name string) {
	r.mu.Lock()
	r.current = name
	r.mu.Unlock()
}

// FileCompleted advances progress by size bytes.
func (r *Reporter) FileCompleted(size int64) {
	r.completedBytes.Add(size)
	r.completedFiles.Add(1)
	r.mu.Lock()
	r.current = ""
	r.mu.Unlock()
}

// FileFailed marks the current file as failed. Progress is not advanced.
func (r *Reporter) FileFailed() {
	r.failedFiles.Add(1)
	r.mu.Lock()
	r.current = ""
	r.mu.Unlock()
}

// Completed returns the bytes advanced so far.
func (r *Reporter) Completed() int64 {
	return r.completedBytes.Load()
}

// CompletedFiles returns the number of files completed so far.
func (r *Reporter) CompletedFiles() int {
	return int(r.completedFiles.Load())
}

// updateLoop periodically updates the progress display.
func (r *Reporter) updateLoop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

// printProgress outputs the current progress.
func (r *Reporter) printProgress() {
	now := time.Now()
	completed := r.completedBytes.Load()
	completedFiles := int(r.completedFiles.Load())

	r.mu.Lock()
	elapsed := now.Sub(r.lastUpdate).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	speed := float64(completed-r.lastBytes) / elapsed
	r.lastUpdate = now
	r.lastBytes = completed
	current := r.current
	r.mu.Unlock()

	// Files complete in whole steps, so fall back to the average rate
	// between them.
	if speed == 0 {
		if total := now.Sub(r.startTime).Seconds(); total > 0 {
			speed = float64(completed) / total
		}
	}

	var percent float64
	eta := "calculating..."
	if r.opts.TotalSize > 0 {
		percent = float64(completed) / float64(r.opts.TotalSize) * 100
		if speed > 0 {
			remaining := float64(r.opts.TotalSize - completed)
			eta = formatDuration(time.Duration(remaining / speed * float64(time.Second)))
		}
	}

	fmt.Fprintf(r.opts.Output, "\r[mdfetch] %s: %.1f%% | %s / %s | Speed: %s/s | ETA: %s    ",
		r.opts.Description,
		percent,
		formatBytes(completed),
		formatBytes(r.opts.TotalSize),
		formatBytes(int64(speed)),
		eta,
	)
	fmt.Fprintf(r.opts.Output, "\n[mdfetch] Files: %d/%d | Current: %s    \033[A",
		completedFiles,
		r.opts.TotalFiles,
		current,
	)
}

// printFinalStatus outputs the final status.
func (r *Reporter) printFinalStatus() {
	completed := r.completedBytes.Load()
	completedFiles := int(r.completedFiles.Load())
	failed := int(r.failedFiles.Load())
	duration := time.Since(r.startTime)

	var avgSpeed float64
	if duration > 0 {
		avgSpeed = float64(completed) / duration.Seconds()
	}

	var percent float64 = 100
	if r.opts.TotalSize > 0 {
		percent = float64(completed) / float64(r.opts.TotalSize) * 100
	}

	status := "Complete!"
	if failed > 0 || completedFiles < r.opts.TotalFiles {
		status = "Stopped"
	}

	fmt.Fprintf(r.opts.Output, "\r[mdfetch] %s: %.1f%% | %s / %s | %s    \n",
		r.opts.Description,
		percent,
		formatBytes(completed),
		formatBytes(r.opts.TotalSize),
		status,
	)
	fmt.Fprintf(r.opts.Output, "[mdfetch] Files: %d/%d | %d failed                    \n",
		completedFiles,
		r.opts.TotalFiles,
		failed,
	)
	fmt.Fprintf(r.opts.Output, "[mdfetch] Total time: %s | Average speed: %s/s\n",
		formatDuration(duration),
		formatBytes(int64(avgSpeed)),
	)
}
