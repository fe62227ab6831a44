package workers

import (
	"log"
	"sync"

	"github.com/camden-git/photometabackend/realtime"
	"github.com/camden-git/photometabackend/services"
)

// ScanJob asks the pool to index one folder
type ScanJob struct {
	Folder string
	Force  bool
}

// ScanStatus is a point-in-time snapshot of the scan in flight. Folder
// is nil while no scan is running; Processed and Total keep the counts
// of the most recent scan until the next one starts.
type ScanStatus struct {
	Running   bool    `json:"running"`
	Folder    *string `json:"folder"`
	Processed int     `json:"processed"`
	Total     int     `json:"total"`
}

// ScanWorkerPool runs directory scans on background workers. Only one
// scan is admitted at a time; its progress is tracked here and pushed
// to websocket clients through the hub.
type ScanWorkerPool struct {
	JobQueue chan ScanJob
	Scanner  *services.ScanService
	Hub      *realtime.Hub
	Wg       sync.WaitGroup
	StopChan chan struct{}

	mu        sync.Mutex
	running   bool
	folder    string
	processed int
	total     int
	cancelled bool
}

// NewScanWorkerPool creates a pool and starts its workers
func NewScanWorkerPool(scanner *services.ScanService, hub *realtime.Hub, numWorkers, queueSize int) *ScanWorkerPool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	pool := &ScanWorkerPool{
		JobQueue: make(chan ScanJob, queueSize),
		Scanner:  scanner,
		Hub:      hub,
		StopChan: make(chan struct{}),
	}

	pool.Wg.Add(numWorkers)
	for i := 1; i <= numWorkers; i++ {
		go pool.worker(i)
	}
	log.Printf("Started %d scan worker(s)", numWorkers)

	return pool
}

func (sp *ScanWorkerPool) worker(id int) {
	defer sp.Wg.Done()
	log.Printf("Scan worker %d started", id)
	for {
		select {
		case job, ok := <-sp.JobQueue:
			if !ok {
				log.Printf("Scan worker %d stopping, job queue closed", id)
				return
			}
			sp.runScan(id, job)
		case <-sp.StopChan:
			log.Printf("Scan worker %d received stop signal", id)
			return
		}
	}
}

// StartScan queues a scan of folder. It reports false when another
// scan is already running or the queue is full.
func (sp *ScanWorkerPool) StartScan(folder string, force bool) bool {
	sp.mu.Lock()
	if sp.running {
		sp.mu.Unlock()
		return false
	}
	sp.running = true
	sp.folder = folder
	sp.processed = 0
	sp.total = 0
	sp.cancelled = false
	sp.mu.Unlock()

	select {
	case sp.JobQueue <- ScanJob{Folder: folder, Force: force}:
		log.Printf("Queued scan of %s (force=%v)", folder, force)
		return true
	default:
		log.Printf("WARNING: scan job queue full, refusing scan of %s", folder)
		sp.reset()
		return false
	}
}

// CancelScan asks the running scan to stop after the image it is on.
// It is a no-op when nothing is running.
func (sp *ScanWorkerPool) CancelScan() {
	sp.mu.Lock()
	sp.cancelled = true
	sp.mu.Unlock()
}

// Status reports the progress of the current scan
func (sp *ScanWorkerPool) Status() ScanStatus {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	status := ScanStatus{
		Running:   sp.running,
		Processed: sp.processed,
		Total:     sp.total,
	}
	if sp.running {
		folder := sp.folder
		status.Folder = &folder
	}
	return status
}

func (sp *ScanWorkerPool) runScan(id int, job ScanJob) {
	defer sp.reset()

	log.Printf("Worker %d: scanning %s", id, job.Folder)
	sp.Hub.Broadcast(realtime.Event{Type: realtime.EventScanStarted, Folder: job.Folder})

	images, err := sp.Scanner.ImagesInFolder(job.Folder)
	if err != nil {
		log.Printf("Worker %d: ERROR listing images in %s: %v", id, job.Folder, err)
		sp.Hub.Broadcast(realtime.Event{Type: realtime.EventScanError, Folder: job.Folder, Error: err.Error()})
		return
	}

	purged, err := sp.Scanner.PruneMissing(job.Folder, images)
	if err != nil {
		log.Printf("Worker %d: ERROR purging missing images in %s: %v", id, job.Folder, err)
	} else if purged > 0 {
		log.Printf("Worker %d: purged %d missing image(s) from the index", id, purged)
	}

	pending, err := sp.Scanner.SelectForIndexing(job.Folder, images, job.Force)
	if err != nil {
		log.Printf("Worker %d: ERROR selecting images in %s: %v", id, job.Folder, err)
		sp.Hub.Broadcast(realtime.Event{Type: realtime.EventScanError, Folder: job.Folder, Error: err.Error()})
		return
	}

	sp.mu.Lock()
	sp.total = len(pending)
	sp.mu.Unlock()

	if len(pending) == 0 {
		log.Printf("Worker %d: nothing to index in %s", id, job.Folder)
		sp.Hub.Broadcast(realtime.Event{Type: realtime.EventScanComplete, Folder: job.Folder})
		return
	}

	cancelled := false
	for _, path := range pending {
		sp.mu.Lock()
		cancelled = sp.cancelled
		sp.mu.Unlock()
		if cancelled {
			break
		}

		if err := sp.Scanner.IndexImage(path); err != nil {
			log.Printf("Worker %d: ERROR indexing %s: %v", id, path, err)
		}

		sp.mu.Lock()
		sp.processed++
		processed, total := sp.processed, sp.total
		sp.mu.Unlock()
		sp.Hub.Broadcast(realtime.Event{
			Type:      realtime.EventScanProgress,
			Folder:    job.Folder,
			Processed: processed,
			Total:     total,
		})
	}

	// a cancelled pass still marks the folder so incremental rescans work
	if err := sp.Scanner.MarkScanned(job.Folder); err != nil {
		log.Printf("Worker %d: ERROR marking %s scanned: %v", id, job.Folder, err)
	}

	sp.mu.Lock()
	processed, total := sp.processed, sp.total
	sp.mu.Unlock()
	if cancelled {
		log.Printf("Worker %d: scan of %s cancelled after %d of %d image(s)", id, job.Folder, processed, total)
		sp.Hub.Broadcast(realtime.Event{Type: realtime.EventScanCancelled, Folder: job.Folder, Processed: processed, Total: total})
		return
	}
	log.Printf("Worker %d: scan of %s complete, %d image(s) indexed", id, job.Folder, processed)
	sp.Hub.Broadcast(realtime.Event{Type: realtime.EventScanComplete, Folder: job.Folder, Processed: processed, Total: total})
}

func (sp *ScanWorkerPool) reset() {
	sp.mu.Lock()
	sp.running = false
	sp.folder = ""
	sp.mu.Unlock()
}

// Stop cancels any running scan, shuts the workers down and waits for
// them to exit
func (sp *ScanWorkerPool) Stop() {
	log.Println("Stopping scan workers...")
	sp.CancelScan()
	close(sp.StopChan)
	sp.Wg.Wait()
	log.Println("All scan workers stopped")
}
