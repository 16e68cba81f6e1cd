package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocAssist/internal/config"
	"github.com/akolanti/DocAssist/internal/job"
	"github.com/akolanti/DocAssist/internal/metrics"
	"github.com/akolanti/DocAssist/internal/rag"
	"github.com/akolanti/DocAssist/pkg/logger_i"
)

var (
	_jobService        *job.Service
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	dispatcherChannel  chan bool
	currentWorkerCount int64
	logger             = logger_i.NewLogger("WorkerPool")
	_ragService        rag.Service
	minWorkerCount     = config.MinWorkerCount
	maxWorkerCount     = config.MaxWorkerCount
	idleWorkerTimeout  = config.IdleWorkerTimeout
)

func InitServices(jobService *job.Service, ragService rag.Service) {
	_jobService = jobService
	_ragService = ragService
	dispatcherChannel = jobService.DispatcherChannel
}

// SetPoolSize overrides the compiled worker bounds with the configured ones.
func SetPoolSize(min, max int64) {
	if min > 0 {
		atomic.StoreInt64(&minWorkerCount, min)
	}
	if max >= min && max > 0 {
		atomic.StoreInt64(&maxWorkerCount, max)
	}
}

func InitWorkerPool(stopWorkerChan chan bool, waitGroup *sync.WaitGroup) {
	stopWorkerChannel = stopWorkerChan
	workerWaitGroup = waitGroup
	logger = logger_i.NewLogger("WorkerPool")
	logger.Info("Initializing worker pool")
	go dispatcher()
}

func dispatcher() {
	for range atomic.LoadInt64(&minWorkerCount) {
		createWorker()
	}
	logger.Info("Dispatcher started")
	for range dispatcherChannel {
		if atomic.LoadInt64(&currentWorkerCount) < atomic.LoadInt64(&maxWorkerCount) {
			logger.Info("Creating new worker", "workerCount", atomic.LoadInt64(&currentWorkerCount))
			createWorker()
		}
	}
}

func createWorker() {
	workerWaitGroup.Add(1)
	atomic.AddInt64(&currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go worker()
	logger.Debug("Created new worker")
}

func worker() {
	idle := time.NewTimer(idleWorkerTimeout)
	defer idle.Stop()
	for {
		select {
		case currentJob := <-_jobService.JobChannel:
			executeJob(currentJob)
			metrics.DecrementJobsInQueue()
			idle.Reset(idleWorkerTimeout)
		case <-stopWorkerChannel:
			removeWorker("Stop worker signal received")
			return
		case <-idle.C:
			// retire only while the pool stays above its floor
			if atomic.AddInt64(&currentWorkerCount, -1) >= atomic.LoadInt64(&minWorkerCount) {
				retireWorker("Idle worker timeout")
				return
			}
			atomic.AddInt64(&currentWorkerCount, 1)
			idle.Reset(idleWorkerTimeout)
		}
	}
}
