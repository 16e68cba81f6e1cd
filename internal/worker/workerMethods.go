package worker

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocAssist/internal/config"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/internal/domain/jobModel"
	"github.com/akolanti/DocAssist/internal/metrics"
	"github.com/akolanti/DocAssist/pkg/logger_i"
)

func executeJob(job jobModel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.JobType), time.Since(start))
	}()

	timeout := config.QueryJobTimeout
	if job.JobType == jobModel.JobTypeIngest {
		timeout = config.IngestJobTimeout
	}
	ctx, cancel := context.WithTimeout(logger_i.WithTraceID(context.Background(), job.TraceId), timeout)
	defer cancel()

	log := logger.FromContext(ctx).With("jobId", job.Id, "jobType", job.JobType)
	log.Debug("Processing job")

	job.Status = jobModel.JobStatusRunning
	saveJobState(ctx, log, job)

	if job.JobType == jobModel.JobTypeIngest {
		job = ingestDocument(ctx, log, job)
	} else {
		job.CurrentStep = jobModel.RedisCall
		job = processQuery(ctx, log, job)
		if job.Status != jobModel.JobStatusError {
			if err := _jobService.MessageStore.TrySaveChat(ctx, job.ChatId, job.JobPayload); err != nil {
				log.Error("Failed to save chat history", "err", err)
			}
		}
	}

	job.EndTime = time.Now()
	if job.Status != jobModel.JobStatusError {
		job.Status = jobModel.JobStatusComplete
	}
	// the result must be stored even when the job ran out its deadline
	saveJobState(context.WithoutCancel(ctx), log, job)
}

func removeWorker(reason string) {
	atomic.AddInt64(&currentWorkerCount, -1)
	retireWorker(reason)
}

// retireWorker is for a worker whose slot was already released from the count.
func retireWorker(reason string) {
	workerWaitGroup.Done()
	logger.Info("Removed worker", "reason", reason, "workerCount", atomic.LoadInt64(&currentWorkerCount))
	metrics.DecrementActiveWorkerCount()
}

// ingestDocument refuses to run while ingestion is paused. An authentication
// failure pauses it: every later document would fail the same way.
func ingestDocument(ctx context.Context, log *logger_i.Logger, job jobModel.Job) jobModel.Job {
	if _jobService.IngestionPaused() {
		log.Warn("Ingestion is paused, job not run", "documentId", job.JobPayload.DocumentId)
		job.Status = jobModel.JobStatusError
		job.CurrentStep = jobModel.IngestPaused
		job.Error = jobModel.JobError{
			Code:    http.StatusServiceUnavailable,
			Message: "Ingestion is paused until an operator resumes it",
			Kind:    string(errorModel.KindAuthentication),
			Retry:   true,
		}
		return job
	}

	job = _ragService.IngestDocument(ctx, job)
	if job.Error.Kind == string(errorModel.KindAuthentication) {
		if _jobService.PauseIngestion() {
			log.Error("Upstream rejected our credentials, pausing ingestion")
		}
	}
	return job
}

func processQuery(ctx context.Context, log *logger_i.Logger, job jobModel.Job) jobModel.Job {
	messageHistory, err := _jobService.MessageStore.GetMessageHistory(ctx, job.ChatId)
	if err != nil {
		log.Error("Failed to get message history", "err", err)
	}
	return _ragService.ProcessRequest(ctx, job, messageHistory)
}

func saveJobState(ctx context.Context, log *logger_i.Logger, job jobModel.Job) {
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("Failed to update job state", "err", err)
	}
}
