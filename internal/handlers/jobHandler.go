package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocAssist/internal/api"
	"github.com/akolanti/DocAssist/internal/config"
	"github.com/akolanti/DocAssist/internal/domain/chatModel"
	"github.com/akolanti/DocAssist/internal/domain/jobModel"
	"github.com/akolanti/DocAssist/internal/job"
	"github.com/akolanti/DocAssist/internal/metrics"
	"github.com/akolanti/DocAssist/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service       *job.Service
	maxUploadSize int64
}

func InitJobHandler(jobService *job.Service, maxUploadSize int64) {
	once.Do(func() {
		if maxUploadSize <= 0 {
			maxUploadSize = config.MaxUploadSize
		}
		handlerInstance = &JobHandler{service: jobService, maxUploadSize: maxUploadSize}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})
}

func CreateNewJob(ctx context.Context, newJob newJobData) {
	log := logJH.FromContext(ctx).With("jobId", newJob.id)
	log.Debug("Creating new job", "ingest", newJob.isDocumentIngest)
	if newJob.isNewChat {
		log.Debug("Create new chat", "chatId", newJob.chatId)
		handlerInstance.initNewChat(ctx, newJob.chatId)
	}
	handlerInstance.pushToJobChannel(ctx, newJob)
}

func GetJobStatus(ctx context.Context, id string) (result jobModel.Job, isFound bool) {
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctx, id)
	}
	return result, false
}

// ValidateChatRequest checks the message and chat id and resolves mode and tier.
func ValidateChatRequest(ctx context.Context, chatReq api.ChatRequest) (chatModel.Mode, chatModel.Tier, bool) {
	if handlerInstance == nil || chatReq.Message == "" {
		return "", "", false
	}
	mode, ok := chatModel.ParseMode(chatReq.Mode)
	if !ok {
		return "", "", false
	}
	tier, ok := chatModel.ParseTier(chatReq.Tier)
	if !ok {
		return "", "", false
	}
	if chatReq.ChatID == "" {
		return mode, tier, true
	}
	logJH.FromContext(ctx).Debug("Validating chat id", "chatId", chatReq.ChatID)
	return mode, tier, handlerInstance.service.MessageStore.ValidateChatId(ctx, chatReq.ChatID)
}

// private methods
func (h *JobHandler) pushToJobChannel(ctx context.Context, newJob newJobData) {

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued

	if newJob.isDocumentIngest {
		_job.CurrentStep = jobModel.IngestInit
		_job.JobType = jobModel.JobTypeIngest
		_job.JobPayload.DocumentId = newJob.documentId
	} else {
		_job.JobType = jobModel.JobTypeQuery
		_job.ChatId = newJob.chatId
		_job.JobPayload.Question = newJob.message
		_job.JobPayload.Mode = newJob.mode
		_job.JobPayload.Tier = newJob.tier
		_job.JobPayload.Caller = newJob.chatId
		_job.CurrentStep = jobModel.UserQueryInit
	}

	// visible to GET /status before a worker picks it up
	if err := h.service.JobStore.SaveJob(ctx, _job); err != nil {
		logJH.FromContext(ctx).Error("Failed to save queued job", "jobId", _job.Id, "err", err)
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.FromContext(ctx).Info("Created new job", "jobId", _job.Id, "jobType", _job.JobType)

	//we will start a new worker every RequestsPerNewWorkerCount requests
	//or for every document ingestion job - ingestion makes many external calls
	//idle workers are removed, so most of the time only the floor keeps running

	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobModel.JobTypeIngest {
		metrics.StartDispatcherSignalCount() //metrics
		logJH.Debug("Signalling dispatcher", "requestCount", accurateCount)
		select {
		case h.service.DispatcherChannel <- true:
		default:
			// dispatcher already has a pending signal
		}
	}
}

func (h *JobHandler) initNewChat(ctx context.Context, chatId string) {
	err := h.service.MessageStore.InitNewChat(ctx, chatId)
	if err != nil {
		logJH.FromContext(ctx).Error("Error initiating new chat", "chatId", chatId, "err", err)
	}
}
