package rag

import (
	"net/http"

	"github.com/akolanti/DocAssist/internal/domain/chatModel"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/internal/domain/jobModel"
	"github.com/akolanti/DocAssist/pkg/logger_i"
)

func returnOutput(job jobModel.Job, ans chatModel.Answer) jobModel.Job {
	job.JobPayload.Answer = ans.Text
	job.JobPayload.Sources = ans.Sources
	job.JobPayload.ContextFound = ans.ContextFound
	job.JobPayload.RetrievalFailed = ans.RetrievalFailed
	job.CurrentStep = jobModel.Complete
	return job
}

func jobError(log *logger_i.Logger, job jobModel.Job, err error, message string) jobModel.Job {
	kind := errorModel.KindOf(err)
	log.Error(message, "kind", kind, "error", err)

	code, text := statusFor(kind)
	job.Error = jobModel.JobError{
		Code:    code,
		Message: text,
		Kind:    string(kind),
		Retry:   kind == errorModel.KindRateLimited || kind == errorModel.KindTransient,
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	return job
}

// statusFor maps a failure kind to the status code and message a client sees.
// Upstream details stay in the logs.
func statusFor(kind errorModel.Kind) (int, string) {
	switch kind {
	case errorModel.KindInvalidInput:
		return http.StatusBadRequest, "Invalid request"
	case errorModel.KindNotFound:
		return http.StatusNotFound, "Document not found"
	case errorModel.KindRateLimited:
		return http.StatusTooManyRequests, "Upstream provider is rate limiting, try again later"
	case errorModel.KindExtraction:
		return http.StatusUnprocessableEntity, "Document text could not be extracted"
	case errorModel.KindAuthentication:
		return http.StatusBadGateway, "Upstream provider rejected our credentials"
	case errorModel.KindTransient, errorModel.KindStoreUnavailable:
		return http.StatusServiceUnavailable, "Service temporarily unavailable"
	}
	return http.StatusInternalServerError, "Internal Server Error"
}
