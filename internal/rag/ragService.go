package rag

import (
	"context"
	"errors"

	"github.com/akolanti/DocAssist/internal/domain/chatModel"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/internal/domain/jobModel"
	"github.com/akolanti/DocAssist/pkg/logger_i"
)

/*
The worker only talks to Service. The private service holds the answer
composer and the ingestion orchestrator so tests can swap either for a mock
without the worker noticing.
*/

// Service Worker will only call this service - it doesn't need to know the llm or the stores
type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

// Answerer is satisfied by *answer.Composer.
type Answerer interface {
	Answer(ctx context.Context, q chatModel.Question) (chatModel.Answer, error)
}

// Ingestor is satisfied by *ingest.Orchestrator.
type Ingestor interface {
	Process(ctx context.Context, documentID string) (commonModels.Document, error)
}

type service struct {
	composer Answerer
	ingestor Ingestor
	logger   *logger_i.Logger
}

func NewService(composer Answerer, ingestor Ingestor) Service {
	return &service{
		composer: composer,
		ingestor: ingestor,
		logger:   logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) ProcessRequest(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job {
	log := s.logger.FromContext(ctx).With("jobId", job.Id)
	job.CurrentStep = jobModel.RAGCall

	ans, err := s.composer.Answer(ctx, chatModel.Question{
		Text:    job.JobPayload.Question,
		Mode:    job.JobPayload.Mode,
		Tier:    job.JobPayload.Tier,
		Caller:  job.JobPayload.Caller,
		History: messageHistory,
	})
	if err != nil {
		return jobError(log, job, err, "ANSWER_FAILURE")
	}
	return returnOutput(job, ans)
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.logger.FromContext(ctx).With("jobId", job.Id, "documentId", job.JobPayload.DocumentId)
	job.CurrentStep = jobModel.IngestProcessing

	doc, err := s.ingestor.Process(ctx, job.JobPayload.DocumentId)
	if errors.Is(err, errorModel.ErrAlreadyProcessing) {
		// another run owns the document; this request changes nothing
		log.Info("document already processing, ingest job skipped")
		job.JobPayload.DocumentStatus = string(commonModels.StatusProcessing)
		job.CurrentStep = jobModel.Complete
		return job
	}
	if doc.Id != "" {
		job.JobPayload.DocumentStatus = string(doc.Status)
		job.JobPayload.ChunkCount = doc.ChunkCount
	}
	if err != nil {
		return jobError(log, job, err, "INGESTION_FAILURE")
	}
	job.CurrentStep = jobModel.Complete
	return job
}
