package job

import (
	"sync/atomic"

	"github.com/akolanti/DocAssist/internal/data/documentStore"
	"github.com/akolanti/DocAssist/internal/data/objectStore"
	"github.com/akolanti/DocAssist/internal/domain/jobModel"
	"github.com/akolanti/DocAssist/internal/metrics"
)

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	MessageStore      jobModel.MessageStore
	Documents         documentStore.Repository
	Objects           objectStore.Store

	ingestionPaused atomic.Bool
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	MessageStore      jobModel.MessageStore
	Documents         documentStore.Repository
	Objects           objectStore.Store
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		MessageStore:      cfg.MessageStore,
		Documents:         cfg.Documents,
		Objects:           cfg.Objects,
	}
}

// PauseIngestion stops ingest jobs from running until ResumeIngestion is
// called. It reports whether this call changed the state.
func (s *Service) PauseIngestion() bool {
	changed := s.ingestionPaused.CompareAndSwap(false, true)
	metrics.SetIngestionPaused(true)
	return changed
}

func (s *Service) ResumeIngestion() bool {
	changed := s.ingestionPaused.CompareAndSwap(true, false)
	metrics.SetIngestionPaused(false)
	return changed
}

func (s *Service) IngestionPaused() bool {
	return s.ingestionPaused.Load()
}
