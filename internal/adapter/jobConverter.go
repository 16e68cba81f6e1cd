package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/DocAssist/internal/api"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id), //pass "status/job.Id"
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{Status: string(job.Status)}
	if job.JobType == jobModel.JobTypeIngest {
		result.Ingestion = ToIngestResponse(job.JobPayload)
	} else {
		result.RAGExternalResponse = ToRAGExternalStatus(job.JobPayload)
	}

	return api.JobResponse{
		Id:        job.Id,
		ChatId:    job.ChatId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToRAGExternalStatus(ragData jobModel.JobPayload) *api.RAGResponse {
	if ragData.Answer == "" && len(ragData.Sources) == 0 {
		return nil
	}

	sources := make([]api.SourceResponse, 0, len(ragData.Sources))
	for _, s := range ragData.Sources {
		sources = append(sources, api.SourceResponse{
			DocumentId: s.DocumentId,
			FileName:   s.FileName,
			Category:   s.Category,
			ChunkIndex: s.ChunkIndex,
			Score:      s.Similarity,
		})
	}
	return &api.RAGResponse{
		Question:        ragData.Question,
		Mode:            string(ragData.Mode),
		Tier:            string(ragData.Tier),
		Answer:          ragData.Answer,
		Sources:         sources,
		ContextFound:    ragData.ContextFound,
		RetrievalFailed: ragData.RetrievalFailed,
	}
}

func ToIngestResponse(payload jobModel.JobPayload) *api.IngestResponse {
	if payload.DocumentId == "" {
		return nil
	}
	return &api.IngestResponse{
		DocumentId:     payload.DocumentId,
		DocumentStatus: payload.DocumentStatus,
		ChunkCount:     payload.ChunkCount,
	}
}

func ToDocumentResponse(doc commonModels.Document) api.DocumentResponse {
	return api.DocumentResponse{
		Id:          doc.Id,
		FileName:    doc.FileName,
		Size:        doc.Size,
		ContentType: doc.ContentType,
		Department:  doc.Department,
		Category:    doc.Category,
		Subject:     doc.Subject,
		Status:      string(doc.Status),
		Processed:   doc.Processed(),
		ChunkCount:  doc.ChunkCount,
		LastError:   doc.LastError,
		UploadedAt:  doc.UploadedAt,
		ProcessedAt: doc.ProcessedAt,
	}
}

func ToDocumentListResponse(docs []commonModels.Document) api.DocumentListResponse {
	out := make([]api.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, ToDocumentResponse(d))
	}
	return api.DocumentListResponse{Documents: out, Count: len(out)}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		ChatId:    "",
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
