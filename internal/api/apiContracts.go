package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id" example:"chat_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type SourceResponse struct {
	DocumentId string  `json:"document_id" example:"3f6c1f0e-5a43-4b8e-9d0f-0f3c2a1e9b11"`
	FileName   string  `json:"filename" example:"pump-manual.pdf"`
	Category   string  `json:"category,omitempty" example:"manuals"`
	ChunkIndex int     `json:"chunk_index" example:"4"`
	Score      float64 `json:"score" example:"0.87"`
}

type RAGResponse struct {
	Question        string           `json:"question"`
	Mode            string           `json:"mode,omitempty" example:"cees"`
	Tier            string           `json:"tier,omitempty" example:"standard"`
	Answer          string           `json:"answer"`
	Sources         []SourceResponse `json:"sources"`
	ContextFound    bool             `json:"context_found"`
	RetrievalFailed bool             `json:"retrieval_failed"`
}

type IngestResponse struct {
	DocumentId     string `json:"document_id"`
	DocumentStatus string `json:"document_status,omitempty" example:"PROCESSED"`
	ChunkCount     int    `json:"chunk_count"`
}

type Result struct {
	Status              string          `json:"status"`
	RAGExternalResponse *RAGResponse    `json:"rag_response,omitempty"`
	Ingestion           *IngestResponse `json:"ingestion,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type DocumentResponse struct {
	Id          string     `json:"id"`
	FileName    string     `json:"filename" example:"pump-manual.pdf"`
	Size        int64      `json:"size"`
	ContentType string     `json:"content_type" example:"application/pdf"`
	Department  string     `json:"department,omitempty"`
	Category    string     `json:"category,omitempty"`
	Subject     string     `json:"subject,omitempty"`
	Status      string     `json:"status" example:"PENDING"`
	Processed   bool       `json:"processed"`
	ChunkCount  int        `json:"chunk_count"`
	LastError   *string    `json:"last_error,omitempty"`
	UploadedAt  time.Time  `json:"uploaded_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// UploadResponse is returned when a document is stored and its ingest job queued.
type UploadResponse struct {
	Document DocumentResponse `json:"document"`
	Job      InitJobResponse  `json:"job"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Count     int                `json:"count"`
}

type IngestionStateResponse struct {
	Paused bool `json:"paused"`
}

// requests---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required" `
	ChatID  string `json:"chatID,omitempty" `
	Mode    string `json:"mode,omitempty" example:"cees" enums:"cees,chris"`
	Tier    string `json:"tier,omitempty" example:"standard" enums:"standard,advanced"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}
