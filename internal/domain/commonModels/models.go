package commonModels

import (
	"path/filepath"
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusProcessed  Status = "PROCESSED"
	StatusFailed     Status = "FAILED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusProcessed, StatusFailed:
		return true
	}
	return false
}

type Document struct {
	Id          string     `json:"id"`
	FileName    string     `json:"filename"`
	SafeName    string     `json:"safe_filename"`
	Size        int64      `json:"size"`
	ContentType string     `json:"content_type"`
	StoragePath string     `json:"storage_path"`
	Department  string     `json:"department,omitempty"`
	Category    string     `json:"category,omitempty"`
	Subject     string     `json:"subject,omitempty"`
	UploadedBy  string     `json:"uploaded_by,omitempty"`
	UploadedAt  time.Time  `json:"uploaded_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Status      Status     `json:"status"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	ChunkCount  int        `json:"chunk_count"`
	LastError   *string    `json:"last_error,omitempty"`
}

// Processed mirrors the boolean flag of the document table.
func (d Document) Processed() bool {
	return d.Status == StatusProcessed
}

type Chunk struct {
	Id         string    `json:"id"`
	DocumentId string    `json:"document_id"`
	Index      int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
	// Start and End are rune offsets into the document's normalized text, End exclusive.
	Start     int       `json:"start"`
	End       int       `json:"end"`
	CreatedAt time.Time `json:"created_at"`
}

// RetrievalResult is a matched chunk with its score and the parent document
// fields needed for citation.
type RetrievalResult struct {
	Chunk      Chunk   `json:"chunk"`
	Similarity float64 `json:"similarity"`
	FileName   string  `json:"filename"`
	Category   string  `json:"category,omitempty"`
	Department string  `json:"department,omitempty"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var ODT DocType = "ODT"
var RTF DocType = "RTF"
var TXT DocType = "TXT"
var MD DocType = "MD"
var IMAGE DocType = "IMAGE"
var ERR DocType = "ERROR"

var contentTypes = map[string]DocType{
	"application/pdf": PDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": DOCX,
	"application/vnd.oasis.opendocument.text":                                 ODT,
	"application/rtf":                                                         RTF,
	"text/rtf":                                                                RTF,
	"text/plain":                                                              TXT,
	"text/markdown":                                                           MD,
	"image/png":                                                               IMAGE,
	"image/jpeg":                                                              IMAGE,
	"image/tiff":                                                              IMAGE,
}

var extensions = map[string]DocType{
	".pdf":  PDF,
	".docx": DOCX,
	".odt":  ODT,
	".rtf":  RTF,
	".txt":  TXT,
	".md":   MD,
	".png":  IMAGE,
	".jpg":  IMAGE,
	".jpeg": IMAGE,
	".tiff": IMAGE,
}

// DetectDocType resolves the declared content type first and falls back to the
// file extension.
func DetectDocType(contentType, fileName string) DocType {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if t, ok := contentTypes[ct]; ok {
		return t
	}
	if t, ok := extensions[strings.ToLower(filepath.Ext(fileName))]; ok {
		return t
	}
	return ERR
}

// ContentTypeFor is the declared content type to store for a file name.
func ContentTypeFor(fileName string) string {
	switch extensions[strings.ToLower(filepath.Ext(fileName))] {
	case PDF:
		return "application/pdf"
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ODT:
		return "application/vnd.oasis.opendocument.text"
	case RTF:
		return "application/rtf"
	case MD:
		return "text/markdown"
	case TXT:
		return "text/plain"
	case IMAGE:
		return "image/" + strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	}
	return "application/octet-stream"
}

// Ingestible reports whether a file with this name would be picked up by bulk ingest.
func Ingestible(fileName string) bool {
	t, ok := extensions[strings.ToLower(filepath.Ext(fileName))]
	return ok && t != IMAGE
}
