package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/akolanti/DocAssist/internal/adapter"
	"github.com/akolanti/DocAssist/internal/adapter/utils"
	"github.com/akolanti/DocAssist/internal/api"
	"github.com/akolanti/DocAssist/internal/data/objectStore"
	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/pkg/logger_i"
)

// PostDocumentHandler godoc
// @Summary      Upload a document for ingestion
// @Description  Stores the file, records it as PENDING and queues an ingestion job. Images are accepted but fail extraction.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file        formData  file    true   "PDF, DOCX, ODT, RTF, TXT or MD file"
// @Param        department  formData  string  false  "Owning department"
// @Param        category    formData  string  false  "Document category"
// @Param        subject     formData  string  false  "Subject line"
// @Success      202  {object}  api.UploadResponse  "Stored and queued"
// @Failure      400  {object}  api.JobResponse     "Missing file or file too large"
// @Failure      415  {object}  api.JobResponse     "Unsupported file type"
// @Failure      503  {object}  api.JobResponse     "Storage unavailable"
// @Router       /documents [post]
func PostDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	ctx := r.Context()
	log := logRH.FromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, handlerInstance.maxUploadSize)
	if err := r.ParseMultipartForm(handlerInstance.maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("file")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	fileName := fileMetadata.Filename
	contentType := fileMetadata.Header.Get("Content-Type")
	if commonModels.DetectDocType(contentType, fileName) == commonModels.ERR {
		WriteErrorResponse(w, http.StatusUnsupportedMediaType, fileName, "Unsupported file type")
		return
	}
	if commonModels.DetectDocType(contentType, "") == commonModels.ERR {
		contentType = commonModels.ContentTypeFor(fileName)
	}

	data, err := io.ReadAll(fileReader)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, fileName, "Could not read file")
		return
	}

	key := objectStore.SafeName(fileName)
	if err := handlerInstance.service.Objects.Put(ctx, key, data, contentType); err != nil {
		log.Error("Failed to store upload", "file", fileName, "err", err)
		WriteErrorResponse(w, http.StatusServiceUnavailable, fileName, "Storage error")
		return
	}

	doc, err := handlerInstance.service.Documents.Create(ctx, commonModels.Document{
		FileName:    fileName,
		SafeName:    key,
		Size:        int64(len(data)),
		ContentType: contentType,
		StoragePath: key,
		Department:  strings.TrimSpace(r.FormValue("department")),
		Category:    strings.TrimSpace(r.FormValue("category")),
		Subject:     strings.TrimSpace(r.FormValue("subject")),
		UploadedBy:  uploader(r),
		Status:      commonModels.StatusPending,
	})
	if err != nil {
		log.Error("Failed to record document", "file", fileName, "err", err)
		if delErr := handlerInstance.service.Objects.Delete(ctx, key); delErr != nil {
			log.Warn("Orphaned upload left in storage", "key", key, "err", delErr)
		}
		writeStoreError(w, fileName, err)
		return
	}
	log.Info("Document uploaded", "documentId", doc.Id, "file", fileName, "size", doc.Size)

	jobID := queueIngestJob(r, doc.Id)
	writeJsonResponse(w, http.StatusAccepted, api.UploadResponse{
		Document: adapter.ToDocumentResponse(doc),
		Job:      adapter.ToInitJobResponse(jobID),
	})
}

// ListDocumentsHandler godoc
// @Summary      List documents
// @Description  Lists documents, optionally filtered by processing status.
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "PENDING, PROCESSING, PROCESSED or FAILED"
// @Success      200     {object}  api.DocumentListResponse
// @Failure      400     {object}  api.JobResponse  "Unknown status"
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var filter *commonModels.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := commonModels.Status(strings.ToUpper(raw))
		if !status.Valid() {
			WriteErrorResponse(w, http.StatusBadRequest, raw, "Unknown status")
			return
		}
		filter = &status
	}

	docs, err := handlerInstance.service.Documents.List(r.Context(), filter)
	if err != nil {
		logRH.FromContext(r.Context()).Error("Failed to list documents", "err", err)
		writeStoreError(w, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(docs))
}

// ReprocessDocumentHandler godoc
// @Summary      Reprocess a document
// @Description  Queues a new ingestion run that replaces the document's chunks. Rejected while a run is in progress.
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      202  {object}  api.InitJobResponse
// @Failure      404  {object}  api.JobResponse  "Document not found"
// @Failure      409  {object}  api.JobResponse  "Document is already processing"
// @Router       /documents/{id}/reprocess [post]
func ReprocessDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	doc, err := handlerInstance.service.Documents.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, id, err)
		return
	}
	// the worker's compare-and-swap is what actually guards the document;
	// this only spares the caller a job that would be a no-op
	if doc.Status == commonModels.StatusProcessing {
		WriteErrorResponse(w, http.StatusConflict, id, "Document is already processing")
		return
	}
	jobID := queueIngestJob(r, id)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(jobID))
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Deletes the document, its chunks and its stored file.
// @Tags         Documents
// @Security     BearerAuth
// @Param        id   path  string  true  "Document ID"
// @Success      204
// @Failure      404  {object}  api.JobResponse  "Document not found"
// @Failure      409  {object}  api.JobResponse  "Document is processing"
// @Router       /documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	ctx := r.Context()
	log := logRH.FromContext(ctx)
	id := utils.GetChiURLParam(r, "id")

	doc, err := handlerInstance.service.Documents.Get(ctx, id)
	if err != nil {
		writeStoreError(w, id, err)
		return
	}
	if doc.Status == commonModels.StatusProcessing {
		WriteErrorResponse(w, http.StatusConflict, id, "Document is processing, try again when it finishes")
		return
	}
	if err := handlerInstance.service.Documents.Delete(ctx, id); err != nil {
		writeStoreError(w, id, err)
		return
	}
	if err := handlerInstance.service.Objects.Delete(ctx, doc.StoragePath); err != nil {
		log.Warn("Document deleted but its file could not be removed", "documentId", id, "key", doc.StoragePath, "err", err)
	}
	log.Info("Document deleted", "documentId", id, "file", doc.FileName)
	w.WriteHeader(http.StatusNoContent)
}

// ResumeIngestionHandler godoc
// @Summary      Resume ingestion
// @Description  Resumes ingestion after it was paused by an upstream authentication failure. Jobs refused while paused must be resubmitted.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  api.IngestionStateResponse
// @Router       /admin/ingestion/resume [post]
func ResumeIngestionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	if handlerInstance.service.ResumeIngestion() {
		logRH.FromContext(r.Context()).Info("Ingestion resumed by operator")
	}
	writeJsonResponse(w, http.StatusOK, api.IngestionStateResponse{Paused: handlerInstance.service.IngestionPaused()})
}

func queueIngestJob(r *http.Request, documentID string) string {
	newJob := newJobData{
		id:               utils.GetNewUUID(),
		traceId:          logger_i.TraceID(r.Context()),
		isDocumentIngest: true,
		documentId:       documentID,
	}
	CreateNewJob(r.Context(), newJob)
	return newJob.id
}

func uploader(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Uploaded-By"))
}
