package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akolanti/DocAssist/internal/adapter"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/internal/domain/jobModel"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "err", err)
	}
}

func validateId(ctx context.Context, id string) (result jobModel.Job, isFound bool) {
	if id == "" {
		logRH.FromContext(ctx).Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return GetJobStatus(ctx, id)
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.FromContext(ctx).Warn("context error", "err", ctx.Err())
		return false
	}
	return true
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

// writeStoreError answers with the status that matches a repository failure.
func writeStoreError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, errorModel.ErrNotFound):
		WriteErrorResponse(w, http.StatusNotFound, id, "Document not found")
	case errors.Is(err, errorModel.ErrAlreadyProcessing):
		WriteErrorResponse(w, http.StatusConflict, id, "Document is already processing")
	case errors.Is(err, errorModel.ErrInvalidInput):
		WriteErrorResponse(w, http.StatusBadRequest, id, "Bad Request")
	default:
		WriteErrorResponse(w, http.StatusServiceUnavailable, id, "Storage unavailable")
	}
}
