package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/akolanti/DocAssist/internal/adapter"
	"github.com/akolanti/DocAssist/internal/adapter/utils"
	"github.com/akolanti/DocAssist/internal/api"
	"github.com/akolanti/DocAssist/internal/domain/chatModel"
	"github.com/akolanti/DocAssist/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

// newJobData is what a handler hands to CreateNewJob.
type newJobData struct {
	id               string
	chatId           string
	message          string
	mode             chatModel.Mode
	tier             chatModel.Tier
	isNewChat        bool
	traceId          string
	isDocumentIngest bool
	documentId       string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ChatHandler godoc
// @Summary      Start a new chat job
// @Description  Accepts a message with an optional chat ID, assistant mode and model tier, queues a background answer job and returns its ID.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.ChatRequest      true  "Message, optional chat ID, mode (cees|chris) and tier (standard|advanced)"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data, mode, tier or chat ID"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request", "remoteAddr", request.RemoteAddr)
		return
	}
	log := logRH.FromContext(request.Context())

	var requestData api.ChatRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Error("Couldn't close the Chat handler reader", "err", err)
		}
	}(request.Body)

	err := json.NewDecoder(request.Body).Decode(&requestData)
	if err != nil {
		log.Warn("Bad Chat Request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, "Bad Request")
		return
	}
	mode, tier, ok := ValidateChatRequest(request.Context(), requestData)
	if !ok {
		log.Warn("Bad Chat Request", "chatId", requestData.ChatID, "mode", requestData.Mode, "tier", requestData.Tier)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, "Bad Request")
		return
	}

	chatID := requestData.ChatID
	if chatID == "" {
		chatID = utils.GetNewUUID()
		log.Debug("New Chat request", "chatID", chatID)
	}
	newJob := newJobData{
		id:        utils.GetNewUUID(),
		chatId:    chatID,
		message:   requestData.Message,
		mode:      mode,
		tier:      tier,
		isNewChat: requestData.ChatID == "",
		traceId:   logger_i.TraceID(request.Context()),
	}
	CreateNewJob(request.Context(), newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves a job by ID: an answer with its sources and context flags, or the outcome of a document ingestion.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	//use chi get the url id
	idString := utils.GetChiURLParam(r, "id")
	logRH.FromContext(r.Context()).Debug("Get Status Request", "URL path", r.URL.Path)

	result, isFound := validateId(r.Context(), idString)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}
