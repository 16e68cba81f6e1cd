package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/DocAssist/internal/adapter/utils"
	"github.com/akolanti/DocAssist/internal/config"
	"github.com/akolanti/DocAssist/internal/handlers"
	"github.com/akolanti/DocAssist/internal/metrics"
	"github.com/akolanti/DocAssist/internal/ratelimit"
	"github.com/akolanti/DocAssist/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var (
	adminToken      string
	limiterInstance ratelimit.Limiter = ratelimit.New(config.RATE_LIMIT_PER_SECOND, config.BURST_RATE_LIMIT_PER_SECOND)
)

// Init sets the bearer token and the per-IP request rate. An empty token
// leaves the API open.
func Init(cfg config.ServerConfig) {
	adminToken = cfg.AdminToken
	if cfg.RateLimit > 0 {
		limiterInstance = ratelimit.New(cfg.RateLimit, cfg.RateBurst)
	}
	if adminToken == "" {
		logger_i.NewLogger("middleware").Warn("ADMIN_TOKEN is empty, requests are not authenticated")
	}
}

var GetHandler = Wrap(handlers.GetHandler)

var ChatHandler = Wrap(handlers.ChatHandler)
var GetStatusHandler = Wrap(handlers.GetStatusHandler)

var PostDocumentHandler = Wrap(handlers.PostDocumentHandler)
var ListDocumentsHandler = Wrap(handlers.ListDocumentsHandler)
var ReprocessDocumentHandler = Wrap(handlers.ReprocessDocumentHandler)
var DeleteDocumentHandler = Wrap(handlers.DeleteDocumentHandler)
var ResumeIngestionHandler = Wrap(handlers.ResumeIngestionHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if !re.badRequest.isBadRequest {
			next(rec, re.req)
		}

		metrics.HttpRequestsTotal.WithLabelValues(utils.RoutePattern(r), strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re = injectTrace(re)
	if !handleBadRequest(re) {
		return re
	}
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)

	re = rateLimiter(re)
	if !handleBadRequest(re) {
		return re //stop here if rate limit fails
	}
	re = authenticate(re)
	if !handleBadRequest(re) {
		return re //stop if auth fails
	}
	return re
}
