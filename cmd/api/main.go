// @title           DocAssist API
// @version         1.0
// @description     Asynchronous chat over internal documents, plus document upload and ingestion.
// @termsOfService  http://swagger.io/terms/

// @contact.name    DocAssist maintainers
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/DocAssist/cmd/api/docs"
	"github.com/akolanti/DocAssist/internal/app"
	"github.com/akolanti/DocAssist/internal/config"
	"github.com/akolanti/DocAssist/internal/data/store"
	jobmodel "github.com/akolanti/DocAssist/internal/domain/jobModel"
	"github.com/akolanti/DocAssist/internal/handlers"
	"github.com/akolanti/DocAssist/internal/job"
	"github.com/akolanti/DocAssist/internal/middleware"
	"github.com/akolanti/DocAssist/internal/rag"
	"github.com/akolanti/DocAssist/internal/server"
	"github.com/akolanti/DocAssist/internal/worker"
	"github.com/akolanti/DocAssist/pkg/logger_i"
)

var (
	envFile           string
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	flag.StringVar(&envFile, "env", ".env", "path to an optional .env file")
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address, overrides LISTEN_ADDR")
	flag.Parse()

	cfg, err := config.Load(envFile)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		logger_i.Init(false, "")
		logger_i.NewLogger("main").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		cfg.Server.ListenAddr = listenAddr
	}

	logger_i.Init(cfg.IsProd, cfg.LogLevel)
	var logger = logger_i.NewLogger("main")

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	pipeline, err := app.Build(serviceContext, cfg, app.Options{})
	if err != nil {
		logger.Error("External services failed to initialize. Shutting down.", "error", err)
		return
	}

	//init job service and job store
	jobStore, messageStore, ok := store.Open(serviceContext, cfg.Redis)
	if !ok {
		logger.Error("Redis stores are offline and fallback is disabled. Shutting down.")
		pipeline.Close()
		return
	}
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          jobStore,
		MessageStore:      messageStore,
		Documents:         pipeline.Documents,
		Objects:           pipeline.Objects,
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	ragService := rag.NewService(pipeline.Composer, pipeline.Orchestrator)

	handlers.InitJobHandler(service, cfg.Storage.MaxUploadSize)
	middleware.Init(cfg.Server)
	if cfg.Server.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.Server.SwaggerHost
	}

	//init worker pool
	worker.InitServices(service, ragService)
	worker.SetPoolSize(cfg.Workers.Min, cfg.Workers.Max)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices: func() {
			closeExternalServices()
			pipeline.Close()
		},
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(cfg.Server.ListenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
