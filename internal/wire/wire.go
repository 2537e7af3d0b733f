// Package wire provides dependency injection for strata.
// It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"log"
	"log/slog"
	"os"
	"sync"

	cliadapter "github.com/example/strata/internal/adapters/cli"
	"github.com/example/strata/internal/adapters/httpapi"
	"github.com/example/strata/internal/adapters/metrics"
	"github.com/example/strata/internal/adapters/sqlite"
	"github.com/example/strata/internal/app"
	"github.com/example/strata/internal/config"
	"github.com/example/strata/internal/core/consultation"
	"github.com/example/strata/internal/db"
	"github.com/example/strata/internal/logging"
	"github.com/example/strata/internal/ports/primary"
)

var (
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	recorder  *metrics.Recorder

	kpiService       primary.KPIService
	keyResultService primary.KeyResultService
	traceService     primary.TraceService
	causalMapService primary.CausalMapService
	workflowService  primary.WorkflowService

	once    sync.Once
	initErr error
)

// Init builds every service. It is safe to call more than once; later calls
// return the first result.
func Init() error {
	once.Do(initServices)
	return initErr
}

func mustInit() {
	if err := Init(); err != nil {
		log.Fatalf("failed to initialize strata: %v", err)
	}
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	cfg, initErr = config.Load()
	if initErr != nil {
		return
	}

	logger, logCloser, initErr = logging.New(cfg.Log)
	if initErr != nil {
		return
	}
	slog.SetDefault(logger)

	db.SetPath(cfg.DBPath)
	database, err := db.GetDB()
	if err != nil {
		initErr = err
		return
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	objectiveRepo := sqlite.NewObjectiveRepository(database)
	linkRepo := sqlite.NewCausalLinkRepository(database)
	kpiRepo := sqlite.NewKPIRepository(database)
	initiativeRepo := sqlite.NewInitiativeRepository(database)
	okrRepo := sqlite.NewOKRRepository(database)
	krRepo := sqlite.NewKeyResultRepository(database)
	taskRepo := sqlite.NewTaskRepository(database)
	workflowRepo := sqlite.NewWorkflowRepository(database)

	recorder = metrics.NewRecorder()

	executor := app.NewEffectExecutor(kpiRepo, krRepo, workflowRepo, logger)

	kpiService = app.NewKPIService(kpiRepo, executor, recorder, logger)
	keyResultService = app.NewKeyResultService(krRepo, kpiRepo, okrRepo, executor, recorder, logger)
	traceService = app.NewTraceService(app.TraceSources{
		Objectives:  objectiveRepo,
		Links:       linkRepo,
		KPIs:        kpiRepo,
		Initiatives: initiativeRepo,
		OKRs:        okrRepo,
		KeyResults:  krRepo,
		Tasks:       taskRepo,
	}, cfg.Links.BaseURL, recorder, logger)
	causalMapService = app.NewCausalMapService(objectiveRepo, linkRepo, recorder, logger)
	workflowService = app.NewWorkflowService(workflowRepo, executor,
		consultation.Options{ExcludeInformed: cfg.Workflow.InformedExcluded}, logger)

	logger.Debug("services initialized", "db", db.GetDBPath())
}

// Close releases the database connection and the log output.
func Close() error {
	err := db.Close()
	if logCloser != nil {
		if cerr := logCloser.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Config returns the resolved configuration.
func Config() *config.Config {
	mustInit()
	return cfg
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	mustInit()
	return logger
}

// KPIService returns the singleton KPIService instance.
func KPIService() primary.KPIService {
	mustInit()
	return kpiService
}

// KeyResultService returns the singleton KeyResultService instance.
func KeyResultService() primary.KeyResultService {
	mustInit()
	return keyResultService
}

// TraceService returns the singleton TraceService instance.
func TraceService() primary.TraceService {
	mustInit()
	return traceService
}

// CausalMapService returns the singleton CausalMapService instance.
func CausalMapService() primary.CausalMapService {
	mustInit()
	return causalMapService
}

// WorkflowService returns the singleton WorkflowService instance.
func WorkflowService() primary.WorkflowService {
	mustInit()
	return workflowService
}

// HTTPServer returns a reporting server over the singleton services.
func HTTPServer() *httpapi.Server {
	mustInit()
	return httpapi.NewServer(httpapi.Services{
		KPIs:       kpiService,
		KeyResults: keyResultService,
		Trace:      traceService,
		Workflows:  workflowService,
	}, recorder.Handler(), cfg.Trace.DisplayHops, logger)
}

// KPIAdapter returns a new KPIAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func KPIAdapter() *cliadapter.KPIAdapter {
	return KPIAdapterWithOutput(os.Stdout)
}

// KPIAdapterWithOutput returns a new KPIAdapter writing to the given output.
func KPIAdapterWithOutput(out io.Writer) *cliadapter.KPIAdapter {
	return cliadapter.NewKPIAdapter(KPIService(), out)
}

// KeyResultAdapter returns a new KeyResultAdapter writing to stdout.
func KeyResultAdapter() *cliadapter.KeyResultAdapter {
	return cliadapter.NewKeyResultAdapter(KeyResultService(), os.Stdout)
}

// TraceAdapter returns a new TraceAdapter writing to stdout.
func TraceAdapter() *cliadapter.TraceAdapter {
	return cliadapter.NewTraceAdapter(TraceService(), os.Stdout)
}

// MapAdapter returns a new MapAdapter writing to stdout.
func MapAdapter() *cliadapter.MapAdapter {
	return cliadapter.NewMapAdapter(CausalMapService(), os.Stdout)
}

// WorkflowAdapter returns a new WorkflowAdapter writing to stdout.
func WorkflowAdapter() *cliadapter.WorkflowAdapter {
	return cliadapter.NewWorkflowAdapter(WorkflowService(), os.Stdout)
}
