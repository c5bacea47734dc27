package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/caltechlibrary/distillery-sub000/internal/arrangement"
	"github.com/caltechlibrary/distillery-sub000/internal/catalog"
	"github.com/caltechlibrary/distillery-sub000/internal/config"
	"github.com/caltechlibrary/distillery-sub000/internal/derivative"
	"github.com/caltechlibrary/distillery-sub000/internal/fileutil"
	"github.com/caltechlibrary/distillery-sub000/internal/logging"
	"github.com/caltechlibrary/distillery-sub000/internal/notifications"
	"github.com/caltechlibrary/distillery-sub000/internal/progress"
	"github.com/caltechlibrary/distillery-sub000/internal/registrar"
	"github.com/caltechlibrary/distillery-sub000/internal/report"
	"github.com/caltechlibrary/distillery-sub000/internal/services"
)

// Catalog is the slice of catalog operations the orchestrator itself needs.
type Catalog interface {
	Ping(ctx context.Context) error
	GetRepository(ctx context.Context) (*catalog.Repository, error)
	FindResource(ctx context.Context, collectionID string) (*catalog.Resource, error)
	FindFolderRecord(ctx context.Context, componentID string) (*catalog.ArchivalObject, error)
	arrangement.CatalogReader
}

// Storage is the object-store surface the orchestrator needs.
type Storage interface {
	CheckBucket(ctx context.Context) error
	Put(ctx context.Context, key, path string, checksum []byte) (string, error)
}

// Verifier converts one source image and enforces pixel-signature equality.
type Verifier interface {
	Process(ctx context.Context, req derivative.Request) (*derivative.Artifact, error)
}

// Registrar owns digital-object maintenance and component registration.
type Registrar interface {
	EnsureDigitalObject(ctx context.Context, folder *catalog.ArchivalObject) (*catalog.ArchivalObject, error)
	EnsureDigitalObjectIdentifier(ctx context.Context, folder *catalog.ArchivalObject) (*catalog.ArchivalObject, error)
	RegisterComponent(ctx context.Context, req registrar.ComponentRequest) (string, error)
}

// Pipeline sequences a collection run: setup checks, folder traversal, and
// the per-file convert/verify/upload/register state machine with its
// skip-and-continue failure policy.
type Pipeline struct {
	cfg       *config.Config
	catalog   Catalog
	storage   Storage
	verifier  Verifier
	registrar Registrar
	store     *report.Store
	notifier  notifications.Service
	logger    *slog.Logger
	heartbeat time.Duration
}

// Result summarizes a finished run.
type Result struct {
	RunID            string
	Collection       string
	FoldersProcessed int
	FoldersSkipped   int
	FilesProcessed   int
	FilesSkipped     int
}

// New constructs a pipeline. The report store is optional; a nil notifier
// degrades to a no-op.
func New(cfg *config.Config, cat Catalog, store Storage, verifier Verifier, reg Registrar, reports *report.Store, notifier notifications.Service, logger *slog.Logger) *Pipeline {
	if notifier == nil {
		notifier = notifications.NewNoop()
	}
	heartbeat := time.Duration(cfg.Workflow.HeartbeatInterval) * time.Second
	if heartbeat <= 0 {
		heartbeat = time.Second
	}
	return &Pipeline{
		cfg:       cfg,
		catalog:   cat,
		storage:   store,
		verifier:  verifier,
		registrar: reg,
		store:     reports,
		notifier:  notifier,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
		heartbeat: heartbeat,
	}
}

// runState carries everything shared across one collection run.
type runState struct {
	runID      string
	collection string
	sourceRoot string
	resolver   *arrangement.Resolver
	stream     *progress.Stream
	result     *Result
	logger     *slog.Logger
	started    time.Time
}

// Run ingests one collection. Setup failures abort the run with a run-scoped
// error; folder and file failures are skipped and counted in the result.
func (p *Pipeline) Run(ctx context.Context, collection string) (*Result, error) {
	ctx = services.WithCollection(ctx, collection)
	state := &runState{
		collection: collection,
		sourceRoot: filepath.Join(p.cfg.Paths.SourceDir, collection),
		result:     &Result{Collection: collection},
		started:    time.Now(),
	}

	if err := p.setup(ctx, state); err != nil {
		p.abort(ctx, state, err)
		return nil, err
	}
	defer state.stream.Close()
	ctx = services.WithRunID(ctx, state.runID)
	state.logger = logging.WithContext(ctx, p.logger)

	folders, err := p.enumerateFolders(state)
	if err != nil {
		p.abort(ctx, state, err)
		return nil, err
	}
	_ = state.stream.Record("STARTED collection %s: %d folders", collection, len(folders))
	_ = p.notifier.NotifyRunStarted(ctx, collection, len(folders))
	state.logger.Info("run started", logging.Int("folders", len(folders)))

	// Folders are reverse sorted and popped from the end so execution order
	// is ascending; component creation order then matches page sequence.
	for len(folders) > 0 {
		name := folders[len(folders)-1]
		folders = folders[:len(folders)-1]
		if err := p.processFolder(ctx, state, name); err != nil {
			if services.ScopeOf(err) == services.ScopeRun {
				p.abort(ctx, state, err)
				return nil, err
			}
			state.result.FoldersSkipped++
			state.logger.Warn("folder skipped",
				logging.String(logging.FieldFolder, name),
				logging.Error(err),
			)
			_ = state.stream.Record("SKIPPED folder %s: %v", name, err)
			continue
		}
		state.result.FoldersProcessed++
	}

	p.finish(ctx, state)
	return state.result, nil
}

func (p *Pipeline) setup(ctx context.Context, state *runState) error {
	info, err := os.Stat(state.sourceRoot)
	if err != nil || !info.IsDir() {
		return services.Wrap(services.ErrRunScoped, "pipeline", "setup",
			fmt.Sprintf("source directory %s missing", state.sourceRoot), err)
	}
	if err := p.cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrRunScoped, "pipeline", "setup", "prepare directories", err)
	}
	if err := fileutil.EnsureWritableDir(filepath.Join(p.cfg.Paths.CompletedDir, state.collection)); err != nil {
		return services.Wrap(services.ErrRunScoped, "pipeline", "setup", "completed directory", err)
	}
	if err := fileutil.EnsureWritableDir(p.workDir(state.collection)); err != nil {
		return services.Wrap(services.ErrRunScoped, "pipeline", "setup", "work directory", err)
	}
	if err := p.catalog.Ping(ctx); err != nil {
		return services.Wrap(services.ErrRunScoped, "pipeline", "setup", "catalog unreachable", err)
	}
	if err := p.storage.CheckBucket(ctx); err != nil {
		return services.Wrap(services.ErrRunScoped, "pipeline", "setup", "storage unreachable", err)
	}

	repo, err := p.catalog.GetRepository(ctx)
	if err != nil {
		return services.Wrap(services.ErrRunScoped, "pipeline", "setup", "fetch repository", err)
	}
	if _, err := p.catalog.FindResource(ctx, state.collection); err != nil {
		return services.Wrap(services.ErrRunScoped, "pipeline", "setup",
			fmt.Sprintf("collection %s not in catalog", state.collection), err)
	}
	state.resolver = arrangement.NewResolver(p.catalog, repo)

	if p.store != nil {
		run, err := p.store.StartRun(ctx, state.collection)
		if err != nil {
			return services.Wrap(services.ErrRunScoped, "pipeline", "setup", "record run", err)
		}
		state.runID = run.ID
	} else {
		state.runID = uuid.NewString()
	}

	stream, err := progress.Open(p.cfg.Paths.LogDir, state.collection, state.runID)
	if err != nil {
		return services.Wrap(services.ErrRunScoped, "pipeline", "setup", "open progress stream", err)
	}
	state.stream = stream
	return nil
}

// enumerateFolders lists one level of subdirectories under the collection
// root, reverse sorted.
func (p *Pipeline) enumerateFolders(state *runState) ([]string, error) {
	entries, err := os.ReadDir(state.sourceRoot)
	if err != nil {
		return nil, services.Wrap(services.ErrRunScoped, "pipeline", "enumerate", "read source directory", err)
	}
	var folders []string
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(folders)))
	return folders, nil
}

func (p *Pipeline) abort(ctx context.Context, state *runState, cause error) {
	p.logger.Error("run aborted",
		logging.String(logging.FieldCollection, state.collection),
		logging.Error(cause),
	)
	if state.stream != nil {
		_ = state.stream.Abort(cause.Error())
	}
	if p.store != nil && state.runID != "" {
		_ = p.store.FinishRun(ctx, state.runID, report.RunStatusAborted, report.Totals{
			FoldersProcessed: state.result.FoldersProcessed,
			FoldersSkipped:   state.result.FoldersSkipped,
			FilesProcessed:   state.result.FilesProcessed,
			FilesSkipped:     state.result.FilesSkipped,
		})
	}
	_ = p.notifier.NotifyRunAborted(ctx, state.collection, cause.Error())
}

func (p *Pipeline) finish(ctx context.Context, state *runState) {
	result := state.result
	result.RunID = state.runID
	if err := state.stream.Finish(state.collection); err != nil {
		state.logger.Warn("progress stream finish failed", logging.Error(err))
	}
	if p.store != nil {
		if err := p.store.FinishRun(ctx, state.runID, report.RunStatusCompleted, report.Totals{
			FoldersProcessed: result.FoldersProcessed,
			FoldersSkipped:   result.FoldersSkipped,
			FilesProcessed:   result.FilesProcessed,
			FilesSkipped:     result.FilesSkipped,
		}); err != nil {
			state.logger.Warn("record run completion failed", logging.Error(err))
		}
	}
	elapsed := time.Since(state.started)
	_ = p.notifier.NotifyRunCompleted(ctx, state.collection,
		result.FilesProcessed, result.FilesSkipped, elapsed)
	state.logger.Info("run complete",
		logging.Int("folders_processed", result.FoldersProcessed),
		logging.Int("folders_skipped", result.FoldersSkipped),
		logging.Int("files_processed", result.FilesProcessed),
		logging.Int("files_skipped", result.FilesSkipped),
		logging.Duration("elapsed", elapsed),
	)
}

func (p *Pipeline) workDir(collection string) string {
	return filepath.Join(p.cfg.Paths.WorkDir, collection)
}
