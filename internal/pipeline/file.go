package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caltechlibrary/distillery-sub000/internal/catalog"
	"github.com/caltechlibrary/distillery-sub000/internal/derivative"
	"github.com/caltechlibrary/distillery-sub000/internal/fileutil"
	"github.com/caltechlibrary/distillery-sub000/internal/identifier"
	"github.com/caltechlibrary/distillery-sub000/internal/logging"
	"github.com/caltechlibrary/distillery-sub000/internal/registrar"
	"github.com/caltechlibrary/distillery-sub000/internal/report"
	"github.com/caltechlibrary/distillery-sub000/internal/services"
	"github.com/caltechlibrary/distillery-sub000/internal/services/exiftool"
)

// folder bundles the per-folder inputs a file task needs.
type folder struct {
	id     string
	record *catalog.ArchivalObject
	prefix string
}

type verifyResult struct {
	artifact *derivative.Artifact
	err      error
}

// processFile runs one file task: convert and verify in the background while
// the control thread heartbeats, then upload, register, and clean up. Move
// and cleanup failures are logged but never undo the registration.
func (p *Pipeline) processFile(ctx context.Context, state *runState, f folder, task fileTask) error {
	ctx = services.WithImage(ctx, task.imageID)
	logger := logging.WithContext(ctx, p.logger)
	_ = state.stream.Record("CONVERTING image %s", task.imageID)

	request := derivative.Request{
		SourcePath: task.sourcePath,
		OutputPath: filepath.Join(p.workDir(state.collection), task.componentID+"-lossless.jp2"),
		ImageID:    task.imageID,
		Description: exiftool.Description{
			Title:      fmt.Sprintf("%s Image %s", f.record.DisplayString, task.sequence),
			Identifier: task.componentID,
			Source:     task.imageID,
			Publisher:  p.cfg.Ingest.Publisher,
			Rights:     p.cfg.Ingest.Rights,
		},
	}

	artifact, err := p.verifyWithHeartbeat(ctx, state, task, request)
	if err != nil {
		return services.Wrap(services.ErrFileScoped, "pipeline", "verify", task.imageID, err)
	}

	// The derivative stays in the work dir until registration succeeds, so a
	// skipped file leaves its verified artifact behind for inspection.
	key := identifier.FileKey(f.prefix, f.id, task.sequence, task.componentID)
	_ = state.stream.Record("UPLOADING image %s", task.imageID)
	uri, err := p.storage.Put(ctx, key, artifact.Path, artifact.Checksum)
	if err != nil {
		return services.Wrap(services.ErrFileScoped, "pipeline", "upload", task.imageID, err)
	}

	_ = state.stream.Record("REGISTERING image %s", task.imageID)
	if _, err := p.registrar.RegisterComponent(ctx, registrar.ComponentRequest{
		Folder:      f.record,
		ComponentID: task.componentID,
		Sequence:    task.sequence,
		ObjectURI:   uri,
		Artifact:    artifact,
	}); err != nil {
		// The uploaded object stays in place for operator cleanup; deleting
		// it could race another run that already references it.
		logger.Warn("uploaded object left unregistered", logging.String(logging.FieldKey, key))
		return services.Wrap(services.ErrFileScoped, "pipeline", "register", task.imageID, err)
	}

	p.recordOutcome(ctx, state, report.Outcome{
		RunID:       state.runID,
		Folder:      f.id,
		SourcePath:  task.sourcePath,
		ComponentID: task.componentID,
		StorageKey:  key,
		Status:      report.OutcomeSucceeded,
	})

	// Success path: the source moves into the completed mirror and the local
	// derivative goes away. Both are best effort; the catalog record stands.
	if err := p.moveToCompleted(state, task.sourcePath); err != nil {
		logger.Warn("MoveFailed", logging.String("source", task.sourcePath), logging.Error(err))
		_ = state.stream.Record("MOVE FAILED image %s: %v", task.imageID, err)
	}
	if err := os.Remove(artifact.Path); err != nil {
		logger.Warn("CleanupFailed", logging.String("artifact", artifact.Path), logging.Error(err))
		_ = state.stream.Record("CLEANUP FAILED image %s: %v", task.imageID, err)
	}

	_ = state.stream.Record("DONE image %s", task.imageID)
	logger.Info("file ingested", logging.String(logging.FieldKey, key))
	return nil
}

// verifyWithHeartbeat runs the verifier in a background goroutine while the
// control thread ticks a liveness line into the progress stream. There is no
// overlap of file tasks, only of work and liveness reporting.
func (p *Pipeline) verifyWithHeartbeat(ctx context.Context, state *runState, task fileTask, request derivative.Request) (*derivative.Artifact, error) {
	results := make(chan verifyResult, 1)
	go func() {
		artifact, err := p.verifier.Process(ctx, request)
		results <- verifyResult{artifact: artifact, err: err}
	}()

	ticker := time.NewTicker(p.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case result := <-results:
			return result.artifact, result.err
		case <-ticker.C:
			_ = state.stream.Record("WORKING image %s", task.imageID)
		}
	}
}

// moveToCompleted mirrors the source file's relative path under the
// completed tree.
func (p *Pipeline) moveToCompleted(state *runState, sourcePath string) error {
	rel, err := filepath.Rel(p.cfg.Paths.SourceDir, sourcePath)
	if err != nil {
		return fmt.Errorf("relativize %s: %w", sourcePath, err)
	}
	return fileutil.MoveFile(sourcePath, filepath.Join(p.cfg.Paths.CompletedDir, rel))
}
