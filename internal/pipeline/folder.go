package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/caltechlibrary/distillery-sub000/internal/identifier"
	"github.com/caltechlibrary/distillery-sub000/internal/logging"
	"github.com/caltechlibrary/distillery-sub000/internal/report"
	"github.com/caltechlibrary/distillery-sub000/internal/services"
)

// processFolder resolves one folder's metadata and runs its file tasks. Any
// metadata error skips the folder; file errors are absorbed per file unless
// classified wider.
func (p *Pipeline) processFolder(ctx context.Context, state *runState, dirName string) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrRunScoped, "pipeline", "canceled", dirName, err)
	}
	folderID, err := identifier.NormalizeFolderComponentID(dirName, state.collection, p.cfg.Ingest.CollapsePrefixes)
	if err != nil {
		return services.Wrap(services.ErrFolderScoped, "pipeline", "normalize", dirName, err)
	}
	ctx = services.WithFolder(ctx, folderID)
	logger := logging.WithContext(ctx, p.logger)
	_ = state.stream.Record("RESOLVING folder %s", folderID)

	record, err := p.catalog.FindFolderRecord(ctx, folderID)
	if err != nil {
		return services.Wrap(services.ErrFolderScoped, "pipeline", "find folder record", folderID, err)
	}
	arr, err := state.resolver.Resolve(ctx, record)
	if err != nil {
		return services.Wrap(services.ErrFolderScoped, "pipeline", "resolve arrangement", folderID, err)
	}

	record, err = p.registrar.EnsureDigitalObject(ctx, record)
	if err != nil {
		return services.Wrap(services.ErrFolderScoped, "pipeline", "ensure digital object", folderID, err)
	}
	record, err = p.registrar.EnsureDigitalObjectIdentifier(ctx, record)
	if err != nil {
		return services.Wrap(services.ErrFolderScoped, "pipeline", "ensure digital object identifier", folderID, err)
	}
	_ = state.stream.Record("REGISTERED folder %s metadata", folderID)

	prefix := identifier.StorageKeyPrefix(arr.Hierarchy())
	files, err := p.enumerateFiles(filepath.Join(state.sourceRoot, dirName))
	if err != nil {
		return services.Wrap(services.ErrFolderScoped, "pipeline", "enumerate files", folderID, err)
	}
	logger.Info("folder resolved", logging.Int("files", len(files)))

	for len(files) > 0 {
		sourcePath := files[len(files)-1]
		files = files[:len(files)-1]

		task := newFileTask(sourcePath, folderID)
		err := p.processFile(ctx, state, folder{
			id:     folderID,
			record: record,
			prefix: prefix,
		}, task)
		if err != nil {
			if services.ScopeOf(err) != services.ScopeFile {
				return err
			}
			state.result.FilesSkipped++
			logger.Warn("file skipped",
				logging.String(logging.FieldImage, task.imageID),
				logging.String("source", sourcePath),
				logging.Error(err),
			)
			_ = state.stream.Record("SKIPPED image %s: %v", task.imageID, err)
			p.recordOutcome(ctx, state, report.Outcome{
				RunID:      state.runID,
				Folder:     folderID,
				SourcePath: sourcePath,
				Status:     report.OutcomeSkipped,
				Reason:     err.Error(),
			})
			continue
		}
		state.result.FilesProcessed++
	}

	_ = state.stream.Record("DONE folder %s", folderID)
	return nil
}

// enumerateFiles collects source images from the folder directory and one
// subdirectory level down, reverse sorted. Deeper nesting is not scanned.
func (p *Pipeline) enumerateFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.tif", "*.tiff", "*/*.tif", "*/*.tiff"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}

// fileTask is one source image scheduled for conversion and registration.
type fileTask struct {
	sourcePath  string
	sequence    string
	imageID     string
	componentID string
}

// newFileTask derives the sequence token from the filename stem (the portion
// after the last underscore, or the whole stem) and assigns a fresh random
// component identifier.
func newFileTask(sourcePath, folderID string) fileTask {
	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	sequence := stem
	if idx := strings.LastIndex(stem, "_"); idx >= 0 && idx < len(stem)-1 {
		sequence = stem[idx+1:]
	}
	return fileTask{
		sourcePath:  sourcePath,
		sequence:    sequence,
		imageID:     folderID + "_" + sequence,
		componentID: identifier.NewComponentID(),
	}
}

func (p *Pipeline) recordOutcome(ctx context.Context, state *runState, outcome report.Outcome) {
	if p.store == nil {
		return
	}
	if err := p.store.RecordOutcome(ctx, outcome); err != nil {
		state.logger.Warn("record outcome failed", logging.Error(err))
	}
}
