package services

import (
	"errors"
	"fmt"
	"strings"
)

// Scope markers classify where a failure stops processing. Run-scoped errors
// abort the whole collection run, folder-scoped errors skip the folder and
// its files, file-scoped errors skip the single file task.
var (
	ErrRunScoped    = errors.New("run error")
	ErrFolderScoped = errors.New("folder error")
	ErrFileScoped   = errors.New("file error")
)

// Scope identifies the blast radius of an ingest failure.
type Scope int

const (
	ScopeFile Scope = iota
	ScopeFolder
	ScopeRun
)

func (s Scope) String() string {
	switch s {
	case ScopeRun:
		return "run"
	case ScopeFolder:
		return "folder"
	default:
		return "file"
	}
}

// Wrap builds an error message that includes component context while tagging
// it with the provided scope marker for later classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrFileScoped
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ScopeOf maps an ingest error to the scope the orchestrator should apply.
// Unclassified errors default to file scope so a stray failure never takes
// down more than one file task.
func ScopeOf(err error) Scope {
	switch {
	case errors.Is(err, ErrRunScoped):
		return ScopeRun
	case errors.Is(err, ErrFolderScoped):
		return ScopeFolder
	default:
		return ScopeFile
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
