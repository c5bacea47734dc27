package services

import "context"

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	collectionKey contextKey = "collection"
	folderKey     contextKey = "folder"
	imageKey      contextKey = "image"
)

// WithRunID annotates context with the collection run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCollection annotates context with the collection identifier.
func WithCollection(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, collectionKey, id)
}

// CollectionFromContext extracts the collection identifier if present.
func CollectionFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(collectionKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithFolder annotates context with the folder component identifier.
func WithFolder(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, folderKey, id)
}

// FolderFromContext extracts the folder component identifier if present.
func FolderFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(folderKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithImage annotates context with the image identifier being processed.
func WithImage(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, imageKey, id)
}

// ImageFromContext extracts the image identifier if present.
func ImageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(imageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
