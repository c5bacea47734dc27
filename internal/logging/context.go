package logging

import (
	"context"
	"log/slog"

	"github.com/caltechlibrary/distillery-sub000/internal/services"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]Attr, 0, 4)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, String(FieldRunID, id))
	}
	if collection, ok := services.CollectionFromContext(ctx); ok {
		fields = append(fields, String(FieldCollection, collection))
	}
	if folder, ok := services.FolderFromContext(ctx); ok {
		fields = append(fields, String(FieldFolder, folder))
	}
	if image, ok := services.ImageFromContext(ctx); ok {
		fields = append(fields, String(FieldImage, image))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
