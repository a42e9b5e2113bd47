package logging

import (
	"context"
	"log/slog"

	"erecord/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldBatchID is the standardized structured logging key for batch session identifiers.
	FieldBatchID = "batch_id"
	// FieldRowIndex is the standardized structured logging key for spreadsheet row indexes.
	FieldRowIndex = "row_index"
	// FieldPackageName is the standardized structured logging key for package names.
	FieldPackageName = "package_name"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.BatchIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldBatchID, id))
	}
	if index, ok := services.RowIndexFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldRowIndex, index))
	}
	if name, ok := services.PackageNameFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPackageName, name))
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
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		args = append(args, field)
	}
	return logger.With(args...)
}
