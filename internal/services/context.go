package services

import "context"

type contextKey string

const (
	batchIDKey     contextKey = "batch_id"
	rowIndexKey    contextKey = "row_index"
	packageNameKey contextKey = "package_name"
)

// WithBatchID stores the batch session identifier on the context.
func WithBatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, batchIDKey, id)
}

// BatchIDFromContext retrieves the batch session identifier.
func BatchIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(batchIDKey).(string)
	return id, ok && id != ""
}

// WithRowIndex stores the zero-based spreadsheet row index on the context.
func WithRowIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, rowIndexKey, index)
}

// RowIndexFromContext retrieves the row index.
func RowIndexFromContext(ctx context.Context) (int, bool) {
	index, ok := ctx.Value(rowIndexKey).(int)
	return index, ok
}

// WithPackageName stores the package name being processed on the context.
func WithPackageName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, packageNameKey, name)
}

// PackageNameFromContext retrieves the package name.
func PackageNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(packageNameKey).(string)
	return name, ok && name != ""
}
