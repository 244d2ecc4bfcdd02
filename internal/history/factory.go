package history

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// NewStore creates a postgres-backed store when configured, otherwise the
// JSON file store at the given path.
func NewStore(ctx context.Context, databaseURL, filePath string, logger *zap.Logger) (Store, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgresStore(ctx, databaseURL)
	}
	return NewFileStore(filePath, logger), nil
}
