package output

import (
	"context"

	"admin-e2e/internal/domain/entity"
)

// ArtifactStore keeps evidence captured when a page checkpoint fails.
type ArtifactStore interface {
	SaveScreenshot(ctx context.Context, name string, shot *entity.Screenshot) (string, error)
}
