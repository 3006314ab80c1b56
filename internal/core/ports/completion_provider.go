package ports

import (
	"context"

	"github.com/cardioassist/cardio-api/internal/core/domain"
)

// CompletionProvider is the external language model. Complete returns the
// reply text, which may be empty when the model produced no content.
type CompletionProvider interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}
