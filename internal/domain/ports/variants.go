// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
)

// NameVariator generates alternate renderings of a fund name for registry
// searches. Implementations must return the original name plus exactly
// entities.VariantCount variations, or an error; a malformed or short
// result is an error, never a partial success.
type NameVariator interface {
	Variations(ctx context.Context, name string) (*entities.NameVariants, error)
}
