package catalog

import (
	"context"

	"github.com/antoniamayaobrador/lisbon-agent/models"
)

// Accessor answers similarity queries over the dataset catalog. Results are
// ordered by relevance and must be deterministic for a stable underlying
// catalog, so retrieval dedup is reproducible.
type Accessor interface {
	Query(ctx context.Context, text string, k int) ([]models.DatasetDescriptor, error)
}
