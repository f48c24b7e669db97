package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/antoniamayaobrador/lisbon-agent/models"
	"github.com/antoniamayaobrador/lisbon-agent/observability"
	"github.com/antoniamayaobrador/lisbon-agent/services/catalog"

	"github.com/samber/lo"
)

const defaultResultCount = 5

// supplementalQueries force specific domains into the dataset context even
// when the primary query's nearest neighbors do not surface them. Order and
// counts are part of the retrieval contract: primary results come first,
// then each supplemental query's results in this order, first seen filename
// wins.
var supplementalQueries = []struct {
	text string
	k    int
}{
	{"administrative boundaries of Lisbon", 2},
	{"restaurants cafes shops hotels", 3},
	{"museums theaters cinemas galleries art", 5},
	{"environment air quality population architecture", 5},
	// Noise gets its own query so it isn't crowded out by environment files.
	{"noise sound pollution", 10},
	{"housing property prices real estate apartment", 5},
}

type Retriever struct {
	accessor catalog.Accessor
	sink     observability.Sink
}

func NewRetriever(accessor catalog.Accessor, sink observability.Sink) *Retriever {
	return &Retriever{accessor: accessor, sink: sink}
}

// Retrieve runs the primary question plus the supplemental queries and
// merges the results. Any catalog error aborts retrieval; proceeding with a
// partial or empty set would silently degrade answers.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]models.DatasetDescriptor, error) {
	log.Printf("[INFO] Retrieving datasets for question: %.80s", question)

	merged, err := r.accessor.Query(ctx, question, defaultResultCount)
	if err != nil {
		return nil, fmt.Errorf("primary catalog query: %w", err)
	}

	for _, sq := range supplementalQueries {
		results, err := r.accessor.Query(ctx, sq.text, sq.k)
		if err != nil {
			return nil, fmt.Errorf("supplemental catalog query %q: %w", sq.text, err)
		}
		merged = append(merged, results...)
	}

	merged = lo.UniqBy(merged, func(d models.DatasetDescriptor) string {
		return d.Filename
	})

	filenames := lo.Map(merged, func(d models.DatasetDescriptor, _ int) string {
		return d.Filename
	})
	log.Printf("[INFO] Retrieved %d datasets: %v", len(merged), filenames)

	r.sink.Record("retrieve",
		map[string]interface{}{"query": question},
		map[string]interface{}{"datasets": filenames},
	)

	return merged, nil
}
