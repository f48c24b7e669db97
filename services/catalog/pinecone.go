package catalog

import (
	"context"
	"fmt"
	"log"

	"github.com/antoniamayaobrador/lisbon-agent/models"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

const pineconeNamespace = "lisbon-datasets"

// PineconeAccessor serves catalog queries from a Pinecone index populated by
// cmd/ingest.
type PineconeAccessor struct {
	client    *pinecone.Client
	embedder  embeddings.Embedder
	indexName string
}

func NewPineconeAccessor(apiKey, openaiAPIKey, indexName string) (*PineconeAccessor, error) {
	log.Printf("[INFO] Initializing Pinecone catalog accessor")

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Pinecone client: %w", err)
	}

	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(openaiAPIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	accessor := &PineconeAccessor{
		client:    pc,
		embedder:  embedder,
		indexName: indexName,
	}

	log.Printf("[INFO] Pinecone catalog accessor initialized successfully")
	return accessor, nil
}

func (a *PineconeAccessor) Query(ctx context.Context, text string, k int) ([]models.DatasetDescriptor, error) {
	idxDesc, err := a.client.DescribeIndex(ctx, a.indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index: %w", err)
	}

	idxConn, err := a.client.Index(pinecone.NewIndexConnParams{
		Host:      idxDesc.Host,
		Namespace: pineconeNamespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index connection: %w", err)
	}

	queryEmbeddings, err := a.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	result, err := idxConn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          queryEmbeddings[0],
		TopK:            uint32(k),
		IncludeValues:   false,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}

	var descriptors []models.DatasetDescriptor
	for _, match := range result.Matches {
		if match.Vector.Metadata == nil {
			continue
		}
		descriptors = append(descriptors, descriptorFromMetadata(match.Vector.Metadata.AsMap()))
	}

	log.Printf("[INFO] Catalog query %q returned %d datasets", text, len(descriptors))
	return descriptors, nil
}

func descriptorFromMetadata(metadata map[string]interface{}) models.DatasetDescriptor {
	desc := models.DatasetDescriptor{}

	if filename, ok := metadata["filename"].(string); ok {
		desc.Filename = filename
	}
	if source, ok := metadata["source"].(string); ok {
		desc.Source = source
	}
	if category, ok := metadata["category"].(string); ok {
		desc.Category = category
	}
	if description, ok := metadata["description"].(string); ok {
		desc.Description = description
	}
	if columns, ok := metadata["columns"].([]interface{}); ok {
		for _, col := range columns {
			if s, ok := col.(string); ok {
				desc.Columns = append(desc.Columns, s)
			}
		}
	}

	return desc
}

var _ Accessor = (*PineconeAccessor)(nil)
