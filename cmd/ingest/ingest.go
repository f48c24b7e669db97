package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/antoniamayaobrador/lisbon-agent/config"
	"github.com/antoniamayaobrador/lisbon-agent/models"
	"github.com/antoniamayaobrador/lisbon-agent/services/geo"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/protobuf/types/known/structpb"
)

const ingestNamespace = "lisbon-datasets"

// categoryKeywords widen each category's description so similarity search
// hits it from everyday phrasings.
var categoryKeywords = map[string]string{
	"tourism":                 "restaurants, food, dining, hotels, accommodation, nightlife, bars, clubs",
	"services":                "shops, stores, markets, pharmacies, police, schools, universities, malls",
	"transport":               "metro, subway, train, bus, tram, stops, stations",
	"culture":                 "museums, theaters, monuments, art, history, cinemas, galleries, auditoriums, residencies",
	"environment":             "parks, gardens, trees, green spaces, nature, noise, air quality, pollution, sound",
	"population":              "census, demographics, inhabitants, residents, population density",
	"remarkable_architecture": "architecture, buildings, palaces, churches, religious, noble, monuments, heritage",
	"housing":                 "houses, property, real estate, prices, cost, cheap, expensive, rent, buy, apartments, residential, home",
}

func main() {
	log.Printf("[INFO] Starting dataset metadata ingestion")

	cfg := config.Load()

	if cfg.PineconeAPIKey == "" {
		log.Fatal("[ERROR] PINECONE_API_KEY environment variable is required")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Fatal("[ERROR] OPENAI_API_KEY environment variable is required")
	}

	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(cfg.OpenAIAPIKey),
	)
	if err != nil {
		log.Fatalf("[ERROR] Failed to create OpenAI client: %v", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		log.Fatalf("[ERROR] Failed to create embedder: %v", err)
	}

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: cfg.PineconeAPIKey,
	})
	if err != nil {
		log.Fatalf("[ERROR] Failed to create Pinecone client: %v", err)
	}

	if err := ensurePineconeIndex(pc, cfg.PineconeIndexName); err != nil {
		log.Fatalf("[ERROR] Failed to ensure Pinecone index: %v", err)
	}

	descriptors, err := scanDataDir(cfg.DataDir)
	if err != nil {
		log.Fatalf("[ERROR] Failed to scan data directory: %v", err)
	}
	if len(descriptors) == 0 {
		log.Printf("[INFO] No datasets found under %s", cfg.DataDir)
		return
	}
	log.Printf("[INFO] Found %d datasets under %s", len(descriptors), cfg.DataDir)

	if err := upsertDescriptors(pc, cfg.PineconeIndexName, descriptors, embedder); err != nil {
		log.Fatalf("[ERROR] Failed to upsert dataset metadata: %v", err)
	}

	log.Printf("[INFO] Dataset metadata ingestion completed successfully")
}

// scanDataDir walks the data directory and builds one descriptor per
// GeoJSON file. Files that fail to parse are skipped with a warning.
func scanDataDir(dataDir string) ([]models.DatasetDescriptor, error) {
	patterns := []string{"*.geojson", "*.json"}

	var paths []string
	for _, pattern := range patterns {
		// Datasets live one category directory deep, plus loose files at
		// the top level.
		matches, err := filepath.Glob(filepath.Join(dataDir, "*", pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to glob %s: %w", pattern, err)
		}
		paths = append(paths, matches...)

		topLevel, err := filepath.Glob(filepath.Join(dataDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to glob %s: %w", pattern, err)
		}
		paths = append(paths, topLevel...)
	}

	var descriptors []models.DatasetDescriptor
	for _, path := range paths {
		desc, err := extractMetadata(path)
		if err != nil {
			log.Printf("[WARN] Skipping %s: %v", path, err)
			continue
		}
		descriptors = append(descriptors, desc)
	}

	return descriptors, nil
}

func extractMetadata(path string) (models.DatasetDescriptor, error) {
	fc, err := geo.ReadFile(path)
	if err != nil {
		return models.DatasetDescriptor{}, err
	}

	filename := filepath.Base(path)
	category := filepath.Base(filepath.Dir(path))

	// Files sitting directly in the data dir get a category from their name.
	if category == "data" {
		lower := strings.ToLower(filename)
		switch {
		case strings.Contains(lower, "house") || strings.Contains(lower, "property"):
			category = "housing"
		case strings.Contains(lower, "street"):
			category = "transport"
		}
	}

	columns := fc.Columns()
	description := fmt.Sprintf("Dataset: %s\nCategory: %s\nColumns: %s\nGeometry Type: %v",
		filename, category, strings.Join(columns, ", "), fc.GeometryTypes())

	if category == "boundaries" || strings.Contains(strings.ToLower(filename), "freguesia") {
		description += "\nThis dataset contains administrative boundaries, neighborhoods, districts, and freguesias of Lisbon. Use this for spatial filtering by location name (e.g., Avenidas Novas, Belém, etc.)."
	}

	if keywords, ok := categoryKeywords[category]; ok {
		description += "\nKeywords: " + keywords
	}

	return models.DatasetDescriptor{
		Filename:    filename,
		Source:      path,
		Category:    category,
		Columns:     columns,
		Description: description,
	}, nil
}

func ensurePineconeIndex(pc *pinecone.Client, indexName string) error {
	ctx := context.Background()

	indexes, err := pc.ListIndexes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}

	for _, idx := range indexes {
		if idx.Name == indexName {
			log.Printf("[INFO] Index %s already exists", indexName)
			return nil
		}
	}

	log.Printf("[INFO] Creating Pinecone index: %s", indexName)
	dimension := int32(1536) // OpenAI ada-002 embedding dimension
	deletionProtection := pinecone.DeletionProtectionDisabled
	metric := pinecone.Cosine

	_, err = pc.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
		Name:               indexName,
		Dimension:          &dimension,
		Metric:             &metric,
		Cloud:              pinecone.Aws,
		Region:             "us-east-1",
		DeletionProtection: &deletionProtection,
		Tags:               &pinecone.IndexTags{"environment": "development", "project": "lisbon-agent"},
	})
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	for {
		idx, err := pc.DescribeIndex(ctx, indexName)
		if err != nil {
			return fmt.Errorf("failed to describe index: %w", err)
		}
		if idx.Status.Ready {
			log.Printf("[INFO] Index %s is ready", indexName)
			break
		}
		log.Printf("[INFO] Waiting for index %s to be ready...", indexName)
		time.Sleep(10 * time.Second)
	}

	return nil
}

func upsertDescriptors(pc *pinecone.Client, indexName string, descriptors []models.DatasetDescriptor, embedder embeddings.Embedder) error {
	ctx := context.Background()

	idxDesc, err := pc.DescribeIndex(ctx, indexName)
	if err != nil {
		return fmt.Errorf("failed to describe index: %w", err)
	}

	idxConn, err := pc.Index(pinecone.NewIndexConnParams{
		Host:      idxDesc.Host,
		Namespace: ingestNamespace,
	})
	if err != nil {
		return fmt.Errorf("failed to create index connection: %w", err)
	}

	for i, desc := range descriptors {
		log.Printf("[INFO] Upserting dataset %d/%d: %s", i+1, len(descriptors), desc.Filename)

		vectors, err := embedder.EmbedDocuments(ctx, []string{desc.Description})
		if err != nil {
			return fmt.Errorf("failed to embed %s: %w", desc.Filename, err)
		}

		columns := make([]interface{}, len(desc.Columns))
		for j, col := range desc.Columns {
			columns[j] = col
		}
		metadata, err := structpb.NewStruct(map[string]interface{}{
			"filename":    desc.Filename,
			"source":      desc.Source,
			"category":    desc.Category,
			"columns":     columns,
			"description": desc.Description,
		})
		if err != nil {
			return fmt.Errorf("failed to build metadata for %s: %w", desc.Filename, err)
		}

		_, err = idxConn.UpsertVectors(ctx, []*pinecone.Vector{
			{
				Id:       desc.Filename,
				Values:   &vectors[0],
				Metadata: metadata,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to upsert %s: %w", desc.Filename, err)
		}
	}

	return nil
}
