package db

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/antoniamayaobrador/lisbon-agent/models"
)

// timeNow is overridable in tests.
var timeNow = time.Now

// FileRatingRepository stores ratings as one JSON object per line, appended
// to the file. Appending keeps concurrent writers from clobbering each other,
// unlike a read-modify-rewrite of the whole file.
type FileRatingRepository struct {
	mu   sync.Mutex
	path string
}

func NewFileRatingRepository(logDir string) (*FileRatingRepository, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ratings directory: %w", err)
	}
	return &FileRatingRepository{path: filepath.Join(logDir, "ratings.jsonl")}, nil
}

func (r *FileRatingRepository) SaveRating(rating *models.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = timeNow()
	}

	line, err := json.Marshal(rating)
	if err != nil {
		return fmt.Errorf("failed to marshal rating: %w", err)
	}

	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ratings file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append rating: %w", err)
	}

	return nil
}

func (r *FileRatingRepository) GetAllRatings() ([]*models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.Rating{}, nil
		}
		return nil, fmt.Errorf("failed to open ratings file: %w", err)
	}
	defer file.Close()

	ratings := make([]*models.Rating, 0)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		rating := &models.Rating{}
		if err := json.Unmarshal(scanner.Bytes(), rating); err != nil {
			return nil, fmt.Errorf("failed to parse rating record: %w", err)
		}
		ratings = append(ratings, rating)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ratings file: %w", err)
	}

	return ratings, nil
}

func (r *FileRatingRepository) Close() error {
	return nil
}

var _ RatingRepository = (*FileRatingRepository)(nil)
