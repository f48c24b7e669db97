package db

import (
	"database/sql"
	"fmt"

	"github.com/antoniamayaobrador/lisbon-agent/models"

	_ "github.com/lib/pq"
)

type RatingRepository interface {
	// SaveRating appends one rating record. It must succeed even when the
	// run identifier is not recognized.
	SaveRating(rating *models.Rating) error
	GetAllRatings() ([]*models.Rating, error)
	Close() error
}

type PostgresRatingRepository struct {
	db *sql.DB
}

func NewPostgresRatingRepository(databaseURL string) (*PostgresRatingRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRatingRepository{db: db}, nil
}

func (r *PostgresRatingRepository) SaveRating(rating *models.Rating) error {
	query := `
		INSERT INTO agent.ratings (run_id, rating, comment)
		VALUES ($1, $2, $3)
		RETURNING createdAt`

	row := r.db.QueryRow(query, rating.RunID, rating.Rating, rating.Comment)

	if err := row.Scan(&rating.CreatedAt); err != nil {
		return fmt.Errorf("failed to save rating: %w", err)
	}

	return nil
}

func (r *PostgresRatingRepository) GetAllRatings() ([]*models.Rating, error) {
	query := `
		SELECT run_id, rating, comment, createdAt
		FROM agent.ratings
		ORDER BY createdAt DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]*models.Rating, 0)
	for rows.Next() {
		rating := &models.Rating{}
		var comment sql.NullString
		if err := rows.Scan(&rating.RunID, &rating.Rating, &comment, &rating.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		rating.Comment = comment.String
		ratings = append(ratings, rating)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ratings: %w", err)
	}

	return ratings, nil
}

func (r *PostgresRatingRepository) Close() error {
	return r.db.Close()
}

var _ RatingRepository = (*PostgresRatingRepository)(nil)
