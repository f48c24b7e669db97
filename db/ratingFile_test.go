package db

import (
	"sync"
	"testing"

	"github.com/antoniamayaobrador/lisbon-agent/models"
)

func TestFileRatingRepositoryAppends(t *testing.T) {
	repo, err := NewFileRatingRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileRatingRepository() returned error: %v", err)
	}
	defer repo.Close()

	ratings := []*models.Rating{
		{RunID: "r-1", Rating: 5, Comment: "great answer"},
		{RunID: "r-2", Rating: 2},
		// Unknown run identifiers are accepted; the store never validates
		// them.
		{RunID: "r-404", Rating: 1, Comment: "never saw this run"},
	}
	for _, r := range ratings {
		if err := repo.SaveRating(r); err != nil {
			t.Fatalf("SaveRating(%s) returned error: %v", r.RunID, err)
		}
		if r.CreatedAt.IsZero() {
			t.Errorf("SaveRating(%s) did not stamp CreatedAt", r.RunID)
		}
	}

	stored, err := repo.GetAllRatings()
	if err != nil {
		t.Fatalf("GetAllRatings() returned error: %v", err)
	}
	if len(stored) != len(ratings) {
		t.Fatalf("GetAllRatings() = %d records, expected %d", len(stored), len(ratings))
	}
	for i, r := range ratings {
		if stored[i].RunID != r.RunID || stored[i].Rating != r.Rating || stored[i].Comment != r.Comment {
			t.Errorf("record %d = %+v, expected %+v", i, stored[i], r)
		}
	}
}

func TestFileRatingRepositoryEmptyStore(t *testing.T) {
	repo, err := NewFileRatingRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileRatingRepository() returned error: %v", err)
	}
	defer repo.Close()

	stored, err := repo.GetAllRatings()
	if err != nil {
		t.Fatalf("GetAllRatings() returned error: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("GetAllRatings() on empty store = %d records", len(stored))
	}
}

func TestFileRatingRepositoryConcurrentAppends(t *testing.T) {
	repo, err := NewFileRatingRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileRatingRepository() returned error: %v", err)
	}
	defer repo.Close()

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			if err := repo.SaveRating(&models.Rating{RunID: "r-concurrent", Rating: n % 5}); err != nil {
				t.Errorf("SaveRating returned error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	stored, err := repo.GetAllRatings()
	if err != nil {
		t.Fatalf("GetAllRatings() returned error: %v", err)
	}
	if len(stored) != writers {
		t.Errorf("GetAllRatings() = %d records, expected %d (no lost appends)", len(stored), writers)
	}
}
