package compare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farewise/fare-compare/pkg/common"
)

// RepositoryInterface defines search-history persistence operations.
type RepositoryInterface interface {
	CreateSearch(ctx context.Context, record *SearchRecord) error
	ListSearches(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*SearchRecord, error)
	GetSearch(ctx context.Context, id uuid.UUID) (*SearchRecord, error)
}

// Repository persists search history in PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new search-history repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateSearch stores one comparison result.
func (r *Repository) CreateSearch(ctx context.Context, record *SearchRecord) error {
	pickup, err := json.Marshal(record.Pickup)
	if err != nil {
		return fmt.Errorf("failed to marshal pickup: %w", err)
	}
	destination, err := json.Marshal(record.Destination)
	if err != nil {
		return fmt.Errorf("failed to marshal destination: %w", err)
	}
	results, err := json.Marshal(record.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	query := `
		INSERT INTO search_history (id, user_id, pickup, destination, results, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.Exec(ctx, query,
		record.ID, record.UserID, pickup, destination, results, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert search record: %w", err)
	}
	return nil
}

// ListSearches returns a user's searches, most recent first.
func (r *Repository) ListSearches(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*SearchRecord, error) {
	query := `
		SELECT id, user_id, pickup, destination, results, created_at
		FROM search_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer rows.Close()

	var records []*SearchRecord
	for rows.Next() {
		record, err := scanSearchRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetSearch returns one search by ID.
func (r *Repository) GetSearch(ctx context.Context, id uuid.UUID) (*SearchRecord, error) {
	query := `
		SELECT id, user_id, pickup, destination, results, created_at
		FROM search_history
		WHERE id = $1`

	record, err := scanSearchRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSearchRecord(row rowScanner) (*SearchRecord, error) {
	var (
		record      SearchRecord
		pickup      []byte
		destination []byte
		results     []byte
	)

	if err := row.Scan(&record.ID, &record.UserID, &pickup, &destination, &results, &record.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(pickup, &record.Pickup); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pickup: %w", err)
	}
	if err := json.Unmarshal(destination, &record.Destination); err != nil {
		return nil, fmt.Errorf("failed to unmarshal destination: %w", err)
	}
	if err := json.Unmarshal(results, &record.Results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %w", err)
	}
	return &record, nil
}
