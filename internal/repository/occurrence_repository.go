package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/universal-yoga/yoga-admin-api/internal/models"
)

// OccurrenceRepository manages persistence for class occurrences.
type OccurrenceRepository struct {
	db *sqlx.DB
}

// NewOccurrenceRepository constructs an OccurrenceRepository.
func NewOccurrenceRepository(db *sqlx.DB) *OccurrenceRepository {
	return &OccurrenceRepository{db: db}
}

const occurrenceColumns = "id, class_id, date_millis, instructor, comments"

// Insert stores a new occurrence and assigns its ID.
func (r *OccurrenceRepository) Insert(ctx context.Context, occ *models.ClassOccurrence) error {
	occ.SyncDates()
	const query = `INSERT INTO class_occurrences (class_id, date_millis, instructor, comments)
		VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.GetContext(ctx, &occ.ID, query, occ.ClassID, occ.DateMillis, occ.Instructor, occ.Comments); err != nil {
		return fmt.Errorf("insert occurrence: %w", err)
	}
	return nil
}

// GetByID fetches one occurrence.
func (r *OccurrenceRepository) GetByID(ctx context.Context, id int64) (*models.ClassOccurrence, error) {
	query := fmt.Sprintf("SELECT %s FROM class_occurrences WHERE id = $1", occurrenceColumns)
	var occ models.ClassOccurrence
	if err := r.db.GetContext(ctx, &occ, query, id); err != nil {
		return nil, err
	}
	occ.SyncDates()
	return &occ, nil
}

// GetByClassID returns a definition's occurrences ordered by date ascending.
func (r *OccurrenceRepository) GetByClassID(ctx context.Context, classID int64) ([]models.ClassOccurrence, error) {
	query := fmt.Sprintf("SELECT %s FROM class_occurrences WHERE class_id = $1 ORDER BY date_millis ASC", occurrenceColumns)
	var occs []models.ClassOccurrence
	if err := r.db.SelectContext(ctx, &occs, query, classID); err != nil {
		return nil, fmt.Errorf("list occurrences: %w", err)
	}
	for i := range occs {
		occs[i].SyncDates()
	}
	return occs, nil
}

// Update rewrites an existing occurrence.
func (r *OccurrenceRepository) Update(ctx context.Context, occ *models.ClassOccurrence) error {
	occ.SyncDates()
	const query = `UPDATE class_occurrences SET class_id = $1, date_millis = $2, instructor = $3, comments = $4 WHERE id = $5`
	if _, err := r.db.ExecContext(ctx, query, occ.ClassID, occ.DateMillis, occ.Instructor, occ.Comments, occ.ID); err != nil {
		return fmt.Errorf("update occurrence: %w", err)
	}
	return nil
}

// Delete removes one occurrence.
func (r *OccurrenceRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM class_occurrences WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete occurrence: %w", err)
	}
	return nil
}

// DeleteByClassID removes every occurrence of a definition.
func (r *OccurrenceRepository) DeleteByClassID(ctx context.Context, classID int64) error {
	const query = `DELETE FROM class_occurrences WHERE class_id = $1`
	if _, err := r.db.ExecContext(ctx, query, classID); err != nil {
		return fmt.Errorf("delete occurrences by class: %w", err)
	}
	return nil
}
