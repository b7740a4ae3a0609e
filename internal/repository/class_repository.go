package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/universal-yoga/yoga-admin-api/internal/models"
)

// ClassRepository manages persistence for class definitions.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = "id, day_of_week, start_time, capacity, duration_minutes, price, class_type, description, equipment, instructor"

// Insert stores a new definition and assigns its ID.
func (r *ClassRepository) Insert(ctx context.Context, def *models.ClassDefinition) error {
	if strings.TrimSpace(def.Instructor) == "" {
		def.Instructor = models.DefaultInstructor
	}

	const query = `INSERT INTO class_definitions (day_of_week, start_time, capacity, duration_minutes, price, class_type, description, equipment, instructor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if err := r.db.GetContext(ctx, &def.ID, query,
		def.DayOfWeek, def.StartTime, def.Capacity, def.DurationMinutes,
		def.Price, def.ClassType, def.Description, def.Equipment, def.Instructor,
	); err != nil {
		return fmt.Errorf("insert class definition: %w", err)
	}
	return nil
}

// GetAll returns every definition ordered by ID.
func (r *ClassRepository) GetAll(ctx context.Context) ([]models.ClassDefinition, error) {
	query := fmt.Sprintf("SELECT %s FROM class_definitions ORDER BY id", classColumns)
	var defs []models.ClassDefinition
	if err := r.db.SelectContext(ctx, &defs, query); err != nil {
		return nil, fmt.Errorf("list class definitions: %w", err)
	}
	return defs, nil
}

// GetByID fetches one definition.
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*models.ClassDefinition, error) {
	query := fmt.Sprintf("SELECT %s FROM class_definitions WHERE id = $1", classColumns)
	var def models.ClassDefinition
	if err := r.db.GetContext(ctx, &def, query, id); err != nil {
		return nil, err
	}
	return &def, nil
}

// SearchByInstructor returns definitions whose instructor contains the
// substring, case-insensitively.
func (r *ClassRepository) SearchByInstructor(ctx context.Context, instructor string) ([]models.ClassDefinition, error) {
	query := fmt.Sprintf("SELECT %s FROM class_definitions WHERE LOWER(instructor) LIKE $1 ORDER BY id", classColumns)
	pattern := "%" + strings.ToLower(instructor) + "%"
	var defs []models.ClassDefinition
	if err := r.db.SelectContext(ctx, &defs, query, pattern); err != nil {
		return nil, fmt.Errorf("search class definitions: %w", err)
	}
	return defs, nil
}

// Delete removes a definition. Its occurrences are left in place.
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM class_definitions WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete class definition: %w", err)
	}
	return nil
}

// ResetAll deletes every occurrence, then every definition, in one
// transaction. Occurrences go first so a failed reset never leaves
// occurrences whose definitions are already gone.
func (r *ClassRepository) ResetAll(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM class_occurrences`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("reset occurrences: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM class_definitions`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("reset definitions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}
