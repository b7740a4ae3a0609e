package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/universal-yoga/yoga-admin-api/internal/models"
	"github.com/universal-yoga/yoga-admin-api/internal/validation"
	appErrors "github.com/universal-yoga/yoga-admin-api/pkg/errors"
)

type occurrenceRepository interface {
	Insert(ctx context.Context, occ *models.ClassOccurrence) error
	GetByID(ctx context.Context, id int64) (*models.ClassOccurrence, error)
	GetByClassID(ctx context.Context, classID int64) ([]models.ClassOccurrence, error)
	Update(ctx context.Context, occ *models.ClassOccurrence) error
	Delete(ctx context.Context, id int64) error
	DeleteByClassID(ctx context.Context, classID int64) error
}

type occurrenceClassLookup interface {
	GetByID(ctx context.Context, id int64) (*models.ClassDefinition, error)
}

// CreateOccurrenceRequest represents payload for scheduling an occurrence.
type CreateOccurrenceRequest struct {
	Date       time.Time `json:"date" validate:"required"`
	Instructor string    `json:"instructor"`
	Comments   *string   `json:"comments"`
}

// UpdateOccurrenceRequest represents payload for editing an occurrence.
type UpdateOccurrenceRequest struct {
	Date       time.Time `json:"date" validate:"required"`
	Instructor string    `json:"instructor" validate:"required"`
	Comments   *string   `json:"comments"`
}

// OccurrenceService orchestrates dated class occurrences.
type OccurrenceService struct {
	repo      occurrenceRepository
	classes   occurrenceClassLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOccurrenceService constructs an OccurrenceService.
func NewOccurrenceService(repo occurrenceRepository, classes occurrenceClassLookup, validate *validator.Validate, logger *zap.Logger) *OccurrenceService {
	if validate == nil {
		validate = validation.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OccurrenceService{repo: repo, classes: classes, validator: validate, logger: logger}
}

// Create schedules an occurrence for a definition. The instructor
// defaults to the definition's instructor when blank. A date falling on
// a different weekday than the definition's does not block creation;
// the returned warning lets the caller surface it.
func (s *OccurrenceService) Create(ctx context.Context, classID int64, req CreateOccurrenceRequest) (*models.ClassOccurrence, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid occurrence payload")
	}

	def, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	instructor := strings.TrimSpace(req.Instructor)
	if instructor == "" {
		instructor = def.Instructor
	}

	occ := &models.ClassOccurrence{
		ClassID:    classID,
		Date:       req.Date.UTC(),
		Instructor: instructor,
		Comments:   normalizeOptional(req.Comments),
	}

	if err := s.repo.Insert(ctx, occ); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create occurrence")
	}

	return occ, dayMismatchWarning(def, occ.Date), nil
}

// ListByClass returns a definition's occurrences ordered by date.
func (s *OccurrenceService) ListByClass(ctx context.Context, classID int64) ([]models.ClassOccurrence, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	occs, err := s.repo.GetByClassID(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list occurrences")
	}
	return occs, nil
}

// Get returns one occurrence by id.
func (s *OccurrenceService) Get(ctx context.Context, id int64) (*models.ClassOccurrence, error) {
	occ, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "occurrence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occurrence")
	}
	return occ, nil
}

// Update edits an existing occurrence, keeping its owning definition.
// The weekday warning applies here too.
func (s *OccurrenceService) Update(ctx context.Context, id int64, req UpdateOccurrenceRequest) (*models.ClassOccurrence, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid occurrence payload")
	}

	occ, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "occurrence not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occurrence")
	}

	occ.Date = req.Date.UTC()
	occ.DateMillis = 0
	occ.SyncDates()
	occ.Instructor = strings.TrimSpace(req.Instructor)
	occ.Comments = normalizeOptional(req.Comments)

	if err := s.repo.Update(ctx, occ); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update occurrence")
	}

	var warning string
	if def, err := s.classes.GetByID(ctx, occ.ClassID); err == nil {
		warning = dayMismatchWarning(def, occ.Date)
	}
	return occ, warning, nil
}

// Delete removes one occurrence.
func (s *OccurrenceService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "occurrence not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occurrence")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete occurrence")
	}
	return nil
}

// DeleteByClass removes every occurrence of a definition.
func (s *OccurrenceService) DeleteByClass(ctx context.Context, classID int64) error {
	if err := s.repo.DeleteByClassID(ctx, classID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete occurrences")
	}
	return nil
}

func dayMismatchWarning(def *models.ClassDefinition, date time.Time) string {
	if def == nil || !validation.IsDayOfWeek(def.DayOfWeek) {
		return ""
	}
	weekday := date.Weekday().String()
	if weekday == def.DayOfWeek {
		return ""
	}
	return fmt.Sprintf("date falls on %s but the class is scheduled for %ss", weekday, def.DayOfWeek)
}
