package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/universal-yoga/yoga-admin-api/internal/models"
	"github.com/universal-yoga/yoga-admin-api/internal/validation"
	appErrors "github.com/universal-yoga/yoga-admin-api/pkg/errors"
)

type classRepository interface {
	Insert(ctx context.Context, def *models.ClassDefinition) error
	GetAll(ctx context.Context) ([]models.ClassDefinition, error)
	GetByID(ctx context.Context, id int64) (*models.ClassDefinition, error)
	SearchByInstructor(ctx context.Context, instructor string) ([]models.ClassDefinition, error)
	Delete(ctx context.Context, id int64) error
	ResetAll(ctx context.Context) error
}

// CreateClassRequest represents payload for creating class definitions.
type CreateClassRequest struct {
	DayOfWeek       string  `json:"day_of_week" validate:"required,dayofweek"`
	StartTime       string  `json:"start_time" validate:"required,classtime"`
	Capacity        int     `json:"capacity" validate:"required,min=1,max=50"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,min=1,max=180"`
	Price           float64 `json:"price" validate:"min=0,max=100"`
	ClassType       string  `json:"class_type" validate:"required,classtype"`
	Description     *string `json:"description"`
	Equipment       *string `json:"equipment"`
	Instructor      string  `json:"instructor" validate:"required"`
}

// ClassService orchestrates class definition operations. Definitions
// have no update path; they are created once and removed by delete or
// full reset.
type ClassService struct {
	repo      classRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(repo classRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validation.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, validator: validate, logger: logger}
}

// Create validates and persists a new definition, returning it with its
// assigned identifier.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.ClassDefinition, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	def := &models.ClassDefinition{
		DayOfWeek:       req.DayOfWeek,
		StartTime:       req.StartTime,
		Capacity:        req.Capacity,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		ClassType:       req.ClassType,
		Description:     normalizeOptional(req.Description),
		Equipment:       normalizeOptional(req.Equipment),
		Instructor:      strings.TrimSpace(req.Instructor),
	}

	if err := s.repo.Insert(ctx, def); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return def, nil
}

// List returns the full catalog.
func (s *ClassService) List(ctx context.Context) ([]models.ClassDefinition, error) {
	defs, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return defs, nil
}

// Search returns definitions whose instructor matches the substring.
// An empty result is not an error.
func (s *ClassService) Search(ctx context.Context, instructor string) ([]models.ClassDefinition, error) {
	defs, err := s.repo.SearchByInstructor(ctx, strings.TrimSpace(instructor))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search classes")
	}
	return defs, nil
}

// Get returns one definition by id.
func (s *ClassService) Get(ctx context.Context, id int64) (*models.ClassDefinition, error) {
	def, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return def, nil
}

// Delete removes a definition. Its occurrences remain; see
// OccurrenceService.DeleteByClass for an explicit cleanup path.
func (s *ClassService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	s.logger.Info("class deleted", zap.Int64("id", id))
	return nil
}

// ResetAll wipes the entire local catalog, occurrences first.
func (s *ClassService) ResetAll(ctx context.Context) error {
	if err := s.repo.ResetAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset catalog")
	}
	s.logger.Warn("local catalog reset")
	return nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
