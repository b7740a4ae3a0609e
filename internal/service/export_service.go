package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/universal-yoga/yoga-admin-api/internal/models"
	appErrors "github.com/universal-yoga/yoga-admin-api/pkg/errors"
	"github.com/universal-yoga/yoga-admin-api/pkg/export"
)

type exportClassSource interface {
	GetAll(ctx context.Context) ([]models.ClassDefinition, error)
}

type exportOccurrenceSource interface {
	GetByClassID(ctx context.Context, classID int64) ([]models.ClassOccurrence, error)
}

// ExportService renders the class catalog as CSV or PDF.
type ExportService struct {
	classes     exportClassSource
	occurrences exportOccurrenceSource
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	title       string
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(classes exportClassSource, occurrences exportOccurrenceSource, title string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		classes:     classes,
		occurrences: occurrences,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		title:       title,
		logger:      logger,
	}
}

var exportHeaders = []string{"ID", "Day", "Time", "Capacity", "Duration", "Price", "Type", "Instructor", "Sessions"}

// CSV renders the catalog as CSV bytes.
func (s *ExportService) CSV(ctx context.Context) ([]byte, error) {
	data, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return out, nil
}

// PDF renders the catalog as PDF bytes.
func (s *ExportService) PDF(ctx context.Context) ([]byte, error) {
	data, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.pdf.Render(data, s.title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return out, nil
}

func (s *ExportService) dataset(ctx context.Context) (export.Dataset, error) {
	defs, err := s.classes.GetAll(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog")
	}

	rows := make([][]string, 0, len(defs))
	for _, def := range defs {
		occs, err := s.occurrences.GetByClassID(ctx, def.ID)
		if err != nil {
			return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occurrences")
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", def.ID),
			def.DayOfWeek,
			def.StartTime,
			fmt.Sprintf("%d", def.Capacity),
			fmt.Sprintf("%d min", def.DurationMinutes),
			fmt.Sprintf("%.2f", def.Price),
			def.ClassType,
			def.Instructor,
			fmt.Sprintf("%d", len(occs)),
		})
	}

	return export.Dataset{Headers: exportHeaders, Rows: rows}, nil
}
