package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/universal-yoga/yoga-admin-api/internal/models"
	"github.com/universal-yoga/yoga-admin-api/internal/validation"
)

type mockOccurrenceRepo struct {
	items  map[int64]*models.ClassOccurrence
	nextID int64
}

func (m *mockOccurrenceRepo) Insert(ctx context.Context, occ *models.ClassOccurrence) error {
	if m.items == nil {
		m.items = make(map[int64]*models.ClassOccurrence)
	}
	m.nextID++
	occ.ID = m.nextID
	occ.SyncDates()
	cp := *occ
	m.items[occ.ID] = &cp
	return nil
}

func (m *mockOccurrenceRepo) GetByID(ctx context.Context, id int64) (*models.ClassOccurrence, error) {
	if occ, ok := m.items[id]; ok {
		cp := *occ
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockOccurrenceRepo) GetByClassID(ctx context.Context, classID int64) ([]models.ClassOccurrence, error) {
	var out []models.ClassOccurrence
	for _, occ := range m.items {
		if occ.ClassID == classID {
			out = append(out, *occ)
		}
	}
	return out, nil
}

func (m *mockOccurrenceRepo) Update(ctx context.Context, occ *models.ClassOccurrence) error {
	cp := *occ
	m.items[occ.ID] = &cp
	return nil
}

func (m *mockOccurrenceRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

func (m *mockOccurrenceRepo) DeleteByClassID(ctx context.Context, classID int64) error {
	for id, occ := range m.items {
		if occ.ClassID == classID {
			delete(m.items, id)
		}
	}
	return nil
}

type mockClassLookup struct {
	def *models.ClassDefinition
}

func (m *mockClassLookup) GetByID(ctx context.Context, id int64) (*models.ClassDefinition, error) {
	if m.def != nil && m.def.ID == id {
		cp := *m.def
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func mondayClass() *models.ClassDefinition {
	return &models.ClassDefinition{
		ID:         5,
		DayOfWeek:  "Monday",
		StartTime:  "10:00",
		ClassType:  "Flow Yoga",
		Instructor: "Jane Doe",
	}
}

func TestOccurrenceServiceCreateDefaultsInstructor(t *testing.T) {
	repo := &mockOccurrenceRepo{}
	svc := NewOccurrenceService(repo, &mockClassLookup{def: mondayClass()}, validation.NewValidator(), zap.NewNop())

	// 2026-09-07 is a Monday.
	occ, warning, err := svc.Create(context.Background(), 5, CreateOccurrenceRequest{
		Date: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.Equal(t, "Jane Doe", occ.Instructor)
	assert.Equal(t, int64(1), occ.ID)
}

func TestOccurrenceServiceCreateWarnsOnWeekdayMismatch(t *testing.T) {
	repo := &mockOccurrenceRepo{}
	svc := NewOccurrenceService(repo, &mockClassLookup{def: mondayClass()}, validation.NewValidator(), zap.NewNop())

	// 2026-09-08 is a Tuesday; creation still succeeds.
	occ, warning, err := svc.Create(context.Background(), 5, CreateOccurrenceRequest{
		Date:       time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC),
		Instructor: "John Roe",
	})
	require.NoError(t, err)
	assert.Contains(t, warning, "Tuesday")
	assert.Contains(t, warning, "Monday")
	assert.Equal(t, "John Roe", occ.Instructor)
	assert.Len(t, repo.items, 1)
}

func TestOccurrenceServiceCreateUnknownClass(t *testing.T) {
	svc := NewOccurrenceService(&mockOccurrenceRepo{}, &mockClassLookup{}, validation.NewValidator(), zap.NewNop())

	_, _, err := svc.Create(context.Background(), 42, CreateOccurrenceRequest{
		Date: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class not found")
}

func TestOccurrenceServiceUpdate(t *testing.T) {
	repo := &mockOccurrenceRepo{}
	svc := NewOccurrenceService(repo, &mockClassLookup{def: mondayClass()}, validation.NewValidator(), zap.NewNop())

	occ, _, err := svc.Create(context.Background(), 5, CreateOccurrenceRequest{
		Date: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	updated, warning, err := svc.Update(context.Background(), occ.ID, UpdateOccurrenceRequest{
		Date:       time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		Instructor: "John Roe",
	})
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.Equal(t, "John Roe", updated.Instructor)
	assert.Equal(t, time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC), updated.Date)
}

func TestOccurrenceServiceDeleteByClass(t *testing.T) {
	repo := &mockOccurrenceRepo{}
	svc := NewOccurrenceService(repo, &mockClassLookup{def: mondayClass()}, validation.NewValidator(), zap.NewNop())

	for i := 0; i < 3; i++ {
		_, _, err := svc.Create(context.Background(), 5, CreateOccurrenceRequest{
			Date: time.Date(2026, 9, 7+7*i, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
	require.NoError(t, svc.DeleteByClass(context.Background(), 5))
	assert.Empty(t, repo.items)
}
